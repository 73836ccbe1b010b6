package search

// FieldDescriptor describes a searchable field to a UI.
type FieldDescriptor struct {
	Name       string `json:"name"`
	Label      string `json:"label"`
	Type       string `json:"type"`
	Relation   string `json:"relation,omitempty"`
	Stored     bool   `json:"stored"`
	Searchable bool   `json:"searchable"`
}

// PeriodFieldName is the technical name of the period selector.
const PeriodFieldName = "date_range_search_id"

// PeriodField is the virtual period selector. It has no stored value.
var PeriodField = FieldDescriptor{
	Name:       PeriodFieldName,
	Label:      "Period",
	Type:       "many2one",
	Relation:   "date_range",
	Stored:     false,
	Searchable: true,
}

// WithPeriodField adds the period selector to a field list. When the list
// already names it, the existing entry only gets the "Period" label.
func WithPeriodField(fields []FieldDescriptor) []FieldDescriptor {
	out := make([]FieldDescriptor, len(fields), len(fields)+1)
	copy(out, fields)
	for i := range out {
		if out[i].Name == PeriodFieldName {
			out[i].Label = PeriodField.Label
			return out
		}
	}
	return append(out, PeriodField)
}
