/*
Package factory provides JSON to Go date range type conversion.

PURPOSE:
  Converts JSON date range type definitions and generator requests into
  daterange structs. Types can be configured without code changes: an admin
  UI posts JSON, the factory builds the record.

JSON SCHEMA:
  {
    "name": "Fiscal year",
    "code": "FY",
    "company_id": 0,
    "allow_overlap": false,
    "active": true,
    "naming": {
      "expression": "\"FY\" + date_start.Format(\"2006\")",
      "prefix": ""
    },
    "duration": {"count": 1, "unit": "years"},
    "autogeneration": {
      "date_start": "2024-04-01",
      "count": 6,
      "unit": "months"
    }
  }

  Units accept singular and adverb forms ("month", "monthly").
  "active" defaults to true.

USAGE:
  f := factory.NewTypeFactory()
  typ, err := f.ParseType(factory.FiscalYearTypeJSON("Fiscal year", "FY", time.April))

SEE ALSO:
  - daterange/types.go: DateRangeType
  - presets.go: ready-made type definitions
*/
package factory

import (
	"encoding/json"
	"fmt"

	"github.com/warp/daterange-engine/daterange"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// TypeJSON is the JSON representation of a date range type.
type TypeJSON struct {
	ID             int64               `json:"id,omitempty"`
	Name           string              `json:"name"`
	Code           string              `json:"code,omitempty"`
	CompanyID      int64               `json:"company_id,omitempty"`
	AllowOverlap   bool                `json:"allow_overlap"`
	Active         *bool               `json:"active,omitempty"` // Default true
	Naming         *NamingJSON         `json:"naming,omitempty"`
	Duration       *DurationJSON       `json:"duration,omitempty"`
	Autogeneration *AutogenerationJSON `json:"autogeneration,omitempty"`
}

// NamingJSON is a naming scheme. The expression wins over the prefix.
type NamingJSON struct {
	Expression string `json:"expression,omitempty"`
	Prefix     string `json:"prefix,omitempty"`
}

// DurationJSON is a step of count units.
type DurationJSON struct {
	Count int    `json:"count"`
	Unit  string `json:"unit"`
}

// AutogenerationJSON configures the sweep for a type.
type AutogenerationJSON struct {
	DateStart string `json:"date_start,omitempty"`
	Count     int    `json:"count"`
	Unit      string `json:"unit"`
}

// GeneratorJSON is the JSON representation of a generator request.
type GeneratorJSON struct {
	TypeID    int64        `json:"type_id"`
	CompanyID int64        `json:"company_id,omitempty"`
	DateStart string       `json:"date_start"`
	DateEnd   string       `json:"date_end,omitempty"`
	Count     int          `json:"count,omitempty"`
	Duration  DurationJSON `json:"duration"`
	Naming    NamingJSON   `json:"naming"`
}

// =============================================================================
// TYPE FACTORY
// =============================================================================

// TypeFactory converts JSON definitions to daterange structs.
type TypeFactory struct{}

// NewTypeFactory creates a new type factory.
func NewTypeFactory() *TypeFactory {
	return &TypeFactory{}
}

// ParseType parses a JSON string into a DateRangeType.
func (f *TypeFactory) ParseType(jsonStr string) (daterange.DateRangeType, error) {
	var tj TypeJSON
	if err := json.Unmarshal([]byte(jsonStr), &tj); err != nil {
		return daterange.DateRangeType{}, fmt.Errorf("failed to parse date range type JSON: %w", err)
	}

	return f.FromJSON(tj)
}

// FromJSON converts TypeJSON to a validated, normalized DateRangeType.
func (f *TypeFactory) FromJSON(tj TypeJSON) (daterange.DateRangeType, error) {
	t := daterange.DateRangeType{
		ID:           daterange.TypeID(tj.ID),
		Name:         tj.Name,
		Code:         tj.Code,
		CompanyID:    daterange.CompanyID(tj.CompanyID),
		AllowOverlap: tj.AllowOverlap,
		Active:       tj.Active == nil || *tj.Active,
	}

	if tj.Naming != nil {
		t.NameExpr = tj.Naming.Expression
		t.NamePrefix = tj.Naming.Prefix
	}

	if tj.Duration != nil {
		unit, err := parseOptionalUnit(tj.Duration.Unit)
		if err != nil {
			return daterange.DateRangeType{}, err
		}
		t.DurationCount = tj.Duration.Count
		t.UnitOfTime = unit
	}

	if tj.Autogeneration != nil {
		unit, err := parseOptionalUnit(tj.Autogeneration.Unit)
		if err != nil {
			return daterange.DateRangeType{}, err
		}
		start, err := parseOptionalDate(tj.Autogeneration.DateStart)
		if err != nil {
			return daterange.DateRangeType{}, err
		}
		t.AutogenerationCount = tj.Autogeneration.Count
		t.AutogenerationUnit = unit
		t.AutogenerationDateStart = start
	}

	if err := t.Validate(); err != nil {
		return daterange.DateRangeType{}, err
	}
	t.Normalize()
	return t, nil
}

// ToJSON converts a DateRangeType to TypeJSON.
func (f *TypeFactory) ToJSON(t daterange.DateRangeType) TypeJSON {
	active := t.Active
	tj := TypeJSON{
		ID:           int64(t.ID),
		Name:         t.Name,
		Code:         t.Code,
		CompanyID:    int64(t.CompanyID),
		AllowOverlap: t.AllowOverlap,
		Active:       &active,
	}

	if t.NameExpr != "" || t.NamePrefix != "" {
		tj.Naming = &NamingJSON{Expression: t.NameExpr, Prefix: t.NamePrefix}
	}
	if t.DurationCount > 0 || t.UnitOfTime != "" {
		tj.Duration = &DurationJSON{Count: t.DurationCount, Unit: string(t.UnitOfTime)}
	}
	if t.AutogenerationCount > 0 || t.AutogenerationUnit != "" || !t.AutogenerationDateStart.IsZero() {
		tj.Autogeneration = &AutogenerationJSON{
			DateStart: formatOptionalDate(t.AutogenerationDateStart),
			Count:     t.AutogenerationCount,
			Unit:      string(t.AutogenerationUnit),
		}
	}

	return tj
}

// =============================================================================
// GENERATOR REQUESTS
// =============================================================================

// ParseGenerator parses a JSON string into a GeneratorRequest.
func (f *TypeFactory) ParseGenerator(jsonStr string) (daterange.GeneratorRequest, error) {
	var gj GeneratorJSON
	if err := json.Unmarshal([]byte(jsonStr), &gj); err != nil {
		return daterange.GeneratorRequest{}, fmt.Errorf("failed to parse generator JSON: %w", err)
	}

	return f.GeneratorFromJSON(gj)
}

// GeneratorFromJSON converts GeneratorJSON to a GeneratorRequest. Interval
// and naming validation happens when the request is computed.
func (f *TypeFactory) GeneratorFromJSON(gj GeneratorJSON) (daterange.GeneratorRequest, error) {
	start, err := parseOptionalDate(gj.DateStart)
	if err != nil {
		return daterange.GeneratorRequest{}, err
	}
	end, err := parseOptionalDate(gj.DateEnd)
	if err != nil {
		return daterange.GeneratorRequest{}, err
	}
	unit, err := parseOptionalUnit(gj.Duration.Unit)
	if err != nil {
		return daterange.GeneratorRequest{}, err
	}
	if gj.TypeID == 0 {
		return daterange.GeneratorRequest{}, daterange.NewUserInputError("please select a date range type")
	}

	return daterange.GeneratorRequest{
		DateStart:     start,
		DateEnd:       end,
		Count:         gj.Count,
		UnitOfTime:    unit,
		DurationCount: gj.Duration.Count,
		NameExpr:      gj.Naming.Expression,
		NamePrefix:    gj.Naming.Prefix,
		TypeID:        daterange.TypeID(gj.TypeID),
		CompanyID:     daterange.CompanyID(gj.CompanyID),
	}, nil
}

// GeneratorToJSON converts a GeneratorRequest (e.g. type defaults) to
// GeneratorJSON.
func (f *TypeFactory) GeneratorToJSON(r daterange.GeneratorRequest) GeneratorJSON {
	return GeneratorJSON{
		TypeID:    int64(r.TypeID),
		CompanyID: int64(r.CompanyID),
		DateStart: formatOptionalDate(r.DateStart),
		DateEnd:   formatOptionalDate(r.DateEnd),
		Count:     r.Count,
		Duration:  DurationJSON{Count: r.DurationCount, Unit: string(r.UnitOfTime)},
		Naming:    NamingJSON{Expression: r.NameExpr, Prefix: r.NamePrefix},
	}
}

// =============================================================================
// PARSING HELPERS
// =============================================================================

func parseOptionalUnit(s string) (daterange.Unit, error) {
	if s == "" {
		return "", nil
	}
	return daterange.ParseUnit(s)
}

func parseOptionalDate(s string) (daterange.Date, error) {
	if s == "" {
		return daterange.Date{}, nil
	}
	d, err := daterange.ParseDate(s)
	if err != nil {
		return daterange.Date{}, daterange.NewUserInputError(err.Error())
	}
	return d, nil
}

func formatOptionalDate(d daterange.Date) string {
	if d.IsZero() {
		return ""
	}
	return d.String()
}
