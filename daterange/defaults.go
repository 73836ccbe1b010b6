package daterange

// DefaultsFromType derives a generator request from a type.
//
// The start is the day after the latest range of the type (last), else the
// type's autogeneration start, else January 1 of today's year. With an
// autogeneration count and unit on the type, the end is today advanced by
// that step, kept only when it falls after the start.
func DefaultsFromType(t DateRangeType, last *DateRange, today Date) GeneratorRequest {
	req := GeneratorRequest{
		TypeID:        t.ID,
		CompanyID:     t.CompanyID,
		NameExpr:      t.NameExpr,
		NamePrefix:    t.NamePrefix,
		DurationCount: t.DurationCount,
		UnitOfTime:    t.UnitOfTime,
	}
	if req.NameExpr != "" {
		req.NamePrefix = ""
	}

	switch {
	case last != nil:
		req.DateStart = last.DateEnd.AddDays(1)
	case !t.AutogenerationDateStart.IsZero():
		req.DateStart = t.AutogenerationDateStart
	default:
		req.DateStart = today.StartOfYear()
	}

	if t.AutogenerationCount > 0 && t.AutogenerationUnit.Valid() {
		end := t.AutogenerationUnit.Add(today, t.AutogenerationCount)
		if end.After(req.DateStart) {
			req.DateEnd = end
		}
	}
	return req
}

// PreviewTypeNames names a single interval covering the year of today with
// the type's naming scheme.
func PreviewTypeNames(t DateRangeType, today Date) ([]string, error) {
	req := GeneratorRequest{
		DateStart:     today.StartOfYear(),
		Count:         1,
		UnitOfTime:    UnitYears,
		DurationCount: 1,
		NameExpr:      t.NameExpr,
		NamePrefix:    t.NamePrefix,
	}
	if req.NameExpr != "" {
		req.NamePrefix = ""
	}
	return req.PreviewNames()
}
