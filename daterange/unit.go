package daterange

import "fmt"

// Unit is the recurrence unit of a generator.
type Unit string

const (
	UnitYears  Unit = "years"
	UnitMonths Unit = "months"
	UnitWeeks  Unit = "weeks"
	UnitDays   Unit = "days"
)

// Valid reports whether u is one of the supported units.
func (u Unit) Valid() bool {
	switch u {
	case UnitYears, UnitMonths, UnitWeeks, UnitDays:
		return true
	}
	return false
}

// ParseUnit accepts the unit names and their singular forms.
func ParseUnit(s string) (Unit, error) {
	switch s {
	case "years", "year", "yearly":
		return UnitYears, nil
	case "months", "month", "monthly":
		return UnitMonths, nil
	case "weeks", "week", "weekly":
		return UnitWeeks, nil
	case "days", "day", "daily":
		return UnitDays, nil
	}
	return "", NewUserInputError(fmt.Sprintf("unknown unit of time %q", s))
}

// Add advances d by n units. Month and year steps clamp to month end.
func (u Unit) Add(d Date, n int) Date {
	switch u {
	case UnitYears:
		return d.AddYears(n)
	case UnitMonths:
		return d.AddMonths(n)
	case UnitWeeks:
		return d.AddWeeks(n)
	default:
		return d.AddDays(n)
	}
}
