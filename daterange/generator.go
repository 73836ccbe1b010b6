/*
generator.go - Interval generation for bulk date range creation

PURPOSE:
  Turns (start, unit, step, end date | count) into an ordered list of
  boundaries. Boundaries are end-exclusive; the list always carries one
  extra boundary so the last interval can be closed as next - 1 day.

ALGORITHM:
  Boundary i is start + i*step units, computed from the start every time so
  month-end clamping doesn't drift (Jan 31 monthly: Jan 31, Feb 28, Mar 31).

  Count mode:    exactly count intervals (count + 1 boundaries).
  End date mode: every interval whose inclusive end is <= end date. The last
                 interval therefore ends within one step of the end date.

EXAMPLE:
  GenerateIntervals(2025-01-01, UnitMonths, 3, Date{}, 4)
    -> 2025-01-01, 2025-04-01, 2025-07-01, 2025-10-01, 2026-01-01
  IntervalsFromBoundaries(...)
    -> [01-01, 03-31] [04-01, 06-30] [07-01, 09-30] [10-01, 12-31]

SEE ALSO:
  - interval.go: IntervalsFromBoundaries
  - naming.go: names for the intervals
*/
package daterange

import "fmt"

// MaxIntervals bounds a single generation. It also bounds the step, so
// start + i*step never leaves the calendar.
const MaxIntervals = 10000

// MaxYear is the last year a boundary may fall in.
const MaxYear = 9999

// GenerateIntervals returns the interval boundaries for a generation.
// Exactly one of end (non-zero) and count (> 0) must be supplied.
func GenerateIntervals(start Date, unit Unit, step int, end Date, count int) ([]Date, error) {
	if start.IsZero() {
		return nil, NewUserInputError("please enter a start date")
	}
	if end.IsZero() && count <= 0 {
		return nil, NewUserInputError(MsgMissingEndCondition)
	}
	if !end.IsZero() && count > 0 {
		return nil, NewUserInputError(MsgBothEndConditions)
	}
	if !unit.Valid() {
		return nil, NewUserInputError(fmt.Sprintf("unknown unit of time %q", unit))
	}
	if step < 1 {
		return nil, NewUserInputError("the duration must be at least 1")
	}
	if step > MaxIntervals {
		return nil, NewUserInputError(fmt.Sprintf("the duration can't exceed %d %s", MaxIntervals, unit))
	}

	if count > 0 {
		if count > MaxIntervals {
			return nil, NewUserInputError(fmt.Sprintf("can't generate more than %d ranges at once", MaxIntervals))
		}
		boundaries := make([]Date, 0, count+1)
		boundaries = append(boundaries, start)
		for i := 1; i <= count; i++ {
			next, err := nextBoundary(start, unit, i*step, boundaries[i-1])
			if err != nil {
				return nil, err
			}
			boundaries = append(boundaries, next)
		}
		return boundaries, nil
	}

	boundaries := []Date{start}
	for i := 1; ; i++ {
		next, err := nextBoundary(start, unit, i*step, boundaries[i-1])
		if err != nil {
			return nil, err
		}
		if next.AddDays(-1).After(end) {
			break
		}
		if i > MaxIntervals {
			return nil, NewUserInputError(fmt.Sprintf("can't generate more than %d ranges at once", MaxIntervals))
		}
		boundaries = append(boundaries, next)
	}
	if len(boundaries) < 2 {
		return nil, NewUserInputError(MsgNoRanges)
	}
	return boundaries, nil
}

// nextBoundary computes start + n units and checks it moves past prev
// without leaving the calendar.
func nextBoundary(start Date, unit Unit, n int, prev Date) (Date, error) {
	next := unit.Add(start, n)
	if next.Year() > MaxYear || !next.After(prev) {
		return Date{}, NewUserInputError(MsgOutOfCalendar)
	}
	return next, nil
}

// Intervals validates the request and returns its inclusive intervals.
func (r GeneratorRequest) Intervals() ([]Interval, error) {
	boundaries, err := GenerateIntervals(r.DateStart, r.UnitOfTime, r.DurationCount, r.DateEnd, r.Count)
	if err != nil {
		return nil, err
	}
	return IntervalsFromBoundaries(boundaries), nil
}

// PreviewNames returns the names a request would produce without building
// the ranges.
func (r GeneratorRequest) PreviewNames() ([]string, error) {
	intervals, err := r.Intervals()
	if err != nil {
		return nil, err
	}
	return GenerateNames(intervals, r.NameExpr, r.NamePrefix)
}

// ComputeRanges builds one fully populated range candidate per interval, in
// interval order. Nothing is stored.
func (r GeneratorRequest) ComputeRanges() ([]DateRange, error) {
	intervals, err := r.Intervals()
	if err != nil {
		return nil, err
	}
	names, err := GenerateNames(intervals, r.NameExpr, r.NamePrefix)
	if err != nil {
		return nil, err
	}

	ranges := make([]DateRange, len(intervals))
	for i, iv := range intervals {
		ranges[i] = DateRange{
			Name:      names[i],
			DateStart: iv.Start,
			DateEnd:   iv.End,
			TypeID:    r.TypeID,
			CompanyID: r.CompanyID,
		}
	}
	return ranges, nil
}
