package daterange

// =============================================================================
// INTERVAL - Inclusive [Start, End] day interval
// =============================================================================

// Interval is an inclusive day interval. Ranges never carry an exclusive end.
type Interval struct {
	Start Date
	End   Date
}

// Overlaps returns true if both intervals share at least one day.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.BeforeOrEqual(other.End) && other.Start.BeforeOrEqual(i.End)
}

func (i Interval) String() string {
	return "[" + i.Start.String() + ", " + i.End.String() + "]"
}

// IntervalsFromBoundaries converts end-exclusive boundaries into inclusive
// intervals: interval i is [b[i], b[i+1] - 1 day]. The last boundary only
// closes the last interval.
func IntervalsFromBoundaries(boundaries []Date) []Interval {
	if len(boundaries) < 2 {
		return nil
	}
	intervals := make([]Interval, 0, len(boundaries)-1)
	for i := 0; i < len(boundaries)-1; i++ {
		intervals = append(intervals, Interval{
			Start: boundaries[i],
			End:   boundaries[i+1].AddDays(-1),
		})
	}
	return intervals
}
