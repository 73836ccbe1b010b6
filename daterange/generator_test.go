package daterange_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/daterange-engine/daterange"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func date(year int, month time.Month, day int) daterange.Date {
	return daterange.NewDate(year, month, day)
}

func intervals(t *testing.T, start daterange.Date, unit daterange.Unit, step int, end daterange.Date, count int) []daterange.Interval {
	t.Helper()
	boundaries, err := daterange.GenerateIntervals(start, unit, step, end, count)
	require.NoError(t, err)
	return daterange.IntervalsFromBoundaries(boundaries)
}

// =============================================================================
// COUNT MODE
// =============================================================================

func TestGenerateIntervals_Count_ContiguousIntervals(t *testing.T) {
	cases := []struct {
		name  string
		start daterange.Date
		unit  daterange.Unit
		step  int
		count int
	}{
		{"quarters", date(2025, time.January, 1), daterange.UnitMonths, 3, 4},
		{"years", date(2020, time.April, 1), daterange.UnitYears, 1, 5},
		{"fortnights", date(2025, time.January, 6), daterange.UnitWeeks, 2, 26},
		{"days", date(2024, time.February, 27), daterange.UnitDays, 1, 5},
		{"month ends", date(2025, time.January, 31), daterange.UnitMonths, 1, 12},
		{"leap day", date(2024, time.February, 29), daterange.UnitYears, 1, 4},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ivs := intervals(t, tc.start, tc.unit, tc.step, daterange.Date{}, tc.count)

			require.Len(t, ivs, tc.count)
			assert.True(t, ivs[0].Start.Equal(tc.start))
			for i, iv := range ivs {
				assert.True(t, iv.Start.BeforeOrEqual(iv.End), "interval %d %s", i, iv)
				if i+1 < len(ivs) {
					assert.True(t, iv.End.Equal(ivs[i+1].Start.AddDays(-1)),
						"interval %d ends %s, next starts %s", i, iv.End, ivs[i+1].Start)
					assert.False(t, iv.Overlaps(ivs[i+1]))
				}
			}
		})
	}
}

func TestGenerateIntervals_Quarters(t *testing.T) {
	ivs := intervals(t, date(2025, time.January, 1), daterange.UnitMonths, 3, daterange.Date{}, 4)

	expected := []daterange.Interval{
		{Start: date(2025, time.January, 1), End: date(2025, time.March, 31)},
		{Start: date(2025, time.April, 1), End: date(2025, time.June, 30)},
		{Start: date(2025, time.July, 1), End: date(2025, time.September, 30)},
		{Start: date(2025, time.October, 1), End: date(2025, time.December, 31)},
	}
	assert.Equal(t, expected, ivs)
}

func TestGenerateIntervals_MonthEndDoesNotDrift(t *testing.T) {
	boundaries, err := daterange.GenerateIntervals(date(2025, time.January, 31), daterange.UnitMonths, 1, daterange.Date{}, 3)
	require.NoError(t, err)

	assert.Equal(t, []daterange.Date{
		date(2025, time.January, 31),
		date(2025, time.February, 28),
		date(2025, time.March, 31),
		date(2025, time.April, 30),
	}, boundaries)
}

// =============================================================================
// END DATE MODE
// =============================================================================

func TestGenerateIntervals_EndDate_LastEndWithinOneStep(t *testing.T) {
	cases := []struct {
		name  string
		unit  daterange.Unit
		step  int
		end   daterange.Date
		count int
	}{
		{"exact year end", daterange.UnitMonths, 1, date(2021, time.December, 31), 12},
		{"mid month", daterange.UnitMonths, 1, date(2021, time.December, 15), 11},
		{"weeks", daterange.UnitWeeks, 1, date(2021, time.February, 1), 4},
		{"two years", daterange.UnitYears, 2, date(2026, time.June, 30), 2},
		{"single day", daterange.UnitDays, 1, date(2021, time.January, 1), 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			start := date(2021, time.January, 1)
			ivs := intervals(t, start, tc.unit, tc.step, tc.end, 0)

			require.Len(t, ivs, tc.count)
			last := ivs[len(ivs)-1]
			assert.True(t, last.End.BeforeOrEqual(tc.end), "last end %s after %s", last.End, tc.end)
			assert.True(t, last.End.AfterOrEqual(tc.unit.Add(tc.end, -tc.step)),
				"last end %s more than one step before %s", last.End, tc.end)
		})
	}
}

func TestGenerateIntervals_EndBeforeFirstInterval_NoRanges(t *testing.T) {
	_, err := daterange.GenerateIntervals(date(2025, time.January, 1), daterange.UnitMonths, 1, date(2025, time.January, 15), 0)

	require.Error(t, err)
	assert.True(t, daterange.IsUserInput(err))
	assert.Equal(t, daterange.MsgNoRanges, err.Error())
}

// =============================================================================
// VALIDATION
// =============================================================================

func TestGenerateIntervals_Validation(t *testing.T) {
	start := date(2025, time.January, 1)
	end := date(2025, time.December, 31)

	cases := []struct {
		name    string
		start   daterange.Date
		unit    daterange.Unit
		step    int
		end     daterange.Date
		count   int
		message string
	}{
		{"no end condition", start, daterange.UnitMonths, 1, daterange.Date{}, 0, daterange.MsgMissingEndCondition},
		{"both end conditions", start, daterange.UnitMonths, 1, end, 3, daterange.MsgBothEndConditions},
		{"bad unit", start, daterange.Unit("hours"), 1, end, 0, `unknown unit of time "hours"`},
		{"zero step", start, daterange.UnitMonths, 0, end, 0, "the duration must be at least 1"},
		{"no start", daterange.Date{}, daterange.UnitMonths, 1, end, 0, "please enter a start date"},
		{"huge step", start, daterange.UnitYears, 1 << 40, daterange.Date{}, 3, "the duration can't exceed 10000 years"},
		{"huge step until end", start, daterange.UnitMonths, 1 << 40, end, 0, "the duration can't exceed 10000 months"},
		{"past the calendar", start, daterange.UnitYears, 5000, daterange.Date{}, 2, daterange.MsgOutOfCalendar},
		{"past the calendar until end", start, daterange.UnitYears, 9000, date(9999, time.December, 31), 0, daterange.MsgOutOfCalendar},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := daterange.GenerateIntervals(tc.start, tc.unit, tc.step, tc.end, tc.count)
			require.Error(t, err)
			assert.True(t, daterange.IsUserInput(err))
			assert.Equal(t, tc.message, err.Error())
		})
	}
}

func TestGenerateIntervals_LargestStep_BoundariesIncrease(t *testing.T) {
	boundaries, err := daterange.GenerateIntervals(date(2025, time.January, 1), daterange.UnitMonths, daterange.MaxIntervals, daterange.Date{}, 5)
	require.NoError(t, err)

	require.Len(t, boundaries, 6)
	for i := 1; i < len(boundaries); i++ {
		assert.True(t, boundaries[i].After(boundaries[i-1]), "boundary %d %s", i, boundaries[i])
	}
	assert.Equal(t, date(6191, time.September, 1), boundaries[5])
}

// =============================================================================
// REQUEST -> RANGES
// =============================================================================

func TestGeneratorRequest_ComputeRanges(t *testing.T) {
	req := daterange.GeneratorRequest{
		DateStart:     date(2025, time.January, 1),
		Count:         2,
		UnitOfTime:    daterange.UnitMonths,
		DurationCount: 6,
		NamePrefix:    "H",
		TypeID:        7,
		CompanyID:     3,
	}

	ranges, err := req.ComputeRanges()
	require.NoError(t, err)

	assert.Equal(t, []daterange.DateRange{
		{Name: "H1", DateStart: date(2025, time.January, 1), DateEnd: date(2025, time.June, 30), TypeID: 7, CompanyID: 3},
		{Name: "H2", DateStart: date(2025, time.July, 1), DateEnd: date(2025, time.December, 31), TypeID: 7, CompanyID: 3},
	}, ranges)
}

func TestGeneratorRequest_CheckCompany(t *testing.T) {
	typ := daterange.DateRangeType{ID: 1, Name: "FY", CompanyID: 2}

	assert.NoError(t, daterange.GeneratorRequest{CompanyID: 2}.CheckCompany(typ))
	assert.NoError(t, daterange.GeneratorRequest{}.CheckCompany(typ))
	assert.NoError(t, daterange.GeneratorRequest{CompanyID: 5}.CheckCompany(daterange.DateRangeType{}))

	err := daterange.GeneratorRequest{CompanyID: 5}.CheckCompany(typ)
	require.Error(t, err)
	assert.True(t, daterange.IsConstraint(err))
}
