package daterange_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/daterange-engine/daterange"
)

func TestIndexLabels_PaddedToIntervalCount(t *testing.T) {
	assert.Equal(t, []string{"1", "2", "3"}, daterange.IndexLabels(3))

	ten := daterange.IndexLabels(10)
	assert.Equal(t, "01", ten[0])
	assert.Equal(t, "09", ten[8])
	assert.Equal(t, "10", ten[9])

	for _, n := range []int{1, 9, 10, 99, 100, 365} {
		width := len(daterange.IndexLabels(n)[n-1])
		for _, label := range daterange.IndexLabels(n) {
			assert.Len(t, label, width, "n=%d", n)
		}
	}
}

func TestGenerateNames_Prefix(t *testing.T) {
	ivs := intervals(t, date(2025, time.January, 1), daterange.UnitMonths, 1, daterange.Date{}, 12)

	names, err := daterange.GenerateNames(ivs, "", "M")
	require.NoError(t, err)

	require.Len(t, names, 12)
	assert.Equal(t, "M01", names[0])
	assert.Equal(t, "M12", names[11])
}

func TestGenerateNames_Expression(t *testing.T) {
	ivs := intervals(t, date(2025, time.January, 1), daterange.UnitMonths, 3, daterange.Date{}, 4)

	names, err := daterange.GenerateNames(ivs,
		`"Q" + index + " " + date_start.Format("Jan") + "-" + date_end.Format("Jan 2006")`, "")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Q1 Jan-Mar 2025",
		"Q2 Apr-Jun 2025",
		"Q3 Jul-Sep 2025",
		"Q4 Oct-Dec 2025",
	}, names)
}

func TestGenerateNames_ExpressionWinsOverPrefix(t *testing.T) {
	ivs := intervals(t, date(2024, time.April, 1), daterange.UnitYears, 1, daterange.Date{}, 2)

	names, err := daterange.GenerateNames(ivs, `"FY" + date_start.Format("20060102")`, "ignored")
	require.NoError(t, err)

	assert.Equal(t, []string{"FY20240401", "FY20250401"}, names)
}

func TestGenerateNames_Idempotent(t *testing.T) {
	ivs := intervals(t, date(2025, time.January, 1), daterange.UnitWeeks, 1, daterange.Date{}, 10)

	for _, scheme := range []struct{ expr, prefix string }{
		{"", "W"},
		{`index + "/" + date_end.Format("2006-01-02")`, ""},
	} {
		first, err := daterange.GenerateNames(ivs, scheme.expr, scheme.prefix)
		require.NoError(t, err)
		second, err := daterange.GenerateNames(ivs, scheme.expr, scheme.prefix)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	}
}

func TestGenerateNames_NoScheme(t *testing.T) {
	ivs := intervals(t, date(2025, time.January, 1), daterange.UnitYears, 1, daterange.Date{}, 1)

	_, err := daterange.GenerateNames(ivs, "", "")

	require.Error(t, err)
	assert.True(t, daterange.IsUserInput(err))
	assert.Equal(t, daterange.MsgMissingNaming, err.Error())
}

func TestGenerateNames_InvalidExpression(t *testing.T) {
	ivs := intervals(t, date(2025, time.January, 1), daterange.UnitYears, 1, daterange.Date{}, 1)

	cases := map[string]string{
		"syntax error":     `"FY" +`,
		"unknown variable": `"FY" + company`,
		"not a string":     `1 + 2`,
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := daterange.GenerateNames(ivs, src, "")
			require.Error(t, err)
			assert.True(t, daterange.IsUserInput(err))
			assert.True(t, strings.HasPrefix(err.Error(), "invalid name expression: "), err.Error())
		})
	}
}

func TestPreviewTypeNames_CurrentYear(t *testing.T) {
	typ := daterange.DateRangeType{Name: "FY", NameExpr: `"FY" + date_start.Format("2006") + "-" + date_end.Format("01-02")`}

	names, err := daterange.PreviewTypeNames(typ, date(2026, time.October, 19))
	require.NoError(t, err)

	assert.Equal(t, []string{"FY2026-12-31"}, names)
}
