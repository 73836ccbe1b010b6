package factory

import (
	"encoding/json"
	"time"
)

// =============================================================================
// PRESET TYPES
// =============================================================================

// FiscalYearTypeJSON returns JSON for a yearly type starting in startMonth,
// named "FY" + the starting year and generated one year ahead.
func FiscalYearTypeJSON(name, code string, startMonth time.Month) string {
	tj := map[string]interface{}{
		"name":          name,
		"code":          code,
		"allow_overlap": false,
		"naming": map[string]interface{}{
			"expression": `"FY" + date_start.Format("2006")`,
		},
		"duration": map[string]interface{}{"count": 1, "unit": "years"},
		"autogeneration": map[string]interface{}{
			"date_start": time.Date(time.Now().Year(), startMonth, 1, 0, 0, 0, 0, time.UTC).Format("2006-01-02"),
			"count":      1,
			"unit":       "years",
		},
	}
	b, _ := json.MarshalIndent(tj, "", "  ")
	return string(b)
}

// QuarterTypeJSON returns JSON for calendar quarters ("2025 Q1"...),
// generated three months ahead.
func QuarterTypeJSON(name, code string) string {
	tj := map[string]interface{}{
		"name":          name,
		"code":          code,
		"allow_overlap": false,
		"naming": map[string]interface{}{
			"expression": `date_start.Format("2006") + " Q" + string(int((int(date_start.Format("1")) - 1) / 3) + 1)`,
		},
		"duration": map[string]interface{}{"count": 3, "unit": "months"},
		"autogeneration": map[string]interface{}{
			"count": 3,
			"unit":  "months",
		},
	}
	b, _ := json.MarshalIndent(tj, "", "  ")
	return string(b)
}

// MonthTypeJSON returns JSON for months named with prefix + index.
func MonthTypeJSON(name, code, prefix string) string {
	tj := map[string]interface{}{
		"name":          name,
		"code":          code,
		"allow_overlap": false,
		"naming":        map[string]interface{}{"prefix": prefix},
		"duration":      map[string]interface{}{"count": 1, "unit": "months"},
		"autogeneration": map[string]interface{}{
			"count": 1,
			"unit":  "months",
		},
	}
	b, _ := json.MarshalIndent(tj, "", "  ")
	return string(b)
}

// PayPeriodTypeJSON returns JSON for pay periods of weeks weeks. Pay
// periods are manual: no autogeneration.
func PayPeriodTypeJSON(name, code string, weeks int) string {
	tj := map[string]interface{}{
		"name":          name,
		"code":          code,
		"allow_overlap": false,
		"naming": map[string]interface{}{
			"expression": `"PP" + index + " " + date_start.Format("Jan 2") + "-" + date_end.Format("Jan 2")`,
		},
		"duration": map[string]interface{}{"count": weeks, "unit": "weeks"},
	}
	b, _ := json.MarshalIndent(tj, "", "  ")
	return string(b)
}

// RollingYearTypeJSON returns JSON for overlapping 12 month windows.
func RollingYearTypeJSON(name, code string) string {
	tj := map[string]interface{}{
		"name":          name,
		"code":          code,
		"allow_overlap": true,
		"naming":        map[string]interface{}{"prefix": "R"},
		"duration":      map[string]interface{}{"count": 12, "unit": "months"},
	}
	b, _ := json.MarshalIndent(tj, "", "  ")
	return string(b)
}
