/*
handlers_test.go - HTTP tests for the API handlers

Tests for:
- Type creation, lookup and the duplicate constraint
- Generator preview / apply and the all-or-nothing overlap rule
- Entries filtered by period, field descriptors and xlsx export
- The admin autogeneration trigger and its run log
*/
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/daterange-engine/daterange"
	"github.com/warp/daterange-engine/entries"
	"github.com/warp/daterange-engine/export"
	"github.com/warp/daterange-engine/factory"
	"github.com/warp/daterange-engine/search"
	"github.com/warp/daterange-engine/store/sqlite"
	"github.com/xuri/excelize/v2"
)

// =============================================================================
// TEST SETUP
// =============================================================================

var today = time.Date(2026, time.October, 19, 10, 0, 0, 0, time.UTC)

func newTestRouter(t *testing.T) (*chi.Mux, *sqlite.Store) {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	gen := daterange.NewGenerator(store, nil)
	gen.Now = func() time.Time { return today }

	svc := &entries.Service{
		Store:    store,
		Resolver: search.NewResolver(entries.DateColumn, store),
		Assigner: &search.Assigner{
			Types: store, Query: store,
			Table: entries.Table, DateColumn: entries.DateColumn,
			TypeCode: "H",
		},
		Ranges: store,
	}
	scheduler := NewAutogenerationScheduler(gen, store, "@daily", nil)

	h := NewHandler(store, gen, svc, scheduler, nil)
	return NewRouter(h, nil), store
}

func do(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func createType(t *testing.T, router http.Handler, body string) int64 {
	t.Helper()
	rec := do(t, router, http.MethodPost, "/api/types", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[TypeDTO](t, rec).ID
}

func createRange(t *testing.T, router http.Handler, typeID int64, name, start, end string) int64 {
	t.Helper()
	rec := do(t, router, http.MethodPost, "/api/ranges", fmt.Sprintf(
		`{"name": %q, "type_id": %d, "date_start": %q, "date_end": %q}`, name, typeID, start, end))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[RangeDTO](t, rec).ID
}

// =============================================================================
// TYPES
// =============================================================================

func TestCreateType_AndGet(t *testing.T) {
	router, _ := newTestRouter(t)

	id := createType(t, router, factory.MonthTypeJSON("Months", "M", "M"))
	require.Greater(t, id, int64(0))

	rec := do(t, router, http.MethodGet, fmt.Sprintf("/api/types/%d", id), "")
	require.Equal(t, http.StatusOK, rec.Code)
	dto := decode[TypeDTO](t, rec)
	assert.Equal(t, "Months", dto.Name)
	assert.False(t, dto.RangesExist)
	require.NotNil(t, dto.Naming)
	assert.Equal(t, "M", dto.Naming.Prefix)

	list := decode[[]TypeDTO](t, do(t, router, http.MethodGet, "/api/types", ""))
	assert.Len(t, list, 1)
}

func TestCreateType_DuplicateIsConflict(t *testing.T) {
	router, _ := newTestRouter(t)
	createType(t, router, factory.MonthTypeJSON("Months", "M", "M"))

	rec := do(t, router, http.MethodPost, "/api/types", factory.MonthTypeJSON("Months", "M2", "M"))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, daterange.ConstraintTypeUnique, decode[ErrorResponse](t, rec).Code)
}

func TestCreateType_InvalidIsBadRequest(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/api/types", `{"name": "X", "duration": {"count": 1, "unit": "hours"}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, http.MethodPost, "/api/types", `{"name": `)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPresets_ListAndCreate(t *testing.T) {
	router, _ := newTestRouter(t)

	list := decode[[]PresetDTO](t, do(t, router, http.MethodGet, "/api/types/presets", ""))
	require.Len(t, list, 5)
	assert.Equal(t, "fiscal-year", list[0].ID)

	// without a body the preset name and code are used
	rec := do(t, router, http.MethodPost, "/api/types/presets/quarter", "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	quarters := decode[TypeDTO](t, rec)
	assert.Equal(t, "Quarters", quarters.Name)
	assert.Equal(t, "Q", quarters.Code)
	require.NotNil(t, quarters.Duration)
	assert.Equal(t, 3, quarters.Duration.Count)
	require.NotNil(t, quarters.Naming)
	assert.NotEmpty(t, quarters.Naming.Expression)

	rec = do(t, router, http.MethodPost, "/api/types/presets/pay-period",
		`{"name": "Biweekly", "code": "BW", "company_id": 2, "weeks": 4}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	pay := decode[TypeDTO](t, rec)
	assert.Equal(t, "Biweekly", pay.Name)
	assert.Equal(t, int64(2), pay.CompanyID)
	require.NotNil(t, pay.Duration)
	assert.Equal(t, 4, pay.Duration.Count)
	assert.Equal(t, "weeks", pay.Duration.Unit)
	assert.Nil(t, pay.Autogeneration)

	// the created type is stored like any other
	got := decode[TypeDTO](t, do(t, router, http.MethodGet, fmt.Sprintf("/api/types/%d", quarters.ID), ""))
	assert.Equal(t, "Quarters", got.Name)

	rec = do(t, router, http.MethodPost, "/api/types/presets/quarter", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, daterange.ConstraintTypeUnique, decode[ErrorResponse](t, rec).Code)

	rec = do(t, router, http.MethodPost, "/api/types/presets/decade", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, router, http.MethodPost, "/api/types/presets/month", `{"name": `)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetType_NotFoundAndBadID(t *testing.T) {
	router, _ := newTestRouter(t)

	assert.Equal(t, http.StatusNotFound, do(t, router, http.MethodGet, "/api/types/999", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, router, http.MethodGet, "/api/types/abc", "").Code)
}

func TestTypeDefaultsAndPreview(t *testing.T) {
	router, _ := newTestRouter(t)
	id := createType(t, router, `{
		"name": "Fiscal year",
		"naming": {"expression": "\"FY\" + date_start.Format(\"2006\")"},
		"duration": {"count": 1, "unit": "years"},
		"autogeneration": {"date_start": "2026-01-01", "count": 1, "unit": "years"}
	}`)

	rec := do(t, router, http.MethodGet, fmt.Sprintf("/api/types/%d/defaults", id), "")
	require.Equal(t, http.StatusOK, rec.Code)
	defaults := decode[factory.GeneratorJSON](t, rec)
	assert.Equal(t, id, defaults.TypeID)
	assert.Equal(t, "2026-01-01", defaults.DateStart)
	assert.Equal(t, "2027-10-19", defaults.DateEnd)
	assert.Equal(t, "years", defaults.Duration.Unit)
	assert.Equal(t, "", defaults.Naming.Prefix)

	rec = do(t, router, http.MethodGet, fmt.Sprintf("/api/types/%d/preview", id), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"FY2026"}, decode[NamesResponse](t, rec).Names)
}

// =============================================================================
// GENERATOR
// =============================================================================

func quarterRequest(typeID int64) string {
	return fmt.Sprintf(`{
		"type_id": %d,
		"date_start": "2025-01-01",
		"count": 4,
		"duration": {"count": 3, "unit": "months"},
		"naming": {"prefix": "Q"}
	}`, typeID)
}

func TestGenerator_PreviewStoresNothing(t *testing.T) {
	router, _ := newTestRouter(t)
	id := createType(t, router, `{"name": "Quarters"}`)

	rec := do(t, router, http.MethodPost, "/api/generator/preview", quarterRequest(id))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	ranges := decode[GeneratorResponse](t, rec).Ranges
	require.Len(t, ranges, 4)
	assert.Equal(t, "Q1", ranges[0].Name)
	assert.Equal(t, "2025-03-31", ranges[0].DateEnd)
	assert.Equal(t, "2025-12-31", ranges[3].DateEnd)

	stored := decode[[]RangeDTO](t, do(t, router, http.MethodGet, fmt.Sprintf("/api/ranges?type_id=%d", id), ""))
	assert.Empty(t, stored)
}

func TestGenerator_ApplyIsAllOrNothing(t *testing.T) {
	router, _ := newTestRouter(t)
	id := createType(t, router, `{"name": "Quarters"}`)

	// GIVEN: the quarters of 2025 applied once
	rec := do(t, router, http.MethodPost, "/api/generator/apply", quarterRequest(id))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[GeneratorResponse](t, rec).Ranges
	require.Len(t, created, 4)
	assert.NotZero(t, created[0].ID)

	// WHEN: a request whose last month overlaps Q1 is applied
	rec = do(t, router, http.MethodPost, "/api/generator/apply", fmt.Sprintf(`{
		"type_id": %d, "date_start": "2024-11-01", "count": 3,
		"duration": {"count": 1, "unit": "months"}, "naming": {"prefix": "X"}
	}`, id))

	// THEN: it is rejected and its November and December are not kept
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, daterange.ConstraintOverlap, decode[ErrorResponse](t, rec).Code)

	stored := decode[[]RangeDTO](t, do(t, router, http.MethodGet, fmt.Sprintf("/api/ranges?type_id=%d", id), ""))
	assert.Len(t, stored, 4)

	dto := decode[TypeDTO](t, do(t, router, http.MethodGet, fmt.Sprintf("/api/types/%d", id), ""))
	assert.True(t, dto.RangesExist)
}

func TestGenerator_UserInputErrors(t *testing.T) {
	router, _ := newTestRouter(t)
	id := createType(t, router, `{"name": "Quarters"}`)

	cases := map[string]string{
		"no end condition": fmt.Sprintf(`{"type_id": %d, "date_start": "2025-01-01", "duration": {"count": 1, "unit": "months"}, "naming": {"prefix": "M"}}`, id),
		"no naming":        fmt.Sprintf(`{"type_id": %d, "date_start": "2025-01-01", "count": 2, "duration": {"count": 1, "unit": "months"}}`, id),
		"bad expression":   fmt.Sprintf(`{"type_id": %d, "date_start": "2025-01-01", "count": 2, "duration": {"count": 1, "unit": "months"}, "naming": {"expression": "\"FY\" +"}}`, id),
		"no type":          `{"date_start": "2025-01-01", "count": 2, "duration": {"count": 1, "unit": "months"}, "naming": {"prefix": "M"}}`,
		"huge duration":    fmt.Sprintf(`{"type_id": %d, "date_start": "2021-01-01", "count": 3, "duration": {"count": 1099511627776, "unit": "years"}, "naming": {"prefix": "Y"}}`, id),
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rec := do(t, router, http.MethodPost, "/api/generator/preview", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}

func TestGenerator_ApplyHugeDurationIsUserInput(t *testing.T) {
	router, _ := newTestRouter(t)
	id := createType(t, router, `{"name": "Eras"}`)

	rec := do(t, router, http.MethodPost, "/api/generator/apply", fmt.Sprintf(`{
		"type_id": %d, "date_start": "2021-01-01", "count": 3,
		"duration": {"count": 5000, "unit": "years"}, "naming": {"prefix": "E"}
	}`, id))

	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	assert.Equal(t, daterange.MsgOutOfCalendar, decode[ErrorResponse](t, rec).Details)

	stored := decode[[]RangeDTO](t, do(t, router, http.MethodGet, fmt.Sprintf("/api/ranges?type_id=%d", id), ""))
	assert.Empty(t, stored)
}

// =============================================================================
// RANGES
// =============================================================================

func TestRanges_CreateGetDelete(t *testing.T) {
	router, _ := newTestRouter(t)
	typeID := createType(t, router, `{"name": "Halves"}`)

	id := createRange(t, router, typeID, "2021 H1", "2021-01-01", "2021-06-30")

	rec := do(t, router, http.MethodGet, fmt.Sprintf("/api/ranges/%d", id), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2021 H1", decode[RangeDTO](t, rec).Name)

	// start after end violates the date order constraint
	rec = do(t, router, http.MethodPost, "/api/ranges", fmt.Sprintf(
		`{"name": "bad", "type_id": %d, "date_start": "2022-02-01", "date_end": "2022-01-01"}`, typeID))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, daterange.ConstraintDateOrder, decode[ErrorResponse](t, rec).Code)

	byName := decode[[]RangeDTO](t, do(t, router, http.MethodGet, "/api/ranges?name=h1", ""))
	assert.Len(t, byName, 1)
	assert.Equal(t, http.StatusBadRequest, do(t, router, http.MethodGet, "/api/ranges?name=h1&name_op=child_of", "").Code)

	assert.Equal(t, http.StatusNoContent, do(t, router, http.MethodDelete, fmt.Sprintf("/api/ranges/%d", id), "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, router, http.MethodGet, fmt.Sprintf("/api/ranges/%d", id), "").Code)
}

// =============================================================================
// ENTRIES
// =============================================================================

// seedEntries stores the halves of 2021 under the assignment type "H" and
// one entry per half plus one in 2022.
func seedEntries(t *testing.T, router http.Handler) (int64, int64) {
	t.Helper()
	typeID := createType(t, router, `{"name": "Halves", "code": "H"}`)
	h1 := createRange(t, router, typeID, "2021 H1", "2021-01-01", "2021-06-30")
	h2 := createRange(t, router, typeID, "2021 H2", "2021-07-01", "2021-12-31")

	for _, body := range []string{
		`{"name": "Hosting", "date": "2021-03-15", "amount": "100.25"}`,
		`{"name": "Audit", "date": "2021-09-01", "amount": "50"}`,
		`{"name": "Licences", "date": "2022-01-03", "amount": "10"}`,
	} {
		rec := do(t, router, http.MethodPost, "/api/entries", body)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}
	return h1, h2
}

func TestListEntries_ByPeriod(t *testing.T) {
	router, _ := newTestRouter(t)
	h1, h2 := seedEntries(t, router)

	// one range
	rec := do(t, router, http.MethodGet, fmt.Sprintf("/api/entries?period=%d", h1), "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[EntriesResponse](t, rec)
	require.Len(t, resp.Entries, 1)
	assert.Equal(t, "Hosting", resp.Entries[0].Name)
	assert.Equal(t, "2021 H1", resp.Entries[0].Period)
	assert.Equal(t, "100.25", resp.Total)

	// both ranges, as an id list
	resp = decode[EntriesResponse](t, do(t, router, http.MethodGet, fmt.Sprintf("/api/entries?period=%d,%d", h1, h2), ""))
	assert.Len(t, resp.Entries, 2)
	assert.Equal(t, "150.25", resp.Total)

	// by name
	resp = decode[EntriesResponse](t, do(t, router, http.MethodGet, "/api/entries?period=h2&period_op=ilike", ""))
	require.Len(t, resp.Entries, 1)
	assert.Equal(t, "Audit", resp.Entries[0].Name)
}

func TestListEntries_WithoutAndEmptyPeriod(t *testing.T) {
	router, _ := newTestRouter(t)
	seedEntries(t, router)

	all := decode[EntriesResponse](t, do(t, router, http.MethodGet, "/api/entries", ""))
	assert.Len(t, all.Entries, 3)
	assert.Equal(t, "160.25", all.Total)

	none := decode[EntriesResponse](t, do(t, router, http.MethodGet, "/api/entries?period=", ""))
	assert.Empty(t, none.Entries)

	negated := decode[EntriesResponse](t, do(t, router, http.MethodGet, "/api/entries?period=&period_op=!%3D", ""))
	assert.Len(t, negated.Entries, 3)
}

func TestListEntries_FilterIsPrefixDomain(t *testing.T) {
	router, _ := newTestRouter(t)
	h1, _ := seedEntries(t, router)

	rec := do(t, router, http.MethodGet, fmt.Sprintf("/api/entries?period=%d", h1), "")
	var raw struct {
		Filter json.RawMessage `json:"filter"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	assert.JSONEq(t, `["&", ["date", ">=", "2021-01-01"], ["date", "<=", "2021-06-30"]]`, string(raw.Filter))
}

func TestCreateEntry_Invalid(t *testing.T) {
	router, _ := newTestRouter(t)

	assert.Equal(t, http.StatusBadRequest, do(t, router, http.MethodPost, "/api/entries", `{"name": "x", "date": "03/15/2021"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, router, http.MethodPost, "/api/entries", `{"name": "x", "date": "2021-03-15", "amount": "ten"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, router, http.MethodPost, "/api/entries", `{"date": "2021-03-15"}`).Code)
}

func TestEntryFields(t *testing.T) {
	router, _ := newTestRouter(t)

	fields := decode[[]search.FieldDescriptor](t, do(t, router, http.MethodGet, "/api/entries/fields", ""))

	last := fields[len(fields)-1]
	assert.Equal(t, search.PeriodFieldName, last.Name)
	assert.Equal(t, "Period", last.Label)
	assert.False(t, last.Stored)
}

func TestExportEntries(t *testing.T) {
	router, _ := newTestRouter(t)
	h1, _ := seedEntries(t, router)

	rec := do(t, router, http.MethodGet, fmt.Sprintf("/api/entries/export?period=%d", h1), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, export.ContentType, rec.Header().Get("Content-Type"))

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(export.Sheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Period", rows[0][3])
	assert.Equal(t, "2021 H1", rows[1][3])
}

// =============================================================================
// ADMIN
// =============================================================================

func TestTriggerAutogeneration(t *testing.T) {
	router, _ := newTestRouter(t)
	createType(t, router, factory.MonthTypeJSON("Months", "M", "M"))
	createType(t, router, `{"name": "Manual", "naming": {"prefix": "X"}, "duration": {"count": 1, "unit": "days"}}`)

	// WHEN: the sweep runs on 2026-10-19 with a one month horizon
	rec := do(t, router, http.MethodPost, "/api/admin/autogenerate", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// THEN: Jan..Oct 2026 were created for the only autogenerating type
	resp := decode[AutogenerationResponse](t, rec)
	assert.NotEmpty(t, resp.RunID)
	assert.Equal(t, 1, resp.Created)
	require.Len(t, resp.Runs, 1)
	assert.Equal(t, "Months", resp.Runs[0].TypeName)
	assert.Equal(t, 10, resp.Runs[0].RangesCreated)

	// a second sweep has nothing due: November doesn't end before Nov 19
	second := decode[AutogenerationResponse](t, do(t, router, http.MethodPost, "/api/admin/autogenerate", ""))
	assert.Equal(t, 0, second.Created)
	assert.Equal(t, 1, second.Skipped+second.Failed)
	assert.NotEqual(t, resp.RunID, second.RunID)

	runs := decode[[]AutogenerationRunDTO](t, do(t, router, http.MethodGet, "/api/admin/autogenerate/runs", ""))
	require.Len(t, runs, 2)
	ids := []string{runs[0].RunID, runs[1].RunID}
	assert.ElementsMatch(t, []string{resp.RunID, second.RunID}, ids)

	assert.Equal(t, http.StatusBadRequest, do(t, router, http.MethodGet, "/api/admin/autogenerate/runs?limit=x", "").Code)
}

func TestHealthAndMetrics(t *testing.T) {
	router, _ := newTestRouter(t)

	assert.Equal(t, http.StatusOK, do(t, router, http.MethodGet, "/api/health", "").Code)

	rec := do(t, router, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "daterange_http_requests_total")
}
