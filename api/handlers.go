/*
handlers.go - HTTP API handlers for the date range engine

PURPOSE:
  Exposes date range types, ranges, the generator, the period-filtered
  entries and the autogeneration sweep via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Types:
    GET    /api/types                 List types (?include_inactive=true)
    POST   /api/types                 Create type from factory JSON
    GET    /api/types/{id}            Get type with ranges_exist
    GET    /api/types/{id}/defaults   Generator defaults for the type
    GET    /api/types/{id}/preview    Names of the type's scheme this year

  Ranges:
    GET    /api/ranges                List (?type_id=, ?name=, ?name_op=)
    POST   /api/ranges                Create one range by hand
    GET    /api/ranges/{id}           Get range
    DELETE /api/ranges/{id}           Delete range

  Generator:
    POST   /api/generator/preview     Compute ranges, store nothing
    POST   /api/generator/apply       Create ranges, all or nothing

  Entries:
    GET    /api/entries               List (?period=, ?period_op=)
    POST   /api/entries               Create entry
    GET    /api/entries/fields        Field descriptors incl. the period selector
    GET    /api/entries/export        Same listing as xlsx

  Admin:
    POST   /api/admin/autogenerate        Run the sweep now
    GET    /api/admin/autogenerate/runs   Run log (?limit=)

PERIOD FILTER:
  "period" is a range id, a comma separated id list, a range name,
  "true" / "false" or empty. Without the parameter every entry is listed;
  an empty value lists none. "period_op" defaults to "=".

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: User input errors (missing end condition, bad expression...)
  - 404: Type or range not found
  - 409: Constraint violations (overlap, duplicate type, company mismatch),
         the constraint name in "code"
  - 500: Internal errors

SECURITY NOTE:
  No authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - scheduler.go: Autogeneration scheduler
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/warp/daterange-engine/daterange"
	"github.com/warp/daterange-engine/entries"
	"github.com/warp/daterange-engine/export"
	"github.com/warp/daterange-engine/factory"
	"github.com/warp/daterange-engine/metrics"
	"github.com/warp/daterange-engine/search"
	"github.com/warp/daterange-engine/store/sqlite"
	"go.uber.org/zap"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store     *sqlite.Store
	Generator *daterange.Generator
	Types     *factory.TypeFactory
	Entries   *entries.Service
	Scheduler *AutogenerationScheduler
	Logger    *zap.Logger
}

// NewHandler creates a new handler. A nil logger disables logging.
func NewHandler(store *sqlite.Store, gen *daterange.Generator, svc *entries.Service, scheduler *AutogenerationScheduler, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		Store:     store,
		Generator: gen,
		Types:     factory.NewTypeFactory(),
		Entries:   svc,
		Scheduler: scheduler,
		Logger:    logger,
	}
}

// Health pings the database.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Ping(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "Database unavailable", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// TYPE HANDLERS
// =============================================================================

// ListTypes returns the date range types.
func (h *Handler) ListTypes(w http.ResponseWriter, r *http.Request) {
	filter := daterange.TypeFilter{IncludeInactive: r.URL.Query().Get("include_inactive") == "true"}

	types, err := h.Store.ListTypes(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list date range types", err)
		return
	}

	dtos := make([]TypeDTO, 0, len(types))
	for _, t := range types {
		dto, err := h.toTypeDTO(r, t)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to list date range types", err)
			return
		}
		dtos = append(dtos, dto)
	}

	writeJSON(w, http.StatusOK, dtos)
}

// CreateType creates a type from its JSON definition.
func (h *Handler) CreateType(w http.ResponseWriter, r *http.Request) {
	var req factory.TypeJSON
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	h.createType(w, r, req)
}

func (h *Handler) createType(w http.ResponseWriter, r *http.Request, tj factory.TypeJSON) {
	t, err := h.Types.FromJSON(tj)
	if err != nil {
		writeServiceError(w, "Invalid date range type", err)
		return
	}

	id, err := h.Store.CreateType(r.Context(), t)
	if err != nil {
		writeServiceError(w, "Failed to create date range type", err)
		return
	}
	t.ID = id

	h.Logger.Info("date range type created", zap.Int64("id", int64(id)), zap.String("name", t.Name))
	writeJSON(w, http.StatusCreated, TypeDTO{TypeJSON: h.Types.ToJSON(t)})
}

// GetType returns a single type.
func (h *Handler) GetType(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}

	t, err := h.Store.GetType(r.Context(), daterange.TypeID(id))
	if err != nil {
		writeServiceError(w, "Failed to get date range type", err)
		return
	}

	dto, err := h.toTypeDTO(r, *t)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get date range type", err)
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

// TypeDefaults returns the generator request proposed for a type.
func (h *Handler) TypeDefaults(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}

	req, err := h.Generator.Defaults(r.Context(), daterange.TypeID(id))
	if err != nil {
		writeServiceError(w, "Failed to compute generator defaults", err)
		return
	}
	writeJSON(w, http.StatusOK, h.Types.GeneratorToJSON(req))
}

// PreviewType returns the names the type's naming scheme gives this year.
func (h *Handler) PreviewType(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}

	names, err := h.Generator.PreviewType(r.Context(), daterange.TypeID(id))
	if err != nil {
		writeServiceError(w, "Failed to preview names", err)
		return
	}
	writeJSON(w, http.StatusOK, NamesResponse{Names: names})
}

func (h *Handler) toTypeDTO(r *http.Request, t daterange.DateRangeType) (TypeDTO, error) {
	last, err := h.Store.LastRange(r.Context(), t.ID)
	if err != nil {
		return TypeDTO{}, err
	}
	return TypeDTO{TypeJSON: h.Types.ToJSON(t), RangesExist: last != nil}, nil
}

// =============================================================================
// RANGE HANDLERS
// =============================================================================

// ListRanges returns ranges ordered by start date.
func (h *Handler) ListRanges(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var filter daterange.RangeFilter
	if raw := q.Get("type_id"); raw != "" {
		typeID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid type_id", err)
			return
		}
		filter.TypeID = daterange.TypeID(typeID)
	}
	if name := q.Get("name"); name != "" {
		op := q.Get("name_op")
		if op == "" {
			op = daterange.NameILike
		}
		m := daterange.NameMatch{Op: op, Value: name}
		if err := m.Validate(); err != nil {
			writeServiceError(w, "Invalid name filter", err)
			return
		}
		filter.Name = &m
	}

	ranges, err := h.Store.ListRanges(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list date ranges", err)
		return
	}
	writeJSON(w, http.StatusOK, toRangeDTOs(ranges))
}

// CreateRange creates one range by hand. Overlap and date order are
// checked by the store.
func (h *Handler) CreateRange(w http.ResponseWriter, r *http.Request) {
	var req CreateRangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	start, err := daterange.ParseDate(req.DateStart)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date_start", err)
		return
	}
	end, err := daterange.ParseDate(req.DateEnd)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date_end", err)
		return
	}

	dr := daterange.DateRange{
		Name:      req.Name,
		DateStart: start,
		DateEnd:   end,
		TypeID:    daterange.TypeID(req.TypeID),
		CompanyID: daterange.CompanyID(req.CompanyID),
	}
	id, err := h.Store.CreateRange(r.Context(), dr)
	if err != nil {
		writeServiceError(w, "Failed to create date range", err)
		return
	}
	dr.ID = id

	writeJSON(w, http.StatusCreated, toRangeDTO(dr))
}

// GetRange returns a single range.
func (h *Handler) GetRange(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}

	dr, err := h.Store.GetRange(r.Context(), daterange.RangeID(id))
	if err != nil {
		writeServiceError(w, "Failed to get date range", err)
		return
	}
	writeJSON(w, http.StatusOK, toRangeDTO(*dr))
}

// DeleteRange deletes a range.
func (h *Handler) DeleteRange(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}

	if err := h.Store.DeleteRange(r.Context(), daterange.RangeID(id)); err != nil {
		writeServiceError(w, "Failed to delete date range", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// GENERATOR HANDLERS
// =============================================================================

// PreviewGenerator computes the ranges of a request without storing them.
func (h *Handler) PreviewGenerator(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeGenerator(w, r)
	if !ok {
		return
	}

	ranges, err := req.ComputeRanges()
	if err != nil {
		writeServiceError(w, "Failed to compute date ranges", err)
		return
	}
	writeJSON(w, http.StatusOK, GeneratorResponse{Ranges: toRangeDTOs(ranges)})
}

// ApplyGenerator creates every range of a request. Any failure creates
// nothing.
func (h *Handler) ApplyGenerator(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeGenerator(w, r)
	if !ok {
		return
	}

	created, err := h.Generator.Apply(r.Context(), req)
	if err != nil {
		writeServiceError(w, "Failed to generate date ranges", err)
		return
	}

	if t, err := h.Store.GetType(r.Context(), req.TypeID); err == nil {
		metrics.ObserveGenerated(t.Name, len(created))
	}
	writeJSON(w, http.StatusCreated, GeneratorResponse{Ranges: toRangeDTOs(created)})
}

func (h *Handler) decodeGenerator(w http.ResponseWriter, r *http.Request) (daterange.GeneratorRequest, bool) {
	var gj factory.GeneratorJSON
	if err := json.NewDecoder(r.Body).Decode(&gj); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return daterange.GeneratorRequest{}, false
	}

	req, err := h.Types.GeneratorFromJSON(gj)
	if err != nil {
		writeServiceError(w, "Invalid generator request", err)
		return daterange.GeneratorRequest{}, false
	}
	return req, true
}

// =============================================================================
// ENTRY HANDLERS
// =============================================================================

var entryFields = []search.FieldDescriptor{
	{Name: "name", Label: "Name", Type: "char", Stored: true, Searchable: true},
	{Name: entries.DateColumn, Label: "Date", Type: "date", Stored: true, Searchable: true},
	{Name: "amount", Label: "Amount", Type: "monetary", Stored: true},
}

// ListEntries lists entries filtered by period.
func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	listing, ok := h.searchEntries(w, r)
	if !ok {
		return
	}

	dtos := make([]EntryDTO, len(listing.Entries))
	for i, e := range listing.Entries {
		dtos[i] = toEntryDTO(e)
	}
	writeJSON(w, http.StatusOK, EntriesResponse{
		Entries: dtos,
		Filter:  listing.Filter,
		Total:   listing.Total.String(),
	})
}

// CreateEntry creates a host entry.
func (h *Handler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	var req CreateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	date, err := daterange.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}
	amount := decimal.Zero
	if req.Amount != "" {
		if amount, err = decimal.NewFromString(req.Amount); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid amount", err)
			return
		}
	}

	e := entries.Entry{Name: req.Name, Date: date, Amount: amount}
	id, err := h.Store.CreateEntry(r.Context(), e)
	if err != nil {
		writeServiceError(w, "Failed to create entry", err)
		return
	}
	e.ID = id

	writeJSON(w, http.StatusCreated, toEntryDTO(e))
}

// EntryFields describes the entry fields, the period selector included.
func (h *Handler) EntryFields(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, search.WithPeriodField(entryFields))
}

// ExportEntries returns the period-filtered listing as an xlsx workbook.
func (h *Handler) ExportEntries(w http.ResponseWriter, r *http.Request) {
	listing, ok := h.searchEntries(w, r)
	if !ok {
		return
	}

	body, err := export.EntriesXLSX(listing)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to export entries", err)
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="entries.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (h *Handler) searchEntries(w http.ResponseWriter, r *http.Request) (entries.Listing, bool) {
	q := r.URL.Query()

	op := q.Get("period_op")
	if op == "" {
		op = search.OperatorEq
	}
	var value any = true
	if q.Has("period") {
		value = search.ParseValue(q.Get("period"))
	}

	listing, err := h.Entries.Search(r.Context(), op, value)
	metrics.ObserveResolution(string(listing.Kind))
	if err != nil {
		writeServiceError(w, "Failed to search entries", err)
		return entries.Listing{}, false
	}
	return listing, true
}

// =============================================================================
// ADMIN HANDLERS
// =============================================================================

// TriggerAutogeneration runs the autogeneration sweep now.
func (h *Handler) TriggerAutogeneration(w http.ResponseWriter, r *http.Request) {
	run, err := h.Scheduler.RunNow(r.Context())

	resp := AutogenerationResponse{
		RunID:   run.ID,
		Created: run.Report.Count(daterange.SweepCreated),
		Skipped: run.Report.Count(daterange.SweepSkipped),
		Failed:  run.Report.Count(daterange.SweepFailed),
		Runs:    make([]AutogenerationRunDTO, len(run.Runs)),
	}
	for i, line := range run.Runs {
		resp.Runs[i] = toRunDTO(line)
	}
	if next := h.Scheduler.NextRunTime(); !next.IsZero() {
		resp.NextRun = next.Format(time.RFC3339)
	}

	if err != nil {
		resp.Error = err.Error()
		writeJSON(w, http.StatusInternalServerError, resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListAutogenerationRuns returns the run log, most recent first.
func (h *Handler) ListAutogenerationRuns(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit", err)
			return
		}
		limit = n
	}

	runs, err := h.Store.ListAutogenerationRuns(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list autogeneration runs", err)
		return
	}

	dtos := make([]AutogenerationRunDTO, len(runs))
	for i, run := range runs {
		dtos[i] = toRunDTO(run)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeServiceError maps a domain error kind to its status.
func writeServiceError(w http.ResponseWriter, message string, err error) {
	var ce *daterange.ConstraintError
	switch {
	case errors.As(err, &ce):
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: message, Code: ce.Constraint, Details: ce.Message})
	case daterange.IsUserInput(err):
		writeError(w, http.StatusBadRequest, message, err)
	case daterange.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func urlID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "Invalid id", fmt.Errorf("invalid id %q", raw))
		return 0, false
	}
	return id, true
}
