/*
presets.go - Ready-made date range types

PURPOSE:
  Lists the preset type definitions of package factory and creates a type
  from one of them, so a company can set up fiscal years or quarters
  without writing the JSON by hand.

AVAILABLE PRESETS:
  fiscal-year:   Yearly ranges named "FY2026", starting in start_month
  quarter:       Calendar quarters named "2026 Q1"
  month:         Months named with prefix + index
  pay-period:    Manual pay periods of weeks weeks
  rolling-year:  Overlapping 12 month windows

USAGE VIA API:
  GET  /api/types/presets
  POST /api/types/presets/quarter
  {"name": "Quarters", "code": "Q", "company_id": 2}

  Every body field is optional; the preset name and code are used when
  absent.

SEE ALSO:
  - factory/presets.go: the preset JSON definitions
  - handlers.go: CreateType shares createType with CreatePreset
*/
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/warp/daterange-engine/factory"
)

// =============================================================================
// PRESET DEFINITIONS
// =============================================================================

type preset struct {
	PresetDTO
	build func(req CreatePresetRequest) string
}

var presets = []preset{
	{
		PresetDTO: PresetDTO{
			ID:          "fiscal-year",
			Name:        "Fiscal year",
			Code:        "FY",
			Description: "Yearly ranges named after their starting year, generated one year ahead",
		},
		build: func(req CreatePresetRequest) string {
			month := time.January
			if req.StartMonth >= 1 && req.StartMonth <= 12 {
				month = time.Month(req.StartMonth)
			}
			return factory.FiscalYearTypeJSON(req.Name, req.Code, month)
		},
	},
	{
		PresetDTO: PresetDTO{
			ID:          "quarter",
			Name:        "Quarters",
			Code:        "Q",
			Description: "Calendar quarters, generated three months ahead",
		},
		build: func(req CreatePresetRequest) string {
			return factory.QuarterTypeJSON(req.Name, req.Code)
		},
	},
	{
		PresetDTO: PresetDTO{
			ID:          "month",
			Name:        "Months",
			Code:        "M",
			Description: "Months named with the code and their index, generated one month ahead",
		},
		build: func(req CreatePresetRequest) string {
			return factory.MonthTypeJSON(req.Name, req.Code, req.Code)
		},
	},
	{
		PresetDTO: PresetDTO{
			ID:          "pay-period",
			Name:        "Pay periods",
			Code:        "PP",
			Description: "Pay periods of a fixed number of weeks, generated manually",
		},
		build: func(req CreatePresetRequest) string {
			weeks := req.Weeks
			if weeks <= 0 {
				weeks = 2
			}
			return factory.PayPeriodTypeJSON(req.Name, req.Code, weeks)
		},
	},
	{
		PresetDTO: PresetDTO{
			ID:          "rolling-year",
			Name:        "Rolling years",
			Code:        "RY",
			Description: "Overlapping 12 month windows",
		},
		build: func(req CreatePresetRequest) string {
			return factory.RollingYearTypeJSON(req.Name, req.Code)
		},
	},
}

func findPreset(id string) (preset, bool) {
	for _, p := range presets {
		if p.ID == id {
			return p, true
		}
	}
	return preset{}, false
}

// =============================================================================
// HANDLERS
// =============================================================================

// ListPresets returns the available presets.
func (h *Handler) ListPresets(w http.ResponseWriter, r *http.Request) {
	out := make([]PresetDTO, len(presets))
	for i, p := range presets {
		out[i] = p.PresetDTO
	}
	writeJSON(w, http.StatusOK, out)
}

// CreatePreset creates a type from a preset. The body is optional.
func (h *Handler) CreatePreset(w http.ResponseWriter, r *http.Request) {
	p, ok := findPreset(chi.URLParam(r, "preset"))
	if !ok {
		writeError(w, http.StatusNotFound, "Unknown preset", nil)
		return
	}

	var req CreatePresetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		req.Name = p.Name
	}
	if req.Code == "" {
		req.Code = p.Code
	}

	var tj factory.TypeJSON
	if err := json.Unmarshal([]byte(p.build(req)), &tj); err != nil {
		writeError(w, http.StatusInternalServerError, "Invalid preset definition", err)
		return
	}
	tj.CompanyID = req.CompanyID

	h.createType(w, r, tj)
}
