/*
dto.go - Data Transfer Objects for API requests and responses

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Wrappers around lists and summaries

TYPES:
  Types:      TypeDTO (wraps factory.TypeJSON), PresetDTO, CreatePresetRequest
  Ranges:     RangeDTO, CreateRangeRequest
  Generator:  factory.GeneratorJSON in, GeneratorResponse out
  Entries:    EntryDTO, CreateEntryRequest, EntriesResponse
  Sweep:      AutogenerationRunDTO, AutogenerationResponse

  Dates are "YYYY-MM-DD" strings.

VALIDATION:
  Validation is done in handlers and the domain, not in DTOs.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/type.go: TypeJSON, GeneratorJSON
*/
package api

import (
	"time"

	"github.com/warp/daterange-engine/daterange"
	"github.com/warp/daterange-engine/entries"
	"github.com/warp/daterange-engine/factory"
	"github.com/warp/daterange-engine/search"
)

// =============================================================================
// TYPES AND RANGES
// =============================================================================

// PresetDTO describes a ready-made type definition.
type PresetDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Code        string `json:"code"`
	Description string `json:"description"`
}

// CreatePresetRequest overrides the preset defaults. StartMonth only applies
// to fiscal years, Weeks only to pay periods.
type CreatePresetRequest struct {
	Name       string `json:"name,omitempty"`
	Code       string `json:"code,omitempty"`
	CompanyID  int64  `json:"company_id,omitempty"`
	StartMonth int    `json:"start_month,omitempty"`
	Weeks      int    `json:"weeks,omitempty"`
}

// TypeDTO is a date range type with the read-only ranges_exist flag.
type TypeDTO struct {
	factory.TypeJSON
	RangesExist bool `json:"ranges_exist"`
}

// RangeDTO represents a date range in API responses.
type RangeDTO struct {
	ID        int64  `json:"id,omitempty"`
	Name      string `json:"name"`
	DateStart string `json:"date_start"`
	DateEnd   string `json:"date_end"`
	TypeID    int64  `json:"type_id"`
	CompanyID int64  `json:"company_id,omitempty"`
}

// CreateRangeRequest is the body of a manual range creation.
type CreateRangeRequest struct {
	Name      string `json:"name"`
	DateStart string `json:"date_start"`
	DateEnd   string `json:"date_end"`
	TypeID    int64  `json:"type_id"`
	CompanyID int64  `json:"company_id,omitempty"`
}

// GeneratorResponse lists the ranges of a preview or an apply.
type GeneratorResponse struct {
	Ranges []RangeDTO `json:"ranges"`
}

// NamesResponse lists preview names.
type NamesResponse struct {
	Names []string `json:"names"`
}

func toRangeDTO(r daterange.DateRange) RangeDTO {
	return RangeDTO{
		ID:        int64(r.ID),
		Name:      r.Name,
		DateStart: r.DateStart.String(),
		DateEnd:   r.DateEnd.String(),
		TypeID:    int64(r.TypeID),
		CompanyID: int64(r.CompanyID),
	}
}

func toRangeDTOs(ranges []daterange.DateRange) []RangeDTO {
	dtos := make([]RangeDTO, len(ranges))
	for i, r := range ranges {
		dtos[i] = toRangeDTO(r)
	}
	return dtos
}

// =============================================================================
// ENTRIES
// =============================================================================

// EntryDTO represents a host entry with its computed period.
type EntryDTO struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Date     string `json:"date"`
	Amount   string `json:"amount"`
	PeriodID int64  `json:"date_range_search_id,omitempty"`
	Period   string `json:"period,omitempty"`
}

// CreateEntryRequest is the body of an entry creation. Amount is a decimal
// string.
type CreateEntryRequest struct {
	Name   string `json:"name"`
	Date   string `json:"date"`
	Amount string `json:"amount"`
}

// EntriesResponse is a period search result. Filter is the date predicate
// the period value resolved to, in prefix notation.
type EntriesResponse struct {
	Entries []EntryDTO    `json:"entries"`
	Filter  search.Domain `json:"filter"`
	Total   string        `json:"total"`
}

func toEntryDTO(e entries.Entry) EntryDTO {
	return EntryDTO{
		ID:       e.ID,
		Name:     e.Name,
		Date:     e.Date.String(),
		Amount:   e.Amount.String(),
		PeriodID: int64(e.PeriodID),
		Period:   e.PeriodName,
	}
}

// =============================================================================
// AUTOGENERATION
// =============================================================================

// AutogenerationRunDTO is one type's line in the run log.
type AutogenerationRunDTO struct {
	RunID         string `json:"run_id"`
	TypeID        int64  `json:"type_id"`
	TypeName      string `json:"type_name"`
	Outcome       string `json:"outcome"`
	RangesCreated int    `json:"ranges_created"`
	Message       string `json:"message,omitempty"`
	StartedAt     string `json:"started_at"`
	FinishedAt    string `json:"finished_at"`
}

// AutogenerationResponse summarizes a sweep triggered by an admin.
type AutogenerationResponse struct {
	RunID   string                 `json:"run_id"`
	Created int                    `json:"created"`
	Skipped int                    `json:"skipped"`
	Failed  int                    `json:"failed"`
	Runs    []AutogenerationRunDTO `json:"runs"`
	NextRun string                 `json:"next_run,omitempty"`
	Error   string                 `json:"error,omitempty"`
}

func toRunDTO(r daterange.AutogenerationRun) AutogenerationRunDTO {
	return AutogenerationRunDTO{
		RunID:         r.ID,
		TypeID:        int64(r.TypeID),
		TypeName:      r.TypeName,
		Outcome:       string(r.Outcome),
		RangesCreated: r.RangesCreated,
		Message:       r.Message,
		StartedAt:     r.StartedAt.Format(time.RFC3339),
		FinishedAt:    r.FinishedAt.Format(time.RFC3339),
	}
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}
