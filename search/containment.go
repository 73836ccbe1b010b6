package search

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/warp/daterange-engine/daterange"
)

// =============================================================================
// CONTAINMENT MAP - record id -> the range of a type containing its date
// =============================================================================

// Querier runs the batched containment query. *sql.DB and *sql.Tx satisfy it.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// RangesTable is the table holding date ranges.
const RangesTable = "date_ranges"

// BuildContainmentQuery returns the single query joining the records of
// table on dateColumn against every range of typeID. An empty ids list
// binds the impossible id 0 so the IN clause stays well formed.
//
// Rows come back ordered so the earliest starting range comes first for
// each record.
func BuildContainmentQuery(table, dateColumn string, typeID daterange.TypeID, ids []int64) (string, []any, error) {
	tbl, err := QuoteIdent(table)
	if err != nil {
		return "", nil, err
	}
	col, err := QuoteIdent(dateColumn)
	if err != nil {
		return "", nil, err
	}
	if len(ids) == 0 {
		ids = []int64{0}
	}

	args := make([]any, 0, len(ids)+1)
	args = append(args, int64(typeID))
	for _, id := range ids {
		args = append(args, id)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")

	query := fmt.Sprintf(`
		SELECT tbl.id, dr.id
		FROM %s AS tbl
		JOIN %s AS dr
			ON tbl.%s BETWEEN dr.date_start AND dr.date_end
		WHERE dr.type_id = ? AND tbl.id IN (%s)
		ORDER BY tbl.id, dr.date_start, dr.id`,
		tbl, RangesTable, col, placeholders)
	return query, args, nil
}

// ComputeContainmentMap maps each record id to the range of typeID that
// contains its date. Records outside every range are absent. When several
// ranges contain a date the earliest starting one wins.
func ComputeContainmentMap(ctx context.Context, q Querier, table, dateColumn string, typeID daterange.TypeID, ids []int64) (map[int64]daterange.RangeID, error) {
	query, args, err := BuildContainmentQuery(table, dateColumn, typeID, ids)
	if err != nil {
		return nil, err
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to compute containing ranges: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]daterange.RangeID)
	for rows.Next() {
		var (
			recordID int64
			rangeID  daterange.RangeID
		)
		if err := rows.Scan(&recordID, &rangeID); err != nil {
			return nil, err
		}
		if _, seen := out[recordID]; !seen {
			out[recordID] = rangeID
		}
	}
	return out, rows.Err()
}

// =============================================================================
// AUTO-ASSIGNMENT
// =============================================================================

// TypeFinder finds the assignment type by code.
type TypeFinder interface {
	FindTypeByCode(ctx context.Context, code string, companyID daterange.CompanyID) (*daterange.DateRangeType, error)
}

// Assigner computes the period selector's value for host records: the range
// of the type with TypeCode (global, no company) containing each record's
// date.
type Assigner struct {
	Types      TypeFinder
	Query      Querier
	Table      string
	DateColumn string
	TypeCode   string
}

// Assign returns record id -> range id. Without a TypeCode, or when no
// global type has that code, the map is empty.
func (a *Assigner) Assign(ctx context.Context, ids []int64) (map[int64]daterange.RangeID, error) {
	if a.TypeCode == "" {
		return map[int64]daterange.RangeID{}, nil
	}
	t, err := a.Types.FindTypeByCode(ctx, a.TypeCode, 0)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return map[int64]daterange.RangeID{}, nil
	}
	return ComputeContainmentMap(ctx, a.Query, a.Table, a.DateColumn, t.ID, ids)
}
