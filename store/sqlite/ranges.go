package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"
	"github.com/warp/daterange-engine/daterange"
)

// =============================================================================
// DATE RANGES
// =============================================================================

const rangeColumns = "id, name, date_start, date_end, type_id, company_id"

// CreateRange stores a range. The overlap check and the insert share one
// transaction.
func (s *Store) CreateRange(ctx context.Context, r daterange.DateRange) (daterange.RangeID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var id daterange.RangeID
	err := s.inTx(ctx, func(q queries) error {
		var err error
		id, err = q.createRange(ctx, r)
		return err
	})
	return id, err
}

// GetRange retrieves a range by ID.
func (s *Store) GetRange(ctx context.Context, id daterange.RangeID) (*daterange.DateRange, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.q.getRange(ctx, id)
}

// ListRanges returns the ranges matching filter ordered by date_start, id.
func (s *Store) ListRanges(ctx context.Context, filter daterange.RangeFilter) ([]daterange.DateRange, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.q.listRanges(ctx, filter)
}

// LastRange returns the range of the type ending last, or nil.
func (s *Store) LastRange(ctx context.Context, typeID daterange.TypeID) (*daterange.DateRange, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.q.lastRange(ctx, typeID)
}

// DeleteRange removes a range.
func (s *Store) DeleteRange(ctx context.Context, id daterange.RangeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.q.deleteRange(ctx, id)
}

func (q queries) createRange(ctx context.Context, r daterange.DateRange) (daterange.RangeID, error) {
	if err := r.Validate(); err != nil {
		return 0, err
	}

	t, err := q.getType(ctx, r.TypeID)
	if err != nil {
		return 0, err
	}
	if !t.AllowOverlap {
		existing, err := q.firstOverlap(ctx, r)
		if err != nil {
			return 0, err
		}
		if existing != nil {
			return 0, daterange.OverlapError(r, *existing)
		}
	}

	res, err := q.db.ExecContext(ctx, `
		INSERT INTO date_ranges (name, date_start, date_end, type_id, company_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		r.Name, r.DateStart.String(), r.DateEnd.String(), int64(r.TypeID), int64(r.CompanyID), now(),
	)
	if err != nil {
		if isConstraintError(err, sqlite3.ErrConstraintCheck) {
			return 0, &daterange.ConstraintError{
				Constraint: daterange.ConstraintDateOrder,
				Message:    r.Name + " is not a valid range (" + r.DateStart.String() + " > " + r.DateEnd.String() + ")",
			}
		}
		return 0, fmt.Errorf("failed to create date range: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return daterange.RangeID(id), nil
}

// firstOverlap returns the earliest range of r's type and company sharing a
// day with r, or nil.
func (q queries) firstOverlap(ctx context.Context, r daterange.DateRange) (*daterange.DateRange, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT `+rangeColumns+`
		FROM date_ranges
		WHERE type_id = ? AND company_id = ?
		  AND date_start <= ? AND date_end >= ?
		ORDER BY date_start, id
		LIMIT 1`,
		int64(r.TypeID), int64(r.CompanyID), r.DateEnd.String(), r.DateStart.String(),
	)

	existing, err := scanRange(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &existing, nil
}

func (q queries) getRange(ctx context.Context, id daterange.RangeID) (*daterange.DateRange, error) {
	row := q.db.QueryRowContext(ctx,
		"SELECT "+rangeColumns+" FROM date_ranges WHERE id = ?", int64(id))

	r, err := scanRange(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("range %d: %w", id, daterange.ErrRangeNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (q queries) listRanges(ctx context.Context, filter daterange.RangeFilter) ([]daterange.DateRange, error) {
	var (
		where []string
		args  []any
	)

	if filter.TypeID != 0 {
		where = append(where, "type_id = ?")
		args = append(args, int64(filter.TypeID))
	}

	if filter.IDs != nil {
		switch {
		case len(filter.IDs) == 0 && !filter.ExcludeIDs:
			where = append(where, "1 = 0")
		case len(filter.IDs) > 0:
			op := "IN"
			if filter.ExcludeIDs {
				op = "NOT IN"
			}
			where = append(where, "id "+op+" ("+placeholders(len(filter.IDs))+")")
			for _, id := range filter.IDs {
				args = append(args, int64(id))
			}
		}
	}

	if filter.Name != nil {
		cond, err := nameCondition(*filter.Name)
		if err != nil {
			return nil, err
		}
		where = append(where, cond)
		args = append(args, filter.Name.Value)
	}

	query := "SELECT " + rangeColumns + " FROM date_ranges"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY date_start, id"

	return q.queryRanges(ctx, query, args...)
}

// nameCondition renders a name match with one placeholder. like and ilike
// are substring matches; SQLite's LIKE ignores ASCII case, so instr is used.
func nameCondition(m daterange.NameMatch) (string, error) {
	if err := m.Validate(); err != nil {
		return "", err
	}
	switch m.Op {
	case daterange.NameEquals:
		return "name = ?", nil
	case daterange.NameNotEquals:
		return "name <> ?", nil
	case daterange.NameLike:
		return "instr(name, ?) > 0", nil
	case daterange.NameNotLike:
		return "instr(name, ?) = 0", nil
	case daterange.NameILike:
		return "instr(lower(name), lower(?)) > 0", nil
	default: // daterange.NameNotILike
		return "instr(lower(name), lower(?)) = 0", nil
	}
}

func (q queries) lastRange(ctx context.Context, typeID daterange.TypeID) (*daterange.DateRange, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT `+rangeColumns+`
		FROM date_ranges
		WHERE type_id = ?
		ORDER BY date_end DESC, date_start DESC, id DESC
		LIMIT 1`,
		int64(typeID))

	r, err := scanRange(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (q queries) deleteRange(ctx context.Context, id daterange.RangeID) error {
	res, err := q.db.ExecContext(ctx, "DELETE FROM date_ranges WHERE id = ?", int64(id))
	if err != nil {
		return fmt.Errorf("failed to delete date range: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("range %d: %w", id, daterange.ErrRangeNotFound)
	}
	return nil
}

func (q queries) queryRanges(ctx context.Context, query string, args ...any) ([]daterange.DateRange, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query date ranges: %w", err)
	}
	defer rows.Close()

	var ranges []daterange.DateRange
	for rows.Next() {
		r, err := scanRange(rows)
		if err != nil {
			return nil, err
		}
		ranges = append(ranges, r)
	}
	return ranges, rows.Err()
}

func scanRange(row scanner) (daterange.DateRange, error) {
	var (
		r         daterange.DateRange
		id        int64
		dateStart string
		dateEnd   string
		typeID    int64
		companyID int64
	)
	if err := row.Scan(&id, &r.Name, &dateStart, &dateEnd, &typeID, &companyID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return r, err
		}
		return r, fmt.Errorf("failed to scan date range: %w", err)
	}

	var err error
	if r.DateStart, err = parseDate(dateStart); err != nil {
		return r, fmt.Errorf("date range %d: %w", id, err)
	}
	if r.DateEnd, err = parseDate(dateEnd); err != nil {
		return r, fmt.Errorf("date range %d: %w", id, err)
	}
	r.ID = daterange.RangeID(id)
	r.TypeID = daterange.TypeID(typeID)
	r.CompanyID = daterange.CompanyID(companyID)
	return r, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
