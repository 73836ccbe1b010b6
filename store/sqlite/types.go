package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
	"github.com/warp/daterange-engine/daterange"
)

// =============================================================================
// DATE RANGE TYPES
// =============================================================================

const typeColumns = `id, name, code, company_id, allow_overlap, active,
	name_expr, name_prefix, duration_count, unit_of_time,
	autogeneration_date_start, autogeneration_count, autogeneration_unit`

// CreateType stores a new type.
func (s *Store) CreateType(ctx context.Context, t daterange.DateRangeType) (daterange.TypeID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.q.createType(ctx, t)
}

// GetType retrieves a type by ID.
func (s *Store) GetType(ctx context.Context, id daterange.TypeID) (*daterange.DateRangeType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.q.getType(ctx, id)
}

// FindTypeByCode returns the first active type with the code in the company
// scope, or nil.
func (s *Store) FindTypeByCode(ctx context.Context, code string, companyID daterange.CompanyID) (*daterange.DateRangeType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.q.findTypeByCode(ctx, code, companyID)
}

// ListTypes returns types ordered by name.
func (s *Store) ListTypes(ctx context.Context, filter daterange.TypeFilter) ([]daterange.DateRangeType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.q.listTypes(ctx, filter)
}

func (q queries) createType(ctx context.Context, t daterange.DateRangeType) (daterange.TypeID, error) {
	if err := t.Validate(); err != nil {
		return 0, err
	}
	t.Normalize()

	res, err := q.db.ExecContext(ctx, `
		INSERT INTO date_range_types
		(name, code, company_id, allow_overlap, active, name_expr, name_prefix,
		 duration_count, unit_of_time, autogeneration_date_start,
		 autogeneration_count, autogeneration_unit, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.Name, t.Code, int64(t.CompanyID), t.AllowOverlap, t.Active,
		t.NameExpr, t.NamePrefix, t.DurationCount, string(t.UnitOfTime),
		formatDate(t.AutogenerationDateStart), t.AutogenerationCount, string(t.AutogenerationUnit),
		now(),
	)
	if err != nil {
		if isConstraintError(err, sqlite3.ErrConstraintUnique) {
			return 0, &daterange.ConstraintError{
				Constraint: daterange.ConstraintTypeUnique,
				Message:    "a date range type must be unique per company",
			}
		}
		return 0, fmt.Errorf("failed to create date range type: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return daterange.TypeID(id), nil
}

func (q queries) getType(ctx context.Context, id daterange.TypeID) (*daterange.DateRangeType, error) {
	row := q.db.QueryRowContext(ctx,
		"SELECT "+typeColumns+" FROM date_range_types WHERE id = ?", int64(id))

	t, err := scanType(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("type %d: %w", id, daterange.ErrTypeNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (q queries) findTypeByCode(ctx context.Context, code string, companyID daterange.CompanyID) (*daterange.DateRangeType, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT `+typeColumns+`
		FROM date_range_types
		WHERE code = ? AND company_id = ? AND active
		ORDER BY name, id
		LIMIT 1`,
		code, int64(companyID))

	t, err := scanType(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (q queries) listTypes(ctx context.Context, filter daterange.TypeFilter) ([]daterange.DateRangeType, error) {
	query := "SELECT " + typeColumns + " FROM date_range_types WHERE 1 = 1"
	if !filter.IncludeInactive {
		query += " AND active"
	}
	if filter.Autogenerating {
		query += " AND active AND autogeneration_count > 0 AND autogeneration_unit <> ''"
	}
	query += " ORDER BY name, id"

	rows, err := q.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query date range types: %w", err)
	}
	defer rows.Close()

	var types []daterange.DateRangeType
	for rows.Next() {
		t, err := scanType(rows)
		if err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, rows.Err()
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanType(row scanner) (daterange.DateRangeType, error) {
	var (
		t         daterange.DateRangeType
		id        int64
		companyID int64
		unit      string
		autoStart string
		autoUnit  string
	)
	err := row.Scan(
		&id, &t.Name, &t.Code, &companyID, &t.AllowOverlap, &t.Active,
		&t.NameExpr, &t.NamePrefix, &t.DurationCount, &unit,
		&autoStart, &t.AutogenerationCount, &autoUnit,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return t, err
		}
		return t, fmt.Errorf("failed to scan date range type: %w", err)
	}

	t.ID = daterange.TypeID(id)
	t.CompanyID = daterange.CompanyID(companyID)
	t.UnitOfTime = daterange.Unit(unit)
	t.AutogenerationUnit = daterange.Unit(autoUnit)
	t.AutogenerationDateStart, err = parseDate(autoStart)
	if err != nil {
		return t, fmt.Errorf("date range type %d: %w", id, err)
	}
	return t, nil
}
