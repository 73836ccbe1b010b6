package sqlite

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/daterange-engine/daterange"
	"github.com/warp/daterange-engine/entries"
	"github.com/warp/daterange-engine/search"
)

// =============================================================================
// ENTRIES (entries.Store interface)
// =============================================================================

// CreateEntry stores a host record.
func (s *Store) CreateEntry(ctx context.Context, e entries.Entry) (int64, error) {
	if err := e.Validate(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO entries (name, date, amount, created_at)
		VALUES (?, ?, ?, ?)`,
		e.Name, e.Date.String(), e.Amount.String(), now(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create entry: %w", err)
	}
	return res.LastInsertId()
}

// ListEntries returns the entries matching where, ordered by date then id.
func (s *Store) ListEntries(ctx context.Context, where search.Predicate) ([]entries.Entry, error) {
	clause, args, err := search.ToSQL(where)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, date, amount
		FROM entries
		WHERE `+clause+`
		ORDER BY date, id`,
		args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	var list []entries.Entry
	for rows.Next() {
		var (
			e      entries.Entry
			date   string
			amount string
		)
		if err := rows.Scan(&e.ID, &e.Name, &date, &amount); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		if e.Date, err = parseDate(date); err != nil {
			return nil, fmt.Errorf("entry %d: %w", e.ID, err)
		}
		if e.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("entry %d: invalid amount %q: %w", e.ID, amount, err)
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// ContainmentMap maps entry ids to the range of typeID containing their date.
func (s *Store) ContainmentMap(ctx context.Context, typeID daterange.TypeID, ids []int64) (map[int64]daterange.RangeID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return search.ComputeContainmentMap(ctx, s.db, entries.Table, entries.DateColumn, typeID, ids)
}
