// Package store provides Store implementations.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/warp/daterange-engine/daterange"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory enforces the same record constraints as the SQLite store.
// WithTx snapshots the whole state and restores it on error; it is not
// isolated from concurrent writers.
type Memory struct {
	mu     sync.RWMutex
	types  map[daterange.TypeID]daterange.DateRangeType
	ranges map[daterange.RangeID]daterange.DateRange
	nextID int64
}

func NewMemory() *Memory {
	return &Memory{
		types:  make(map[daterange.TypeID]daterange.DateRangeType),
		ranges: make(map[daterange.RangeID]daterange.DateRange),
	}
}

// =============================================================================
// TYPES
// =============================================================================

func (m *Memory) CreateType(_ context.Context, t daterange.DateRangeType) (daterange.TypeID, error) {
	if err := t.Validate(); err != nil {
		return 0, err
	}
	t.Normalize()

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.types {
		if existing.Name == t.Name && existing.CompanyID == t.CompanyID {
			return 0, &daterange.ConstraintError{
				Constraint: daterange.ConstraintTypeUnique,
				Message:    "a date range type must be unique per company",
			}
		}
	}
	m.nextID++
	t.ID = daterange.TypeID(m.nextID)
	m.types[t.ID] = t
	return t.ID, nil
}

func (m *Memory) GetType(_ context.Context, id daterange.TypeID) (*daterange.DateRangeType, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.types[id]
	if !ok {
		return nil, fmt.Errorf("type %d: %w", id, daterange.ErrTypeNotFound)
	}
	return &t, nil
}

func (m *Memory) FindTypeByCode(_ context.Context, code string, companyID daterange.CompanyID) (*daterange.DateRangeType, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, t := range m.sortedTypesLocked() {
		if t.Code == code && t.CompanyID == companyID && t.Active {
			return &t, nil
		}
	}
	return nil, nil
}

func (m *Memory) ListTypes(_ context.Context, filter daterange.TypeFilter) ([]daterange.DateRangeType, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []daterange.DateRangeType
	for _, t := range m.sortedTypesLocked() {
		if !t.Active && !filter.IncludeInactive {
			continue
		}
		if filter.Autogenerating && !t.Autogenerates() {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (m *Memory) sortedTypesLocked() []daterange.DateRangeType {
	out := make([]daterange.DateRangeType, 0, len(m.types))
	for _, t := range m.types {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// =============================================================================
// RANGES
// =============================================================================

func (m *Memory) CreateRange(_ context.Context, r daterange.DateRange) (daterange.RangeID, error) {
	if err := r.Validate(); err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.types[r.TypeID]
	if !ok {
		return 0, fmt.Errorf("type %d: %w", r.TypeID, daterange.ErrTypeNotFound)
	}
	if !t.AllowOverlap {
		for _, existing := range m.sortedRangesLocked() {
			if existing.TypeID == r.TypeID && existing.CompanyID == r.CompanyID &&
				existing.Interval().Overlaps(r.Interval()) {
				return 0, daterange.OverlapError(r, existing)
			}
		}
	}

	m.nextID++
	r.ID = daterange.RangeID(m.nextID)
	m.ranges[r.ID] = r
	return r.ID, nil
}

func (m *Memory) GetRange(_ context.Context, id daterange.RangeID) (*daterange.DateRange, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.ranges[id]
	if !ok {
		return nil, fmt.Errorf("range %d: %w", id, daterange.ErrRangeNotFound)
	}
	return &r, nil
}

func (m *Memory) ListRanges(_ context.Context, filter daterange.RangeFilter) ([]daterange.DateRange, error) {
	if filter.Name != nil {
		if err := filter.Name.Validate(); err != nil {
			return nil, err
		}
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make(map[daterange.RangeID]bool, len(filter.IDs))
	for _, id := range filter.IDs {
		ids[id] = true
	}

	var out []daterange.DateRange
	for _, r := range m.sortedRangesLocked() {
		if filter.TypeID != 0 && r.TypeID != filter.TypeID {
			continue
		}
		if filter.IDs != nil && ids[r.ID] == filter.ExcludeIDs {
			continue
		}
		if filter.Name != nil && !filter.Name.Match(r.Name) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (m *Memory) LastRange(_ context.Context, typeID daterange.TypeID) (*daterange.DateRange, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var last *daterange.DateRange
	for _, r := range m.sortedRangesLocked() {
		if r.TypeID != typeID {
			continue
		}
		if last == nil || !r.DateEnd.Before(last.DateEnd) {
			r := r
			last = &r
		}
	}
	return last, nil
}

func (m *Memory) DeleteRange(_ context.Context, id daterange.RangeID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.ranges[id]; !ok {
		return fmt.Errorf("range %d: %w", id, daterange.ErrRangeNotFound)
	}
	delete(m.ranges, id)
	return nil
}

func (m *Memory) sortedRangesLocked() []daterange.DateRange {
	out := make([]daterange.DateRange, 0, len(m.ranges))
	for _, r := range m.ranges {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].DateStart.Equal(out[j].DateStart) {
			return out[i].DateStart.Before(out[j].DateStart)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// =============================================================================
// ROLLBACK SCOPES
// =============================================================================

// WithTx runs fn against m and restores the previous state if fn fails.
func (m *Memory) WithTx(_ context.Context, fn func(daterange.Store) error) error {
	m.mu.RLock()
	types := make(map[daterange.TypeID]daterange.DateRangeType, len(m.types))
	for k, v := range m.types {
		types[k] = v
	}
	ranges := make(map[daterange.RangeID]daterange.DateRange, len(m.ranges))
	for k, v := range m.ranges {
		ranges[k] = v
	}
	m.mu.RUnlock()

	if err := fn(m); err != nil {
		m.mu.Lock()
		m.types = types
		m.ranges = ranges
		m.mu.Unlock()
		return err
	}
	return nil
}
