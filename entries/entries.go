/*
Package entries is the host model searched by period.

PURPOSE:
  An Entry is any dated record (an invoice line, a journal item...). It
  carries the virtual period selector: a search on the selector is resolved
  into a date predicate, and each listed entry gets the range of the
  assignment type containing its date.

FLOW:
  Search(op, value)
    -> search.Resolver.Resolve   predicate on "date"
    -> Store.ListEntries         rows matching the predicate
    -> search.Assigner.Assign    record id -> range id (one batched query)
    -> range names, total amount

SEE ALSO:
  - search/resolver.go
  - search/containment.go
*/
package entries

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/daterange-engine/daterange"
	"github.com/warp/daterange-engine/search"
)

// Table and DateColumn locate entries for the containment query.
const (
	Table      = "entries"
	DateColumn = "date"
)

// Entry is one dated host record.
type Entry struct {
	ID     int64
	Name   string
	Date   daterange.Date
	Amount decimal.Decimal

	// Computed: the containing range of the assignment type, 0 when none.
	PeriodID   daterange.RangeID
	PeriodName string
}

// Validate checks an entry before it is stored.
func (e Entry) Validate() error {
	if e.Name == "" {
		return daterange.NewUserInputError("entry name is required")
	}
	if e.Date.IsZero() {
		return daterange.NewUserInputError("entry date is required")
	}
	return nil
}

// Store persists entries.
type Store interface {
	CreateEntry(ctx context.Context, e Entry) (int64, error)

	// ListEntries returns the entries matching where, ordered by date then id.
	ListEntries(ctx context.Context, where search.Predicate) ([]Entry, error)
}

// Listing is the result of a period search.
type Listing struct {
	Entries []Entry
	Filter  search.Domain
	Total   decimal.Decimal
	Kind    search.ValueKind
}

// Service lists entries through the period selector.
type Service struct {
	Store    Store
	Resolver *search.Resolver
	Assigner *search.Assigner
	Ranges   search.RangeFinder
}

// Search lists the entries matching (op, value) on the period selector.
func (s *Service) Search(ctx context.Context, op string, value any) (Listing, error) {
	kind, _, _ := search.Classify(value)

	pred, err := s.Resolver.Resolve(ctx, op, value)
	if err != nil {
		return Listing{Kind: kind}, err
	}
	domain, err := search.ToDomain(pred)
	if err != nil {
		return Listing{Kind: kind}, err
	}

	list, err := s.Store.ListEntries(ctx, pred)
	if err != nil {
		return Listing{Kind: kind}, fmt.Errorf("failed to list entries: %w", err)
	}
	if err := s.assignPeriods(ctx, list); err != nil {
		return Listing{Kind: kind}, err
	}

	total := decimal.Zero
	for _, e := range list {
		total = total.Add(e.Amount)
	}
	return Listing{Entries: list, Filter: domain, Total: total, Kind: kind}, nil
}

func (s *Service) assignPeriods(ctx context.Context, list []Entry) error {
	if s.Assigner == nil || len(list) == 0 {
		return nil
	}

	ids := make([]int64, len(list))
	for i, e := range list {
		ids[i] = e.ID
	}
	periods, err := s.Assigner.Assign(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to assign periods: %w", err)
	}
	if len(periods) == 0 {
		return nil
	}

	rangeIDs := make([]daterange.RangeID, 0, len(periods))
	for _, id := range periods {
		rangeIDs = append(rangeIDs, id)
	}
	ranges, err := s.Ranges.ListRanges(ctx, daterange.RangeFilter{IDs: rangeIDs})
	if err != nil {
		return fmt.Errorf("failed to load periods: %w", err)
	}
	names := make(map[daterange.RangeID]string, len(ranges))
	for _, r := range ranges {
		names[r.ID] = r.Name
	}

	for i := range list {
		if id, ok := periods[list[i].ID]; ok {
			list[i].PeriodID = id
			list[i].PeriodName = names[id]
		}
	}
	return nil
}
