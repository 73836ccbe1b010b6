/*
store.go - Persistence interfaces for types and ranges

PURPOSE:
  Defines the record store the generator, the sweep and the period
  resolver work against. Implementations own the record constraints:

  - (name, company) unique per type          -> ConstraintTypeUnique
  - date_start <= date_end                   -> ConstraintDateOrder
  - no overlap within a type that forbids it -> ConstraintOverlap
    (scoped by company, checked at create time inside the store's
    transaction, never by the generator)

  Ranges are never updated here; they are created and deleted.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: SQLite
  - daterange/store/memory.go: in-memory for tests

ROLLBACK SCOPES:
  TxStore.WithTx runs fn in a unit that is rolled back when fn returns an
  error. Nested calls behave like savepoints: an inner failure discards the
  inner work only.

SEE ALSO:
  - autogen.go: uses WithTx per type
  - filter.go: name matching shared by implementations
*/
package daterange

import "context"

// TypeFilter selects date range types.
type TypeFilter struct {
	// Autogenerating keeps only active types with an autogeneration count and unit.
	Autogenerating bool
	// IncludeInactive also returns archived types.
	IncludeInactive bool
}

// RangeFilter selects date ranges. Zero fields don't filter.
type RangeFilter struct {
	TypeID TypeID
	// IDs selects ranges by id; with ExcludeIDs the ids are excluded instead.
	IDs        []RangeID
	ExcludeIDs bool
	// Name matches range names (see NameMatch).
	Name *NameMatch
}

// Store persists date range types and ranges.
type Store interface {
	CreateType(ctx context.Context, t DateRangeType) (TypeID, error)
	GetType(ctx context.Context, id TypeID) (*DateRangeType, error)
	// FindTypeByCode returns nil, nil when no type has the code in the company scope.
	FindTypeByCode(ctx context.Context, code string, companyID CompanyID) (*DateRangeType, error)
	ListTypes(ctx context.Context, filter TypeFilter) ([]DateRangeType, error)

	CreateRange(ctx context.Context, r DateRange) (RangeID, error)
	GetRange(ctx context.Context, id RangeID) (*DateRange, error)
	// ListRanges returns ranges ordered by date_start, id.
	ListRanges(ctx context.Context, filter RangeFilter) ([]DateRange, error)
	// LastRange returns the range of the type with the latest end, or nil.
	LastRange(ctx context.Context, typeID TypeID) (*DateRange, error)
	DeleteRange(ctx context.Context, id RangeID) error
}

// TxStore wraps Store with rollback scopes.
type TxStore interface {
	Store

	// WithTx executes fn within a rollback scope.
	// If fn returns error, the scope is rolled back.
	// If fn returns nil, the scope is committed (or released when nested).
	WithTx(ctx context.Context, fn func(Store) error) error
}
