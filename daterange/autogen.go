/*
autogen.go - Generator service and the autogeneration sweep

PURPOSE:
  Ties the pure generation code to a Store:
  - Defaults:     request defaults derived from a type and its last range
  - Apply:        create every range of a request, all or nothing
  - Autogenerate: the sweep over every type with autogeneration settings

SWEEP ISOLATION:
  Each type runs inside its own TxStore.WithTx scope. When a type fails
  with a user input error or a constraint violation, its partial ranges are
  rolled back, the failure is logged and recorded in the report, and the
  sweep moves on. Any other error aborts the sweep and is returned with the
  report built so far.

  A type whose defaults propose no end date has nothing due and is
  reported as skipped.

SEE ALSO:
  - defaults.go: DefaultsFromType
  - api/scheduler.go: runs the sweep on a cron schedule
*/
package daterange

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Generator creates date ranges from requests.
type Generator struct {
	Store  TxStore
	Logger *zap.Logger

	// Now is the clock; defaults to time.Now.
	Now func() time.Time
}

// NewGenerator creates a generator. A nil logger disables logging.
func NewGenerator(store TxStore, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{Store: store, Logger: logger, Now: time.Now}
}

func (g *Generator) today() Date {
	if g.Now == nil {
		return Today()
	}
	return DateOf(g.Now())
}

// Defaults returns the generator request proposed for a type.
func (g *Generator) Defaults(ctx context.Context, typeID TypeID) (GeneratorRequest, error) {
	return g.defaults(ctx, g.Store, typeID)
}

func (g *Generator) defaults(ctx context.Context, s Store, typeID TypeID) (GeneratorRequest, error) {
	t, err := s.GetType(ctx, typeID)
	if err != nil {
		return GeneratorRequest{}, err
	}
	last, err := s.LastRange(ctx, t.ID)
	if err != nil {
		return GeneratorRequest{}, fmt.Errorf("failed to load last range of %s: %w", t.Name, err)
	}
	return DefaultsFromType(*t, last, g.today()), nil
}

// PreviewType returns the names the type's naming scheme gives the current
// year.
func (g *Generator) PreviewType(ctx context.Context, typeID TypeID) ([]string, error) {
	t, err := g.Store.GetType(ctx, typeID)
	if err != nil {
		return nil, err
	}
	return PreviewTypeNames(*t, g.today())
}

// Apply creates every range of the request. On any error nothing is kept.
func (g *Generator) Apply(ctx context.Context, req GeneratorRequest) ([]DateRange, error) {
	var created []DateRange
	err := g.Store.WithTx(ctx, func(s Store) error {
		var err error
		created, err = g.apply(ctx, s, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (g *Generator) apply(ctx context.Context, s Store, req GeneratorRequest) ([]DateRange, error) {
	t, err := s.GetType(ctx, req.TypeID)
	if err != nil {
		return nil, err
	}
	if err := req.CheckCompany(*t); err != nil {
		return nil, err
	}

	ranges, err := req.ComputeRanges()
	if err != nil {
		return nil, err
	}
	for i := range ranges {
		id, err := s.CreateRange(ctx, ranges[i])
		if err != nil {
			return nil, err
		}
		ranges[i].ID = id
	}

	g.Logger.Info("date ranges generated",
		zap.String("type", t.Name),
		zap.Int("count", len(ranges)),
		zap.Stringer("from", ranges[0].DateStart),
		zap.Stringer("to", ranges[len(ranges)-1].DateEnd),
	)
	return ranges, nil
}

// =============================================================================
// SWEEP
// =============================================================================

// SweepOutcome is the result of one type in a sweep.
type SweepOutcome string

const (
	SweepCreated SweepOutcome = "created"
	SweepSkipped SweepOutcome = "skipped" // nothing due
	SweepFailed  SweepOutcome = "failed"  // suppressed user input / constraint error
)

// SweepResult records what happened to one type.
type SweepResult struct {
	TypeID   TypeID
	TypeName string
	Outcome  SweepOutcome
	Ranges   []DateRange
	Err      error
}

// SweepReport is the outcome of a whole sweep.
type SweepReport struct {
	StartedAt  time.Time
	FinishedAt time.Time
	Results    []SweepResult
}

// Count returns how many types ended with the outcome.
func (r SweepReport) Count(outcome SweepOutcome) int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome == outcome {
			n++
		}
	}
	return n
}

// Autogenerate generates the due ranges of every autogenerating type.
func (g *Generator) Autogenerate(ctx context.Context) (SweepReport, error) {
	report := SweepReport{StartedAt: g.now()}

	types, err := g.Store.ListTypes(ctx, TypeFilter{Autogenerating: true})
	if err != nil {
		report.FinishedAt = g.now()
		return report, fmt.Errorf("failed to list autogenerating types: %w", err)
	}

	for _, t := range types {
		res := SweepResult{TypeID: t.ID, TypeName: t.Name}

		err := g.Store.WithTx(ctx, func(s Store) error {
			req, err := g.defaults(ctx, s, t.ID)
			if err != nil {
				return err
			}
			if req.DateEnd.IsZero() {
				res.Outcome = SweepSkipped
				return nil
			}
			res.Ranges, err = g.apply(ctx, s, req)
			if err != nil {
				return err
			}
			res.Outcome = SweepCreated
			return nil
		})

		switch {
		case err == nil:
		case IsSuppressible(err):
			res.Outcome = SweepFailed
			res.Ranges = nil
			res.Err = err
			g.Logger.Warn("date range autogeneration skipped a type",
				zap.String("type", t.Name), zap.Error(err))
		default:
			res.Outcome = SweepFailed
			res.Ranges = nil
			res.Err = err
			report.Results = append(report.Results, res)
			report.FinishedAt = g.now()
			return report, fmt.Errorf("autogenerate %s: %w", t.Name, err)
		}
		report.Results = append(report.Results, res)
	}

	report.FinishedAt = g.now()
	g.Logger.Info("date range autogeneration finished",
		zap.Int("types", len(types)),
		zap.Int("created", report.Count(SweepCreated)),
		zap.Int("skipped", report.Count(SweepSkipped)),
		zap.Int("failed", report.Count(SweepFailed)),
	)
	return report, nil
}

func (g *Generator) now() time.Time {
	if g.Now == nil {
		return time.Now()
	}
	return g.Now()
}
