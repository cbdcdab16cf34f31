// Package admin holds the operator-run mutations of the plan store. Every
// operation is idempotent, honours dry-run and logs each field it changes
// with its before and after value.
package admin

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/Spok95/plan-catalog/internal/domain/plans"
)

type Store interface {
	List(ctx context.Context) ([]plans.Plan, error)
	Get(ctx context.Context, id string) (*plans.Plan, error)
	Upsert(ctx context.Context, p plans.Plan) (*plans.Plan, error)
	SetActive(ctx context.Context, id string, active bool) (*plans.Plan, error)
	SetStripeIDs(ctx context.Context, id, productID, priceID string) (*plans.Plan, error)
}

type Admin struct {
	store  Store
	log    *slog.Logger
	dryRun bool
	runID  string
}

func New(store Store, log *slog.Logger, dryRun bool) *Admin {
	runID := uuid.NewString()
	return &Admin{
		store:  store,
		log:    log.With("run_id", runID, "dry_run", dryRun),
		dryRun: dryRun,
		runID:  runID,
	}
}

func (a *Admin) RunID() string { return a.runID }

// Result counts what an operation did to the plans it looked at.
type Result struct {
	Op        string
	DryRun    bool
	Changed   []string
	Unchanged []string
	Skipped   []string
	Changes   []Change
}

func (r Result) Summary() string {
	s := fmt.Sprintf("%s: %d changed, %d unchanged, %d skipped", r.Op, len(r.Changed), len(r.Unchanged), len(r.Skipped))
	if r.DryRun {
		s += " (dry run, nothing written)"
	}
	return s
}

func (a *Admin) newResult(op string) *Result {
	return &Result{Op: op, DryRun: a.dryRun}
}

// record logs the diff and files the plan under changed or unchanged.
func (a *Admin) record(res *Result, id string, changes []Change) {
	if len(changes) == 0 {
		res.Unchanged = append(res.Unchanged, id)
		a.log.Debug("plan unchanged", "op", res.Op, "plan_id", id)
		return
	}
	res.Changed = append(res.Changed, id)
	res.Changes = append(res.Changes, changes...)
	for _, c := range changes {
		a.log.Info("plan changed",
			"op", res.Op,
			"plan_id", c.PlanID,
			"field", c.Field,
			"before", c.Before,
			"after", c.After,
		)
	}
}
