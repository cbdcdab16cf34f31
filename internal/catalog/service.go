// Package catalog loads active subscription plans and shapes them into the
// JSON contract served by both the HTTP server and the serverless function.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/Spok95/plan-catalog/internal/domain/plans"
)

// Store is the read side of the plan store the catalog needs.
type Store interface {
	ListActive(ctx context.Context) ([]plans.Plan, error)
}

type Options struct {
	// Deployment labels metrics, e.g. "server" or "function".
	Deployment   string
	QueryTimeout time.Duration
	Metrics      *Metrics
}

type Service struct {
	store   Store
	log     *slog.Logger
	opts    Options
	metrics *Metrics
}

func NewService(store Store, log *slog.Logger, opts Options) *Service {
	return &Service{
		store:   store,
		log:     log,
		opts:    opts,
		metrics: opts.Metrics,
	}
}

// ListActivePlans returns one entry per active plan, ordered by ascending
// price with ties kept in store order. The result is never nil.
func (s *Service) ListActivePlans(ctx context.Context) ([]Entry, error) {
	start := time.Now()
	entries, err := s.listActive(ctx)
	s.metrics.observe(s.opts.Deployment, err, time.Since(start))
	return entries, err
}

func (s *Service) listActive(ctx context.Context) ([]Entry, error) {
	if s.opts.QueryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.QueryTimeout)
		defer cancel()
	}

	rows, err := s.store.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list active plans: %w", ErrUpstreamStorage, err)
	}

	active := make([]plans.Plan, 0, len(rows))
	for _, p := range rows {
		if p.Active {
			active = append(active, p)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		return active[i].Price.LessThan(active[j].Price)
	})

	out := make([]Entry, 0, len(active))
	for _, p := range active {
		e, err := NewEntry(p)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}

	s.log.Debug("active plans listed", "count", len(out))
	return out, nil
}
