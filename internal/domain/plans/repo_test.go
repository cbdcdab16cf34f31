package plans_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Spok95/plan-catalog/internal/catalog"
	"github.com/Spok95/plan-catalog/internal/domain/plans"
	"github.com/Spok95/plan-catalog/internal/infra/db"
	"github.com/Spok95/plan-catalog/internal/infra/migrations"
)

// newTestPool needs a disposable database: the plans table is truncated.
func newTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	require.NoError(t, migrations.Up(ctx, dsn, slog.New(slog.NewTextHandler(io.Discard, nil))))

	pool, err := db.Connect(ctx, dsn, 4)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, `TRUNCATE plans`)
	require.NoError(t, err)
	return pool
}

func strPtr(s string) *string { return &s }

func TestRepoListActiveFiltersAndOrders(t *testing.T) {
	pool := newTestPool(t)
	repo := plans.NewRepo(pool)
	ctx := context.Background()

	seed := []plans.Plan{
		{ID: "team", Name: "Team", Price: decimal.RequireFromString("49.00"), Interval: "month", Active: true},
		{ID: "free", Name: "Free", Price: decimal.Zero, Interval: "month", Active: true},
		{ID: "legacy", Name: "Legacy", Price: decimal.RequireFromString("5.00"), Interval: "month", Active: false},
		{ID: "b_pro", Name: "Pro B", Price: decimal.RequireFromString("19.99"), Interval: "month", Active: true},
		{ID: "a_pro", Name: "Pro A", Price: decimal.RequireFromString("19.99"), Interval: "month", Active: true,
			Features: []byte(`"{\"feature_limits\":{\"agents\":5}}"`)},
	}
	for _, p := range seed {
		_, err := repo.Upsert(ctx, p)
		require.NoError(t, err)
	}

	got, err := repo.ListActive(ctx)
	require.NoError(t, err)

	ids := make([]string, 0, len(got))
	for _, p := range got {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"free", "a_pro", "b_pro", "team"}, ids)
	assert.True(t, got[1].Price.Equal(decimal.RequireFromString("19.99")))
	assert.JSONEq(t, `"{\"feature_limits\":{\"agents\":5}}"`, string(got[1].Features))
	assert.Zero(t, pool.Stat().AcquiredConns())
}

func TestRepoListActiveEmpty(t *testing.T) {
	pool := newTestPool(t)

	got, err := plans.NewRepo(pool).ListActive(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestRepoListActiveReleasesOnFailure(t *testing.T) {
	pool := newTestPool(t)
	repo := plans.NewRepo(pool)
	ctx := context.Background()

	// the connection is acquired, then the query fails on the missing table
	_, err := pool.Exec(ctx, `ALTER TABLE plans RENAME TO plans_unavailable`)
	require.NoError(t, err)
	t.Cleanup(func() {
		_, err := pool.Exec(context.Background(), `ALTER TABLE plans_unavailable RENAME TO plans`)
		require.NoError(t, err)
	})

	_, err = repo.ListActive(ctx)
	require.Error(t, err)
	assert.Zero(t, pool.Stat().AcquiredConns())

	svc := catalog.NewService(repo, slog.New(slog.NewTextHandler(io.Discard, nil)), catalog.Options{})
	_, err = svc.ListActivePlans(ctx)
	require.ErrorIs(t, err, catalog.ErrUpstreamStorage)
	assert.Zero(t, pool.Stat().AcquiredConns())
}

func TestRepoUpsertSetActiveAndStripe(t *testing.T) {
	pool := newTestPool(t)
	repo := plans.NewRepo(pool)
	ctx := context.Background()

	_, err := repo.Upsert(ctx, plans.Plan{
		ID: "pro", Name: "Pro", Description: strPtr("For growing teams"),
		Price: decimal.RequireFromString("19.99"), Interval: "month", Active: true,
	})
	require.NoError(t, err)

	p, err := repo.SetStripeIDs(ctx, "pro", "prod_123", "price_456")
	require.NoError(t, err)
	require.NotNil(t, p.StripeProductID)
	assert.Equal(t, "prod_123", *p.StripeProductID)
	assert.Equal(t, "price_456", *p.StripePriceID)

	// a later upsert without stripe ids keeps them
	p, err = repo.Upsert(ctx, plans.Plan{
		ID: "pro", Name: "Pro", Price: decimal.RequireFromString("24.99"), Interval: "month", Active: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "prod_123", *p.StripeProductID)
	assert.True(t, p.Price.Equal(decimal.RequireFromString("24.99")))

	p, err = repo.SetActive(ctx, "pro", false)
	require.NoError(t, err)
	assert.False(t, p.Active)

	active, err := repo.ListActive(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = repo.SetActive(ctx, "missing", false)
	assert.ErrorIs(t, err, plans.ErrNotFound)

	missing, err := repo.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
