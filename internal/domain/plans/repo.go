package plans

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("plans: plan not found")

const planColumns = `id, name, description, price, interval, stripe_product_id, stripe_price_id, features, active, created_at, updated_at`

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

// ListActive returns active plans ordered by price, id breaking ties. The
// pooled connection is released on every return path.
func (r *Repo) ListActive(ctx context.Context) ([]Plan, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
		SELECT id, name, description, price, interval, stripe_product_id, stripe_price_id, features
		FROM plans
		WHERE active = TRUE
		ORDER BY price ASC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Plan{}
	for rows.Next() {
		p := Plan{Active: true}
		if err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.Description,
			&p.Price,
			&p.Interval,
			&p.StripeProductID,
			&p.StripePriceID,
			&p.Features,
		); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// List returns every plan, inactive ones included.
func (r *Repo) List(ctx context.Context) ([]Plan, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+planColumns+` FROM plans ORDER BY price ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Plan{}
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *Repo) Get(ctx context.Context, id string) (*Plan, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+planColumns+` FROM plans WHERE id = $1`, id)
	p, err := scanPlan(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

// Upsert inserts the plan or overwrites its catalog fields. Stripe ids are
// kept when the incoming value is nil.
func (r *Repo) Upsert(ctx context.Context, p Plan) (*Plan, error) {
	features := p.Features
	if len(features) == 0 {
		features = []byte(`{}`)
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO plans (id, name, description, price, interval, stripe_product_id, stripe_price_id, features, active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (id) DO UPDATE SET
			name              = EXCLUDED.name,
			description       = EXCLUDED.description,
			price             = EXCLUDED.price,
			interval          = EXCLUDED.interval,
			stripe_product_id = COALESCE(EXCLUDED.stripe_product_id, plans.stripe_product_id),
			stripe_price_id   = COALESCE(EXCLUDED.stripe_price_id, plans.stripe_price_id),
			features          = EXCLUDED.features,
			active            = EXCLUDED.active,
			updated_at        = NOW()
		RETURNING `+planColumns,
		p.ID, p.Name, p.Description, p.Price, p.Interval, p.StripeProductID, p.StripePriceID, features, p.Active,
	)
	return scanPlan(row)
}

func (r *Repo) SetActive(ctx context.Context, id string, active bool) (*Plan, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE plans SET active = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+planColumns, id, active)
	return notFound(scanPlan(row))
}

func (r *Repo) SetStripeIDs(ctx context.Context, id, productID, priceID string) (*Plan, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE plans SET stripe_product_id = $2, stripe_price_id = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING `+planColumns, id, productID, priceID)
	return notFound(scanPlan(row))
}

func scanPlan(row pgx.Row) (*Plan, error) {
	var p Plan
	if err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Price,
		&p.Interval,
		&p.StripeProductID,
		&p.StripePriceID,
		&p.Features,
		&p.Active,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

func notFound(p *Plan, err error) (*Plan, error) {
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}
