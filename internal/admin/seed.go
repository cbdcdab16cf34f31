package admin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/Spok95/plan-catalog/internal/domain/plans"
)

var validIntervals = map[string]bool{"day": true, "week": true, "month": true, "year": true}

type definitionFile struct {
	Plans []definition `yaml:"plans"`
}

type definition struct {
	ID              string         `yaml:"id"`
	Name            string         `yaml:"name"`
	Description     *string        `yaml:"description"`
	Price           string         `yaml:"price"`
	Interval        string         `yaml:"interval"`
	Active          *bool          `yaml:"active"`
	StripeProductID *string        `yaml:"stripe_product_id"`
	StripePriceID   *string        `yaml:"stripe_price_id"`
	Features        map[string]any `yaml:"features"`
}

// LoadDefinitions parses a YAML plan file. Plans default to active.
func LoadDefinitions(r io.Reader) ([]plans.Plan, error) {
	var f definitionFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("admin: parse plan file: %w", err)
	}
	if len(f.Plans) == 0 {
		return nil, errors.New("admin: plan file defines no plans")
	}

	seen := make(map[string]bool, len(f.Plans))
	out := make([]plans.Plan, 0, len(f.Plans))
	for i, d := range f.Plans {
		p, err := d.toPlan()
		if err != nil {
			return nil, fmt.Errorf("admin: plan #%d: %w", i+1, err)
		}
		if seen[p.ID] {
			return nil, fmt.Errorf("admin: plan %q defined twice", p.ID)
		}
		seen[p.ID] = true
		out = append(out, p)
	}
	return out, nil
}

func (d definition) toPlan() (plans.Plan, error) {
	id := strings.TrimSpace(d.ID)
	if id == "" {
		return plans.Plan{}, errors.New("id is required")
	}
	if strings.TrimSpace(d.Name) == "" {
		return plans.Plan{}, fmt.Errorf("plan %q: name is required", id)
	}
	price, err := decimal.NewFromString(strings.TrimSpace(d.Price))
	if err != nil {
		return plans.Plan{}, fmt.Errorf("plan %q: price %q: %w", id, d.Price, err)
	}
	if price.IsNegative() {
		return plans.Plan{}, fmt.Errorf("plan %q: price must not be negative", id)
	}
	interval := d.Interval
	if interval == "" {
		interval = "month"
	}
	if !validIntervals[interval] {
		return plans.Plan{}, fmt.Errorf("plan %q: unknown interval %q", id, interval)
	}
	features := []byte(`{}`)
	if d.Features != nil {
		if features, err = json.Marshal(d.Features); err != nil {
			return plans.Plan{}, fmt.Errorf("plan %q: features: %w", id, err)
		}
	}
	active := true
	if d.Active != nil {
		active = *d.Active
	}
	return plans.Plan{
		ID:              id,
		Name:            d.Name,
		Description:     d.Description,
		Price:           price,
		Interval:        interval,
		StripeProductID: d.StripeProductID,
		StripePriceID:   d.StripePriceID,
		Features:        features,
		Active:          active,
	}, nil
}

// Seed upserts each definition. Plans already matching their definition
// are left untouched.
func (a *Admin) Seed(ctx context.Context, defs []plans.Plan) (Result, error) {
	res := a.newResult("seed")
	for _, def := range defs {
		before, err := a.store.Get(ctx, def.ID)
		if err != nil {
			return *res, fmt.Errorf("admin: load plan %q: %w", def.ID, err)
		}

		want := def
		if before != nil {
			// upsert keeps stored stripe ids when the definition has none
			if want.StripeProductID == nil {
				want.StripeProductID = before.StripeProductID
			}
			if want.StripePriceID == nil {
				want.StripePriceID = before.StripePriceID
			}
		}
		changes := Diff(before, want)
		if len(changes) > 0 && !a.dryRun {
			if _, err := a.store.Upsert(ctx, def); err != nil {
				return *res, fmt.Errorf("admin: upsert plan %q: %w", def.ID, err)
			}
		}
		a.record(res, def.ID, changes)
	}
	return *res, nil
}
