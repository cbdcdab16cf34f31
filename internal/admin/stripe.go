package admin

import (
	"context"
	"fmt"
	"strings"

	"github.com/Spok95/plan-catalog/internal/domain/plans"
	"github.com/Spok95/plan-catalog/internal/infra/stripe"
)

// PriceLookup resolves a plan id to the Stripe product and price behind it.
type PriceLookup interface {
	PriceByLookupKey(ctx context.Context, key string) (stripe.Price, bool, error)
}

// SetStripeIDs points plan id at the given Stripe product and price.
func (a *Admin) SetStripeIDs(ctx context.Context, id, productID, priceID string) (Result, error) {
	res := a.newResult("set-stripe")
	if err := a.setStripeIDs(ctx, res, id, productID, priceID); err != nil {
		return *res, err
	}
	return *res, nil
}

// SyncStripe looks up every plan's price by lookup key (the plan id) and
// stores the ids found. Plans without a matching price are skipped.
func (a *Admin) SyncStripe(ctx context.Context, lookup PriceLookup) (Result, error) {
	res := a.newResult("sync-stripe")

	all, err := a.store.List(ctx)
	if err != nil {
		return *res, fmt.Errorf("admin: list plans: %w", err)
	}
	for _, p := range all {
		price, found, err := lookup.PriceByLookupKey(ctx, p.ID)
		if err != nil {
			return *res, err
		}
		if !found {
			res.Skipped = append(res.Skipped, p.ID)
			a.log.Warn("no stripe price with this lookup key", "plan_id", p.ID)
			continue
		}
		if err := a.setStripeIDs(ctx, res, p.ID, price.ProductID, price.PriceID); err != nil {
			return *res, err
		}
	}
	return *res, nil
}

func (a *Admin) setStripeIDs(ctx context.Context, res *Result, id, productID, priceID string) error {
	productID, priceID = strings.TrimSpace(productID), strings.TrimSpace(priceID)
	if !strings.HasPrefix(productID, "prod_") {
		return fmt.Errorf("admin: %q is not a stripe product id", productID)
	}
	if !strings.HasPrefix(priceID, "price_") {
		return fmt.Errorf("admin: %q is not a stripe price id", priceID)
	}

	before, err := a.store.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("admin: load plan %q: %w", id, err)
	}
	if before == nil {
		return fmt.Errorf("admin: plan %q: %w", id, plans.ErrNotFound)
	}

	after := *before
	after.StripeProductID = &productID
	after.StripePriceID = &priceID
	changes := Diff(before, after)
	if len(changes) > 0 && !a.dryRun {
		if _, err := a.store.SetStripeIDs(ctx, id, productID, priceID); err != nil {
			return fmt.Errorf("admin: update plan %q: %w", id, err)
		}
	}
	a.record(res, id, changes)
	return nil
}
