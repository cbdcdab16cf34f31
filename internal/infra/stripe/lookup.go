package stripe

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
)

// Price is the pair of Stripe ids a plan row references.
type Price struct {
	ProductID string
	PriceID   string
}

type Lookup struct {
	api *client.API
}

func NewLookup(secretKey string) *Lookup {
	return &Lookup{api: client.New(secretKey, nil)}
}

// PriceByLookupKey finds the active price whose lookup_key equals key.
func (l *Lookup) PriceByLookupKey(ctx context.Context, key string) (Price, bool, error) {
	params := &stripe.PriceListParams{
		Active:     stripe.Bool(true),
		LookupKeys: stripe.StringSlice([]string{key}),
	}
	params.Context = ctx
	params.Limit = stripe.Int64(1)

	iter := l.api.Prices.List(params)
	for iter.Next() {
		p := iter.Price()
		if p.Product == nil {
			return Price{}, false, fmt.Errorf("stripe: price %s has no product", p.ID)
		}
		return Price{ProductID: p.Product.ID, PriceID: p.ID}, true, nil
	}
	if err := iter.Err(); err != nil {
		return Price{}, false, fmt.Errorf("stripe: list prices for %q: %w", key, err)
	}
	return Price{}, false, nil
}
