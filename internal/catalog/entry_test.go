package catalog

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Spok95/plan-catalog/internal/domain/plans"
)

func TestAmount(t *testing.T) {
	cases := []struct {
		price string
		want  int64
	}{
		{"0", 0},
		{"0.00", 0},
		{"19.99", 1999},
		{"9.999", 1000},
		{"9.994", 999},
		{"0.005", 1},
		{"0.01", 1},
		{"49", 4900},
		{"1234.56", 123456},
	}
	for _, tc := range cases {
		t.Run(tc.price, func(t *testing.T) {
			assert.Equal(t, tc.want, Amount(decimal.RequireFromString(tc.price)))
		})
	}
}

func TestNormalizeFeatures(t *testing.T) {
	t.Run("serialized string is parsed", func(t *testing.T) {
		got, err := NormalizeFeatures([]byte(`"{\"feature_limits\":{\"agents\":5}}"`))
		require.NoError(t, err)
		assert.JSONEq(t, `{"feature_limits":{"agents":5}}`, string(got))
	})

	t.Run("structured value passes through", func(t *testing.T) {
		got, err := NormalizeFeatures([]byte(`{"feature_limits": {"agents": 5}, "support": ["email", "chat"]}`))
		require.NoError(t, err)
		assert.JSONEq(t, `{"feature_limits":{"agents":5},"support":["email","chat"]}`, string(got))
	})

	t.Run("array passes through", func(t *testing.T) {
		got, err := NormalizeFeatures([]byte(`["sso","audit_log"]`))
		require.NoError(t, err)
		assert.JSONEq(t, `["sso","audit_log"]`, string(got))
	})

	t.Run("null becomes empty object", func(t *testing.T) {
		for _, raw := range [][]byte{nil, []byte("null"), []byte("  "), []byte(`"null"`), []byte(`" null "`)} {
			got, err := NormalizeFeatures(raw)
			require.NoError(t, err)
			assert.JSONEq(t, `{}`, string(got))
		}
	})

	t.Run("malformed serialized string fails", func(t *testing.T) {
		_, err := NormalizeFeatures([]byte(`"{\"feature_limits\": {"`))
		assert.Error(t, err)
	})

	t.Run("empty serialized string fails", func(t *testing.T) {
		_, err := NormalizeFeatures([]byte(`""`))
		assert.Error(t, err)
	})

	t.Run("double serialized string fails", func(t *testing.T) {
		_, err := NormalizeFeatures([]byte(`"\"{}\""`))
		assert.Error(t, err)
	})

	t.Run("invalid raw bytes fail", func(t *testing.T) {
		_, err := NormalizeFeatures([]byte(`{not json`))
		assert.Error(t, err)
	})
}

func TestNewEntry(t *testing.T) {
	desc := "For growing teams"
	product := "prod_123"
	p := plans.Plan{
		ID:              "pro",
		Name:            "Pro",
		Description:     &desc,
		Price:           decimal.RequireFromString("19.99"),
		Interval:        "month",
		StripeProductID: &product,
		Features:        []byte(`"{\"feature_limits\":{\"agents\":5}}"`),
		Active:          true,
	}

	e, err := NewEntry(p)
	require.NoError(t, err)

	body, err := json.Marshal(e)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": "pro",
		"name": "Pro",
		"description": "For growing teams",
		"price": 19.99,
		"interval": "month",
		"stripe_product_id": "prod_123",
		"stripe_price_id": null,
		"features": {"feature_limits": {"agents": 5}},
		"amount": 1999,
		"currency": "usd"
	}`, string(body))
}

func TestNewEntryIntegrityError(t *testing.T) {
	_, err := NewEntry(plans.Plan{ID: "broken", Price: decimal.NewFromInt(5), Features: []byte(`"{oops"`)})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDataIntegrity)
	assert.NotErrorIs(t, err, ErrUpstreamStorage)

	var ie *IntegrityError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "broken", ie.PlanID)
}
