package catalog

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/Spok95/plan-catalog/internal/domain/plans"
)

const Currency = "usd"

var hundred = decimal.NewFromInt(100)

// Entry is the wire form of a plan served to clients.
type Entry struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Description     *string         `json:"description"`
	Price           json.Number     `json:"price"`
	Interval        string          `json:"interval"`
	StripeProductID *string         `json:"stripe_product_id"`
	StripePriceID   *string         `json:"stripe_price_id"`
	Features        json.RawMessage `json:"features"`
	Amount          int64           `json:"amount"`
	Currency        string          `json:"currency"`
}

// NewEntry maps a stored plan to its catalog entry.
func NewEntry(p plans.Plan) (Entry, error) {
	features, err := NormalizeFeatures(p.Features)
	if err != nil {
		return Entry{}, &IntegrityError{PlanID: p.ID, Err: err}
	}
	return Entry{
		ID:              p.ID,
		Name:            p.Name,
		Description:     p.Description,
		Price:           json.Number(p.Price.String()),
		Interval:        p.Interval,
		StripeProductID: p.StripeProductID,
		StripePriceID:   p.StripePriceID,
		Features:        features,
		Amount:          Amount(p.Price),
		Currency:        Currency,
	}, nil
}

// Amount converts a major-unit price to integer cents, rounding half away
// from zero. Zero stays exactly zero.
func Amount(price decimal.Decimal) int64 {
	if price.IsZero() {
		return 0
	}
	return price.Mul(hundred).Round(0).IntPart()
}

// NormalizeFeatures returns features as structured JSON. A JSON string is
// decoded once and must hold an object, array, number, bool or null. SQL
// NULL and JSON null, serialized or not, become an empty object.
func NormalizeFeatures(raw []byte) (json.RawMessage, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return json.RawMessage(`{}`), nil
	}
	if !json.Valid(raw) {
		return nil, errors.New("stored value is not valid JSON")
	}
	if raw[0] != '"' {
		return compact(raw)
	}

	var serialized string
	if err := json.Unmarshal(raw, &serialized); err != nil {
		return nil, err
	}
	inner := bytes.TrimSpace([]byte(serialized))
	if !json.Valid(inner) {
		var v any
		if err := json.Unmarshal(inner, &v); err != nil {
			return nil, err
		}
		return nil, errors.New("serialized features are not valid JSON")
	}
	if inner[0] == '"' {
		return nil, errors.New("serialized features decode to a string")
	}
	if bytes.Equal(inner, []byte("null")) {
		return json.RawMessage(`{}`), nil
	}
	return compact(inner)
}

func compact(raw []byte) (json.RawMessage, error) {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return nil, err
	}
	return json.RawMessage(buf.Bytes()), nil
}
