package plans

import (
	"time"

	"github.com/shopspring/decimal"
)

// Plan is a row of the plans table.
type Plan struct {
	ID              string
	Name            string
	Description     *string
	Price           decimal.Decimal // major currency units
	Interval        string          // "month" | "year"
	StripeProductID *string
	StripePriceID   *string
	Features        []byte // raw jsonb: an object, or a string holding serialized JSON
	Active          bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
