package admin

import (
	"encoding/json"
	"reflect"
	"strconv"

	"github.com/Spok95/plan-catalog/internal/domain/plans"
)

// Change is one field of one plan going from Before to After.
type Change struct {
	PlanID string
	Field  string
	Before string
	After  string
}

// Diff lists the fields that differ between two versions of a plan. A nil
// before means the plan is new.
func Diff(before *plans.Plan, after plans.Plan) []Change {
	var b plans.Plan
	if before != nil {
		b = *before
	}
	var out []Change
	add := func(field, from, to string) {
		if from != to {
			out = append(out, Change{PlanID: after.ID, Field: field, Before: from, After: to})
		}
	}

	if before == nil {
		add("id", "", after.ID)
	}
	add("name", b.Name, after.Name)
	add("description", deref(b.Description), deref(after.Description))
	if before == nil || !b.Price.Equal(after.Price) {
		add("price", priceString(before, b), after.Price.String())
	}
	add("interval", b.Interval, after.Interval)
	add("stripe_product_id", deref(b.StripeProductID), deref(after.StripeProductID))
	add("stripe_price_id", deref(b.StripePriceID), deref(after.StripePriceID))
	if before == nil || !sameJSON(b.Features, after.Features) {
		add("features", string(b.Features), string(after.Features))
	}
	if before == nil || b.Active != after.Active {
		add("active", boolString(before, b.Active), strconv.FormatBool(after.Active))
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func priceString(before *plans.Plan, b plans.Plan) string {
	if before == nil {
		return ""
	}
	return b.Price.String()
}

func boolString(before *plans.Plan, v bool) string {
	if before == nil {
		return ""
	}
	return strconv.FormatBool(v)
}

// sameJSON compares two JSON documents by value, so key order and spacing
// from jsonb normalization do not count as changes.
func sameJSON(a, b []byte) bool {
	if len(a) == 0 {
		a = []byte(`{}`)
	}
	if len(b) == 0 {
		b = []byte(`{}`)
	}
	var va, vb any
	if json.Unmarshal(a, &va) != nil || json.Unmarshal(b, &vb) != nil {
		return string(a) == string(b)
	}
	return reflect.DeepEqual(va, vb)
}
