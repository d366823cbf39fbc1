package pipeline

import (
	"regexp"
	"strings"

	"go-sku-demand/internal/model"
)

// Rule decides whether an order survives filtering. Returning false excludes
// the order. Rules compose by intersection and are commutative, so the slice
// order never changes the surviving set.
type Rule func(model.Order) bool

// ExcludeCancelled drops orders whose cancelled_at is set.
func ExcludeCancelled() Rule {
	return func(o model.Order) bool {
		return !o.Cancelled()
	}
}

// ExcludeFulfillmentStatus drops orders whose fulfillment status is in the
// given set (e.g. fulfilled, partial, restocked).
func ExcludeFulfillmentStatus(statuses []string) Rule {
	set := statusSet(statuses)
	return func(o model.Order) bool {
		return !set[strings.ToLower(o.FulfillmentStatus)]
	}
}

// ExcludeFinancialStatus drops orders whose financial status is in the given
// set (e.g. voided, refunded, partially_refunded).
func ExcludeFinancialStatus(statuses []string) Rule {
	set := statusSet(statuses)
	return func(o model.Order) bool {
		return !set[strings.ToLower(o.FinancialStatus)]
	}
}

// ExcludeNamePattern drops orders whose display name matches the given
// pattern. Stores mark internal/test orders this way.
func ExcludeNamePattern(re *regexp.Regexp) Rule {
	return func(o model.Order) bool {
		return !re.MatchString(o.Name)
	}
}

// Apply runs every rule over the order set and returns the survivors. Pure:
// the input slice is never mutated. Reducers assume their input already went
// through Apply.
func Apply(orders []model.Order, rules []Rule) []model.Order {
	if len(rules) == 0 {
		return orders
	}
	kept := make([]model.Order, 0, len(orders))
outer:
	for _, o := range orders {
		for _, rule := range rules {
			if !rule(o) {
				continue outer
			}
		}
		kept = append(kept, o)
	}
	return kept
}

func statusSet(statuses []string) map[string]bool {
	set := make(map[string]bool, len(statuses))
	for _, s := range statuses {
		set[strings.ToLower(s)] = true
	}
	return set
}
