package model

import "time"

// ReducerKind selects the terminal reduction applied to a store's filtered
// order set. The set is closed: reducers are picked by tag at the
// coordinator boundary, never passed around as callables.
type ReducerKind string

const (
	ReduceSKUTotals    ReducerKind = "sku_totals"    // sku -> summed quantity
	ReduceOrderDetails ReducerKind = "order_details" // flat line-item export
	ReduceOrderSKUs    ReducerKind = "order_skus"    // one row per order x sku
)

// OrderDetail is one exported line item in the flat detail report.
type OrderDetail struct {
	StoreID   string    `json:"store"`
	OrderID   int64     `json:"order_id"`
	OrderName string    `json:"order_name"`
	CreatedAt time.Time `json:"created_at"`
	Country   string    `json:"country,omitempty"`
	SKU       string    `json:"sku"`
	Title     string    `json:"title"`
	Quantity  int       `json:"quantity"`
}

// OrderSKU is one row of the order-centric export: a single SKU's total
// quantity within a single order.
type OrderSKU struct {
	StoreID   string    `json:"store"`
	OrderID   int64     `json:"order_id"`
	OrderName string    `json:"order_name"`
	CreatedAt time.Time `json:"created_at"`
	SKU       string    `json:"sku"`
	Quantity  int       `json:"quantity"`
}

// StoreStats summarizes what one store contributed to a report.
type StoreStats struct {
	Orders       int `json:"orders"`
	MatchedItems int `json:"matched_items"`
	SkippedItems int `json:"skipped_items"` // line items with no derivable SKU
}

// ReduceResult is one store's contribution to the report. Exactly one of
// SKUTotals / Details / OrderSKUs is populated, matching the ReducerKind.
type ReduceResult struct {
	SKUTotals map[string]int
	Details   []OrderDetail
	OrderSKUs []OrderSKU
	Stats     StoreStats
}

// StoreOutcome is the per-store result of a report request. Every configured
// store produces exactly one outcome: either a result or an error message,
// never neither and never both.
type StoreOutcome struct {
	StoreID string
	Result  ReduceResult
	Err     string
}

// Failed reports whether the store's worker ended in an error.
func (o StoreOutcome) Failed() bool { return o.Err != "" }
