package model

// ProductCount is one aggregated SKU total across all successful stores.
type ProductCount struct {
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
}

// AggregateReport is the response payload of a report request. Exactly one
// of Products / Orders / OrderSKUs is set, depending on the reducer that ran.
// Partial success is the normal case: Errors names the stores that failed
// while the result fields reflect every store that succeeded.
type AggregateReport struct {
	Products   []ProductCount        `json:"products,omitempty"`
	Orders     []OrderDetail         `json:"orders,omitempty"`
	OrderSKUs  []OrderSKU            `json:"order_skus,omitempty"`
	Errors     map[string]string     `json:"errors"`
	StoreStats map[string]StoreStats `json:"store_stats,omitempty"`

	TimeElapsed string   `json:"time_elapsed"`
	StartDate   string   `json:"start_date"`
	EndDate     string   `json:"end_date"`
	Stores      []string `json:"stores"`
}
