package model

import "time"

// Order is one remote order as returned by a storefront's admin API.
// Orders are fetched fresh for every report request and never persisted.
type Order struct {
	ID                int64      `json:"id"`
	Name              string     `json:"name"`
	CreatedAt         time.Time  `json:"created_at"`
	CancelledAt       *time.Time `json:"cancelled_at"`
	FulfillmentStatus string     `json:"fulfillment_status"`
	FinancialStatus   string     `json:"financial_status"`
	ShippingAddress   *Address   `json:"shipping_address,omitempty"`
	LineItems         []LineItem `json:"line_items"`
}

// LineItem is a single product line on an order. SKU may be empty; the
// extractor falls back to scanning Title in that case.
type LineItem struct {
	ID       int64  `json:"id"`
	SKU      string `json:"sku"`
	Title    string `json:"title"`
	Quantity int    `json:"quantity"`
}

// Address carries the subset of the remote shipping address we report on.
type Address struct {
	CountryCode string `json:"country_code"`
}

// Cancelled reports whether the order has been cancelled upstream.
func (o Order) Cancelled() bool {
	return o.CancelledAt != nil && !o.CancelledAt.IsZero()
}

// ShippingCountry returns the destination country code, or "" if the order
// carries no shipping address (e.g. digital goods).
func (o Order) ShippingCountry() string {
	if o.ShippingAddress == nil {
		return ""
	}
	return o.ShippingAddress.CountryCode
}
