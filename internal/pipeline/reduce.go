package pipeline

import (
	"fmt"
	"sort"
	"strings"

	"go-sku-demand/internal/model"
)

// Reducer is the terminal transform of one store's filtered order set. The
// kind tag selects one of the closed set of reductions; all three share the
// same fetch/filter skeleton upstream and only differ here.
type Reducer struct {
	Kind             model.ReducerKind
	Extractor        *SKUExtractor
	AllowPrefixes    []string // SKU family allow-list; empty = allow all
	CountEmptyOrders bool     // count orders with zero surviving line items
}

// Reduce produces one store's contribution to the report. The input must
// already be filtered; Reduce never excludes whole orders, only line items
// without a derivable SKU (plus, for the totals kind, items outside the
// allow-list).
func (r *Reducer) Reduce(storeID string, orders []model.Order) model.ReduceResult {
	var res model.ReduceResult
	switch r.Kind {
	case model.ReduceOrderDetails:
		res = r.reduceDetails(storeID, orders)
	case model.ReduceOrderSKUs:
		res = r.reduceOrderSKUs(storeID, orders)
	default:
		res = r.reduceTotals(orders)
	}

	if res.Stats.SkippedItems > 0 {
		fmt.Printf("⚠️ %s: skipped %d line items with no derivable SKU\n", storeID, res.Stats.SkippedItems)
	}
	return res
}

// reduceTotals sums quantities of allow-listed SKUs across the store.
func (r *Reducer) reduceTotals(orders []model.Order) model.ReduceResult {
	res := model.ReduceResult{SKUTotals: make(map[string]int)}
	for _, o := range orders {
		matched := 0
		for _, li := range o.LineItems {
			sku, ok := r.Extractor.Extract(li)
			if !ok {
				res.Stats.SkippedItems++
				continue
			}
			if !r.allowed(sku) {
				continue
			}
			res.SKUTotals[sku] += li.Quantity
			matched++
		}
		res.Stats.MatchedItems += matched
		if matched > 0 || r.CountEmptyOrders {
			res.Stats.Orders++
		}
	}
	return res
}

// reduceDetails flattens every line item with a derivable SKU into one row.
func (r *Reducer) reduceDetails(storeID string, orders []model.Order) model.ReduceResult {
	var res model.ReduceResult
	for _, o := range orders {
		matched := 0
		for _, li := range o.LineItems {
			sku, ok := r.Extractor.Extract(li)
			if !ok {
				res.Stats.SkippedItems++
				continue
			}
			res.Details = append(res.Details, model.OrderDetail{
				StoreID:   storeID,
				OrderID:   o.ID,
				OrderName: o.Name,
				CreatedAt: o.CreatedAt,
				Country:   o.ShippingCountry(),
				SKU:       sku,
				Title:     li.Title,
				Quantity:  li.Quantity,
			})
			matched++
		}
		res.Stats.MatchedItems += matched
		if matched > 0 || r.CountEmptyOrders {
			res.Stats.Orders++
		}
	}
	return res
}

// reduceOrderSKUs emits one row per order and distinct SKU, quantities
// summed within the order. Rows within an order are sorted by SKU so the
// export is deterministic.
func (r *Reducer) reduceOrderSKUs(storeID string, orders []model.Order) model.ReduceResult {
	var res model.ReduceResult
	for _, o := range orders {
		perOrder := make(map[string]int)
		for _, li := range o.LineItems {
			sku, ok := r.Extractor.Extract(li)
			if !ok {
				res.Stats.SkippedItems++
				continue
			}
			perOrder[sku] += li.Quantity
		}

		skus := make([]string, 0, len(perOrder))
		for sku := range perOrder {
			skus = append(skus, sku)
		}
		sort.Strings(skus)
		for _, sku := range skus {
			res.OrderSKUs = append(res.OrderSKUs, model.OrderSKU{
				StoreID:   storeID,
				OrderID:   o.ID,
				OrderName: o.Name,
				CreatedAt: o.CreatedAt,
				SKU:       sku,
				Quantity:  perOrder[sku],
			})
		}
		res.Stats.MatchedItems += len(perOrder)
		if len(perOrder) > 0 || r.CountEmptyOrders {
			res.Stats.Orders++
		}
	}
	return res
}

func (r *Reducer) allowed(sku string) bool {
	if len(r.AllowPrefixes) == 0 {
		return true
	}
	for _, prefix := range r.AllowPrefixes {
		if strings.HasPrefix(sku, prefix) {
			return true
		}
	}
	return false
}
