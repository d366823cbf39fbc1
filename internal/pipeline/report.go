package pipeline

import (
	"fmt"
	"sort"
	"time"

	"go-sku-demand/internal/model"
)

// reportDateLayout matches the payload format consumers already parse.
const reportDateLayout = "02-01-2006 15:04:05"

// BuildReport merges per-store outcomes into the response payload. Failed
// stores contribute only to the error map; successful ones merge according
// to the reducer kind: SKU totals union with summation, list reducers
// concatenate in store order.
func BuildReport(kind model.ReducerKind, outcomes []model.StoreOutcome, w Window, elapsed time.Duration) model.AggregateReport {
	report := model.AggregateReport{
		Errors:      make(map[string]string),
		StoreStats:  make(map[string]model.StoreStats),
		TimeElapsed: fmt.Sprintf("%.3f seconds", elapsed.Seconds()),
		StartDate:   formatReportDate(w.Start),
		EndDate:     formatReportDate(w.End),
		Stores:      make([]string, 0, len(outcomes)),
	}

	totals := make(map[string]int)
	for _, o := range outcomes {
		report.Stores = append(report.Stores, o.StoreID)
		if o.Failed() {
			report.Errors[o.StoreID] = o.Err
			continue
		}
		report.StoreStats[o.StoreID] = o.Result.Stats

		switch kind {
		case model.ReduceOrderDetails:
			report.Orders = append(report.Orders, o.Result.Details...)
		case model.ReduceOrderSKUs:
			report.OrderSKUs = append(report.OrderSKUs, o.Result.OrderSKUs...)
		default:
			for sku, qty := range o.Result.SKUTotals {
				totals[sku] += qty
			}
		}
	}

	if kind == model.ReduceSKUTotals {
		report.Products = sortedProducts(totals)
	}
	return report
}

// sortedProducts turns the merged totals into a SKU-sorted slice so the
// payload is deterministic across requests.
func sortedProducts(totals map[string]int) []model.ProductCount {
	products := make([]model.ProductCount, 0, len(totals))
	for sku, qty := range totals {
		products = append(products, model.ProductCount{SKU: sku, Quantity: qty})
	}
	sort.Slice(products, func(i, j int) bool { return products[i].SKU < products[j].SKU })
	return products
}

func formatReportDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(reportDateLayout)
}
