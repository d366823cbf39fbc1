package api

import (
	"go-sku-demand/internal/api/handler"
	"go-sku-demand/pkg/router"
)

func RegisterRoutes(r *router.Router, reports *handler.ReportHandler) {
	r.GET("/api/v1/unfulfilled/sku", reports.UnfulfilledSKUs)
	r.GET("/api/v1/unfulfilled/orders", reports.UnfulfilledOrders)
	r.GET("/api/v1/unfulfilled/order-skus", reports.UnfulfilledOrderSKUs)

	r.GET("/api/v1/runs", handler.ListRuns)
	r.GET("/api/v1/runs/*", handler.GetRun)

	r.GET("/api/v1/healthz", handler.Healthz)
}
