package handler

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go-sku-demand/internal/model"
	"go-sku-demand/internal/pipeline"
	"go-sku-demand/internal/store"
	"go-sku-demand/pkg/utils"

	"github.com/google/uuid"
)

// ReportHandler serves the demand report endpoints. All three report
// variants share the same parse/dispatch/record skeleton and differ only in
// the reducer kind handed to the coordinator.
type ReportHandler struct {
	Coordinator      *pipeline.Coordinator
	Extractor        *pipeline.SKUExtractor
	AllowPrefixes    []string
	PageSize         int
	CountEmptyOrders bool
}

// UnfulfilledSKUs returns aggregated SKU demand across all stores
// @Summary Aggregated unfulfilled SKU totals
// @Description Sum quantities of allow-listed SKUs over open orders in a date window, across every configured store
// @Tags reports
// @Produce json
// @Param start_date query string false "Window start (YYYY-MM-DD)"
// @Param end_date query string false "Window end (YYYY-MM-DD)"
// @Param format query string false "json (default) or csv"
// @Success 200 {object} model.AggregateReport "Aggregated report; failed stores appear in errors"
// @Failure 400 {object} map[string]interface{} "Malformed date parameter"
// @Router /unfulfilled/sku [get]
func (h *ReportHandler) UnfulfilledSKUs(w http.ResponseWriter, r *http.Request) {
	h.serveReport(w, r, model.ReduceSKUTotals)
}

// UnfulfilledOrders returns the flat line-item detail export
// @Summary Unfulfilled order line-item detail
// @Description One row per open line item with a derivable SKU, across every configured store
// @Tags reports
// @Produce json
// @Param start_date query string false "Window start (YYYY-MM-DD)"
// @Param end_date query string false "Window end (YYYY-MM-DD)"
// @Param format query string false "json (default) or csv"
// @Success 200 {object} model.AggregateReport
// @Failure 400 {object} map[string]interface{} "Malformed date parameter"
// @Router /unfulfilled/orders [get]
func (h *ReportHandler) UnfulfilledOrders(w http.ResponseWriter, r *http.Request) {
	h.serveReport(w, r, model.ReduceOrderDetails)
}

// UnfulfilledOrderSKUs returns the order-centric per-SKU export
// @Summary Unfulfilled per-order SKU records
// @Description One row per order and distinct SKU, across every configured store
// @Tags reports
// @Produce json
// @Param start_date query string false "Window start (YYYY-MM-DD)"
// @Param end_date query string false "Window end (YYYY-MM-DD)"
// @Param format query string false "json (default) or csv"
// @Success 200 {object} model.AggregateReport
// @Failure 400 {object} map[string]interface{} "Malformed date parameter"
// @Router /unfulfilled/order-skus [get]
func (h *ReportHandler) UnfulfilledOrderSKUs(w http.ResponseWriter, r *http.Request) {
	h.serveReport(w, r, model.ReduceOrderSKUs)
}

func (h *ReportHandler) serveReport(w http.ResponseWriter, r *http.Request, kind model.ReducerKind) {
	startDate, err := utils.ParseDate(r.URL.Query().Get("start_date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid start_date: %v", err))
		return
	}
	endDate, err := utils.ParseDate(r.URL.Query().Get("end_date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid end_date: %v", err))
		return
	}

	// The window is normalized exactly once; every store worker sees the
	// same resolved instants.
	win := pipeline.NormalizeWindow(startDate, endDate, time.Now())
	spec := win.Spec(h.PageSize)

	reducer := &pipeline.Reducer{
		Kind:             kind,
		Extractor:        h.Extractor,
		AllowPrefixes:    h.AllowPrefixes,
		CountEmptyOrders: h.CountEmptyOrders,
	}

	runID := uuid.New().String()
	if err := store.SaveRun(runID, string(kind), r.URL.Query().Get("start_date"), r.URL.Query().Get("end_date")); err != nil {
		fmt.Printf("⚠️ failed to record run %s: %v\n", runID, err)
	}

	start := time.Now()
	outcomes := h.Coordinator.Aggregate(r.Context(), spec, reducer)
	elapsed := time.Since(start)

	report := pipeline.BuildReport(kind, outcomes, win, elapsed)
	h.finishRun(runID, report, elapsed)

	w.Header().Set("X-Run-ID", runID)
	if strings.EqualFold(r.URL.Query().Get("format"), "csv") {
		writeCSV(w, kind, report)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}

// finishRun records per-store failures and the final run status.
func (h *ReportHandler) finishRun(runID string, report model.AggregateReport, elapsed time.Duration) {
	if !store.Enabled() {
		return
	}
	for storeID, msg := range report.Errors {
		if err := store.SaveRunError(runID, storeID, msg); err != nil {
			fmt.Printf("⚠️ failed to record error for run %s: %v\n", runID, err)
		}
	}

	status := "completed"
	switch {
	case len(report.Errors) == len(report.Stores) && len(report.Stores) > 0:
		status = "failed"
	case len(report.Errors) > 0:
		status = "partial"
	}
	if err := store.FinishRun(runID, status, elapsed); err != nil {
		fmt.Printf("⚠️ failed to finalize run %s: %v\n", runID, err)
	}
}

// writeCSV streams the report in CSV form. Column set depends on the
// reducer kind that produced it.
func writeCSV(w http.ResponseWriter, kind model.ReducerKind, report model.AggregateReport) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="demand_report.csv"`)

	cw := csv.NewWriter(w)
	defer cw.Flush()

	switch kind {
	case model.ReduceOrderDetails:
		cw.Write([]string{"store", "order_id", "order_name", "created_at", "country", "sku", "title", "quantity"})
		for _, row := range report.Orders {
			cw.Write([]string{
				row.StoreID,
				strconv.FormatInt(row.OrderID, 10),
				row.OrderName,
				row.CreatedAt.Format(time.RFC3339),
				row.Country,
				row.SKU,
				row.Title,
				strconv.Itoa(row.Quantity),
			})
		}
	case model.ReduceOrderSKUs:
		cw.Write([]string{"store", "order_id", "order_name", "created_at", "sku", "quantity"})
		for _, row := range report.OrderSKUs {
			cw.Write([]string{
				row.StoreID,
				strconv.FormatInt(row.OrderID, 10),
				row.OrderName,
				row.CreatedAt.Format(time.RFC3339),
				row.SKU,
				strconv.Itoa(row.Quantity),
			})
		}
	default:
		cw.Write([]string{"sku", "quantity"})
		for _, p := range report.Products {
			cw.Write([]string{p.SKU, strconv.Itoa(p.Quantity)})
		}
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{"error": msg})
}
