package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"go-sku-demand/internal/store"
)

// ListRuns retrieves the report run history
// @Summary List report runs
// @Description All recorded report runs, newest first
// @Tags runs
// @Produce json
// @Success 200 {array} map[string]interface{} "Run history"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /runs [get]
func ListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := store.ListRuns()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to fetch runs")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"runs":  runs,
		"count": len(runs),
	})
}

// GetRun retrieves one run with its per-store errors
// @Summary Get report run
// @Description One run's window, status, timing and per-store errors
// @Tags runs
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} map[string]interface{} "Run details"
// @Failure 400 {object} map[string]interface{} "Missing run ID"
// @Failure 404 {object} map[string]interface{} "Run not found"
// @Router /runs/{id} [get]
func GetRun(w http.ResponseWriter, r *http.Request) {
	const prefix = "/api/v1/runs/"
	if !strings.HasPrefix(r.URL.Path, prefix) {
		writeError(w, http.StatusBadRequest, "invalid path")
		return
	}
	runID := r.URL.Path[len(prefix):]
	if runID == "" {
		writeError(w, http.StatusBadRequest, "run ID is required")
		return
	}

	run, err := store.GetRun(runID)
	if err != nil {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(run)
}

// Healthz is the liveness probe.
func Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
