package store

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

var db *sql.DB

// InitDB opens the run-history database and creates tables if needed. Run
// history is operational metadata only: report results are never written
// here, so nothing is ever served back from storage.
func InitDB(dbPath string) error {
	var err error
	db, err = sql.Open("sqlite3", dbPath)
	if err != nil {
		return err
	}

	runTable := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		reducer TEXT,
		start_date TEXT,
		end_date TEXT,
		status TEXT,
		elapsed_ms INTEGER,
		created_at DATETIME
	);
	`
	errorTable := `
	CREATE TABLE IF NOT EXISTS run_errors (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT,
		store_id TEXT,
		error_message TEXT,
		created_at DATETIME
	);
	`

	if _, err := db.Exec(runTable); err != nil {
		return err
	}
	if _, err := db.Exec(errorTable); err != nil {
		return err
	}

	return nil
}

// Enabled reports whether run tracking is active. Handlers skip recording
// when the store was never initialized (e.g. in tests).
func Enabled() bool { return db != nil }

// SaveRun records the start of a report run.
func SaveRun(runID, reducer, startDate, endDate string) error {
	if db == nil {
		return nil
	}
	now := time.Now().UTC()
	_, err := db.Exec(`INSERT INTO runs (id, reducer, start_date, end_date, status, elapsed_ms, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		runID, reducer, startDate, endDate, "running", 0, now)
	return err
}

// SaveRunError records one failed store for a run.
func SaveRunError(runID, storeID, message string) error {
	if db == nil || message == "" {
		return nil
	}
	now := time.Now().UTC()
	_, err := db.Exec(`INSERT INTO run_errors (run_id, store_id, error_message, created_at) VALUES (?, ?, ?, ?)`,
		runID, storeID, message, now)
	return err
}

// FinishRun finalizes a run's status and elapsed time. Status is one of
// completed, partial (some stores failed) or failed (all stores failed).
func FinishRun(runID, status string, elapsed time.Duration) error {
	if db == nil {
		return nil
	}
	_, err := db.Exec(`UPDATE runs SET status = ?, elapsed_ms = ? WHERE id = ?`,
		status, elapsed.Milliseconds(), runID)
	return err
}

// ListRuns returns all recorded runs, newest first.
func ListRuns() ([]map[string]interface{}, error) {
	rows, err := db.Query(`SELECT id, reducer, start_date, end_date, status, elapsed_ms, created_at FROM runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []map[string]interface{}
	for rows.Next() {
		var id, reducer, startDate, endDate, status string
		var elapsedMS int64
		var createdAt time.Time
		if err := rows.Scan(&id, &reducer, &startDate, &endDate, &status, &elapsedMS, &createdAt); err != nil {
			return nil, err
		}
		runs = append(runs, map[string]interface{}{
			"id":        id,
			"reducer":   reducer,
			"startDate": startDate,
			"endDate":   endDate,
			"status":    status,
			"elapsedMs": elapsedMS,
			"createdAt": createdAt,
		})
	}
	return runs, rows.Err()
}

// GetRun fetches one run plus its per-store errors.
func GetRun(runID string) (map[string]interface{}, error) {
	var reducer, startDate, endDate, status string
	var elapsedMS int64
	var createdAt time.Time

	err := db.QueryRow(`SELECT reducer, start_date, end_date, status, elapsed_ms, created_at FROM runs WHERE id = ?`, runID).
		Scan(&reducer, &startDate, &endDate, &status, &elapsedMS, &createdAt)
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(`SELECT store_id, error_message, created_at FROM run_errors WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var storeErrors []map[string]interface{}
	for rows.Next() {
		var storeID, message string
		var at time.Time
		if err := rows.Scan(&storeID, &message, &at); err != nil {
			return nil, err
		}
		storeErrors = append(storeErrors, map[string]interface{}{
			"storeId":   storeID,
			"message":   message,
			"createdAt": at,
		})
	}

	return map[string]interface{}{
		"id":        runID,
		"reducer":   reducer,
		"startDate": startDate,
		"endDate":   endDate,
		"status":    status,
		"elapsedMs": elapsedMS,
		"createdAt": createdAt,
		"errors":    storeErrors,
	}, rows.Err()
}
