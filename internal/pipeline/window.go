package pipeline

import (
	"time"

	"go-sku-demand/internal/model"
)

// Window is the effective report window after normalization. A zero Start
// means no lower bound.
type Window struct {
	Start time.Time
	End   time.Time
}

// NormalizeWindow resolves the caller's optional calendar dates into the
// effective window, exactly once per request:
//
//   - no end date            -> end = now
//   - end date is today      -> end = now (the window is still open)
//   - end date in the past   -> end = 23:59:59 of that day
//   - no start date          -> unbounded in the past
func NormalizeWindow(start, end *time.Time, now time.Time) Window {
	w := Window{}
	if start != nil {
		w.Start = *start
	}

	switch {
	case end == nil:
		w.End = now
	case sameDay(*end, now):
		w.End = now
	default:
		e := *end
		w.End = time.Date(e.Year(), e.Month(), e.Day(), 23, 59, 59, 0, e.Location())
	}
	return w
}

// Spec builds the one QuerySpec shared read-only by every store worker.
func (w Window) Spec(pageSize int) model.QuerySpec {
	if pageSize <= 0 || pageSize > model.MaxPageSize {
		pageSize = model.MaxPageSize
	}
	return model.QuerySpec{
		CreatedAtMin:      w.Start,
		CreatedAtMax:      w.End,
		FulfillmentStatus: "unfulfilled",
		PageSize:          pageSize,
	}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
