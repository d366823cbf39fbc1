package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNormalizeWindowNoEndDefaultsToNow(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

	w := NormalizeWindow(nil, nil, now)

	assert.True(t, w.Start.IsZero(), "no start date means no lower bound")
	assert.Equal(t, now, w.End)
}

func TestNormalizeWindowEndTodayStaysOpen(t *testing.T) {
	end := date(2024, 3, 15)

	// Two invocations with different "now" instants on the same calendar
	// day must produce different effective windows: the window is live.
	first := NormalizeWindow(nil, &end, time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC))
	second := NormalizeWindow(nil, &end, time.Date(2024, 3, 15, 10, 30, 1, 0, time.UTC))

	assert.NotEqual(t, first.End, second.End)
	assert.Equal(t, time.Date(2024, 3, 15, 10, 30, 1, 0, time.UTC), second.End)
}

func TestNormalizeWindowPastEndExtendsToEndOfDay(t *testing.T) {
	start := date(2024, 3, 1)
	end := date(2024, 3, 10)
	now := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

	w := NormalizeWindow(&start, &end, now)

	assert.Equal(t, start, w.Start)
	assert.Equal(t, time.Date(2024, 3, 10, 23, 59, 59, 0, time.UTC), w.End)
}

func TestWindowSpecCapsPageSize(t *testing.T) {
	w := Window{End: date(2024, 3, 10)}

	spec := w.Spec(9999)

	assert.Equal(t, 250, spec.PageSize)
	assert.Equal(t, "unfulfilled", spec.FulfillmentStatus)
	assert.True(t, spec.CreatedAtMin.IsZero())
}
