package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-sku-demand/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFetcher serves canned orders (or a canned error) for one store.
type fakeFetcher struct {
	orders []model.Order
	err    error
	delay  time.Duration
}

func (f *fakeFetcher) FetchOrders(ctx context.Context, spec model.QuerySpec) ([]model.Order, error) {
	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(f.delay):
		}
	}
	return f.orders, f.err
}

func fakeFactory(fetchers map[string]*fakeFetcher) FetcherFactory {
	return func(cred model.StoreCredential) Fetcher {
		return fetchers[cred.ID]
	}
}

func creds(ids ...string) []model.StoreCredential {
	out := make([]model.StoreCredential, len(ids))
	for i, id := range ids {
		out[i] = model.StoreCredential{ID: id, Host: id + ".example.com", APIKey: "key", Password: "pw"}
	}
	return out
}

func TestAggregatePartialFailure(t *testing.T) {
	// ES holds qty 3 + qty 5 of DIVAIN-1, FR fails transiently, IT holds
	// qty 2. FR's failure must not zero out or corrupt the survivors.
	fetchers := map[string]*fakeFetcher{
		"ES": {orders: []model.Order{
			orderWithItems(1, "#1001", lineItem("DIVAIN-1", "", 3)),
			orderWithItems(2, "#1002", lineItem("DIVAIN-1", "", 5)),
		}},
		"FR": {err: errors.New("store API returned 503: upstream unavailable")},
		"IT": {orders: []model.Order{
			orderWithItems(3, "#2001", lineItem("DIVAIN-1", "", 2)),
		}},
	}
	c := NewCoordinator(creds("ES", "FR", "IT"), fakeFactory(fetchers), nil, time.Second)
	reducer := totalsReducer("DIVAIN")

	outcomes := c.Aggregate(context.Background(), model.QuerySpec{PageSize: 250}, reducer)
	report := BuildReport(model.ReduceSKUTotals, outcomes, Window{End: time.Now()}, time.Millisecond)

	require.Len(t, outcomes, 3)
	assert.Equal(t, []string{"ES", "FR", "IT"}, report.Stores)

	// Exactly one failing store in the error map; the survivors' data is
	// intact and merged.
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors["FR"], "503")
	assert.Equal(t, []model.ProductCount{{SKU: "DIVAIN-1", Quantity: 10}}, report.Products)
}

func TestAggregateMergeIsStoreDistributionIndependent(t *testing.T) {
	allItems := []model.LineItem{
		lineItem("DIVAIN-1", "", 3),
		lineItem("DIVAIN-1", "", 5),
		lineItem("DIVAIN-2", "", 2),
	}

	// Everything in one store.
	single := map[string]*fakeFetcher{
		"ES": {orders: []model.Order{orderWithItems(1, "#1", allItems...)}},
		"FR": {},
	}
	// Spread across two stores.
	spread := map[string]*fakeFetcher{
		"ES": {orders: []model.Order{orderWithItems(1, "#1", allItems[0])}},
		"FR": {orders: []model.Order{orderWithItems(2, "#2", allItems[1], allItems[2])}},
	}

	spec := model.QuerySpec{PageSize: 250}
	for _, fetchers := range []map[string]*fakeFetcher{single, spread} {
		c := NewCoordinator(creds("ES", "FR"), fakeFactory(fetchers), nil, time.Second)
		outcomes := c.Aggregate(context.Background(), spec, totalsReducer("DIVAIN"))
		report := BuildReport(model.ReduceSKUTotals, outcomes, Window{End: time.Now()}, time.Millisecond)

		assert.Equal(t, []model.ProductCount{
			{SKU: "DIVAIN-1", Quantity: 8},
			{SKU: "DIVAIN-2", Quantity: 2},
		}, report.Products)
	}
}

func TestAggregateMissingCredentialIsPerStoreFailure(t *testing.T) {
	stores := creds("ES", "FR")
	stores[1].APIKey = "" // FR has no secret configured

	fetchers := map[string]*fakeFetcher{
		"ES": {orders: []model.Order{orderWithItems(1, "#1", lineItem("DIVAIN-1", "", 1))}},
		"FR": {},
	}
	c := NewCoordinator(stores, fakeFactory(fetchers), nil, time.Second)

	outcomes := c.Aggregate(context.Background(), model.QuerySpec{}, totalsReducer("DIVAIN"))

	assert.False(t, outcomes[0].Failed())
	require.True(t, outcomes[1].Failed())
	assert.Equal(t, ErrNoCredential.Error(), outcomes[1].Err)
}

func TestAggregateSlowStoreTimesOutWithoutBlockingOthers(t *testing.T) {
	fetchers := map[string]*fakeFetcher{
		"ES": {orders: []model.Order{orderWithItems(1, "#1", lineItem("DIVAIN-1", "", 4))}},
		"FR": {delay: 5 * time.Second},
	}
	c := NewCoordinator(creds("ES", "FR"), fakeFactory(fetchers), nil, 50*time.Millisecond)

	start := time.Now()
	outcomes := c.Aggregate(context.Background(), model.QuerySpec{}, totalsReducer("DIVAIN"))

	assert.Less(t, time.Since(start), time.Second, "timed-out store must not block the fan-in")
	assert.False(t, outcomes[0].Failed())
	require.True(t, outcomes[1].Failed())
	assert.Contains(t, outcomes[1].Err, "context deadline exceeded")
}

func TestAggregateAppliesFilterBeforeReducer(t *testing.T) {
	cancelled := orderWithItems(2, "#2", lineItem("DIVAIN-9", "", 7))
	at := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	cancelled.CancelledAt = &at

	fetchers := map[string]*fakeFetcher{
		"ES": {orders: []model.Order{
			orderWithItems(1, "#1", lineItem("DIVAIN-1", "", 2)),
			cancelled,
		}},
	}
	c := NewCoordinator(creds("ES"), fakeFactory(fetchers), []Rule{ExcludeCancelled()}, time.Second)

	outcomes := c.Aggregate(context.Background(), model.QuerySpec{}, totalsReducer("DIVAIN"))

	assert.Equal(t, map[string]int{"DIVAIN-1": 2}, outcomes[0].Result.SKUTotals)
}

func TestBuildReportConcatenatesListsInStoreOrder(t *testing.T) {
	fetchers := map[string]*fakeFetcher{
		"ES": {orders: []model.Order{orderWithItems(1, "#1", lineItem("DIVAIN-1", "A", 1))}},
		"FR": {orders: []model.Order{orderWithItems(2, "#2", lineItem("DIVAIN-2", "B", 2))}},
	}
	c := NewCoordinator(creds("ES", "FR"), fakeFactory(fetchers), nil, time.Second)
	reducer := &Reducer{Kind: model.ReduceOrderDetails, Extractor: NewSKUExtractor(nil), CountEmptyOrders: true}

	outcomes := c.Aggregate(context.Background(), model.QuerySpec{}, reducer)
	report := BuildReport(model.ReduceOrderDetails, outcomes, Window{End: time.Now()}, time.Millisecond)

	require.Len(t, report.Orders, 2)
	assert.Equal(t, "ES", report.Orders[0].StoreID)
	assert.Equal(t, "FR", report.Orders[1].StoreID)
	assert.Empty(t, report.Products)
}

func TestBuildReportFormatsWindowAndElapsed(t *testing.T) {
	win := Window{
		Start: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 3, 10, 23, 59, 59, 0, time.UTC),
	}

	report := BuildReport(model.ReduceSKUTotals, nil, win, 1500*time.Millisecond)

	assert.Equal(t, "01-03-2024 00:00:00", report.StartDate)
	assert.Equal(t, "10-03-2024 23:59:59", report.EndDate)
	assert.Equal(t, "1.500 seconds", report.TimeElapsed)
}

func TestBuildReportUnboundedStartIsEmpty(t *testing.T) {
	report := BuildReport(model.ReduceSKUTotals, nil, Window{End: time.Now()}, time.Millisecond)

	assert.Empty(t, report.StartDate)
	assert.NotEmpty(t, report.EndDate)
}
