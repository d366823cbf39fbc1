package shopify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"go-sku-demand/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCred() model.StoreCredential {
	return model.StoreCredential{ID: "ES", Host: "ignored", APIKey: "key", Password: "pw"}
}

// pagedStore fakes the admin order API: a fixed set of pages chained by
// Link headers with opaque page_info cursors.
func pagedStore(t *testing.T, pages [][]model.Order) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		require.True(t, ok, "request must carry basic auth")
		require.Equal(t, "key", user)
		require.Equal(t, "pw", pass)

		page := 0
		if cursor := r.URL.Query().Get("page_info"); cursor != "" {
			fmt.Sscanf(cursor, "cursor-%d", &page)
		} else {
			// The first request carries the search filters...
			require.NotEmpty(t, r.URL.Query().Get("limit"))
		}

		if page < len(pages)-1 {
			next := fmt.Sprintf("%s/admin/api/orders.json?page_info=cursor-%d", srv.URL, page+1)
			w.Header().Set("Link", fmt.Sprintf(`<%s>; rel="next"`, next))
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"orders": pages[page]})
	}))
	return srv
}

func ordersNamed(names ...string) []model.Order {
	out := make([]model.Order, len(names))
	for i, n := range names {
		out[i] = model.Order{Name: n, CreatedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)}
	}
	return out
}

func TestFetchOrdersWalksEveryPage(t *testing.T) {
	pages := [][]model.Order{
		ordersNamed("#1001", "#1002"),
		ordersNamed("#1003"),
		ordersNamed("#1004", "#1005"),
	}
	srv := pagedStore(t, pages)
	defer srv.Close()

	c := NewClientForTest(testCred(), srv.URL)
	got, err := c.FetchOrders(context.Background(), model.QuerySpec{PageSize: 2})

	require.NoError(t, err)
	var names []string
	for _, o := range got {
		names = append(names, o.Name)
	}
	// Exact union of all pages: no duplicates, no omissions, terminated by
	// the page without a next link.
	assert.Equal(t, []string{"#1001", "#1002", "#1003", "#1004", "#1005"}, names)
}

func TestFetchOrdersSendsWindowParams(t *testing.T) {
	var gotQuery atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery.Store(r.URL.Query())
		json.NewEncoder(w).Encode(map[string]interface{}{"orders": []model.Order{}})
	}))
	defer srv.Close()

	c := NewClientForTest(testCred(), srv.URL)
	spec := model.QuerySpec{
		CreatedAtMin:      time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		CreatedAtMax:      time.Date(2024, 3, 10, 23, 59, 59, 0, time.UTC),
		FulfillmentStatus: "unfulfilled",
		PageSize:          250,
	}
	_, err := c.FetchOrders(context.Background(), spec)
	require.NoError(t, err)

	q := gotQuery.Load().(url.Values)
	assert.Equal(t, "2024-03-01T00:00:00Z", q.Get("created_at_min"))
	assert.Equal(t, "2024-03-10T23:59:59Z", q.Get("created_at_max"))
	assert.Equal(t, "unfulfilled", q.Get("fulfillment_status"))
	assert.Equal(t, "250", q.Get("limit"))
	assert.Equal(t, "any", q.Get("status"))
}

func TestFetchOrdersRetriesRateLimit(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "throttled", http.StatusTooManyRequests)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"orders": ordersNamed("#1001")})
	}))
	defer srv.Close()

	c := NewClientForTest(testCred(), srv.URL)
	got, err := c.FetchOrders(context.Background(), model.QuerySpec{PageSize: 250})

	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, int32(2), calls.Load())
}

func TestFetchOrdersGivesUpAfterBoundedRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClientForTest(testCred(), srv.URL)
	_, err := c.FetchOrders(context.Background(), model.QuerySpec{PageSize: 250})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
	assert.Equal(t, int32(maxAttempts), calls.Load())
}

func TestFetchOrdersDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad credentials", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClientForTest(testCred(), srv.URL)
	_, err := c.FetchOrders(context.Background(), model.QuerySpec{PageSize: 250})

	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load(), "401 is not transient and must not be retried")
}

func TestNextPageURL(t *testing.T) {
	next := nextPageURL(`<https://shop/admin/api/orders.json?page_info=abc>; rel="next"`)
	assert.Equal(t, "https://shop/admin/api/orders.json?page_info=abc", next)

	both := nextPageURL(`<https://shop/a?page_info=p>; rel="previous", <https://shop/a?page_info=n>; rel="next"`)
	assert.Equal(t, "https://shop/a?page_info=n", both)

	assert.Empty(t, nextPageURL(`<https://shop/a?page_info=p>; rel="previous"`))
	assert.Empty(t, nextPageURL(""))
}
