package shopify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go-sku-demand/internal/model"
)

// APIError is a non-2xx response from the remote store.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("store API returned %d: %s", e.Status, e.Body)
}

// Transient reports whether the error is worth retrying (rate limit or
// server-side failure).
func (e *APIError) Transient() bool {
	return e.Status == http.StatusTooManyRequests || e.Status >= 500
}

const (
	ordersPath  = "/admin/api/orders.json"
	maxAttempts = 3
)

// Client fetches orders from a single storefront, walking the remote's
// cursor-based pagination until the store signals there are no more pages.
type Client struct {
	cred       model.StoreCredential
	httpClient *http.Client
	baseURL    string
	retryDelay time.Duration
}

// NewClient builds a client for one store credential.
func NewClient(cred model.StoreCredential) *Client {
	return &Client{
		cred:       cred,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    "https://" + cred.Host,
		retryDelay: time.Second,
	}
}

// NewClientForTest builds a client aimed at an arbitrary base URL, so tests
// can point it at a local fake store.
func NewClientForTest(cred model.StoreCredential, baseURL string) *Client {
	c := NewClient(cred)
	c.baseURL = baseURL
	c.retryDelay = time.Millisecond
	return c
}

// FetchOrders retrieves every order matching spec, page by page. Exhaustion
// is decided solely by the remote's next-page link, never by a client-side
// count. Transient page failures (429/5xx) are retried with backoff a
// bounded number of times; the first unrecoverable error stops the fetch.
func (c *Client) FetchOrders(ctx context.Context, spec model.QuerySpec) ([]model.Order, error) {
	pageURL := c.firstPageURL(spec)

	var all []model.Order
	page := 0
	for pageURL != "" {
		orders, next, err := c.fetchPage(ctx, pageURL)
		if err != nil {
			return nil, fmt.Errorf("page %d from %s: %w", page+1, c.cred.ID, err)
		}
		all = append(all, orders...)
		page++
		fmt.Printf("🌐 %s: page %d fetched, %d orders so far\n", c.cred.ID, page, len(all))
		pageURL = next
	}
	return all, nil
}

// firstPageURL builds the initial order-search request from the query spec.
// Subsequent pages reuse the opaque page_info URL handed back by the remote,
// which must not carry the search filters again.
func (c *Client) firstPageURL(spec model.QuerySpec) string {
	params := url.Values{}
	params.Set("status", "any")
	params.Set("limit", strconv.Itoa(spec.PageSize))
	if !spec.CreatedAtMin.IsZero() {
		params.Set("created_at_min", spec.CreatedAtMin.Format(time.RFC3339))
	}
	if !spec.CreatedAtMax.IsZero() {
		params.Set("created_at_max", spec.CreatedAtMax.Format(time.RFC3339))
	}
	if spec.FulfillmentStatus != "" {
		params.Set("fulfillment_status", spec.FulfillmentStatus)
	}
	return c.baseURL + ordersPath + "?" + params.Encode()
}

// fetchPage requests one page, retrying transient failures, and returns the
// page's orders plus the next-page URL ("" when the cursor chain ends).
func (c *Client) fetchPage(ctx context.Context, pageURL string) ([]model.Order, string, error) {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		orders, next, err := c.doPage(ctx, pageURL)
		if err == nil {
			return orders, next, nil
		}
		lastErr = err

		apiErr, ok := err.(*APIError)
		if !ok || !apiErr.Transient() {
			return nil, "", err
		}
		if attempt < maxAttempts {
			fmt.Printf("🔄 %s: transient error (%v), retry %d/%d\n", c.cred.ID, err, attempt, maxAttempts-1)
			select {
			case <-ctx.Done():
				return nil, "", ctx.Err()
			case <-time.After(c.retryDelay * time.Duration(attempt)):
			}
		}
	}
	return nil, "", lastErr
}

func (c *Client) doPage(ctx context.Context, pageURL string) ([]model.Order, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, "", err
	}
	req.SetBasicAuth(c.cred.APIKey, c.cred.Password)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, "", &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var page struct {
		Orders []model.Order `json:"orders"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, "", fmt.Errorf("failed to decode orders page: %w", err)
	}

	return page.Orders, nextPageURL(resp.Header.Get("Link")), nil
}

// nextPageURL extracts the rel="next" target from a Link header like
//
//	<https://shop/admin/api/orders.json?page_info=abc>; rel="next"
//
// possibly alongside a rel="previous" entry. Returns "" when no next page
// is advertised.
func nextPageURL(linkHeader string) string {
	for _, part := range strings.Split(linkHeader, ",") {
		section := strings.Split(part, ";")
		if len(section) < 2 {
			continue
		}
		target := strings.Trim(strings.TrimSpace(section[0]), "<>")
		for _, attr := range section[1:] {
			if strings.TrimSpace(attr) == `rel="next"` {
				return target
			}
		}
	}
	return ""
}
