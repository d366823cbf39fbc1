package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-sku-demand/internal/model"
)

// Fetcher retrieves all orders matching a query spec from one store.
// internal/shopify implements it against the real admin API; tests swap in
// fakes.
type Fetcher interface {
	FetchOrders(ctx context.Context, spec model.QuerySpec) ([]model.Order, error)
}

// FetcherFactory builds a Fetcher for one store credential.
type FetcherFactory func(cred model.StoreCredential) Fetcher

// ErrNoCredential marks a store whose API key or password is not configured.
var ErrNoCredential = errors.New("store credential is missing or incomplete")

// runStore is the per-store worker: resolve credential, materialize the full
// paginated fetch, filter, reduce. Every failure mode (credential, fetch,
// timeout, reduction panic) is converted into the store's Failure outcome at
// this boundary; nothing escapes to abort sibling stores.
func runStore(
	ctx context.Context,
	cred model.StoreCredential,
	newFetcher FetcherFactory,
	spec model.QuerySpec,
	rules []Rule,
	reducer *Reducer,
	timeout time.Duration,
) (out model.StoreOutcome) {
	out = model.StoreOutcome{StoreID: cred.ID}
	defer func() {
		if r := recover(); r != nil {
			out.Err = fmt.Sprintf("worker panic: %v", r)
		}
	}()

	if !cred.Complete() {
		out.Err = ErrNoCredential.Error()
		return out
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	orders, err := newFetcher(cred).FetchOrders(ctx, spec)
	if err != nil {
		out.Err = err.Error()
		return out
	}

	// Pagination is fully materialized before any rule runs: the filter
	// operates on the whole per-store order set.
	filtered := Apply(orders, rules)
	fmt.Printf("✅ %s: %d orders fetched, %d after filtering\n", cred.ID, len(orders), len(filtered))

	out.Result = reducer.Reduce(cred.ID, filtered)
	return out
}
