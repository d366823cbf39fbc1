package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go-sku-demand/internal/model"
)

// Coordinator fans one store worker out per configured store and fans the
// per-store outcomes back in. Workers share only the read-only query spec
// and credential table; each one writes a single slot of the outcome slice,
// so there is no contended state.
type Coordinator struct {
	stores       []model.StoreCredential
	newFetcher   FetcherFactory
	rules        []Rule
	storeTimeout time.Duration
}

// NewCoordinator builds a coordinator over the configured stores, in the
// order they should appear in reports.
func NewCoordinator(stores []model.StoreCredential, newFetcher FetcherFactory, rules []Rule, storeTimeout time.Duration) *Coordinator {
	return &Coordinator{
		stores:       stores,
		newFetcher:   newFetcher,
		rules:        rules,
		storeTimeout: storeTimeout,
	}
}

// StoreIDs returns the configured store identifiers in report order.
func (c *Coordinator) StoreIDs() []string {
	ids := make([]string, len(c.stores))
	for i, s := range c.stores {
		ids[i] = s.ID
	}
	return ids
}

// Aggregate dispatches every store worker concurrently and waits for all of
// them: the result is only well-formed once each store has reported either a
// success or a failure. There is no early return on either. The returned
// slice preserves configured store order regardless of completion order.
func (c *Coordinator) Aggregate(ctx context.Context, spec model.QuerySpec, reducer *Reducer) []model.StoreOutcome {
	fmt.Printf("🚀 Dispatching %d store workers (%s)\n", len(c.stores), reducer.Kind)

	outcomes := make([]model.StoreOutcome, len(c.stores))
	var wg sync.WaitGroup
	for i, cred := range c.stores {
		wg.Add(1)
		go func(slot int, cred model.StoreCredential) {
			defer wg.Done()
			outcomes[slot] = runStore(ctx, cred, c.newFetcher, spec, c.rules, reducer, c.storeTimeout)
		}(i, cred)
	}
	wg.Wait()

	failed := 0
	for _, o := range outcomes {
		if o.Failed() {
			failed++
			fmt.Printf("❌ %s: %s\n", o.StoreID, o.Err)
		}
	}
	fmt.Printf("📊 All workers done: %d succeeded, %d failed\n", len(outcomes)-failed, failed)
	return outcomes
}
