package pipeline

import (
	"regexp"
	"sync/atomic"

	"go-sku-demand/internal/model"
)

// SKUExtractor derives a canonical SKU for a line item. The structured field
// wins when present; otherwise the title is scanned for a configured SKU
// family pattern like "HOME-042". A line item with no derivable SKU is not
// an error: it is counted and the caller excludes it downstream.
type SKUExtractor struct {
	patterns []*regexp.Regexp
	misses   atomic.Int64
}

// NewSKUExtractor builds an extractor for the given SKU prefix families.
// Each prefix P matches occurrences of "P-<digits>" inside free text.
func NewSKUExtractor(prefixes []string) *SKUExtractor {
	e := &SKUExtractor{}
	for _, p := range prefixes {
		if p == "" {
			continue
		}
		e.patterns = append(e.patterns, regexp.MustCompile(regexp.QuoteMeta(p)+`-\d+`))
	}
	return e
}

// Extract returns the line item's SKU and whether one could be derived.
func (e *SKUExtractor) Extract(li model.LineItem) (string, bool) {
	if li.SKU != "" {
		return li.SKU, true
	}
	for _, re := range e.patterns {
		if m := re.FindString(li.Title); m != "" {
			return m, true
		}
	}
	e.misses.Add(1)
	return "", false
}

// Misses returns how many line items had no derivable SKU over the
// extractor's lifetime. Per-store warnings are the reducer's job; this is
// the process-wide side channel.
func (e *SKUExtractor) Misses() int64 {
	return e.misses.Load()
}
