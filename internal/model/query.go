package model

import "time"

// MaxPageSize is the largest page the remote order API accepts.
const MaxPageSize = 250

// QuerySpec describes one order search window. It is built once per report
// request and shared read-only by every store worker.
type QuerySpec struct {
	CreatedAtMin      time.Time // zero value = no lower bound
	CreatedAtMax      time.Time // zero value = no upper bound
	FulfillmentStatus string    // e.g. "unfulfilled"; "" = any
	PageSize          int
}

// StoreCredential identifies one regional storefront and how to reach it.
// The credential table is resolved at startup and immutable afterwards.
type StoreCredential struct {
	ID       string
	Host     string
	APIKey   string
	Password string
}

// Complete reports whether the credential carries everything needed to
// authenticate against the remote store.
func (c StoreCredential) Complete() bool {
	return c.Host != "" && c.APIKey != "" && c.Password != ""
}
