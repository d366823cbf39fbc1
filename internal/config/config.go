package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"go-sku-demand/internal/model"

	"gopkg.in/yaml.v3"
)

// StoreEntry is one configured storefront. Secrets are not kept in the yaml
// file; they are resolved from the environment by Credentials.
type StoreEntry struct {
	ID   string `yaml:"id"`
	Host string `yaml:"host"`
}

// Config is the process-wide configuration, loaded once at startup.
type Config struct {
	Listen       string `yaml:"listen"`
	DBPath       string `yaml:"db_path"`
	PageSize     int    `yaml:"page_size"`
	StoreTimeout string `yaml:"store_timeout"` // e.g. "60s"

	SKUPrefixes      []string `yaml:"sku_prefixes"` // allow-listed SKU families, e.g. ["DIVAIN"]
	CountEmptyOrders *bool    `yaml:"count_empty_orders"`

	ExcludeFulfillment []string `yaml:"exclude_fulfillment"`
	ExcludeFinancial   []string `yaml:"exclude_financial"`
	TestOrderPattern   string   `yaml:"test_order_pattern"`

	Stores []StoreEntry `yaml:"stores"`
}

// Load reads and validates the yaml configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if len(cfg.Stores) == 0 {
		return nil, fmt.Errorf("config %s defines no stores", path)
	}
	for _, s := range cfg.Stores {
		if s.ID == "" || s.Host == "" {
			return nil, fmt.Errorf("config %s: every store needs an id and a host", path)
		}
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Listen == "" {
		c.Listen = ":8080"
	}
	if c.DBPath == "" {
		c.DBPath = "demand.db"
	}
	if c.PageSize <= 0 || c.PageSize > model.MaxPageSize {
		c.PageSize = model.MaxPageSize
	}
	if c.StoreTimeout == "" {
		c.StoreTimeout = "60s"
	}
	if c.ExcludeFinancial == nil {
		c.ExcludeFinancial = []string{"voided", "refunded", "partially_refunded"}
	}
}

// StoreTimeoutDuration returns the per-store fetch timeout.
func (c *Config) StoreTimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.StoreTimeout)
	if err != nil || d <= 0 {
		return 60 * time.Second
	}
	return d
}

// CountEmpty reports whether orders with zero surviving line items still
// count toward per-store order stats. Defaults to true.
func (c *Config) CountEmpty() bool {
	if c.CountEmptyOrders == nil {
		return true
	}
	return *c.CountEmptyOrders
}

// Credentials builds the immutable store-credential table, in configured
// store order. API keys come from SHOPIFY_KEY_<ID> / SHOPIFY_PASSWORD_<ID>
// environment variables; a store with missing secrets still gets a (partial)
// entry so that its worker can surface a per-store credential failure
// instead of the whole service refusing to start.
func (c *Config) Credentials() []model.StoreCredential {
	creds := make([]model.StoreCredential, 0, len(c.Stores))
	for _, s := range c.Stores {
		id := strings.ToUpper(s.ID)
		creds = append(creds, model.StoreCredential{
			ID:       s.ID,
			Host:     s.Host,
			APIKey:   os.Getenv("SHOPIFY_KEY_" + id),
			Password: os.Getenv("SHOPIFY_PASSWORD_" + id),
		})
	}
	return creds
}
