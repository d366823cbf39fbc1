package main

import (
	"log"
	"os"
	"regexp"

	"go-sku-demand/internal/api"
	"go-sku-demand/internal/api/handler"
	"go-sku-demand/internal/config"
	"go-sku-demand/internal/model"
	"go-sku-demand/internal/pipeline"
	"go-sku-demand/internal/shopify"
	"go-sku-demand/internal/store"
	"go-sku-demand/pkg/router"

	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; deployments may inject the environment directly.
	_ = godotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "stores.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if err := store.InitDB(cfg.DBPath); err != nil {
		log.Fatalf("run store: %v", err)
	}

	rules := []pipeline.Rule{
		pipeline.ExcludeCancelled(),
		pipeline.ExcludeFinancialStatus(cfg.ExcludeFinancial),
	}
	if len(cfg.ExcludeFulfillment) > 0 {
		rules = append(rules, pipeline.ExcludeFulfillmentStatus(cfg.ExcludeFulfillment))
	}
	if cfg.TestOrderPattern != "" {
		re, err := regexp.Compile(cfg.TestOrderPattern)
		if err != nil {
			log.Fatalf("test_order_pattern: %v", err)
		}
		rules = append(rules, pipeline.ExcludeNamePattern(re))
	}

	newFetcher := func(cred model.StoreCredential) pipeline.Fetcher {
		return shopify.NewClient(cred)
	}
	coordinator := pipeline.NewCoordinator(cfg.Credentials(), newFetcher, rules, cfg.StoreTimeoutDuration())

	reports := &handler.ReportHandler{
		Coordinator:      coordinator,
		Extractor:        pipeline.NewSKUExtractor(cfg.SKUPrefixes),
		AllowPrefixes:    cfg.SKUPrefixes,
		PageSize:         cfg.PageSize,
		CountEmptyOrders: cfg.CountEmpty(),
	}

	r := router.New()
	api.RegisterRoutes(r, reports)
	r.Start(cfg.Listen)
}
