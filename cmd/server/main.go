package main

import (
	"fmt"
	"os"

	"github.com/pricescope/backend/config"
	httpDelivery "github.com/pricescope/backend/internal/delivery/http"
	"github.com/pricescope/backend/internal/infrastructure/cache"
	"github.com/pricescope/backend/internal/infrastructure/postgres"
	"github.com/pricescope/backend/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := config.SetupLogger(cfg)
	logger.Info().
		Str("environment", cfg.Server.Environment).
		Str("port", cfg.Server.Port).
		Msg("starting pricescope backend")

	db, err := postgres.Open(cfg.Database.URL, cfg.Database.MaxOpenConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	listingStore := postgres.NewListingStore(db)
	catalogStore := postgres.NewCatalogStore(db)
	memoryCache := cache.NewMemoryCache()

	searchService := usecase.NewSearchService(
		listingStore,
		listingStore,
		catalogStore,
		memoryCache,
		logger,
		usecase.SearchConfig{
			CacheTTL:            cfg.Cache.SearchTTL,
			VendorDictionaryTTL: cfg.Cache.VendorTTL,
			Weights: usecase.ScoreWeights{
				Name:      cfg.Matching.NameWeight,
				Type:      cfg.Matching.TypeWeight,
				Variation: cfg.Matching.VariationWeight,
				Vendor:    cfg.Matching.VendorWeight,
				Volume:    cfg.Matching.VolumeWeight,
			},
			FilterPolicy:             usecase.FilterPolicy(cfg.Matching.FilterPolicy),
			Threshold:                cfg.Matching.Threshold,
			ExcludeStandardVariation: cfg.Matching.ExcludeStandardVariation,
			BatchConcurrency:         cfg.Matching.BatchConcurrency,
		},
	)

	logger.Info().
		Str("filter_policy", cfg.Matching.FilterPolicy).
		Float64("threshold", cfg.Matching.Threshold).
		Dur("search_ttl", cfg.Cache.SearchTTL).
		Msg("matching engine configured")

	handler := httpDelivery.NewHandler(searchService)
	router := httpDelivery.SetupRouter(cfg, handler)

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	logger.Info().Str("addr", addr).Msg("server listening")

	if err := router.Run(addr); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}
