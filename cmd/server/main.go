package main

import (
	"context"
	"log"
	"time"

	"github.com/cloudportal/backend-go/internal/config"
	"github.com/cloudportal/backend-go/internal/domain"
	"github.com/cloudportal/backend-go/internal/engine"
	"github.com/cloudportal/backend-go/internal/handler"
	"github.com/cloudportal/backend-go/internal/observability"
	"github.com/cloudportal/backend-go/internal/refresh"
	"github.com/cloudportal/backend-go/internal/source"
)

func main() {
	cfg := config.Load()
	metrics := observability.NewMetrics()

	ctx := context.Background()
	src, closeSrc, err := source.New(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to initialise inventory source %q: %v", cfg.InventorySource, err)
	}
	defer closeSrc()
	src = source.WithRetry(src, time.Duration(cfg.FetchRetrySeconds)*time.Second)
	src = source.WithMetrics(src, metrics)

	eng := engine.NewSession(domain.DefaultEnvironments(), cfg.KnownLocations, metrics)

	if cfg.DefaultCustomer != "" && cfg.DefaultProvider != "" {
		interval := time.Duration(cfg.RefreshIntervalSeconds) * time.Second
		loop := refresh.NewLoop(src, eng, cfg.DefaultCustomer, cfg.DefaultProvider, interval, cfg.RefreshFailureLimit)
		if !loop.RefreshNow(ctx) {
			log.Printf("Warning: initial inventory load failed for %s/%s", cfg.DefaultCustomer, cfg.DefaultProvider)
		}

		if interval > 0 {
			loop.Start()
			defer loop.Stop()
		}

		if cfg.InventorySource == "file" {
			watchCtx, cancel := context.WithCancel(ctx)
			defer cancel()
			go func() {
				if err := refresh.WatchFile(watchCtx, cfg.InventoryFile, 500*time.Millisecond, func() {
					loop.RefreshNow(watchCtx)
				}); err != nil {
					log.Printf("Warning: inventory file watch disabled: %v", err)
				}
			}()
		}
	}

	inv := handler.NewInventoryHandler(eng, src, cfg.DefaultCustomer, cfg.DefaultProvider)
	sel := handler.NewSelectionHandler(eng)
	r := handler.SetupRouter(inv, sel, metrics, cfg.CORSAllowOrigin)

	log.Printf("Cloud portal backend starting on :%s (source=%s)", cfg.ServerPort, src.Name())
	if err := r.Run(":" + cfg.ServerPort); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
