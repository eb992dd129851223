package main

import (
	"context"
	"errors"
	"log"

	"github.com/vimmo/listingrank/internal/config"
	"github.com/vimmo/listingrank/internal/logger"
	"github.com/vimmo/listingrank/internal/repository"
	"github.com/vimmo/listingrank/internal/scoring"
	"github.com/vimmo/listingrank/internal/worker"
)

func main() {
	logger.Init()
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Info(ctx, "Snapshot worker starting",
		"interval", cfg.Worker.SnapshotInterval,
		"storage_driver", cfg.Storage.Driver)

	repos, closeStorage, err := repository.OpenFromConfig(cfg, "./migrations")
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}
	defer closeStorage()

	logger.Info(ctx, "Storage ready", "driver", cfg.Storage.Driver)

	data := &repository.ScoringData{Listings: repos.Listings, Leads: repos.Leads}
	sla := scoring.NewSLAEngine()
	health := scoring.NewHealthEvaluator(sla)
	quality := scoring.NewQualityScorer(sla, scoring.EvaluatePublishState)
	fit := scoring.NewFitScorer(quality.Score)
	ranker := scoring.NewRanker(quality, fit, sla)

	refresher := worker.NewRefresher(worker.RefresherConfig{
		Listings:  repos.Listings,
		Accounts:  repos.Accounts,
		Snapshots: repos.Snapshots,
		Ranker:    ranker,
		Health:    health,
		Data:      data,
		Interval:  cfg.Worker.SnapshotInterval,
	})

	if err := refresher.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("Worker error: %v", err)
	}

	logger.Info(ctx, "Worker shutdown complete")
}
