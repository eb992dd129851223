// Package worker contains the background ranking snapshot refresher.
package worker

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vimmo/listingrank/internal/logger"
	"github.com/vimmo/listingrank/internal/models"
	"github.com/vimmo/listingrank/internal/repository"
	"github.com/vimmo/listingrank/internal/scoring"
)

// Refresher periodically recomputes the buyer-independent ranking and
// persists it as a snapshot, so list views can serve precomputed positions.
type Refresher struct {
	listings     repository.ListingRepository
	accounts     repository.AccountRepository
	snapshots    repository.SnapshotRepository
	ranker       *scoring.Ranker
	health       *scoring.HealthEvaluator
	data         scoring.DataContext
	accountID    string
	interval     time.Duration
	now          func() time.Time
	shutdownChan chan struct{}
}

// RefresherConfig holds configuration for the snapshot refresher
type RefresherConfig struct {
	Listings  repository.ListingRepository
	Accounts  repository.AccountRepository
	Snapshots repository.SnapshotRepository
	Ranker    *scoring.Ranker
	Health    *scoring.HealthEvaluator
	Data      scoring.DataContext
	AccountID string
	Interval  time.Duration
}

// NewRefresher creates a new snapshot refresher
func NewRefresher(config RefresherConfig) *Refresher {
	if config.Interval == 0 {
		config.Interval = time.Minute
	}
	if config.AccountID == "" {
		config.AccountID = "owner-1"
	}

	return &Refresher{
		listings:     config.Listings,
		accounts:     config.Accounts,
		snapshots:    config.Snapshots,
		ranker:       config.Ranker,
		health:       config.Health,
		data:         config.Data,
		accountID:    config.AccountID,
		interval:     config.Interval,
		now:          time.Now,
		shutdownChan: make(chan struct{}),
	}
}

// Start runs the refresh loop until the context is cancelled, a shutdown
// signal arrives or Shutdown is called. The first refresh runs immediately.
func (r *Refresher) Start(ctx context.Context) error {
	logger.Info(ctx, "Starting snapshot refresher", "interval", r.interval)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	if err := r.RefreshOnce(ctx); err != nil {
		logger.LogError(ctx, "Initial snapshot refresh failed", err)
	}

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "Context cancelled, shutting down gracefully")
			return ctx.Err()

		case <-sigChan:
			logger.Info(ctx, "Received shutdown signal, shutting down gracefully")
			return nil

		case <-r.shutdownChan:
			logger.Info(ctx, "Shutdown requested, shutting down gracefully")
			return nil

		case <-ticker.C:
			if err := r.RefreshOnce(ctx); err != nil {
				logger.LogError(ctx, "Snapshot refresh failed", err)
				// Keep the loop alive; the next tick retries
			}
		}
	}
}

// Shutdown stops a running refresher
func (r *Refresher) Shutdown() {
	close(r.shutdownChan)
}

// RefreshOnce recomputes the quality-mode ranking for all listings and
// replaces the stored snapshot.
func (r *Refresher) RefreshOnce(ctx context.Context) error {
	start := r.now()

	listings, err := r.listings.ListListings(ctx)
	if err != nil {
		return err
	}

	refs := make([]*models.Listing, len(listings))
	for i := range listings {
		refs[i] = &listings[i]
	}

	tier := models.PackageBasic
	if account, err := r.accounts.GetAccount(ctx, r.accountID); err == nil {
		tier = account.PackageTier
	}

	now := r.now()
	ranked := r.ranker.Rank(refs, nil, scoring.SortModeQuality, r.data)

	snapshots := make([]repository.RankSnapshot, 0, len(ranked))
	for i, entry := range ranked {
		health := r.health.Evaluate(entry.Listing, r.data)
		multiplier := scoring.RankingMultiplier(tier, health, entry.Listing.BoostUntil, now)

		snapshots = append(snapshots, repository.RankSnapshot{
			ListingID:  entry.Listing.ID,
			Position:   i + 1,
			Tier:       entry.Gate.Tier,
			SortKey:    entry.SortKey,
			Vimmo:      entry.Vimmo,
			Fit:        entry.Fit,
			SLA:        entry.SLA.Score,
			Multiplier: multiplier.Multiplier,
			ComputedAt: now.UTC(),
		})
	}

	if err := r.snapshots.SaveSnapshotRun(ctx, snapshots); err != nil {
		return err
	}

	logger.Info(ctx, "Snapshot refreshed",
		"listings", len(snapshots),
		"duration_ms", time.Since(start).Milliseconds())
	logger.LogSlowOperation(ctx, "snapshot_refresh", time.Since(start))
	return nil
}
