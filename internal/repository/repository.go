// Package repository holds the persistence interfaces and their Postgres,
// SQLite and in-memory implementations.
package repository

import (
	"context"
	"time"

	"github.com/vimmo/listingrank/internal/models"
)

// ListingRepository defines listing persistence operations
type ListingRepository interface {
	// GetListingByID retrieves a listing by its ID, leads attached
	GetListingByID(ctx context.Context, id string) (*models.Listing, error)

	// ListListings returns all listings, leads attached, oldest first
	ListListings(ctx context.Context) ([]models.Listing, error)

	// SaveListing upserts a listing (without its leads)
	SaveListing(ctx context.Context, listing *models.Listing) error
}

// LeadRepository defines lead persistence operations
type LeadRepository interface {
	// LeadsByListing returns all leads of a listing, oldest first
	LeadsByListing(ctx context.Context, listingID string) ([]models.Lead, error)

	// CreateLead inserts a new lead
	CreateLead(ctx context.Context, lead *models.Lead) error

	// ReplaceLeads replaces the full lead collection of a listing
	ReplaceLeads(ctx context.Context, listingID string, leads []models.Lead) error

	// LeadCountsByStatus returns lead counts grouped by status
	LeadCountsByStatus(ctx context.Context) (map[models.LeadStatus]int, error)
}

// AccountRepository defines account persistence operations
type AccountRepository interface {
	// GetAccount retrieves an account by its ID
	GetAccount(ctx context.Context, id string) (*models.Account, error)

	// SaveAccount upserts an account
	SaveAccount(ctx context.Context, account *models.Account) error
}

// RankSnapshot is one listing's position in a computed ranking run
type RankSnapshot struct {
	ListingID  string    `json:"listing_id"`
	Position   int       `json:"position"`
	Tier       string    `json:"tier"`
	SortKey    float64   `json:"sort_key"`
	Vimmo      float64   `json:"vimmo"`
	Fit        *float64  `json:"fit,omitempty"`
	SLA        float64   `json:"sla"`
	Multiplier float64   `json:"multiplier"`
	ComputedAt time.Time `json:"computed_at"`
}

// SnapshotRepository persists ranking snapshot runs
type SnapshotRepository interface {
	// SaveSnapshotRun replaces the stored snapshot with a new run
	SaveSnapshotRun(ctx context.Context, snapshots []RankSnapshot) error

	// LatestSnapshot returns the most recent run ordered by position
	LatestSnapshot(ctx context.Context) ([]RankSnapshot, error)
}

// Repositories bundles all repositories of one storage backend
type Repositories struct {
	Listings  ListingRepository
	Leads     LeadRepository
	Accounts  AccountRepository
	Snapshots SnapshotRepository
}
