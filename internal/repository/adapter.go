package repository

import (
	"context"

	"github.com/vimmo/listingrank/internal/models"
)

// ReplyStore adapts the repositories to the lead-reply mutation path
type ReplyStore struct {
	Listings ListingRepository
	Leads    LeadRepository
}

// GetListing returns the listing with the given id
func (s *ReplyStore) GetListing(ctx context.Context, listingID string) (*models.Listing, error) {
	return s.Listings.GetListingByID(ctx, listingID)
}

// LeadsByListing returns all leads of a listing, oldest first
func (s *ReplyStore) LeadsByListing(ctx context.Context, listingID string) ([]models.Lead, error) {
	return s.Leads.LeadsByListing(ctx, listingID)
}

// SaveLeads replaces the lead collection of a listing
func (s *ReplyStore) SaveLeads(ctx context.Context, listingID string, leads []models.Lead) error {
	return s.Leads.ReplaceLeads(ctx, listingID, leads)
}

// ScoringData adapts the repositories to the scoring engine's data context.
// Scoring never errors on missing data, so lookups swallow failures and
// return nil.
type ScoringData struct {
	Listings ListingRepository
	Leads    LeadRepository
}

// GetByID returns the listing or nil when unavailable
func (d *ScoringData) GetByID(listingID string) *models.Listing {
	listing, err := d.Listings.GetListingByID(context.Background(), listingID)
	if err != nil {
		return nil
	}
	return listing
}

// GetRequests returns the listing's leads or nil when unavailable
func (d *ScoringData) GetRequests(listingID string) []models.Lead {
	leads, err := d.Leads.LeadsByListing(context.Background(), listingID)
	if err != nil {
		return nil
	}
	return leads
}
