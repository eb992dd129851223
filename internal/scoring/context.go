// Package scoring implements the listing ranking and explainability engine:
// publish-readiness health, SLA responsiveness, the Vimmo quality score, the
// buyer fit score, quality-gate tiers, the bounded ranking multiplier and the
// human-readable ranking explanation. Every scorer is a pure function of its
// inputs reached through a read-only DataContext; absent or malformed data
// degrades to neutral contributions and never errors.
package scoring

import "github.com/vimmo/listingrank/internal/models"

// DataContext is the read-only capability the scoring engine uses to reach
// listing and lead data. Implementations may be backed by any store; the
// engine never mutates anything it reads through the context.
type DataContext interface {
	// GetByID returns the listing with the given id, or nil if unknown
	GetByID(listingID string) *models.Listing

	// GetRequests returns the legacy per-listing request store, oldest first
	GetRequests(listingID string) []models.Lead
}

// LeadsForListing resolves the leads of a listing. The canonical Leads slice
// on the listing wins when it is present; otherwise the legacy request store
// is consulted. A failing or missing context counts as "no data".
func LeadsForListing(ctx DataContext, listing *models.Listing) []models.Lead {
	if listing != nil && listing.Leads != nil {
		return listing.Leads
	}

	id := ""
	if listing != nil {
		id = listing.ID
	}
	if id == "" {
		return nil
	}

	if listing == nil || listing.Leads == nil {
		if fresh := safeGetByID(ctx, id); fresh != nil && fresh.Leads != nil {
			return fresh.Leads
		}
	}

	return safeGetRequests(ctx, id)
}

// safeGetByID shields the engine from a misbehaving context implementation
func safeGetByID(ctx DataContext, id string) (listing *models.Listing) {
	defer func() {
		if r := recover(); r != nil {
			listing = nil
		}
	}()
	if ctx == nil {
		return nil
	}
	return ctx.GetByID(id)
}

func safeGetRequests(ctx DataContext, id string) (leads []models.Lead) {
	defer func() {
		if r := recover(); r != nil {
			leads = nil
		}
	}()
	if ctx == nil {
		return nil
	}
	return ctx.GetRequests(id)
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// round1 rounds to one decimal, the display precision of all 0-10 scores
func round1(v float64) float64 {
	if v < 0 {
		return float64(int(v*10-0.5)) / 10
	}
	return float64(int(v*10+0.5)) / 10
}

// round2 rounds to two decimals (ranking multipliers)
func round2(v float64) float64 {
	if v < 0 {
		return float64(int(v*100-0.5)) / 100
	}
	return float64(int(v*100+0.5)) / 100
}
