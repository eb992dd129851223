package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/vimmo/listingrank/internal/logger"
	"github.com/vimmo/listingrank/internal/models"
	"github.com/vimmo/listingrank/internal/repository"
	"github.com/vimmo/listingrank/internal/scoring"
)

// ListingHandler serves listing views with their computed scores
type ListingHandler struct {
	listings repository.ListingRepository
	health   *scoring.HealthEvaluator
	quality  *scoring.QualityScorer
	data     scoring.DataContext
}

// NewListingHandler creates a new ListingHandler
func NewListingHandler(listings repository.ListingRepository, health *scoring.HealthEvaluator, quality *scoring.QualityScorer, data scoring.DataContext) *ListingHandler {
	return &ListingHandler{
		listings: listings,
		health:   health,
		quality:  quality,
		data:     data,
	}
}

// ListingSummary is one row of the listing overview
type ListingSummary struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Location    string  `json:"location"`
	Price       float64 `json:"price"`
	Status      string  `json:"status"`
	HealthScore int     `json:"health_score"`
	HealthLabel string  `json:"health_label"`
	Vimmo       float64 `json:"vimmo"`
	GateTier    string  `json:"gate_tier"`
	LeadCount   int     `json:"lead_count"`
}

// HandleList handles GET /listings
func (h *ListingHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	listings, err := h.listings.ListListings(ctx)
	if err != nil {
		logger.LogError(ctx, "Failed to list listings", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	summaries := make([]ListingSummary, 0, len(listings))
	for i := range listings {
		listing := &listings[i]
		health := h.health.Evaluate(listing, h.data)
		summaries = append(summaries, ListingSummary{
			ID:          listing.ID,
			Name:        listing.Name,
			Location:    listing.Location,
			Price:       listing.Price,
			Status:      string(listing.Status),
			HealthScore: health.Score,
			HealthLabel: health.Label,
			Vimmo:       h.quality.Score(listing, h.data).Score,
			GateTier:    scoring.QualityGate(listing).Tier,
			LeadCount:   len(listing.Leads),
		})
	}

	respondJSON(w, http.StatusOK, summaries)
}

// HandleHealth handles GET /listings/{id}/health
func (h *ListingHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	listing, ok := h.loadListing(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, h.health.Evaluate(listing, h.data))
}

// HandleScore handles GET /listings/{id}/score
func (h *ListingHandler) HandleScore(w http.ResponseWriter, r *http.Request) {
	listing, ok := h.loadListing(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, h.quality.Score(listing, h.data))
}

func (h *ListingHandler) loadListing(w http.ResponseWriter, r *http.Request) (*models.Listing, bool) {
	ctx := r.Context()
	id := mux.Vars(r)["id"]
	ctx = context.WithValue(ctx, logger.ListingIDKey, id)

	listing, err := h.listings.GetListingByID(ctx, id)
	if errors.Is(err, models.ErrListingNotFound) {
		respondError(w, http.StatusNotFound, "listing not found")
		return nil, false
	}
	if err != nil {
		logger.LogError(ctx, "Failed to get listing", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return nil, false
	}
	return listing, true
}
