package handlers

import (
	"net/http"

	"github.com/vimmo/listingrank/internal/logger"
	"github.com/vimmo/listingrank/internal/models"
	"github.com/vimmo/listingrank/internal/repository"
)

// StatsHandler serves the aggregate counters of the dashboard
type StatsHandler struct {
	listings repository.ListingRepository
	leads    repository.LeadRepository
}

// NewStatsHandler creates a new StatsHandler
func NewStatsHandler(listings repository.ListingRepository, leads repository.LeadRepository) *StatsHandler {
	return &StatsHandler{
		listings: listings,
		leads:    leads,
	}
}

// LeadCounts is the lead counters section of the stats response
type LeadCounts struct {
	New        int `json:"new"`
	InProgress int `json:"in_progress"`
	Replied    int `json:"replied"`
	Viewing    int `json:"viewing"`
	Decision   int `json:"decision"`
	Agreement  int `json:"agreement"`
	Blocked    int `json:"blocked"`
	Reported   int `json:"reported"`
	Total      int `json:"total"`
}

// StatsResponse is the body of GET /stats
type StatsResponse struct {
	Listings       int        `json:"listings"`
	ActiveListings int        `json:"active_listings"`
	Leads          LeadCounts `json:"leads"`
}

// HandleStats handles GET /stats
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	counts, err := h.leads.LeadCountsByStatus(ctx)
	if err != nil {
		logger.LogError(ctx, "Failed to get lead counts", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	listings, err := h.listings.ListListings(ctx)
	if err != nil {
		logger.LogError(ctx, "Failed to list listings", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	active := 0
	for _, l := range listings {
		if l.Status == models.ListingStatusActive {
			active++
		}
	}

	total := 0
	for _, count := range counts {
		total += count
	}

	respondJSON(w, http.StatusOK, StatsResponse{
		Listings:       len(listings),
		ActiveListings: active,
		Leads: LeadCounts{
			New:        counts[models.LeadStatusNew],
			InProgress: counts[models.LeadStatusInProgress],
			Replied:    counts[models.LeadStatusReplied],
			Viewing:    counts[models.LeadStatusViewing],
			Decision:   counts[models.LeadStatusDecision],
			Agreement:  counts[models.LeadStatusAgreement],
			Blocked:    counts[models.LeadStatusBlocked],
			Reported:   counts[models.LeadStatusReported],
			Total:      total,
		},
	})
}
