package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/vimmo/listingrank/internal/logger"
	"github.com/vimmo/listingrank/internal/models"
	"github.com/vimmo/listingrank/internal/repository"
	"github.com/vimmo/listingrank/internal/scoring"
)

// DefaultAccountID is the owner account rankings fall back to when the
// request names none.
const DefaultAccountID = "owner-1"

// RankingHandler serves ranked listing sets and their explanations
type RankingHandler struct {
	listings  repository.ListingRepository
	accounts  repository.AccountRepository
	snapshots repository.SnapshotRepository
	ranker    *scoring.Ranker
	health    *scoring.HealthEvaluator
	explainer *scoring.Explainer
	data      scoring.DataContext
	now       func() time.Time
}

// NewRankingHandler creates a new RankingHandler
func NewRankingHandler(
	listings repository.ListingRepository,
	accounts repository.AccountRepository,
	snapshots repository.SnapshotRepository,
	ranker *scoring.Ranker,
	health *scoring.HealthEvaluator,
	explainer *scoring.Explainer,
	data scoring.DataContext,
) *RankingHandler {
	return &RankingHandler{
		listings:  listings,
		accounts:  accounts,
		snapshots: snapshots,
		ranker:    ranker,
		health:    health,
		explainer: explainer,
		data:      data,
		now:       time.Now,
	}
}

// RankRequest is the body of POST /rankings
type RankRequest struct {
	Profile   *models.BuyerProfile `json:"profile,omitempty"`
	SortMode  string               `json:"sort_mode,omitempty"`
	AccountID string               `json:"account_id,omitempty"`
}

// RankEntry is one position of a ranking response
type RankEntry struct {
	Position int `json:"position"`
	scoring.RankedListing
	Multiplier scoring.MultiplierResult `json:"multiplier"`
}

// HandleRank handles POST /rankings
func (h *RankingHandler) HandleRank(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req RankRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	mode := scoring.SortMode(req.SortMode)
	switch mode {
	case scoring.SortModeFit, scoring.SortModeQuality:
	case "":
		mode = scoring.SortModeQuality
	default:
		respondError(w, http.StatusBadRequest, "unknown sort mode")
		return
	}

	listings, err := h.listings.ListListings(ctx)
	if err != nil {
		logger.LogError(ctx, "Failed to list listings", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	refs := make([]*models.Listing, len(listings))
	for i := range listings {
		refs[i] = &listings[i]
	}

	tier := h.accountTier(r, req.AccountID)
	now := h.now()

	ranked := h.ranker.Rank(refs, req.Profile, mode, h.data)
	entries := make([]RankEntry, 0, len(ranked))
	for i, entry := range ranked {
		health := h.health.Evaluate(entry.Listing, h.data)
		entries = append(entries, RankEntry{
			Position:      i + 1,
			RankedListing: entry,
			Multiplier:    scoring.RankingMultiplier(tier, health, entry.Listing.BoostUntil, now),
		})
	}

	respondJSON(w, http.StatusOK, entries)
}

// HandleExplain handles POST /rankings/explain/{id}
func (h *RankingHandler) HandleExplain(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := mux.Vars(r)["id"]

	var req RankRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	listing, err := h.listings.GetListingByID(ctx, id)
	if errors.Is(err, models.ErrListingNotFound) {
		respondError(w, http.StatusNotFound, "listing not found")
		return
	}
	if err != nil {
		logger.LogError(ctx, "Failed to get listing", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	respondJSON(w, http.StatusOK, h.explainer.Explain(listing, req.Profile, h.data))
}

// HandleSnapshot handles GET /rankings/snapshot
func (h *RankingHandler) HandleSnapshot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	snapshots, err := h.snapshots.LatestSnapshot(ctx)
	if err != nil {
		logger.LogError(ctx, "Failed to load ranking snapshot", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if snapshots == nil {
		snapshots = []repository.RankSnapshot{}
	}
	respondJSON(w, http.StatusOK, snapshots)
}

// accountTier resolves the package tier used for ranking multipliers.
// Unknown accounts get the basic tier.
func (h *RankingHandler) accountTier(r *http.Request, accountID string) models.PackageTier {
	if accountID == "" {
		accountID = DefaultAccountID
	}
	account, err := h.accounts.GetAccount(r.Context(), accountID)
	if err != nil {
		return models.PackageBasic
	}
	return account.PackageTier
}
