package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vimmo/listingrank/internal/config"
	"github.com/vimmo/listingrank/internal/models"
	"github.com/vimmo/listingrank/internal/repository"
)

var handlerNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func profileFixture() *models.BuyerProfile {
	return &models.BuyerProfile{
		MaxBudget: 900000,
		Regions:   []string{"Antwerpen"},
	}
}

func testConfig() *config.Config {
	return &config.Config{
		Storage: config.StorageConfig{Driver: config.DriverMemory},
	}
}

func newTestRouter(t *testing.T, cfg *config.Config) (*mux.Router, *repository.Memory) {
	t.Helper()
	m := repository.NewMemory()
	m.SeedDemo(handlerNow)
	return NewRouter(cfg, repository.NewMemoryRepositories(m)), m
}

func doJSON(t *testing.T, router *mux.Router, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeInto(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(out))
}

func TestHandleListListings(t *testing.T) {
	router, _ := newTestRouter(t, testConfig())

	rec := doJSON(t, router, http.MethodGet, "/listings", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var summaries []ListingSummary
	decodeInto(t, rec, &summaries)

	require.Len(t, summaries, 3)
	assert.Equal(t, "prop-1", summaries[0].ID)
	assert.Equal(t, "Moderne Woning in Antwerpen", summaries[0].Name)
	assert.Equal(t, 2, summaries[0].LeadCount)
	assert.NotZero(t, summaries[0].HealthScore)
	assert.NotZero(t, summaries[0].Vimmo)
	assert.Contains(t, []string{"bronze", "silver", "gold"}, summaries[0].GateTier)
}

func TestHandleListingHealth(t *testing.T) {
	router, _ := newTestRouter(t, testConfig())

	rec := doJSON(t, router, http.MethodGet, "/listings/prop-1/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var health struct {
		Score int    `json:"score"`
		Label string `json:"label"`
	}
	decodeInto(t, rec, &health)
	assert.NotZero(t, health.Score)
	assert.NotEmpty(t, health.Label)
}

func TestHandleListingHealth_NotFound(t *testing.T) {
	router, _ := newTestRouter(t, testConfig())

	rec := doJSON(t, router, http.MethodGet, "/listings/nope/health", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	var body ErrorResponse
	decodeInto(t, rec, &body)
	assert.Equal(t, "listing not found", body.Error)
}

func TestHandleRank_QualityMode(t *testing.T) {
	router, _ := newTestRouter(t, testConfig())

	rec := doJSON(t, router, http.MethodPost, "/rankings", RankRequest{SortMode: "quality"})
	require.Equal(t, http.StatusOK, rec.Code)

	var entries []struct {
		Position   int `json:"position"`
		Listing    struct {
			ID string `json:"id"`
		} `json:"listing"`
		Gate struct {
			TierRank int `json:"tier_rank"`
		} `json:"gate"`
		Multiplier struct {
			Multiplier float64 `json:"multiplier"`
		} `json:"multiplier"`
	}
	decodeInto(t, rec, &entries)

	require.Len(t, entries, 3)
	for i, entry := range entries {
		assert.Equal(t, i+1, entry.Position)
		assert.Greater(t, entry.Multiplier.Multiplier, 0.0)
	}
	// Tier order must be non-increasing down the list.
	for i := 1; i < len(entries); i++ {
		assert.GreaterOrEqual(t, entries[i-1].Gate.TierRank, entries[i].Gate.TierRank)
	}
}

func TestHandleRank_EmptyBodyDefaultsToQuality(t *testing.T) {
	router, _ := newTestRouter(t, testConfig())

	req := httptest.NewRequest(http.MethodPost, "/rankings", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleRank_FitModeIncludesFitScores(t *testing.T) {
	router, _ := newTestRouter(t, testConfig())

	body := RankRequest{
		SortMode: "fit",
		Profile:  profileFixture(),
	}
	rec := doJSON(t, router, http.MethodPost, "/rankings", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var entries []struct {
		Fit *float64 `json:"fit"`
	}
	decodeInto(t, rec, &entries)
	require.Len(t, entries, 3)
	for _, entry := range entries {
		require.NotNil(t, entry.Fit)
	}
}

func TestHandleRank_UnknownSortMode(t *testing.T) {
	router, _ := newTestRouter(t, testConfig())

	rec := doJSON(t, router, http.MethodPost, "/rankings", RankRequest{SortMode: "chronological"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleExplain(t *testing.T) {
	router, _ := newTestRouter(t, testConfig())

	rec := doJSON(t, router, http.MethodPost, "/rankings/explain/prop-1", RankRequest{Profile: profileFixture()})
	require.Equal(t, http.StatusOK, rec.Code)

	var explanation struct {
		Tier     string   `json:"tier"`
		Headline string   `json:"headline"`
		Reasons  []string `json:"reasons"`
	}
	decodeInto(t, rec, &explanation)
	assert.NotEmpty(t, explanation.Tier)
	assert.NotEmpty(t, explanation.Headline)
	assert.NotEmpty(t, explanation.Reasons)
}

func TestHandleSnapshot_EmptyBeforeFirstRun(t *testing.T) {
	router, _ := newTestRouter(t, testConfig())

	rec := doJSON(t, router, http.MethodGet, "/rankings/snapshot", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestHandleCreateLead(t *testing.T) {
	router, _ := newTestRouter(t, testConfig())

	body := CreateLeadRequest{
		Name:    "Piet Jansen",
		Email:   "piet@example.be",
		Message: "Is er nog een bezichtiging mogelijk?",
	}
	rec := doJSON(t, router, http.MethodPost, "/listings/prop-2/leads", body)
	require.Equal(t, http.StatusCreated, rec.Code)

	var lead struct {
		ID        string `json:"id"`
		ListingID string `json:"listing_id"`
		Status    string `json:"status"`
	}
	decodeInto(t, rec, &lead)
	assert.NotEmpty(t, lead.ID)
	assert.Equal(t, "prop-2", lead.ListingID)
	assert.Equal(t, "new", lead.Status)
}

func TestHandleCreateLead_NeedsContact(t *testing.T) {
	router, _ := newTestRouter(t, testConfig())

	rec := doJSON(t, router, http.MethodPost, "/listings/prop-1/leads", CreateLeadRequest{Name: "Anoniem"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleCreateLead_UnknownListing(t *testing.T) {
	router, _ := newTestRouter(t, testConfig())

	rec := doJSON(t, router, http.MethodPost, "/listings/nope/leads", CreateLeadRequest{Email: "a@b.be"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleListLeads_ContactIsMasked(t *testing.T) {
	router, _ := newTestRouter(t, testConfig())

	rec := doJSON(t, router, http.MethodGet, "/listings/prop-1/leads", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var views []LeadView
	decodeInto(t, rec, &views)
	require.Len(t, views, 2)
	for _, view := range views {
		assert.False(t, view.Contact.Revealed)
		assert.NotContains(t, view.Contact.Email, "sofie.peeters@")
	}
}

func TestHandleReply_ManualThenAuto(t *testing.T) {
	router, m := newTestRouter(t, testConfig())

	leads, err := m.LeadsByListing(context.Background(), "prop-1")
	require.NoError(t, err)
	var leadID string
	for _, l := range leads {
		if l.FirstReplyAt == nil {
			leadID = l.ID
		}
	}
	require.NotEmpty(t, leadID)

	rec := doJSON(t, router, http.MethodPost, "/listings/prop-1/leads/"+leadID+"/reply",
		ReplyRequest{Message: "Zeker, kom gerust langs!"})
	require.Equal(t, http.StatusOK, rec.Code)
	var resp ReplyResponse
	decodeInto(t, rec, &resp)
	assert.True(t, resp.Applied)

	// An automated reply after the manual one must be a no-op.
	rec = doJSON(t, router, http.MethodPost, "/listings/prop-1/leads/"+leadID+"/reply",
		ReplyRequest{TemplateID: "instant"})
	require.Equal(t, http.StatusOK, rec.Code)
	decodeInto(t, rec, &resp)
	assert.False(t, resp.Applied)
}

func TestHandleReply_UnknownTemplate(t *testing.T) {
	router, _ := newTestRouter(t, testConfig())

	rec := doJSON(t, router, http.MethodPost, "/listings/prop-1/leads/any/reply",
		ReplyRequest{TemplateID: "bestaat-niet"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleReply_NeedsMessageOrTemplate(t *testing.T) {
	router, _ := newTestRouter(t, testConfig())

	rec := doJSON(t, router, http.MethodPost, "/listings/prop-1/leads/any/reply", ReplyRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleStats(t *testing.T) {
	router, _ := newTestRouter(t, testConfig())

	rec := doJSON(t, router, http.MethodGet, "/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var stats StatsResponse
	decodeInto(t, rec, &stats)
	assert.Equal(t, 3, stats.Listings)
	assert.Equal(t, 3, stats.ActiveListings)
	assert.Equal(t, 2, stats.Leads.New)
	assert.Equal(t, 1, stats.Leads.Replied)
	assert.Equal(t, 3, stats.Leads.Total)
}

func TestHandlePackageChange(t *testing.T) {
	router, _ := newTestRouter(t, testConfig())

	rec := doJSON(t, router, http.MethodPost, "/account/package",
		PackageChangeRequest{Package: "premium"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp PackageChangeResponse
	decodeInto(t, rec, &resp)
	assert.Equal(t, 10, resp.Slots)
	assert.Equal(t, 59.0, resp.MonthlyPrice)
	assert.Equal(t, 1.25, resp.Multiplier)
	require.NotNil(t, resp.Account)
	assert.NotNil(t, resp.Account.UpgradedAt)
}

func TestHandlePackageChange_InvalidTier(t *testing.T) {
	router, _ := newTestRouter(t, testConfig())

	rec := doJSON(t, router, http.MethodPost, "/account/package",
		PackageChangeRequest{Package: "platinum"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlePackageChange_UnknownAccount(t *testing.T) {
	router, _ := newTestRouter(t, testConfig())

	rec := doJSON(t, router, http.MethodPost, "/account/package",
		PackageChangeRequest{AccountID: "nope", Package: "premium"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAuthMiddleware(t *testing.T) {
	cfg := testConfig()
	cfg.Auth = config.AuthConfig{Enabled: true, SharedSecret: "s3cret"}
	router, _ := newTestRouter(t, cfg)

	rec := doJSON(t, router, http.MethodGet, "/stats", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	req.Header.Set("X-Shared-Secret", "wrong")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/stats", nil)
	req.Header.Set("X-Shared-Secret", "s3cret")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCorrelationMiddleware(t *testing.T) {
	router, _ := newTestRouter(t, testConfig())

	rec := doJSON(t, router, http.MethodGet, "/stats", nil)
	assert.NotEmpty(t, rec.Header().Get("X-Correlation-ID"))

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	req.Header.Set("X-Correlation-ID", "corr-123")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, "corr-123", rec.Header().Get("X-Correlation-ID"))
}
