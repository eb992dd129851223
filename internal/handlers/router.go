package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/vimmo/listingrank/internal/config"
	"github.com/vimmo/listingrank/internal/repository"
	"github.com/vimmo/listingrank/internal/scoring"
	"github.com/vimmo/listingrank/internal/services"
)

// NewRouter wires all endpoints and middleware
func NewRouter(cfg *config.Config, repos *repository.Repositories) *mux.Router {
	data := &repository.ScoringData{Listings: repos.Listings, Leads: repos.Leads}

	sla := scoring.NewSLAEngine()
	health := scoring.NewHealthEvaluator(sla)
	quality := scoring.NewQualityScorer(sla, scoring.EvaluatePublishState)
	fit := scoring.NewFitScorer(quality.Score)
	ranker := scoring.NewRanker(quality, fit, sla)
	explainer := scoring.NewExplainer(quality, fit, sla)

	reply := services.NewReplyService(&repository.ReplyStore{
		Listings: repos.Listings,
		Leads:    repos.Leads,
	})

	listingHandler := NewListingHandler(repos.Listings, health, quality, data)
	rankingHandler := NewRankingHandler(repos.Listings, repos.Accounts, repos.Snapshots, ranker, health, explainer, data)
	leadHandler := NewLeadHandler(repos.Listings, repos.Leads, reply)
	statsHandler := NewStatsHandler(repos.Listings, repos.Leads)
	accountHandler := NewAccountHandler(repos.Accounts)

	router := mux.NewRouter()
	router.Use(CorrelationMiddleware)
	router.Use(RecoveryMiddleware)
	router.Use(NewAuthMiddleware(cfg).Middleware)

	router.HandleFunc("/listings", listingHandler.HandleList).Methods(http.MethodGet)
	router.HandleFunc("/listings/{id}/health", listingHandler.HandleHealth).Methods(http.MethodGet)
	router.HandleFunc("/listings/{id}/score", listingHandler.HandleScore).Methods(http.MethodGet)

	router.HandleFunc("/rankings", rankingHandler.HandleRank).Methods(http.MethodPost)
	router.HandleFunc("/rankings/explain/{id}", rankingHandler.HandleExplain).Methods(http.MethodPost)
	router.HandleFunc("/rankings/snapshot", rankingHandler.HandleSnapshot).Methods(http.MethodGet)

	router.HandleFunc("/listings/{id}/leads", leadHandler.HandleCreate).Methods(http.MethodPost)
	router.HandleFunc("/listings/{id}/leads", leadHandler.HandleList).Methods(http.MethodGet)
	router.HandleFunc("/listings/{id}/leads/{leadID}/reply", leadHandler.HandleReply).Methods(http.MethodPost)

	router.HandleFunc("/stats", statsHandler.HandleStats).Methods(http.MethodGet)
	router.HandleFunc("/account/package", accountHandler.HandlePackageChange).Methods(http.MethodPost)

	return router
}
