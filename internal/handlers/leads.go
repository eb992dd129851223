package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/vimmo/listingrank/internal/logger"
	"github.com/vimmo/listingrank/internal/models"
	"github.com/vimmo/listingrank/internal/repository"
	"github.com/vimmo/listingrank/internal/services"
)

// LeadHandler serves lead registration and the reply mutation path
type LeadHandler struct {
	listings repository.ListingRepository
	leads    repository.LeadRepository
	reply    *services.ReplyService
}

// NewLeadHandler creates a new LeadHandler
func NewLeadHandler(listings repository.ListingRepository, leads repository.LeadRepository, reply *services.ReplyService) *LeadHandler {
	return &LeadHandler{
		listings: listings,
		leads:    leads,
		reply:    reply,
	}
}

// CreateLeadRequest is the body of POST /listings/{id}/leads
type CreateLeadRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

// LeadView is a lead as shown to the listing owner, contact masked until the
// lead has progressed far enough.
type LeadView struct {
	ID           string                 `json:"id"`
	Status       models.LeadStatus      `json:"status"`
	Name         string                 `json:"name"`
	Contact      services.MaskedContact `json:"contact"`
	Message      string                 `json:"message"`
	CreatedAt    time.Time              `json:"created_at"`
	FirstReplyAt *time.Time             `json:"first_reply_at,omitempty"`
	AutoReplied  bool                   `json:"auto_replied"`
}

// HandleCreate handles POST /listings/{id}/leads
func (h *LeadHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	listingID := mux.Vars(r)["id"]
	ctx = context.WithValue(ctx, logger.ListingIDKey, listingID)

	var req CreateLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Email) == "" && strings.TrimSpace(req.Phone) == "" {
		respondError(w, http.StatusBadRequest, "lead needs an email or phone number")
		return
	}

	lead := &models.Lead{
		ID:        uuid.New().String(),
		ListingID: listingID,
		Status:    models.LeadStatusNew,
		Name:      strings.TrimSpace(req.Name),
		Email:     strings.TrimSpace(req.Email),
		Phone:     strings.TrimSpace(req.Phone),
		Message:   strings.TrimSpace(req.Message),
		CreatedAt: time.Now().UTC(),
	}

	err := h.leads.CreateLead(ctx, lead)
	if errors.Is(err, models.ErrListingNotFound) {
		respondError(w, http.StatusNotFound, "listing not found")
		return
	}
	if err != nil {
		logger.LogError(ctx, "Failed to create lead", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	logger.Info(ctx, "Lead registered", "lead_id", lead.ID)
	respondJSON(w, http.StatusCreated, lead)
}

// HandleList handles GET /listings/{id}/leads
func (h *LeadHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	listingID := mux.Vars(r)["id"]

	leads, err := h.leads.LeadsByListing(ctx, listingID)
	if errors.Is(err, models.ErrListingNotFound) {
		respondError(w, http.StatusNotFound, "listing not found")
		return
	}
	if err != nil {
		logger.LogError(ctx, "Failed to list leads", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	views := make([]LeadView, 0, len(leads))
	for i := range leads {
		lead := &leads[i]
		views = append(views, LeadView{
			ID:           lead.ID,
			Status:       lead.Status,
			Name:         lead.Name,
			Contact:      services.MaskLeadContact(lead),
			Message:      lead.Message,
			CreatedAt:    lead.CreatedAt,
			FirstReplyAt: lead.FirstReplyAt,
			AutoReplied:  lead.IsAutoReplied(),
		})
	}

	respondJSON(w, http.StatusOK, views)
}

// ReplyRequest is the body of POST /listings/{id}/leads/{leadID}/reply.
// A non-empty template id sends the templated auto reply; otherwise the
// message is recorded as a manual reply.
type ReplyRequest struct {
	TemplateID string `json:"template_id,omitempty"`
	Message    string `json:"message,omitempty"`
}

// ReplyResponse reports whether the reply was applied
type ReplyResponse struct {
	Applied bool `json:"applied"`
}

// HandleReply handles POST /listings/{id}/leads/{leadID}/reply
func (h *LeadHandler) HandleReply(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	vars := mux.Vars(r)
	listingID := vars["id"]
	leadID := vars["leadID"]
	ctx = context.WithValue(ctx, logger.ListingIDKey, listingID)

	var req ReplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.TemplateID != "" {
		if _, ok := services.AutoTemplates[req.TemplateID]; !ok {
			respondError(w, http.StatusBadRequest, "unknown template")
			return
		}
		applied := h.reply.SendAutoReply(ctx, listingID, leadID, req.TemplateID)
		respondJSON(w, http.StatusOK, ReplyResponse{Applied: applied})
		return
	}

	if strings.TrimSpace(req.Message) == "" {
		respondError(w, http.StatusBadRequest, "reply needs a message or template")
		return
	}

	applied := h.reply.SendManualReply(ctx, listingID, leadID, req.Message)
	respondJSON(w, http.StatusOK, ReplyResponse{Applied: applied})
}
