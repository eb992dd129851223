// Package services holds the stateful operations around leads: recording
// replies (the only mutation point the ranking engine depends on),
// auto-reply templates and contact masking.
package services

import (
	"context"
	"sync"
	"time"

	"github.com/vimmo/listingrank/internal/logger"
	"github.com/vimmo/listingrank/internal/models"
)

// LeadStore is the persistence capability the reply service needs
type LeadStore interface {
	// GetListing returns the listing with the given id
	GetListing(ctx context.Context, listingID string) (*models.Listing, error)

	// LeadsByListing returns all leads of a listing, oldest first
	LeadsByListing(ctx context.Context, listingID string) ([]models.Lead, error)

	// SaveLeads replaces the lead collection of a listing
	SaveLeads(ctx context.Context, listingID string, leads []models.Lead) error
}

// ReplyService performs the read-modify-write that records replies on leads.
// Each listing is a single-writer critical section: a per-listing mutex
// prevents racing replies from losing updates.
type ReplyService struct {
	store LeadStore
	now   func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewReplyService creates a new ReplyService
func NewReplyService(store LeadStore) *ReplyService {
	return &ReplyService{
		store: store,
		now:   time.Now,
		locks: make(map[string]*sync.Mutex),
	}
}

func (s *ReplyService) listingLock(listingID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[listingID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[listingID] = lock
	}
	return lock
}

// MarkLeadReplied records a reply on a lead and returns whether the update
// was applied. False signals a no-op (unknown lead, or an automated reply
// trying to follow a manual one), never a fatal failure.
//
// Invariants: FirstReplyAt is written at most once; the auto flag reflects
// the final reply state, so a manual reply after an automated one flips it
// to false and drops the template id, while an automated reply can never
// overwrite a manual reply's state.
func (s *ReplyService) MarkLeadReplied(ctx context.Context, listingID, leadID string, meta models.ReplyMeta) bool {
	lock := s.listingLock(listingID)
	lock.Lock()
	defer lock.Unlock()

	leads, err := s.store.LeadsByListing(ctx, listingID)
	if err != nil {
		logger.Warn(ctx, "Reply rejected: leads unavailable", "listing_id", listingID, "error", err.Error())
		return false
	}

	idx := -1
	for i := range leads {
		if leads[i].ID == leadID {
			idx = i
			break
		}
	}
	if idx == -1 {
		logger.Warn(ctx, "Reply rejected: lead not found", "listing_id", listingID, "lead_id", leadID)
		return false
	}

	lead := &leads[idx]
	existing := lead.ReplyMeta

	// An automated reply must not touch a lead whose final state is manual
	if meta.Auto && existing != nil && !existing.Auto {
		return false
	}

	now := s.now()

	finalAuto := meta.Auto
	if !meta.Auto {
		finalAuto = false
	} else if existing != nil {
		finalAuto = existing.Auto
	}

	if lead.FirstReplyAt == nil {
		first := now
		lead.FirstReplyAt = &first
	}
	last := now
	lead.LastReplyAt = &last
	lead.Status = models.LeadStatusReplied

	merged := models.ReplyMeta{
		Auto:      finalAuto,
		RepliedAt: now,
	}
	if existing != nil {
		merged.TemplateID = existing.TemplateID
		merged.Message = existing.Message
	}
	if meta.TemplateID != "" {
		merged.TemplateID = meta.TemplateID
	}
	if meta.Message != "" {
		merged.Message = meta.Message
	}
	if existing != nil && existing.Auto && !finalAuto {
		// Manual follow-up supersedes the automated template
		merged.TemplateID = ""
	}
	lead.ReplyMeta = &merged

	if err := s.store.SaveLeads(ctx, listingID, leads); err != nil {
		logger.LogError(ctx, "Failed to persist lead reply", err, "listing_id", listingID, "lead_id", leadID)
		return false
	}

	logger.Info(ctx, "Lead reply recorded",
		"listing_id", listingID,
		"lead_id", leadID,
		"auto", merged.Auto)
	return true
}

// SendAutoReply sends a templated automated reply. Automated replies carry
// reduced SLA speed weight.
func (s *ReplyService) SendAutoReply(ctx context.Context, listingID, leadID, templateID string) bool {
	listing, err := s.store.GetListing(ctx, listingID)
	if err != nil {
		listing = nil
	}

	message := ""
	if tpl, ok := PersonalizeTemplate(templateID, listing, ""); ok {
		message = tpl.PersonalizedMessage
	}

	return s.MarkLeadReplied(ctx, listingID, leadID, models.ReplyMeta{
		Auto:       true,
		TemplateID: templateID,
		Message:    message,
	})
}

// SendManualReply records a manually written reply with full SLA credit
func (s *ReplyService) SendManualReply(ctx context.Context, listingID, leadID, message string) bool {
	return s.MarkLeadReplied(ctx, listingID, leadID, models.ReplyMeta{
		Auto:    false,
		Message: message,
	})
}
