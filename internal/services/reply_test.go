package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/vimmo/listingrank/internal/models"
)

// fakeLeadStore is an in-memory LeadStore with injectable failures
type fakeLeadStore struct {
	mu       sync.Mutex
	listing  *models.Listing
	leads    []models.Lead
	loadErr  error
	saveErr  error
	saveHits int
}

func (s *fakeLeadStore) GetListing(_ context.Context, listingID string) (*models.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listing == nil || s.listing.ID != listingID {
		return nil, models.ErrListingNotFound
	}
	return s.listing, nil
}

func (s *fakeLeadStore) LeadsByListing(_ context.Context, _ string) ([]models.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	out := make([]models.Lead, len(s.leads))
	copy(out, s.leads)
	return out, nil
}

func (s *fakeLeadStore) SaveLeads(_ context.Context, _ string, leads []models.Lead) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saveHits++
	s.leads = make([]models.Lead, len(leads))
	copy(s.leads, leads)
	return nil
}

func (s *fakeLeadStore) lead(t *testing.T, id string) models.Lead {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.leads {
		if l.ID == id {
			return l
		}
	}
	t.Fatalf("Lead %s not found in store", id)
	return models.Lead{}
}

func newReplyFixture(leads ...models.Lead) (*ReplyService, *fakeLeadStore) {
	store := &fakeLeadStore{
		listing: &models.Listing{ID: "listing-1", Name: "Testwoning Antwerpen", Price: 450000},
		leads:   leads,
	}
	svc := NewReplyService(store)
	return svc, store
}

func pendingLead(id string) models.Lead {
	return models.Lead{
		ID:        id,
		ListingID: "listing-1",
		Status:    models.LeadStatusNew,
		Name:      "Jan Peeters",
		CreatedAt: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
	}
}

func TestMarkLeadReplied_ManualReply(t *testing.T) {
	svc, store := newReplyFixture(pendingLead("lead-1"))

	applied := svc.SendManualReply(context.Background(), "listing-1", "lead-1", "Bedankt voor je bericht!")

	if !applied {
		t.Fatal("Expected manual reply to be applied")
	}
	lead := store.lead(t, "lead-1")
	if lead.Status != models.LeadStatusReplied {
		t.Errorf("Expected status replied, got %s", lead.Status)
	}
	if lead.FirstReplyAt == nil || lead.LastReplyAt == nil {
		t.Error("Expected reply timestamps to be set")
	}
	if lead.ReplyMeta == nil || lead.ReplyMeta.Auto {
		t.Errorf("Expected manual reply meta, got %+v", lead.ReplyMeta)
	}
	if lead.ReplyMeta.Message != "Bedankt voor je bericht!" {
		t.Errorf("Unexpected message %q", lead.ReplyMeta.Message)
	}
}

func TestMarkLeadReplied_AutoReplyCarriesTemplate(t *testing.T) {
	svc, store := newReplyFixture(pendingLead("lead-1"))

	applied := svc.SendAutoReply(context.Background(), "listing-1", "lead-1", "instant")

	if !applied {
		t.Fatal("Expected auto reply to be applied")
	}
	lead := store.lead(t, "lead-1")
	if !lead.IsAutoReplied() {
		t.Error("Expected auto reply state")
	}
	if lead.ReplyMeta.TemplateID != "instant" {
		t.Errorf("Expected template id instant, got %q", lead.ReplyMeta.TemplateID)
	}
	if lead.ReplyMeta.Message == "" {
		t.Error("Expected personalized template message")
	}
}

func TestMarkLeadReplied_ManualAfterAutoFlipsState(t *testing.T) {
	svc, store := newReplyFixture(pendingLead("lead-1"))
	ctx := context.Background()

	if !svc.SendAutoReply(ctx, "listing-1", "lead-1", "instant") {
		t.Fatal("Auto reply should apply")
	}
	if !svc.SendManualReply(ctx, "listing-1", "lead-1", "Persoonlijk antwoord") {
		t.Fatal("Manual follow-up should apply")
	}

	lead := store.lead(t, "lead-1")
	if lead.IsAutoReplied() {
		t.Error("Expected manual follow-up to flip the auto flag")
	}
	if lead.ReplyMeta.TemplateID != "" {
		t.Errorf("Expected template id to be dropped, got %q", lead.ReplyMeta.TemplateID)
	}
	if lead.ReplyMeta.Message != "Persoonlijk antwoord" {
		t.Errorf("Unexpected final message %q", lead.ReplyMeta.Message)
	}
}

func TestMarkLeadReplied_AutoAfterManualIsRejected(t *testing.T) {
	svc, store := newReplyFixture(pendingLead("lead-1"))
	ctx := context.Background()

	if !svc.SendManualReply(ctx, "listing-1", "lead-1", "Persoonlijk antwoord") {
		t.Fatal("Manual reply should apply")
	}
	saves := store.saveHits

	if svc.SendAutoReply(ctx, "listing-1", "lead-1", "instant") {
		t.Error("Expected auto reply after manual reply to be a no-op")
	}
	if store.saveHits != saves {
		t.Error("Expected no persistence for the rejected auto reply")
	}
	lead := store.lead(t, "lead-1")
	if lead.IsAutoReplied() {
		t.Error("Manual reply state must survive")
	}
}

func TestMarkLeadReplied_FirstReplyAtIsWriteOnce(t *testing.T) {
	svc, store := newReplyFixture(pendingLead("lead-1"))
	ctx := context.Background()

	times := []time.Time{
		time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 10, 11, 0, 0, 0, time.UTC),
	}
	idx := 0
	svc.now = func() time.Time {
		ts := times[idx]
		if idx < len(times)-1 {
			idx++
		}
		return ts
	}

	svc.SendManualReply(ctx, "listing-1", "lead-1", "Eerste antwoord")
	svc.SendManualReply(ctx, "listing-1", "lead-1", "Tweede antwoord")

	lead := store.lead(t, "lead-1")
	if !lead.FirstReplyAt.Equal(times[0]) {
		t.Errorf("Expected FirstReplyAt to stay at %v, got %v", times[0], lead.FirstReplyAt)
	}
	if !lead.LastReplyAt.Equal(times[1]) {
		t.Errorf("Expected LastReplyAt to advance to %v, got %v", times[1], lead.LastReplyAt)
	}
}

func TestMarkLeadReplied_UnknownLead(t *testing.T) {
	svc, _ := newReplyFixture(pendingLead("lead-1"))

	if svc.SendManualReply(context.Background(), "listing-1", "nope", "Hallo") {
		t.Error("Expected unknown lead to be a no-op")
	}
}

func TestMarkLeadReplied_StoreFailures(t *testing.T) {
	svc, store := newReplyFixture(pendingLead("lead-1"))

	store.loadErr = errors.New("db down")
	if svc.SendManualReply(context.Background(), "listing-1", "lead-1", "Hallo") {
		t.Error("Expected load failure to reject the reply")
	}

	store.loadErr = nil
	store.saveErr = errors.New("db down")
	if svc.SendManualReply(context.Background(), "listing-1", "lead-1", "Hallo") {
		t.Error("Expected save failure to reject the reply")
	}
}

func TestMarkLeadReplied_ConcurrentRepliesLoseNoUpdates(t *testing.T) {
	leads := make([]models.Lead, 0, 20)
	for i := 0; i < 20; i++ {
		leads = append(leads, pendingLead(fmt.Sprintf("lead-%d", i)))
	}
	svc, store := newReplyFixture(leads...)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			svc.SendManualReply(ctx, "listing-1", fmt.Sprintf("lead-%d", n), "Hallo")
		}(i)
	}
	wg.Wait()

	for i := 0; i < 20; i++ {
		lead := store.lead(t, fmt.Sprintf("lead-%d", i))
		if lead.Status != models.LeadStatusReplied {
			t.Errorf("lead-%d lost its reply", i)
		}
	}
}
