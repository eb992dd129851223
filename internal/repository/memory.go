package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vimmo/listingrank/internal/models"
)

// Memory is an in-memory storage backend. It backs the demo mode and the
// test suites; all methods are safe for concurrent use.
type Memory struct {
	mu        sync.RWMutex
	listings  map[string]models.Listing
	leads     map[string][]models.Lead
	accounts  map[string]models.Account
	snapshots []RankSnapshot
}

// NewMemory creates an empty in-memory backend
func NewMemory() *Memory {
	return &Memory{
		listings: make(map[string]models.Listing),
		leads:    make(map[string][]models.Lead),
		accounts: make(map[string]models.Account),
	}
}

// NewMemoryRepositories wraps a Memory backend in the Repositories bundle
func NewMemoryRepositories(m *Memory) *Repositories {
	return &Repositories{
		Listings:  m,
		Leads:     m,
		Accounts:  m,
		Snapshots: m,
	}
}

// GetListingByID retrieves a listing by its ID, leads attached
func (m *Memory) GetListingByID(ctx context.Context, id string) (*models.Listing, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	listing, ok := m.listings[id]
	if !ok {
		return nil, models.ErrListingNotFound
	}
	listing.Leads = cloneLeads(m.leads[id])
	return &listing, nil
}

// ListListings returns all listings, leads attached, oldest first
func (m *Memory) ListListings(ctx context.Context) ([]models.Listing, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Listing, 0, len(m.listings))
	for id, listing := range m.listings {
		listing.Leads = cloneLeads(m.leads[id])
		out = append(out, listing)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// SaveListing upserts a listing (without its leads)
func (m *Memory) SaveListing(ctx context.Context, listing *models.Listing) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := *listing
	stored.Leads = nil
	m.listings[listing.ID] = stored
	return nil
}

// LeadsByListing returns all leads of a listing, oldest first
func (m *Memory) LeadsByListing(ctx context.Context, listingID string) ([]models.Lead, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, ok := m.listings[listingID]; !ok {
		return nil, models.ErrListingNotFound
	}
	return cloneLeads(m.leads[listingID]), nil
}

// CreateLead inserts a new lead
func (m *Memory) CreateLead(ctx context.Context, lead *models.Lead) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.listings[lead.ListingID]; !ok {
		return models.ErrListingNotFound
	}
	m.leads[lead.ListingID] = append(m.leads[lead.ListingID], *lead)
	return nil
}

// ReplaceLeads replaces the full lead collection of a listing
func (m *Memory) ReplaceLeads(ctx context.Context, listingID string, leads []models.Lead) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.listings[listingID]; !ok {
		return models.ErrListingNotFound
	}
	m.leads[listingID] = cloneLeads(leads)
	return nil
}

// LeadCountsByStatus returns lead counts grouped by status
func (m *Memory) LeadCountsByStatus(ctx context.Context) (map[models.LeadStatus]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := make(map[models.LeadStatus]int)
	for _, leads := range m.leads {
		for _, lead := range leads {
			counts[lead.Status]++
		}
	}
	return counts, nil
}

// GetAccount retrieves an account by its ID
func (m *Memory) GetAccount(ctx context.Context, id string) (*models.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	account, ok := m.accounts[id]
	if !ok {
		return nil, models.ErrAccountNotFound
	}
	return &account, nil
}

// SaveAccount upserts an account
func (m *Memory) SaveAccount(ctx context.Context, account *models.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.accounts[account.ID] = *account
	return nil
}

// SaveSnapshotRun replaces the stored snapshot with a new run
func (m *Memory) SaveSnapshotRun(ctx context.Context, snapshots []RankSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.snapshots = append([]RankSnapshot(nil), snapshots...)
	return nil
}

// LatestSnapshot returns the most recent run ordered by position
func (m *Memory) LatestSnapshot(ctx context.Context) ([]RankSnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := append([]RankSnapshot(nil), m.snapshots...)
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func cloneLeads(leads []models.Lead) []models.Lead {
	if leads == nil {
		return nil
	}
	out := make([]models.Lead, len(leads))
	for i, lead := range leads {
		out[i] = lead
		if lead.ReplyMeta != nil {
			meta := *lead.ReplyMeta
			out[i].ReplyMeta = &meta
		}
	}
	return out
}

// SeedDemo loads the demo data set: three Antwerp-area listings in different
// states of completeness, plus a handful of leads. Idempotent.
func (m *Memory) SeedDemo(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.listings["prop-1"]; ok {
		return
	}

	photos := func(n int) []models.Photo {
		out := make([]models.Photo, n)
		for i := range out {
			out[i] = models.Photo{ID: uuid.NewString(), Present: true}
		}
		return out
	}
	verified := models.DocVerification{OK: true, VerifiedAt: &now}

	m.listings["prop-1"] = models.Listing{
		ID:              "prop-1",
		Name:            "Moderne Woning in Antwerpen",
		Description:     "Prachtige moderne woning in het hart van Antwerpen Zuid.",
		Location:        "Antwerpen, Zuid",
		Postcode:        "2000",
		Type:            "Huis",
		Price:           450000,
		Bedrooms:        3,
		Bathrooms:       2,
		Surface:         150,
		EnergyLabel:     models.EPCB,
		TransactionType: models.TransactionSale,
		Status:          models.ListingStatusActive,
		Photos:          photos(9),
		Docs: map[models.DocType]models.DocVerification{
			models.DocEPC: verified,
		},
		OwnerVerified: true,
		ViewingSlots: []models.ViewingSlot{
			{Start: now.Add(48 * time.Hour), End: now.Add(49 * time.Hour)},
		},
		CreatedAt: now.Add(-30 * 24 * time.Hour),
		UpdatedAt: now,
	}

	m.listings["prop-2"] = models.Listing{
		ID:              "prop-2",
		Name:            "Penthouse aan de Schelde",
		Description:     "Luxueus penthouse met adembenemend uitzicht.",
		Location:        "Antwerpen, Scheldekaaien",
		Postcode:        "2000",
		Type:            "Penthouse",
		Price:           1250000,
		Bedrooms:        4,
		Bathrooms:       3,
		Surface:         220,
		EnergyLabel:     models.EPCA,
		TransactionType: models.TransactionSale,
		Status:          models.ListingStatusActive,
		Photos:          photos(14),
		Docs: map[models.DocType]models.DocVerification{
			models.DocEPC:      verified,
			models.DocAsbestos: verified,
		},
		OwnerVerified: true,
		CreatedAt:     now.Add(-14 * 24 * time.Hour),
		UpdatedAt:     now,
	}

	m.listings["prop-3"] = models.Listing{
		ID:              "prop-3",
		Name:            "Villa met Zwembad - Brasschaat",
		Description:     "Ruime villa met privé zwembad en grote tuin.",
		Location:        "Brasschaat",
		Postcode:        "2930",
		Type:            "Villa",
		Price:           890000,
		Bedrooms:        5,
		Bathrooms:       3,
		Surface:         320,
		EnergyLabel:     models.EPCC,
		TransactionType: models.TransactionSale,
		Status:          models.ListingStatusActive,
		Photos:          photos(3),
		CreatedAt:       now.Add(-7 * 24 * time.Hour),
		UpdatedAt:       now,
	}

	reply := func(minutesAfter int, auto bool) (*time.Time, *models.ReplyMeta) {
		at := now.Add(time.Duration(minutesAfter) * time.Minute)
		return &at, &models.ReplyMeta{Auto: auto, RepliedAt: at}
	}

	firstReply, meta := reply(-60*24+45, false)
	m.leads["prop-1"] = []models.Lead{
		{
			ID:           uuid.NewString(),
			ListingID:    "prop-1",
			Status:       models.LeadStatusReplied,
			Name:         "Sofie Peeters",
			Email:        "sofie.peeters@example.be",
			Phone:        "+32 470 12 34 56",
			Message:      "Is de woning nog beschikbaar?",
			CreatedAt:    now.Add(-24 * time.Hour),
			FirstReplyAt: firstReply,
			LastReplyAt:  firstReply,
			ReplyMeta:    meta,
		},
		{
			ID:        uuid.NewString(),
			ListingID: "prop-1",
			Status:    models.LeadStatusNew,
			Name:      "Jan Willems",
			Email:     "jan.willems@example.be",
			Phone:     "+32 485 98 76 54",
			Message:   "Graag een bezichtiging volgende week.",
			CreatedAt: now.Add(-2 * time.Hour),
		},
	}
	m.leads["prop-3"] = []models.Lead{
		{
			ID:        uuid.NewString(),
			ListingID: "prop-3",
			Status:    models.LeadStatusNew,
			Name:      "Els Vermeulen",
			Email:     "els.vermeulen@example.be",
			Phone:     "+32 472 11 22 33",
			Message:   "Wat is de EPC-score van deze villa?",
			CreatedAt: now.Add(-5 * 24 * time.Hour),
		},
	}

	m.accounts["owner-1"] = models.Account{
		ID:          "owner-1",
		Email:       "verkoper@example.be",
		PackageTier: models.PackageBasic,
		CreatedAt:   now.Add(-60 * 24 * time.Hour),
	}
}
