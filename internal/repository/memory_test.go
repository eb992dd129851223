package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/vimmo/listingrank/internal/models"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func testListing(id string, createdAt time.Time) *models.Listing {
	return &models.Listing{
		ID:          id,
		Name:        "Testwoning " + id,
		Location:    "Antwerpen",
		Price:       350000,
		Status:      models.ListingStatusActive,
		EnergyLabel: models.EPCB,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
}

func TestMemoryListingRoundTrip(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	want := testListing("l-1", testNow)
	if err := m.SaveListing(ctx, want); err != nil {
		t.Fatalf("SaveListing: %v", err)
	}

	got, err := m.GetListingByID(ctx, "l-1")
	if err != nil {
		t.Fatalf("GetListingByID: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Listing mismatch (-want +got):\n%s", diff)
	}

	if _, err := m.GetListingByID(ctx, "missing"); !errors.Is(err, models.ErrListingNotFound) {
		t.Errorf("Expected ErrListingNotFound, got %v", err)
	}
}

func TestMemoryListListingsOrderedByCreation(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	m.SaveListing(ctx, testListing("newer", testNow))
	m.SaveListing(ctx, testListing("older", testNow.Add(-24*time.Hour)))
	m.SaveListing(ctx, testListing("same-a", testNow))

	listings, err := m.ListListings(ctx)
	if err != nil {
		t.Fatalf("ListListings: %v", err)
	}

	var ids []string
	for _, l := range listings {
		ids = append(ids, l.ID)
	}
	want := []string{"older", "newer", "same-a"}
	if diff := cmp.Diff(want, ids); diff != "" {
		t.Errorf("Unexpected order (-want +got):\n%s", diff)
	}
}

func TestMemoryLeadLifecycle(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	m.SaveListing(ctx, testListing("l-1", testNow))

	lead := &models.Lead{
		ID:        "lead-1",
		ListingID: "l-1",
		Status:    models.LeadStatusNew,
		Name:      "Jan Peeters",
		CreatedAt: testNow,
	}
	if err := m.CreateLead(ctx, lead); err != nil {
		t.Fatalf("CreateLead: %v", err)
	}

	leads, err := m.LeadsByListing(ctx, "l-1")
	if err != nil {
		t.Fatalf("LeadsByListing: %v", err)
	}
	if len(leads) != 1 || leads[0].ID != "lead-1" {
		t.Fatalf("Unexpected leads %+v", leads)
	}

	// Listings come back with their leads attached.
	listing, err := m.GetListingByID(ctx, "l-1")
	if err != nil {
		t.Fatalf("GetListingByID: %v", err)
	}
	if len(listing.Leads) != 1 {
		t.Errorf("Expected 1 attached lead, got %d", len(listing.Leads))
	}

	leads[0].Status = models.LeadStatusReplied
	if err := m.ReplaceLeads(ctx, "l-1", leads); err != nil {
		t.Fatalf("ReplaceLeads: %v", err)
	}
	reloaded, _ := m.LeadsByListing(ctx, "l-1")
	if reloaded[0].Status != models.LeadStatusReplied {
		t.Errorf("Expected replaced status, got %s", reloaded[0].Status)
	}
}

func TestMemoryLeadOperationsRejectUnknownListing(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	err := m.CreateLead(ctx, &models.Lead{ID: "lead-1", ListingID: "nope"})
	if !errors.Is(err, models.ErrListingNotFound) {
		t.Errorf("CreateLead: expected ErrListingNotFound, got %v", err)
	}
	if err := m.ReplaceLeads(ctx, "nope", nil); !errors.Is(err, models.ErrListingNotFound) {
		t.Errorf("ReplaceLeads: expected ErrListingNotFound, got %v", err)
	}
	if _, err := m.LeadsByListing(ctx, "nope"); !errors.Is(err, models.ErrListingNotFound) {
		t.Errorf("LeadsByListing: expected ErrListingNotFound, got %v", err)
	}
}

func TestMemoryLeadsAreCopies(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	m.SaveListing(ctx, testListing("l-1", testNow))

	replied := testNow
	m.CreateLead(ctx, &models.Lead{
		ID:        "lead-1",
		ListingID: "l-1",
		Status:    models.LeadStatusReplied,
		CreatedAt: testNow,
		ReplyMeta: &models.ReplyMeta{Auto: true, RepliedAt: replied},
	})

	leads, _ := m.LeadsByListing(ctx, "l-1")
	leads[0].Status = models.LeadStatusBlocked
	leads[0].ReplyMeta.Auto = false

	fresh, _ := m.LeadsByListing(ctx, "l-1")
	if fresh[0].Status != models.LeadStatusReplied {
		t.Error("Mutating a returned lead must not touch the store")
	}
	if !fresh[0].ReplyMeta.Auto {
		t.Error("Mutating returned reply meta must not touch the store")
	}
}

func TestMemoryLeadCountsByStatus(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	m.SaveListing(ctx, testListing("l-1", testNow))
	m.SaveListing(ctx, testListing("l-2", testNow))

	m.CreateLead(ctx, &models.Lead{ID: "a", ListingID: "l-1", Status: models.LeadStatusNew})
	m.CreateLead(ctx, &models.Lead{ID: "b", ListingID: "l-1", Status: models.LeadStatusReplied})
	m.CreateLead(ctx, &models.Lead{ID: "c", ListingID: "l-2", Status: models.LeadStatusNew})

	counts, err := m.LeadCountsByStatus(ctx)
	if err != nil {
		t.Fatalf("LeadCountsByStatus: %v", err)
	}
	want := map[models.LeadStatus]int{
		models.LeadStatusNew:     2,
		models.LeadStatusReplied: 1,
	}
	if diff := cmp.Diff(want, counts); diff != "" {
		t.Errorf("Unexpected counts (-want +got):\n%s", diff)
	}
}

func TestMemoryAccountRoundTrip(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	want := &models.Account{ID: "owner-1", Email: "verkoper@example.be", PackageTier: models.PackageBasic}
	if err := m.SaveAccount(ctx, want); err != nil {
		t.Fatalf("SaveAccount: %v", err)
	}

	got, err := m.GetAccount(ctx, "owner-1")
	if err != nil {
		t.Fatalf("GetAccount: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Account mismatch (-want +got):\n%s", diff)
	}

	if _, err := m.GetAccount(ctx, "missing"); !errors.Is(err, models.ErrAccountNotFound) {
		t.Errorf("Expected ErrAccountNotFound, got %v", err)
	}
}

func TestMemorySnapshotRunsReplaceAndOrder(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	first := []RankSnapshot{
		{ListingID: "b", Position: 2, Tier: "silver", ComputedAt: testNow},
		{ListingID: "a", Position: 1, Tier: "gold", ComputedAt: testNow},
	}
	if err := m.SaveSnapshotRun(ctx, first); err != nil {
		t.Fatalf("SaveSnapshotRun: %v", err)
	}

	got, err := m.LatestSnapshot(ctx)
	if err != nil {
		t.Fatalf("LatestSnapshot: %v", err)
	}
	if len(got) != 2 || got[0].ListingID != "a" || got[1].ListingID != "b" {
		t.Fatalf("Expected position order a,b, got %+v", got)
	}

	second := []RankSnapshot{{ListingID: "c", Position: 1, Tier: "bronze", ComputedAt: testNow}}
	m.SaveSnapshotRun(ctx, second)

	got, _ = m.LatestSnapshot(ctx)
	if len(got) != 1 || got[0].ListingID != "c" {
		t.Errorf("Expected the new run to replace the old one, got %+v", got)
	}
}

func TestSeedDemoIsIdempotent(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	m.SeedDemo(testNow)
	listings, _ := m.ListListings(ctx)
	leadsBefore, _ := m.LeadsByListing(ctx, "prop-1")

	m.SeedDemo(testNow)
	again, _ := m.ListListings(ctx)
	leadsAfter, _ := m.LeadsByListing(ctx, "prop-1")

	if len(listings) != 3 || len(again) != 3 {
		t.Errorf("Expected 3 demo listings, got %d then %d", len(listings), len(again))
	}
	if len(leadsBefore) != len(leadsAfter) {
		t.Errorf("Expected lead count to stay %d, got %d", len(leadsBefore), len(leadsAfter))
	}

	if _, err := m.GetAccount(ctx, "owner-1"); err != nil {
		t.Errorf("Expected seeded demo account, got %v", err)
	}
}
