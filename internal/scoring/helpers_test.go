package scoring

import (
	"fmt"
	"strings"
	"time"

	"github.com/vimmo/listingrank/internal/models"
)

// fixtureContext is a DataContext over fixed maps
type fixtureContext struct {
	listings map[string]*models.Listing
	leads    map[string][]models.Lead
}

func (c *fixtureContext) GetByID(id string) *models.Listing {
	if c == nil {
		return nil
	}
	return c.listings[id]
}

func (c *fixtureContext) GetRequests(id string) []models.Lead {
	if c == nil {
		return nil
	}
	return c.leads[id]
}

func emptyContext() *fixtureContext {
	return &fixtureContext{
		listings: map[string]*models.Listing{},
		leads:    map[string][]models.Lead{},
	}
}

var fixtureNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func photoSet(present, loading int) []models.Photo {
	out := make([]models.Photo, 0, present+loading)
	for i := 0; i < present; i++ {
		out = append(out, models.Photo{ID: fmt.Sprintf("p%d", i), Present: true})
	}
	for i := 0; i < loading; i++ {
		out = append(out, models.Photo{ID: fmt.Sprintf("l%d", i), Present: true, Loading: true})
	}
	return out
}

// completeListing has every checklist item green and full verification
func completeListing() *models.Listing {
	return &models.Listing{
		ID:              "listing-1",
		Name:            "Lichtrijke stadswoning met tuin in Antwerpen Zuid",
		Description:     strings.Repeat("Ruime en instapklare woning met veel lichtinval. ", 16),
		Postcode:        "2000",
		Address:         "Volkstraat 12",
		Location:        "Antwerpen",
		Type:            "Huis",
		Price:           450000,
		Bedrooms:        3,
		Bathrooms:       2,
		Surface:         150,
		EnergyLabel:     models.EPCB,
		TransactionType: models.TransactionSale,
		Status:          models.ListingStatusActive,
		Photos:          photoSet(12, 0),
		Docs: map[models.DocType]models.DocVerification{
			models.DocEPC:      {OK: true},
			models.DocAsbestos: {OK: true},
			models.DocSoil:     {OK: true},
		},
		OwnerVerified: true,
		ViewingSlots: []models.ViewingSlot{
			{Start: fixtureNow.Add(24 * time.Hour), End: fixtureNow.Add(25 * time.Hour)},
		},
		CreatedAt: fixtureNow.Add(-30 * 24 * time.Hour),
		UpdatedAt: fixtureNow,
	}
}

// repliedLead creates a lead replied after the given number of minutes
func repliedLead(id string, minutes int, auto bool) models.Lead {
	created := fixtureNow.Add(-24 * time.Hour)
	replied := created.Add(time.Duration(minutes) * time.Minute)
	return models.Lead{
		ID:           id,
		ListingID:    "listing-1",
		Status:       models.LeadStatusReplied,
		Name:         "Test Lead",
		CreatedAt:    created,
		FirstReplyAt: &replied,
		LastReplyAt:  &replied,
		ReplyMeta:    &models.ReplyMeta{Auto: auto, RepliedAt: replied},
	}
}

func newLead(id string) models.Lead {
	return models.Lead{
		ID:        id,
		ListingID: "listing-1",
		Status:    models.LeadStatusNew,
		CreatedAt: fixtureNow.Add(-2 * time.Hour),
	}
}

func almostEqual(a, b float64) bool {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff < 1e-9
}
