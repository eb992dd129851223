package scoring

import (
	"strings"
	"unicode/utf8"

	"github.com/vimmo/listingrank/internal/models"
)

// Publish checklist cutoffs. These are contractual: the health evaluator
// emits blockers on exactly the same boundaries.
const (
	minTitleLen       = 28
	maxTitleLen       = 78
	minDescriptionLen = 700
	minPublishPhotos  = 4
)

// ChecklistItem is one publish requirement with its verdict
type ChecklistItem struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	OK    bool   `json:"ok"`
}

// PublishState is the outcome of the publish checklist for a listing
type PublishState struct {
	AllOK bool            `json:"all_ok"`
	Items []ChecklistItem `json:"items"`
}

// PublishStateFunc produces the publish state for a listing. The quality
// scorer takes it as an injected collaborator so tests can substitute it.
type PublishStateFunc func(*models.Listing) PublishState

// EvaluatePublishState runs the publish checklist over a listing
func EvaluatePublishState(l *models.Listing) PublishState {
	title := normField(l, func(x *models.Listing) string { return x.Name })
	desc := normField(l, func(x *models.Listing) string { return x.Description })
	postcode := normField(l, func(x *models.Listing) string { return x.Postcode })

	var price, surface float64
	var bedrooms int
	var typ string
	if l != nil {
		price = l.Price
		surface = l.Surface
		bedrooms = l.Bedrooms
		typ = l.Type
	}

	items := []ChecklistItem{
		{ID: "title", Label: "Titel", OK: utf8.RuneCountInString(title) >= minTitleLen},
		{ID: "description", Label: "Beschrijving", OK: utf8.RuneCountInString(desc) >= minDescriptionLen},
		{ID: "price", Label: "Vraagprijs", OK: price > 0},
		{ID: "location", Label: "Locatie", OK: postcode != ""},
		{ID: "specs", Label: "Kenmerken", OK: typ != "" && surface > 0 && bedrooms > 0},
		{ID: "media", Label: "Foto's", OK: l.UsablePhotoCount() >= minPublishPhotos},
	}

	allOK := true
	for _, it := range items {
		if !it.OK {
			allOK = false
			break
		}
	}

	return PublishState{AllOK: allOK, Items: items}
}

func normField(l *models.Listing, get func(*models.Listing) string) string {
	if l == nil {
		return ""
	}
	return strings.TrimSpace(get(l))
}
