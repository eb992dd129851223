package scoring

import (
	"fmt"
	"unicode/utf8"

	"github.com/vimmo/listingrank/internal/models"
)

// BreakdownPart is one weighted contribution to a 0-10 score
type BreakdownPart struct {
	Label  string  `json:"label"`
	Points float64 `json:"pts"`
	Max    float64 `json:"max"`
	Note   string  `json:"note,omitempty"`
}

// QualityResult is the buyer-independent Vimmo quality score of a listing
type QualityResult struct {
	Score     float64         `json:"score"`
	Breakdown []BreakdownPart `json:"breakdown"`
	Tips      []string        `json:"tips"`
}

// QualityScorer computes the Vimmo quality score (0-10) from completeness,
// media, trust documents, responsiveness and listing quality heuristics.
type QualityScorer struct {
	sla          *SLAEngine
	publishState PublishStateFunc
}

// NewQualityScorer creates a QualityScorer. The publish state collaborator
// may be nil, in which case the completeness part scores zero.
func NewQualityScorer(sla *SLAEngine, publishState PublishStateFunc) *QualityScorer {
	return &QualityScorer{sla: sla, publishState: publishState}
}

// Score computes the Vimmo quality score of a listing
func (q *QualityScorer) Score(listing *models.Listing, ctx DataContext) QualityResult {
	photoCount := listing.UsablePhotoCount()
	hasEPC := listing.HasDoc(models.DocEPC)
	hasAsbestos := listing.HasDoc(models.DocAsbestos)
	hasSoil := listing.HasDoc(models.DocSoil)
	ownerOK := listing != nil && listing.OwnerVerified

	title := normField(listing, func(l *models.Listing) string { return l.Name })
	titleLen := utf8.RuneCountInString(title)

	var state *PublishState
	if q.publishState != nil && listing != nil {
		s := q.publishState(listing)
		state = &s
	}

	parts := []BreakdownPart{
		q.scoreCompleteness(state),
		scoreMediaCount(photoCount),
		scoreTrustDocs(hasEPC, hasAsbestos, hasSoil, ownerOK),
		q.scoreResponsiveness(listing, ctx),
		scoreListingQuality(listing, titleLen),
	}

	var raw, totalMax float64
	for _, p := range parts {
		raw += p.Points
		totalMax += p.Max
	}

	score := 0.0
	if totalMax > 0 {
		score = raw / totalMax * 10
	}

	// Small bonus for listings that are live with a fully green checklist
	if listing != nil && listing.Status == models.ListingStatusActive &&
		state != nil && state.AllOK {
		score += 0.2
	}
	score = clamp(score, 0, 10)

	for i := range parts {
		parts[i].Points = round1(parts[i].Points)
	}

	var tips []string
	if photoCount < 8 {
		tips = append(tips, fmt.Sprintf("Voeg foto's toe (%d/8) voor meer vertrouwen en clicks.", photoCount))
	}
	if !hasEPC {
		tips = append(tips, "Upload EPC attest. Dit is één van de grootste trust boosts.")
	}
	if !hasAsbestos {
		tips = append(tips, "Upload asbestattest voor transparantie en minder afhakers.")
	}
	if !hasSoil {
		tips = append(tips, "Upload bodemattest. Dit verhoogt je geloofwaardigheid.")
	}
	if !ownerOK {
		tips = append(tips, "Start eigenaarsverificatie. Verified listings converteren beter.")
	}
	if titleLen < 14 {
		tips = append(tips, "Maak je titel specifieker (minstens 14 tekens) voor hogere doorklikratio.")
	}
	if state == nil || !state.AllOK {
		tips = append(tips, "Maak je checklist volledig groen. Publiceer pas als alles klopt.")
	}

	return QualityResult{
		Score:     round1(score),
		Breakdown: parts,
		Tips:      tips,
	}
}

func (q *QualityScorer) scoreCompleteness(state *PublishState) BreakdownPart {
	part := BreakdownPart{Label: "Volledigheid", Max: 3.0}
	if state == nil {
		part.Note = "Geen publish state"
		return part
	}

	total := len(state.Items)
	if total == 0 {
		total = 6
	}
	ok := 0
	for _, it := range state.Items {
		if it.OK {
			ok++
		}
	}

	part.Points = 3.0 * float64(ok) / float64(total)
	part.Note = fmt.Sprintf("%d/%d", ok, total)
	return part
}

// scoreMediaCount buckets the usable photo count at 4/8/12
func scoreMediaCount(photoCount int) BreakdownPart {
	part := BreakdownPart{Label: "Media", Max: 2.0, Note: fmt.Sprintf("%d foto's", photoCount)}
	switch {
	case photoCount <= 0:
		part.Points = 0
	case photoCount < 4:
		part.Points = 0.6
	case photoCount < 8:
		part.Points = 1.2
	case photoCount < 12:
		part.Points = 1.7
	default:
		part.Points = 2.0
	}
	return part
}

func scoreTrustDocs(hasEPC, hasAsbestos, hasSoil, ownerOK bool) BreakdownPart {
	pts := 0.0
	if hasEPC {
		pts += 1.0
	}
	if hasAsbestos {
		pts += 0.8
	}
	if hasSoil {
		pts += 0.8
	}
	if ownerOK {
		pts += 0.4
	}

	mark := func(ok bool) string {
		if ok {
			return "✓"
		}
		return "✗"
	}

	return BreakdownPart{
		Label:  "Trust",
		Points: clamp(pts, 0, 3.0),
		Max:    3.0,
		Note: fmt.Sprintf("EPC:%s Asbest:%s Bodem:%s Owner:%s",
			mark(hasEPC), mark(hasAsbestos), mark(hasSoil), mark(ownerOK)),
	}
}

// scoreResponsiveness delegates to the SLA engine, scaled to max 1.2
func (q *QualityScorer) scoreResponsiveness(listing *models.Listing, ctx DataContext) BreakdownPart {
	part := BreakdownPart{Label: "Snelheid", Max: 1.2}

	sla := q.sla.Score(listing, ctx)
	switch {
	case sla.LeadCount == 0:
		part.Points = 0.6
		part.Note = "Nog geen aanvragen"
	case sla.RepliedCount == 0:
		part.Points = 0.2
		part.Note = "Nog geen replies"
	default:
		part.Points = clamp(sla.Score/slaMaxScore*1.2, 0, 1.2)
		if sla.AvgMinutes != nil {
			part.Note = fmt.Sprintf("Gem. %.1fu", float64(*sla.AvgMinutes)/60)
		} else {
			part.Note = "Replies zonder timing"
		}
	}
	return part
}

func scoreListingQuality(listing *models.Listing, titleLen int) BreakdownPart {
	pts := 0.0
	if titleLen >= 6 {
		pts += 0.2
	}
	if titleLen >= 14 {
		pts += 0.2
	}

	priceOK := listing != nil && listing.Price > 0
	if priceOK {
		pts += 0.2
	}
	if listing != nil && listing.Surface > 0 {
		pts += 0.1
	}
	if listing != nil && listing.Bedrooms > 0 {
		pts += 0.1
	}

	mark := "✗"
	if priceOK {
		mark = "✓"
	}

	return BreakdownPart{
		Label:  "Kwaliteit",
		Points: clamp(pts, 0, 0.8),
		Max:    0.8,
		Note:   fmt.Sprintf("Titel:%d Prijs:%s", titleLen, mark),
	}
}
