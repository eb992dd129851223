package scoring

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/vimmo/listingrank/internal/models"
)

// Category weights of the health score. They sum to 1.0.
const (
	weightContent      = 0.28
	weightMedia        = 0.18
	weightTrust        = 0.18
	weightPrice        = 0.12
	weightSLA          = 0.12
	weightAvailability = 0.06
	weightLegal        = 0.06
)

// Finding is a classified health verdict: a blocker prevents publication,
// a penalty deducts score, a tip is advisory only.
type Finding struct {
	ID        string `json:"id"`
	Severity  string `json:"severity,omitempty"`
	Label     string `json:"label"`
	Hint      string `json:"hint"`
	FixAction string `json:"fix_action,omitempty"`
	FixTarget string `json:"fix_target,omitempty"`
}

// HealthResult is the publish-readiness verdict for a listing
type HealthResult struct {
	Score      int                `json:"score"`
	Label      string             `json:"label"`
	Tier       string             `json:"tier"`
	Blockers   []Finding          `json:"blockers"`
	Penalties  []Finding          `json:"penalties"`
	Tips       []Finding          `json:"tips"`
	Categories map[string]float64 `json:"categories"`
}

// HealthEvaluator scores a listing's publish-readiness across content,
// media, trust, price, SLA, availability and legal completeness.
type HealthEvaluator struct {
	sla *SLAEngine
}

// NewHealthEvaluator creates a HealthEvaluator delegating responsiveness
// to the given SLA engine.
func NewHealthEvaluator(sla *SLAEngine) *HealthEvaluator {
	return &HealthEvaluator{sla: sla}
}

// Evaluate computes the health of a listing. Missing sub-objects (photos,
// docs) degrade to "absent" and never error.
func (h *HealthEvaluator) Evaluate(listing *models.Listing, ctx DataContext) HealthResult {
	var blockers, penalties, tips []Finding

	title := normField(listing, func(l *models.Listing) string { return l.Name })
	desc := normField(listing, func(l *models.Listing) string { return l.Description })
	postcode := normField(listing, func(l *models.Listing) string { return l.Postcode })

	var price float64
	if listing != nil {
		price = listing.Price
	}

	// 1. Content completeness (28%)
	contentScore := 100.0
	titleLen := utf8.RuneCountInString(title)

	if titleLen < minTitleLen {
		contentScore -= 15
		blockers = append(blockers, Finding{
			ID: "title_short", Severity: "blocker",
			Label: "Titel te kort", Hint: "Minimum 28 tekens voor optimale SEO.",
			FixAction: "focus", FixTarget: "title",
		})
	} else if titleLen > maxTitleLen {
		contentScore -= 5
		tips = append(tips, Finding{
			ID:    "title_long",
			Label: "Titel erg lang", Hint: "Houdt het tussen 28 en 78 tekens voor Google.",
		})
	}
	if title != "" && title == strings.ToUpper(title) && titleLen > 5 {
		contentScore -= 10
		penalties = append(penalties, Finding{
			ID: "title_caps", Severity: "penalty",
			Label: "Titel in ALL CAPS", Hint: "Gebruik kleine letters voor een premium uitstraling.",
			FixAction: "focus", FixTarget: "title",
		})
	}

	descLen := utf8.RuneCountInString(desc)
	if descLen < minDescriptionLen {
		contentScore -= 20
		item := Finding{
			ID: "desc_short", Severity: "penalty",
			Label: "Beschrijving te kort",
			Hint:  fmt.Sprintf("Voeg minstens 700 tekens toe (nu: %d).", descLen),
			FixAction: "focus", FixTarget: "description",
		}
		if descLen == 0 {
			item.Severity = "blocker"
			item.Label = "Beschrijving ontbreekt"
			blockers = append(blockers, item)
		} else {
			penalties = append(penalties, item)
		}
	}

	if postcode == "" {
		contentScore -= 20
		blockers = append(blockers, Finding{
			ID: "loc_none", Severity: "blocker",
			Label: "Locatie ontbreekt", Hint: "Postcode is verplicht voor publicatie.",
			FixAction: "focus", FixTarget: "location",
		})
	}

	hasSpecs := listing != nil && listing.Type != "" && listing.Surface > 0 && listing.Bedrooms > 0
	if !hasSpecs {
		contentScore -= 15
		blockers = append(blockers, Finding{
			ID: "specs_incomplete", Severity: "blocker",
			Label: "Kenmerken incompleet", Hint: "Oppervlakte en slaapkamers zijn verplicht.",
			FixAction: "scroll", FixTarget: "specs",
		})
	}

	// 2. Media quality (18%)
	mediaScore := 100.0
	photoCount := listing.PhotoCount()
	switch {
	case photoCount == 0:
		mediaScore = 0
		blockers = append(blockers, Finding{
			ID: "media_none", Severity: "blocker",
			Label: "Geen foto's", Hint: "Advertenties zonder foto's worden niet gepubliceerd.",
			FixAction: "scroll", FixTarget: "media",
		})
	case photoCount < 4:
		mediaScore = 20
		blockers = append(blockers, Finding{
			ID: "media_vlow", Severity: "blocker",
			Label: "Kritiek weinig foto's", Hint: "Minstens 4 foto's nodig om te kunnen publiceren.",
			FixAction: "scroll", FixTarget: "media",
		})
	case photoCount < 8:
		mediaScore = 50
		penalties = append(penalties, Finding{
			ID: "media_low", Severity: "penalty",
			Label: "Te weinig foto's voor ranking",
			Hint:  fmt.Sprintf("Voeg minstens 8 foto's toe voor een goede ranking (nu: %d).", photoCount),
			FixAction: "scroll", FixTarget: "media",
		})
	case photoCount < 15:
		mediaScore = 80
		tips = append(tips, Finding{
			ID:    "media_pro",
			Label: "Voeg meer foto's toe", Hint: "Panden met 15+ foto's krijgen 40% meer aanvragen.",
		})
	}

	// 3. Trust & verification (18%), 70 baseline
	trustScore := 70.0
	if listing != nil && listing.OwnerVerified {
		trustScore += 30
	} else {
		penalties = append(penalties, Finding{
			ID: "trust_owner", Severity: "penalty",
			Label: "Eigenaarschap niet geverifieerd",
			Hint:  "Start verificatie voor een 'Verified' badge en betere ranking.",
			FixAction: "scroll", FixTarget: "trust",
		})
	}
	if listing.HasDoc(models.DocEPC) {
		trustScore += 10
	} else {
		tips = append(tips, Finding{
			ID:    "trust_epc",
			Label: "Geen EPC document", Hint: "Upload je EPC attest voor 20% meer vertrouwen.",
		})
	}
	if trustScore > 100 {
		trustScore = 100
	}

	// 4. Pricing & market fit (12%)
	priceScore := 100.0
	if price <= 0 {
		priceScore = 0
		blockers = append(blockers, Finding{
			ID: "price_zero", Severity: "blocker",
			Label: "Prijs ontbreekt", Hint: "Voer een geldige vraagprijs in.",
			FixAction: "focus", FixTarget: "price",
		})
	}

	// 5. Responsiveness & SLA (12%), 70 default for listings without timed replies
	slaScore := 70.0
	sla := h.sla.Score(listing, ctx)
	if sla.AvgMinutes != nil {
		slaScore = (sla.Score / slaMaxScore) * 100
		if slaScore < 55 {
			penalties = append(penalties, Finding{
				ID: "sla_slow", Severity: "penalty",
				Label: "Lage responstijd", Hint: "Beantwoord leads sneller om je ranking te verbeteren.",
				FixAction: "scroll", FixTarget: "sla",
			})
		}
	}

	// 6. Availability & scheduling (6%)
	availScore := 80.0
	if listing == nil || len(listing.ViewingSlots) == 0 {
		availScore = 40
		tips = append(tips, Finding{
			ID:    "avail_none",
			Label: "Geen bezichtigingsmomenten", Hint: "Stel slots in zodat zoekers direct kunnen boeken.",
		})
	}

	// 7. Compliance & legal (6%)
	legalScore := 100.0
	if listing == nil || listing.EnergyLabel == "" {
		legalScore = 30
		blockers = append(blockers, Finding{
			ID: "legal_epc", Severity: "blocker",
			Label: "EPC Label ontbreekt", Hint: "Dit is wettelijk verplicht bij publicatie.",
			FixAction: "scroll", FixTarget: "epc",
		})
	}

	total := contentScore*weightContent +
		mediaScore*weightMedia +
		trustScore*weightTrust +
		priceScore*weightPrice +
		slaScore*weightSLA +
		availScore*weightAvailability +
		legalScore*weightLegal

	label, tier := "Kritiek", "critical"
	switch {
	case total >= 85:
		label, tier = "Excellent", "excellent"
	case total >= 70:
		label, tier = "Goed", "good"
	case total >= 55:
		label, tier = "Oké", "ok"
	case total >= 40:
		label, tier = "Zwak", "weak"
	}

	return HealthResult{
		Score:     int(total + 0.5),
		Label:     label,
		Tier:      tier,
		Blockers:  blockers,
		Penalties: penalties,
		Tips:      tips,
		Categories: map[string]float64{
			"content":      clamp(contentScore, 0, 100),
			"media":        clamp(mediaScore, 0, 100),
			"trust":        clamp(trustScore, 0, 100),
			"price":        clamp(priceScore, 0, 100),
			"sla":          clamp(slaScore, 0, 100),
			"availability": clamp(availScore, 0, 100),
			"legal":        clamp(legalScore, 0, 100),
		},
	}
}
