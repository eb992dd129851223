package scoring

import (
	"strings"

	"github.com/vimmo/listingrank/internal/models"
)

// FitResult is the listing-to-buyer-profile match score
type FitResult struct {
	Score     float64         `json:"score"`
	Breakdown []BreakdownPart `json:"breakdown"`
	Reasons   []string        `json:"reasons"`
	Tips      []string        `json:"tips"`
}

// QualityFunc computes a Vimmo quality score. The fit scorer takes it as a
// dependency so the trust bonus can be substituted in tests.
type QualityFunc func(*models.Listing, DataContext) QualityResult

// FitScorer computes the 0-10 match between a listing and a buyer profile
type FitScorer struct {
	quality QualityFunc
}

// NewFitScorer creates a FitScorer. A nil quality function leaves the trust
// bonus at its neutral value.
func NewFitScorer(quality QualityFunc) *FitScorer {
	return &FitScorer{quality: quality}
}

// Score computes the fit of a listing against a buyer profile. Reasons and
// tips are emitted only for profile dimensions that are actually active.
func (f *FitScorer) Score(listing *models.Listing, profile *models.BuyerProfile, ctx DataContext) FitResult {
	var price, surface float64
	var beds int
	var epc models.EPCLabel
	if listing != nil {
		price = listing.Price
		surface = listing.Surface
		beds = listing.Bedrooms
		epc = listing.EnergyLabel
	}

	wanted := normLower(profileTransaction(profile))
	listingTx := ""
	if listing != nil {
		listingTx = normLower(string(listing.TransactionType))
	}

	// 1) Transaction match (max 1.0)
	txPts := 0.6
	if wanted != "" {
		if listingTx != "" && strings.Contains(listingTx, wanted) {
			txPts = 1.0
		} else {
			txPts = 0.2
		}
	}

	// 2) Budget fit (max 3.0). Under budget scores near-max and scales down
	// slightly toward the ceiling; over budget degrades through the soft
	// tolerance band.
	minBudget, maxBudget, softPct := 0.0, 0.0, models.DefaultSoftOverBudgetPct
	if profile != nil {
		minBudget = profile.MinBudget
		maxBudget = profile.MaxBudget
		softPct = profile.SoftPct()
	}
	budgetPts := 1.5
	if maxBudget > 0 && price > 0 {
		if price <= maxBudget {
			ratio := price / maxBudget
			budgetPts = 3.0 - ratio*0.8
		} else {
			overPct := (price - maxBudget) / maxBudget * 100
			switch {
			case overPct <= softPct:
				budgetPts = 1.4
			case overPct <= 15:
				budgetPts = 0.7
			default:
				budgetPts = 0.2
			}
		}
	} else if minBudget > 0 && price > 0 && price < minBudget {
		budgetPts = 0.8
	}
	budgetPts = clamp(budgetPts, 0, 3.0)

	// 3) Region fit (max 2.2), free-text substring match
	var regions []string
	if profile != nil {
		regions = profile.Regions
	}
	regionPts := 1.0
	if len(regions) > 0 {
		addr, city := "", ""
		if listing != nil {
			addr = normLower(listing.Postcode + " " + listing.Address + " " + listing.Location)
			city = normLower(listing.Location)
		}
		if containsRegion(addr, regions) || containsRegion(city, regions) {
			regionPts = 2.2
		} else {
			regionPts = 0.3
		}
	}
	regionPts = clamp(regionPts, 0, 2.2)

	// 4) Size fit: bedrooms + surface (max 2.0)
	minBeds, minSurf := 0, 0.0
	if profile != nil {
		minBeds = profile.MinBedrooms
		minSurf = profile.MinSurface
	}

	bedScore := 0.5
	if minBeds > 0 {
		switch {
		case beds >= minBeds:
			bedScore = 1.0
		case beds == minBeds-1:
			bedScore = 0.6
		default:
			bedScore = 0.2
		}
	} else if beds > 0 {
		bedScore = 0.9
	} else {
		bedScore = 0.6
	}

	surfScore := 0.5
	if minSurf > 0 {
		switch {
		case surface >= minSurf:
			surfScore = 1.0
		case surface >= minSurf*0.9:
			surfScore = 0.7
		default:
			surfScore = 0.25
		}
	} else if surface > 0 {
		surfScore = 0.9
	} else {
		surfScore = 0.6
	}

	sizePts := clamp(bedScore+surfScore, 0, 2.0)

	// 5) Energy preference (max 1.2), ordered rank comparison
	energyPts := 0.7
	var prefLabel models.EPCLabel
	if profile != nil {
		prefLabel = profile.MinEnergyLabel
	}
	prefRank, prefKnown := prefLabel.Rank()
	listingRank, listingKnown := epc.Rank()

	if prefKnown {
		switch {
		case !listingKnown:
			energyPts = 0.35
		case listingRank <= prefRank:
			energyPts = 1.2
		case listingRank == prefRank+1:
			energyPts = 0.7
		default:
			energyPts = 0.25
		}
	} else if listingKnown {
		energyPts = 0.9
	}

	// 6) Trust + quality bonus (max 0.6) from the Vimmo score
	trustBonus := 0.3
	if f.quality != nil {
		s := f.quality(listing, ctx)
		trustBonus = clamp(s.Score/10*0.6, 0, 0.6)
	}

	parts := []BreakdownPart{
		{Label: "Transactie", Points: txPts, Max: 1.0},
		{Label: "Budget", Points: budgetPts, Max: 3.0},
		{Label: "Regio", Points: regionPts, Max: 2.2},
		{Label: "Woning match", Points: sizePts, Max: 2.0},
		{Label: "Energie", Points: energyPts, Max: 1.2},
		{Label: "Zekerheid", Points: trustBonus, Max: 0.6},
	}

	var raw, max float64
	for _, p := range parts {
		raw += p.Points
		max += p.Max
	}
	score := 0.0
	if max > 0 {
		score = raw / max * 10
	}
	score = round1(clamp(score, 0, 10))

	var reasons []string
	if maxBudget > 0 && price > 0 {
		if price <= maxBudget {
			reasons = append(reasons, "✓ Binnen budget")
		} else {
			reasons = append(reasons, "⚠ Boven budget")
		}
	}
	if len(regions) > 0 {
		if regionPts > 1.2 {
			reasons = append(reasons, "✓ In jouw regio")
		} else {
			reasons = append(reasons, "⚠ Buiten jouw regio")
		}
	}
	if minBeds > 0 {
		if beds >= minBeds {
			reasons = append(reasons, "✓ Voldoende slaapkamers")
		} else {
			reasons = append(reasons, "⚠ Te weinig slaapkamers")
		}
	}
	if minSurf > 0 {
		if surface >= minSurf {
			reasons = append(reasons, "✓ Voldoende m²")
		} else {
			reasons = append(reasons, "⚠ Minder m² dan gewenst")
		}
	}
	if prefLabel != "" {
		if energyPts >= 0.7 {
			reasons = append(reasons, "✓ EPC match ok")
		} else {
			reasons = append(reasons, "⚠ EPC onder voorkeur")
		}
	}

	var tips []string
	if regionPts < 1.0 && len(regions) > 0 {
		tips = append(tips, "Pas regio's aan of voeg extra omliggende gemeenten toe.")
	}
	if budgetPts < 1.0 && maxBudget > 0 {
		tips = append(tips, "Verhoog budget of zet 'soft over budget' op 10%.")
	}
	if energyPts < 0.5 && prefKnown {
		tips = append(tips, "Verlaag EPC voorkeur of focus op renovatiepanden.")
	}
	if sizePts < 1.0 && (minBeds > 0 || minSurf > 0) {
		tips = append(tips, "Verlaag minimale eisen of splits je zoekopdracht.")
	}

	for i := range parts {
		parts[i].Points = round1(parts[i].Points)
	}

	if len(reasons) > 5 {
		reasons = reasons[:5]
	}
	if len(tips) > 4 {
		tips = tips[:4]
	}

	return FitResult{
		Score:     score,
		Breakdown: parts,
		Reasons:   reasons,
		Tips:      tips,
	}
}

func profileTransaction(p *models.BuyerProfile) string {
	if p == nil {
		return ""
	}
	return p.TransactionType
}

func normLower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func containsRegion(text string, regions []string) bool {
	for _, r := range regions {
		rr := normLower(r)
		if rr == "" {
			continue
		}
		if strings.Contains(text, rr) {
			return true
		}
	}
	return false
}
