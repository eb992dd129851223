package scoring

import (
	"fmt"
	"strings"

	"github.com/vimmo/listingrank/internal/models"
)

// ExplanationScores summarises the numbers behind an explanation
type ExplanationScores struct {
	Vimmo    float64  `json:"vimmo"`
	Fit      *float64 `json:"fit,omitempty"`
	TierRank int      `json:"tier_rank"`
}

// Explanation is the human-readable account of why a listing ranks where it
// does: tier-conditioned headline, ordered reasons, qualitative comparison
// notes and improvement tips.
type Explanation struct {
	Tier     string            `json:"tier"`
	Headline string            `json:"headline"`
	Reasons  []string          `json:"reasons"`
	Compared []string          `json:"compared"`
	Tips     []string          `json:"tips"`
	Scores   ExplanationScores `json:"scores"`
}

// Explainer assembles gate, quality, fit and SLA results into a narrative.
// It composes already-computed scores and adds no scoring logic of its own.
type Explainer struct {
	quality *QualityScorer
	fit     *FitScorer
	sla     *SLAEngine
}

// NewExplainer creates a new Explainer
func NewExplainer(quality *QualityScorer, fit *FitScorer, sla *SLAEngine) *Explainer {
	return &Explainer{quality: quality, fit: fit, sla: sla}
}

// Explain builds the ranking explanation for a listing. The fit section is
// included only when the buyer profile has at least one active dimension.
func (e *Explainer) Explain(listing *models.Listing, profile *models.BuyerProfile, ctx DataContext) Explanation {
	gate := QualityGate(listing)
	vimmo := e.quality.Score(listing, ctx)

	var fit *FitResult
	if !profile.IsZero() {
		r := e.fit.Score(listing, profile, ctx)
		fit = &r
	}

	var reasons []string

	switch gate.Tier {
	case "gold":
		reasons = append(reasons, "🏅 Gold Verified: EPC + eigenaar geverifieerd, uitgebreide documentatie")
	case "silver":
		reasons = append(reasons, "✓ Verified: EPC en eigenaar geverifieerd")
	default:
		reasons = append(reasons, "⚠ Beperkte verificatie: minder documenten of media")
	}

	if fit != nil {
		var positives []string
		for _, r := range fit.Reasons {
			if strings.HasPrefix(r, "✓") {
				positives = append(positives, r)
			}
		}
		line := fmt.Sprintf("💚 Fit Score %.1f/10", fit.Score)
		if len(positives) > 0 {
			line += ": " + strings.Join(positives, ", ")
		}
		reasons = append(reasons, line)
	}

	reasons = append(reasons, fmt.Sprintf("⭐ Vimmo Score %.1f/10: kwaliteit, media en vertrouwen", vimmo.Score))

	sla := e.sla.Score(listing, ctx)
	if sla.AvgMinutes != nil && sla.ReplyRate != nil {
		reasons = append(reasons, fmt.Sprintf("🕒 Respons: %s (%d%% beantwoord)", sla.Label, *sla.ReplyRate))
	}

	var compared []string
	if gate.Tier == "bronze" {
		compared = append(compared, "Lager gerankt dan woningen met volledige verificatie")
	}
	if fit != nil && fit.Score < 7 {
		compared = append(compared, "Minder goede match met jouw profiel dan topresultaten")
	}
	if vimmo.Score < 7 {
		compared = append(compared, "Lagere kwaliteitsscore dan best scorende listings")
	}

	var tips []string
	if gate.Tier != "gold" {
		if !gate.TrustReady {
			tips = append(tips, "Upload EPC attest en verifieer eigenaarschap voor Silver status")
		}
		if !gate.MinMedia {
			tips = append(tips, "Voeg meer foto's toe (min. 6 voor Silver, 10 voor Gold)")
		}
		if gate.Tier == "silver" {
			tips = append(tips, "Upload asbest- of bodemattest voor Gold status")
		}
	}

	headline := "Deze woning scoort lager door beperkte verificatie of match"
	switch gate.Tier {
	case "gold":
		headline = "Deze woning staat hoog omdat ze betrouwbaar en goed gematcht is"
	case "silver":
		headline = "Deze woning scoort goed maar mist Gold-status documenten"
	}

	scores := ExplanationScores{Vimmo: vimmo.Score, TierRank: gate.TierRank}
	if fit != nil {
		scores.Fit = &fit.Score
	}

	return Explanation{
		Tier:     gate.Tier,
		Headline: headline,
		Reasons:  reasons,
		Compared: compared,
		Tips:     tips,
		Scores:   scores,
	}
}
