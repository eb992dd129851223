package scoring

import (
	"sort"

	"github.com/vimmo/listingrank/internal/models"
)

// SortMode selects the secondary ranking key
type SortMode string

const (
	// SortModeFit ranks by buyer-profile match when a profile is active
	SortModeFit SortMode = "fit"
	// SortModeQuality ranks by the buyer-independent Vimmo score
	SortModeQuality SortMode = "quality"
)

// RankedListing is one entry of a ranked result list with the scores that
// produced its position.
type RankedListing struct {
	Listing *models.Listing `json:"listing"`
	Gate    GateResult      `json:"gate"`
	Vimmo   float64         `json:"vimmo"`
	Fit     *float64        `json:"fit,omitempty"`
	SLA     SLAResult       `json:"sla"`
	SortKey float64         `json:"sort_key"`
}

// Ranker orders listings for display: quality-gate tier first, then the fit
// or Vimmo score amplified by the SLA score, then Vimmo as tie-break.
type Ranker struct {
	quality *QualityScorer
	fit     *FitScorer
	sla     *SLAEngine
}

// NewRanker creates a new Ranker
func NewRanker(quality *QualityScorer, fit *FitScorer, sla *SLAEngine) *Ranker {
	return &Ranker{quality: quality, fit: fit, sla: sla}
}

// Rank scores and sorts the given listings. The sort is stable: listings
// with equal tier and equal amplified score keep their input order. Fit mode
// silently falls back to quality mode when the profile is empty.
func (r *Ranker) Rank(listings []*models.Listing, profile *models.BuyerProfile, mode SortMode, ctx DataContext) []RankedListing {
	useFit := mode == SortModeFit && !profile.IsZero()

	ranked := make([]RankedListing, 0, len(listings))
	for _, l := range listings {
		entry := RankedListing{
			Listing: l,
			Gate:    QualityGate(l),
			Vimmo:   r.quality.Score(l, ctx).Score,
			SLA:     r.sla.Score(l, ctx),
		}

		secondary := entry.Vimmo
		if useFit {
			fit := r.fit.Score(l, profile, ctx).Score
			entry.Fit = &fit
			secondary = fit
		}

		// SLA acts as a bounded amplifier, at most +50%
		entry.SortKey = secondary * (1 + entry.SLA.Score/5)
		ranked = append(ranked, entry)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Gate.TierRank != ranked[j].Gate.TierRank {
			return ranked[i].Gate.TierRank > ranked[j].Gate.TierRank
		}
		if ranked[i].SortKey != ranked[j].SortKey {
			return ranked[i].SortKey > ranked[j].SortKey
		}
		return ranked[i].Vimmo > ranked[j].Vimmo
	})

	return ranked
}
