package scoring

import (
	"math"

	"github.com/vimmo/listingrank/internal/models"
)

// SLA smoothing constants. The Bayesian prior keeps badges honest at low
// lead volume: a single fast reply must not produce a perfect badge.
const (
	slaSmoothingFactor = 3.0  // prior strength, fades as replies accumulate
	slaPrior           = 1.25 // neutral prior, 50% of the 2.5 maximum
	slaAutoWeight      = 0.3  // automated replies count 30% toward speed
	slaMaxScore        = 2.5
)

// SLAResult is the responsiveness score of a listing
type SLAResult struct {
	Score        float64 `json:"score"`
	AvgMinutes   *int    `json:"avg_minutes"`
	ReplyRate    *int    `json:"reply_rate"`
	Label        string  `json:"label"`
	Badge        string  `json:"badge"`
	LeadCount    int     `json:"lead_count"`
	RepliedCount int     `json:"replied_count"`
	AutoCount    int     `json:"auto_count"`
}

// SLAEngine computes a responsiveness score from reply latency and reply
// rate over a listing's leads.
type SLAEngine struct{}

// NewSLAEngine creates a new SLAEngine
func NewSLAEngine() *SLAEngine {
	return &SLAEngine{}
}

// Score computes the SLA result for a listing. Leads are resolved through
// the unified leads adapter; zero leads yield a neutral score of 1.0.
func (e *SLAEngine) Score(listing *models.Listing, ctx DataContext) SLAResult {
	leads := LeadsForListing(ctx, listing)

	if len(leads) == 0 {
		return SLAResult{
			Score: 1.0,
			Label: "Geen leads",
			Badge: "—",
		}
	}

	var replied []models.Lead
	for _, l := range leads {
		if l.FirstReplyAt != nil {
			replied = append(replied, l)
		}
	}
	rate := float64(len(replied)) / float64(len(leads))

	// Weighted reply latency. The weight uses the lead's final auto flag:
	// a manual reply after an automated one restores full weight. Leads
	// without a creation timestamp count toward the reply rate but are
	// excluded from the speed average.
	type timedReply struct {
		minutes float64
		weight  float64
		auto    bool
	}
	var timed []timedReply
	for _, l := range replied {
		if l.CreatedAt.IsZero() || l.FirstReplyAt == nil {
			continue
		}
		min := l.FirstReplyAt.Sub(l.CreatedAt).Minutes()
		if math.IsNaN(min) || math.IsInf(min, 0) || min < 0 {
			continue
		}
		auto := l.IsAutoReplied()
		w := 1.0
		if auto {
			w = slaAutoWeight
		}
		timed = append(timed, timedReply{minutes: min, weight: w, auto: auto})
	}

	var weightSum, avg float64
	autoCount := 0
	for _, t := range timed {
		weightSum += t.weight
		avg += t.minutes * t.weight
		if t.auto {
			autoCount++
		}
	}
	if weightSum <= 0 {
		weightSum = 1
	}
	avg /= weightSum

	score := 0.0

	// Speed component (max 1.5)
	if len(timed) > 0 {
		switch {
		case avg <= 60:
			score += 1.5
		case avg <= 120:
			score += 1.2
		case avg <= 360:
			score += 1.0
		case avg <= 720:
			score += 0.6
		case avg <= 1440:
			score += 0.3
		default:
			score += 0.1
		}
	} else {
		score += 0.5 // replies without timing data
	}

	// Reply rate component (max 1.0)
	switch {
	case rate >= 0.95:
		score += 1.0
	case rate >= 0.85:
		score += 0.8
	case rate >= 0.70:
		score += 0.6
	case rate >= 0.50:
		score += 0.3
	default:
		score += 0.1
	}

	score = clamp(score, 0, slaMaxScore)

	// Bayesian smoothing toward the neutral prior, applied only once at
	// least one reply exists. The badge below stays on the raw average so
	// the displayed latency never contradicts the timestamps.
	n := float64(len(replied))
	if n > 0 {
		score = (score*n + slaPrior*slaSmoothingFactor) / (n + slaSmoothingFactor)
		score = clamp(score, 0, slaMaxScore)
	}

	var label, badge string
	var avgMinutes *int
	if len(timed) > 0 {
		switch {
		case avg <= 60:
			label, badge = "Reageert binnen 1 uur", "🚀 <1u"
		case avg <= 120:
			label, badge = "Reageert binnen 2 uur", "⚡ <2u"
		case avg <= 360:
			label, badge = "Reageert binnen 6 uur", "✓ <6u"
		case avg <= 720:
			label, badge = "Reageert binnen 12 uur", "○ <12u"
		case avg <= 1440:
			label, badge = "Reageert binnen 24 uur", "⚠ <24u"
		default:
			label, badge = "Trage reactie (>24u)", "⚠ Traag"
		}
		rounded := int(math.Round(avg))
		avgMinutes = &rounded
	} else {
		label, badge = "Nog geen reacties", "—"
	}

	replyRate := int(math.Round(rate * 100))

	return SLAResult{
		Score:        round1(score),
		AvgMinutes:   avgMinutes,
		ReplyRate:    &replyRate,
		Label:        label,
		Badge:        badge,
		LeadCount:    len(leads),
		RepliedCount: len(replied),
		AutoCount:    autoCount,
	}
}
