package scoring

import (
	"time"

	"github.com/vimmo/listingrank/internal/models"
)

// RankingCap is the hard ceiling on the visibility multiplier. No package,
// health or boost combination may amplify past it.
const RankingCap = 2.0

const boostMultiplier = 1.5

// MultiplierResult is the bounded visibility multiplier of a listing
type MultiplierResult struct {
	Multiplier    float64 `json:"multiplier"`
	PackageFactor float64 `json:"package_factor"`
	HealthFactor  float64 `json:"health_factor"`
	BoostFactor   float64 `json:"boost_factor"`
	CapApplied    bool    `json:"cap_applied"`
}

// RankingMultiplier converts package tier, health and active boosts into a
// bounded visibility multiplier. Any health blocker forces the health factor
// to 0.5, overriding the graduated table.
func RankingMultiplier(tier models.PackageTier, health HealthResult, boostUntil *time.Time, now time.Time) MultiplierResult {
	packageFactor := tier.RankMultiplier()

	healthFactor := healthFactorFor(health)

	boostFactor := 1.0
	if boostUntil != nil && boostUntil.After(now) {
		boostFactor = boostMultiplier
	}

	multiplier := 1.0 * packageFactor * healthFactor * boostFactor
	capApplied := false
	if multiplier > RankingCap {
		multiplier = RankingCap
		capApplied = true
	}

	return MultiplierResult{
		Multiplier:    round2(multiplier),
		PackageFactor: packageFactor,
		HealthFactor:  healthFactor,
		BoostFactor:   boostFactor,
		CapApplied:    capApplied,
	}
}

func healthFactorFor(health HealthResult) float64 {
	if len(health.Blockers) > 0 {
		return 0.5
	}
	switch {
	case health.Score >= 85:
		return 1.0
	case health.Score >= 70:
		return 0.95
	case health.Score >= 55:
		return 0.90
	case health.Score >= 40:
		return 0.80
	default:
		return 0.70
	}
}
