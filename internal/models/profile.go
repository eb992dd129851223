package models

// DefaultSoftOverBudgetPct is the tolerance applied when a buyer profile
// does not set its own soft over-budget percentage.
const DefaultSoftOverBudgetPct = 7.0

// BuyerProfile is a buyer's search profile. It is edited by the buyer and
// persisted externally; the scoring engine only ever reads it.
type BuyerProfile struct {
	TransactionType   string   `json:"transaction_type,omitempty"`
	MinBudget         float64  `json:"min_budget,omitempty"`
	MaxBudget         float64  `json:"max_budget,omitempty"`
	SoftOverBudgetPct float64  `json:"soft_over_budget_pct,omitempty"`
	Regions           []string `json:"regions,omitempty"`
	MinBedrooms       int      `json:"min_bedrooms,omitempty"`
	MinSurface        float64  `json:"min_surface,omitempty"`
	MinEnergyLabel    EPCLabel `json:"min_energy_label,omitempty"`
}

// IsZero reports whether no profile dimension is active. Fit scoring is
// skipped entirely for zero profiles.
func (p *BuyerProfile) IsZero() bool {
	if p == nil {
		return true
	}
	return p.TransactionType == "" && p.MinBudget <= 0 && p.MaxBudget <= 0 &&
		len(p.Regions) == 0 && p.MinBedrooms <= 0 && p.MinSurface <= 0 &&
		p.MinEnergyLabel == ""
}

// SoftPct returns the soft over-budget tolerance, falling back to the default
func (p *BuyerProfile) SoftPct() float64 {
	if p == nil || p.SoftOverBudgetPct <= 0 {
		return DefaultSoftOverBudgetPct
	}
	return p.SoftOverBudgetPct
}
