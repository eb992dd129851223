package models

import (
	"fmt"
	"time"
)

// PackageTier is the subscription package of an account
type PackageTier string

const (
	PackageBasic   PackageTier = "basic"
	PackageOptimal PackageTier = "optimaal"
	PackagePremium PackageTier = "premium"
)

// IsValid checks if the tier is a known package
func (t PackageTier) IsValid() bool {
	switch t {
	case PackageBasic, PackageOptimal, PackagePremium:
		return true
	default:
		return false
	}
}

// Slots returns the number of concurrently active listings the package allows
func (t PackageTier) Slots() int {
	switch t {
	case PackageOptimal:
		return 3
	case PackagePremium:
		return 10
	default:
		return 1
	}
}

// MonthlyPrice returns the billing amount in euro per month
func (t PackageTier) MonthlyPrice() float64 {
	switch t {
	case PackageOptimal:
		return 29
	case PackagePremium:
		return 59
	default:
		return 0
	}
}

// RankMultiplier returns the base visibility multiplier of the package
func (t PackageTier) RankMultiplier() float64 {
	switch t {
	case PackageOptimal:
		return 1.15
	case PackagePremium:
		return 1.25
	default:
		return 1.0
	}
}

// Account holds the owner's subscription state. The package tier is mutated
// only through explicit upgrade operations.
type Account struct {
	ID          string      `json:"id" db:"id"`
	Email       string      `json:"email" db:"email"`
	PackageTier PackageTier `json:"package_tier" db:"package_tier"`
	UpgradedAt  *time.Time  `json:"upgraded_at,omitempty" db:"upgraded_at"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
}

// ChangePackage switches the account to the given package tier.
// Returns an error for unknown tiers; the change is otherwise unconditional.
func (a *Account) ChangePackage(target PackageTier, now time.Time) error {
	if !target.IsValid() {
		return fmt.Errorf("unknown package tier: %s", target)
	}
	a.PackageTier = target
	a.UpgradedAt = &now
	return nil
}
