package models

import (
	"testing"
	"time"
)

func TestPackageTierProperties(t *testing.T) {
	tests := []struct {
		tier       PackageTier
		slots      int
		price      float64
		multiplier float64
	}{
		{PackageBasic, 1, 0, 1.0},
		{PackageOptimal, 3, 29, 1.15},
		{PackagePremium, 10, 59, 1.25},
	}

	for _, tt := range tests {
		if got := tt.tier.Slots(); got != tt.slots {
			t.Errorf("%s.Slots() = %d, want %d", tt.tier, got, tt.slots)
		}
		if got := tt.tier.MonthlyPrice(); got != tt.price {
			t.Errorf("%s.MonthlyPrice() = %v, want %v", tt.tier, got, tt.price)
		}
		if got := tt.tier.RankMultiplier(); got != tt.multiplier {
			t.Errorf("%s.RankMultiplier() = %v, want %v", tt.tier, got, tt.multiplier)
		}
	}
}

func TestChangePackage(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	account := Account{ID: "owner-1", PackageTier: PackageBasic}

	if err := account.ChangePackage(PackagePremium, now); err != nil {
		t.Fatalf("Expected upgrade to succeed, got %v", err)
	}
	if account.PackageTier != PackagePremium {
		t.Errorf("Expected premium tier, got %s", account.PackageTier)
	}
	if account.UpgradedAt == nil || !account.UpgradedAt.Equal(now) {
		t.Errorf("Expected UpgradedAt %v, got %v", now, account.UpgradedAt)
	}

	if err := account.ChangePackage("platinum", now); err == nil {
		t.Error("Expected unknown tier to be rejected")
	}
	if account.PackageTier != PackagePremium {
		t.Errorf("Failed change must not touch the tier, got %s", account.PackageTier)
	}
}
