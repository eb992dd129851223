package scoring

import (
	"testing"

	"github.com/vimmo/listingrank/internal/models"
)

func TestSLAScore_NoLeads(t *testing.T) {
	engine := NewSLAEngine()
	listing := completeListing()
	listing.Leads = []models.Lead{}

	result := engine.Score(listing, emptyContext())

	if result.Score != 1.0 {
		t.Errorf("Expected neutral score 1.0 for zero leads, got %v", result.Score)
	}
	if result.Label != "Geen leads" {
		t.Errorf("Expected label 'Geen leads', got %q", result.Label)
	}
	if result.AvgMinutes != nil {
		t.Errorf("Expected no average minutes for zero leads, got %v", *result.AvgMinutes)
	}
}

func TestSLAScore_SingleFastManualReply(t *testing.T) {
	// One lead replied manually after 30 minutes. Raw score is the maximum
	// 2.5 (speed 1.5 + rate 1.0); smoothing with n=1 pulls it to
	// (2.5*1 + 1.25*3) / 4 = 1.5625, rounded to 1.6.
	engine := NewSLAEngine()
	listing := completeListing()
	listing.Leads = []models.Lead{repliedLead("lead-1", 30, false)}

	result := engine.Score(listing, emptyContext())

	if result.Score != 1.6 {
		t.Errorf("Expected smoothed score 1.6, got %v", result.Score)
	}
	if result.AvgMinutes == nil || *result.AvgMinutes != 30 {
		t.Errorf("Expected average of 30 minutes, got %v", result.AvgMinutes)
	}
	if result.ReplyRate == nil || *result.ReplyRate != 100 {
		t.Errorf("Expected reply rate 100, got %v", result.ReplyRate)
	}
	if result.Label != "Reageert binnen 1 uur" {
		t.Errorf("Unexpected label %q", result.Label)
	}
	if result.Badge != "🚀 <1u" {
		t.Errorf("Unexpected badge %q", result.Badge)
	}
}

func TestSLAScore_SpeedBuckets(t *testing.T) {
	tests := []struct {
		name      string
		minutes   int
		wantBadge string
	}{
		{"within one hour", 45, "🚀 <1u"},
		{"within two hours", 90, "⚡ <2u"},
		{"within six hours", 300, "✓ <6u"},
		{"within twelve hours", 700, "○ <12u"},
		{"within a day", 1200, "⚠ <24u"},
		{"slower than a day", 2000, "⚠ Traag"},
	}

	engine := NewSLAEngine()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			listing := completeListing()
			listing.Leads = []models.Lead{repliedLead("lead-1", tt.minutes, false)}

			result := engine.Score(listing, emptyContext())
			if result.Badge != tt.wantBadge {
				t.Errorf("minutes=%d: expected badge %q, got %q", tt.minutes, tt.wantBadge, result.Badge)
			}
		})
	}
}

func TestSLAScore_AutoRepliesCarryReducedWeight(t *testing.T) {
	// A slow manual reply (600 min, weight 1.0) combined with a fast auto
	// reply (30 min, weight 0.3) averages to (600 + 9) / 1.3 ≈ 468 minutes,
	// landing in the <12h bucket instead of the <1h bucket the auto reply
	// alone would suggest.
	engine := NewSLAEngine()
	listing := completeListing()
	listing.Leads = []models.Lead{
		repliedLead("lead-1", 600, false),
		repliedLead("lead-2", 30, true),
	}

	result := engine.Score(listing, emptyContext())

	if result.Badge != "○ <12u" {
		t.Errorf("Expected weighted average in <12h bucket, got badge %q", result.Badge)
	}
	if result.AutoCount != 1 {
		t.Errorf("Expected 1 auto reply, got %d", result.AutoCount)
	}
	// raw = 0.6 + 1.0 = 1.6; smoothed = (1.6*2 + 1.25*3) / 5 = 1.39 → 1.4
	if result.Score != 1.4 {
		t.Errorf("Expected smoothed score 1.4, got %v", result.Score)
	}
}

func TestSLAScore_ReplyRateBuckets(t *testing.T) {
	// Two of four leads replied: rate 0.5 lands in the 0.3 bucket.
	// raw = 1.5 + 0.3 = 1.8; smoothed = (1.8*2 + 3.75) / 5 = 1.47 → 1.5
	engine := NewSLAEngine()
	listing := completeListing()
	listing.Leads = []models.Lead{
		repliedLead("lead-1", 30, false),
		repliedLead("lead-2", 30, false),
		newLead("lead-3"),
		newLead("lead-4"),
	}

	result := engine.Score(listing, emptyContext())

	if result.ReplyRate == nil || *result.ReplyRate != 50 {
		t.Errorf("Expected reply rate 50, got %v", result.ReplyRate)
	}
	if result.Score != 1.5 {
		t.Errorf("Expected smoothed score 1.5, got %v", result.Score)
	}
}

func TestSLAScore_UnrepliedLeadsOnly(t *testing.T) {
	// No replies at all: no smoothing (n=0), speed falls back to 0.5 and
	// the rate bucket bottoms out at 0.1.
	engine := NewSLAEngine()
	listing := completeListing()
	listing.Leads = []models.Lead{newLead("lead-1"), newLead("lead-2")}

	result := engine.Score(listing, emptyContext())

	if result.Score != 0.6 {
		t.Errorf("Expected raw score 0.6 without smoothing, got %v", result.Score)
	}
	if result.Label != "Nog geen reacties" {
		t.Errorf("Unexpected label %q", result.Label)
	}
	if result.AvgMinutes != nil {
		t.Errorf("Expected no average minutes, got %v", *result.AvgMinutes)
	}
}

func TestSLAScore_LeadsResolvedThroughContext(t *testing.T) {
	// When the listing carries no lead slice, leads come from the context.
	engine := NewSLAEngine()
	listing := completeListing()
	listing.Leads = nil

	ctx := emptyContext()
	ctx.listings[listing.ID] = listing
	ctx.leads[listing.ID] = []models.Lead{repliedLead("lead-1", 30, false)}

	result := engine.Score(listing, ctx)

	if result.LeadCount != 1 || result.RepliedCount != 1 {
		t.Errorf("Expected context leads to be used, got count=%d replied=%d",
			result.LeadCount, result.RepliedCount)
	}
}

func TestSLAScore_NilListing(t *testing.T) {
	engine := NewSLAEngine()

	result := engine.Score(nil, emptyContext())

	if result.Score != 1.0 || result.Label != "Geen leads" {
		t.Errorf("Expected neutral result for nil listing, got %+v", result)
	}
}
