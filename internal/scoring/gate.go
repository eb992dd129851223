package scoring

import (
	"fmt"

	"github.com/vimmo/listingrank/internal/models"
)

// Quality gate photo thresholds
const (
	gateSilverPhotos = 6
	gateGoldPhotos   = 10
)

// GateResult is the trust tier classification of a listing
type GateResult struct {
	TrustReady bool     `json:"trust_ready"`
	MinMedia   bool     `json:"min_media"`
	Tier       string   `json:"tier"`
	TierRank   int      `json:"tier_rank"`
	Label      string   `json:"label"`
	Icon       string   `json:"icon"`
	Reasons    []string `json:"reasons"`
}

// QualityGate classifies a listing into bronze, silver or gold based on
// verified documents, owner verification and usable photo count. The tier
// is monotonic: adding a verified document or photo never lowers it.
func QualityGate(listing *models.Listing) GateResult {
	photos := listing.UsablePhotoCount()
	hasEPC := listing.HasDoc(models.DocEPC)
	hasAsbestos := listing.HasDoc(models.DocAsbestos)
	hasSoil := listing.HasDoc(models.DocSoil)
	ownerOK := listing != nil && listing.OwnerVerified

	minMedia := photos >= gateSilverPhotos
	trustReady := hasEPC && ownerOK

	tier := "bronze"
	if trustReady && minMedia {
		tier = "silver"
	}
	if trustReady && photos >= gateGoldPhotos && (hasAsbestos || hasSoil) {
		tier = "gold"
	}

	tierRank, label, icon := 1, "Beperkte verificatie", "⚠"
	switch tier {
	case "gold":
		tierRank, label, icon = 3, "Gold Verified", "🏅"
	case "silver":
		tierRank, label, icon = 2, "Verified", "✓"
	}

	epcReason := "✗ Geen EPC"
	if hasEPC {
		epcReason = "✓ EPC attest"
	}
	ownerReason := "✗ Niet geverifieerd"
	if ownerOK {
		ownerReason = "✓ Owner verified"
	}
	var photoReason string
	switch {
	case photos >= gateGoldPhotos:
		photoReason = fmt.Sprintf("✓ %d foto's", photos)
	case photos >= gateSilverPhotos:
		photoReason = fmt.Sprintf("○ %d foto's (min. 10 voor Gold)", photos)
	default:
		photoReason = fmt.Sprintf("✗ %d foto's (min. 6)", photos)
	}
	extraReason := "○ Geen extra attesten"
	if hasAsbestos || hasSoil {
		extraReason = "✓ Extra attesten"
	}

	return GateResult{
		TrustReady: trustReady,
		MinMedia:   minMedia,
		Tier:       tier,
		TierRank:   tierRank,
		Label:      label,
		Icon:       icon,
		Reasons:    []string{epcReason, ownerReason, photoReason, extraReason},
	}
}
