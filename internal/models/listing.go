package models

import (
	"strings"
	"time"
)

// EPCLabel is the ordered energy performance label, A+ (best) through G (worst).
type EPCLabel string

const (
	EPCAPlus EPCLabel = "A+"
	EPCA     EPCLabel = "A"
	EPCB     EPCLabel = "B"
	EPCC     EPCLabel = "C"
	EPCD     EPCLabel = "D"
	EPCE     EPCLabel = "E"
	EPCF     EPCLabel = "F"
	EPCG     EPCLabel = "G"
)

// epcOrder lists labels best-first; the index is the rank used for comparisons.
var epcOrder = []EPCLabel{EPCAPlus, EPCA, EPCB, EPCC, EPCD, EPCE, EPCF, EPCG}

// Rank returns the position of the label in the A+..G ordering (0 = best).
// The second return value is false for empty or unknown labels.
func (l EPCLabel) Rank() (int, bool) {
	u := EPCLabel(strings.ToUpper(strings.TrimSpace(string(l))))
	for i, label := range epcOrder {
		if label == u {
			return i, true
		}
	}
	return 0, false
}

// IsValid checks if the label is a known EPC label
func (l EPCLabel) IsValid() bool {
	_, ok := l.Rank()
	return ok
}

// TransactionType distinguishes sale listings from rental listings
type TransactionType string

const (
	TransactionSale TransactionType = "sale"
	TransactionRent TransactionType = "rent"
)

// ListingStatus represents the lifecycle state of a listing
type ListingStatus string

const (
	ListingStatusDraft  ListingStatus = "draft"
	ListingStatusActive ListingStatus = "active"
	ListingStatusPaused ListingStatus = "paused"
)

// IsValid checks if the status is a valid ListingStatus value
func (s ListingStatus) IsValid() bool {
	switch s {
	case ListingStatusDraft, ListingStatusActive, ListingStatusPaused:
		return true
	default:
		return false
	}
}

// DocType identifies a trust document attached to a listing
type DocType string

const (
	// DocEPC is the energy performance certificate
	DocEPC DocType = "doc_epc"
	// DocAsbestos is the asbestos inspection certificate
	DocAsbestos DocType = "doc_asbest"
	// DocSoil is the soil condition certificate
	DocSoil DocType = "doc_bodem"
)

// DocVerification records the verification outcome for one document type
type DocVerification struct {
	OK         bool       `json:"ok"`
	VerifiedAt *time.Time `json:"verified_at,omitempty"`
}

// Photo is one media item on a listing. Present is false for placeholder
// slots; Loading marks a transient upload that must not count as usable.
type Photo struct {
	ID      string `json:"id"`
	Present bool   `json:"present"`
	Loading bool   `json:"loading,omitempty"`
}

// ViewingSlot is a bookable viewing moment offered by the owner
type ViewingSlot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Listing represents a property advertisement and everything the ranking
// engine needs to know about it. Scoring treats absent or malformed fields
// as zero/empty and never errors on them.
type Listing struct {
	ID              string                      `json:"id" db:"id"`
	Name            string                      `json:"name" db:"name"`
	Description     string                      `json:"description" db:"description"`
	Postcode        string                      `json:"postcode" db:"postcode"`
	Address         string                      `json:"address" db:"address"`
	Location        string                      `json:"location" db:"location"`
	Type            string                      `json:"type" db:"type"`
	Price           float64                     `json:"price" db:"price"`
	Bedrooms        int                         `json:"bedrooms" db:"bedrooms"`
	Bathrooms       int                         `json:"bathrooms" db:"bathrooms"`
	Surface         float64                     `json:"surface" db:"surface"`
	EnergyLabel     EPCLabel                    `json:"energy_label" db:"energy_label"`
	TransactionType TransactionType             `json:"transaction_type" db:"transaction_type"`
	Status          ListingStatus               `json:"status" db:"status"`
	Photos          []Photo                     `json:"photos"`
	Docs            map[DocType]DocVerification `json:"docs"`
	OwnerVerified   bool                        `json:"owner_verified" db:"owner_verified"`
	ViewingSlots    []ViewingSlot               `json:"viewing_slots,omitempty"`
	BoostUntil      *time.Time                  `json:"boost_until,omitempty" db:"boost_until"`
	Leads           []Lead                      `json:"leads,omitempty"`
	CreatedAt       time.Time                   `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time                   `json:"updated_at" db:"updated_at"`
}

// PhotoCount returns the number of photos that are actually present,
// including uploads still in flight.
func (l *Listing) PhotoCount() int {
	if l == nil {
		return 0
	}
	n := 0
	for _, p := range l.Photos {
		if p.Present {
			n++
		}
	}
	return n
}

// UsablePhotoCount returns the number of present photos excluding
// transient uploads. Quality gating only counts usable photos.
func (l *Listing) UsablePhotoCount() int {
	if l == nil {
		return 0
	}
	n := 0
	for _, p := range l.Photos {
		if p.Present && !p.Loading {
			n++
		}
	}
	return n
}

// HasDoc reports whether the given document type is present and verified
func (l *Listing) HasDoc(t DocType) bool {
	if l == nil || l.Docs == nil {
		return false
	}
	return l.Docs[t].OK
}

// BoostActive reports whether the listing carries an unexpired boost
func (l *Listing) BoostActive(now time.Time) bool {
	return l != nil && l.BoostUntil != nil && l.BoostUntil.After(now)
}
