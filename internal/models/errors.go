package models

import "errors"

// Sentinel errors for repository lookups. Write operations that reject an
// update (lead not found, listing gone) signal a no-op with these or with a
// boolean result rather than failing fatally.
var (
	ErrListingNotFound = errors.New("listing not found")
	ErrLeadNotFound    = errors.New("lead not found")
	ErrAccountNotFound = errors.New("account not found")
)
