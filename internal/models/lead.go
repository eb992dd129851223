package models

import (
	"fmt"
	"time"
)

// Lead represents an inbound inquiry against a listing
type Lead struct {
	ID           string     `json:"id" db:"id"`
	ListingID    string     `json:"listing_id" db:"listing_id"`
	Status       LeadStatus `json:"status" db:"status"`
	Name         string     `json:"name" db:"name"`
	Email        string     `json:"email" db:"email"`
	Phone        string     `json:"phone" db:"phone"`
	Message      string     `json:"message" db:"message"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	FirstReplyAt *time.Time `json:"first_reply_at,omitempty" db:"first_reply_at"`
	LastReplyAt  *time.Time `json:"last_reply_at,omitempty" db:"last_reply_at"`
	ReplyMeta    *ReplyMeta `json:"reply_meta,omitempty"`
}

// ReplyMeta describes the final reply state of a lead. Auto reflects the
// most recent meaningful reply: a manual reply after an automated one flips
// Auto to false for SLA weighting, and an automated reply can never set it
// back to true afterwards.
type ReplyMeta struct {
	Auto       bool      `json:"auto"`
	TemplateID string    `json:"template_id,omitempty"`
	Message    string    `json:"message,omitempty"`
	RepliedAt  time.Time `json:"replied_at"`
}

// IsAutoReplied reports whether the lead's final reply state is automated
func (l *Lead) IsAutoReplied() bool {
	return l != nil && l.ReplyMeta != nil && l.ReplyMeta.Auto
}

// CanTransitionTo checks if the lead can transition from its current status
// to the target status
func (l *Lead) CanTransitionTo(target LeadStatus) bool {
	if l.Status.IsTerminal() {
		return false
	}

	switch l.Status {
	case LeadStatusNew:
		return target == LeadStatusInProgress || target == LeadStatusReplied ||
			target == LeadStatusBlocked || target == LeadStatusReported
	case LeadStatusInProgress:
		return target == LeadStatusReplied || target == LeadStatusBlocked || target == LeadStatusReported
	case LeadStatusReplied:
		return target == LeadStatusViewing || target == LeadStatusBlocked || target == LeadStatusReported
	case LeadStatusViewing:
		return target == LeadStatusDecision || target == LeadStatusBlocked || target == LeadStatusReported
	case LeadStatusDecision:
		return target == LeadStatusAgreement || target == LeadStatusBlocked || target == LeadStatusReported
	default:
		return false
	}
}

// TransitionTo attempts to transition the lead to a new status.
// Returns an error if the transition is not allowed.
func (l *Lead) TransitionTo(target LeadStatus) error {
	if !l.CanTransitionTo(target) {
		return fmt.Errorf("invalid lead status transition from %s to %s", l.Status, target)
	}
	l.Status = target
	return nil
}

// ContactRevealed reports whether the lead has progressed far enough for
// its full contact details to be shown to the owner.
func (l *Lead) ContactRevealed() bool {
	switch l.Status {
	case LeadStatusViewing, LeadStatusDecision, LeadStatusAgreement:
		return true
	default:
		return false
	}
}
