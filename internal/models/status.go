package models

// LeadStatus represents the current state of a lead in its lifecycle
type LeadStatus string

const (
	// LeadStatusNew indicates the lead arrived and has not been handled yet
	LeadStatusNew LeadStatus = "new"

	// LeadStatusInProgress indicates the owner opened the lead but has not replied
	LeadStatusInProgress LeadStatus = "in_progress"

	// LeadStatusReplied indicates at least one reply was sent
	LeadStatusReplied LeadStatus = "replied"

	// LeadStatusViewing indicates a viewing has been confirmed
	LeadStatusViewing LeadStatus = "viewing"

	// LeadStatusDecision indicates the lead is deciding after a viewing
	LeadStatusDecision LeadStatus = "decision"

	// LeadStatusAgreement indicates an agreement was reached
	LeadStatusAgreement LeadStatus = "agreement"

	// LeadStatusBlocked indicates the owner blocked the lead
	LeadStatusBlocked LeadStatus = "blocked"

	// LeadStatusReported indicates the lead was reported as abusive or fake
	LeadStatusReported LeadStatus = "reported"
)

// IsValid checks if the status is a valid LeadStatus value
func (s LeadStatus) IsValid() bool {
	switch s {
	case LeadStatusNew, LeadStatusInProgress, LeadStatusReplied,
		LeadStatusViewing, LeadStatusDecision, LeadStatusAgreement,
		LeadStatusBlocked, LeadStatusReported:
		return true
	default:
		return false
	}
}

// IsTerminal returns true if the status represents a terminal state
func (s LeadStatus) IsTerminal() bool {
	return s == LeadStatusAgreement || s == LeadStatusBlocked || s == LeadStatusReported
}
