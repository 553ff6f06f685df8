package models

import (
	"time"

	"github.com/google/uuid"
)

// ProposalStatus is the lifecycle state of a proposal. All states other than
// pending are terminal.
type ProposalStatus string

const (
	ProposalStatusPending   ProposalStatus = "pending"
	ProposalStatusAccepted  ProposalStatus = "accepted"
	ProposalStatusRejected  ProposalStatus = "rejected"
	ProposalStatusWithdrawn ProposalStatus = "withdrawn"
)

var proposalTransitions = map[ProposalStatus][]ProposalStatus{
	ProposalStatusPending:   {ProposalStatusAccepted, ProposalStatusRejected, ProposalStatusWithdrawn},
	ProposalStatusAccepted:  {},
	ProposalStatusRejected:  {},
	ProposalStatusWithdrawn: {},
}

// CanTransitionTo reports whether the status graph permits moving to next.
func (s ProposalStatus) CanTransitionTo(next ProposalStatus) bool {
	for _, allowed := range proposalTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the proposal has been decided.
func (s ProposalStatus) IsTerminal() bool {
	return len(proposalTransitions[s]) == 0
}

// Attachment is a reference to an uploaded file on a proposal. Storage is
// external; the engine only records name and URL.
type Attachment struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Proposal is a bid submitted by a business against an open project.
// Amount is a positive integer in minor currency units.
type Proposal struct {
	ID          uuid.UUID      `json:"id"`
	ProjectID   uuid.UUID      `json:"project_id"`
	BusinessID  uuid.UUID      `json:"business_id"`
	Amount      int64          `json:"amount"`
	Description string         `json:"description"`
	WorkPlan    string         `json:"work_plan,omitempty"`
	Attachments []Attachment   `json:"attachments,omitempty"`
	Status      ProposalStatus `json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// IsActive reports whether the proposal still counts against the one-active-
// proposal-per-business invariant. Only withdrawn proposals free the slot.
func (p *Proposal) IsActive() bool {
	return p.Status != ProposalStatusWithdrawn
}
