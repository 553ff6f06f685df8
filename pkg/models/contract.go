package models

import (
	"time"

	"github.com/google/uuid"
)

// ContractStatus is the lifecycle state of a contract.
type ContractStatus string

// Contract status domain. New contracts are created active; the pending state
// remains in the domain for rows that predate immediate activation, but no
// engine operation transitions into it.
const (
	ContractStatusPending   ContractStatus = "pending"
	ContractStatusActive    ContractStatus = "active"
	ContractStatusCompleted ContractStatus = "completed"
	ContractStatusCancelled ContractStatus = "cancelled"
)

var contractTransitions = map[ContractStatus][]ContractStatus{
	ContractStatusPending:   {ContractStatusActive, ContractStatusCancelled},
	ContractStatusActive:    {ContractStatusCompleted, ContractStatusCancelled},
	ContractStatusCompleted: {},
	ContractStatusCancelled: {},
}

// CanTransitionTo reports whether the status graph permits moving to next.
func (s ContractStatus) CanTransitionTo(next ContractStatus) bool {
	for _, allowed := range contractTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are permitted.
func (s ContractStatus) IsTerminal() bool {
	return len(contractTransitions[s]) == 0
}

// Contract is the binding agreement created when a proposal is accepted.
// Amount is copied from the accepted proposal at creation time and never
// re-read from the proposal afterward. The lifecycle engine is the only
// mutator; both parties reference it, neither owns it.
type Contract struct {
	ID           uuid.UUID      `json:"id"`
	ProjectID    uuid.UUID      `json:"project_id"`
	ProposalID   uuid.UUID      `json:"proposal_id"`
	BusinessID   uuid.UUID      `json:"business_id"`
	ClientID     uuid.UUID      `json:"client_id"`
	Amount       int64          `json:"amount"`
	FeeAmount    int64          `json:"fee_amount"`
	Status       ContractStatus `json:"status"`
	CancelReason string         `json:"cancel_reason,omitempty"`
	StartedAt    time.Time      `json:"started_at"`
	EndedAt      *time.Time     `json:"ended_at,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// IsParty reports whether the given user is the client or business on the contract.
func (c *Contract) IsParty(userID uuid.UUID) bool {
	return c.ClientID == userID || c.BusinessID == userID
}
