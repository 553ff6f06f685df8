package models

import "testing"

func TestProposalStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name string
		from ProposalStatus
		to   ProposalStatus
		want bool
	}{
		{"pending to accepted", ProposalStatusPending, ProposalStatusAccepted, true},
		{"pending to rejected", ProposalStatusPending, ProposalStatusRejected, true},
		{"pending to withdrawn", ProposalStatusPending, ProposalStatusWithdrawn, true},
		{"accepted is terminal", ProposalStatusAccepted, ProposalStatusRejected, false},
		{"rejected is terminal", ProposalStatusRejected, ProposalStatusPending, false},
		{"withdrawn is terminal", ProposalStatusWithdrawn, ProposalStatusPending, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
				t.Errorf("CanTransitionTo(%s -> %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestProposal_IsActive(t *testing.T) {
	for _, s := range []ProposalStatus{ProposalStatusPending, ProposalStatusAccepted, ProposalStatusRejected} {
		p := &Proposal{Status: s}
		if !p.IsActive() {
			t.Errorf("expected %s proposal to count as active", s)
		}
	}

	// Only withdrawing frees the slot for a new proposal.
	p := &Proposal{Status: ProposalStatusWithdrawn}
	if p.IsActive() {
		t.Error("expected withdrawn proposal to be inactive")
	}
}
