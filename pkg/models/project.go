package models

import (
	"time"

	"github.com/google/uuid"
)

// ProjectStatus is the lifecycle state of a posted project.
type ProjectStatus string

// Project status domain. Completed and cancelled are terminal.
const (
	ProjectStatusOpen       ProjectStatus = "open"
	ProjectStatusInProgress ProjectStatus = "in_progress"
	ProjectStatusCompleted  ProjectStatus = "completed"
	ProjectStatusCancelled  ProjectStatus = "cancelled"
)

// projectTransitions is the valid state graph for projects. A project moves
// to in_progress only as a side effect of a proposal being accepted, and to
// completed only when its active contract completes.
var projectTransitions = map[ProjectStatus][]ProjectStatus{
	ProjectStatusOpen:       {ProjectStatusInProgress, ProjectStatusCancelled},
	ProjectStatusInProgress: {ProjectStatusCompleted, ProjectStatusCancelled},
	ProjectStatusCompleted:  {},
	ProjectStatusCancelled:  {},
}

// CanTransitionTo reports whether the status graph permits moving to next.
func (s ProjectStatus) CanTransitionTo(next ProjectStatus) bool {
	for _, allowed := range projectTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are permitted.
func (s ProjectStatus) IsTerminal() bool {
	return len(projectTransitions[s]) == 0
}

// IsValidProjectStatus reports whether the value is in the status domain.
func IsValidProjectStatus(s ProjectStatus) bool {
	_, ok := projectTransitions[s]
	return ok
}

// Project is a service request posted by a client. BudgetMin/BudgetMax are in
// minor currency units and either both set (min ≤ max) or both nil.
// ProposalCount is derived from the proposals table at query time and is
// never written by callers.
type Project struct {
	ID            uuid.UUID     `json:"id"`
	ClientID      uuid.UUID     `json:"client_id"`
	Title         string        `json:"title"`
	Description   string        `json:"description"`
	Category      string        `json:"category"`
	Location      string        `json:"location"`
	BudgetMin     *int64        `json:"budget_min,omitempty"`
	BudgetMax     *int64        `json:"budget_max,omitempty"`
	Deadline      *time.Time    `json:"deadline,omitempty"`
	Status        ProjectStatus `json:"status"`
	ProposalCount int           `json:"proposal_count"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}
