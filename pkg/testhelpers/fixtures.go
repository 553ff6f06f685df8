package testhelpers

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"

	"github.com/promatch-inc/promatch-engine/pkg/models"
	"github.com/promatch-inc/promatch-engine/pkg/repositories"
)

// CreateTestUser inserts a user with a unique email and returns it.
func CreateTestUser(t *testing.T, ctx context.Context, role string) *models.User {
	t.Helper()

	user := &models.User{
		Email:       fmt.Sprintf("%s-%s@example.com", role, uuid.NewString()[:8]),
		DisplayName: "Test " + role,
		Role:        role,
	}
	if err := repositories.NewUserRepository().Create(ctx, user); err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return user
}

// CreateTestProject inserts an open project owned by the client and returns it.
func CreateTestProject(t *testing.T, ctx context.Context, clientID uuid.UUID) *models.Project {
	t.Helper()

	project := &models.Project{
		ClientID:    clientID,
		Title:       "Bathroom renovation",
		Description: "Full renovation of a small bathroom",
		Category:    "renovation",
		Location:    "Springfield",
		Status:      models.ProjectStatusOpen,
	}
	if err := repositories.NewProjectRepository().Create(ctx, project); err != nil {
		t.Fatalf("Failed to create test project: %v", err)
	}
	return project
}

// CreateTestProposal inserts a pending proposal from the business and returns it.
func CreateTestProposal(t *testing.T, ctx context.Context, projectID, businessID uuid.UUID, amount int64) *models.Proposal {
	t.Helper()

	proposal := &models.Proposal{
		ProjectID:   projectID,
		BusinessID:  businessID,
		Amount:      amount,
		Description: "We can do this work",
		Status:      models.ProposalStatusPending,
	}
	if err := repositories.NewProposalRepository().Create(ctx, proposal); err != nil {
		t.Fatalf("Failed to create test proposal: %v", err)
	}
	return proposal
}
