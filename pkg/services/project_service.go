// Package services contains the business logic layer. Services validate
// input, enforce authorization, and orchestrate repositories; handlers only
// translate HTTP.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/promatch-inc/promatch-engine/pkg/apperrors"
	"github.com/promatch-inc/promatch-engine/pkg/models"
	"github.com/promatch-inc/promatch-engine/pkg/repositories"
)

// CreateProjectInput carries the fields a client supplies when posting a project.
type CreateProjectInput struct {
	Title       string
	Description string
	Category    string
	Location    string
	BudgetMin   *int64
	BudgetMax   *int64
	Deadline    *time.Time
}

// ListOpenProjectsFilter narrows the public listing.
type ListOpenProjectsFilter struct {
	Category string
	Location string
	Limit    int
	Offset   int
}

// ProjectService provides project operations outside the accept cascade.
type ProjectService interface {
	// CreateProject posts a new open project for the client.
	CreateProject(ctx context.Context, clientID uuid.UUID, input CreateProjectInput) (*models.Project, error)

	// CancelProject cancels the owner's open project. Projects with an
	// accepted proposal are cancelled through their contract instead.
	CancelProject(ctx context.Context, projectID, callerID uuid.UUID) error

	// GetProject returns a project with its derived proposal count.
	GetProject(ctx context.Context, projectID uuid.UUID) (*models.Project, error)

	// ListOpenProjects returns the public listing of open projects.
	ListOpenProjects(ctx context.Context, filter ListOpenProjectsFilter) ([]*models.Project, error)

	// ListProjectProposals returns all proposals on the owner's project.
	ListProjectProposals(ctx context.Context, projectID, callerID uuid.UUID) ([]*models.Proposal, error)
}

type projectService struct {
	projectRepo  repositories.ProjectRepository
	proposalRepo repositories.ProposalRepository
	userRepo     repositories.UserRepository
	screener     ContentScreener
	cache        ListingCache
	logger       *zap.Logger
}

// NewProjectService creates a new ProjectService.
func NewProjectService(
	projectRepo repositories.ProjectRepository,
	proposalRepo repositories.ProposalRepository,
	userRepo repositories.UserRepository,
	screener ContentScreener,
	cache ListingCache,
	logger *zap.Logger,
) ProjectService {
	return &projectService{
		projectRepo:  projectRepo,
		proposalRepo: proposalRepo,
		userRepo:     userRepo,
		screener:     screener,
		cache:        cache,
		logger:       logger.Named("project-service"),
	}
}

var _ ProjectService = (*projectService)(nil)

func (s *projectService) CreateProject(ctx context.Context, clientID uuid.UUID, input CreateProjectInput) (*models.Project, error) {
	if input.Title == "" {
		return nil, fmt.Errorf("title is required")
	}
	if input.Description == "" {
		return nil, fmt.Errorf("description is required")
	}
	if (input.BudgetMin == nil) != (input.BudgetMax == nil) {
		return nil, fmt.Errorf("budget_min and budget_max must be set together")
	}
	if input.BudgetMin != nil {
		if *input.BudgetMin <= 0 || *input.BudgetMax <= 0 {
			return nil, fmt.Errorf("budget must be positive: %w", apperrors.ErrInvalidAmount)
		}
		if *input.BudgetMin > *input.BudgetMax {
			return nil, fmt.Errorf("budget_min exceeds budget_max: %w", apperrors.ErrInvalidAmount)
		}
	}
	if input.Deadline != nil && input.Deadline.Before(time.Now()) {
		return nil, fmt.Errorf("deadline is in the past")
	}

	if err := s.screener.CheckAll(map[string]string{
		"title":       input.Title,
		"description": input.Description,
	}); err != nil {
		return nil, err
	}

	caller, err := s.userRepo.GetByID(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if caller == nil {
		return nil, fmt.Errorf("user %s: %w", clientID, apperrors.ErrNotFound)
	}
	if caller.Role != models.RoleClient {
		return nil, fmt.Errorf("only clients post projects: %w", apperrors.ErrNotAuthorized)
	}

	project := &models.Project{
		ClientID:    clientID,
		Title:       input.Title,
		Description: input.Description,
		Category:    input.Category,
		Location:    input.Location,
		BudgetMin:   input.BudgetMin,
		BudgetMax:   input.BudgetMax,
		Deadline:    input.Deadline,
		Status:      models.ProjectStatusOpen,
	}

	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx)
	s.logger.Info("Project created",
		zap.String("project_id", project.ID.String()),
		zap.String("client_id", clientID.String()),
		zap.String("category", project.Category))

	return project, nil
}

func (s *projectService) CancelProject(ctx context.Context, projectID, callerID uuid.UUID) error {
	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return err
	}
	if project == nil {
		return fmt.Errorf("project %s: %w", projectID, apperrors.ErrNotFound)
	}
	if project.ClientID != callerID {
		return fmt.Errorf("only the owner cancels a project: %w", apperrors.ErrNotAuthorized)
	}
	if project.Status != models.ProjectStatusOpen {
		return fmt.Errorf("project is %s: %w", project.Status, apperrors.ErrInvalidState)
	}

	// The CAS catches a proposal being accepted between the read above and
	// this update.
	if err := s.projectRepo.TransitionStatus(ctx, projectID, models.ProjectStatusOpen, models.ProjectStatusCancelled); err != nil {
		return err
	}

	s.cache.Invalidate(ctx)
	s.logger.Info("Project cancelled",
		zap.String("project_id", projectID.String()))

	return nil
}

func (s *projectService) GetProject(ctx context.Context, projectID uuid.UUID) (*models.Project, error) {
	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, fmt.Errorf("project %s: %w", projectID, apperrors.ErrNotFound)
	}
	return project, nil
}

func (s *projectService) ListOpenProjects(ctx context.Context, filter ListOpenProjectsFilter) ([]*models.Project, error) {
	key := fmt.Sprintf("%s|%s|%d|%d", filter.Category, filter.Location, filter.Limit, filter.Offset)

	if projects, ok := s.cache.Get(ctx, key); ok {
		return projects, nil
	}

	projects, err := s.projectRepo.List(ctx, repositories.ProjectFilter{
		Status:   models.ProjectStatusOpen,
		Category: filter.Category,
		Location: filter.Location,
		Limit:    filter.Limit,
		Offset:   filter.Offset,
	})
	if err != nil {
		return nil, err
	}

	s.cache.Set(ctx, key, projects)
	return projects, nil
}

func (s *projectService) ListProjectProposals(ctx context.Context, projectID, callerID uuid.UUID) ([]*models.Proposal, error) {
	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, fmt.Errorf("project %s: %w", projectID, apperrors.ErrNotFound)
	}
	if project.ClientID != callerID {
		return nil, fmt.Errorf("only the owner views a project's proposals: %w", apperrors.ErrNotAuthorized)
	}

	return s.proposalRepo.GetByProject(ctx, projectID)
}
