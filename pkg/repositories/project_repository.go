// Package repositories provides pgx-backed data access for the marketplace
// entities. All methods issue statements on the request-scoped connection so
// they participate in any transaction the service layer has opened.
package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/promatch-inc/promatch-engine/pkg/apperrors"
	"github.com/promatch-inc/promatch-engine/pkg/database"
	"github.com/promatch-inc/promatch-engine/pkg/models"
)

// ProjectFilter narrows project listings. Zero values mean "no filter".
type ProjectFilter struct {
	Status   models.ProjectStatus
	Category string
	Location string
	Limit    int
	Offset   int
}

// ProjectRepository provides data access for projects.
type ProjectRepository interface {
	Create(ctx context.Context, project *models.Project) error
	GetByID(ctx context.Context, projectID uuid.UUID) (*models.Project, error)
	List(ctx context.Context, filter ProjectFilter) ([]*models.Project, error)

	// TransitionStatus flips the project status from one value to another in a
	// single compare-and-swap statement. The project row is the serialization
	// point for accept/cancel races: if the row is no longer in the expected
	// state, no row matches and ErrConcurrentModification is returned.
	TransitionStatus(ctx context.Context, projectID uuid.UUID, from, to models.ProjectStatus) error
}

type projectRepository struct{}

// NewProjectRepository creates a new ProjectRepository.
func NewProjectRepository() ProjectRepository {
	return &projectRepository{}
}

var _ ProjectRepository = (*projectRepository)(nil)

// proposalCountExpr derives the visible proposal count from the proposals
// table at query time. Withdrawn proposals are excluded from the badge.
const proposalCountExpr = `(SELECT COUNT(*) FROM proposals pr WHERE pr.project_id = p.id AND pr.status <> 'withdrawn')`

func (r *projectRepository) Create(ctx context.Context, project *models.Project) error {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return fmt.Errorf("no database scope in context")
	}

	now := time.Now()

	query := `
		INSERT INTO projects (
			client_id, title, description, category, location,
			budget_min, budget_max, deadline, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at`

	err := scope.Conn.QueryRow(ctx, query,
		project.ClientID,
		project.Title,
		project.Description,
		project.Category,
		project.Location,
		project.BudgetMin,
		project.BudgetMax,
		project.Deadline,
		project.Status,
		now,
		now,
	).Scan(&project.ID, &project.CreatedAt, &project.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}

	return nil
}

func (r *projectRepository) GetByID(ctx context.Context, projectID uuid.UUID) (*models.Project, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	query := `
		SELECT p.id, p.client_id, p.title, p.description, p.category, p.location,
		       p.budget_min, p.budget_max, p.deadline, p.status,
		       ` + proposalCountExpr + `,
		       p.created_at, p.updated_at
		FROM projects p
		WHERE p.id = $1`

	row := scope.Conn.QueryRow(ctx, query, projectID)
	project, err := scanProject(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil // Project not found
		}
		return nil, err
	}

	return project, nil
}

func (r *projectRepository) List(ctx context.Context, filter ProjectFilter) ([]*models.Project, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	query := `
		SELECT p.id, p.client_id, p.title, p.description, p.category, p.location,
		       p.budget_min, p.budget_max, p.deadline, p.status,
		       ` + proposalCountExpr + `,
		       p.created_at, p.updated_at
		FROM projects p
		WHERE 1=1`

	args := []any{}
	argn := 1

	if filter.Status != "" {
		query += fmt.Sprintf(" AND p.status = $%d", argn)
		args = append(args, filter.Status)
		argn++
	}
	if filter.Category != "" {
		query += fmt.Sprintf(" AND p.category = $%d", argn)
		args = append(args, filter.Category)
		argn++
	}
	if filter.Location != "" {
		query += fmt.Sprintf(" AND p.location = $%d", argn)
		args = append(args, filter.Location)
		argn++
	}

	query += " ORDER BY p.created_at DESC"

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	query += fmt.Sprintf(" LIMIT $%d", argn)
	args = append(args, limit)
	argn++

	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argn)
		args = append(args, filter.Offset)
	}

	rows, err := scope.Conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	defer rows.Close()

	var projects []*models.Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, project)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating projects: %w", err)
	}

	return projects, nil
}

func (r *projectRepository) TransitionStatus(ctx context.Context, projectID uuid.UUID, from, to models.ProjectStatus) error {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return fmt.Errorf("no database scope in context")
	}

	query := `
		UPDATE projects
		SET status = $3, updated_at = $4
		WHERE id = $1 AND status = $2`

	result, err := scope.Conn.Exec(ctx, query, projectID, from, to, time.Now())
	if err != nil {
		return fmt.Errorf("failed to transition project status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrConcurrentModification
	}

	return nil
}

func scanProject(row pgx.Row) (*models.Project, error) {
	var p models.Project

	err := row.Scan(
		&p.ID,
		&p.ClientID,
		&p.Title,
		&p.Description,
		&p.Category,
		&p.Location,
		&p.BudgetMin,
		&p.BudgetMax,
		&p.Deadline,
		&p.Status,
		&p.ProposalCount,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan project: %w", err)
	}

	return &p, nil
}
