package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/promatch-inc/promatch-engine/pkg/apperrors"
	"github.com/promatch-inc/promatch-engine/pkg/database"
	"github.com/promatch-inc/promatch-engine/pkg/models"
)

// uniqueViolation is the PostgreSQL error code for unique constraint violations.
const uniqueViolation = "23505"

// ProposalRepository provides data access for proposals.
type ProposalRepository interface {
	Create(ctx context.Context, proposal *models.Proposal) error
	GetByID(ctx context.Context, proposalID uuid.UUID) (*models.Proposal, error)
	GetByProject(ctx context.Context, projectID uuid.UUID) ([]*models.Proposal, error)

	// ExistsActive reports whether the business has a non-withdrawn proposal
	// on the project.
	ExistsActive(ctx context.Context, projectID, businessID uuid.UUID) (bool, error)

	// TransitionStatus flips the proposal status with a compare-and-swap.
	// Returns ErrConcurrentModification if the proposal is no longer in the
	// expected state.
	TransitionStatus(ctx context.Context, proposalID uuid.UUID, from, to models.ProposalStatus) error

	// RejectPendingExcept bulk-rejects every pending proposal on the project
	// other than the given one. Returns the number of proposals rejected.
	RejectPendingExcept(ctx context.Context, projectID, exceptID uuid.UUID) (int64, error)
}

type proposalRepository struct{}

// NewProposalRepository creates a new ProposalRepository.
func NewProposalRepository() ProposalRepository {
	return &proposalRepository{}
}

var _ ProposalRepository = (*proposalRepository)(nil)

func (r *proposalRepository) Create(ctx context.Context, proposal *models.Proposal) error {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return fmt.Errorf("no database scope in context")
	}

	now := time.Now()

	query := `
		INSERT INTO proposals (
			project_id, business_id, amount, description, work_plan,
			attachments, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`

	err := scope.Conn.QueryRow(ctx, query,
		proposal.ProjectID,
		proposal.BusinessID,
		proposal.Amount,
		proposal.Description,
		nullString(proposal.WorkPlan),
		attachmentsValue(proposal.Attachments),
		proposal.Status,
		now,
		now,
	).Scan(&proposal.ID, &proposal.CreatedAt, &proposal.UpdatedAt)
	if err != nil {
		// The partial unique index on (project_id, business_id) for
		// non-withdrawn rows makes the duplicate check race-safe.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return apperrors.ErrDuplicateProposal
		}
		return fmt.Errorf("failed to create proposal: %w", err)
	}

	return nil
}

func (r *proposalRepository) GetByID(ctx context.Context, proposalID uuid.UUID) (*models.Proposal, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	query := `
		SELECT id, project_id, business_id, amount, description, work_plan,
		       attachments, status, created_at, updated_at
		FROM proposals
		WHERE id = $1`

	row := scope.Conn.QueryRow(ctx, query, proposalID)
	proposal, err := scanProposal(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil // Proposal not found
		}
		return nil, err
	}

	return proposal, nil
}

func (r *proposalRepository) GetByProject(ctx context.Context, projectID uuid.UUID) ([]*models.Proposal, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	query := `
		SELECT id, project_id, business_id, amount, description, work_plan,
		       attachments, status, created_at, updated_at
		FROM proposals
		WHERE project_id = $1
		ORDER BY created_at`

	rows, err := scope.Conn.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query proposals: %w", err)
	}
	defer rows.Close()

	var proposals []*models.Proposal
	for rows.Next() {
		proposal, err := scanProposal(rows)
		if err != nil {
			return nil, err
		}
		proposals = append(proposals, proposal)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating proposals: %w", err)
	}

	return proposals, nil
}

func (r *proposalRepository) ExistsActive(ctx context.Context, projectID, businessID uuid.UUID) (bool, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return false, fmt.Errorf("no database scope in context")
	}

	query := `
		SELECT EXISTS (
			SELECT 1 FROM proposals
			WHERE project_id = $1 AND business_id = $2 AND status <> 'withdrawn'
		)`

	var exists bool
	if err := scope.Conn.QueryRow(ctx, query, projectID, businessID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check for active proposal: %w", err)
	}

	return exists, nil
}

func (r *proposalRepository) TransitionStatus(ctx context.Context, proposalID uuid.UUID, from, to models.ProposalStatus) error {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return fmt.Errorf("no database scope in context")
	}

	query := `
		UPDATE proposals
		SET status = $3, updated_at = $4
		WHERE id = $1 AND status = $2`

	result, err := scope.Conn.Exec(ctx, query, proposalID, from, to, time.Now())
	if err != nil {
		return fmt.Errorf("failed to transition proposal status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrConcurrentModification
	}

	return nil
}

func (r *proposalRepository) RejectPendingExcept(ctx context.Context, projectID, exceptID uuid.UUID) (int64, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return 0, fmt.Errorf("no database scope in context")
	}

	query := `
		UPDATE proposals
		SET status = 'rejected', updated_at = $3
		WHERE project_id = $1 AND id <> $2 AND status = 'pending'`

	result, err := scope.Conn.Exec(ctx, query, projectID, exceptID, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to reject sibling proposals: %w", err)
	}

	return result.RowsAffected(), nil
}

func scanProposal(row pgx.Row) (*models.Proposal, error) {
	var p models.Proposal
	var workPlan *string
	var attachments []byte

	err := row.Scan(
		&p.ID,
		&p.ProjectID,
		&p.BusinessID,
		&p.Amount,
		&p.Description,
		&workPlan,
		&attachments,
		&p.Status,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan proposal: %w", err)
	}

	if workPlan != nil {
		p.WorkPlan = *workPlan
	}

	if len(attachments) > 0 && string(attachments) != "null" {
		if err := json.Unmarshal(attachments, &p.Attachments); err != nil {
			return nil, fmt.Errorf("failed to unmarshal attachments: %w", err)
		}
	}

	return &p, nil
}

// nullString returns nil if the string is empty, otherwise returns the string pointer.
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// attachmentsValue converts attachments to JSONB format for database insertion.
// Returns nil for empty slices to store NULL in the database.
func attachmentsValue(attachments []models.Attachment) any {
	if len(attachments) == 0 {
		return nil
	}
	return attachments
}
