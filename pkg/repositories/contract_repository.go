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

// ContractRepository provides data access for contracts. Contracts are only
// ever written by the lifecycle engine; the amount column is set at creation
// and no update statement in this repository touches it.
type ContractRepository interface {
	Create(ctx context.Context, contract *models.Contract) error
	GetByID(ctx context.Context, contractID uuid.UUID) (*models.Contract, error)

	// GetActiveByProject returns the project's non-terminal contract, or nil.
	GetActiveByProject(ctx context.Context, projectID uuid.UUID) (*models.Contract, error)

	// ListByUser returns contracts where the user is either party.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Contract, error)

	// Complete flips an active contract to completed and stamps the end date.
	// Returns ErrConcurrentModification if the contract is not active.
	Complete(ctx context.Context, contractID uuid.UUID, endedAt time.Time) error

	// Cancel flips a pending or active contract to cancelled, recording the
	// reason. Returns ErrConcurrentModification if the contract has already
	// reached a terminal state.
	Cancel(ctx context.Context, contractID uuid.UUID, reason string, endedAt time.Time) error
}

type contractRepository struct{}

// NewContractRepository creates a new ContractRepository.
func NewContractRepository() ContractRepository {
	return &contractRepository{}
}

var _ ContractRepository = (*contractRepository)(nil)

func (r *contractRepository) Create(ctx context.Context, contract *models.Contract) error {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return fmt.Errorf("no database scope in context")
	}

	now := time.Now()

	query := `
		INSERT INTO contracts (
			project_id, proposal_id, business_id, client_id, amount,
			fee_amount, status, started_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at`

	err := scope.Conn.QueryRow(ctx, query,
		contract.ProjectID,
		contract.ProposalID,
		contract.BusinessID,
		contract.ClientID,
		contract.Amount,
		contract.FeeAmount,
		contract.Status,
		contract.StartedAt,
		now,
		now,
	).Scan(&contract.ID, &contract.CreatedAt, &contract.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create contract: %w", err)
	}

	return nil
}

func (r *contractRepository) GetByID(ctx context.Context, contractID uuid.UUID) (*models.Contract, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	query := `
		SELECT id, project_id, proposal_id, business_id, client_id, amount,
		       fee_amount, status, cancel_reason, started_at, ended_at, created_at, updated_at
		FROM contracts
		WHERE id = $1`

	row := scope.Conn.QueryRow(ctx, query, contractID)
	contract, err := scanContract(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil // Contract not found
		}
		return nil, err
	}

	return contract, nil
}

func (r *contractRepository) GetActiveByProject(ctx context.Context, projectID uuid.UUID) (*models.Contract, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	query := `
		SELECT id, project_id, proposal_id, business_id, client_id, amount,
		       fee_amount, status, cancel_reason, started_at, ended_at, created_at, updated_at
		FROM contracts
		WHERE project_id = $1 AND status IN ('pending', 'active')`

	row := scope.Conn.QueryRow(ctx, query, projectID)
	contract, err := scanContract(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil // No active contract
		}
		return nil, err
	}

	return contract, nil
}

func (r *contractRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Contract, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	query := `
		SELECT id, project_id, proposal_id, business_id, client_id, amount,
		       fee_amount, status, cancel_reason, started_at, ended_at, created_at, updated_at
		FROM contracts
		WHERE client_id = $1 OR business_id = $1
		ORDER BY created_at DESC`

	rows, err := scope.Conn.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query contracts: %w", err)
	}
	defer rows.Close()

	var contracts []*models.Contract
	for rows.Next() {
		contract, err := scanContract(rows)
		if err != nil {
			return nil, err
		}
		contracts = append(contracts, contract)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating contracts: %w", err)
	}

	return contracts, nil
}

func (r *contractRepository) Complete(ctx context.Context, contractID uuid.UUID, endedAt time.Time) error {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return fmt.Errorf("no database scope in context")
	}

	query := `
		UPDATE contracts
		SET status = 'completed', ended_at = $2, updated_at = $3
		WHERE id = $1 AND status = 'active'`

	result, err := scope.Conn.Exec(ctx, query, contractID, endedAt, time.Now())
	if err != nil {
		return fmt.Errorf("failed to complete contract: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrConcurrentModification
	}

	return nil
}

func (r *contractRepository) Cancel(ctx context.Context, contractID uuid.UUID, reason string, endedAt time.Time) error {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return fmt.Errorf("no database scope in context")
	}

	query := `
		UPDATE contracts
		SET status = 'cancelled', cancel_reason = $2, ended_at = $3, updated_at = $4
		WHERE id = $1 AND status IN ('pending', 'active')`

	result, err := scope.Conn.Exec(ctx, query, contractID, nullString(reason), endedAt, time.Now())
	if err != nil {
		return fmt.Errorf("failed to cancel contract: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrConcurrentModification
	}

	return nil
}

func scanContract(row pgx.Row) (*models.Contract, error) {
	var c models.Contract
	var cancelReason *string

	err := row.Scan(
		&c.ID,
		&c.ProjectID,
		&c.ProposalID,
		&c.BusinessID,
		&c.ClientID,
		&c.Amount,
		&c.FeeAmount,
		&c.Status,
		&cancelReason,
		&c.StartedAt,
		&c.EndedAt,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan contract: %w", err)
	}

	if cancelReason != nil {
		c.CancelReason = *cancelReason
	}

	return &c, nil
}
