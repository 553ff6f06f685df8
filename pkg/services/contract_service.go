package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/promatch-inc/promatch-engine/pkg/apperrors"
	"github.com/promatch-inc/promatch-engine/pkg/models"
	"github.com/promatch-inc/promatch-engine/pkg/repositories"
)

// ContractService provides read access to contracts. Writes go through the
// lifecycle service.
type ContractService interface {
	// GetContract returns a contract to one of its parties.
	GetContract(ctx context.Context, contractID, callerID uuid.UUID) (*models.Contract, error)

	// ListUserContracts returns every contract where the user is a party.
	ListUserContracts(ctx context.Context, userID uuid.UUID) ([]*models.Contract, error)
}

type contractService struct {
	contractRepo repositories.ContractRepository
	logger       *zap.Logger
}

// NewContractService creates a new ContractService.
func NewContractService(contractRepo repositories.ContractRepository, logger *zap.Logger) ContractService {
	return &contractService{
		contractRepo: contractRepo,
		logger:       logger.Named("contract-service"),
	}
}

var _ ContractService = (*contractService)(nil)

func (s *contractService) GetContract(ctx context.Context, contractID, callerID uuid.UUID) (*models.Contract, error) {
	contract, err := s.contractRepo.GetByID(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if contract == nil {
		return nil, fmt.Errorf("contract %s: %w", contractID, apperrors.ErrNotFound)
	}
	if !contract.IsParty(callerID) {
		return nil, fmt.Errorf("contracts are visible to their parties only: %w", apperrors.ErrNotAuthorized)
	}
	return contract, nil
}

func (s *contractService) ListUserContracts(ctx context.Context, userID uuid.UUID) ([]*models.Contract, error) {
	return s.contractRepo.ListByUser(ctx, userID)
}
