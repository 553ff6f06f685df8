package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/promatch-inc/promatch-engine/pkg/apperrors"
	"github.com/promatch-inc/promatch-engine/pkg/database"
	"github.com/promatch-inc/promatch-engine/pkg/metrics"
	"github.com/promatch-inc/promatch-engine/pkg/models"
	"github.com/promatch-inc/promatch-engine/pkg/repositories"
)

// ContentScreener screens free-text fields before they are persisted.
type ContentScreener interface {
	CheckAll(fields map[string]string) error
}

// ListingCache invalidation hook for writes that change which projects are open.
type ListingCache interface {
	Get(ctx context.Context, key string) ([]*models.Project, bool)
	Set(ctx context.Context, key string, projects []*models.Project)
	Invalidate(ctx context.Context)
}

// SubmitProposalInput carries the fields a business supplies when bidding.
type SubmitProposalInput struct {
	Amount      int64
	Description string
	WorkPlan    string
	Attachments []models.Attachment
}

// LifecycleService drives the proposal and contract state machines. All
// multi-row updates run in a single transaction on the request-scoped
// connection, serialized on the project row via compare-and-swap updates.
type LifecycleService interface {
	// SubmitProposal creates a pending proposal by the business on an open project.
	SubmitProposal(ctx context.Context, projectID, businessID uuid.UUID, input SubmitProposalInput) (*models.Proposal, error)

	// AcceptProposal accepts one pending proposal on the caller's open project.
	// Atomically: the project moves to in_progress, every other pending
	// proposal is rejected, and an active contract is created with the
	// proposal's amount. Returns the new contract.
	AcceptProposal(ctx context.Context, proposalID, callerID uuid.UUID) (*models.Contract, error)

	// RejectProposal rejects a single pending proposal on the caller's project.
	RejectProposal(ctx context.Context, proposalID, callerID uuid.UUID) error

	// WithdrawProposal lets the submitting business retract a pending proposal,
	// freeing its slot to submit again.
	WithdrawProposal(ctx context.Context, proposalID, callerID uuid.UUID) error

	// CompleteContract lets either party mark an active contract's work
	// done. The project moves to completed alongside it.
	CompleteContract(ctx context.Context, contractID, callerID uuid.UUID) error

	// CancelContract lets either party cancel a contract before completion.
	// The project is cancelled with it and does not reopen.
	CancelContract(ctx context.Context, contractID, callerID uuid.UUID, reason string) error
}

type lifecycleService struct {
	projectRepo  repositories.ProjectRepository
	proposalRepo repositories.ProposalRepository
	contractRepo repositories.ContractRepository
	userRepo     repositories.UserRepository
	screener     ContentScreener
	cache        ListingCache
	feePercent   int
	logger       *zap.Logger
}

// NewLifecycleService creates a new LifecycleService. feePercent is the flat
// platform fee recorded on each contract at creation.
func NewLifecycleService(
	projectRepo repositories.ProjectRepository,
	proposalRepo repositories.ProposalRepository,
	contractRepo repositories.ContractRepository,
	userRepo repositories.UserRepository,
	screener ContentScreener,
	cache ListingCache,
	feePercent int,
	logger *zap.Logger,
) LifecycleService {
	return &lifecycleService{
		projectRepo:  projectRepo,
		proposalRepo: proposalRepo,
		contractRepo: contractRepo,
		userRepo:     userRepo,
		screener:     screener,
		cache:        cache,
		feePercent:   feePercent,
		logger:       logger.Named("lifecycle-service"),
	}
}

var _ LifecycleService = (*lifecycleService)(nil)

func (s *lifecycleService) SubmitProposal(ctx context.Context, projectID, businessID uuid.UUID, input SubmitProposalInput) (*models.Proposal, error) {
	if input.Amount <= 0 {
		metrics.IncrementProposalSubmitted("rejected_validation")
		return nil, fmt.Errorf("amount must be positive: %w", apperrors.ErrInvalidAmount)
	}
	if input.Description == "" {
		metrics.IncrementProposalSubmitted("rejected_validation")
		return nil, fmt.Errorf("description is required")
	}

	if err := s.screener.CheckAll(map[string]string{
		"description": input.Description,
		"work_plan":   input.WorkPlan,
	}); err != nil {
		metrics.IncrementProposalSubmitted("rejected_validation")
		return nil, err
	}

	caller, err := s.userRepo.GetByID(ctx, businessID)
	if err != nil {
		return nil, err
	}
	if caller == nil {
		return nil, fmt.Errorf("user %s: %w", businessID, apperrors.ErrNotFound)
	}
	if caller.Role != models.RoleBusiness {
		return nil, fmt.Errorf("only businesses submit proposals: %w", apperrors.ErrNotAuthorized)
	}

	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, fmt.Errorf("project %s: %w", projectID, apperrors.ErrNotFound)
	}
	if project.ClientID == businessID {
		return nil, fmt.Errorf("cannot bid on own project: %w", apperrors.ErrNotAuthorized)
	}
	if project.Status != models.ProjectStatusOpen {
		return nil, fmt.Errorf("project is %s: %w", project.Status, apperrors.ErrProjectNotOpen)
	}

	exists, err := s.proposalRepo.ExistsActive(ctx, projectID, businessID)
	if err != nil {
		return nil, err
	}
	if exists {
		metrics.IncrementProposalSubmitted("rejected_duplicate")
		return nil, fmt.Errorf("business %s already has a proposal on project %s: %w",
			businessID, projectID, apperrors.ErrDuplicateProposal)
	}

	proposal := &models.Proposal{
		ProjectID:   projectID,
		BusinessID:  businessID,
		Amount:      input.Amount,
		Description: input.Description,
		WorkPlan:    input.WorkPlan,
		Attachments: input.Attachments,
		Status:      models.ProposalStatusPending,
	}

	// The partial unique index catches the duplicate race the ExistsActive
	// check cannot.
	if err := s.proposalRepo.Create(ctx, proposal); err != nil {
		if errors.Is(err, apperrors.ErrDuplicateProposal) {
			metrics.IncrementProposalSubmitted("rejected_duplicate")
		}
		return nil, err
	}

	metrics.IncrementProposalSubmitted("created")
	s.logger.Info("Proposal submitted",
		zap.String("proposal_id", proposal.ID.String()),
		zap.String("project_id", projectID.String()),
		zap.String("business_id", businessID.String()),
		zap.Int64("amount", proposal.Amount))

	return proposal, nil
}

func (s *lifecycleService) AcceptProposal(ctx context.Context, proposalID, callerID uuid.UUID) (*models.Contract, error) {
	proposal, err := s.proposalRepo.GetByID(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	if proposal == nil {
		return nil, fmt.Errorf("proposal %s: %w", proposalID, apperrors.ErrNotFound)
	}

	project, err := s.projectRepo.GetByID(ctx, proposal.ProjectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, fmt.Errorf("project %s: %w", proposal.ProjectID, apperrors.ErrNotFound)
	}
	if project.ClientID != callerID {
		return nil, fmt.Errorf("only the project owner decides proposals: %w", apperrors.ErrNotAuthorized)
	}
	if proposal.Status != models.ProposalStatusPending {
		return nil, fmt.Errorf("proposal is %s: %w", proposal.Status, apperrors.ErrInvalidState)
	}
	if project.Status != models.ProjectStatusOpen {
		return nil, fmt.Errorf("project is %s: %w", project.Status, apperrors.ErrProjectNotOpen)
	}

	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	tx, err := scope.Conn.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	// The project CAS goes first: it takes the row lock, so of two concurrent
	// accepts exactly one sees open and proceeds. The loser's update matches
	// zero rows.
	if err = s.projectRepo.TransitionStatus(ctx, project.ID, models.ProjectStatusOpen, models.ProjectStatusInProgress); err != nil {
		if errors.Is(err, apperrors.ErrConcurrentModification) {
			metrics.AcceptConflicts.Inc()
			s.logger.Info("Accept lost concurrency race",
				zap.String("project_id", project.ID.String()),
				zap.String("proposal_id", proposalID.String()))
		}
		return nil, err
	}

	if err = s.proposalRepo.TransitionStatus(ctx, proposalID, models.ProposalStatusPending, models.ProposalStatusAccepted); err != nil {
		return nil, err
	}

	var rejected int64
	rejected, err = s.proposalRepo.RejectPendingExcept(ctx, project.ID, proposalID)
	if err != nil {
		return nil, err
	}

	// Amount is copied from the proposal here and never re-read. Later edits
	// to the proposal row (there are none today) would not touch the contract.
	contract := &models.Contract{
		ProjectID:  project.ID,
		ProposalID: proposalID,
		BusinessID: proposal.BusinessID,
		ClientID:   project.ClientID,
		Amount:     proposal.Amount,
		FeeAmount:  proposal.Amount * int64(s.feePercent) / 100,
		Status:     models.ContractStatusActive,
		StartedAt:  time.Now(),
	}
	if err = s.contractRepo.Create(ctx, contract); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.cache.Invalidate(ctx)
	metrics.IncrementProposalDecided("accepted")
	for i := int64(0); i < rejected; i++ {
		metrics.IncrementProposalDecided("cascade_rejected")
	}

	s.logger.Info("Proposal accepted",
		zap.String("proposal_id", proposalID.String()),
		zap.String("project_id", project.ID.String()),
		zap.String("contract_id", contract.ID.String()),
		zap.Int64("amount", contract.Amount),
		zap.Int64("siblings_rejected", rejected))

	return contract, nil
}

func (s *lifecycleService) RejectProposal(ctx context.Context, proposalID, callerID uuid.UUID) error {
	proposal, err := s.proposalRepo.GetByID(ctx, proposalID)
	if err != nil {
		return err
	}
	if proposal == nil {
		return fmt.Errorf("proposal %s: %w", proposalID, apperrors.ErrNotFound)
	}

	project, err := s.projectRepo.GetByID(ctx, proposal.ProjectID)
	if err != nil {
		return err
	}
	if project == nil {
		return fmt.Errorf("project %s: %w", proposal.ProjectID, apperrors.ErrNotFound)
	}
	if project.ClientID != callerID {
		return fmt.Errorf("only the project owner decides proposals: %w", apperrors.ErrNotAuthorized)
	}
	if proposal.Status != models.ProposalStatusPending {
		return fmt.Errorf("proposal is %s: %w", proposal.Status, apperrors.ErrInvalidState)
	}

	if err := s.proposalRepo.TransitionStatus(ctx, proposalID, models.ProposalStatusPending, models.ProposalStatusRejected); err != nil {
		return err
	}

	metrics.IncrementProposalDecided("rejected")
	s.logger.Info("Proposal rejected",
		zap.String("proposal_id", proposalID.String()),
		zap.String("project_id", project.ID.String()))

	return nil
}

func (s *lifecycleService) WithdrawProposal(ctx context.Context, proposalID, callerID uuid.UUID) error {
	proposal, err := s.proposalRepo.GetByID(ctx, proposalID)
	if err != nil {
		return err
	}
	if proposal == nil {
		return fmt.Errorf("proposal %s: %w", proposalID, apperrors.ErrNotFound)
	}
	if proposal.BusinessID != callerID {
		return fmt.Errorf("only the submitting business withdraws a proposal: %w", apperrors.ErrNotAuthorized)
	}
	if proposal.Status != models.ProposalStatusPending {
		return fmt.Errorf("proposal is %s: %w", proposal.Status, apperrors.ErrInvalidState)
	}

	if err := s.proposalRepo.TransitionStatus(ctx, proposalID, models.ProposalStatusPending, models.ProposalStatusWithdrawn); err != nil {
		return err
	}

	metrics.IncrementProposalDecided("withdrawn")
	s.logger.Info("Proposal withdrawn",
		zap.String("proposal_id", proposalID.String()),
		zap.String("project_id", proposal.ProjectID.String()))

	return nil
}

func (s *lifecycleService) CompleteContract(ctx context.Context, contractID, callerID uuid.UUID) error {
	contract, err := s.contractRepo.GetByID(ctx, contractID)
	if err != nil {
		return err
	}
	if contract == nil {
		return fmt.Errorf("contract %s: %w", contractID, apperrors.ErrNotFound)
	}
	if !contract.IsParty(callerID) {
		return fmt.Errorf("only a contract party marks work complete: %w", apperrors.ErrNotAuthorized)
	}
	if contract.Status != models.ContractStatusActive {
		return fmt.Errorf("contract is %s: %w", contract.Status, apperrors.ErrInvalidState)
	}

	scope, ok := database.GetScope(ctx)
	if !ok {
		return fmt.Errorf("no database scope in context")
	}

	tx, err := scope.Conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if err = s.contractRepo.Complete(ctx, contractID, time.Now()); err != nil {
		return err
	}

	if err = s.projectRepo.TransitionStatus(ctx, contract.ProjectID, models.ProjectStatusInProgress, models.ProjectStatusCompleted); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	metrics.IncrementContractClosed("completed")
	s.logger.Info("Contract completed",
		zap.String("contract_id", contractID.String()),
		zap.String("project_id", contract.ProjectID.String()))

	return nil
}

func (s *lifecycleService) CancelContract(ctx context.Context, contractID, callerID uuid.UUID, reason string) error {
	contract, err := s.contractRepo.GetByID(ctx, contractID)
	if err != nil {
		return err
	}
	if contract == nil {
		return fmt.Errorf("contract %s: %w", contractID, apperrors.ErrNotFound)
	}
	if !contract.IsParty(callerID) {
		return fmt.Errorf("only a contract party cancels it: %w", apperrors.ErrNotAuthorized)
	}
	if contract.Status.IsTerminal() {
		return fmt.Errorf("contract is %s: %w", contract.Status, apperrors.ErrInvalidState)
	}

	if err := s.screener.CheckAll(map[string]string{"cancel_reason": reason}); err != nil {
		return err
	}

	scope, ok := database.GetScope(ctx)
	if !ok {
		return fmt.Errorf("no database scope in context")
	}

	tx, err := scope.Conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if err = s.contractRepo.Cancel(ctx, contractID, reason, time.Now()); err != nil {
		return err
	}

	// The project does not reopen for new proposals. Cancelling a contract
	// cancels the project with it.
	if err = s.projectRepo.TransitionStatus(ctx, contract.ProjectID, models.ProjectStatusInProgress, models.ProjectStatusCancelled); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	metrics.IncrementContractClosed("cancelled")
	s.logger.Info("Contract cancelled",
		zap.String("contract_id", contractID.String()),
		zap.String("project_id", contract.ProjectID.String()),
		zap.String("cancelled_by", callerID.String()))

	return nil
}
