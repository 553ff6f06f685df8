package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/promatch-inc/promatch-engine/pkg/database"
	"github.com/promatch-inc/promatch-engine/pkg/models"
	"github.com/promatch-inc/promatch-engine/pkg/repositories"
)

// mockProjectRepository is a configurable mock for project data access.
type mockProjectRepository struct {
	project       *models.Project
	projects      []*models.Project
	createErr     error
	getErr        error
	listErr       error
	transitionErr error

	// Capture inputs for verification
	capturedProject    *models.Project
	capturedFilter     repositories.ProjectFilter
	capturedTransition []models.ProjectStatus
}

func (m *mockProjectRepository) Create(ctx context.Context, project *models.Project) error {
	m.capturedProject = project
	if m.createErr != nil {
		return m.createErr
	}
	project.ID = uuid.New()
	return nil
}

func (m *mockProjectRepository) GetByID(ctx context.Context, projectID uuid.UUID) (*models.Project, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.project, nil
}

func (m *mockProjectRepository) List(ctx context.Context, filter repositories.ProjectFilter) ([]*models.Project, error) {
	m.capturedFilter = filter
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.projects, nil
}

func (m *mockProjectRepository) TransitionStatus(ctx context.Context, projectID uuid.UUID, from, to models.ProjectStatus) error {
	m.capturedTransition = []models.ProjectStatus{from, to}
	return m.transitionErr
}

// mockProposalRepository is a configurable mock for proposal data access.
type mockProposalRepository struct {
	proposal      *models.Proposal
	proposals     []*models.Proposal
	existsActive  bool
	rejectedCount int64
	createErr     error
	getErr        error
	listErr       error
	existsErr     error
	transitionErr error
	rejectErr     error

	capturedProposal   *models.Proposal
	capturedTransition []models.ProposalStatus
	rejectExceptCalled bool
	capturedExceptID   uuid.UUID
}

func (m *mockProposalRepository) Create(ctx context.Context, proposal *models.Proposal) error {
	m.capturedProposal = proposal
	if m.createErr != nil {
		return m.createErr
	}
	proposal.ID = uuid.New()
	return nil
}

func (m *mockProposalRepository) GetByID(ctx context.Context, proposalID uuid.UUID) (*models.Proposal, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.proposal, nil
}

func (m *mockProposalRepository) GetByProject(ctx context.Context, projectID uuid.UUID) ([]*models.Proposal, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.proposals, nil
}

func (m *mockProposalRepository) ExistsActive(ctx context.Context, projectID, businessID uuid.UUID) (bool, error) {
	if m.existsErr != nil {
		return false, m.existsErr
	}
	return m.existsActive, nil
}

func (m *mockProposalRepository) TransitionStatus(ctx context.Context, proposalID uuid.UUID, from, to models.ProposalStatus) error {
	m.capturedTransition = []models.ProposalStatus{from, to}
	return m.transitionErr
}

func (m *mockProposalRepository) RejectPendingExcept(ctx context.Context, projectID, exceptID uuid.UUID) (int64, error) {
	m.rejectExceptCalled = true
	m.capturedExceptID = exceptID
	if m.rejectErr != nil {
		return 0, m.rejectErr
	}
	return m.rejectedCount, nil
}

// mockContractRepository is a configurable mock for contract data access.
type mockContractRepository struct {
	contract    *models.Contract
	contracts   []*models.Contract
	createErr   error
	getErr      error
	listErr     error
	completeErr error
	cancelErr   error

	capturedContract *models.Contract
	completeCalled   bool
	cancelCalled     bool
	capturedReason   string
}

func (m *mockContractRepository) Create(ctx context.Context, contract *models.Contract) error {
	m.capturedContract = contract
	if m.createErr != nil {
		return m.createErr
	}
	contract.ID = uuid.New()
	return nil
}

func (m *mockContractRepository) GetByID(ctx context.Context, contractID uuid.UUID) (*models.Contract, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.contract, nil
}

func (m *mockContractRepository) GetActiveByProject(ctx context.Context, projectID uuid.UUID) (*models.Contract, error) {
	return m.contract, nil
}

func (m *mockContractRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Contract, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.contracts, nil
}

func (m *mockContractRepository) Complete(ctx context.Context, contractID uuid.UUID, endedAt time.Time) error {
	m.completeCalled = true
	return m.completeErr
}

func (m *mockContractRepository) Cancel(ctx context.Context, contractID uuid.UUID, reason string, endedAt time.Time) error {
	m.cancelCalled = true
	m.capturedReason = reason
	return m.cancelErr
}

// mockUserRepository is a configurable mock for user data access.
type mockUserRepository struct {
	user      *models.User
	getErr    error
	createErr error
}

func (m *mockUserRepository) Create(ctx context.Context, user *models.User) error {
	return m.createErr
}

func (m *mockUserRepository) GetByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.user, nil
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return m.user, nil
}

// mockScreener passes everything unless an error is configured.
type mockScreener struct {
	err           error
	checkedFields []string
}

func (m *mockScreener) CheckAll(fields map[string]string) error {
	for field := range fields {
		m.checkedFields = append(m.checkedFields, field)
	}
	return m.err
}

// mockListingCache records cache traffic.
type mockListingCache struct {
	cached      []*models.Project
	hit         bool
	invalidated bool
	setCalled   bool
	capturedKey string
}

func (m *mockListingCache) Get(ctx context.Context, key string) ([]*models.Project, bool) {
	m.capturedKey = key
	return m.cached, m.hit
}

func (m *mockListingCache) Set(ctx context.Context, key string, projects []*models.Project) {
	m.setCalled = true
}

func (m *mockListingCache) Invalidate(ctx context.Context) {
	m.invalidated = true
}

// fakeTx implements pgx.Tx for transaction bookkeeping in unit tests. The
// repositories are mocked, so no statement ever reaches it.
type fakeTx struct {
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }

func (t *fakeTx) Commit(ctx context.Context) error {
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(ctx context.Context) error {
	t.rolledBack = true
	return nil
}

func (t *fakeTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}

func (t *fakeTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *fakeTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }

func (t *fakeTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}

func (t *fakeTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (t *fakeTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}

func (t *fakeTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }
func (t *fakeTx) Conn() *pgx.Conn                                               { return nil }

// fakeConn satisfies database.Conn and hands out a fakeTx.
type fakeConn struct {
	tx       *fakeTx
	beginErr error
}

func (c *fakeConn) Begin(ctx context.Context) (pgx.Tx, error) {
	if c.beginErr != nil {
		return nil, c.beginErr
	}
	if c.tx == nil {
		c.tx = &fakeTx{}
	}
	return c.tx, nil
}

func (c *fakeConn) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (c *fakeConn) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}

func (c *fakeConn) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }

// scopedContext returns a context carrying a fake database scope.
func scopedContext(conn *fakeConn) context.Context {
	return database.SetScope(context.Background(), &database.Scope{Conn: conn})
}
