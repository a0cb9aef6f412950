package services_test

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/fintrove/family_finance_app/internal/core/domain"
	portsrepo "github.com/fintrove/family_finance_app/internal/core/ports/repositories"
	portssvc "github.com/fintrove/family_finance_app/internal/core/ports/services"
	"github.com/fintrove/family_finance_app/internal/dto"
)

// Shared mock implementations for the repository and service ports. The
// services under test overlap heavily in their dependencies, so the mocks
// live in one place instead of per test file.

// MockTransactionRepository is a mock type for the TransactionRepository interface
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) CreateTransaction(ctx context.Context, change portsrepo.LedgerChange) (*portsrepo.LedgerApplyResult, error) {
	args := m.Called(ctx, change)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*portsrepo.LedgerApplyResult), args.Error(1)
}

func (m *MockTransactionRepository) UpdateTransaction(ctx context.Context, change portsrepo.LedgerChange) (*portsrepo.LedgerApplyResult, error) {
	args := m.Called(ctx, change)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*portsrepo.LedgerApplyResult), args.Error(1)
}

func (m *MockTransactionRepository) SoftDeleteTransaction(ctx context.Context, change portsrepo.LedgerChange, deletedAt time.Time) (*portsrepo.LedgerApplyResult, error) {
	args := m.Called(ctx, change, deletedAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*portsrepo.LedgerApplyResult), args.Error(1)
}

func (m *MockTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) ListTransactionsByAccount(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	args := m.Called(ctx, accountID, limit, nextToken)
	var txns []domain.Transaction
	if args.Get(0) != nil {
		txns = args.Get(0).([]domain.Transaction)
	}
	var next *string
	if args.Get(1) != nil {
		next = args.Get(1).(*string)
	}
	return txns, next, args.Error(2)
}

func (m *MockTransactionRepository) ListTransactionsByFamily(ctx context.Context, familyID string, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	args := m.Called(ctx, familyID, limit, nextToken)
	var txns []domain.Transaction
	if args.Get(0) != nil {
		txns = args.Get(0).([]domain.Transaction)
	}
	var next *string
	if args.Get(1) != nil {
		next = args.Get(1).(*string)
	}
	return txns, next, args.Error(2)
}

func (m *MockTransactionRepository) SumSignedAmounts(ctx context.Context, accountID string) (decimal.Decimal, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockTransactionRepository) SumExpensesInWindow(ctx context.Context, categoryID string, familyID *string, ownerUserID string, start, end time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, categoryID, familyID, ownerUserID, start, end)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// MockAccountRepository is a mock type for the AccountRepository interface
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListAccountsByOwner(ctx context.Context, ownerUserID string) ([]domain.Account, error) {
	args := m.Called(ctx, ownerUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) ArchiveAccount(ctx context.Context, accountID string, userID string, now time.Time) error {
	args := m.Called(ctx, accountID, userID, now)
	return args.Error(0)
}

func (m *MockAccountRepository) SetBalance(ctx context.Context, accountID string, balance decimal.Decimal, userID string, now time.Time) error {
	args := m.Called(ctx, accountID, balance, userID, now)
	return args.Error(0)
}

func (m *MockAccountRepository) FindAccountsByIDsForUpdate(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, tx, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) UpdateAccountBalancesInTx(ctx context.Context, tx pgx.Tx, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error {
	args := m.Called(ctx, tx, balanceChanges, userID, now)
	return args.Error(0)
}

// MockBudgetRepository is a mock type for the BudgetRepository interface
type MockBudgetRepository struct {
	mock.Mock
}

func (m *MockBudgetRepository) SaveBudget(ctx context.Context, budget domain.Budget) error {
	args := m.Called(ctx, budget)
	return args.Error(0)
}

func (m *MockBudgetRepository) FindBudgetByID(ctx context.Context, budgetID string) (*domain.Budget, error) {
	args := m.Called(ctx, budgetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Budget), args.Error(1)
}

func (m *MockBudgetRepository) FindActiveBudgetForCategory(ctx context.Context, categoryID string, familyID *string, ownerUserID string, date time.Time) (*domain.Budget, error) {
	args := m.Called(ctx, categoryID, familyID, ownerUserID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Budget), args.Error(1)
}

func (m *MockBudgetRepository) FindCurrentBudgetForCategory(ctx context.Context, categoryID string, familyID *string, ownerUserID string) (*domain.Budget, error) {
	args := m.Called(ctx, categoryID, familyID, ownerUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Budget), args.Error(1)
}

func (m *MockBudgetRepository) ListBudgetsByOwner(ctx context.Context, ownerUserID string) ([]domain.Budget, error) {
	args := m.Called(ctx, ownerUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Budget), args.Error(1)
}

func (m *MockBudgetRepository) ListBudgetsByFamily(ctx context.Context, familyID string) ([]domain.Budget, error) {
	args := m.Called(ctx, familyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Budget), args.Error(1)
}

func (m *MockBudgetRepository) UpdateBudget(ctx context.Context, budget domain.Budget) error {
	args := m.Called(ctx, budget)
	return args.Error(0)
}

func (m *MockBudgetRepository) SetSpent(ctx context.Context, budgetID string, spent decimal.Decimal, userID string, now time.Time) error {
	args := m.Called(ctx, budgetID, spent, userID, now)
	return args.Error(0)
}

func (m *MockBudgetRepository) RolloverBudget(ctx context.Context, old domain.Budget, next domain.Budget) error {
	args := m.Called(ctx, old, next)
	return args.Error(0)
}

func (m *MockBudgetRepository) ListAlerts(ctx context.Context, budgetID string) ([]domain.BudgetAlert, error) {
	args := m.Called(ctx, budgetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BudgetAlert), args.Error(1)
}

func (m *MockBudgetRepository) AcknowledgeAlert(ctx context.Context, alertID string, now time.Time) error {
	args := m.Called(ctx, alertID, now)
	return args.Error(0)
}

func (m *MockBudgetRepository) ApplySpendDeltaInTx(ctx context.Context, tx pgx.Tx, budgetID string, delta decimal.Decimal, userID string, now time.Time) (*domain.Budget, error) {
	args := m.Called(ctx, tx, budgetID, delta, userID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Budget), args.Error(1)
}

func (m *MockBudgetRepository) InsertAlertsInTx(ctx context.Context, tx pgx.Tx, alerts []domain.BudgetAlert) ([]domain.BudgetAlert, error) {
	args := m.Called(ctx, tx, alerts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BudgetAlert), args.Error(1)
}

// MockGoalRepository is a mock type for the GoalRepository interface
type MockGoalRepository struct {
	mock.Mock
}

func (m *MockGoalRepository) SaveGoal(ctx context.Context, goal domain.Goal) error {
	args := m.Called(ctx, goal)
	return args.Error(0)
}

func (m *MockGoalRepository) FindGoalByID(ctx context.Context, goalID string) (*domain.Goal, error) {
	args := m.Called(ctx, goalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Goal), args.Error(1)
}

func (m *MockGoalRepository) ListGoalsByOwner(ctx context.Context, ownerUserID string) ([]domain.Goal, error) {
	args := m.Called(ctx, ownerUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Goal), args.Error(1)
}

func (m *MockGoalRepository) ListGoalsByFamily(ctx context.Context, familyID string) ([]domain.Goal, error) {
	args := m.Called(ctx, familyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Goal), args.Error(1)
}

func (m *MockGoalRepository) UpdateGoal(ctx context.Context, goal domain.Goal) error {
	args := m.Called(ctx, goal)
	return args.Error(0)
}

func (m *MockGoalRepository) ListContributions(ctx context.Context, goalID string) ([]domain.GoalContribution, error) {
	args := m.Called(ctx, goalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.GoalContribution), args.Error(1)
}

func (m *MockGoalRepository) SumContributions(ctx context.Context, goalID string) (decimal.Decimal, error) {
	args := m.Called(ctx, goalID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockGoalRepository) SetProgress(ctx context.Context, goalID string, current decimal.Decimal, status domain.GoalStatus, userID string, now time.Time) error {
	args := m.Called(ctx, goalID, current, status, userID, now)
	return args.Error(0)
}

func (m *MockGoalRepository) ApplyProgressDeltaInTx(ctx context.Context, tx pgx.Tx, goalID string, delta decimal.Decimal, userID string, now time.Time) (*domain.Goal, error) {
	args := m.Called(ctx, tx, goalID, delta, userID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Goal), args.Error(1)
}

func (m *MockGoalRepository) InsertContributionInTx(ctx context.Context, tx pgx.Tx, contribution domain.GoalContribution) error {
	args := m.Called(ctx, tx, contribution)
	return args.Error(0)
}

func (m *MockGoalRepository) AdjustContributionByTxnInTx(ctx context.Context, tx pgx.Tx, transactionID string, delta decimal.Decimal) error {
	args := m.Called(ctx, tx, transactionID, delta)
	return args.Error(0)
}

func (m *MockGoalRepository) RemoveContributionByTxnInTx(ctx context.Context, tx pgx.Tx, transactionID string) error {
	args := m.Called(ctx, tx, transactionID)
	return args.Error(0)
}

func (m *MockGoalRepository) UpdateGoalStatusInTx(ctx context.Context, tx pgx.Tx, goalID string, status domain.GoalStatus, userID string, now time.Time) error {
	args := m.Called(ctx, tx, goalID, status, userID, now)
	return args.Error(0)
}

// MockUserRepository is a mock type for the UserRepository interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) UpdateUser(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) MarkUserDeleted(ctx context.Context, userID string, deletedBy string, now time.Time) error {
	args := m.Called(ctx, userID, deletedBy, now)
	return args.Error(0)
}

// MockFamilyRepository is a mock type for the FamilyRepository interface
type MockFamilyRepository struct {
	mock.Mock
}

func (m *MockFamilyRepository) SaveFamily(ctx context.Context, family domain.Family) error {
	args := m.Called(ctx, family)
	return args.Error(0)
}

func (m *MockFamilyRepository) FindFamilyByID(ctx context.Context, familyID string) (*domain.Family, error) {
	args := m.Called(ctx, familyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Family), args.Error(1)
}

func (m *MockFamilyRepository) UpdateFamily(ctx context.Context, family domain.Family) error {
	args := m.Called(ctx, family)
	return args.Error(0)
}

func (m *MockFamilyRepository) DeleteFamily(ctx context.Context, familyID string) error {
	args := m.Called(ctx, familyID)
	return args.Error(0)
}

func (m *MockFamilyRepository) ListFamiliesByUser(ctx context.Context, userID string) ([]domain.Family, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Family), args.Error(1)
}

func (m *MockFamilyRepository) SaveMember(ctx context.Context, member domain.FamilyMember) error {
	args := m.Called(ctx, member)
	return args.Error(0)
}

func (m *MockFamilyRepository) FindMember(ctx context.Context, familyID, userID string) (*domain.FamilyMember, error) {
	args := m.Called(ctx, familyID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FamilyMember), args.Error(1)
}

func (m *MockFamilyRepository) ListMembers(ctx context.Context, familyID string) ([]domain.FamilyMember, error) {
	args := m.Called(ctx, familyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FamilyMember), args.Error(1)
}

func (m *MockFamilyRepository) CountActiveMembers(ctx context.Context, familyID string) (int, error) {
	args := m.Called(ctx, familyID)
	return args.Int(0), args.Error(1)
}

func (m *MockFamilyRepository) UpdateMember(ctx context.Context, member domain.FamilyMember) (*domain.FamilyMember, error) {
	args := m.Called(ctx, member)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FamilyMember), args.Error(1)
}

func (m *MockFamilyRepository) FindMembership(ctx context.Context, familyID, userID string) (*domain.Membership, error) {
	args := m.Called(ctx, familyID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Membership), args.Error(1)
}

func (m *MockFamilyRepository) ListMemberships(ctx context.Context, familyID string) ([]domain.Membership, error) {
	args := m.Called(ctx, familyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Membership), args.Error(1)
}

func (m *MockFamilyRepository) SaveInvitation(ctx context.Context, invitation domain.FamilyInvitation) error {
	args := m.Called(ctx, invitation)
	return args.Error(0)
}

func (m *MockFamilyRepository) FindInvitationByToken(ctx context.Context, token string) (*domain.FamilyInvitation, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FamilyInvitation), args.Error(1)
}

func (m *MockFamilyRepository) ListInvitations(ctx context.Context, familyID string) ([]domain.FamilyInvitation, error) {
	args := m.Called(ctx, familyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FamilyInvitation), args.Error(1)
}

func (m *MockFamilyRepository) UpdateInvitationStatus(ctx context.Context, invitationID string, status domain.InvitationStatus, userID string, now time.Time) error {
	args := m.Called(ctx, invitationID, status, userID, now)
	return args.Error(0)
}

func (m *MockFamilyRepository) AcceptInvitation(ctx context.Context, invitationID string, member domain.FamilyMember) error {
	args := m.Called(ctx, invitationID, member)
	return args.Error(0)
}

func (m *MockFamilyRepository) SaveJoinRequest(ctx context.Context, request domain.FamilyJoinRequest) error {
	args := m.Called(ctx, request)
	return args.Error(0)
}

func (m *MockFamilyRepository) FindJoinRequestByID(ctx context.Context, requestID string) (*domain.FamilyJoinRequest, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FamilyJoinRequest), args.Error(1)
}

func (m *MockFamilyRepository) ListJoinRequests(ctx context.Context, familyID string, status *domain.JoinRequestStatus) ([]domain.FamilyJoinRequest, error) {
	args := m.Called(ctx, familyID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FamilyJoinRequest), args.Error(1)
}

func (m *MockFamilyRepository) UpdateJoinRequest(ctx context.Context, request domain.FamilyJoinRequest) error {
	args := m.Called(ctx, request)
	return args.Error(0)
}

func (m *MockFamilyRepository) ApproveJoinRequest(ctx context.Context, request domain.FamilyJoinRequest, member domain.FamilyMember) error {
	args := m.Called(ctx, request, member)
	return args.Error(0)
}

// MockCategoryRepository is a mock type for the CategoryRepository interface
type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) SaveCategory(ctx context.Context, category domain.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *MockCategoryRepository) FindCategoryByID(ctx context.Context, categoryID string) (*domain.Category, error) {
	args := m.Called(ctx, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
}

func (m *MockCategoryRepository) ListCategories(ctx context.Context, ownerUserID string, familyID *string, kind *domain.CategoryKind) ([]domain.Category, error) {
	args := m.Called(ctx, ownerUserID, familyID, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Category), args.Error(1)
}

func (m *MockCategoryRepository) UpdateCategory(ctx context.Context, category domain.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *MockCategoryRepository) DeleteCategory(ctx context.Context, categoryID string) error {
	args := m.Called(ctx, categoryID)
	return args.Error(0)
}

// MockMembershipCache is a mock type for the MembershipCache interface
type MockMembershipCache struct {
	mock.Mock
}

func (m *MockMembershipCache) Get(ctx context.Context, familyID, userID string) (*domain.Membership, error) {
	args := m.Called(ctx, familyID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Membership), args.Error(1)
}

func (m *MockMembershipCache) Put(ctx context.Context, membership domain.Membership) error {
	args := m.Called(ctx, membership)
	return args.Error(0)
}

func (m *MockMembershipCache) Invalidate(ctx context.Context, familyID, userID string) error {
	args := m.Called(ctx, familyID, userID)
	return args.Error(0)
}

func (m *MockMembershipCache) RebuildFamily(ctx context.Context, familyID string, memberships []domain.Membership) error {
	args := m.Called(ctx, familyID, memberships)
	return args.Error(0)
}

// MockPermissionService is a mock type for the PermissionSvcFacade interface
type MockPermissionService struct {
	mock.Mock
}

func (m *MockPermissionService) CheckCapability(ctx context.Context, userID string, scope portssvc.ResourceScope, capability domain.Capability) error {
	args := m.Called(ctx, userID, scope, capability)
	return args.Error(0)
}

func (m *MockPermissionService) CheckMemberCapability(ctx context.Context, userID string, familyID string, capability domain.Capability) error {
	args := m.Called(ctx, userID, familyID, capability)
	return args.Error(0)
}

func (m *MockPermissionService) CheckRead(ctx context.Context, userID string, scope portssvc.ResourceScope) error {
	args := m.Called(ctx, userID, scope)
	return args.Error(0)
}

func (m *MockPermissionService) ResolveMembership(ctx context.Context, familyID, userID string) (*domain.Membership, error) {
	args := m.Called(ctx, familyID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Membership), args.Error(1)
}

func (m *MockPermissionService) RequireAdministrative(ctx context.Context, familyID, userID string) (*domain.Membership, error) {
	args := m.Called(ctx, familyID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Membership), args.Error(1)
}

// MockCacheRefresher is a mock type for the MembershipCacheRefresher interface
type MockCacheRefresher struct {
	mock.Mock
}

func (m *MockCacheRefresher) OnMembershipChanged(ctx context.Context, event domain.MembershipChanged) {
	m.Called(ctx, event)
}

func (m *MockCacheRefresher) RebuildFamily(ctx context.Context, familyID string) error {
	args := m.Called(ctx, familyID)
	return args.Error(0)
}

// MockNotifier is a mock type for the Notifier interface
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Send(ctx context.Context, recipient, templateID string, data map[string]string) error {
	args := m.Called(ctx, recipient, templateID, data)
	return args.Error(0)
}

// MockLedgerService is a mock type for the LedgerSvcFacade interface
type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) CreateTransaction(ctx context.Context, req dto.CreateTransactionRequest, userID string) (*domain.Transaction, error) {
	args := m.Called(ctx, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockLedgerService) GetTransaction(ctx context.Context, transactionID string, userID string) (*domain.Transaction, error) {
	args := m.Called(ctx, transactionID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockLedgerService) UpdateTransaction(ctx context.Context, transactionID string, req dto.UpdateTransactionRequest, userID string) (*domain.Transaction, error) {
	args := m.Called(ctx, transactionID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockLedgerService) DeleteTransaction(ctx context.Context, transactionID string, userID string) error {
	args := m.Called(ctx, transactionID, userID)
	return args.Error(0)
}

func (m *MockLedgerService) ListAccountTransactions(ctx context.Context, accountID string, userID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error) {
	args := m.Called(ctx, accountID, userID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListTransactionsResponse), args.Error(1)
}

func (m *MockLedgerService) ListFamilyTransactions(ctx context.Context, familyID string, userID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error) {
	args := m.Called(ctx, familyID, userID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListTransactionsResponse), args.Error(1)
}

func (m *MockLedgerService) ReconcileAccount(ctx context.Context, accountID string, userID string) (*dto.ReconcileAccountResponse, error) {
	args := m.Called(ctx, accountID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ReconcileAccountResponse), args.Error(1)
}
