package services_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/fintrove/family_finance_app/internal/apperrors"
	"github.com/fintrove/family_finance_app/internal/core/domain"
	portssvc "github.com/fintrove/family_finance_app/internal/core/ports/services"
	"github.com/fintrove/family_finance_app/internal/core/services"
	"github.com/fintrove/family_finance_app/internal/dto"
)

type BudgetServiceTestSuite struct {
	suite.Suite
	mockBudgets    *MockBudgetRepository
	mockCategories *MockCategoryRepository
	mockTxnRepo    *MockTransactionRepository
	mockPermission *MockPermissionService
	service        portssvc.BudgetSvcFacade
}

func (suite *BudgetServiceTestSuite) SetupTest() {
	suite.mockBudgets = new(MockBudgetRepository)
	suite.mockCategories = new(MockCategoryRepository)
	suite.mockTxnRepo = new(MockTransactionRepository)
	suite.mockPermission = new(MockPermissionService)
	suite.service = services.NewBudgetService(
		suite.mockBudgets,
		suite.mockCategories,
		suite.mockTxnRepo,
		suite.mockPermission,
	)
}

func (suite *BudgetServiceTestSuite) expenseCategory() *domain.Category {
	ownerID := uuid.NewString()
	return &domain.Category{
		CategoryID:  uuid.NewString(),
		OwnerUserID: &ownerID,
		Kind:        domain.ExpenseCategory,
		Name:        "Groceries",
	}
}

func (suite *BudgetServiceTestSuite) activeBudget(ownerID string) *domain.Budget {
	start := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	return &domain.Budget{
		BudgetID:        uuid.NewString(),
		OwnerUserID:     ownerID,
		CategoryID:      uuid.NewString(),
		Amount:          decimal.RequireFromString("400.00"),
		Spent:           decimal.RequireFromString("150.00"),
		Period:          domain.Monthly,
		StartDate:       start,
		EndDate:         start.AddDate(0, 1, 0),
		RolloverEnabled: false,
		Status:          domain.BudgetActive,
	}
}

func (suite *BudgetServiceTestSuite) TestCreateBudget_Success() {
	ctx := context.Background()
	userID := uuid.NewString()
	category := suite.expenseCategory()
	start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	req := dto.CreateBudgetRequest{
		CategoryID: category.CategoryID,
		Amount:     decimal.RequireFromString("300.00"),
		Period:     domain.Monthly,
		StartDate:  start,
	}

	suite.mockCategories.On("FindCategoryByID", ctx, category.CategoryID).Return(category, nil).Once()
	suite.mockBudgets.On("FindActiveBudgetForCategory", ctx, category.CategoryID, (*string)(nil), userID, start).
		Return(nil, apperrors.ErrNotFound).Once()
	suite.mockBudgets.On("SaveBudget", ctx, mock.AnythingOfType("domain.Budget")).Return(nil).Once()

	budget, err := suite.service.CreateBudget(ctx, req, userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(budget)
	suite.NotEmpty(budget.BudgetID)
	suite.Equal(domain.BudgetActive, budget.Status)
	suite.Equal(start.AddDate(0, 1, 0), budget.EndDate)
	suite.True(budget.Spent.IsZero())
	suite.mockBudgets.AssertExpectations(suite.T())
}

func (suite *BudgetServiceTestSuite) TestCreateBudget_FamilyRequiresManageCapability() {
	ctx := context.Background()
	userID := uuid.NewString()
	familyID := uuid.NewString()
	category := suite.expenseCategory()

	req := dto.CreateBudgetRequest{
		CategoryID: category.CategoryID,
		FamilyID:   &familyID,
		Amount:     decimal.RequireFromString("300.00"),
		Period:     domain.Monthly,
		StartDate:  time.Now().UTC(),
	}

	suite.mockCategories.On("FindCategoryByID", ctx, category.CategoryID).Return(category, nil).Once()
	// A plain member's default capabilities exclude budget management; the
	// creation path consults the membership check, not resource ownership.
	suite.mockPermission.On("CheckMemberCapability", ctx, userID, familyID, domain.CapManageBudgets).
		Return(fmt.Errorf("%w: user %s with role MEMBER lacks capability %s",
			apperrors.ErrForbidden, userID, domain.CapManageBudgets)).Once()

	budget, err := suite.service.CreateBudget(ctx, req, userID)

	suite.Require().Error(err)
	suite.Nil(budget)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockBudgets.AssertNotCalled(suite.T(), "SaveBudget", mock.Anything, mock.Anything)
	suite.mockPermission.AssertExpectations(suite.T())
}

func (suite *BudgetServiceTestSuite) TestCreateBudget_NonExpenseCategory() {
	ctx := context.Background()
	userID := uuid.NewString()
	category := suite.expenseCategory()
	category.Kind = domain.IncomeCategory

	req := dto.CreateBudgetRequest{
		CategoryID: category.CategoryID,
		Amount:     decimal.RequireFromString("300.00"),
		Period:     domain.Monthly,
		StartDate:  time.Now().UTC(),
	}

	suite.mockCategories.On("FindCategoryByID", ctx, category.CategoryID).Return(category, nil).Once()

	budget, err := suite.service.CreateBudget(ctx, req, userID)

	suite.Require().Error(err)
	suite.Nil(budget)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockBudgets.AssertNotCalled(suite.T(), "SaveBudget", mock.Anything, mock.Anything)
}

func (suite *BudgetServiceTestSuite) TestCreateBudget_DuplicateForCategory() {
	ctx := context.Background()
	userID := uuid.NewString()
	category := suite.expenseCategory()
	existing := suite.activeBudget(userID)
	start := time.Now().UTC()

	req := dto.CreateBudgetRequest{
		CategoryID: category.CategoryID,
		Amount:     decimal.RequireFromString("300.00"),
		Period:     domain.Monthly,
		StartDate:  start,
	}

	suite.mockCategories.On("FindCategoryByID", ctx, category.CategoryID).Return(category, nil).Once()
	suite.mockBudgets.On("FindActiveBudgetForCategory", ctx, category.CategoryID, (*string)(nil), userID, start).
		Return(existing, nil).Once()

	budget, err := suite.service.CreateBudget(ctx, req, userID)

	suite.Require().Error(err)
	suite.Nil(budget)
	suite.ErrorIs(err, apperrors.ErrDuplicate)
	suite.mockBudgets.AssertNotCalled(suite.T(), "SaveBudget", mock.Anything, mock.Anything)
}

func (suite *BudgetServiceTestSuite) TestGetBudget_LazyRolloverPastPeriodEnd() {
	ctx := context.Background()
	userID := uuid.NewString()
	budget := suite.activeBudget(userID)
	// Period ended two periods before now, so the read must advance it twice.
	budget.StartDate = time.Now().UTC().Add(time.Hour).AddDate(0, -3, 0)
	budget.EndDate = budget.StartDate.AddDate(0, 1, 0)
	budget.CreatedBy = userID

	suite.mockBudgets.On("FindBudgetByID", ctx, budget.BudgetID).Return(budget, nil).Once()
	// Two successor periods are needed to catch up to now.
	suite.mockBudgets.On("RolloverBudget", ctx, mock.MatchedBy(func(old domain.Budget) bool {
		return old.Status == domain.BudgetArchived
	}), mock.AnythingOfType("domain.Budget")).Return(nil).Twice()

	got, err := suite.service.GetBudget(ctx, budget.BudgetID, userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(got)
	suite.Equal(domain.BudgetActive, got.Status)
	suite.True(time.Now().UTC().Before(got.EndDate))
	suite.mockBudgets.AssertExpectations(suite.T())
}

func (suite *BudgetServiceTestSuite) TestGetBudget_HiddenFromStrangers() {
	ctx := context.Background()
	budget := suite.activeBudget(uuid.NewString())

	suite.mockBudgets.On("FindBudgetByID", ctx, budget.BudgetID).Return(budget, nil).Once()

	got, err := suite.service.GetBudget(ctx, budget.BudgetID, uuid.NewString())

	suite.Require().Error(err)
	suite.Nil(got)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *BudgetServiceTestSuite) TestUpdateBudget_ArchivedIsImmutable() {
	ctx := context.Background()
	userID := uuid.NewString()
	budget := suite.activeBudget(userID)
	budget.Status = domain.BudgetArchived
	newAmount := decimal.RequireFromString("999.00")

	suite.mockBudgets.On("FindBudgetByID", ctx, budget.BudgetID).Return(budget, nil).Once()

	got, err := suite.service.UpdateBudget(ctx, budget.BudgetID, dto.UpdateBudgetRequest{Amount: &newAmount}, userID)

	suite.Require().Error(err)
	suite.Nil(got)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockBudgets.AssertNotCalled(suite.T(), "UpdateBudget", mock.Anything, mock.Anything)
}

func (suite *BudgetServiceTestSuite) TestRollover_CarriesUnspentRemainder() {
	ctx := context.Background()
	userID := uuid.NewString()
	budget := suite.activeBudget(userID)
	budget.RolloverEnabled = true
	// 400 budgeted, 150 spent: 250 carries into the next period.

	suite.mockBudgets.On("FindBudgetByID", ctx, budget.BudgetID).Return(budget, nil).Once()
	suite.mockBudgets.On("RolloverBudget", ctx, mock.MatchedBy(func(old domain.Budget) bool {
		return old.BudgetID == budget.BudgetID && old.Status == domain.BudgetArchived
	}), mock.MatchedBy(func(next domain.Budget) bool {
		return next.Amount.Equal(decimal.RequireFromString("650.00")) &&
			next.Status == domain.BudgetActive &&
			next.StartDate.Equal(budget.EndDate)
	})).Return(nil).Once()

	next, err := suite.service.Rollover(ctx, budget.BudgetID, userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(next)
	suite.NotEqual(budget.BudgetID, next.BudgetID)
	suite.True(next.Spent.IsZero())
	suite.mockBudgets.AssertExpectations(suite.T())
}

func (suite *BudgetServiceTestSuite) TestRollover_OverspentCarriesNothing() {
	ctx := context.Background()
	userID := uuid.NewString()
	budget := suite.activeBudget(userID)
	budget.RolloverEnabled = true
	budget.Spent = decimal.RequireFromString("450.00")

	suite.mockBudgets.On("FindBudgetByID", ctx, budget.BudgetID).Return(budget, nil).Once()
	suite.mockBudgets.On("RolloverBudget", ctx, mock.AnythingOfType("domain.Budget"), mock.MatchedBy(func(next domain.Budget) bool {
		return next.Amount.Equal(budget.Amount)
	})).Return(nil).Once()

	next, err := suite.service.Rollover(ctx, budget.BudgetID, userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(next)
	suite.mockBudgets.AssertExpectations(suite.T())
}

func (suite *BudgetServiceTestSuite) TestAcknowledgeAlert_Idempotent() {
	ctx := context.Background()
	userID := uuid.NewString()
	budget := suite.activeBudget(userID)
	acked := time.Now().UTC().Add(-time.Hour)
	alert := domain.BudgetAlert{
		AlertID:        uuid.NewString(),
		BudgetID:       budget.BudgetID,
		Threshold:      75,
		AcknowledgedAt: &acked,
	}

	suite.mockBudgets.On("FindBudgetByID", ctx, budget.BudgetID).Return(budget, nil).Once()
	suite.mockBudgets.On("ListAlerts", ctx, budget.BudgetID).Return([]domain.BudgetAlert{alert}, nil).Once()

	err := suite.service.AcknowledgeAlert(ctx, budget.BudgetID, alert.AlertID, userID)

	suite.Require().NoError(err)
	suite.mockBudgets.AssertNotCalled(suite.T(), "AcknowledgeAlert", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *BudgetServiceTestSuite) TestAcknowledgeAlert_UnknownAlert() {
	ctx := context.Background()
	userID := uuid.NewString()
	budget := suite.activeBudget(userID)

	suite.mockBudgets.On("FindBudgetByID", ctx, budget.BudgetID).Return(budget, nil).Once()
	suite.mockBudgets.On("ListAlerts", ctx, budget.BudgetID).Return([]domain.BudgetAlert{}, nil).Once()

	err := suite.service.AcknowledgeAlert(ctx, budget.BudgetID, uuid.NewString(), userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *BudgetServiceTestSuite) TestReconcileBudget_RepairsDrift() {
	ctx := context.Background()
	userID := uuid.NewString()
	budget := suite.activeBudget(userID)
	derived := decimal.RequireFromString("175.00")

	suite.mockBudgets.On("FindBudgetByID", ctx, budget.BudgetID).Return(budget, nil).Once()
	suite.mockTxnRepo.On("SumExpensesInWindow", ctx, budget.CategoryID, (*string)(nil), userID, budget.StartDate, budget.EndDate).
		Return(derived, nil).Once()
	suite.mockBudgets.On("SetSpent", ctx, budget.BudgetID, mock.MatchedBy(func(s decimal.Decimal) bool {
		return s.Equal(derived)
	}), userID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	got, err := suite.service.ReconcileBudget(ctx, budget.BudgetID, userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(got)
	suite.True(got.Spent.Equal(derived))
	suite.mockBudgets.AssertExpectations(suite.T())
}

func (suite *BudgetServiceTestSuite) TestReconcileBudget_NoDrift() {
	ctx := context.Background()
	userID := uuid.NewString()
	budget := suite.activeBudget(userID)

	suite.mockBudgets.On("FindBudgetByID", ctx, budget.BudgetID).Return(budget, nil).Once()
	suite.mockTxnRepo.On("SumExpensesInWindow", ctx, budget.CategoryID, (*string)(nil), userID, budget.StartDate, budget.EndDate).
		Return(decimal.RequireFromString("150.00"), nil).Once()

	got, err := suite.service.ReconcileBudget(ctx, budget.BudgetID, userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(got)
	suite.mockBudgets.AssertNotCalled(suite.T(), "SetSpent", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *BudgetServiceTestSuite) TestListBudgets_FamilyRequiresViewAccess() {
	ctx := context.Background()
	userID := uuid.NewString()
	familyID := uuid.NewString()
	member := &domain.Membership{
		UserID:   userID,
		FamilyID: familyID,
		Role:     domain.RoleMember,
		Status:   domain.MemberActive,
		// can_view_budgets not granted
	}

	suite.mockPermission.On("ResolveMembership", ctx, familyID, userID).Return(member, nil).Once()

	budgets, err := suite.service.ListBudgets(ctx, userID, &familyID)

	suite.Require().Error(err)
	suite.Nil(budgets)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockBudgets.AssertNotCalled(suite.T(), "ListBudgetsByFamily", mock.Anything, mock.Anything)
}

func TestBudgetServiceTestSuite(t *testing.T) {
	suite.Run(t, new(BudgetServiceTestSuite))
}
