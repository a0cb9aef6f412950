package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/fintrove/family_finance_app/internal/apperrors"
	"github.com/fintrove/family_finance_app/internal/core/domain"
	portssvc "github.com/fintrove/family_finance_app/internal/core/ports/services"
	"github.com/fintrove/family_finance_app/internal/core/services"
	"github.com/fintrove/family_finance_app/internal/dto"
)

type AccountServiceTestSuite struct {
	suite.Suite
	mockRepo *MockAccountRepository
	service  portssvc.AccountSvcFacade
}

func (suite *AccountServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockAccountRepository)
	suite.service = services.NewAccountService(suite.mockRepo)
}

func (suite *AccountServiceTestSuite) TestCreateAccount_Success() {
	ctx := context.Background()
	userID := uuid.NewString()
	req := dto.CreateAccountRequest{
		Name:           "Everyday Checking",
		AccountType:    domain.Checking,
		CurrencyCode:   "USD",
		InitialBalance: decimal.RequireFromString("500.00"),
	}

	suite.mockRepo.On("SaveAccount", ctx, mock.AnythingOfType("domain.Account")).Return(nil).Once()

	account, err := suite.service.CreateAccount(ctx, req, userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(account)
	suite.NotEmpty(account.AccountID)
	suite.Equal(req.Name, account.Name)
	suite.Equal(userID, account.OwnerUserID)
	suite.True(account.Balance.Equal(req.InitialBalance))
	suite.False(account.IsArchived)
	suite.Equal(userID, account.CreatedBy)
	suite.WithinDuration(time.Now(), account.CreatedAt, time.Second)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestCreateAccount_NegativeBalanceOnlyForCredit() {
	ctx := context.Background()
	userID := uuid.NewString()
	req := dto.CreateAccountRequest{
		Name:           "Savings",
		AccountType:    domain.Savings,
		CurrencyCode:   "USD",
		InitialBalance: decimal.RequireFromString("-50.00"),
	}

	account, err := suite.service.CreateAccount(ctx, req, userID)

	suite.Require().Error(err)
	suite.Nil(account)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveAccount", mock.Anything, mock.Anything)

	// Credit accounts may start in the red.
	req.AccountType = domain.Credit
	suite.mockRepo.On("SaveAccount", ctx, mock.AnythingOfType("domain.Account")).Return(nil).Once()
	account, err = suite.service.CreateAccount(ctx, req, userID)
	suite.Require().NoError(err)
	suite.Require().NotNil(account)
}

func (suite *AccountServiceTestSuite) TestGetAccount_ObscuresOtherOwners() {
	ctx := context.Background()
	account := &domain.Account{
		AccountID:   uuid.NewString(),
		OwnerUserID: uuid.NewString(),
		Name:        "Not Yours",
	}

	suite.mockRepo.On("FindAccountByID", ctx, account.AccountID).Return(account, nil).Once()

	got, err := suite.service.GetAccount(ctx, account.AccountID, uuid.NewString())

	suite.Require().Error(err)
	suite.Nil(got)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *AccountServiceTestSuite) TestListAccounts_EmptyNotNil() {
	ctx := context.Background()
	userID := uuid.NewString()

	suite.mockRepo.On("ListAccountsByOwner", ctx, userID).Return(nil, nil).Once()

	accounts, err := suite.service.ListAccounts(ctx, userID)

	suite.Require().NoError(err)
	suite.NotNil(accounts)
	suite.Empty(accounts)
}

func (suite *AccountServiceTestSuite) TestUpdateAccount_NoopWithoutChanges() {
	ctx := context.Background()
	userID := uuid.NewString()
	account := &domain.Account{
		AccountID:   uuid.NewString(),
		OwnerUserID: userID,
		Name:        "Checking",
	}

	suite.mockRepo.On("FindAccountByID", ctx, account.AccountID).Return(account, nil).Once()

	got, err := suite.service.UpdateAccount(ctx, account.AccountID, dto.UpdateAccountRequest{}, userID)

	suite.Require().NoError(err)
	suite.Equal("Checking", got.Name)
	suite.mockRepo.AssertNotCalled(suite.T(), "UpdateAccount", mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestArchiveAccount_ConflictWhileReferenced() {
	ctx := context.Background()
	userID := uuid.NewString()
	account := &domain.Account{
		AccountID:   uuid.NewString(),
		OwnerUserID: userID,
	}

	suite.mockRepo.On("FindAccountByID", ctx, account.AccountID).Return(account, nil).Once()
	suite.mockRepo.On("ArchiveAccount", ctx, account.AccountID, userID, mock.AnythingOfType("time.Time")).
		Return(apperrors.ErrConflict).Once()

	err := suite.service.ArchiveAccount(ctx, account.AccountID, userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
}

func (suite *AccountServiceTestSuite) TestGetAccount_RepoError() {
	ctx := context.Background()
	accountID := uuid.NewString()

	suite.mockRepo.On("FindAccountByID", ctx, accountID).Return(nil, assert.AnError).Once()

	got, err := suite.service.GetAccount(ctx, accountID, uuid.NewString())

	suite.Require().Error(err)
	suite.Nil(got)
	suite.ErrorIs(err, assert.AnError)
}

func TestAccountServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AccountServiceTestSuite))
}
