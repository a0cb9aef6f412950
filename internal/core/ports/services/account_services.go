package services

import (
	"context"

	"github.com/fintrove/family_finance_app/internal/core/domain"
	"github.com/fintrove/family_finance_app/internal/dto"
)

// AccountSvcFacade manages financial accounts. Accounts are strictly
// personal; balances change only through the ledger service.
type AccountSvcFacade interface {
	CreateAccount(ctx context.Context, req dto.CreateAccountRequest, userID string) (*domain.Account, error)
	GetAccount(ctx context.Context, accountID string, userID string) (*domain.Account, error)
	ListAccounts(ctx context.Context, userID string) ([]domain.Account, error)
	UpdateAccount(ctx context.Context, accountID string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error)
	ArchiveAccount(ctx context.Context, accountID string, userID string) error
}
