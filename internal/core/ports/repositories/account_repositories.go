package repositories

import (
	"context"
	"time"

	"github.com/fintrove/family_finance_app/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// AccountRepository persists accounts.
type AccountRepository interface {
	SaveAccount(ctx context.Context, account domain.Account) error
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)
	FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error)
	ListAccountsByOwner(ctx context.Context, ownerUserID string) ([]domain.Account, error)
	UpdateAccount(ctx context.Context, account domain.Account) error
	// ArchiveAccount soft-archives the account. Fails with ErrConflict while
	// non-deleted transactions still reference it (RESTRICT).
	ArchiveAccount(ctx context.Context, accountID string, userID string, now time.Time) error
	// SetBalance overwrites the persisted balance; reconciliation only.
	SetBalance(ctx context.Context, accountID string, balance decimal.Decimal, userID string, now time.Time) error

	// Tx-scoped operations for composition inside one database transaction.
	FindAccountsByIDsForUpdate(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.Account, error)
	UpdateAccountBalancesInTx(ctx context.Context, tx pgx.Tx, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error
}
