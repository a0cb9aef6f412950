package services

import (
	"context"

	"github.com/fintrove/family_finance_app/internal/core/domain"
	"github.com/fintrove/family_finance_app/internal/dto"
)

// LedgerSvcFacade is the ledger core: transaction creation, edit, delete and
// account reconciliation. Every mutation keeps account balances and dependent
// budget/goal aggregates consistent within one atomic unit of work.
type LedgerSvcFacade interface {
	CreateTransaction(ctx context.Context, req dto.CreateTransactionRequest, userID string) (*domain.Transaction, error)
	GetTransaction(ctx context.Context, transactionID string, userID string) (*domain.Transaction, error)
	UpdateTransaction(ctx context.Context, transactionID string, req dto.UpdateTransactionRequest, userID string) (*domain.Transaction, error)
	DeleteTransaction(ctx context.Context, transactionID string, userID string) error
	ListAccountTransactions(ctx context.Context, accountID string, userID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error)
	ListFamilyTransactions(ctx context.Context, familyID string, userID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error)

	// ReconcileAccount recomputes the balance from transaction history,
	// repairs drift and reports it. Idempotent.
	ReconcileAccount(ctx context.Context, accountID string, userID string) (*dto.ReconcileAccountResponse, error)
}
