package repositories

import (
	"context"
	"time"

	"github.com/fintrove/family_finance_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// BudgetSpendDelta is one budget-side effect of a ledger mutation. An edit
// that moves a transaction between categories or periods produces two deltas:
// a negative one on the old budget and a positive one on the new.
type BudgetSpendDelta struct {
	BudgetID string
	Delta    decimal.Decimal
}

// GoalProgressDelta is the goal-side effect of a ledger mutation. For a new
// contribution, Contribution carries the row to insert; edits and deletes of
// a contribution transaction adjust or remove the linked row instead.
type GoalProgressDelta struct {
	GoalID        string
	Delta         decimal.Decimal
	Contribution  *domain.GoalContribution // insert this row (create path)
	AdjustByTxn   bool                     // adjust the row linked to the transaction (edit path)
	RemoveByTxn   bool                     // remove the row linked to the transaction (delete path)
	TransactionID string
}

// LedgerChange bundles everything one ledger mutation must apply atomically:
// the transaction row itself, the signed balance deltas per account, and the
// dependent budget/goal aggregate deltas. Either all of it commits or none.
type LedgerChange struct {
	Transaction   domain.Transaction
	BalanceDeltas map[string]decimal.Decimal
	// EnforceSufficientFunds lists accounts whose resulting balance must not
	// go negative; violation aborts the whole change with ErrInsufficientFunds.
	// Verified under the row lock, so concurrent debits cannot slip past the
	// service-level precheck.
	EnforceSufficientFunds []string
	BudgetDeltas           []BudgetSpendDelta
	GoalDelta              *GoalProgressDelta
}

// LedgerApplyResult reports the post-commit state of the touched aggregates.
type LedgerApplyResult struct {
	NewBalances   map[string]decimal.Decimal
	CreatedAlerts []domain.BudgetAlert
	Goal          *domain.Goal // post-delta goal, when a goal was touched
}

// TransactionRepository persists ledger transactions and applies multi-
// aggregate changes in a single database transaction with row locks on the
// affected accounts, budgets and goal.
type TransactionRepository interface {
	// CreateTransaction inserts the transaction row and applies the change set.
	CreateTransaction(ctx context.Context, change LedgerChange) (*LedgerApplyResult, error)
	// UpdateTransaction rewrites the transaction row and applies the delta change set.
	UpdateTransaction(ctx context.Context, change LedgerChange) (*LedgerApplyResult, error)
	// SoftDeleteTransaction marks the row deleted and applies the reversing change set.
	SoftDeleteTransaction(ctx context.Context, change LedgerChange, deletedAt time.Time) (*LedgerApplyResult, error)

	FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)
	ListTransactionsByAccount(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.Transaction, *string, error)
	ListTransactionsByFamily(ctx context.Context, familyID string, limit int, nextToken *string) ([]domain.Transaction, *string, error)

	// SumSignedAmounts recomputes the balance effect of all non-deleted
	// transactions touching the account. Reconciliation source of truth.
	SumSignedAmounts(ctx context.Context, accountID string) (decimal.Decimal, error)
	// SumExpensesInWindow recomputes spent for a budget's category and period.
	SumExpensesInWindow(ctx context.Context, categoryID string, familyID *string, ownerUserID string, start, end time.Time) (decimal.Decimal, error)
}
