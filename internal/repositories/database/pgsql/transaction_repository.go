package pgsql

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/fintrove/family_finance_app/internal/apperrors"
	"github.com/fintrove/family_finance_app/internal/core/domain"
	portsrepo "github.com/fintrove/family_finance_app/internal/core/ports/repositories"
	"github.com/fintrove/family_finance_app/internal/models"
	"github.com/fintrove/family_finance_app/internal/utils/pagination"
)

const transactionColumns = `transaction_id, owner_user_id, account_id, transaction_type, amount, transaction_date, category_id, goal_id, destination_account_id, family_id, notes, deleted_at, created_at, created_by, last_updated_at, last_updated_by`

// PgxTransactionRepository applies ledger change sets. Each mutation runs as
// one database transaction: lock the touched accounts, write the transaction
// row, apply balance deltas, then budget and goal deltas, then commit.
type PgxTransactionRepository struct {
	BaseRepository
	accountRepo portsrepo.AccountRepository
	budgetRepo  portsrepo.BudgetRepository
	goalRepo    portsrepo.GoalRepository
}

// newPgxTransactionRepository creates a new repository for ledger data.
func newPgxTransactionRepository(
	pool *pgxpool.Pool,
	accountRepo portsrepo.AccountRepository,
	budgetRepo portsrepo.BudgetRepository,
	goalRepo portsrepo.GoalRepository,
) portsrepo.TransactionRepository {
	return &PgxTransactionRepository{
		BaseRepository: BaseRepository{Pool: pool},
		accountRepo:    accountRepo,
		budgetRepo:     budgetRepo,
		goalRepo:       goalRepo,
	}
}

var _ portsrepo.TransactionRepository = (*PgxTransactionRepository)(nil)

func toDomainTransaction(m models.Transaction) domain.Transaction {
	return domain.Transaction{
		TransactionID:        m.TransactionID,
		OwnerUserID:          m.OwnerUserID,
		AccountID:            m.AccountID,
		TransactionType:      domain.TransactionType(m.TransactionType),
		Amount:               m.Amount,
		TransactionDate:      m.TransactionDate,
		CategoryID:           m.CategoryID,
		GoalID:               m.GoalID,
		DestinationAccountID: m.DestinationAccountID,
		FamilyID:             m.FamilyID,
		Notes:                m.Notes,
		DeletedAt:            m.DeletedAt,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}

func scanTransaction(row pgx.Row) (models.Transaction, error) {
	var m models.Transaction
	err := row.Scan(
		&m.TransactionID,
		&m.OwnerUserID,
		&m.AccountID,
		&m.TransactionType,
		&m.Amount,
		&m.TransactionDate,
		&m.CategoryID,
		&m.GoalID,
		&m.DestinationAccountID,
		&m.FamilyID,
		&m.Notes,
		&m.DeletedAt,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// CreateTransaction inserts the transaction row and applies the change set.
func (r *PgxTransactionRepository) CreateTransaction(ctx context.Context, change portsrepo.LedgerChange) (*portsrepo.LedgerApplyResult, error) {
	return r.applyChange(ctx, change, func(ctx context.Context, tx pgx.Tx) error {
		t := change.Transaction
		query := `
			INSERT INTO transactions (` + transactionColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16);
		`
		_, err := tx.Exec(ctx, query,
			t.TransactionID, t.OwnerUserID, t.AccountID, t.TransactionType, t.Amount, t.TransactionDate,
			t.CategoryID, t.GoalID, t.DestinationAccountID, t.FamilyID, t.Notes, t.DeletedAt,
			t.CreatedAt, t.CreatedBy, t.LastUpdatedAt, t.LastUpdatedBy,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: transaction with ID %s already exists", apperrors.ErrDuplicate, t.TransactionID)
			}
			return fmt.Errorf("failed to insert transaction %s: %w", t.TransactionID, err)
		}
		return nil
	})
}

// UpdateTransaction rewrites the editable columns and applies the delta
// change set.
func (r *PgxTransactionRepository) UpdateTransaction(ctx context.Context, change portsrepo.LedgerChange) (*portsrepo.LedgerApplyResult, error) {
	return r.applyChange(ctx, change, func(ctx context.Context, tx pgx.Tx) error {
		t := change.Transaction
		query := `
			UPDATE transactions
			SET amount = $2, transaction_date = $3, category_id = $4, notes = $5,
			    last_updated_at = $6, last_updated_by = $7
			WHERE transaction_id = $1 AND deleted_at IS NULL;
		`
		tag, err := tx.Exec(ctx, query,
			t.TransactionID, t.Amount, t.TransactionDate, t.CategoryID, t.Notes,
			t.LastUpdatedAt, t.LastUpdatedBy,
		)
		if err != nil {
			return fmt.Errorf("failed to update transaction %s: %w", t.TransactionID, err)
		}
		if tag.RowsAffected() == 0 {
			return apperrors.ErrNotFound
		}
		return nil
	})
}

// SoftDeleteTransaction marks the row deleted and applies the reversing
// change set.
func (r *PgxTransactionRepository) SoftDeleteTransaction(ctx context.Context, change portsrepo.LedgerChange, deletedAt time.Time) (*portsrepo.LedgerApplyResult, error) {
	return r.applyChange(ctx, change, func(ctx context.Context, tx pgx.Tx) error {
		t := change.Transaction
		query := `
			UPDATE transactions
			SET deleted_at = $2, last_updated_at = $2, last_updated_by = $3
			WHERE transaction_id = $1 AND deleted_at IS NULL;
		`
		tag, err := tx.Exec(ctx, query, t.TransactionID, deletedAt, t.LastUpdatedBy)
		if err != nil {
			return fmt.Errorf("failed to soft delete transaction %s: %w", t.TransactionID, err)
		}
		if tag.RowsAffected() == 0 {
			return apperrors.ErrNotFound
		}
		return nil
	})
}

// applyChange runs the row mutation plus all dependent deltas in one database
// transaction with the touched account rows locked first.
func (r *PgxTransactionRepository) applyChange(ctx context.Context, change portsrepo.LedgerChange, rowOp func(context.Context, pgx.Tx) error) (*portsrepo.LedgerApplyResult, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	now := change.Transaction.LastUpdatedAt
	userID := change.Transaction.LastUpdatedBy

	accountIDs := make([]string, 0, len(change.BalanceDeltas))
	for id := range change.BalanceDeltas {
		accountIDs = append(accountIDs, id)
	}
	sort.Strings(accountIDs)

	locked, err := r.accountRepo.FindAccountsByIDsForUpdate(ctx, tx, accountIDs)
	if err != nil {
		return nil, err
	}
	for _, id := range accountIDs {
		if _, ok := locked[id]; !ok {
			return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, id)
		}
	}

	// Re-verify funds under the lock; the service-level precheck raced an
	// uncommitted debit otherwise.
	newBalances := make(map[string]decimal.Decimal, len(accountIDs))
	for id, delta := range change.BalanceDeltas {
		newBalances[id] = locked[id].Balance.Add(delta)
	}
	for _, id := range change.EnforceSufficientFunds {
		if balance, ok := newBalances[id]; ok && balance.IsNegative() {
			return nil, fmt.Errorf("%w: account %s balance would drop to %s",
				apperrors.ErrInsufficientFunds, id, balance)
		}
	}

	if err := rowOp(ctx, tx); err != nil {
		return nil, err
	}

	if err := r.accountRepo.UpdateAccountBalancesInTx(ctx, tx, change.BalanceDeltas, userID, now); err != nil {
		return nil, err
	}

	result := &portsrepo.LedgerApplyResult{NewBalances: newBalances}

	for _, bd := range change.BudgetDeltas {
		budget, err := r.budgetRepo.ApplySpendDeltaInTx(ctx, tx, bd.BudgetID, bd.Delta, userID, now)
		if err != nil {
			return nil, err
		}
		// Only upward movement can cross a threshold; the dedupe index keeps
		// a re-crossed threshold from alerting twice in the same period.
		if bd.Delta.IsPositive() {
			created, err := r.insertCrossedAlerts(ctx, tx, budget, now)
			if err != nil {
				return nil, err
			}
			result.CreatedAlerts = append(result.CreatedAlerts, created...)
		}
	}

	if gd := change.GoalDelta; gd != nil {
		goal, err := r.goalRepo.ApplyProgressDeltaInTx(ctx, tx, gd.GoalID, gd.Delta, userID, now)
		if err != nil {
			return nil, err
		}
		switch {
		case gd.Contribution != nil:
			if err := r.goalRepo.InsertContributionInTx(ctx, tx, *gd.Contribution); err != nil {
				return nil, err
			}
		case gd.AdjustByTxn:
			if err := r.goalRepo.AdjustContributionByTxnInTx(ctx, tx, gd.TransactionID, gd.Delta); err != nil {
				return nil, err
			}
		case gd.RemoveByTxn:
			if err := r.goalRepo.RemoveContributionByTxnInTx(ctx, tx, gd.TransactionID); err != nil {
				return nil, err
			}
		}
		if status := goal.StatusForProgress(goal.CurrentAmount); status != goal.Status {
			if err := r.goalRepo.UpdateGoalStatusInTx(ctx, tx, goal.GoalID, status, userID, now); err != nil {
				return nil, err
			}
			goal.Status = status
		}
		result.Goal = goal
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return result, nil
}

// insertCrossedAlerts creates alert rows for every threshold at or below the
// budget's new spend percentage that has not alerted this period yet.
func (r *PgxTransactionRepository) insertCrossedAlerts(ctx context.Context, tx pgx.Tx, budget *domain.Budget, now time.Time) ([]domain.BudgetAlert, error) {
	crossed := domain.CrossedThresholds(budget.SpentPercent())
	if len(crossed) == 0 {
		return nil, nil
	}
	alerts := make([]domain.BudgetAlert, 0, len(crossed))
	for _, threshold := range crossed {
		alerts = append(alerts, domain.BudgetAlert{
			AlertID:     uuid.NewString(),
			BudgetID:    budget.BudgetID,
			Threshold:   threshold,
			PeriodStart: budget.StartDate,
			TriggeredAt: now,
		})
	}
	return r.budgetRepo.InsertAlertsInTx(ctx, tx, alerts)
}

// FindTransactionByID retrieves a transaction by ID, soft-deleted rows
// included. Callers decide whether deleted rows are visible.
func (r *PgxTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1;`
	m, err := scanTransaction(r.Pool.QueryRow(ctx, query, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find transaction by ID %s: %w", transactionID, err)
	}
	d := toDomainTransaction(m)
	return &d, nil
}

// ListTransactionsByAccount pages the live history touching an account,
// source and destination sides alike, newest first with a keyset cursor.
func (r *PgxTransactionRepository) ListTransactionsByAccount(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	filter := `(account_id = $1 OR destination_account_id = $1) AND deleted_at IS NULL`
	return r.listTransactions(ctx, filter, accountID, limit, nextToken)
}

// ListTransactionsByFamily pages the live family-scoped history, newest first.
func (r *PgxTransactionRepository) ListTransactionsByFamily(ctx context.Context, familyID string, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	filter := `family_id = $1 AND deleted_at IS NULL`
	return r.listTransactions(ctx, filter, familyID, limit, nextToken)
}

func (r *PgxTransactionRepository) listTransactions(ctx context.Context, filter string, key string, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	args := []any{key}
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE ` + filter

	if nextToken != nil && *nextToken != "" {
		txnDate, createdAt, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		query += ` AND (transaction_date, created_at) < ($2, $3)`
		args = append(args, txnDate, createdAt)
	}

	query += fmt.Sprintf(` ORDER BY transaction_date DESC, created_at DESC LIMIT %d;`, limit+1)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	txns := []domain.Transaction{}
	for rows.Next() {
		m, err := scanTransaction(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		txns = append(txns, toDomainTransaction(m))
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating transaction rows: %w", err)
	}

	var token *string
	if len(txns) > limit {
		txns = txns[:limit]
		last := txns[len(txns)-1]
		t := pagination.EncodeToken(last.TransactionDate, last.CreatedAt)
		token = &t
	}
	return txns, token, nil
}

// SumSignedAmounts recomputes the balance effect of all live transactions on
// an account: income credits, debits subtract, inbound transfers credit.
func (r *PgxTransactionRepository) SumSignedAmounts(ctx context.Context, accountID string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(
			CASE
				WHEN account_id = $1 AND transaction_type = 'INCOME' THEN amount
				WHEN account_id = $1 THEN -amount
				ELSE amount
			END), 0)
		FROM transactions
		WHERE (account_id = $1 OR destination_account_id = $1) AND deleted_at IS NULL;
	`
	var sum decimal.Decimal
	if err := r.Pool.QueryRow(ctx, query, accountID).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum transactions for account %s: %w", accountID, err)
	}
	return sum, nil
}

// SumExpensesInWindow recomputes spent for one budget's category, scope and
// period from live expense rows.
func (r *PgxTransactionRepository) SumExpensesInWindow(ctx context.Context, categoryID string, familyID *string, ownerUserID string, start, end time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE transaction_type = 'EXPENSE'
		  AND category_id = $1
		  AND deleted_at IS NULL
		  AND transaction_date >= $4 AND transaction_date < $5
		  AND (($2::text IS NULL AND family_id IS NULL AND owner_user_id = $3)
		   OR ($2::text IS NOT NULL AND family_id = $2));
	`
	var sum decimal.Decimal
	if err := r.Pool.QueryRow(ctx, query, categoryID, familyID, ownerUserID, start, end).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum expenses for category %s: %w", categoryID, err)
	}
	return sum, nil
}
