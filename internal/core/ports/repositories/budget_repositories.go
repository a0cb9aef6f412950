package repositories

import (
	"context"
	"time"

	"github.com/fintrove/family_finance_app/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// BudgetRepository persists budgets and their alerts.
type BudgetRepository interface {
	SaveBudget(ctx context.Context, budget domain.Budget) error
	FindBudgetByID(ctx context.Context, budgetID string) (*domain.Budget, error)
	// FindActiveBudgetForCategory locates the live budget covering the given
	// category and date within the owner's personal scope or the family scope.
	FindActiveBudgetForCategory(ctx context.Context, categoryID string, familyID *string, ownerUserID string, date time.Time) (*domain.Budget, error)
	// FindCurrentBudgetForCategory locates the category's ACTIVE budget
	// regardless of its period window, so a lapsed period can be rolled
	// forward before spend is applied.
	FindCurrentBudgetForCategory(ctx context.Context, categoryID string, familyID *string, ownerUserID string) (*domain.Budget, error)
	ListBudgetsByOwner(ctx context.Context, ownerUserID string) ([]domain.Budget, error)
	ListBudgetsByFamily(ctx context.Context, familyID string) ([]domain.Budget, error)
	UpdateBudget(ctx context.Context, budget domain.Budget) error
	// SetSpent overwrites the derived spent column; reconciliation only.
	SetSpent(ctx context.Context, budgetID string, spent decimal.Decimal, userID string, now time.Time) error
	// RolloverBudget archives the old row and creates its successor atomically.
	RolloverBudget(ctx context.Context, old domain.Budget, next domain.Budget) error

	ListAlerts(ctx context.Context, budgetID string) ([]domain.BudgetAlert, error)
	AcknowledgeAlert(ctx context.Context, alertID string, now time.Time) error

	// Tx-scoped operations. ApplySpendDeltaInTx locks the budget row, applies
	// the delta and returns the updated budget for threshold evaluation.
	ApplySpendDeltaInTx(ctx context.Context, tx pgx.Tx, budgetID string, delta decimal.Decimal, userID string, now time.Time) (*domain.Budget, error)
	// InsertAlertsInTx inserts alerts, silently skipping any threshold that
	// already has an un-dismissed alert this period (dedupe invariant).
	InsertAlertsInTx(ctx context.Context, tx pgx.Tx, alerts []domain.BudgetAlert) ([]domain.BudgetAlert, error)
}
