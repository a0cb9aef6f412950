package services

import (
	"context"

	"github.com/fintrove/family_finance_app/internal/core/domain"
	"github.com/fintrove/family_finance_app/internal/dto"
)

// BudgetSvcFacade is the budget tracking engine: CRUD, the threshold-alert
// state machine, period rollover and spent reconciliation.
type BudgetSvcFacade interface {
	CreateBudget(ctx context.Context, req dto.CreateBudgetRequest, userID string) (*domain.Budget, error)
	// GetBudget returns the budget, rolling it into the next period first if
	// its end date has passed (lazy rollover).
	GetBudget(ctx context.Context, budgetID string, userID string) (*domain.Budget, error)
	ListBudgets(ctx context.Context, userID string, familyID *string) ([]domain.Budget, error)
	UpdateBudget(ctx context.Context, budgetID string, req dto.UpdateBudgetRequest, userID string) (*domain.Budget, error)

	ListAlerts(ctx context.Context, budgetID string, userID string) ([]domain.BudgetAlert, error)
	AcknowledgeAlert(ctx context.Context, budgetID string, alertID string, userID string) error

	// Rollover archives the budget and creates its successor period. Exposed
	// for the external period-end trigger; also applied lazily by GetBudget.
	Rollover(ctx context.Context, budgetID string, userID string) (*domain.Budget, error)

	// ReconcileBudget recomputes spent from transaction history and repairs
	// drift. Idempotent.
	ReconcileBudget(ctx context.Context, budgetID string, userID string) (*domain.Budget, error)
}
