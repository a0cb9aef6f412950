package repositories

import (
	"context"
	"time"

	"github.com/fintrove/family_finance_app/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// GoalRepository persists goals and their contributions. Contribution rows are
// the authoritative source for goal progress; current_amount is derived.
type GoalRepository interface {
	SaveGoal(ctx context.Context, goal domain.Goal) error
	FindGoalByID(ctx context.Context, goalID string) (*domain.Goal, error)
	ListGoalsByOwner(ctx context.Context, ownerUserID string) ([]domain.Goal, error)
	ListGoalsByFamily(ctx context.Context, familyID string) ([]domain.Goal, error)
	UpdateGoal(ctx context.Context, goal domain.Goal) error

	ListContributions(ctx context.Context, goalID string) ([]domain.GoalContribution, error)
	// SumContributions recomputes the goal's progress from its contribution
	// rows. Reconciliation source of truth.
	SumContributions(ctx context.Context, goalID string) (decimal.Decimal, error)
	// SetProgress overwrites current_amount and status; reconciliation only.
	SetProgress(ctx context.Context, goalID string, current decimal.Decimal, status domain.GoalStatus, userID string, now time.Time) error

	// Tx-scoped operations. ApplyProgressDeltaInTx locks the goal row, applies
	// the delta and returns the updated goal for status re-evaluation.
	ApplyProgressDeltaInTx(ctx context.Context, tx pgx.Tx, goalID string, delta decimal.Decimal, userID string, now time.Time) (*domain.Goal, error)
	InsertContributionInTx(ctx context.Context, tx pgx.Tx, contribution domain.GoalContribution) error
	AdjustContributionByTxnInTx(ctx context.Context, tx pgx.Tx, transactionID string, delta decimal.Decimal) error
	RemoveContributionByTxnInTx(ctx context.Context, tx pgx.Tx, transactionID string) error
	UpdateGoalStatusInTx(ctx context.Context, tx pgx.Tx, goalID string, status domain.GoalStatus, userID string, now time.Time) error
}
