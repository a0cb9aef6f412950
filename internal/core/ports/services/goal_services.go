package services

import (
	"context"

	"github.com/fintrove/family_finance_app/internal/core/domain"
	"github.com/fintrove/family_finance_app/internal/dto"
)

// GoalSvcFacade is the goal contribution engine: goal CRUD, the single
// authoritative contribution path, and progress reconciliation.
type GoalSvcFacade interface {
	CreateGoal(ctx context.Context, req dto.CreateGoalRequest, userID string) (*domain.Goal, error)
	GetGoal(ctx context.Context, goalID string, userID string) (*domain.Goal, error)
	ListGoals(ctx context.Context, userID string, familyID *string) ([]domain.Goal, error)
	UpdateGoal(ctx context.Context, goalID string, req dto.UpdateGoalRequest, userID string) (*domain.Goal, error)
	UpdateGoalStatus(ctx context.Context, goalID string, req dto.UpdateGoalStatusRequest, userID string) (*domain.Goal, error)

	// Contribute atomically creates the contribution transaction, the
	// contribution row, the goal progress increment and the account debit.
	Contribute(ctx context.Context, goalID string, req dto.ContributeRequest, userID string) (*domain.Goal, error)
	ListContributions(ctx context.Context, goalID string, userID string) ([]domain.GoalContribution, error)

	// ReconcileGoal recomputes current_amount strictly from contribution rows
	// and corrects drift. Safe to invoke repeatedly.
	ReconcileGoal(ctx context.Context, goalID string, userID string) (*dto.ReconcileGoalResponse, error)
}
