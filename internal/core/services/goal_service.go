package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/fintrove/family_finance_app/internal/apperrors"
	"github.com/fintrove/family_finance_app/internal/core/domain"
	portsrepo "github.com/fintrove/family_finance_app/internal/core/ports/repositories"
	portssvc "github.com/fintrove/family_finance_app/internal/core/ports/services"
	"github.com/fintrove/family_finance_app/internal/dto"
)

// goalService is the goal contribution engine. Contribute is the only path
// that creates contribution rows; it runs through the ledger service so the
// account debit, the contribution row and the progress increment commit as
// one unit.
type goalService struct {
	BaseService
	goalRepo   portsrepo.GoalRepository
	ledger     portssvc.LedgerSvcFacade
	permission portssvc.PermissionSvcFacade
}

// NewGoalService creates a new goal service.
func NewGoalService(
	goalRepo portsrepo.GoalRepository,
	ledger portssvc.LedgerSvcFacade,
	permission portssvc.PermissionSvcFacade,
) portssvc.GoalSvcFacade {
	return &goalService{goalRepo: goalRepo, ledger: ledger, permission: permission}
}

var _ portssvc.GoalSvcFacade = (*goalService)(nil)

func (s *goalService) CreateGoal(ctx context.Context, req dto.CreateGoalRequest, userID string) (*domain.Goal, error) {
	if !req.TargetAmount.IsPositive() {
		return nil, fmt.Errorf("%w: goal target amount must be positive", apperrors.ErrValidation)
	}

	if req.FamilyID != nil {
		if err := s.permission.CheckMemberCapability(ctx, userID, *req.FamilyID, domain.CapCreateGoals); err != nil {
			return nil, err
		}
	}

	priority := req.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}

	now := time.Now().UTC()
	goal := domain.Goal{
		GoalID:       uuid.NewString(),
		OwnerUserID:  userID,
		FamilyID:     req.FamilyID,
		Name:         req.Name,
		TargetAmount: req.TargetAmount,
		Priority:     priority,
		Status:       domain.GoalInProgress,
		TargetDate:   req.TargetDate,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.goalRepo.SaveGoal(ctx, goal); err != nil {
		s.LogError(ctx, err, "Failed to save goal", slog.String("goal_id", goal.GoalID))
		return nil, err
	}

	s.LogInfo(ctx, "Goal created", slog.String("goal_id", goal.GoalID), slog.String("name", goal.Name))
	return &goal, nil
}

func (s *goalService) GetGoal(ctx context.Context, goalID string, userID string) (*domain.Goal, error) {
	return s.readableGoal(ctx, goalID, userID)
}

func (s *goalService) ListGoals(ctx context.Context, userID string, familyID *string) ([]domain.Goal, error) {
	if familyID == nil {
		goals, err := s.goalRepo.ListGoalsByOwner(ctx, userID)
		if err != nil {
			s.LogError(ctx, err, "Failed to list goals", slog.String("user_id", userID))
			return nil, err
		}
		return goals, nil
	}

	if err := s.permission.CheckRead(ctx, userID, portssvc.ResourceScope{FamilyID: familyID}); err != nil {
		return nil, err
	}
	goals, err := s.goalRepo.ListGoalsByFamily(ctx, *familyID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list family goals", slog.String("family_id", *familyID))
		return nil, err
	}
	return goals, nil
}

func (s *goalService) UpdateGoal(ctx context.Context, goalID string, req dto.UpdateGoalRequest, userID string) (*domain.Goal, error) {
	goal, err := s.editableGoal(ctx, goalID, userID)
	if err != nil {
		return nil, err
	}

	updated := false
	if req.Name != nil && *req.Name != goal.Name {
		goal.Name = *req.Name
		updated = true
	}
	if req.TargetAmount != nil && !req.TargetAmount.Equal(goal.TargetAmount) {
		if !req.TargetAmount.IsPositive() {
			return nil, fmt.Errorf("%w: goal target amount must be positive", apperrors.ErrValidation)
		}
		goal.TargetAmount = *req.TargetAmount
		updated = true
	}
	if req.Priority != nil && *req.Priority != goal.Priority {
		goal.Priority = *req.Priority
		updated = true
	}
	if req.TargetDate != nil {
		goal.TargetDate = req.TargetDate
		updated = true
	}
	if !updated {
		return goal, nil
	}

	// A target change can flip completion in either direction.
	goal.Status = goal.StatusForProgress(goal.CurrentAmount)
	goal.LastUpdatedAt = time.Now().UTC()
	goal.LastUpdatedBy = userID

	if err := s.goalRepo.UpdateGoal(ctx, *goal); err != nil {
		s.LogError(ctx, err, "Failed to update goal", slog.String("goal_id", goalID))
		return nil, err
	}
	return goal, nil
}

func (s *goalService) UpdateGoalStatus(ctx context.Context, goalID string, req dto.UpdateGoalStatusRequest, userID string) (*domain.Goal, error) {
	goal, err := s.editableGoal(ctx, goalID, userID)
	if err != nil {
		return nil, err
	}
	if goal.Status == req.Status {
		return goal, nil
	}

	goal.Status = req.Status
	if req.Status == domain.GoalInProgress {
		// Resuming re-derives completion instead of trusting the request.
		goal.Status = goal.StatusForProgress(goal.CurrentAmount)
	}
	goal.LastUpdatedAt = time.Now().UTC()
	goal.LastUpdatedBy = userID

	if err := s.goalRepo.UpdateGoal(ctx, *goal); err != nil {
		s.LogError(ctx, err, "Failed to update goal status", slog.String("goal_id", goalID))
		return nil, err
	}

	s.LogInfo(ctx, "Goal status changed",
		slog.String("goal_id", goalID),
		slog.String("status", string(goal.Status)))
	return goal, nil
}

func (s *goalService) Contribute(ctx context.Context, goalID string, req dto.ContributeRequest, userID string) (*domain.Goal, error) {
	goal, err := s.readableGoal(ctx, goalID, userID)
	if err != nil {
		return nil, err
	}

	// The ledger service re-checks the contribute capability and the goal's
	// lifecycle state, debits the account and writes the contribution row.
	_, err = s.ledger.CreateTransaction(ctx, dto.CreateTransactionRequest{
		AccountID:       req.AccountID,
		TransactionType: domain.Contribution,
		Amount:          req.Amount,
		TransactionDate: time.Now().UTC(),
		GoalID:          &goal.GoalID,
		FamilyID:        goal.FamilyID,
		Notes:           req.Notes,
	}, userID)
	if err != nil {
		return nil, err
	}

	return s.goalRepo.FindGoalByID(ctx, goalID)
}

func (s *goalService) ListContributions(ctx context.Context, goalID string, userID string) ([]domain.GoalContribution, error) {
	if _, err := s.readableGoal(ctx, goalID, userID); err != nil {
		return nil, err
	}
	contributions, err := s.goalRepo.ListContributions(ctx, goalID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list contributions", slog.String("goal_id", goalID))
		return nil, err
	}
	return contributions, nil
}

func (s *goalService) ReconcileGoal(ctx context.Context, goalID string, userID string) (*dto.ReconcileGoalResponse, error) {
	goal, err := s.editableGoal(ctx, goalID, userID)
	if err != nil {
		return nil, err
	}

	derived, err := s.goalRepo.SumContributions(ctx, goalID)
	if err != nil {
		s.LogError(ctx, err, "Failed to derive goal progress", slog.String("goal_id", goalID))
		return nil, err
	}

	resp := &dto.ReconcileGoalResponse{
		GoalID:         goalID,
		PreviousAmount: goal.CurrentAmount,
		DerivedAmount:  derived,
		Status:         goal.Status,
	}
	if derived.Equal(goal.CurrentAmount) {
		return resp, nil
	}

	resp.DriftDetected = true
	status := goal.StatusForProgress(derived)
	resp.Status = status
	s.LogWarn(ctx, "Goal progress drift repaired",
		slog.String("error", apperrors.ErrConsistencyRepair.Error()),
		slog.String("goal_id", goalID),
		slog.String("stored", goal.CurrentAmount.String()),
		slog.String("derived", derived.String()))
	if err := s.goalRepo.SetProgress(ctx, goalID, derived, status, userID, time.Now().UTC()); err != nil {
		s.LogError(ctx, err, "Failed to repair goal progress", slog.String("goal_id", goalID))
		return nil, err
	}
	return resp, nil
}

// readableGoal loads the goal and hides it from anyone outside its scope.
func (s *goalService) readableGoal(ctx context.Context, goalID, userID string) (*domain.Goal, error) {
	goal, err := s.goalRepo.FindGoalByID(ctx, goalID)
	if err != nil {
		return nil, err
	}
	if goal.OwnerUserID == userID {
		return goal, nil
	}
	if goal.FamilyID == nil {
		return nil, apperrors.ErrNotFound
	}
	if err := s.permission.CheckRead(ctx, userID, portssvc.ResourceScope{OwnerUserID: goal.OwnerUserID, FamilyID: goal.FamilyID}); err != nil {
		return nil, apperrors.ErrNotFound
	}
	return goal, nil
}

// editableGoal loads the goal and checks mutation rights: its creator always
// may; for family goals an admin also may.
func (s *goalService) editableGoal(ctx context.Context, goalID, userID string) (*domain.Goal, error) {
	goal, err := s.goalRepo.FindGoalByID(ctx, goalID)
	if err != nil {
		return nil, err
	}
	if goal.OwnerUserID == userID {
		return goal, nil
	}
	if goal.FamilyID != nil {
		if _, err := s.permission.RequireAdministrative(ctx, *goal.FamilyID, userID); err == nil {
			return goal, nil
		}
	}
	return nil, apperrors.ErrNotFound
}
