package services

import (
	"context"
	"errors"
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

// budgetService is the budget tracking engine. Spend maintenance happens in
// the ledger service's change sets; this service owns the budget lifecycle:
// creation, edits, period rollover, alert access and reconciliation.
type budgetService struct {
	BaseService
	budgetRepo   portsrepo.BudgetRepository
	categoryRepo portsrepo.CategoryRepository
	txnRepo      portsrepo.TransactionRepository
	permission   portssvc.PermissionSvcFacade
}

// NewBudgetService creates a new budget service.
func NewBudgetService(
	budgetRepo portsrepo.BudgetRepository,
	categoryRepo portsrepo.CategoryRepository,
	txnRepo portsrepo.TransactionRepository,
	permission portssvc.PermissionSvcFacade,
) portssvc.BudgetSvcFacade {
	return &budgetService{
		budgetRepo:   budgetRepo,
		categoryRepo: categoryRepo,
		txnRepo:      txnRepo,
		permission:   permission,
	}
}

var _ portssvc.BudgetSvcFacade = (*budgetService)(nil)

func (s *budgetService) CreateBudget(ctx context.Context, req dto.CreateBudgetRequest, userID string) (*domain.Budget, error) {
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: budget amount must be positive", apperrors.ErrValidation)
	}

	category, err := s.categoryRepo.FindCategoryByID(ctx, req.CategoryID)
	if err != nil {
		return nil, err
	}
	if category.Kind != domain.ExpenseCategory {
		return nil, fmt.Errorf("%w: budgets apply to expense categories only", apperrors.ErrValidation)
	}

	if req.FamilyID != nil {
		if err := s.permission.CheckMemberCapability(ctx, userID, *req.FamilyID, domain.CapManageBudgets); err != nil {
			return nil, err
		}
	}

	existing, err := s.budgetRepo.FindActiveBudgetForCategory(ctx, req.CategoryID, req.FamilyID, userID, req.StartDate)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: category %s already has an active budget for that period",
			apperrors.ErrDuplicate, req.CategoryID)
	}

	now := time.Now().UTC()
	budget := domain.Budget{
		BudgetID:        uuid.NewString(),
		OwnerUserID:     userID,
		FamilyID:        req.FamilyID,
		CategoryID:      req.CategoryID,
		Amount:          req.Amount,
		Period:          req.Period,
		StartDate:       req.StartDate,
		EndDate:         periodEnd(req.StartDate, req.Period),
		RolloverEnabled: req.RolloverEnabled,
		Status:          domain.BudgetActive,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.budgetRepo.SaveBudget(ctx, budget); err != nil {
		s.LogError(ctx, err, "Failed to save budget", slog.String("budget_id", budget.BudgetID))
		return nil, err
	}

	s.LogInfo(ctx, "Budget created", slog.String("budget_id", budget.BudgetID), slog.String("category_id", budget.CategoryID))
	return &budget, nil
}

func (s *budgetService) GetBudget(ctx context.Context, budgetID string, userID string) (*domain.Budget, error) {
	budget, err := s.readableBudget(ctx, budgetID, userID)
	if err != nil {
		return nil, err
	}

	// Lazy rollover: a read past the period end advances the budget first, so
	// callers never see an expired active period.
	now := time.Now().UTC()
	for budget.Status == domain.BudgetActive && !now.Before(budget.EndDate) {
		budget, err = s.rollForward(ctx, budget, budget.CreatedBy)
		if err != nil {
			return nil, err
		}
	}
	return budget, nil
}

func (s *budgetService) ListBudgets(ctx context.Context, userID string, familyID *string) ([]domain.Budget, error) {
	if familyID == nil {
		budgets, err := s.budgetRepo.ListBudgetsByOwner(ctx, userID)
		if err != nil {
			s.LogError(ctx, err, "Failed to list budgets", slog.String("user_id", userID))
			return nil, err
		}
		return budgets, nil
	}

	if err := s.checkBudgetView(ctx, userID, *familyID); err != nil {
		return nil, err
	}
	budgets, err := s.budgetRepo.ListBudgetsByFamily(ctx, *familyID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list family budgets", slog.String("family_id", *familyID))
		return nil, err
	}
	return budgets, nil
}

func (s *budgetService) UpdateBudget(ctx context.Context, budgetID string, req dto.UpdateBudgetRequest, userID string) (*domain.Budget, error) {
	budget, err := s.manageableBudget(ctx, budgetID, userID)
	if err != nil {
		return nil, err
	}
	if budget.Status != domain.BudgetActive {
		return nil, fmt.Errorf("%w: archived budgets are immutable", apperrors.ErrConflict)
	}

	updated := false
	if req.Amount != nil && !req.Amount.Equal(budget.Amount) {
		if !req.Amount.IsPositive() {
			return nil, fmt.Errorf("%w: budget amount must be positive", apperrors.ErrValidation)
		}
		budget.Amount = *req.Amount
		updated = true
	}
	if req.RolloverEnabled != nil && *req.RolloverEnabled != budget.RolloverEnabled {
		budget.RolloverEnabled = *req.RolloverEnabled
		updated = true
	}
	if !updated {
		return budget, nil
	}

	budget.LastUpdatedAt = time.Now().UTC()
	budget.LastUpdatedBy = userID
	if err := s.budgetRepo.UpdateBudget(ctx, *budget); err != nil {
		s.LogError(ctx, err, "Failed to update budget", slog.String("budget_id", budgetID))
		return nil, err
	}
	return budget, nil
}

func (s *budgetService) ListAlerts(ctx context.Context, budgetID string, userID string) ([]domain.BudgetAlert, error) {
	if _, err := s.readableBudget(ctx, budgetID, userID); err != nil {
		return nil, err
	}
	alerts, err := s.budgetRepo.ListAlerts(ctx, budgetID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list alerts", slog.String("budget_id", budgetID))
		return nil, err
	}
	return alerts, nil
}

func (s *budgetService) AcknowledgeAlert(ctx context.Context, budgetID string, alertID string, userID string) error {
	if _, err := s.readableBudget(ctx, budgetID, userID); err != nil {
		return err
	}

	alerts, err := s.budgetRepo.ListAlerts(ctx, budgetID)
	if err != nil {
		return err
	}
	for _, a := range alerts {
		if a.AlertID != alertID {
			continue
		}
		if a.AcknowledgedAt != nil {
			return nil // already acknowledged, idempotent
		}
		if err := s.budgetRepo.AcknowledgeAlert(ctx, alertID, time.Now().UTC()); err != nil {
			s.LogError(ctx, err, "Failed to acknowledge alert", slog.String("alert_id", alertID))
			return err
		}
		return nil
	}
	return apperrors.ErrNotFound
}

func (s *budgetService) Rollover(ctx context.Context, budgetID string, userID string) (*domain.Budget, error) {
	budget, err := s.manageableBudget(ctx, budgetID, userID)
	if err != nil {
		return nil, err
	}
	if budget.Status != domain.BudgetActive {
		return nil, fmt.Errorf("%w: budget %s is already archived", apperrors.ErrConflict, budgetID)
	}
	return s.rollForward(ctx, budget, userID)
}

func (s *budgetService) ReconcileBudget(ctx context.Context, budgetID string, userID string) (*domain.Budget, error) {
	budget, err := s.manageableBudget(ctx, budgetID, userID)
	if err != nil {
		return nil, err
	}

	derived, err := s.txnRepo.SumExpensesInWindow(ctx, budget.CategoryID, budget.FamilyID, budget.OwnerUserID, budget.StartDate, budget.EndDate)
	if err != nil {
		s.LogError(ctx, err, "Failed to derive budget spend", slog.String("budget_id", budgetID))
		return nil, err
	}
	if derived.Equal(budget.Spent) {
		return budget, nil
	}

	s.LogWarn(ctx, "Budget spend drift repaired",
		slog.String("error", apperrors.ErrConsistencyRepair.Error()),
		slog.String("budget_id", budgetID),
		slog.String("stored", budget.Spent.String()),
		slog.String("derived", derived.String()))
	if err := s.budgetRepo.SetSpent(ctx, budgetID, derived, userID, time.Now().UTC()); err != nil {
		s.LogError(ctx, err, "Failed to repair budget spend", slog.String("budget_id", budgetID))
		return nil, err
	}
	budget.Spent = derived
	return budget, nil
}

// rollForward archives the budget and creates its successor period, carrying
// the unspent remainder into the new amount when rollover is enabled.
func (s *budgetService) rollForward(ctx context.Context, budget *domain.Budget, userID string) (*domain.Budget, error) {
	now := time.Now().UTC()
	next := budget.Successor(uuid.NewString(), userID, now)

	old := *budget
	old.Status = domain.BudgetArchived
	old.LastUpdatedAt = now
	old.LastUpdatedBy = userID

	if err := s.budgetRepo.RolloverBudget(ctx, old, next); err != nil {
		s.LogError(ctx, err, "Failed to roll budget over", slog.String("budget_id", budget.BudgetID))
		return nil, err
	}

	s.LogInfo(ctx, "Budget rolled over",
		slog.String("budget_id", budget.BudgetID),
		slog.String("next_budget_id", next.BudgetID),
		slog.String("next_amount", next.Amount.String()))
	return &next, nil
}

// readableBudget loads the budget and hides it from anyone without view access.
func (s *budgetService) readableBudget(ctx context.Context, budgetID, userID string) (*domain.Budget, error) {
	budget, err := s.budgetRepo.FindBudgetByID(ctx, budgetID)
	if err != nil {
		return nil, err
	}
	if budget.FamilyID == nil {
		if budget.OwnerUserID != userID {
			return nil, apperrors.ErrNotFound
		}
		return budget, nil
	}
	if budget.OwnerUserID == userID {
		return budget, nil
	}
	if err := s.checkBudgetView(ctx, userID, *budget.FamilyID); err != nil {
		return nil, err
	}
	return budget, nil
}

// checkBudgetView gates family budget reads on the can_view_budgets flag.
// The owner, admins and viewers always pass; members need the flag.
func (s *budgetService) checkBudgetView(ctx context.Context, userID, familyID string) error {
	membership, err := s.permission.ResolveMembership(ctx, familyID, userID)
	if err != nil {
		return err
	}
	if membership.IsOwner || membership.Role == domain.RoleAdmin || membership.Role == domain.RoleViewer {
		if membership.Status != domain.MemberActive && !membership.IsOwner {
			return fmt.Errorf("%w: membership of user %s is not active", apperrors.ErrForbidden, userID)
		}
		return nil
	}
	if membership.Status != domain.MemberActive || !membership.Capabilities.Has(domain.CapViewBudgets) {
		return fmt.Errorf("%w: user %s with role %s lacks capability %s",
			apperrors.ErrForbidden, userID, membership.Role, domain.CapViewBudgets)
	}
	return nil
}

// manageableBudget loads the budget and checks mutation rights: the owner for
// personal budgets, the can_manage_budgets capability for family ones.
func (s *budgetService) manageableBudget(ctx context.Context, budgetID, userID string) (*domain.Budget, error) {
	budget, err := s.budgetRepo.FindBudgetByID(ctx, budgetID)
	if err != nil {
		return nil, err
	}
	if budget.FamilyID == nil {
		if budget.OwnerUserID != userID {
			return nil, apperrors.ErrNotFound
		}
		return budget, nil
	}
	if err := s.permission.CheckCapability(ctx, userID,
		portssvc.ResourceScope{OwnerUserID: budget.OwnerUserID, FamilyID: budget.FamilyID},
		domain.CapManageBudgets); err != nil {
		return nil, err
	}
	return budget, nil
}

// periodEnd returns the exclusive end of the period starting at the given date.
func periodEnd(start time.Time, period domain.BudgetPeriod) time.Time {
	switch period {
	case domain.Weekly:
		return start.AddDate(0, 0, 7)
	case domain.Quarterly:
		return start.AddDate(0, 3, 0)
	case domain.Yearly:
		return start.AddDate(1, 0, 0)
	default:
		return start.AddDate(0, 1, 0)
	}
}
