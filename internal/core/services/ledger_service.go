package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fintrove/family_finance_app/internal/apperrors"
	"github.com/fintrove/family_finance_app/internal/core/domain"
	portsrepo "github.com/fintrove/family_finance_app/internal/core/ports/repositories"
	portssvc "github.com/fintrove/family_finance_app/internal/core/ports/services"
	"github.com/fintrove/family_finance_app/internal/dto"
	"github.com/fintrove/family_finance_app/internal/platform/notifier"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// ledgerService is the ledger core. It validates and authorizes each mutation,
// computes the full set of balance, budget and goal deltas it implies, and
// hands them to the transaction repository as one atomic change set.
type ledgerService struct {
	BaseService
	txnRepo     portsrepo.TransactionRepository
	accountRepo portsrepo.AccountRepository
	budgetRepo  portsrepo.BudgetRepository
	goalRepo    portsrepo.GoalRepository
	userRepo    portsrepo.UserRepository
	permission  portssvc.PermissionSvcFacade
	notify      notifier.Notifier
}

// NewLedgerService creates a new ledger service.
func NewLedgerService(
	txnRepo portsrepo.TransactionRepository,
	accountRepo portsrepo.AccountRepository,
	budgetRepo portsrepo.BudgetRepository,
	goalRepo portsrepo.GoalRepository,
	userRepo portsrepo.UserRepository,
	permission portssvc.PermissionSvcFacade,
	notify notifier.Notifier,
) portssvc.LedgerSvcFacade {
	return &ledgerService{
		txnRepo:     txnRepo,
		accountRepo: accountRepo,
		budgetRepo:  budgetRepo,
		goalRepo:    goalRepo,
		userRepo:    userRepo,
		permission:  permission,
		notify:      notify,
	}
}

var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

func (s *ledgerService) CreateTransaction(ctx context.Context, req dto.CreateTransactionRequest, userID string) (*domain.Transaction, error) {
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: transaction amount must be positive", apperrors.ErrValidation)
	}

	account, err := s.ownedAccount(ctx, req.AccountID, userID)
	if err != nil {
		return nil, err
	}
	if account.IsArchived {
		return nil, fmt.Errorf("%w: account %s is archived", apperrors.ErrConflict, account.AccountID)
	}

	if req.FamilyID != nil {
		if err := s.requireFamilyWrite(ctx, *req.FamilyID, userID); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	txn := domain.Transaction{
		TransactionID:        uuid.NewString(),
		OwnerUserID:          userID,
		AccountID:            account.AccountID,
		TransactionType:      req.TransactionType,
		Amount:               req.Amount,
		TransactionDate:      req.TransactionDate,
		CategoryID:           req.CategoryID,
		GoalID:               req.GoalID,
		DestinationAccountID: req.DestinationAccountID,
		FamilyID:             req.FamilyID,
		Notes:                req.Notes,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	if err := validateTypeFields(txn); err != nil {
		return nil, err
	}

	// Debiting types are rejected before any mutation when the source balance
	// cannot cover them; the repository re-verifies under the row lock.
	if txn.DebitsSource() && account.Balance.LessThan(txn.Amount) {
		return nil, fmt.Errorf("%w: account %s balance %s cannot cover %s",
			apperrors.ErrInsufficientFunds, account.AccountID, account.Balance, txn.Amount)
	}

	change := portsrepo.LedgerChange{Transaction: txn, BalanceDeltas: map[string]decimal.Decimal{}}

	signed, err := txn.SignedAmount()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	change.BalanceDeltas[txn.AccountID] = signed
	if txn.DebitsSource() {
		change.EnforceSufficientFunds = []string{txn.AccountID}
	}

	touchedBudgets := map[string]domain.Budget{}

	switch txn.TransactionType {
	case domain.Transfer:
		dest, err := s.ownedAccount(ctx, *txn.DestinationAccountID, userID)
		if err != nil {
			return nil, err
		}
		if dest.IsArchived {
			return nil, fmt.Errorf("%w: account %s is archived", apperrors.ErrConflict, dest.AccountID)
		}
		if dest.CurrencyCode != account.CurrencyCode {
			return nil, fmt.Errorf("%w: cannot transfer between %s and %s accounts",
				apperrors.ErrValidation, account.CurrencyCode, dest.CurrencyCode)
		}
		change.BalanceDeltas[dest.AccountID] = txn.Amount

	case domain.Expense:
		budget, err := s.budgetFor(ctx, *txn.CategoryID, txn.FamilyID, userID, txn.TransactionDate)
		if err != nil {
			return nil, err
		}
		if budget != nil {
			change.BudgetDeltas = append(change.BudgetDeltas,
				portsrepo.BudgetSpendDelta{BudgetID: budget.BudgetID, Delta: txn.Amount})
			touchedBudgets[budget.BudgetID] = *budget
		}

	case domain.Contribution:
		goal, err := s.contributableGoal(ctx, *txn.GoalID, userID)
		if err != nil {
			return nil, err
		}
		change.GoalDelta = &portsrepo.GoalProgressDelta{
			GoalID: goal.GoalID,
			Delta:  txn.Amount,
			Contribution: &domain.GoalContribution{
				ContributionID: uuid.NewString(),
				GoalID:         goal.GoalID,
				UserID:         userID,
				TransactionID:  &txn.TransactionID,
				Amount:         txn.Amount,
				Notes:          txn.Notes,
				ContributedAt:  now,
			},
		}
	}

	result, err := s.txnRepo.CreateTransaction(ctx, change)
	if err != nil {
		s.LogError(ctx, err, "Failed to apply ledger change",
			slog.String("transaction_id", txn.TransactionID), slog.String("account_id", txn.AccountID))
		return nil, err
	}

	s.LogInfo(ctx, "Transaction created",
		slog.String("transaction_id", txn.TransactionID),
		slog.String("transaction_type", string(txn.TransactionType)),
		slog.String("amount", txn.Amount.String()))
	s.afterApply(ctx, result, touchedBudgets)
	return &txn, nil
}

func (s *ledgerService) GetTransaction(ctx context.Context, transactionID string, userID string) (*domain.Transaction, error) {
	txn, err := s.txnRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if txn.IsDeleted() {
		return nil, apperrors.ErrNotFound
	}
	if err := s.permission.CheckRead(ctx, userID, portssvc.ResourceScope{OwnerUserID: txn.OwnerUserID, FamilyID: txn.FamilyID}); err != nil {
		// Obscure existence of transactions the caller cannot see.
		return nil, apperrors.ErrNotFound
	}
	return txn, nil
}

func (s *ledgerService) UpdateTransaction(ctx context.Context, transactionID string, req dto.UpdateTransactionRequest, userID string) (*domain.Transaction, error) {
	old, err := s.editableTransaction(ctx, transactionID, userID)
	if err != nil {
		return nil, err
	}

	updated := *old
	if req.Amount != nil {
		if !req.Amount.IsPositive() {
			return nil, fmt.Errorf("%w: transaction amount must be positive", apperrors.ErrValidation)
		}
		updated.Amount = *req.Amount
	}
	if req.TransactionDate != nil {
		updated.TransactionDate = *req.TransactionDate
	}
	if req.CategoryID != nil {
		if old.TransactionType != domain.Income && old.TransactionType != domain.Expense {
			return nil, fmt.Errorf("%w: %s transactions carry no category", apperrors.ErrValidation, old.TransactionType)
		}
		updated.CategoryID = req.CategoryID
	}
	if req.Notes != nil {
		updated.Notes = *req.Notes
	}

	now := time.Now().UTC()
	updated.LastUpdatedAt = now
	updated.LastUpdatedBy = userID

	change := portsrepo.LedgerChange{Transaction: updated, BalanceDeltas: map[string]decimal.Decimal{}}

	oldSigned, err := old.SignedAmount()
	if err != nil {
		return nil, err
	}
	newSigned, err := updated.SignedAmount()
	if err != nil {
		return nil, err
	}
	if delta := newSigned.Sub(oldSigned); !delta.IsZero() {
		change.BalanceDeltas[updated.AccountID] = delta
		if updated.DebitsSource() {
			change.EnforceSufficientFunds = []string{updated.AccountID}
		}
	}
	if updated.TransactionType == domain.Transfer && !updated.Amount.Equal(old.Amount) {
		change.BalanceDeltas[*updated.DestinationAccountID] = updated.Amount.Sub(old.Amount)
	}

	touchedBudgets := map[string]domain.Budget{}
	if old.TransactionType == domain.Expense {
		deltas, budgets, err := s.expenseBudgetDeltas(ctx, old, &updated, userID)
		if err != nil {
			return nil, err
		}
		change.BudgetDeltas = deltas
		touchedBudgets = budgets
	}

	if updated.TransactionType == domain.Contribution && !updated.Amount.Equal(old.Amount) {
		change.GoalDelta = &portsrepo.GoalProgressDelta{
			GoalID:        *updated.GoalID,
			Delta:         updated.Amount.Sub(old.Amount),
			AdjustByTxn:   true,
			TransactionID: updated.TransactionID,
		}
	}

	result, err := s.txnRepo.UpdateTransaction(ctx, change)
	if err != nil {
		s.LogError(ctx, err, "Failed to apply ledger edit", slog.String("transaction_id", transactionID))
		return nil, err
	}

	s.LogInfo(ctx, "Transaction updated", slog.String("transaction_id", transactionID))
	s.afterApply(ctx, result, touchedBudgets)
	return &updated, nil
}

func (s *ledgerService) DeleteTransaction(ctx context.Context, transactionID string, userID string) error {
	old, err := s.editableTransaction(ctx, transactionID, userID)
	if err != nil {
		return err
	}

	change := portsrepo.LedgerChange{Transaction: *old, BalanceDeltas: map[string]decimal.Decimal{}}

	signed, err := old.SignedAmount()
	if err != nil {
		return err
	}
	change.BalanceDeltas[old.AccountID] = signed.Neg()
	if old.TransactionType == domain.Transfer {
		change.BalanceDeltas[*old.DestinationAccountID] = old.Amount.Neg()
	}

	touchedBudgets := map[string]domain.Budget{}
	if old.TransactionType == domain.Expense && old.CategoryID != nil {
		budget, err := s.budgetFor(ctx, *old.CategoryID, old.FamilyID, old.OwnerUserID, old.TransactionDate)
		if err != nil {
			return err
		}
		if budget != nil {
			change.BudgetDeltas = append(change.BudgetDeltas,
				portsrepo.BudgetSpendDelta{BudgetID: budget.BudgetID, Delta: old.Amount.Neg()})
			touchedBudgets[budget.BudgetID] = *budget
		}
	}
	if old.TransactionType == domain.Contribution {
		change.GoalDelta = &portsrepo.GoalProgressDelta{
			GoalID:        *old.GoalID,
			Delta:         old.Amount.Neg(),
			RemoveByTxn:   true,
			TransactionID: old.TransactionID,
		}
	}

	result, err := s.txnRepo.SoftDeleteTransaction(ctx, change, time.Now().UTC())
	if err != nil {
		s.LogError(ctx, err, "Failed to apply ledger delete", slog.String("transaction_id", transactionID))
		return err
	}

	s.LogInfo(ctx, "Transaction deleted", slog.String("transaction_id", transactionID))
	s.afterApply(ctx, result, touchedBudgets)
	return nil
}

func (s *ledgerService) ListAccountTransactions(ctx context.Context, accountID string, userID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error) {
	if _, err := s.ownedAccount(ctx, accountID, userID); err != nil {
		return nil, err
	}
	txns, next, err := s.txnRepo.ListTransactionsByAccount(ctx, accountID, clampLimit(params.Limit), params.NextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list account transactions", slog.String("account_id", accountID))
		return nil, err
	}
	return &dto.ListTransactionsResponse{Transactions: dto.ToTransactionResponses(txns), NextToken: next}, nil
}

func (s *ledgerService) ListFamilyTransactions(ctx context.Context, familyID string, userID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error) {
	if err := s.permission.CheckRead(ctx, userID, portssvc.ResourceScope{FamilyID: &familyID}); err != nil {
		return nil, err
	}
	txns, next, err := s.txnRepo.ListTransactionsByFamily(ctx, familyID, clampLimit(params.Limit), params.NextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list family transactions", slog.String("family_id", familyID))
		return nil, err
	}
	return &dto.ListTransactionsResponse{Transactions: dto.ToTransactionResponses(txns), NextToken: next}, nil
}

func (s *ledgerService) ReconcileAccount(ctx context.Context, accountID string, userID string) (*dto.ReconcileAccountResponse, error) {
	account, err := s.ownedAccount(ctx, accountID, userID)
	if err != nil {
		return nil, err
	}

	sum, err := s.txnRepo.SumSignedAmounts(ctx, accountID)
	if err != nil {
		s.LogError(ctx, err, "Failed to derive account balance", slog.String("account_id", accountID))
		return nil, err
	}
	derived := account.InitialBalance.Add(sum)

	resp := &dto.ReconcileAccountResponse{
		AccountID:       accountID,
		PreviousBalance: account.Balance,
		DerivedBalance:  derived,
	}
	if derived.Equal(account.Balance) {
		return resp, nil
	}

	resp.DriftDetected = true
	s.LogWarn(ctx, "Account balance drift repaired",
		slog.String("error", apperrors.ErrConsistencyRepair.Error()),
		slog.String("account_id", accountID),
		slog.String("stored", account.Balance.String()),
		slog.String("derived", derived.String()))
	if err := s.accountRepo.SetBalance(ctx, accountID, derived, userID, time.Now().UTC()); err != nil {
		s.LogError(ctx, err, "Failed to repair account balance", slog.String("account_id", accountID))
		return nil, err
	}
	return resp, nil
}

// ownedAccount loads the account and hides it from anyone but its owner.
func (s *ledgerService) ownedAccount(ctx context.Context, accountID, userID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account.OwnerUserID != userID {
		return nil, apperrors.ErrNotFound
	}
	return account, nil
}

// editableTransaction loads a live transaction and checks edit rights: the
// recorder always may; for family-scoped transactions a family admin also may.
func (s *ledgerService) editableTransaction(ctx context.Context, transactionID, userID string) (*domain.Transaction, error) {
	txn, err := s.txnRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if txn.IsDeleted() {
		return nil, apperrors.ErrNotFound
	}
	if txn.OwnerUserID == userID {
		return txn, nil
	}
	if txn.FamilyID != nil {
		if _, err := s.permission.RequireAdministrative(ctx, *txn.FamilyID, userID); err == nil {
			return txn, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

// requireFamilyWrite asserts the user holds an active, non-viewer membership.
func (s *ledgerService) requireFamilyWrite(ctx context.Context, familyID, userID string) error {
	membership, err := s.permission.ResolveMembership(ctx, familyID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: user %s is not a member of family %s", apperrors.ErrForbidden, userID, familyID)
		}
		return err
	}
	if !membership.IsOwner && (membership.Status != domain.MemberActive || membership.Role == domain.RoleViewer) {
		return fmt.Errorf("%w: user %s with role %s may not record family transactions",
			apperrors.ErrForbidden, userID, membership.Role)
	}
	return nil
}

// budgetFor resolves the live budget matching the expense, or nil when the
// category is unbudgeted for that date.
func (s *ledgerService) budgetFor(ctx context.Context, categoryID string, familyID *string, ownerUserID string, date time.Time) (*domain.Budget, error) {
	budget, err := s.budgetRepo.FindActiveBudgetForCategory(ctx, categoryID, familyID, ownerUserID, date)
	if err == nil {
		return budget, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}
	return s.catchUpLapsedBudget(ctx, categoryID, familyID, ownerUserID, date)
}

// catchUpLapsedBudget rolls an active budget whose period already ended
// forward until its window covers the expense date, so the expense lands in a
// tracked period instead of bypassing spend accounting until the next read
// triggers the lazy rollover.
func (s *ledgerService) catchUpLapsedBudget(ctx context.Context, categoryID string, familyID *string, ownerUserID string, date time.Time) (*domain.Budget, error) {
	budget, err := s.budgetRepo.FindCurrentBudgetForCategory(ctx, categoryID, familyID, ownerUserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if date.Before(budget.StartDate) {
		return nil, nil
	}
	now := time.Now().UTC()
	for !date.Before(budget.EndDate) {
		next := budget.Successor(uuid.NewString(), ownerUserID, now)
		old := *budget
		old.Status = domain.BudgetArchived
		old.LastUpdatedAt = now
		old.LastUpdatedBy = ownerUserID
		if err := s.budgetRepo.RolloverBudget(ctx, old, next); err != nil {
			s.LogError(ctx, err, "Failed to roll lapsed budget forward", slog.String("budget_id", budget.BudgetID))
			return nil, err
		}
		s.LogInfo(ctx, "Lapsed budget rolled forward",
			slog.String("budget_id", budget.BudgetID),
			slog.String("next_budget_id", next.BudgetID))
		budget = &next
	}
	return budget, nil
}

// contributableGoal loads the goal, checks the caller may contribute to it and
// that its lifecycle state accepts contributions.
func (s *ledgerService) contributableGoal(ctx context.Context, goalID, userID string) (*domain.Goal, error) {
	goal, err := s.goalRepo.FindGoalByID(ctx, goalID)
	if err != nil {
		return nil, err
	}
	if goal.FamilyID == nil {
		if goal.OwnerUserID != userID {
			return nil, apperrors.ErrNotFound
		}
	} else if err := s.permission.CheckCapability(ctx, userID,
		portssvc.ResourceScope{OwnerUserID: goal.OwnerUserID, FamilyID: goal.FamilyID},
		domain.CapContributeGoals); err != nil {
		return nil, err
	}
	if !goal.AcceptsContributions() {
		return nil, fmt.Errorf("%w: goal %s is %s and accepts no contributions",
			apperrors.ErrConflict, goal.GoalID, goal.Status)
	}
	return goal, nil
}

// expenseBudgetDeltas computes the budget effect of editing an expense: the
// old budget gives back the old amount, the new one absorbs the new amount,
// collapsed into a single delta when both land on the same budget.
func (s *ledgerService) expenseBudgetDeltas(ctx context.Context, old, updated *domain.Transaction, userID string) ([]portsrepo.BudgetSpendDelta, map[string]domain.Budget, error) {
	touched := map[string]domain.Budget{}

	var oldBudget, newBudget *domain.Budget
	if old.CategoryID != nil {
		b, err := s.budgetFor(ctx, *old.CategoryID, old.FamilyID, old.OwnerUserID, old.TransactionDate)
		if err != nil {
			return nil, nil, err
		}
		oldBudget = b
	}
	if updated.CategoryID != nil {
		b, err := s.budgetFor(ctx, *updated.CategoryID, updated.FamilyID, updated.OwnerUserID, updated.TransactionDate)
		if err != nil {
			return nil, nil, err
		}
		newBudget = b
	}

	var deltas []portsrepo.BudgetSpendDelta
	if oldBudget != nil && newBudget != nil && oldBudget.BudgetID == newBudget.BudgetID {
		if d := updated.Amount.Sub(old.Amount); !d.IsZero() {
			deltas = append(deltas, portsrepo.BudgetSpendDelta{BudgetID: oldBudget.BudgetID, Delta: d})
			touched[oldBudget.BudgetID] = *oldBudget
		}
		return deltas, touched, nil
	}
	if oldBudget != nil {
		deltas = append(deltas, portsrepo.BudgetSpendDelta{BudgetID: oldBudget.BudgetID, Delta: old.Amount.Neg()})
		touched[oldBudget.BudgetID] = *oldBudget
	}
	if newBudget != nil {
		deltas = append(deltas, portsrepo.BudgetSpendDelta{BudgetID: newBudget.BudgetID, Delta: updated.Amount})
		touched[newBudget.BudgetID] = *newBudget
	}
	return deltas, touched, nil
}

// afterApply handles post-commit side effects: alert notifications and goal
// completion logging. Failures here never affect the committed change.
func (s *ledgerService) afterApply(ctx context.Context, result *portsrepo.LedgerApplyResult, budgets map[string]domain.Budget) {
	if result == nil {
		return
	}
	for _, alert := range result.CreatedAlerts {
		budget, ok := budgets[alert.BudgetID]
		if !ok {
			continue
		}
		s.LogInfo(ctx, "Budget threshold alert created",
			slog.String("budget_id", alert.BudgetID),
			slog.Int("threshold", alert.Threshold))
		s.dispatchAlert(ctx, alert, budget)
	}
	if result.Goal != nil && result.Goal.Status == domain.GoalCompleted {
		s.LogInfo(ctx, "Goal reached its target",
			slog.String("goal_id", result.Goal.GoalID),
			slog.String("current_amount", result.Goal.CurrentAmount.String()))
	}
}

func (s *ledgerService) dispatchAlert(ctx context.Context, alert domain.BudgetAlert, budget domain.Budget) {
	owner, err := s.userRepo.FindUserByID(ctx, budget.OwnerUserID)
	if err != nil {
		s.LogWarn(ctx, "Alert notification skipped",
			slog.String("error", fmt.Errorf("%w: %v", apperrors.ErrExternalDegraded, err).Error()),
			slog.String("budget_id", budget.BudgetID))
		return
	}
	err = s.notify.Send(ctx, owner.Email, "budget_threshold_alert", map[string]string{
		"budget_id": budget.BudgetID,
		"threshold": fmt.Sprintf("%d", alert.Threshold),
	})
	if err != nil {
		s.LogWarn(ctx, "Alert notification failed",
			slog.String("error", fmt.Errorf("%w: %v", apperrors.ErrExternalDegraded, err).Error()),
			slog.String("budget_id", budget.BudgetID))
	}
}

// validateTypeFields enforces the field shape each transaction type requires.
func validateTypeFields(txn domain.Transaction) error {
	switch txn.TransactionType {
	case domain.Income:
		if txn.DestinationAccountID != nil || txn.GoalID != nil {
			return fmt.Errorf("%w: income transactions carry only an optional category", apperrors.ErrValidation)
		}
	case domain.Expense:
		if txn.CategoryID == nil {
			return fmt.Errorf("%w: expense transactions require a category", apperrors.ErrValidation)
		}
		if txn.DestinationAccountID != nil || txn.GoalID != nil {
			return fmt.Errorf("%w: expense transactions carry only a category", apperrors.ErrValidation)
		}
	case domain.Transfer:
		if txn.DestinationAccountID == nil {
			return fmt.Errorf("%w: transfers require a destination account", apperrors.ErrValidation)
		}
		if *txn.DestinationAccountID == txn.AccountID {
			return fmt.Errorf("%w: transfer source and destination must differ", apperrors.ErrValidation)
		}
		if txn.CategoryID != nil || txn.GoalID != nil {
			return fmt.Errorf("%w: transfers carry no category or goal", apperrors.ErrValidation)
		}
	case domain.Contribution:
		if txn.GoalID == nil {
			return fmt.Errorf("%w: contributions require a goal", apperrors.ErrValidation)
		}
		if txn.CategoryID != nil || txn.DestinationAccountID != nil {
			return fmt.Errorf("%w: contributions carry only a goal", apperrors.ErrValidation)
		}
	default:
		return fmt.Errorf("%w: unknown transaction type %q", apperrors.ErrValidation, txn.TransactionType)
	}
	return nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultPageLimit
	}
	if limit > maxPageLimit {
		return maxPageLimit
	}
	return limit
}
