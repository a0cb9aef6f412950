package services

import (
	"github.com/fintrove/family_finance_app/internal/core/ports/repositories"
	portssvc "github.com/fintrove/family_finance_app/internal/core/ports/services"
	"github.com/fintrove/family_finance_app/internal/platform/config"
	"github.com/fintrove/family_finance_app/internal/platform/notifier"
)

// NewServiceContainer wires every service against the repository provider.
func NewServiceContainer(repos *repositories.RepositoryProvider, cfg *config.Config, notify notifier.Notifier) *portssvc.ServiceContainer {
	permission := NewPermissionService(repos.FamilyRepo, repos.MembershipCache)
	// The permission engine doubles as the cache refresher.
	refresher := permission.(portssvc.MembershipCacheRefresher)

	ledger := NewLedgerService(repos.TransactionRepo, repos.AccountRepo, repos.BudgetRepo, repos.GoalRepo, repos.UserRepo, permission, notify)

	return &portssvc.ServiceContainer{
		Auth:       NewAuthService(repos.UserRepo, cfg),
		User:       NewUserService(repos.UserRepo),
		Account:    NewAccountService(repos.AccountRepo),
		Category:   NewCategoryService(repos.CategoryRepo, permission),
		Ledger:     ledger,
		Budget:     NewBudgetService(repos.BudgetRepo, repos.CategoryRepo, repos.TransactionRepo, permission),
		Goal:       NewGoalService(repos.GoalRepo, ledger, permission),
		Family:     NewFamilyService(repos.FamilyRepo, repos.UserRepo, permission, refresher, notify),
		Permission: permission,
	}
}
