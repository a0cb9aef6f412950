package pgsql

import (
	portsrepo "github.com/fintrove/family_finance_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider wires every pgsql repository plus the externally
// provided membership cache.
func NewRepositoryProvider(dbPool *pgxpool.Pool, membershipCache portsrepo.MembershipCache) portsrepo.RepositoryProvider {
	userRepo := newPgxUserRepository(dbPool)
	accountRepo := newPgxAccountRepository(dbPool)
	categoryRepo := newPgxCategoryRepository(dbPool)
	budgetRepo := newPgxBudgetRepository(dbPool)
	goalRepo := newPgxGoalRepository(dbPool)
	transactionRepo := newPgxTransactionRepository(dbPool, accountRepo, budgetRepo, goalRepo)
	familyRepo := newPgxFamilyRepository(dbPool)

	return portsrepo.RepositoryProvider{
		UserRepo:        userRepo,
		AccountRepo:     accountRepo,
		CategoryRepo:    categoryRepo,
		TransactionRepo: transactionRepo,
		BudgetRepo:      budgetRepo,
		GoalRepo:        goalRepo,
		FamilyRepo:      familyRepo,
		MembershipCache: membershipCache,
	}
}
