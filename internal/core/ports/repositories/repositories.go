package repositories

// RepositoryProvider bundles every repository implementation for service
// container construction.
type RepositoryProvider struct {
	UserRepo        UserRepository
	AccountRepo     AccountRepository
	CategoryRepo    CategoryRepository
	TransactionRepo TransactionRepository
	BudgetRepo      BudgetRepository
	GoalRepo        GoalRepository
	FamilyRepo      FamilyRepository
	MembershipCache MembershipCache
}
