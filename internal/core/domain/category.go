package domain

// CategoryKind separates income categories from expense categories.
type CategoryKind string

const (
	IncomeCategory  CategoryKind = "INCOME"
	ExpenseCategory CategoryKind = "EXPENSE"
)

// Category labels income and expense transactions. System-provided rows have a
// nil owner. Categories referenced by transactions or budgets are never
// cascaded away (RESTRICT in the schema).
type Category struct {
	CategoryID  string       `json:"categoryID"`
	OwnerUserID *string      `json:"ownerUserID"` // nil for system-provided categories
	FamilyID    *string      `json:"familyID"`    // set for family-shared categories
	Kind        CategoryKind `json:"kind"`
	Name        string       `json:"name"`
	Icon        string       `json:"icon"`
	Color       string       `json:"color"`
	AuditFields
}
