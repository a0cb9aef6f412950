package models

// Category is the db row for an income or expense category.
type Category struct {
	CategoryID  string  `db:"category_id"`
	OwnerUserID *string `db:"owner_user_id"` // NULL for system-provided rows
	FamilyID    *string `db:"family_id"`
	Kind        string  `db:"kind"`
	Name        string  `db:"name"`
	Icon        string  `db:"icon"`
	Color       string  `db:"color"`
	AuditFields
}
