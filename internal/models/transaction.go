package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType mirrors domain.TransactionType at the storage layer.
type TransactionType string

// Transaction is the db row for a ledger movement. Nullable references use
// pointers; soft-deleted rows keep their data and set deleted_at.
type Transaction struct {
	TransactionID        string          `db:"transaction_id"`
	OwnerUserID          string          `db:"owner_user_id"`
	AccountID            string          `db:"account_id"`
	TransactionType      TransactionType `db:"transaction_type"`
	Amount               decimal.Decimal `db:"amount"`
	TransactionDate      time.Time       `db:"transaction_date"`
	CategoryID           *string         `db:"category_id"`
	GoalID               *string         `db:"goal_id"`
	DestinationAccountID *string         `db:"destination_account_id"`
	FamilyID             *string         `db:"family_id"`
	Notes                string          `db:"notes"`
	DeletedAt            *time.Time      `db:"deleted_at"`
	AuditFields
}
