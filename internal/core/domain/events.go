package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionApplied describes a committed ledger mutation as seen by the
// budget and goal engines. The delta is the change in signed amount relative
// to the previous state: positive for a new expense, negative when an expense
// is deleted or edited down. Consumers run inside the same database
// transaction as the originating mutation.
type TransactionApplied struct {
	TransactionID   string
	AccountID       string
	OwnerUserID     string
	FamilyID        *string
	TransactionType TransactionType
	CategoryID      *string
	GoalID          *string
	AmountDelta     decimal.Decimal
	Date            time.Time
}

// MembershipChanged describes a family membership mutation consumed by the
// membership-lookup cache refresher.
type MembershipChanged struct {
	FamilyID string
	UserID   string
	Removed  bool
	Version  int64
}
