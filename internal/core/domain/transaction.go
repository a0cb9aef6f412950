package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType defines the kind of ledger movement.
type TransactionType string

const (
	Income       TransactionType = "INCOME"
	Expense      TransactionType = "EXPENSE"
	Transfer     TransactionType = "TRANSFER"
	Contribution TransactionType = "CONTRIBUTION"
)

// Transaction is a single ledger movement. Amount is always a positive
// magnitude; the type determines the sign applied to the source account.
// Edited and deleted transactions are retained (soft delete) so the full
// history stays re-derivable for reconciliation.
type Transaction struct {
	TransactionID        string          `json:"transactionID"`
	OwnerUserID          string          `json:"ownerUserID"`
	AccountID            string          `json:"accountID"`
	TransactionType      TransactionType `json:"transactionType"`
	Amount               decimal.Decimal `json:"amount"`
	TransactionDate      time.Time       `json:"transactionDate"`
	CategoryID           *string         `json:"categoryID"`           // nil for TRANSFER and CONTRIBUTION
	GoalID               *string         `json:"goalID"`               // set for CONTRIBUTION
	DestinationAccountID *string         `json:"destinationAccountID"` // set for TRANSFER
	FamilyID             *string         `json:"familyID"`             // set when the resource is family-scoped
	Notes                string          `json:"notes"`
	DeletedAt            *time.Time      `json:"deletedAt"`
	AuditFields
}

// IsDeleted reports whether the transaction has been soft deleted.
func (t Transaction) IsDeleted() bool {
	return t.DeletedAt != nil
}

// SignedAmount returns the balance effect of the transaction on its source
// account. INCOME adds funds; EXPENSE, TRANSFER and CONTRIBUTION remove them.
func (t Transaction) SignedAmount() (decimal.Decimal, error) {
	switch t.TransactionType {
	case Income:
		return t.Amount, nil
	case Expense, Transfer, Contribution:
		return t.Amount.Neg(), nil
	default:
		return decimal.Zero, fmt.Errorf("unknown transaction type %q for transaction %s", t.TransactionType, t.TransactionID)
	}
}

// DebitsSource reports whether the transaction removes funds from its source
// account, which is the set of types subject to the balance precheck.
func (t Transaction) DebitsSource() bool {
	return t.TransactionType == Transfer || t.TransactionType == Contribution
}
