package domain

import (
	"github.com/shopspring/decimal"
)

// AccountType defines the kind of financial account.
type AccountType string

const (
	Checking   AccountType = "CHECKING"
	Savings    AccountType = "SAVINGS"
	Credit     AccountType = "CREDIT"
	Cash       AccountType = "CASH"
	Investment AccountType = "INVESTMENT"
)

// Account represents a financial account owned by a single user.
// Invariant: Balance == InitialBalance + sum of signed amounts of all
// non-deleted transactions touching this account. The balance column is
// only ever mutated through the ledger service inside a database
// transaction; ReconcileAccount re-derives it from history.
type Account struct {
	AccountID      string          `json:"accountID"`
	OwnerUserID    string          `json:"ownerUserID"`
	Name           string          `json:"name"`
	AccountType    AccountType     `json:"accountType"`
	CurrencyCode   string          `json:"currencyCode"`
	InitialBalance decimal.Decimal `json:"initialBalance"`
	Balance        decimal.Decimal `json:"balance"`
	IsArchived     bool            `json:"isArchived"` // soft archive; rows are never hard-deleted while referenced
	AuditFields
}
