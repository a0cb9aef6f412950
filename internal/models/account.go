package models

import (
	"github.com/shopspring/decimal"
)

// AccountType mirrors domain.AccountType at the storage layer.
type AccountType string

// Account is the db row for a financial account.
type Account struct {
	AccountID      string          `db:"account_id"`
	OwnerUserID    string          `db:"owner_user_id"`
	Name           string          `db:"name"`
	AccountType    AccountType     `db:"account_type"`
	CurrencyCode   string          `db:"currency_code"`
	InitialBalance decimal.Decimal `db:"initial_balance"`
	Balance        decimal.Decimal `db:"balance"`
	IsArchived     bool            `db:"is_archived"`
	AuditFields
}
