package dto

import (
	"time"

	"github.com/fintrove/family_finance_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateTransactionRequest defines the data needed to record a ledger movement.
type CreateTransactionRequest struct {
	AccountID            string                 `json:"accountID" binding:"required"`
	TransactionType      domain.TransactionType `json:"transactionType" binding:"required,oneof=INCOME EXPENSE TRANSFER CONTRIBUTION"`
	Amount               decimal.Decimal        `json:"amount" binding:"required,gt=0"`
	TransactionDate      time.Time              `json:"transactionDate" binding:"required"`
	CategoryID           *string                `json:"categoryID"`
	GoalID               *string                `json:"goalID"`
	DestinationAccountID *string                `json:"destinationAccountID"`
	FamilyID             *string                `json:"familyID"`
	Notes                string                 `json:"notes"`
}

// UpdateTransactionRequest defines the editable fields of a transaction.
// Pointers distinguish fields not provided from zero-value updates.
type UpdateTransactionRequest struct {
	Amount          *decimal.Decimal `json:"amount"`
	TransactionDate *time.Time       `json:"transactionDate"`
	CategoryID      *string          `json:"categoryID"`
	Notes           *string          `json:"notes"`
}

// TransactionResponse defines the data returned for a transaction.
type TransactionResponse struct {
	TransactionID        string                 `json:"transactionID"`
	AccountID            string                 `json:"accountID"`
	TransactionType      domain.TransactionType `json:"transactionType"`
	Amount               decimal.Decimal        `json:"amount"`
	TransactionDate      time.Time              `json:"transactionDate"`
	CategoryID           *string                `json:"categoryID,omitempty"`
	GoalID               *string                `json:"goalID,omitempty"`
	DestinationAccountID *string                `json:"destinationAccountID,omitempty"`
	FamilyID             *string                `json:"familyID,omitempty"`
	Notes                string                 `json:"notes"`
	CreatedAt            time.Time              `json:"createdAt"`
	CreatedBy            string                 `json:"createdBy"`
}

// ToTransactionResponse converts a domain.Transaction to its response DTO.
func ToTransactionResponse(t *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID:        t.TransactionID,
		AccountID:            t.AccountID,
		TransactionType:      t.TransactionType,
		Amount:               t.Amount,
		TransactionDate:      t.TransactionDate,
		CategoryID:           t.CategoryID,
		GoalID:               t.GoalID,
		DestinationAccountID: t.DestinationAccountID,
		FamilyID:             t.FamilyID,
		Notes:                t.Notes,
		CreatedAt:            t.CreatedAt,
		CreatedBy:            t.CreatedBy,
	}
}

// ToTransactionResponses converts a slice of transactions to response DTOs.
func ToTransactionResponses(txns []domain.Transaction) []TransactionResponse {
	res := make([]TransactionResponse, len(txns))
	for i := range txns {
		res[i] = ToTransactionResponse(&txns[i])
	}
	return res
}

// ListTransactionsParams holds pagination parameters for history queries.
type ListTransactionsParams struct {
	Limit     int     `form:"limit,default=20"`
	NextToken *string `form:"nextToken"`
}

// ListTransactionsResponse wraps a page of transactions. This is also the
// read-only snapshot shape polled by external forecasting services.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	NextToken    *string               `json:"nextToken,omitempty"`
}
