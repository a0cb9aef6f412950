package dto

import (
	"time"

	"github.com/fintrove/family_finance_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateBudgetRequest defines the data needed to create a budget.
type CreateBudgetRequest struct {
	CategoryID      string              `json:"categoryID" binding:"required"`
	Amount          decimal.Decimal     `json:"amount" binding:"required,gt=0"`
	Period          domain.BudgetPeriod `json:"period" binding:"required,oneof=WEEKLY MONTHLY QUARTERLY YEARLY"`
	StartDate       time.Time           `json:"startDate" binding:"required"`
	FamilyID        *string             `json:"familyID"`
	RolloverEnabled bool                `json:"rolloverEnabled"`
}

// UpdateBudgetRequest defines the editable fields of a budget.
type UpdateBudgetRequest struct {
	Amount          *decimal.Decimal `json:"amount"`
	RolloverEnabled *bool            `json:"rolloverEnabled"`
}

// BudgetResponse defines the data returned for a budget, including the
// derived alerting state for the current period.
type BudgetResponse struct {
	BudgetID        string                `json:"budgetID"`
	CategoryID      string                `json:"categoryID"`
	FamilyID        *string               `json:"familyID,omitempty"`
	Amount          decimal.Decimal       `json:"amount"`
	Spent           decimal.Decimal       `json:"spent"`
	SpentPercent    decimal.Decimal       `json:"spentPercent"`
	ThresholdState  domain.ThresholdState `json:"thresholdState"`
	Period          domain.BudgetPeriod   `json:"period"`
	StartDate       time.Time             `json:"startDate"`
	EndDate         time.Time             `json:"endDate"`
	RolloverEnabled bool                  `json:"rolloverEnabled"`
	Status          domain.BudgetStatus   `json:"status"`
}

// ToBudgetResponse converts a domain.Budget to its response DTO.
func ToBudgetResponse(b *domain.Budget) BudgetResponse {
	percent := b.SpentPercent()
	return BudgetResponse{
		BudgetID:        b.BudgetID,
		CategoryID:      b.CategoryID,
		FamilyID:        b.FamilyID,
		Amount:          b.Amount,
		Spent:           b.Spent,
		SpentPercent:    percent,
		ThresholdState:  domain.ThresholdStateFor(percent),
		Period:          b.Period,
		StartDate:       b.StartDate,
		EndDate:         b.EndDate,
		RolloverEnabled: b.RolloverEnabled,
		Status:          b.Status,
	}
}

// ToBudgetResponses converts a slice of budgets to response DTOs.
func ToBudgetResponses(budgets []domain.Budget) []BudgetResponse {
	res := make([]BudgetResponse, len(budgets))
	for i := range budgets {
		res[i] = ToBudgetResponse(&budgets[i])
	}
	return res
}

// BudgetAlertResponse defines the data returned for a budget alert.
type BudgetAlertResponse struct {
	AlertID        string     `json:"alertID"`
	BudgetID       string     `json:"budgetID"`
	Threshold      int        `json:"threshold"`
	PeriodStart    time.Time  `json:"periodStart"`
	TriggeredAt    time.Time  `json:"triggeredAt"`
	AcknowledgedAt *time.Time `json:"acknowledgedAt,omitempty"`
}

// ToBudgetAlertResponses converts a slice of alerts to response DTOs.
func ToBudgetAlertResponses(alerts []domain.BudgetAlert) []BudgetAlertResponse {
	res := make([]BudgetAlertResponse, len(alerts))
	for i, a := range alerts {
		res[i] = BudgetAlertResponse{
			AlertID:        a.AlertID,
			BudgetID:       a.BudgetID,
			Threshold:      a.Threshold,
			PeriodStart:    a.PeriodStart,
			TriggeredAt:    a.TriggeredAt,
			AcknowledgedAt: a.AcknowledgedAt,
		}
	}
	return res
}
