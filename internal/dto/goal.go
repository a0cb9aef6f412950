package dto

import (
	"time"

	"github.com/fintrove/family_finance_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateGoalRequest defines the data needed to create a savings goal.
type CreateGoalRequest struct {
	Name         string              `json:"name" binding:"required"`
	TargetAmount decimal.Decimal     `json:"targetAmount" binding:"required,gt=0"`
	Priority     domain.GoalPriority `json:"priority" binding:"omitempty,oneof=LOW MEDIUM HIGH"`
	FamilyID     *string             `json:"familyID"`
	TargetDate   *time.Time          `json:"targetDate"`
}

// UpdateGoalRequest defines the editable fields of a goal.
type UpdateGoalRequest struct {
	Name         *string              `json:"name"`
	TargetAmount *decimal.Decimal     `json:"targetAmount"`
	Priority     *domain.GoalPriority `json:"priority"`
	TargetDate   *time.Time           `json:"targetDate"`
}

// UpdateGoalStatusRequest moves a goal between in-progress, paused and
// cancelled. Completion is derived from progress, never set directly.
type UpdateGoalStatusRequest struct {
	Status domain.GoalStatus `json:"status" binding:"required,oneof=IN_PROGRESS PAUSED CANCELLED"`
}

// ContributeRequest defines a contribution to a goal from a source account.
type ContributeRequest struct {
	AccountID string          `json:"accountID" binding:"required"`
	Amount    decimal.Decimal `json:"amount" binding:"required,gt=0"`
	Notes     string          `json:"notes"`
}

// GoalResponse defines the data returned for a goal.
type GoalResponse struct {
	GoalID        string              `json:"goalID"`
	Name          string              `json:"name"`
	FamilyID      *string             `json:"familyID,omitempty"`
	TargetAmount  decimal.Decimal     `json:"targetAmount"`
	CurrentAmount decimal.Decimal     `json:"currentAmount"`
	Priority      domain.GoalPriority `json:"priority"`
	Status        domain.GoalStatus   `json:"status"`
	TargetDate    *time.Time          `json:"targetDate,omitempty"`
	CreatedAt     time.Time           `json:"createdAt"`
}

// ToGoalResponse converts a domain.Goal to its response DTO.
func ToGoalResponse(g *domain.Goal) GoalResponse {
	return GoalResponse{
		GoalID:        g.GoalID,
		Name:          g.Name,
		FamilyID:      g.FamilyID,
		TargetAmount:  g.TargetAmount,
		CurrentAmount: g.CurrentAmount,
		Priority:      g.Priority,
		Status:        g.Status,
		TargetDate:    g.TargetDate,
		CreatedAt:     g.CreatedAt,
	}
}

// ToGoalResponses converts a slice of goals to response DTOs.
func ToGoalResponses(goals []domain.Goal) []GoalResponse {
	res := make([]GoalResponse, len(goals))
	for i := range goals {
		res[i] = ToGoalResponse(&goals[i])
	}
	return res
}

// ContributionResponse defines the data returned for a goal contribution.
type ContributionResponse struct {
	ContributionID string          `json:"contributionID"`
	GoalID         string          `json:"goalID"`
	UserID         string          `json:"userID"`
	TransactionID  *string         `json:"transactionID,omitempty"`
	Amount         decimal.Decimal `json:"amount"`
	Notes          string          `json:"notes"`
	ContributedAt  time.Time       `json:"contributedAt"`
}

// ToContributionResponses converts contributions to response DTOs.
func ToContributionResponses(contributions []domain.GoalContribution) []ContributionResponse {
	res := make([]ContributionResponse, len(contributions))
	for i, c := range contributions {
		res[i] = ContributionResponse{
			ContributionID: c.ContributionID,
			GoalID:         c.GoalID,
			UserID:         c.UserID,
			TransactionID:  c.TransactionID,
			Amount:         c.Amount,
			Notes:          c.Notes,
			ContributedAt:  c.ContributedAt,
		}
	}
	return res
}

// ReconcileGoalResponse reports the outcome of a goal reconciliation.
type ReconcileGoalResponse struct {
	GoalID         string            `json:"goalID"`
	PreviousAmount decimal.Decimal   `json:"previousAmount"`
	DerivedAmount  decimal.Decimal   `json:"derivedAmount"`
	DriftDetected  bool              `json:"driftDetected"`
	Status         domain.GoalStatus `json:"status"`
}
