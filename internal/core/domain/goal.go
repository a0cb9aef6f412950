package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// GoalStatus is the lifecycle state of a savings goal.
type GoalStatus string

const (
	GoalInProgress GoalStatus = "IN_PROGRESS"
	GoalCompleted  GoalStatus = "COMPLETED"
	GoalPaused     GoalStatus = "PAUSED"
	GoalCancelled  GoalStatus = "CANCELLED"
)

// GoalPriority orders goals for display and contribution suggestions.
type GoalPriority string

const (
	PriorityLow    GoalPriority = "LOW"
	PriorityMedium GoalPriority = "MEDIUM"
	PriorityHigh   GoalPriority = "HIGH"
)

// Goal is a savings target. Invariant: CurrentAmount == sum of
// GoalContribution amounts for the goal; maintained by delta inside the same
// database transaction as each contribution and re-derivable via ReconcileGoal.
type Goal struct {
	GoalID        string          `json:"goalID"`
	OwnerUserID   string          `json:"ownerUserID"`
	FamilyID      *string         `json:"familyID"` // set when shared with a family
	Name          string          `json:"name"`
	TargetAmount  decimal.Decimal `json:"targetAmount"`
	CurrentAmount decimal.Decimal `json:"currentAmount"`
	Priority      GoalPriority    `json:"priority"`
	Status        GoalStatus      `json:"status"`
	TargetDate    *time.Time      `json:"targetDate"`
	AuditFields
}

// StatusForProgress returns the status the goal should hold for the given
// progress. Completion is reversible: dropping below target moves a completed
// goal back to in-progress. Paused and cancelled goals keep their state.
func (g Goal) StatusForProgress(current decimal.Decimal) GoalStatus {
	if g.Status == GoalPaused || g.Status == GoalCancelled {
		return g.Status
	}
	if current.GreaterThanOrEqual(g.TargetAmount) {
		return GoalCompleted
	}
	return GoalInProgress
}

// AcceptsContributions reports whether the goal may receive contributions.
func (g Goal) AcceptsContributions() bool {
	return g.Status == GoalInProgress || g.Status == GoalCompleted
}

// GoalContribution records one addition to a goal. Rows are only created by
// the goal service's Contribute operation, never directly.
type GoalContribution struct {
	ContributionID string          `json:"contributionID"`
	GoalID         string          `json:"goalID"`
	UserID         string          `json:"userID"`
	TransactionID  *string         `json:"transactionID"` // nil when the linked transaction was hard-removed
	Amount         decimal.Decimal `json:"amount"`
	Notes          string          `json:"notes"`
	ContributedAt  time.Time       `json:"contributedAt"`
}
