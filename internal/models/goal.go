package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Goal is the db row for a savings goal.
type Goal struct {
	GoalID        string          `db:"goal_id"`
	OwnerUserID   string          `db:"owner_user_id"`
	FamilyID      *string         `db:"family_id"`
	Name          string          `db:"name"`
	TargetAmount  decimal.Decimal `db:"target_amount"`
	CurrentAmount decimal.Decimal `db:"current_amount"`
	Priority      string          `db:"priority"`
	Status        string          `db:"status"`
	TargetDate    *time.Time      `db:"target_date"`
	AuditFields
}

// GoalContribution is the db row for one addition to a goal.
type GoalContribution struct {
	ContributionID string          `db:"contribution_id"`
	GoalID         string          `db:"goal_id"`
	UserID         string          `db:"user_id"`
	TransactionID  *string         `db:"transaction_id"` // SET NULL when the transaction row is removed
	Amount         decimal.Decimal `db:"amount"`
	Notes          string          `db:"notes"`
	ContributedAt  time.Time       `db:"contributed_at"`
}
