package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Budget is the db row for a category spending cap over one period.
type Budget struct {
	BudgetID        string          `db:"budget_id"`
	OwnerUserID     string          `db:"owner_user_id"`
	FamilyID        *string         `db:"family_id"`
	CategoryID      string          `db:"category_id"`
	Amount          decimal.Decimal `db:"amount"`
	Spent           decimal.Decimal `db:"spent"`
	Period          string          `db:"period"`
	StartDate       time.Time       `db:"start_date"`
	EndDate         time.Time       `db:"end_date"`
	RolloverEnabled bool            `db:"rollover_enabled"`
	Status          string          `db:"status"`
	AuditFields
}

// BudgetAlert is the db row for a threshold crossing. The schema enforces at
// most one un-dismissed alert per (budget_id, period_start, threshold) with a
// partial unique index.
type BudgetAlert struct {
	AlertID        string     `db:"alert_id"`
	BudgetID       string     `db:"budget_id"`
	Threshold      int        `db:"threshold"`
	PeriodStart    time.Time  `db:"period_start"`
	TriggeredAt    time.Time  `db:"triggered_at"`
	AcknowledgedAt *time.Time `db:"acknowledged_at"`
}
