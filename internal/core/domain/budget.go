package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BudgetPeriod defines the recurring window a budget covers.
type BudgetPeriod string

const (
	Weekly    BudgetPeriod = "WEEKLY"
	Monthly   BudgetPeriod = "MONTHLY"
	Quarterly BudgetPeriod = "QUARTERLY"
	Yearly    BudgetPeriod = "YEARLY"
)

// BudgetStatus marks whether a budget row is the live period or an archived one.
type BudgetStatus string

const (
	BudgetActive   BudgetStatus = "ACTIVE"
	BudgetArchived BudgetStatus = "ARCHIVED"
)

// ThresholdState is the alerting state of a budget within its active period.
// It moves forward monotonically as spend increases and is re-evaluated
// (possibly backward) when transactions are edited or deleted.
type ThresholdState string

const (
	ThresholdNormal      ThresholdState = "NORMAL"
	ThresholdWarning50   ThresholdState = "WARNING50"
	ThresholdWarning75   ThresholdState = "WARNING75"
	ThresholdDanger90    ThresholdState = "DANGER90"
	ThresholdExceeded100 ThresholdState = "EXCEEDED100"
)

// AlertThresholds are the percentages at which budget alerts fire, ascending.
var AlertThresholds = []int{50, 75, 90, 100}

// Budget caps spending for one category over one period.
// Invariant: Spent == sum of non-deleted expense transaction amounts in the
// budget's category within [StartDate, EndDate]. Spent is maintained by delta
// inside the same database transaction as the triggering ledger mutation and
// re-derivable through reconciliation.
type Budget struct {
	BudgetID        string          `json:"budgetID"`
	OwnerUserID     string          `json:"ownerUserID"`
	FamilyID        *string         `json:"familyID"` // set when shared with a family
	CategoryID      string          `json:"categoryID"`
	Amount          decimal.Decimal `json:"amount"`
	Spent           decimal.Decimal `json:"spent"`
	Period          BudgetPeriod    `json:"period"`
	StartDate       time.Time       `json:"startDate"`
	EndDate         time.Time       `json:"endDate"`
	RolloverEnabled bool            `json:"rolloverEnabled"`
	Status          BudgetStatus    `json:"status"`
	AuditFields
}

// SpentPercent returns spent as a percentage of the budget amount, or zero for
// a zero-amount budget.
func (b Budget) SpentPercent() decimal.Decimal {
	if b.Amount.IsZero() {
		return decimal.Zero
	}
	return b.Spent.Div(b.Amount).Mul(decimal.NewFromInt(100))
}

// ThresholdStateFor maps a spend percentage to the budget's alerting state.
func ThresholdStateFor(percent decimal.Decimal) ThresholdState {
	switch {
	case percent.GreaterThanOrEqual(decimal.NewFromInt(100)):
		return ThresholdExceeded100
	case percent.GreaterThanOrEqual(decimal.NewFromInt(90)):
		return ThresholdDanger90
	case percent.GreaterThanOrEqual(decimal.NewFromInt(75)):
		return ThresholdWarning75
	case percent.GreaterThanOrEqual(decimal.NewFromInt(50)):
		return ThresholdWarning50
	default:
		return ThresholdNormal
	}
}

// CrossedThresholds returns every alert threshold at or below the given spend
// percentage, ascending. The budget engine creates an alert for each returned
// threshold that does not already have an un-dismissed alert this period.
func CrossedThresholds(percent decimal.Decimal) []int {
	crossed := make([]int, 0, len(AlertThresholds))
	for _, t := range AlertThresholds {
		if percent.GreaterThanOrEqual(decimal.NewFromInt(int64(t))) {
			crossed = append(crossed, t)
		}
	}
	return crossed
}

// NextPeriod returns the [start, end) window that follows the given one for
// the budget's period length. Months and longer use calendar arithmetic so a
// monthly budget starting on the 1st stays on the 1st.
func (b Budget) NextPeriod() (start, end time.Time) {
	switch b.Period {
	case Weekly:
		return b.EndDate, b.EndDate.AddDate(0, 0, 7)
	case Monthly:
		return b.EndDate, b.EndDate.AddDate(0, 1, 0)
	case Quarterly:
		return b.EndDate, b.EndDate.AddDate(0, 3, 0)
	case Yearly:
		return b.EndDate, b.EndDate.AddDate(1, 0, 0)
	default:
		return b.EndDate, b.EndDate.AddDate(0, 1, 0)
	}
}

// RolloverCarry returns the unspent amount carried into the next period when
// rollover is enabled: max(amount - spent, 0).
func (b Budget) RolloverCarry() decimal.Decimal {
	carry := b.Amount.Sub(b.Spent)
	if carry.IsNegative() {
		return decimal.Zero
	}
	return carry
}

// Successor builds the next-period budget row: a fresh ID, the following
// window, zero spend, and the unspent remainder added to the amount when
// rollover is enabled.
func (b Budget) Successor(budgetID string, userID string, now time.Time) Budget {
	start, end := b.NextPeriod()
	amount := b.Amount
	if b.RolloverEnabled {
		amount = amount.Add(b.RolloverCarry())
	}
	return Budget{
		BudgetID:        budgetID,
		OwnerUserID:     b.OwnerUserID,
		FamilyID:        b.FamilyID,
		CategoryID:      b.CategoryID,
		Amount:          amount,
		Period:          b.Period,
		StartDate:       start,
		EndDate:         end,
		RolloverEnabled: b.RolloverEnabled,
		Status:          BudgetActive,
		AuditFields: AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
}

// BudgetAlert records a threshold crossing for one budget period. At most one
// un-dismissed alert may exist per (budget, period, threshold); downward
// recomputes never delete alert history.
type BudgetAlert struct {
	AlertID        string     `json:"alertID"`
	BudgetID       string     `json:"budgetID"`
	Threshold      int        `json:"threshold"` // 50, 75, 90 or 100
	PeriodStart    time.Time  `json:"periodStart"`
	TriggeredAt    time.Time  `json:"triggeredAt"`
	AcknowledgedAt *time.Time `json:"acknowledgedAt"`
}
