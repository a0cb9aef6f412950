package domain_test

import (
	"testing"
	"time"

	"github.com/fintrove/family_finance_app/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestBudget_SpentPercent(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		spent  string
		want   string
	}{
		{name: "half spent", amount: "1000", spent: "500", want: "50"},
		{name: "overspent", amount: "200", spent: "300", want: "150"},
		{name: "nothing spent", amount: "1000", spent: "0", want: "0"},
		{name: "zero amount budget", amount: "0", spent: "50", want: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := domain.Budget{
				Amount: decimal.RequireFromString(tt.amount),
				Spent:  decimal.RequireFromString(tt.spent),
			}
			assert.True(t, b.SpentPercent().Equal(decimal.RequireFromString(tt.want)),
				"got %s", b.SpentPercent())
		})
	}
}

func TestThresholdStateFor(t *testing.T) {
	tests := []struct {
		percent string
		want    domain.ThresholdState
	}{
		{percent: "0", want: domain.ThresholdNormal},
		{percent: "49.99", want: domain.ThresholdNormal},
		{percent: "50", want: domain.ThresholdWarning50},
		{percent: "74.9", want: domain.ThresholdWarning50},
		{percent: "75", want: domain.ThresholdWarning75},
		{percent: "90", want: domain.ThresholdDanger90},
		{percent: "99.99", want: domain.ThresholdDanger90},
		{percent: "100", want: domain.ThresholdExceeded100},
		{percent: "150", want: domain.ThresholdExceeded100},
	}

	for _, tt := range tests {
		t.Run(tt.percent, func(t *testing.T) {
			got := domain.ThresholdStateFor(decimal.RequireFromString(tt.percent))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCrossedThresholds(t *testing.T) {
	tests := []struct {
		percent string
		want    []int
	}{
		{percent: "10", want: []int{}},
		{percent: "50", want: []int{50}},
		{percent: "56", want: []int{50}},
		{percent: "89.9", want: []int{50, 75}},
		{percent: "94", want: []int{50, 75, 90}},
		{percent: "120", want: []int{50, 75, 90, 100}},
	}

	for _, tt := range tests {
		t.Run(tt.percent, func(t *testing.T) {
			got := domain.CrossedThresholds(decimal.RequireFromString(tt.percent))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBudget_NextPeriod(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		period    domain.BudgetPeriod
		end       time.Time
		wantStart time.Time
		wantEnd   time.Time
	}{
		{
			name:      "weekly",
			period:    domain.Weekly,
			end:       start.AddDate(0, 0, 7),
			wantStart: start.AddDate(0, 0, 7),
			wantEnd:   start.AddDate(0, 0, 14),
		},
		{
			name:      "monthly stays on the 1st",
			period:    domain.Monthly,
			end:       time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
			wantStart: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "quarterly",
			period:    domain.Quarterly,
			end:       time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
			wantStart: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "yearly",
			period:    domain.Yearly,
			end:       time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			wantStart: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := domain.Budget{Period: tt.period, StartDate: start, EndDate: tt.end}
			gotStart, gotEnd := b.NextPeriod()
			assert.Equal(t, tt.wantStart, gotStart)
			assert.Equal(t, tt.wantEnd, gotEnd)
		})
	}
}

func TestBudget_Successor(t *testing.T) {
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	base := domain.Budget{
		BudgetID:    "old",
		OwnerUserID: "owner",
		CategoryID:  "cat",
		Amount:      decimal.RequireFromString("400"),
		Spent:       decimal.RequireFromString("150"),
		Period:      domain.Monthly,
		StartDate:   start,
		EndDate:     start.AddDate(0, 1, 0),
		Status:      domain.BudgetActive,
	}
	now := time.Date(2026, 9, 2, 12, 0, 0, 0, time.UTC)

	t.Run("without rollover", func(t *testing.T) {
		next := base.Successor("new", "owner", now)
		assert.Equal(t, "new", next.BudgetID)
		assert.True(t, next.StartDate.Equal(base.EndDate))
		assert.True(t, next.EndDate.Equal(base.EndDate.AddDate(0, 1, 0)))
		assert.True(t, next.Amount.Equal(base.Amount), "got %s", next.Amount)
		assert.True(t, next.Spent.IsZero())
		assert.Equal(t, domain.BudgetActive, next.Status)
	})

	t.Run("with rollover carry", func(t *testing.T) {
		b := base
		b.RolloverEnabled = true
		next := b.Successor("new", "owner", now)
		assert.True(t, next.Amount.Equal(decimal.RequireFromString("650")), "got %s", next.Amount)
	})
}

func TestBudget_RolloverCarry(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		spent  string
		want   string
	}{
		{name: "surplus carries", amount: "500", spent: "320", want: "180"},
		{name: "exactly spent", amount: "500", spent: "500", want: "0"},
		{name: "overspent clamps to zero", amount: "500", spent: "610", want: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := domain.Budget{
				Amount: decimal.RequireFromString(tt.amount),
				Spent:  decimal.RequireFromString(tt.spent),
			}
			assert.True(t, b.RolloverCarry().Equal(decimal.RequireFromString(tt.want)),
				"got %s", b.RolloverCarry())
		})
	}
}
