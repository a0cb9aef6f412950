package domain_test

import (
	"testing"

	"github.com/fintrove/family_finance_app/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestGoal_StatusForProgress(t *testing.T) {
	target := decimal.NewFromInt(1000)

	tests := []struct {
		name    string
		status  domain.GoalStatus
		current string
		want    domain.GoalStatus
	}{
		{name: "below target stays in progress", status: domain.GoalInProgress, current: "999.99", want: domain.GoalInProgress},
		{name: "reaching target completes", status: domain.GoalInProgress, current: "1000", want: domain.GoalCompleted},
		{name: "over target completes", status: domain.GoalInProgress, current: "1200", want: domain.GoalCompleted},
		{name: "completion reverses when progress drops", status: domain.GoalCompleted, current: "800", want: domain.GoalInProgress},
		{name: "paused is sticky", status: domain.GoalPaused, current: "1200", want: domain.GoalPaused},
		{name: "cancelled is sticky", status: domain.GoalCancelled, current: "1200", want: domain.GoalCancelled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := domain.Goal{TargetAmount: target, Status: tt.status}
			got := g.StatusForProgress(decimal.RequireFromString(tt.current))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGoal_AcceptsContributions(t *testing.T) {
	tests := []struct {
		status domain.GoalStatus
		want   bool
	}{
		{status: domain.GoalInProgress, want: true},
		{status: domain.GoalCompleted, want: true},
		{status: domain.GoalPaused, want: false},
		{status: domain.GoalCancelled, want: false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			g := domain.Goal{Status: tt.status}
			assert.Equal(t, tt.want, g.AcceptsContributions())
		})
	}
}
