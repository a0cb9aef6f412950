package domain_test

import (
	"testing"

	"github.com/fintrove/family_finance_app/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestMembership_Allows(t *testing.T) {
	tests := []struct {
		name       string
		membership domain.Membership
		capability domain.Capability
		want       bool
	}{
		{
			name:       "owner holds everything",
			membership: domain.Membership{IsOwner: true},
			capability: domain.CapManageBudgets,
			want:       true,
		},
		{
			name:       "admin holds everything",
			membership: domain.Membership{Role: domain.RoleAdmin, Status: domain.MemberActive},
			capability: domain.CapInviteMembers,
			want:       true,
		},
		{
			name: "viewer is read-only regardless of flags",
			membership: domain.Membership{
				Role:         domain.RoleViewer,
				Status:       domain.MemberActive,
				Capabilities: domain.FullCapabilities(),
			},
			capability: domain.CapCreateGoals,
			want:       false,
		},
		{
			name: "member with flag",
			membership: domain.Membership{
				Role:         domain.RoleMember,
				Status:       domain.MemberActive,
				Capabilities: domain.Capabilities{CanContributeGoals: true},
			},
			capability: domain.CapContributeGoals,
			want:       true,
		},
		{
			name: "member without flag",
			membership: domain.Membership{
				Role:         domain.RoleMember,
				Status:       domain.MemberActive,
				Capabilities: domain.Capabilities{CanContributeGoals: true},
			},
			capability: domain.CapManageBudgets,
			want:       false,
		},
		{
			name: "inactive member allows nothing",
			membership: domain.Membership{
				Role:         domain.RoleAdmin,
				Status:       domain.MemberRemoved,
				Capabilities: domain.FullCapabilities(),
			},
			capability: domain.CapViewBudgets,
			want:       false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.membership.Allows(tt.capability))
		})
	}
}

func TestMembership_CanAdminister(t *testing.T) {
	assert.True(t, domain.Membership{IsOwner: true}.CanAdminister())
	assert.True(t, domain.Membership{Role: domain.RoleAdmin, Status: domain.MemberActive}.CanAdminister())
	assert.False(t, domain.Membership{Role: domain.RoleAdmin, Status: domain.MemberRemoved}.CanAdminister())
	assert.False(t, domain.Membership{Role: domain.RoleMember, Status: domain.MemberActive}.CanAdminister())
}

func TestDefaultMemberCapabilities(t *testing.T) {
	caps := domain.DefaultMemberCapabilities()
	assert.True(t, caps.CanCreateGoals)
	assert.True(t, caps.CanViewBudgets)
	assert.True(t, caps.CanContributeGoals)
	assert.False(t, caps.CanInviteMembers)
	assert.False(t, caps.CanManageBudgets)
}
