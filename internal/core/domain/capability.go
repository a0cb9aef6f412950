package domain

// FamilyRole is a stored member role. The family owner is implicit via
// Family.CreatedBy and always outranks every stored role.
type FamilyRole string

const (
	RoleAdmin  FamilyRole = "ADMIN"
	RoleMember FamilyRole = "MEMBER"
	RoleViewer FamilyRole = "VIEWER"
)

// Capability is a named permission bit checked before mutations on shared
// resources. The set is closed: capabilities are fixed booleans, not an open
// map.
type Capability string

const (
	CapCreateGoals     Capability = "can_create_goals"
	CapViewBudgets     Capability = "can_view_budgets"
	CapContributeGoals Capability = "can_contribute_goals"
	CapInviteMembers   Capability = "can_invite_members"
	CapManageBudgets   Capability = "can_manage_budgets"
)

// AdministrativeCapabilities are implicitly granted to the owner and admins.
var AdministrativeCapabilities = map[Capability]bool{
	CapInviteMembers: true,
	CapManageBudgets: true,
}

// Capabilities are the per-member permission flags. Viewers are read-only
// regardless of flags.
type Capabilities struct {
	CanCreateGoals     bool `json:"canCreateGoals"`
	CanViewBudgets     bool `json:"canViewBudgets"`
	CanContributeGoals bool `json:"canContributeGoals"`
	CanInviteMembers   bool `json:"canInviteMembers"`
	CanManageBudgets   bool `json:"canManageBudgets"`
}

// Has reports whether the flag for the given capability is set.
func (c Capabilities) Has(cap Capability) bool {
	switch cap {
	case CapCreateGoals:
		return c.CanCreateGoals
	case CapViewBudgets:
		return c.CanViewBudgets
	case CapContributeGoals:
		return c.CanContributeGoals
	case CapInviteMembers:
		return c.CanInviteMembers
	case CapManageBudgets:
		return c.CanManageBudgets
	default:
		return false
	}
}

// DefaultMemberCapabilities are granted to newly joined members.
func DefaultMemberCapabilities() Capabilities {
	return Capabilities{
		CanCreateGoals:     true,
		CanViewBudgets:     true,
		CanContributeGoals: true,
	}
}

// FullCapabilities is the superset held by the owner and admins.
func FullCapabilities() Capabilities {
	return Capabilities{
		CanCreateGoals:     true,
		CanViewBudgets:     true,
		CanContributeGoals: true,
		CanInviteMembers:   true,
		CanManageBudgets:   true,
	}
}

// Membership is the permission engine's resolved view of one user within one
// family: the stored role and flags plus the derived owner bit. It is the
// value cached by the membership-lookup cache.
type Membership struct {
	UserID       string       `json:"userID"`
	FamilyID     string       `json:"familyID"`
	Role         FamilyRole   `json:"role"`
	Status       MemberStatus `json:"status"`
	IsOwner      bool         `json:"isOwner"`
	Capabilities Capabilities `json:"capabilities"`
	Version      int64        `json:"version"`
}

// Allows resolves a capability against the membership: the owner and admins
// hold the full superset, viewers are read-only, members fall back to their
// stored flags. Inactive or removed memberships allow nothing.
func (m Membership) Allows(cap Capability) bool {
	if m.Status != MemberActive && !m.IsOwner {
		return false
	}
	if m.IsOwner || m.Role == RoleAdmin {
		return true
	}
	if m.Role == RoleViewer {
		return false
	}
	return m.Capabilities.Has(cap)
}

// CanAdminister reports whether the membership may manage members and shared
// resources.
func (m Membership) CanAdminister() bool {
	return m.IsOwner || (m.Status == MemberActive && m.Role == RoleAdmin)
}
