package models

import "time"

// Family is the db row for a family. Member, invitation and join-request rows
// cascade away with their family (ON DELETE CASCADE).
type Family struct {
	FamilyID        string `db:"family_id"`
	Name            string `db:"name"`
	CreatedByUserID string `db:"created_by_user_id"`
	MaxMembers      int    `db:"max_members"`
	Status          string `db:"status"`
	ShareBudgets    bool   `db:"share_budgets"`
	ShareGoals      bool   `db:"share_goals"`
	AuditFields
}

// FamilyMember is the db row for a membership. (family_id, user_id) is unique;
// the version column orders cache refreshes.
type FamilyMember struct {
	FamilyID           string    `db:"family_id"`
	UserID             string    `db:"user_id"`
	Role               string    `db:"role"`
	Status             string    `db:"status"`
	CanCreateGoals     bool      `db:"can_create_goals"`
	CanViewBudgets     bool      `db:"can_view_budgets"`
	CanContributeGoals bool      `db:"can_contribute_goals"`
	CanInviteMembers   bool      `db:"can_invite_members"`
	CanManageBudgets   bool      `db:"can_manage_budgets"`
	Version            int64     `db:"version"`
	JoinedAt           time.Time `db:"joined_at"`
	AuditFields
}

// FamilyInvitation is the db row for an invitation.
type FamilyInvitation struct {
	InvitationID    string    `db:"invitation_id"`
	FamilyID        string    `db:"family_id"`
	InvitedByUserID string    `db:"invited_by_user_id"`
	Email           string    `db:"email"`
	Token           string    `db:"token"`
	Role            string    `db:"role"`
	Status          string    `db:"status"`
	ExpiresAt       time.Time `db:"expires_at"`
	AuditFields
}

// FamilyJoinRequest is the db row for a join request.
type FamilyJoinRequest struct {
	RequestID        string  `db:"request_id"`
	FamilyID         string  `db:"family_id"`
	UserID           string  `db:"user_id"`
	Message          string  `db:"message"`
	Status           string  `db:"status"`
	ReviewedByUserID *string `db:"reviewed_by_user_id"`
	ReviewNote       string  `db:"review_note"`
	AuditFields
}
