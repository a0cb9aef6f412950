package domain

import "time"

// FamilyStatus marks whether a family is usable.
type FamilyStatus string

const (
	FamilyActive   FamilyStatus = "ACTIVE"
	FamilyDisabled FamilyStatus = "DISABLED"
)

// Family groups users that share budgets, goals and transactions. The creator
// is the permanent owner; ownership is derived from CreatedBy and is not a
// stored member role. Owner departure/transfer is deliberately unsupported:
// the owner leaves only by deleting the family.
type Family struct {
	FamilyID        string       `json:"familyID"`
	Name            string       `json:"name"`
	CreatedByUserID string       `json:"createdByUserID"` // the owner
	MaxMembers      int          `json:"maxMembers"`
	Status          FamilyStatus `json:"status"`
	ShareBudgets    bool         `json:"shareBudgets"`
	ShareGoals      bool         `json:"shareGoals"`
	AuditFields
}

// IsOwner reports whether the given user is the family owner.
func (f Family) IsOwner(userID string) bool {
	return f.CreatedByUserID == userID
}

// MemberStatus is the lifecycle state of a family membership.
type MemberStatus string

const (
	MemberPending  MemberStatus = "PENDING"
	MemberActive   MemberStatus = "ACTIVE"
	MemberInactive MemberStatus = "INACTIVE"
	MemberRemoved  MemberStatus = "REMOVED"
)

// FamilyMember is one user's membership in a family. Version increases on
// every role/capability change and orders writes into the membership-lookup
// cache so stale refreshes cannot clobber newer entries.
type FamilyMember struct {
	FamilyID     string       `json:"familyID"`
	UserID       string       `json:"userID"`
	Role         FamilyRole   `json:"role"`
	Status       MemberStatus `json:"status"`
	Capabilities Capabilities `json:"capabilities"`
	Version      int64        `json:"version"`
	JoinedAt     time.Time    `json:"joinedAt"`
	AuditFields
}

// InvitationStatus is the state machine of a family invitation.
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "PENDING"
	InvitationAccepted InvitationStatus = "ACCEPTED"
	InvitationDeclined InvitationStatus = "DECLINED"
	InvitationExpired  InvitationStatus = "EXPIRED"
)

// InvitationTTL is how long an invitation stays acceptable.
const InvitationTTL = 7 * 24 * time.Hour

// FamilyInvitation invites an email address into a family. Capacity is checked
// at acceptance time, not at invite time. Expiry is applied lazily when a
// pending invitation is read past its deadline.
type FamilyInvitation struct {
	InvitationID    string           `json:"invitationID"`
	FamilyID        string           `json:"familyID"`
	InvitedByUserID string           `json:"invitedByUserID"`
	Email           string           `json:"email"`
	Token           string           `json:"token"`
	Role            FamilyRole       `json:"role"`
	Status          InvitationStatus `json:"status"`
	ExpiresAt       time.Time        `json:"expiresAt"`
	AuditFields
}

// IsExpired reports whether a pending invitation has passed its deadline.
func (i FamilyInvitation) IsExpired(now time.Time) bool {
	return i.Status == InvitationPending && now.After(i.ExpiresAt)
}

// JoinRequestStatus is the state machine of a join request.
type JoinRequestStatus string

const (
	JoinRequestPending  JoinRequestStatus = "PENDING"
	JoinRequestApproved JoinRequestStatus = "APPROVED"
	JoinRequestRejected JoinRequestStatus = "REJECTED"
)

// FamilyJoinRequest is a user-initiated request to join a family, reviewed by
// an admin or the owner. Capacity is checked at approval.
type FamilyJoinRequest struct {
	RequestID        string            `json:"requestID"`
	FamilyID         string            `json:"familyID"`
	UserID           string            `json:"userID"`
	Message          string            `json:"message"`
	Status           JoinRequestStatus `json:"status"`
	ReviewedByUserID *string           `json:"reviewedByUserID"`
	ReviewNote       string            `json:"reviewNote"`
	AuditFields
}
