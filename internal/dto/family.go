package dto

import (
	"time"

	"github.com/fintrove/family_finance_app/internal/core/domain"
)

// CreateFamilyRequest defines the data needed to create a family.
type CreateFamilyRequest struct {
	Name         string `json:"name" binding:"required"`
	MaxMembers   int    `json:"maxMembers" binding:"omitempty,min=1,max=50"`
	ShareBudgets bool   `json:"shareBudgets"`
	ShareGoals   bool   `json:"shareGoals"`
}

// UpdateFamilyRequest defines the editable fields of a family.
type UpdateFamilyRequest struct {
	Name         *string `json:"name"`
	MaxMembers   *int    `json:"maxMembers" binding:"omitempty,min=1,max=50"`
	ShareBudgets *bool   `json:"shareBudgets"`
	ShareGoals   *bool   `json:"shareGoals"`
}

// FamilyResponse defines the data returned for a family.
type FamilyResponse struct {
	FamilyID        string              `json:"familyID"`
	Name            string              `json:"name"`
	CreatedByUserID string              `json:"createdByUserID"`
	MaxMembers      int                 `json:"maxMembers"`
	Status          domain.FamilyStatus `json:"status"`
	ShareBudgets    bool                `json:"shareBudgets"`
	ShareGoals      bool                `json:"shareGoals"`
	CreatedAt       time.Time           `json:"createdAt"`
}

// ToFamilyResponse converts a domain.Family to its response DTO.
func ToFamilyResponse(f *domain.Family) FamilyResponse {
	return FamilyResponse{
		FamilyID:        f.FamilyID,
		Name:            f.Name,
		CreatedByUserID: f.CreatedByUserID,
		MaxMembers:      f.MaxMembers,
		Status:          f.Status,
		ShareBudgets:    f.ShareBudgets,
		ShareGoals:      f.ShareGoals,
		CreatedAt:       f.CreatedAt,
	}
}

// ToFamilyResponses converts a slice of families to response DTOs.
func ToFamilyResponses(families []domain.Family) []FamilyResponse {
	res := make([]FamilyResponse, len(families))
	for i := range families {
		res[i] = ToFamilyResponse(&families[i])
	}
	return res
}

// FamilyMemberResponse defines the data returned for a member.
type FamilyMemberResponse struct {
	FamilyID     string              `json:"familyID"`
	UserID       string              `json:"userID"`
	Role         domain.FamilyRole   `json:"role"`
	Status       domain.MemberStatus `json:"status"`
	IsOwner      bool                `json:"isOwner"`
	Capabilities domain.Capabilities `json:"capabilities"`
	JoinedAt     time.Time           `json:"joinedAt"`
}

// ToFamilyMemberResponse converts a domain member to its response DTO. The
// owner bit is derived from the family, not stored on the member row.
func ToFamilyMemberResponse(m *domain.FamilyMember, ownerUserID string) FamilyMemberResponse {
	return FamilyMemberResponse{
		FamilyID:     m.FamilyID,
		UserID:       m.UserID,
		Role:         m.Role,
		Status:       m.Status,
		IsOwner:      m.UserID == ownerUserID,
		Capabilities: m.Capabilities,
		JoinedAt:     m.JoinedAt,
	}
}

// ToFamilyMemberResponses converts a slice of members to response DTOs.
func ToFamilyMemberResponses(members []domain.FamilyMember, ownerUserID string) []FamilyMemberResponse {
	res := make([]FamilyMemberResponse, len(members))
	for i := range members {
		res[i] = ToFamilyMemberResponse(&members[i], ownerUserID)
	}
	return res
}

// UpdateMemberRequest changes a member's role and/or capability flags.
type UpdateMemberRequest struct {
	Role         *domain.FamilyRole   `json:"role" binding:"omitempty,oneof=ADMIN MEMBER VIEWER"`
	Capabilities *domain.Capabilities `json:"capabilities"`
}

// CreateInvitationRequest invites an email address into the family.
type CreateInvitationRequest struct {
	Email string            `json:"email" binding:"required,email"`
	Role  domain.FamilyRole `json:"role" binding:"omitempty,oneof=ADMIN MEMBER VIEWER"`
}

// InvitationResponse defines the data returned for an invitation.
type InvitationResponse struct {
	InvitationID string                  `json:"invitationID"`
	FamilyID     string                  `json:"familyID"`
	Email        string                  `json:"email"`
	Role         domain.FamilyRole       `json:"role"`
	Status       domain.InvitationStatus `json:"status"`
	ExpiresAt    time.Time               `json:"expiresAt"`
}

// ToInvitationResponse converts a domain invitation to its response DTO. The
// token is deliberately omitted; it travels only in the invitation email.
func ToInvitationResponse(inv *domain.FamilyInvitation) InvitationResponse {
	return InvitationResponse{
		InvitationID: inv.InvitationID,
		FamilyID:     inv.FamilyID,
		Email:        inv.Email,
		Role:         inv.Role,
		Status:       inv.Status,
		ExpiresAt:    inv.ExpiresAt,
	}
}

// ToInvitationResponses converts a slice of invitations to response DTOs.
func ToInvitationResponses(invitations []domain.FamilyInvitation) []InvitationResponse {
	res := make([]InvitationResponse, len(invitations))
	for i := range invitations {
		res[i] = ToInvitationResponse(&invitations[i])
	}
	return res
}

// CreateJoinRequestRequest asks to join a family.
type CreateJoinRequestRequest struct {
	Message string `json:"message"`
}

// ReviewJoinRequestRequest approves or rejects a pending join request.
type ReviewJoinRequestRequest struct {
	Approve bool   `json:"approve"`
	Note    string `json:"note"`
}

// JoinRequestResponse defines the data returned for a join request.
type JoinRequestResponse struct {
	RequestID        string                   `json:"requestID"`
	FamilyID         string                   `json:"familyID"`
	UserID           string                   `json:"userID"`
	Message          string                   `json:"message"`
	Status           domain.JoinRequestStatus `json:"status"`
	ReviewedByUserID *string                  `json:"reviewedByUserID,omitempty"`
	ReviewNote       string                   `json:"reviewNote,omitempty"`
}

// ToJoinRequestResponse converts a domain join request to its response DTO.
func ToJoinRequestResponse(r *domain.FamilyJoinRequest) JoinRequestResponse {
	return JoinRequestResponse{
		RequestID:        r.RequestID,
		FamilyID:         r.FamilyID,
		UserID:           r.UserID,
		Message:          r.Message,
		Status:           r.Status,
		ReviewedByUserID: r.ReviewedByUserID,
		ReviewNote:       r.ReviewNote,
	}
}

// ToJoinRequestResponses converts a slice of join requests to response DTOs.
func ToJoinRequestResponses(requests []domain.FamilyJoinRequest) []JoinRequestResponse {
	res := make([]JoinRequestResponse, len(requests))
	for i := range requests {
		res[i] = ToJoinRequestResponse(&requests[i])
	}
	return res
}
