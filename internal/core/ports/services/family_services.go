package services

import (
	"context"

	"github.com/fintrove/family_finance_app/internal/core/domain"
	"github.com/fintrove/family_finance_app/internal/dto"
)

// FamilySvcFacade is the family membership engine: family lifecycle,
// invitations, join requests, role assignment and member management.
type FamilySvcFacade interface {
	CreateFamily(ctx context.Context, req dto.CreateFamilyRequest, userID string) (*domain.Family, error)
	GetFamily(ctx context.Context, familyID string, userID string) (*domain.Family, error)
	UpdateFamily(ctx context.Context, familyID string, req dto.UpdateFamilyRequest, userID string) (*domain.Family, error)
	DeleteFamily(ctx context.Context, familyID string, userID string) error
	ListMyFamilies(ctx context.Context, userID string) ([]domain.Family, error)

	ListMembers(ctx context.Context, familyID string, userID string) ([]domain.FamilyMember, error)
	UpdateMember(ctx context.Context, familyID string, targetUserID string, req dto.UpdateMemberRequest, userID string) (*domain.FamilyMember, error)
	RemoveMember(ctx context.Context, familyID string, targetUserID string, userID string) error
	LeaveFamily(ctx context.Context, familyID string, userID string) error

	CreateInvitation(ctx context.Context, familyID string, req dto.CreateInvitationRequest, userID string) (*domain.FamilyInvitation, error)
	ListInvitations(ctx context.Context, familyID string, userID string) ([]domain.FamilyInvitation, error)
	AcceptInvitation(ctx context.Context, token string, userID string) (*domain.FamilyMember, error)
	DeclineInvitation(ctx context.Context, token string, userID string) error

	RequestToJoin(ctx context.Context, familyID string, req dto.CreateJoinRequestRequest, userID string) (*domain.FamilyJoinRequest, error)
	ListJoinRequests(ctx context.Context, familyID string, userID string, status *domain.JoinRequestStatus) ([]domain.FamilyJoinRequest, error)
	ReviewJoinRequest(ctx context.Context, familyID string, requestID string, req dto.ReviewJoinRequestRequest, userID string) (*domain.FamilyJoinRequest, error)
}
