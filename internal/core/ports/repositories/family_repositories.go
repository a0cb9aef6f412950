package repositories

import (
	"context"
	"time"

	"github.com/fintrove/family_finance_app/internal/core/domain"
)

// FamilyRepository persists families, memberships, invitations and join
// requests.
type FamilyRepository interface {
	SaveFamily(ctx context.Context, family domain.Family) error
	FindFamilyByID(ctx context.Context, familyID string) (*domain.Family, error)
	UpdateFamily(ctx context.Context, family domain.Family) error
	// DeleteFamily removes the family; member, invitation and join-request
	// rows cascade away with it.
	DeleteFamily(ctx context.Context, familyID string) error
	ListFamiliesByUser(ctx context.Context, userID string) ([]domain.Family, error)

	SaveMember(ctx context.Context, member domain.FamilyMember) error
	FindMember(ctx context.Context, familyID, userID string) (*domain.FamilyMember, error)
	ListMembers(ctx context.Context, familyID string) ([]domain.FamilyMember, error)
	CountActiveMembers(ctx context.Context, familyID string) (int, error)
	// UpdateMember persists role/capability/status changes and bumps the
	// member's version for cache ordering.
	UpdateMember(ctx context.Context, member domain.FamilyMember) (*domain.FamilyMember, error)

	// FindMembership resolves the permission engine's view of a user in a
	// family, including the derived owner bit. This is the synchronous
	// fallback path behind the membership-lookup cache.
	FindMembership(ctx context.Context, familyID, userID string) (*domain.Membership, error)
	ListMemberships(ctx context.Context, familyID string) ([]domain.Membership, error)

	SaveInvitation(ctx context.Context, invitation domain.FamilyInvitation) error
	FindInvitationByToken(ctx context.Context, token string) (*domain.FamilyInvitation, error)
	ListInvitations(ctx context.Context, familyID string) ([]domain.FamilyInvitation, error)
	UpdateInvitationStatus(ctx context.Context, invitationID string, status domain.InvitationStatus, userID string, now time.Time) error
	// AcceptInvitation atomically marks the invitation accepted and activates
	// the membership, checking family capacity under a row lock.
	AcceptInvitation(ctx context.Context, invitationID string, member domain.FamilyMember) error

	SaveJoinRequest(ctx context.Context, request domain.FamilyJoinRequest) error
	FindJoinRequestByID(ctx context.Context, requestID string) (*domain.FamilyJoinRequest, error)
	ListJoinRequests(ctx context.Context, familyID string, status *domain.JoinRequestStatus) ([]domain.FamilyJoinRequest, error)
	UpdateJoinRequest(ctx context.Context, request domain.FamilyJoinRequest) error
	// ApproveJoinRequest atomically marks the request approved and activates
	// the membership, checking family capacity under a row lock.
	ApproveJoinRequest(ctx context.Context, request domain.FamilyJoinRequest, member domain.FamilyMember) error
}
