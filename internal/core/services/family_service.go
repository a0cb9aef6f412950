package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/fintrove/family_finance_app/internal/apperrors"
	"github.com/fintrove/family_finance_app/internal/core/domain"
	portsrepo "github.com/fintrove/family_finance_app/internal/core/ports/repositories"
	portssvc "github.com/fintrove/family_finance_app/internal/core/ports/services"
	"github.com/fintrove/family_finance_app/internal/dto"
	"github.com/fintrove/family_finance_app/internal/platform/notifier"
	"github.com/fintrove/family_finance_app/internal/utils"
)

const defaultMaxMembers = 10

// familyService is the family membership engine: family lifecycle, member
// management, invitations and join requests. Every membership mutation also
// nudges the membership-lookup cache through the refresher.
type familyService struct {
	BaseService
	familyRepo portsrepo.FamilyRepository
	userRepo   portsrepo.UserRepository
	permission portssvc.PermissionSvcFacade
	refresher  portssvc.MembershipCacheRefresher
	notify     notifier.Notifier
}

// NewFamilyService creates a new family service.
func NewFamilyService(
	familyRepo portsrepo.FamilyRepository,
	userRepo portsrepo.UserRepository,
	permission portssvc.PermissionSvcFacade,
	refresher portssvc.MembershipCacheRefresher,
	notify notifier.Notifier,
) portssvc.FamilySvcFacade {
	return &familyService{
		familyRepo: familyRepo,
		userRepo:   userRepo,
		permission: permission,
		refresher:  refresher,
		notify:     notify,
	}
}

var _ portssvc.FamilySvcFacade = (*familyService)(nil)

func (s *familyService) CreateFamily(ctx context.Context, req dto.CreateFamilyRequest, userID string) (*domain.Family, error) {
	maxMembers := req.MaxMembers
	if maxMembers == 0 {
		maxMembers = defaultMaxMembers
	}

	now := time.Now().UTC()
	family := domain.Family{
		FamilyID:        uuid.NewString(),
		Name:            req.Name,
		CreatedByUserID: userID,
		MaxMembers:      maxMembers,
		Status:          domain.FamilyActive,
		ShareBudgets:    req.ShareBudgets,
		ShareGoals:      req.ShareGoals,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	if err := s.familyRepo.SaveFamily(ctx, family); err != nil {
		s.LogError(ctx, err, "Failed to save family", slog.String("family_id", family.FamilyID))
		return nil, err
	}

	// The creator also gets a member row so listings and counts include them;
	// ownership itself stays derived from created_by.
	owner := domain.FamilyMember{
		FamilyID:     family.FamilyID,
		UserID:       userID,
		Role:         domain.RoleAdmin,
		Status:       domain.MemberActive,
		Capabilities: domain.FullCapabilities(),
		Version:      1,
		JoinedAt:     now,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	if err := s.familyRepo.SaveMember(ctx, owner); err != nil {
		s.LogError(ctx, err, "Failed to save owner membership", slog.String("family_id", family.FamilyID))
		return nil, err
	}

	s.refresher.OnMembershipChanged(ctx, domain.MembershipChanged{
		FamilyID: family.FamilyID, UserID: userID, Version: owner.Version,
	})
	s.LogInfo(ctx, "Family created", slog.String("family_id", family.FamilyID), slog.String("name", family.Name))
	return &family, nil
}

func (s *familyService) GetFamily(ctx context.Context, familyID string, userID string) (*domain.Family, error) {
	family, err := s.familyRepo.FindFamilyByID(ctx, familyID)
	if err != nil {
		return nil, err
	}
	if !family.IsOwner(userID) {
		if err := s.permission.CheckRead(ctx, userID, portssvc.ResourceScope{FamilyID: &familyID}); err != nil {
			return nil, apperrors.ErrNotFound
		}
	}
	return family, nil
}

func (s *familyService) UpdateFamily(ctx context.Context, familyID string, req dto.UpdateFamilyRequest, userID string) (*domain.Family, error) {
	if _, err := s.permission.RequireAdministrative(ctx, familyID, userID); err != nil {
		return nil, err
	}
	family, err := s.familyRepo.FindFamilyByID(ctx, familyID)
	if err != nil {
		return nil, err
	}

	updated := false
	if req.Name != nil && *req.Name != family.Name {
		family.Name = *req.Name
		updated = true
	}
	if req.MaxMembers != nil && *req.MaxMembers != family.MaxMembers {
		active, err := s.familyRepo.CountActiveMembers(ctx, familyID)
		if err != nil {
			return nil, err
		}
		if *req.MaxMembers < active {
			return nil, fmt.Errorf("%w: member limit %d is below the current %d active members",
				apperrors.ErrValidation, *req.MaxMembers, active)
		}
		family.MaxMembers = *req.MaxMembers
		updated = true
	}
	if req.ShareBudgets != nil && *req.ShareBudgets != family.ShareBudgets {
		family.ShareBudgets = *req.ShareBudgets
		updated = true
	}
	if req.ShareGoals != nil && *req.ShareGoals != family.ShareGoals {
		family.ShareGoals = *req.ShareGoals
		updated = true
	}
	if !updated {
		return family, nil
	}

	family.LastUpdatedAt = time.Now().UTC()
	family.LastUpdatedBy = userID
	if err := s.familyRepo.UpdateFamily(ctx, *family); err != nil {
		s.LogError(ctx, err, "Failed to update family", slog.String("family_id", familyID))
		return nil, err
	}
	return family, nil
}

func (s *familyService) DeleteFamily(ctx context.Context, familyID string, userID string) error {
	family, err := s.familyRepo.FindFamilyByID(ctx, familyID)
	if err != nil {
		return err
	}
	if !family.IsOwner(userID) {
		return fmt.Errorf("%w: only the family owner may delete the family", apperrors.ErrForbidden)
	}

	if err := s.familyRepo.DeleteFamily(ctx, familyID); err != nil {
		s.LogError(ctx, err, "Failed to delete family", slog.String("family_id", familyID))
		return err
	}

	if err := s.refresher.RebuildFamily(ctx, familyID); err != nil {
		s.LogWarn(ctx, "Membership cache rebuild after family deletion failed",
			slog.String("family_id", familyID), slog.String("error", err.Error()))
	}
	s.LogInfo(ctx, "Family deleted", slog.String("family_id", familyID))
	return nil
}

func (s *familyService) ListMyFamilies(ctx context.Context, userID string) ([]domain.Family, error) {
	families, err := s.familyRepo.ListFamiliesByUser(ctx, userID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list families", slog.String("user_id", userID))
		return nil, err
	}
	return families, nil
}

func (s *familyService) ListMembers(ctx context.Context, familyID string, userID string) ([]domain.FamilyMember, error) {
	if err := s.permission.CheckRead(ctx, userID, portssvc.ResourceScope{FamilyID: &familyID}); err != nil {
		return nil, err
	}
	members, err := s.familyRepo.ListMembers(ctx, familyID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list members", slog.String("family_id", familyID))
		return nil, err
	}
	return members, nil
}

func (s *familyService) UpdateMember(ctx context.Context, familyID string, targetUserID string, req dto.UpdateMemberRequest, userID string) (*domain.FamilyMember, error) {
	_, target, err := s.administrableMember(ctx, familyID, targetUserID, userID)
	if err != nil {
		return nil, err
	}

	if req.Role != nil && *req.Role != target.Role {
		target.Role = *req.Role
		if *req.Role == domain.RoleAdmin {
			target.Capabilities = domain.FullCapabilities()
		}
	}
	if req.Capabilities != nil {
		target.Capabilities = *req.Capabilities
	}
	target.LastUpdatedAt = time.Now().UTC()
	target.LastUpdatedBy = userID

	updated, err := s.familyRepo.UpdateMember(ctx, *target)
	if err != nil {
		s.LogError(ctx, err, "Failed to update member",
			slog.String("family_id", familyID), slog.String("target_user_id", targetUserID))
		return nil, err
	}

	s.refresher.OnMembershipChanged(ctx, domain.MembershipChanged{
		FamilyID: familyID, UserID: targetUserID, Version: updated.Version,
	})
	s.LogInfo(ctx, "Member updated",
		slog.String("family_id", familyID),
		slog.String("target_user_id", targetUserID),
		slog.String("role", string(updated.Role)))
	return updated, nil
}

func (s *familyService) RemoveMember(ctx context.Context, familyID string, targetUserID string, userID string) error {
	_, target, err := s.administrableMember(ctx, familyID, targetUserID, userID)
	if err != nil {
		return err
	}

	target.Status = domain.MemberRemoved
	target.LastUpdatedAt = time.Now().UTC()
	target.LastUpdatedBy = userID
	updated, err := s.familyRepo.UpdateMember(ctx, *target)
	if err != nil {
		s.LogError(ctx, err, "Failed to remove member",
			slog.String("family_id", familyID), slog.String("target_user_id", targetUserID))
		return err
	}

	s.refresher.OnMembershipChanged(ctx, domain.MembershipChanged{
		FamilyID: familyID, UserID: targetUserID, Removed: true, Version: updated.Version,
	})
	s.LogInfo(ctx, "Member removed",
		slog.String("family_id", familyID), slog.String("target_user_id", targetUserID))
	return nil
}

func (s *familyService) LeaveFamily(ctx context.Context, familyID string, userID string) error {
	family, err := s.familyRepo.FindFamilyByID(ctx, familyID)
	if err != nil {
		return err
	}
	if family.IsOwner(userID) {
		return fmt.Errorf("%w: the owner leaves only by deleting the family", apperrors.ErrConflict)
	}

	member, err := s.familyRepo.FindMember(ctx, familyID, userID)
	if err != nil {
		return err
	}
	if member.Status != domain.MemberActive && member.Status != domain.MemberInactive {
		return fmt.Errorf("%w: membership is %s", apperrors.ErrConflict, member.Status)
	}

	member.Status = domain.MemberRemoved
	member.LastUpdatedAt = time.Now().UTC()
	member.LastUpdatedBy = userID
	updated, err := s.familyRepo.UpdateMember(ctx, *member)
	if err != nil {
		s.LogError(ctx, err, "Failed to leave family", slog.String("family_id", familyID))
		return err
	}

	s.refresher.OnMembershipChanged(ctx, domain.MembershipChanged{
		FamilyID: familyID, UserID: userID, Removed: true, Version: updated.Version,
	})
	s.LogInfo(ctx, "Member left family", slog.String("family_id", familyID), slog.String("user_id", userID))
	return nil
}

func (s *familyService) CreateInvitation(ctx context.Context, familyID string, req dto.CreateInvitationRequest, userID string) (*domain.FamilyInvitation, error) {
	family, err := s.familyRepo.FindFamilyByID(ctx, familyID)
	if err != nil {
		return nil, err
	}
	if family.Status != domain.FamilyActive {
		return nil, fmt.Errorf("%w: family %s is disabled", apperrors.ErrConflict, familyID)
	}
	if err := s.permission.CheckCapability(ctx, userID,
		portssvc.ResourceScope{OwnerUserID: family.CreatedByUserID, FamilyID: &familyID},
		domain.CapInviteMembers); err != nil {
		return nil, err
	}

	role := req.Role
	if role == "" {
		role = domain.RoleMember
	}
	token, err := utils.GenerateSecureRandomString(32)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to generate invitation token", err)
	}

	now := time.Now().UTC()
	invitation := domain.FamilyInvitation{
		InvitationID:    uuid.NewString(),
		FamilyID:        familyID,
		InvitedByUserID: userID,
		Email:           req.Email,
		Token:           token,
		Role:            role,
		Status:          domain.InvitationPending,
		ExpiresAt:       now.Add(domain.InvitationTTL),
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	if err := s.familyRepo.SaveInvitation(ctx, invitation); err != nil {
		s.LogError(ctx, err, "Failed to save invitation", slog.String("family_id", familyID))
		return nil, err
	}

	// Delivery is best-effort; the invitation stands even if the email fails.
	if err := s.notify.Send(ctx, invitation.Email, "family_invitation", map[string]string{
		"family_name": family.Name,
		"token":       invitation.Token,
		"role":        string(invitation.Role),
	}); err != nil {
		s.LogWarn(ctx, "Invitation email failed",
			slog.String("error", fmt.Errorf("%w: %v", apperrors.ErrExternalDegraded, err).Error()),
			slog.String("invitation_id", invitation.InvitationID))
	}

	s.LogInfo(ctx, "Invitation created",
		slog.String("family_id", familyID), slog.String("invitation_id", invitation.InvitationID))
	return &invitation, nil
}

func (s *familyService) ListInvitations(ctx context.Context, familyID string, userID string) ([]domain.FamilyInvitation, error) {
	if _, err := s.permission.RequireAdministrative(ctx, familyID, userID); err != nil {
		return nil, err
	}
	invitations, err := s.familyRepo.ListInvitations(ctx, familyID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list invitations", slog.String("family_id", familyID))
		return nil, err
	}

	// Lazy expiry: pending invitations past their deadline flip on read.
	now := time.Now().UTC()
	for i := range invitations {
		if invitations[i].IsExpired(now) {
			invitations[i].Status = domain.InvitationExpired
			if err := s.familyRepo.UpdateInvitationStatus(ctx, invitations[i].InvitationID, domain.InvitationExpired, userID, now); err != nil {
				s.LogWarn(ctx, "Failed to persist invitation expiry",
					slog.String("invitation_id", invitations[i].InvitationID), slog.String("error", err.Error()))
			}
		}
	}
	return invitations, nil
}

func (s *familyService) AcceptInvitation(ctx context.Context, token string, userID string) (*domain.FamilyMember, error) {
	invitation, err := s.familyRepo.FindInvitationByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if invitation.Status != domain.InvitationPending {
		return nil, fmt.Errorf("%w: invitation is %s", apperrors.ErrConflict, invitation.Status)
	}

	now := time.Now().UTC()
	if invitation.IsExpired(now) {
		if err := s.familyRepo.UpdateInvitationStatus(ctx, invitation.InvitationID, domain.InvitationExpired, userID, now); err != nil {
			s.LogWarn(ctx, "Failed to persist invitation expiry",
				slog.String("invitation_id", invitation.InvitationID), slog.String("error", err.Error()))
		}
		return nil, fmt.Errorf("%w: invitation has expired", apperrors.ErrConflict)
	}

	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Email != invitation.Email {
		return nil, fmt.Errorf("%w: invitation was issued to a different address", apperrors.ErrForbidden)
	}

	if existing, err := s.familyRepo.FindMember(ctx, invitation.FamilyID, userID); err == nil {
		if existing.Status == domain.MemberActive {
			return nil, fmt.Errorf("%w: user is already a member of the family", apperrors.ErrDuplicate)
		}
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	member := domain.FamilyMember{
		FamilyID:     invitation.FamilyID,
		UserID:       userID,
		Role:         invitation.Role,
		Status:       domain.MemberActive,
		Capabilities: capabilitiesForRole(invitation.Role),
		Version:      1,
		JoinedAt:     now,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	// Capacity is enforced here, under the family row lock, so concurrent
	// acceptances cannot overshoot the member limit.
	if err := s.familyRepo.AcceptInvitation(ctx, invitation.InvitationID, member); err != nil {
		s.LogError(ctx, err, "Failed to accept invitation",
			slog.String("invitation_id", invitation.InvitationID))
		return nil, err
	}

	s.refresher.OnMembershipChanged(ctx, domain.MembershipChanged{
		FamilyID: invitation.FamilyID, UserID: userID, Version: member.Version,
	})
	s.LogInfo(ctx, "Invitation accepted",
		slog.String("family_id", invitation.FamilyID), slog.String("user_id", userID))
	return &member, nil
}

func (s *familyService) DeclineInvitation(ctx context.Context, token string, userID string) error {
	invitation, err := s.familyRepo.FindInvitationByToken(ctx, token)
	if err != nil {
		return err
	}
	if invitation.Status != domain.InvitationPending {
		return fmt.Errorf("%w: invitation is %s", apperrors.ErrConflict, invitation.Status)
	}

	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.Email != invitation.Email {
		return fmt.Errorf("%w: invitation was issued to a different address", apperrors.ErrForbidden)
	}

	if err := s.familyRepo.UpdateInvitationStatus(ctx, invitation.InvitationID, domain.InvitationDeclined, userID, time.Now().UTC()); err != nil {
		s.LogError(ctx, err, "Failed to decline invitation",
			slog.String("invitation_id", invitation.InvitationID))
		return err
	}
	return nil
}

func (s *familyService) RequestToJoin(ctx context.Context, familyID string, req dto.CreateJoinRequestRequest, userID string) (*domain.FamilyJoinRequest, error) {
	family, err := s.familyRepo.FindFamilyByID(ctx, familyID)
	if err != nil {
		return nil, err
	}
	if family.Status != domain.FamilyActive {
		return nil, fmt.Errorf("%w: family %s is disabled", apperrors.ErrConflict, familyID)
	}

	if existing, err := s.familyRepo.FindMember(ctx, familyID, userID); err == nil {
		if existing.Status == domain.MemberActive || existing.Status == domain.MemberPending {
			return nil, fmt.Errorf("%w: user already belongs to the family", apperrors.ErrDuplicate)
		}
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	request := domain.FamilyJoinRequest{
		RequestID: uuid.NewString(),
		FamilyID:  familyID,
		UserID:    userID,
		Message:   req.Message,
		Status:    domain.JoinRequestPending,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	if err := s.familyRepo.SaveJoinRequest(ctx, request); err != nil {
		s.LogError(ctx, err, "Failed to save join request", slog.String("family_id", familyID))
		return nil, err
	}

	if owner, err := s.userRepo.FindUserByID(ctx, family.CreatedByUserID); err == nil {
		if err := s.notify.Send(ctx, owner.Email, "family_join_request", map[string]string{
			"family_name": family.Name,
			"request_id":  request.RequestID,
		}); err != nil {
			s.LogWarn(ctx, "Join request notification failed",
				slog.String("error", fmt.Errorf("%w: %v", apperrors.ErrExternalDegraded, err).Error()),
				slog.String("request_id", request.RequestID))
		}
	}

	s.LogInfo(ctx, "Join request created",
		slog.String("family_id", familyID), slog.String("request_id", request.RequestID))
	return &request, nil
}

func (s *familyService) ListJoinRequests(ctx context.Context, familyID string, userID string, status *domain.JoinRequestStatus) ([]domain.FamilyJoinRequest, error) {
	if _, err := s.permission.RequireAdministrative(ctx, familyID, userID); err != nil {
		return nil, err
	}
	requests, err := s.familyRepo.ListJoinRequests(ctx, familyID, status)
	if err != nil {
		s.LogError(ctx, err, "Failed to list join requests", slog.String("family_id", familyID))
		return nil, err
	}
	return requests, nil
}

func (s *familyService) ReviewJoinRequest(ctx context.Context, familyID string, requestID string, req dto.ReviewJoinRequestRequest, userID string) (*domain.FamilyJoinRequest, error) {
	if _, err := s.permission.RequireAdministrative(ctx, familyID, userID); err != nil {
		return nil, err
	}

	request, err := s.familyRepo.FindJoinRequestByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.FamilyID != familyID {
		return nil, apperrors.ErrNotFound
	}
	if request.Status != domain.JoinRequestPending {
		return nil, fmt.Errorf("%w: join request is %s", apperrors.ErrConflict, request.Status)
	}

	now := time.Now().UTC()
	request.ReviewedByUserID = &userID
	request.ReviewNote = req.Note
	request.LastUpdatedAt = now
	request.LastUpdatedBy = userID

	if !req.Approve {
		request.Status = domain.JoinRequestRejected
		if err := s.familyRepo.UpdateJoinRequest(ctx, *request); err != nil {
			s.LogError(ctx, err, "Failed to reject join request", slog.String("request_id", requestID))
			return nil, err
		}
		s.notifyReviewOutcome(ctx, request)
		return request, nil
	}

	request.Status = domain.JoinRequestApproved
	member := domain.FamilyMember{
		FamilyID:     familyID,
		UserID:       request.UserID,
		Role:         domain.RoleMember,
		Status:       domain.MemberActive,
		Capabilities: domain.DefaultMemberCapabilities(),
		Version:      1,
		JoinedAt:     now,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	// Same capacity rule as invitation acceptance.
	if err := s.familyRepo.ApproveJoinRequest(ctx, *request, member); err != nil {
		s.LogError(ctx, err, "Failed to approve join request", slog.String("request_id", requestID))
		return nil, err
	}

	s.refresher.OnMembershipChanged(ctx, domain.MembershipChanged{
		FamilyID: familyID, UserID: request.UserID, Version: member.Version,
	})
	s.notifyReviewOutcome(ctx, request)
	s.LogInfo(ctx, "Join request approved",
		slog.String("family_id", familyID), slog.String("request_id", requestID))
	return request, nil
}

func (s *familyService) notifyReviewOutcome(ctx context.Context, request *domain.FamilyJoinRequest) {
	requester, err := s.userRepo.FindUserByID(ctx, request.UserID)
	if err != nil {
		return
	}
	if err := s.notify.Send(ctx, requester.Email, "family_join_request_reviewed", map[string]string{
		"family_id": request.FamilyID,
		"status":    string(request.Status),
	}); err != nil {
		s.LogWarn(ctx, "Join request outcome notification failed",
			slog.String("error", fmt.Errorf("%w: %v", apperrors.ErrExternalDegraded, err).Error()),
			slog.String("request_id", request.RequestID))
	}
}

// administrableMember resolves the acting membership and the target member,
// enforcing the management hierarchy: nobody touches the owner's row, and
// only the owner manages admins.
func (s *familyService) administrableMember(ctx context.Context, familyID, targetUserID, userID string) (*domain.Membership, *domain.FamilyMember, error) {
	actor, err := s.permission.RequireAdministrative(ctx, familyID, userID)
	if err != nil {
		return nil, nil, err
	}

	family, err := s.familyRepo.FindFamilyByID(ctx, familyID)
	if err != nil {
		return nil, nil, err
	}
	if family.IsOwner(targetUserID) {
		return nil, nil, fmt.Errorf("%w: the owner's membership cannot be managed", apperrors.ErrForbidden)
	}

	target, err := s.familyRepo.FindMember(ctx, familyID, targetUserID)
	if err != nil {
		return nil, nil, err
	}
	if target.Role == domain.RoleAdmin && !actor.IsOwner {
		return nil, nil, fmt.Errorf("%w: only the owner may manage admins", apperrors.ErrForbidden)
	}
	return actor, target, nil
}

// capabilitiesForRole returns the starting capability set for a new member.
func capabilitiesForRole(role domain.FamilyRole) domain.Capabilities {
	switch role {
	case domain.RoleAdmin:
		return domain.FullCapabilities()
	case domain.RoleViewer:
		return domain.Capabilities{CanViewBudgets: true}
	default:
		return domain.DefaultMemberCapabilities()
	}
}
