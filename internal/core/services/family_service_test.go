package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/fintrove/family_finance_app/internal/apperrors"
	"github.com/fintrove/family_finance_app/internal/core/domain"
	portssvc "github.com/fintrove/family_finance_app/internal/core/ports/services"
	"github.com/fintrove/family_finance_app/internal/core/services"
	"github.com/fintrove/family_finance_app/internal/dto"
)

type FamilyServiceTestSuite struct {
	suite.Suite
	mockFamilies   *MockFamilyRepository
	mockUsers      *MockUserRepository
	mockPermission *MockPermissionService
	mockRefresher  *MockCacheRefresher
	mockNotifier   *MockNotifier
	service        portssvc.FamilySvcFacade
}

func (suite *FamilyServiceTestSuite) SetupTest() {
	suite.mockFamilies = new(MockFamilyRepository)
	suite.mockUsers = new(MockUserRepository)
	suite.mockPermission = new(MockPermissionService)
	suite.mockRefresher = new(MockCacheRefresher)
	suite.mockNotifier = new(MockNotifier)
	suite.service = services.NewFamilyService(
		suite.mockFamilies,
		suite.mockUsers,
		suite.mockPermission,
		suite.mockRefresher,
		suite.mockNotifier,
	)
}

func (suite *FamilyServiceTestSuite) newFamily(ownerID string) *domain.Family {
	return &domain.Family{
		FamilyID:        uuid.NewString(),
		Name:            "The Does",
		CreatedByUserID: ownerID,
		MaxMembers:      5,
		Status:          domain.FamilyActive,
	}
}

func (suite *FamilyServiceTestSuite) TestCreateFamily_SavesOwnerMembership() {
	ctx := context.Background()
	userID := uuid.NewString()
	req := dto.CreateFamilyRequest{Name: "The Does"}

	suite.mockFamilies.On("SaveFamily", ctx, mock.MatchedBy(func(f domain.Family) bool {
		return f.CreatedByUserID == userID && f.Status == domain.FamilyActive && f.MaxMembers == 10
	})).Return(nil).Once()
	suite.mockFamilies.On("SaveMember", ctx, mock.MatchedBy(func(m domain.FamilyMember) bool {
		return m.UserID == userID &&
			m.Role == domain.RoleAdmin &&
			m.Status == domain.MemberActive &&
			m.Capabilities == domain.FullCapabilities()
	})).Return(nil).Once()
	suite.mockRefresher.On("OnMembershipChanged", ctx, mock.MatchedBy(func(e domain.MembershipChanged) bool {
		return e.UserID == userID && !e.Removed && e.Version == 1
	})).Return().Once()

	family, err := suite.service.CreateFamily(ctx, req, userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(family)
	suite.NotEmpty(family.FamilyID)
	suite.mockFamilies.AssertExpectations(suite.T())
	suite.mockRefresher.AssertExpectations(suite.T())
}

func (suite *FamilyServiceTestSuite) TestDeleteFamily_OnlyOwner() {
	ctx := context.Background()
	family := suite.newFamily(uuid.NewString())

	suite.mockFamilies.On("FindFamilyByID", ctx, family.FamilyID).Return(family, nil).Once()

	err := suite.service.DeleteFamily(ctx, family.FamilyID, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockFamilies.AssertNotCalled(suite.T(), "DeleteFamily", mock.Anything, mock.Anything)
}

func (suite *FamilyServiceTestSuite) TestLeaveFamily_OwnerCannotLeave() {
	ctx := context.Background()
	ownerID := uuid.NewString()
	family := suite.newFamily(ownerID)

	suite.mockFamilies.On("FindFamilyByID", ctx, family.FamilyID).Return(family, nil).Once()

	err := suite.service.LeaveFamily(ctx, family.FamilyID, ownerID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockFamilies.AssertNotCalled(suite.T(), "UpdateMember", mock.Anything, mock.Anything)
}

func (suite *FamilyServiceTestSuite) TestLeaveFamily_Success() {
	ctx := context.Background()
	userID := uuid.NewString()
	family := suite.newFamily(uuid.NewString())
	member := &domain.FamilyMember{
		FamilyID: family.FamilyID,
		UserID:   userID,
		Role:     domain.RoleMember,
		Status:   domain.MemberActive,
		Version:  3,
	}
	removed := *member
	removed.Status = domain.MemberRemoved
	removed.Version = 4

	suite.mockFamilies.On("FindFamilyByID", ctx, family.FamilyID).Return(family, nil).Once()
	suite.mockFamilies.On("FindMember", ctx, family.FamilyID, userID).Return(member, nil).Once()
	suite.mockFamilies.On("UpdateMember", ctx, mock.MatchedBy(func(m domain.FamilyMember) bool {
		return m.Status == domain.MemberRemoved
	})).Return(&removed, nil).Once()
	suite.mockRefresher.On("OnMembershipChanged", ctx, domain.MembershipChanged{
		FamilyID: family.FamilyID, UserID: userID, Removed: true, Version: 4,
	}).Return().Once()

	err := suite.service.LeaveFamily(ctx, family.FamilyID, userID)

	suite.Require().NoError(err)
	suite.mockFamilies.AssertExpectations(suite.T())
	suite.mockRefresher.AssertExpectations(suite.T())
}

func (suite *FamilyServiceTestSuite) TestCreateInvitation_EmailFailureDoesNotFail() {
	ctx := context.Background()
	userID := uuid.NewString()
	family := suite.newFamily(userID)

	req := dto.CreateInvitationRequest{Email: "invitee@example.com"}

	suite.mockFamilies.On("FindFamilyByID", ctx, family.FamilyID).Return(family, nil).Once()
	suite.mockPermission.On("CheckCapability", ctx, userID,
		portssvc.ResourceScope{OwnerUserID: family.CreatedByUserID, FamilyID: &family.FamilyID},
		domain.CapInviteMembers).Return(nil).Once()
	suite.mockFamilies.On("SaveInvitation", ctx, mock.MatchedBy(func(inv domain.FamilyInvitation) bool {
		return inv.Email == req.Email &&
			inv.Role == domain.RoleMember &&
			inv.Status == domain.InvitationPending &&
			len(inv.Token) == 64
	})).Return(nil).Once()
	suite.mockNotifier.On("Send", ctx, req.Email, "family_invitation", mock.Anything).
		Return(context.DeadlineExceeded).Once()

	invitation, err := suite.service.CreateInvitation(ctx, family.FamilyID, req, userID)

	// The invitation stands even when the email channel fails.
	suite.Require().NoError(err)
	suite.Require().NotNil(invitation)
	suite.WithinDuration(time.Now().Add(domain.InvitationTTL), invitation.ExpiresAt, time.Minute)
	suite.mockFamilies.AssertExpectations(suite.T())
	suite.mockNotifier.AssertExpectations(suite.T())
}

func (suite *FamilyServiceTestSuite) TestAcceptInvitation_Success() {
	ctx := context.Background()
	userID := uuid.NewString()
	familyID := uuid.NewString()
	invitation := &domain.FamilyInvitation{
		InvitationID: uuid.NewString(),
		FamilyID:     familyID,
		Email:        "invitee@example.com",
		Token:        "tok",
		Role:         domain.RoleMember,
		Status:       domain.InvitationPending,
		ExpiresAt:    time.Now().UTC().Add(24 * time.Hour),
	}

	suite.mockFamilies.On("FindInvitationByToken", ctx, "tok").Return(invitation, nil).Once()
	suite.mockUsers.On("FindUserByID", ctx, userID).
		Return(&domain.User{UserID: userID, Email: "invitee@example.com"}, nil).Once()
	suite.mockFamilies.On("FindMember", ctx, familyID, userID).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockFamilies.On("AcceptInvitation", ctx, invitation.InvitationID, mock.MatchedBy(func(m domain.FamilyMember) bool {
		return m.UserID == userID &&
			m.Role == domain.RoleMember &&
			m.Status == domain.MemberActive &&
			m.Capabilities == domain.DefaultMemberCapabilities()
	})).Return(nil).Once()
	suite.mockRefresher.On("OnMembershipChanged", ctx, mock.MatchedBy(func(e domain.MembershipChanged) bool {
		return e.FamilyID == familyID && e.UserID == userID && !e.Removed
	})).Return().Once()

	member, err := suite.service.AcceptInvitation(ctx, "tok", userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(member)
	suite.Equal(domain.MemberActive, member.Status)
	suite.mockFamilies.AssertExpectations(suite.T())
	suite.mockRefresher.AssertExpectations(suite.T())
}

func (suite *FamilyServiceTestSuite) TestAcceptInvitation_Expired() {
	ctx := context.Background()
	userID := uuid.NewString()
	invitation := &domain.FamilyInvitation{
		InvitationID: uuid.NewString(),
		FamilyID:     uuid.NewString(),
		Email:        "invitee@example.com",
		Token:        "tok",
		Role:         domain.RoleMember,
		Status:       domain.InvitationPending,
		ExpiresAt:    time.Now().UTC().Add(-time.Hour),
	}

	suite.mockFamilies.On("FindInvitationByToken", ctx, "tok").Return(invitation, nil).Once()
	suite.mockFamilies.On("UpdateInvitationStatus", ctx, invitation.InvitationID, domain.InvitationExpired, userID, mock.AnythingOfType("time.Time")).
		Return(nil).Once()

	member, err := suite.service.AcceptInvitation(ctx, "tok", userID)

	suite.Require().Error(err)
	suite.Nil(member)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockFamilies.AssertNotCalled(suite.T(), "AcceptInvitation", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *FamilyServiceTestSuite) TestAcceptInvitation_WrongAddress() {
	ctx := context.Background()
	userID := uuid.NewString()
	invitation := &domain.FamilyInvitation{
		InvitationID: uuid.NewString(),
		FamilyID:     uuid.NewString(),
		Email:        "invitee@example.com",
		Token:        "tok",
		Status:       domain.InvitationPending,
		ExpiresAt:    time.Now().UTC().Add(24 * time.Hour),
	}

	suite.mockFamilies.On("FindInvitationByToken", ctx, "tok").Return(invitation, nil).Once()
	suite.mockUsers.On("FindUserByID", ctx, userID).
		Return(&domain.User{UserID: userID, Email: "someone-else@example.com"}, nil).Once()

	member, err := suite.service.AcceptInvitation(ctx, "tok", userID)

	suite.Require().Error(err)
	suite.Nil(member)
	suite.ErrorIs(err, apperrors.ErrForbidden)
}

func (suite *FamilyServiceTestSuite) TestAcceptInvitation_CapacityExceeded() {
	ctx := context.Background()
	userID := uuid.NewString()
	familyID := uuid.NewString()
	invitation := &domain.FamilyInvitation{
		InvitationID: uuid.NewString(),
		FamilyID:     familyID,
		Email:        "invitee@example.com",
		Token:        "tok",
		Role:         domain.RoleMember,
		Status:       domain.InvitationPending,
		ExpiresAt:    time.Now().UTC().Add(24 * time.Hour),
	}

	suite.mockFamilies.On("FindInvitationByToken", ctx, "tok").Return(invitation, nil).Once()
	suite.mockUsers.On("FindUserByID", ctx, userID).
		Return(&domain.User{UserID: userID, Email: "invitee@example.com"}, nil).Once()
	suite.mockFamilies.On("FindMember", ctx, familyID, userID).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockFamilies.On("AcceptInvitation", ctx, invitation.InvitationID, mock.AnythingOfType("domain.FamilyMember")).
		Return(apperrors.ErrCapacityExceeded).Once()

	member, err := suite.service.AcceptInvitation(ctx, "tok", userID)

	suite.Require().Error(err)
	suite.Nil(member)
	suite.ErrorIs(err, apperrors.ErrCapacityExceeded)
	suite.mockRefresher.AssertNotCalled(suite.T(), "OnMembershipChanged", mock.Anything, mock.Anything)
}

func (suite *FamilyServiceTestSuite) TestUpdateMember_OnlyOwnerManagesAdmins() {
	ctx := context.Background()
	actorID := uuid.NewString()
	targetID := uuid.NewString()
	family := suite.newFamily(uuid.NewString())

	actor := &domain.Membership{
		UserID:   actorID,
		FamilyID: family.FamilyID,
		Role:     domain.RoleAdmin,
		Status:   domain.MemberActive,
		IsOwner:  false,
	}
	target := &domain.FamilyMember{
		FamilyID: family.FamilyID,
		UserID:   targetID,
		Role:     domain.RoleAdmin,
		Status:   domain.MemberActive,
	}
	newRole := domain.RoleMember

	suite.mockPermission.On("RequireAdministrative", ctx, family.FamilyID, actorID).Return(actor, nil).Once()
	suite.mockFamilies.On("FindFamilyByID", ctx, family.FamilyID).Return(family, nil).Once()
	suite.mockFamilies.On("FindMember", ctx, family.FamilyID, targetID).Return(target, nil).Once()

	updated, err := suite.service.UpdateMember(ctx, family.FamilyID, targetID, dto.UpdateMemberRequest{Role: &newRole}, actorID)

	suite.Require().Error(err)
	suite.Nil(updated)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockFamilies.AssertNotCalled(suite.T(), "UpdateMember", mock.Anything, mock.Anything)
}

func (suite *FamilyServiceTestSuite) TestRemoveMember_OwnerRowProtected() {
	ctx := context.Background()
	ownerID := uuid.NewString()
	family := suite.newFamily(ownerID)
	actor := &domain.Membership{
		UserID:   uuid.NewString(),
		FamilyID: family.FamilyID,
		Role:     domain.RoleAdmin,
		Status:   domain.MemberActive,
	}

	suite.mockPermission.On("RequireAdministrative", ctx, family.FamilyID, actor.UserID).Return(actor, nil).Once()
	suite.mockFamilies.On("FindFamilyByID", ctx, family.FamilyID).Return(family, nil).Once()

	err := suite.service.RemoveMember(ctx, family.FamilyID, ownerID, actor.UserID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockFamilies.AssertNotCalled(suite.T(), "UpdateMember", mock.Anything, mock.Anything)
}

func (suite *FamilyServiceTestSuite) TestReviewJoinRequest_Approve() {
	ctx := context.Background()
	reviewerID := uuid.NewString()
	requesterID := uuid.NewString()
	familyID := uuid.NewString()
	request := &domain.FamilyJoinRequest{
		RequestID: uuid.NewString(),
		FamilyID:  familyID,
		UserID:    requesterID,
		Status:    domain.JoinRequestPending,
	}
	admin := &domain.Membership{
		UserID:   reviewerID,
		FamilyID: familyID,
		Role:     domain.RoleAdmin,
		Status:   domain.MemberActive,
	}

	suite.mockPermission.On("RequireAdministrative", ctx, familyID, reviewerID).Return(admin, nil).Once()
	suite.mockFamilies.On("FindJoinRequestByID", ctx, request.RequestID).Return(request, nil).Once()
	suite.mockFamilies.On("ApproveJoinRequest", ctx, mock.MatchedBy(func(r domain.FamilyJoinRequest) bool {
		return r.Status == domain.JoinRequestApproved &&
			r.ReviewedByUserID != nil && *r.ReviewedByUserID == reviewerID
	}), mock.MatchedBy(func(m domain.FamilyMember) bool {
		return m.UserID == requesterID &&
			m.Role == domain.RoleMember &&
			m.Status == domain.MemberActive
	})).Return(nil).Once()
	suite.mockRefresher.On("OnMembershipChanged", ctx, mock.MatchedBy(func(e domain.MembershipChanged) bool {
		return e.FamilyID == familyID && e.UserID == requesterID
	})).Return().Once()
	suite.mockUsers.On("FindUserByID", ctx, requesterID).
		Return(&domain.User{UserID: requesterID, Email: "requester@example.com"}, nil).Once()
	suite.mockNotifier.On("Send", ctx, "requester@example.com", "family_join_request_reviewed", mock.MatchedBy(func(data map[string]string) bool {
		return data["status"] == string(domain.JoinRequestApproved)
	})).Return(nil).Once()

	reviewed, err := suite.service.ReviewJoinRequest(ctx, familyID, request.RequestID, dto.ReviewJoinRequestRequest{Approve: true}, reviewerID)

	suite.Require().NoError(err)
	suite.Require().NotNil(reviewed)
	suite.Equal(domain.JoinRequestApproved, reviewed.Status)
	suite.mockFamilies.AssertExpectations(suite.T())
	suite.mockNotifier.AssertExpectations(suite.T())
}

func (suite *FamilyServiceTestSuite) TestReviewJoinRequest_Reject() {
	ctx := context.Background()
	reviewerID := uuid.NewString()
	requesterID := uuid.NewString()
	familyID := uuid.NewString()
	request := &domain.FamilyJoinRequest{
		RequestID: uuid.NewString(),
		FamilyID:  familyID,
		UserID:    requesterID,
		Status:    domain.JoinRequestPending,
	}
	admin := &domain.Membership{
		UserID:   reviewerID,
		FamilyID: familyID,
		Role:     domain.RoleAdmin,
		Status:   domain.MemberActive,
	}

	suite.mockPermission.On("RequireAdministrative", ctx, familyID, reviewerID).Return(admin, nil).Once()
	suite.mockFamilies.On("FindJoinRequestByID", ctx, request.RequestID).Return(request, nil).Once()
	suite.mockFamilies.On("UpdateJoinRequest", ctx, mock.MatchedBy(func(r domain.FamilyJoinRequest) bool {
		return r.Status == domain.JoinRequestRejected
	})).Return(nil).Once()
	suite.mockUsers.On("FindUserByID", ctx, requesterID).
		Return(&domain.User{UserID: requesterID, Email: "requester@example.com"}, nil).Once()
	suite.mockNotifier.On("Send", ctx, "requester@example.com", "family_join_request_reviewed", mock.Anything).
		Return(nil).Once()

	reviewed, err := suite.service.ReviewJoinRequest(ctx, familyID, request.RequestID, dto.ReviewJoinRequestRequest{Approve: false}, reviewerID)

	suite.Require().NoError(err)
	suite.Equal(domain.JoinRequestRejected, reviewed.Status)
	suite.mockFamilies.AssertNotCalled(suite.T(), "ApproveJoinRequest", mock.Anything, mock.Anything, mock.Anything)
	suite.mockRefresher.AssertNotCalled(suite.T(), "OnMembershipChanged", mock.Anything, mock.Anything)
}

func (suite *FamilyServiceTestSuite) TestReviewJoinRequest_AlreadyReviewed() {
	ctx := context.Background()
	reviewerID := uuid.NewString()
	familyID := uuid.NewString()
	request := &domain.FamilyJoinRequest{
		RequestID: uuid.NewString(),
		FamilyID:  familyID,
		UserID:    uuid.NewString(),
		Status:    domain.JoinRequestApproved,
	}
	admin := &domain.Membership{UserID: reviewerID, FamilyID: familyID, Role: domain.RoleAdmin, Status: domain.MemberActive}

	suite.mockPermission.On("RequireAdministrative", ctx, familyID, reviewerID).Return(admin, nil).Once()
	suite.mockFamilies.On("FindJoinRequestByID", ctx, request.RequestID).Return(request, nil).Once()

	reviewed, err := suite.service.ReviewJoinRequest(ctx, familyID, request.RequestID, dto.ReviewJoinRequestRequest{Approve: true}, reviewerID)

	suite.Require().Error(err)
	suite.Nil(reviewed)
	suite.ErrorIs(err, apperrors.ErrConflict)
}

func (suite *FamilyServiceTestSuite) TestRequestToJoin_AlreadyMember() {
	ctx := context.Background()
	userID := uuid.NewString()
	family := suite.newFamily(uuid.NewString())
	member := &domain.FamilyMember{
		FamilyID: family.FamilyID,
		UserID:   userID,
		Status:   domain.MemberActive,
	}

	suite.mockFamilies.On("FindFamilyByID", ctx, family.FamilyID).Return(family, nil).Once()
	suite.mockFamilies.On("FindMember", ctx, family.FamilyID, userID).Return(member, nil).Once()

	request, err := suite.service.RequestToJoin(ctx, family.FamilyID, dto.CreateJoinRequestRequest{}, userID)

	suite.Require().Error(err)
	suite.Nil(request)
	suite.ErrorIs(err, apperrors.ErrDuplicate)
	suite.mockFamilies.AssertNotCalled(suite.T(), "SaveJoinRequest", mock.Anything, mock.Anything)
}

func (suite *FamilyServiceTestSuite) TestUpdateFamily_MemberLimitBelowActiveCount() {
	ctx := context.Background()
	ownerID := uuid.NewString()
	family := suite.newFamily(ownerID)
	owner := &domain.Membership{
		UserID:   ownerID,
		FamilyID: family.FamilyID,
		Role:     domain.RoleAdmin,
		Status:   domain.MemberActive,
		IsOwner:  true,
	}
	newMax := 2

	suite.mockPermission.On("RequireAdministrative", ctx, family.FamilyID, ownerID).Return(owner, nil).Once()
	suite.mockFamilies.On("FindFamilyByID", ctx, family.FamilyID).Return(family, nil).Once()
	suite.mockFamilies.On("CountActiveMembers", ctx, family.FamilyID).Return(4, nil).Once()

	updated, err := suite.service.UpdateFamily(ctx, family.FamilyID, dto.UpdateFamilyRequest{MaxMembers: &newMax}, ownerID)

	suite.Require().Error(err)
	suite.Nil(updated)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockFamilies.AssertNotCalled(suite.T(), "UpdateFamily", mock.Anything, mock.Anything)
}

func TestFamilyServiceTestSuite(t *testing.T) {
	suite.Run(t, new(FamilyServiceTestSuite))
}
