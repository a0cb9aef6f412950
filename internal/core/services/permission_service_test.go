package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/fintrove/family_finance_app/internal/apperrors"
	"github.com/fintrove/family_finance_app/internal/core/domain"
	portssvc "github.com/fintrove/family_finance_app/internal/core/ports/services"
	"github.com/fintrove/family_finance_app/internal/core/services"
)

type PermissionServiceTestSuite struct {
	suite.Suite
	mockFamilies *MockFamilyRepository
	mockCache    *MockMembershipCache
	service      portssvc.PermissionSvcFacade
	refresher    portssvc.MembershipCacheRefresher
}

func (suite *PermissionServiceTestSuite) SetupTest() {
	suite.mockFamilies = new(MockFamilyRepository)
	suite.mockCache = new(MockMembershipCache)
	suite.service = services.NewPermissionService(suite.mockFamilies, suite.mockCache)
	suite.refresher = suite.service.(portssvc.MembershipCacheRefresher)
}

func (suite *PermissionServiceTestSuite) activeMember(familyID, userID string) *domain.Membership {
	return &domain.Membership{
		UserID:       userID,
		FamilyID:     familyID,
		Role:         domain.RoleMember,
		Status:       domain.MemberActive,
		Capabilities: domain.DefaultMemberCapabilities(),
		Version:      2,
	}
}

func (suite *PermissionServiceTestSuite) TestResolveMembership_CacheHit() {
	ctx := context.Background()
	familyID := uuid.NewString()
	userID := uuid.NewString()
	cached := suite.activeMember(familyID, userID)

	suite.mockCache.On("Get", ctx, familyID, userID).Return(cached, nil).Once()

	m, err := suite.service.ResolveMembership(ctx, familyID, userID)

	suite.Require().NoError(err)
	suite.Equal(cached, m)
	suite.mockFamilies.AssertNotCalled(suite.T(), "FindMembership", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *PermissionServiceTestSuite) TestResolveMembership_MissFallsBackAndBackfills() {
	ctx := context.Background()
	familyID := uuid.NewString()
	userID := uuid.NewString()
	fresh := suite.activeMember(familyID, userID)

	suite.mockCache.On("Get", ctx, familyID, userID).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockFamilies.On("FindMembership", ctx, familyID, userID).Return(fresh, nil).Once()
	suite.mockCache.On("Put", ctx, *fresh).Return(nil).Once()

	m, err := suite.service.ResolveMembership(ctx, familyID, userID)

	suite.Require().NoError(err)
	suite.Equal(fresh, m)
	suite.mockCache.AssertExpectations(suite.T())
	suite.mockFamilies.AssertExpectations(suite.T())
}

func (suite *PermissionServiceTestSuite) TestResolveMembership_DegradedCacheStillServes() {
	ctx := context.Background()
	familyID := uuid.NewString()
	userID := uuid.NewString()
	fresh := suite.activeMember(familyID, userID)

	// A broken cache degrades to the repository, and even a failing backfill
	// does not surface to the caller.
	suite.mockCache.On("Get", ctx, familyID, userID).Return(nil, assert.AnError).Once()
	suite.mockFamilies.On("FindMembership", ctx, familyID, userID).Return(fresh, nil).Once()
	suite.mockCache.On("Put", ctx, *fresh).Return(assert.AnError).Once()

	m, err := suite.service.ResolveMembership(ctx, familyID, userID)

	suite.Require().NoError(err)
	suite.Equal(fresh, m)
}

func (suite *PermissionServiceTestSuite) TestCheckCapability_OwnerAlwaysPasses() {
	ctx := context.Background()
	userID := uuid.NewString()

	err := suite.service.CheckCapability(ctx, userID, portssvc.ResourceScope{OwnerUserID: userID}, domain.CapManageBudgets)

	suite.Require().NoError(err)
	suite.mockCache.AssertNotCalled(suite.T(), "Get", mock.Anything, mock.Anything, mock.Anything)
	suite.mockFamilies.AssertNotCalled(suite.T(), "FindMembership", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *PermissionServiceTestSuite) TestCheckCapability_PersonalResourceDenied() {
	ctx := context.Background()

	err := suite.service.CheckCapability(ctx, uuid.NewString(),
		portssvc.ResourceScope{OwnerUserID: uuid.NewString()}, domain.CapViewBudgets)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
}

func (suite *PermissionServiceTestSuite) TestCheckCapability_MemberMissingFlag() {
	ctx := context.Background()
	familyID := uuid.NewString()
	userID := uuid.NewString()
	member := suite.activeMember(familyID, userID)
	// Default member capabilities exclude budget management.

	suite.mockCache.On("Get", ctx, familyID, userID).Return(member, nil).Once()

	err := suite.service.CheckCapability(ctx, userID,
		portssvc.ResourceScope{OwnerUserID: uuid.NewString(), FamilyID: &familyID}, domain.CapManageBudgets)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.ErrorContains(err, string(domain.CapManageBudgets))
}

func (suite *PermissionServiceTestSuite) TestCheckCapability_NonMember() {
	ctx := context.Background()
	familyID := uuid.NewString()
	userID := uuid.NewString()

	suite.mockCache.On("Get", ctx, familyID, userID).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockFamilies.On("FindMembership", ctx, familyID, userID).Return(nil, apperrors.ErrNotFound).Once()

	err := suite.service.CheckCapability(ctx, userID,
		portssvc.ResourceScope{OwnerUserID: uuid.NewString(), FamilyID: &familyID}, domain.CapContributeGoals)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
}

func (suite *PermissionServiceTestSuite) TestCheckMemberCapability_MemberWithoutFlagDenied() {
	ctx := context.Background()
	familyID := uuid.NewString()
	userID := uuid.NewString()
	member := suite.activeMember(familyID, userID)
	member.Capabilities.CanCreateGoals = false

	suite.mockCache.On("Get", ctx, familyID, userID).Return(member, nil).Once()

	err := suite.service.CheckMemberCapability(ctx, userID, familyID, domain.CapCreateGoals)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.ErrorContains(err, string(domain.CapCreateGoals))
}

func (suite *PermissionServiceTestSuite) TestCheckMemberCapability_NoOwnerShortcut() {
	ctx := context.Background()
	familyID := uuid.NewString()
	userID := uuid.NewString()
	viewer := suite.activeMember(familyID, userID)
	viewer.Role = domain.RoleViewer
	viewer.Capabilities = domain.Capabilities{CanViewBudgets: true}

	suite.mockCache.On("Get", ctx, familyID, userID).Return(viewer, nil).Once()

	// Creating a resource the caller would own still requires the membership
	// capability.
	err := suite.service.CheckMemberCapability(ctx, userID, familyID, domain.CapCreateGoals)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
}

func (suite *PermissionServiceTestSuite) TestCheckMemberCapability_FamilyOwnerPassesViaMembership() {
	ctx := context.Background()
	familyID := uuid.NewString()
	userID := uuid.NewString()
	owner := suite.activeMember(familyID, userID)
	owner.Role = domain.RoleAdmin
	owner.IsOwner = true
	owner.Capabilities = domain.FullCapabilities()

	suite.mockCache.On("Get", ctx, familyID, userID).Return(owner, nil).Once()

	err := suite.service.CheckMemberCapability(ctx, userID, familyID, domain.CapManageBudgets)

	suite.Require().NoError(err)
}

func (suite *PermissionServiceTestSuite) TestCheckMemberCapability_NonMemberDenied() {
	ctx := context.Background()
	familyID := uuid.NewString()
	userID := uuid.NewString()

	suite.mockCache.On("Get", ctx, familyID, userID).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockFamilies.On("FindMembership", ctx, familyID, userID).Return(nil, apperrors.ErrNotFound).Once()

	err := suite.service.CheckMemberCapability(ctx, userID, familyID, domain.CapCreateGoals)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
}

func (suite *PermissionServiceTestSuite) TestCheckMemberCapability_RemovedMemberDenied() {
	ctx := context.Background()
	familyID := uuid.NewString()
	userID := uuid.NewString()
	removed := suite.activeMember(familyID, userID)
	removed.Status = domain.MemberRemoved
	removed.Capabilities = domain.FullCapabilities()

	suite.mockCache.On("Get", ctx, familyID, userID).Return(removed, nil).Once()

	err := suite.service.CheckMemberCapability(ctx, userID, familyID, domain.CapManageBudgets)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
}

func (suite *PermissionServiceTestSuite) TestCheckRead_ViewerPasses() {
	ctx := context.Background()
	familyID := uuid.NewString()
	userID := uuid.NewString()
	viewer := &domain.Membership{
		UserID:   userID,
		FamilyID: familyID,
		Role:     domain.RoleViewer,
		Status:   domain.MemberActive,
	}

	suite.mockCache.On("Get", ctx, familyID, userID).Return(viewer, nil).Once()

	err := suite.service.CheckRead(ctx, userID,
		portssvc.ResourceScope{OwnerUserID: uuid.NewString(), FamilyID: &familyID})

	suite.Require().NoError(err)
}

func (suite *PermissionServiceTestSuite) TestCheckRead_RemovedMemberDenied() {
	ctx := context.Background()
	familyID := uuid.NewString()
	userID := uuid.NewString()
	removed := suite.activeMember(familyID, userID)
	removed.Status = domain.MemberRemoved

	suite.mockCache.On("Get", ctx, familyID, userID).Return(removed, nil).Once()

	err := suite.service.CheckRead(ctx, userID,
		portssvc.ResourceScope{OwnerUserID: uuid.NewString(), FamilyID: &familyID})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
}

func (suite *PermissionServiceTestSuite) TestRequireAdministrative_MemberDenied() {
	ctx := context.Background()
	familyID := uuid.NewString()
	userID := uuid.NewString()
	member := suite.activeMember(familyID, userID)

	suite.mockCache.On("Get", ctx, familyID, userID).Return(member, nil).Once()

	m, err := suite.service.RequireAdministrative(ctx, familyID, userID)

	suite.Require().Error(err)
	suite.Nil(m)
	suite.ErrorIs(err, apperrors.ErrForbidden)
}

func (suite *PermissionServiceTestSuite) TestOnMembershipChanged_RemovalInvalidates() {
	ctx := context.Background()
	familyID := uuid.NewString()
	userID := uuid.NewString()

	suite.mockCache.On("Invalidate", ctx, familyID, userID).Return(nil).Once()

	suite.refresher.OnMembershipChanged(ctx, domain.MembershipChanged{
		FamilyID: familyID, UserID: userID, Removed: true, Version: 5,
	})

	suite.mockCache.AssertExpectations(suite.T())
	suite.mockFamilies.AssertNotCalled(suite.T(), "ListMemberships", mock.Anything, mock.Anything)
}

func (suite *PermissionServiceTestSuite) TestOnMembershipChanged_IncrementalFailureRebuildsFamily() {
	ctx := context.Background()
	familyID := uuid.NewString()
	userID := uuid.NewString()
	fresh := suite.activeMember(familyID, userID)
	memberships := []domain.Membership{*fresh}

	suite.mockFamilies.On("FindMembership", ctx, familyID, userID).Return(fresh, nil).Once()
	suite.mockCache.On("Put", ctx, *fresh).Return(assert.AnError).Once()
	suite.mockFamilies.On("ListMemberships", ctx, familyID).Return(memberships, nil).Once()
	suite.mockCache.On("RebuildFamily", ctx, familyID, memberships).Return(nil).Once()

	suite.refresher.OnMembershipChanged(ctx, domain.MembershipChanged{
		FamilyID: familyID, UserID: userID, Version: 3,
	})

	suite.mockCache.AssertExpectations(suite.T())
	suite.mockFamilies.AssertExpectations(suite.T())
}

func (suite *PermissionServiceTestSuite) TestRebuildFamily_CacheFailureIsDegraded() {
	ctx := context.Background()
	familyID := uuid.NewString()
	memberships := []domain.Membership{*suite.activeMember(familyID, uuid.NewString())}

	suite.mockFamilies.On("ListMemberships", ctx, familyID).Return(memberships, nil).Once()
	suite.mockCache.On("RebuildFamily", ctx, familyID, memberships).Return(assert.AnError).Once()

	err := suite.refresher.RebuildFamily(ctx, familyID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrExternalDegraded)
}

func TestPermissionServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PermissionServiceTestSuite))
}
