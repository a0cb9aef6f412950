package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/fintrove/family_finance_app/internal/apperrors"
	"github.com/fintrove/family_finance_app/internal/core/domain"
	portsrepo "github.com/fintrove/family_finance_app/internal/core/ports/repositories"
	portssvc "github.com/fintrove/family_finance_app/internal/core/ports/services"
)

// permissionService resolves roles and capabilities for shared family
// resources. Lookups go through the membership-lookup cache with a
// synchronous repository fallback; cache trouble degrades lookups, it never
// denies or blocks them.
type permissionService struct {
	BaseService
	familyRepo portsrepo.FamilyRepository
	cache      portsrepo.MembershipCache
}

// NewPermissionService creates the permission engine.
func NewPermissionService(familyRepo portsrepo.FamilyRepository, cache portsrepo.MembershipCache) portssvc.PermissionSvcFacade {
	return &permissionService{familyRepo: familyRepo, cache: cache}
}

var _ portssvc.PermissionSvcFacade = (*permissionService)(nil)
var _ portssvc.MembershipCacheRefresher = (*permissionService)(nil)

// ResolveMembership returns the user's membership in the family. Cache hits
// are served directly; misses and cache failures fall through to the
// repository, and the fresh result is written back best-effort.
func (s *permissionService) ResolveMembership(ctx context.Context, familyID, userID string) (*domain.Membership, error) {
	if s.cache != nil {
		m, err := s.cache.Get(ctx, familyID, userID)
		if err == nil {
			return m, nil
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogWarn(ctx, "Membership cache lookup degraded, falling back to repository",
				slog.String("family_id", familyID), slog.String("user_id", userID), slog.String("error", err.Error()))
		}
	}

	m, err := s.familyRepo.FindMembership(ctx, familyID, userID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if putErr := s.cache.Put(ctx, *m); putErr != nil {
			s.LogWarn(ctx, "Membership cache backfill failed",
				slog.String("family_id", familyID), slog.String("user_id", userID), slog.String("error", putErr.Error()))
		}
	}
	return m, nil
}

// CheckCapability implements the resolution order of the permission engine:
// the resource owner always passes; otherwise a family-scoped resource is
// checked against the caller's membership role and capability flags.
func (s *permissionService) CheckCapability(ctx context.Context, userID string, scope portssvc.ResourceScope, capability domain.Capability) error {
	if userID == scope.OwnerUserID {
		return nil
	}

	if scope.FamilyID == nil {
		return fmt.Errorf("%w: user %s is not the resource owner and the resource is not family-shared", apperrors.ErrForbidden, userID)
	}

	m, err := s.ResolveMembership(ctx, *scope.FamilyID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: user %s is not a member of family %s", apperrors.ErrForbidden, userID, *scope.FamilyID)
		}
		return err
	}

	if !m.Allows(capability) {
		return fmt.Errorf("%w: user %s with role %s lacks capability %s", apperrors.ErrForbidden, userID, m.Role, capability)
	}
	return nil
}

// CheckMemberCapability is the creation-path check: the caller is not the
// owner of anything yet, so only an active membership with the capability
// flag passes. The family owner passes through their own membership row,
// which carries full capabilities.
func (s *permissionService) CheckMemberCapability(ctx context.Context, userID string, familyID string, capability domain.Capability) error {
	m, err := s.ResolveMembership(ctx, familyID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: user %s is not a member of family %s", apperrors.ErrForbidden, userID, familyID)
		}
		return err
	}
	if m.Status != domain.MemberActive {
		return fmt.Errorf("%w: membership of user %s in family %s is %s", apperrors.ErrForbidden, userID, familyID, m.Status)
	}
	if !m.Allows(capability) {
		return fmt.Errorf("%w: user %s with role %s lacks capability %s", apperrors.ErrForbidden, userID, m.Role, capability)
	}
	return nil
}

// CheckRead allows the owner and any non-removed family member, including
// viewers.
func (s *permissionService) CheckRead(ctx context.Context, userID string, scope portssvc.ResourceScope) error {
	if userID == scope.OwnerUserID {
		return nil
	}

	if scope.FamilyID == nil {
		return fmt.Errorf("%w: user %s is not the resource owner", apperrors.ErrForbidden, userID)
	}

	m, err := s.ResolveMembership(ctx, *scope.FamilyID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: user %s is not a member of family %s", apperrors.ErrForbidden, userID, *scope.FamilyID)
		}
		return err
	}

	if m.Status != domain.MemberActive && !m.IsOwner {
		return fmt.Errorf("%w: membership of user %s in family %s is %s", apperrors.ErrForbidden, userID, *scope.FamilyID, m.Status)
	}
	return nil
}

// RequireAdministrative asserts the user is the family owner or an admin and
// returns the resolved membership.
func (s *permissionService) RequireAdministrative(ctx context.Context, familyID, userID string) (*domain.Membership, error) {
	m, err := s.ResolveMembership(ctx, familyID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: user %s is not a member of family %s", apperrors.ErrForbidden, userID, familyID)
		}
		return nil, err
	}
	if !m.CanAdminister() {
		return nil, fmt.Errorf("%w: user %s with role %s may not administer family %s", apperrors.ErrForbidden, userID, m.Role, familyID)
	}
	return m, nil
}

// OnMembershipChanged applies one membership event to the cache. The
// incremental path is non-blocking; when it fails the whole family is rebuilt
// synchronously rather than leaving the cache stale forever.
func (s *permissionService) OnMembershipChanged(ctx context.Context, event domain.MembershipChanged) {
	if s.cache == nil {
		return
	}

	if event.Removed {
		if err := s.cache.Invalidate(ctx, event.FamilyID, event.UserID); err != nil {
			s.LogWarn(ctx, "Membership cache invalidation failed, rebuilding family",
				slog.String("family_id", event.FamilyID), slog.String("user_id", event.UserID), slog.String("error", err.Error()))
			s.rebuildOrLog(ctx, event.FamilyID)
		}
		return
	}

	m, err := s.familyRepo.FindMembership(ctx, event.FamilyID, event.UserID)
	if err != nil {
		s.LogWarn(ctx, "Membership fetch for cache refresh failed, rebuilding family",
			slog.String("family_id", event.FamilyID), slog.String("user_id", event.UserID), slog.String("error", err.Error()))
		s.rebuildOrLog(ctx, event.FamilyID)
		return
	}

	if err := s.cache.Put(ctx, *m); err != nil {
		s.LogWarn(ctx, "Incremental membership cache refresh failed, rebuilding family",
			slog.String("family_id", event.FamilyID), slog.String("user_id", event.UserID), slog.String("error", err.Error()))
		s.rebuildOrLog(ctx, event.FamilyID)
	}
}

// RebuildFamily replaces all cached entries of the family from the database.
func (s *permissionService) RebuildFamily(ctx context.Context, familyID string) error {
	memberships, err := s.familyRepo.ListMemberships(ctx, familyID)
	if err != nil {
		return fmt.Errorf("failed to list memberships for cache rebuild: %w", err)
	}
	if err := s.cache.RebuildFamily(ctx, familyID, memberships); err != nil {
		return fmt.Errorf("%w: membership cache rebuild failed: %v", apperrors.ErrExternalDegraded, err)
	}
	return nil
}

func (s *permissionService) rebuildOrLog(ctx context.Context, familyID string) {
	if err := s.RebuildFamily(ctx, familyID); err != nil {
		s.LogError(ctx, err, "Membership cache rebuild failed; serving from repository until next refresh",
			slog.String("family_id", familyID))
	}
}
