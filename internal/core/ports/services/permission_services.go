package services

import (
	"context"

	"github.com/fintrove/family_finance_app/internal/core/domain"
)

// ResourceScope identifies who may touch a resource: its owning user, plus an
// optional family the resource is shared with.
type ResourceScope struct {
	OwnerUserID string
	FamilyID    *string
}

// PermissionSvcFacade is the permission engine. Every mutating operation on
// ledger, budget and goal resources calls CheckCapability before any write; a
// denial aborts with no partial state change.
type PermissionSvcFacade interface {
	// CheckCapability returns nil when allowed, or an error wrapping
	// apperrors.ErrForbidden whose message names the missing capability and
	// the user's actual role.
	CheckCapability(ctx context.Context, userID string, scope ResourceScope, capability domain.Capability) error
	// CheckMemberCapability authorizes creating a new family-scoped resource.
	// No resource exists yet, so there is no owner to shortcut on: only an
	// active membership carrying the capability passes.
	CheckMemberCapability(ctx context.Context, userID string, familyID string, capability domain.Capability) error
	// CheckRead is the read-side counterpart; viewers pass it.
	CheckRead(ctx context.Context, userID string, scope ResourceScope) error
	// ResolveMembership returns the user's membership in the family, served
	// from the membership-lookup cache with a synchronous repository
	// fallback on miss or cache degradation.
	ResolveMembership(ctx context.Context, familyID, userID string) (*domain.Membership, error)
	// RequireAdministrative asserts the user is the family owner or an admin.
	RequireAdministrative(ctx context.Context, familyID, userID string) (*domain.Membership, error)
}

// MembershipCacheRefresher keeps the membership-lookup cache in step with
// membership changes. Refreshes are best-effort and never block the write
// path; a failed incremental refresh falls back to a full family rebuild.
type MembershipCacheRefresher interface {
	OnMembershipChanged(ctx context.Context, event domain.MembershipChanged)
	RebuildFamily(ctx context.Context, familyID string) error
}
