package repositories

import (
	"context"

	"github.com/fintrove/family_finance_app/internal/core/domain"
)

// MembershipCache is the read-optimized, eventually consistent index of
// (user, family) -> {role, capabilities}. Entries carry a version so stale
// refreshes cannot clobber newer ones; entries expire after the configured
// staleness bound. A failing cache degrades lookups to the repository, never
// blocks them.
type MembershipCache interface {
	// Get returns the cached membership or ErrNotFound on miss/expiry.
	Get(ctx context.Context, familyID, userID string) (*domain.Membership, error)
	// Put upserts an entry if its version is not older than the cached one.
	// The write is non-blocking for readers; a conflicting concurrent write
	// of a newer version wins.
	Put(ctx context.Context, membership domain.Membership) error
	// Invalidate drops the entry for one member.
	Invalidate(ctx context.Context, familyID, userID string) error
	// RebuildFamily replaces every entry of the family. Used as the blocking
	// fallback when the incremental refresh path fails.
	RebuildFamily(ctx context.Context, familyID string, memberships []domain.Membership) error
}
