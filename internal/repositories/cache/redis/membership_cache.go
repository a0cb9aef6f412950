package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fintrove/family_finance_app/internal/apperrors"
	"github.com/fintrove/family_finance_app/internal/core/domain"
	portsrepo "github.com/fintrove/family_finance_app/internal/core/ports/repositories"
	"github.com/redis/go-redis/v9"
)

// putIfNotOlder writes the entry unless the cached copy carries a newer
// version. Stale refreshes racing a concurrent role change must not clobber
// the newer entry.
var putIfNotOlder = redis.NewScript(`
local cur = redis.call('GET', KEYS[1])
if cur then
	local ok, decoded = pcall(cjson.decode, cur)
	if ok and decoded.version and tonumber(decoded.version) > tonumber(ARGV[2]) then
		return 0
	end
end
redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[3])
return 1
`)

// MembershipCache is the redis-backed membership-lookup index. Entries expire
// after the configured staleness bound, so a lost invalidation heals itself.
type MembershipCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewMembershipCache creates a membership cache over the given client.
func NewMembershipCache(client *redis.Client, ttl time.Duration) portsrepo.MembershipCache {
	return &MembershipCache{client: client, ttl: ttl}
}

var _ portsrepo.MembershipCache = (*MembershipCache)(nil)

func membershipKey(familyID, userID string) string {
	return fmt.Sprintf("membership:%s:%s", familyID, userID)
}

// Get returns the cached membership or ErrNotFound on miss.
func (c *MembershipCache) Get(ctx context.Context, familyID, userID string) (*domain.Membership, error) {
	raw, err := c.client.Get(ctx, membershipKey(familyID, userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to read membership cache: %w", err)
	}
	var membership domain.Membership
	if err := json.Unmarshal(raw, &membership); err != nil {
		// A corrupt entry is treated as a miss so the repository repopulates it.
		return nil, apperrors.ErrNotFound
	}
	return &membership, nil
}

// Put upserts the entry unless the cached version is newer.
func (c *MembershipCache) Put(ctx context.Context, membership domain.Membership) error {
	raw, err := json.Marshal(membership)
	if err != nil {
		return fmt.Errorf("failed to encode membership: %w", err)
	}
	key := membershipKey(membership.FamilyID, membership.UserID)
	err = putIfNotOlder.Run(ctx, c.client, []string{key}, raw, membership.Version, c.ttl.Milliseconds()).Err()
	if err != nil {
		return fmt.Errorf("failed to write membership cache: %w", err)
	}
	return nil
}

// Invalidate drops the entry for one member.
func (c *MembershipCache) Invalidate(ctx context.Context, familyID, userID string) error {
	if err := c.client.Del(ctx, membershipKey(familyID, userID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate membership cache: %w", err)
	}
	return nil
}

// RebuildFamily drops every entry of the family and writes the given set.
func (c *MembershipCache) RebuildFamily(ctx context.Context, familyID string, memberships []domain.Membership) error {
	iter := c.client.Scan(ctx, 0, membershipKey(familyID, "*"), 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("failed to clear membership cache for family %s: %w", familyID, err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan membership cache for family %s: %w", familyID, err)
	}

	pipe := c.client.Pipeline()
	for _, m := range memberships {
		raw, err := json.Marshal(m)
		if err != nil {
			return fmt.Errorf("failed to encode membership: %w", err)
		}
		pipe.Set(ctx, membershipKey(m.FamilyID, m.UserID), raw, c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to rebuild membership cache for family %s: %w", familyID, err)
	}
	return nil
}
