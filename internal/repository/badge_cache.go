package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/waveline/backstage/pkg/constant"
)

// badgeTTL bounds staleness if an invalidation is ever lost
const badgeTTL = 10 * time.Minute

// BadgeCache is the Redis-backed unread badge projection. It is read-through:
// services populate it from SQL aggregation on a miss and delete the key
// whenever an append or a mark-read changes the viewer's unread state.
type BadgeCache struct {
	rdb *redis.Client
}

// NewBadgeCache creates a new BadgeCache
func NewBadgeCache(rdb *redis.Client) *BadgeCache {
	return &BadgeCache{rdb: rdb}
}

func (c *BadgeCache) badgeKey(accountId int64) string {
	return fmt.Sprintf(constant.RedisKeyUnreadBadge(), accountId)
}

// Get returns the cached badge count, with a hit flag
func (c *BadgeCache) Get(ctx context.Context, accountId int64) (int64, bool, error) {
	count, err := c.rdb.Get(ctx, c.badgeKey(accountId)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return count, true, nil
}

// Set stores the badge count
func (c *BadgeCache) Set(ctx context.Context, accountId int64, count int64) error {
	return c.rdb.Set(ctx, c.badgeKey(accountId), count, badgeTTL).Err()
}

// Invalidate drops the cached badge count
func (c *BadgeCache) Invalidate(ctx context.Context, accountId int64) error {
	return c.rdb.Del(ctx, c.badgeKey(accountId)).Err()
}
