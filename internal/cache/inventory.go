package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	statsKeyPrefix = "stats:user:%d"
)

// StatsTTL bounds how stale a cached dashboard can get; post writes also
// invalidate eagerly.
const StatsTTL = 2 * time.Minute

// StatsKey is the dashboard stats cache key for a user.
func StatsKey(userID uint) string {
	return fmt.Sprintf(statsKeyPrefix, userID)
}

// Invalidate deletes the given key, if a client is configured.
func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

// InvalidateStats drops the cached dashboard stats for a user.
func InvalidateStats(ctx context.Context, userID uint) {
	Invalidate(ctx, StatsKey(userID))
}
