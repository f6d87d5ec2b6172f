package cache

import (
	"context"
	"time"
)

// Store is the expiring key/value cache behind the follower list read paths.
// Invalidate deletes unconditionally; deleting an absent key is not an error.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	PutWithExpiry(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Invalidate(ctx context.Context, keys ...string) error
}

const (
	FamilyFollowers = "followers"
	FamilyFollowing = "following"
)

// FollowersKey names the cached list of users following userID.
func FollowersKey(userID string) string {
	return FamilyFollowers + ":" + userID
}

// FollowingKey names the cached list of users userID follows.
func FollowingKey(userID string) string {
	return FamilyFollowing + ":" + userID
}
