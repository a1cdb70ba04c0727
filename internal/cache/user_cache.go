package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"template-tester-server/internal/model"
)

// UserCache keeps AuthUser projections in Redis so that the hot "who am I"
// path does not hit MySQL on every request. Entries are TTL-bounded; profile
// staleness up to the TTL is acceptable.
type UserCache struct {
	client *redisv9.Client
	ttl    time.Duration
}

func NewUserCache(client *redisv9.Client, ttl time.Duration) *UserCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &UserCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *UserCache) Get(ctx context.Context, userID uint) (*model.AuthUser, bool, error) {
	key := c.userKey(userID)
	raw, err := c.client.Get(ctx, key).Result()
	if err == redisv9.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get user failed: %w", err)
	}

	var user model.AuthUser
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached user failed: %w", err)
	}
	return &user, true, nil
}

func (c *UserCache) Set(ctx context.Context, user *model.AuthUser) error {
	key := c.userKey(user.ID)
	payload, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshal user cache failed: %w", err)
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set user failed: %w", err)
	}
	return nil
}

func (c *UserCache) userKey(userID uint) string {
	return fmt.Sprintf("auth:user:%d", userID)
}
