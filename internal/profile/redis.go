package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storefront-stylist/internal/models"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "profile:"

// RedisStore keeps profiles as JSON under profile:<userID>. A zero TTL keeps
// entries until overwritten.
type RedisStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewRedisStore(client redis.Cmdable, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func Key(userID string) string {
	return keyPrefix + userID
}

func (s *RedisStore) Load(ctx context.Context, userID string) (profile *models.StyleProfile, err error) {
	defer func() { observe("redis", "load", err) }()

	val, err := s.client.Get(ctx, Key(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("redis get %s: %w", Key(userID), err)
	}

	var p models.StyleProfile
	if err = json.Unmarshal([]byte(val), &p); err != nil {
		return nil, fmt.Errorf("decode cached profile %s: %w", userID, err)
	}
	return &p, nil
}

func (s *RedisStore) Save(ctx context.Context, profile *models.StyleProfile) (err error) {
	defer func() { observe("redis", "save", err) }()

	if profile == nil || profile.UserID == "" {
		return ErrMissingUserID
	}
	if profile.UpdatedAt.IsZero() {
		profile.UpdatedAt = time.Now().UTC()
	}

	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	if err = s.client.Set(ctx, Key(profile.UserID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", Key(profile.UserID), err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, userID string) error {
	return s.client.Del(ctx, Key(userID)).Err()
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
