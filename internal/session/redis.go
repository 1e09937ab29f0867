package session

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	localKeyPrefix  = "local_session:"
	fieldUserType   = "user_type"
	fieldUserID     = "user_id"
	localSessionTTL = 30 * 24 * time.Hour
)

// RedisLocalStore persists local sessions in Redis so they survive process
// restarts and are visible to every API node. Both fields live in one hash
// under a single key, so Clear removes them together.
type RedisLocalStore struct {
	rdb *redis.Client
}

// NewRedisLocalStore wraps an existing Redis client.
func NewRedisLocalStore(rdb *redis.Client) *RedisLocalStore {
	return &RedisLocalStore{rdb: rdb}
}

// NewRedisClient creates and verifies a Redis client connection.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return rdb, nil
}

func (s *RedisLocalStore) Load(ctx context.Context, clientID string) (LocalSession, error) {
	vals, err := s.rdb.HGetAll(ctx, localKeyPrefix+clientID).Result()
	if err != nil {
		return LocalSession{}, fmt.Errorf("load local session: %w", err)
	}
	return LocalSession{
		UserType: vals[fieldUserType],
		UserID:   vals[fieldUserID],
	}, nil
}

func (s *RedisLocalStore) Save(ctx context.Context, clientID string, sess LocalSession) error {
	key := localKeyPrefix + clientID
	pipe := s.rdb.TxPipeline()
	pipe.HSet(ctx, key, fieldUserType, sess.UserType, fieldUserID, sess.UserID)
	pipe.Expire(ctx, key, localSessionTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save local session: %w", err)
	}
	return nil
}

func (s *RedisLocalStore) Clear(ctx context.Context, clientID string) error {
	if err := s.rdb.Del(ctx, localKeyPrefix+clientID).Err(); err != nil {
		return fmt.Errorf("clear local session: %w", err)
	}
	return nil
}
