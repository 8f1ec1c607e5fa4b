package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "procanvas:session:"

// RedisSessionStore keeps sessions in Redis so every API instance sees
// the same logins. TTL expiry is delegated to Redis.
type RedisSessionStore struct {
	client redis.UniversalClient
}

func NewRedisSessionStore(ctx context.Context, redisURL string) (*RedisSessionStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisSessionStore{client: client}, nil
}

func (s *RedisSessionStore) Get(ctx context.Context, token string) (*Session, error) {
	raw, err := s.client.Get(ctx, sessionKeyPrefix+token).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}

		return nil, fmt.Errorf("failed to fetch session: %w", err)
	}

	var session Session

	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}

	if session.Expired(time.Now().UTC()) {
		return nil, ErrSessionNotFound
	}

	return &session, nil
}

func (s *RedisSessionStore) Put(ctx context.Context, token string, session *Session, ttl time.Duration) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	if err := s.client.Set(ctx, sessionKeyPrefix+token, raw, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}

	return nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, sessionKeyPrefix+token).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	return nil
}

func (s *RedisSessionStore) Close() error {
	return s.client.Close()
}
