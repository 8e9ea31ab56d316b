package repository

import (
	"context"
	"fmt"
	"time"

	"financial-news-ai/internal/entity"
	"financial-news-ai/pkg/common"

	"github.com/redis/go-redis/v9"
)

// NewRedisSessionRepository stores each session as a hash with a TTL.
func NewRedisSessionRepository(client *redis.Client) SessionRepository {
	return &redisSessionRepository{client: client}
}

type redisSessionRepository struct {
	client *redis.Client
}

func sessionKey(id string) string {
	return common.RedisSessionKeyPrefix + id
}

// Save writes the session hash and sets it to expire at session.ExpiresAt.
func (r *redisSessionRepository) Save(ctx context.Context, session *entity.Session) error {
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session %s already expired", session.ID)
	}

	key := sessionKey(session.ID)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, map[string]interface{}{
			common.SessionFieldAuthToken: common.SessionAuthTokenValue,
			common.SessionFieldAuthName:  session.Name,
			common.SessionFieldAuthEmail: session.Email,
			common.SessionFieldCreatedAt: session.CreatedAt.UTC().Format(time.RFC3339Nano),
			common.SessionFieldExpiresAt: session.ExpiresAt.UTC().Format(time.RFC3339Nano),
		})
		pipe.Expire(ctx, key, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// FindByID loads a session. A hash without authToken == "1" or with unreadable timestamps counts as logged out.
func (r *redisSessionRepository) FindByID(ctx context.Context, id string) (*entity.Session, error) {
	fields, err := r.client.HGetAll(ctx, sessionKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if fields[common.SessionFieldAuthToken] != common.SessionAuthTokenValue {
		return nil, ErrSessionNotFound
	}

	createdAt, err := parseSessionTime(fields, common.SessionFieldCreatedAt)
	if err != nil {
		return nil, err
	}
	expiresAt, err := parseSessionTime(fields, common.SessionFieldExpiresAt)
	if err != nil {
		return nil, err
	}

	return &entity.Session{
		ID:        id,
		Name:      fields[common.SessionFieldAuthName],
		Email:     fields[common.SessionFieldAuthEmail],
		CreatedAt: createdAt,
		ExpiresAt: expiresAt,
	}, nil
}

// parseSessionTime reads a timestamp field. A missing or corrupt value makes the session unusable.
func parseSessionTime(fields map[string]string, field string) (time.Time, error) {
	v, ok := fields[field]
	if !ok {
		return time.Time{}, fmt.Errorf("%w: missing %s", ErrSessionNotFound, field)
	}
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: corrupt %s: %v", ErrSessionNotFound, field, err)
	}
	return t, nil
}

// Delete removes the session hash. Deleting a missing session is not an error.
func (r *redisSessionRepository) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
