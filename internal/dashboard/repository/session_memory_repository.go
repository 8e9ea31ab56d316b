package repository

import (
	"context"
	"fmt"
	"time"

	"financial-news-ai/internal/entity"

	"github.com/patrickmn/go-cache"
)

// NewMemorySessionRepository keeps sessions in process memory. Sessions are lost on restart.
func NewMemorySessionRepository(cleanupInterval time.Duration) SessionRepository {
	return &memorySessionRepository{
		store: cache.New(cache.NoExpiration, cleanupInterval),
	}
}

type memorySessionRepository struct {
	store *cache.Cache
}

func (r *memorySessionRepository) Save(ctx context.Context, session *entity.Session) error {
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session %s already expired", session.ID)
	}
	stored := *session
	r.store.Set(session.ID, &stored, ttl)
	return nil
}

func (r *memorySessionRepository) FindByID(ctx context.Context, id string) (*entity.Session, error) {
	v, ok := r.store.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	stored := *(v.(*entity.Session))
	return &stored, nil
}

func (r *memorySessionRepository) Delete(ctx context.Context, id string) error {
	r.store.Delete(id)
	return nil
}
