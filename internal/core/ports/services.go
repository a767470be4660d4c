package ports

import (
	"context"

	"github.com/enekolm/aldapa/internal/core/domain"
)

// EventPublisher publishes session events to a message broker.
type EventPublisher interface {
	PublishSessionStatus(ctx context.Context, evt *domain.SessionEvent) error
	PublishProfileCompleted(ctx context.Context, m *domain.Measurement) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}
