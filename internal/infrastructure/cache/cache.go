package cache

import (
	"context"
	"time"
)

// Store is the key-value surface the pipeline needs: webhook deduplication
// via SetNX and short-lived status lookups via Get/Set.
type Store interface {
	Set(ctx context.Context, key, value string, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, bool, error)
	SetNX(ctx context.Context, key, value string, expiration time.Duration) (bool, error)
	Delete(ctx context.Context, key string) error
}
