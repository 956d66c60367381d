package cache

import (
	"context"
	"time"
)

// Store is a best-effort byte cache. A miss and a backend failure look the
// same to callers.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, val []byte)
	Delete(ctx context.Context, key string)
}

const defaultTTL = 5 * time.Second

func ttlOrDefault(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return defaultTTL
	}
	return ttl
}
