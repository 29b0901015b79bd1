package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Cache stores serialized responses under caller-chosen keys. A miss is
// reported with ok == false and a nil error.
type Cache interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// DeletePrefix drops every entry whose key starts with prefix.
	DeletePrefix(ctx context.Context, prefix string) error
}

// GetJSON decodes a cached entry into dst.
func GetJSON(ctx context.Context, c Cache, key string, dst any) (bool, error) {
	raw, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("failed to decode cached %q: %w", key, err)
	}
	return true, nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(ctx context.Context, c Cache, key string, v any, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry %q: %w", key, err)
	}
	return c.Set(ctx, key, raw, ttl)
}
