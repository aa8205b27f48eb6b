// Package cache is the short-lived key/value store behind reset codes and
// the refresh-token blacklist.
package cache

import (
	"context"
	"time"
)

// Store is a TTL key/value store. Get returns common.ErrorNotFound for
// missing or expired keys.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// SetNX writes only when the key is absent and reports whether it did.
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	// CompareAndDelete removes key only if it currently holds expected.
	// At most one concurrent caller observes true for the same value.
	CompareAndDelete(ctx context.Context, key, expected string) (bool, error)
}
