package lockout

import (
	"context"
	"time"
)

// Store persists failure records keyed by hashed identifier. Get returns
// (nil, nil) for an unknown identifier; absence is not an error here because
// most logins have no failure history.
type Store interface {
	Get(ctx context.Context, key string) (*Record, error)
	Put(ctx context.Context, record *Record, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
