package session

import (
	"context"

	id "admin-gateway/pkg/domain"
	dErrors "admin-gateway/pkg/domainerrors"
)

// ErrNotFound keeps storage-specific misses consistent across
// implementations. Expiry is the Manager's business, not the store's; stores
// may additionally enforce a TTL (Redis) but must still answer Get for
// records they hold.
var ErrNotFound = dErrors.New(dErrors.CodeNotFound, "session not found")

// Store persists sessions. Delete on an absent session is a no-op so that
// concurrent expiry handling stays idempotent.
type Store interface {
	Create(ctx context.Context, s *Session) error
	Get(ctx context.Context, sessionID id.SessionID) (*Session, error)
	Update(ctx context.Context, s *Session) error
	Delete(ctx context.Context, sessionID id.SessionID) error
}
