package session

import (
	"context"
	"errors"
	"log/slog"
	"time"

	id "admin-gateway/pkg/domain"
	dErrors "admin-gateway/pkg/domainerrors"
)

// Manager is the single source of truth for live sessions. It is constructed
// once at process start and passed explicitly to every component that issues
// upstream requests.
type Manager struct {
	store  Store
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time
}

type ManagerOption func(*Manager)

func WithLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) { m.logger = logger }
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) { m.now = now }
}

func NewManager(store Store, ttl time.Duration, opts ...ManagerOption) *Manager {
	m := &Manager{
		store:  store,
		ttl:    ttl,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// NewSession describes the inputs for creating a session after a successful
// upstream login.
type NewSession struct {
	UserID    id.UserID
	Username  string
	Token     string
	Device    string
	IPAddress string
}

// Create mints and persists a session bound to an upstream bearer token.
func (m *Manager) Create(ctx context.Context, in NewSession) (*Session, error) {
	if in.Token == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "upstream token is required")
	}
	now := m.now()
	sess := &Session{
		ID:         id.NewSessionID(),
		UserID:     in.UserID,
		Username:   in.Username,
		Token:      in.Token,
		Device:     in.Device,
		IPAddress:  in.IPAddress,
		CreatedAt:  now,
		ExpiresAt:  now.Add(m.ttl),
		LastSeenAt: now,
	}
	if err := m.store.Create(ctx, sess); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not persist session")
	}
	m.logger.InfoContext(ctx, "session created",
		"session_id", sess.ID.String(),
		"user_id", sess.UserID.String(),
	)
	return sess, nil
}

// Get returns the live session, or a session_expired error when the session
// is unknown or past its expiry. An expired record is deleted on the way out.
func (m *Manager) Get(ctx context.Context, sessionID id.SessionID) (*Session, error) {
	sess, err := m.store.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeSessionExpired, "session is no longer valid")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not load session")
	}
	if sess.Expired(m.now()) {
		_ = m.store.Delete(ctx, sessionID)
		return nil, dErrors.New(dErrors.CodeSessionExpired, "session has expired")
	}
	return sess, nil
}

// Delete removes a session. Deleting an unknown session succeeds: clearing an
// already-cleared session must be a no-op so concurrent 401 handling cannot
// race.
func (m *Manager) Delete(ctx context.Context, sessionID id.SessionID) error {
	if sessionID.IsNil() {
		return nil
	}
	if err := m.store.Delete(ctx, sessionID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "could not delete session")
	}
	m.logger.InfoContext(ctx, "session deleted", "session_id", sessionID.String())
	return nil
}

// Touch records activity on a session. Failures are logged, not surfaced:
// LastSeenAt is advisory.
func (m *Manager) Touch(ctx context.Context, sessionID id.SessionID) {
	sess, err := m.store.Get(ctx, sessionID)
	if err != nil {
		return
	}
	sess.LastSeenAt = m.now()
	if err := m.store.Update(ctx, sess); err != nil {
		m.logger.WarnContext(ctx, "could not touch session",
			"session_id", sessionID.String(),
			"error", err,
		)
	}
}
