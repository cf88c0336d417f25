package lockout

import (
	"context"
	"log/slog"
	"time"

	dErrors "admin-gateway/pkg/domainerrors"
)

// Config holds the lockout policy. MaxAttempts failures within Window lock
// the identifier for LockDuration.
type Config struct {
	MaxAttempts  int
	Window       time.Duration
	LockDuration time.Duration
}

func DefaultConfig() Config {
	return Config{
		MaxAttempts:  5,
		Window:       15 * time.Minute,
		LockDuration: 15 * time.Minute,
	}
}

type Service struct {
	store  Store
	config Config
	logger *slog.Logger
	now    func() time.Time
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store Store, config Config, opts ...Option) *Service {
	s := &Service{
		store:  store,
		config: config,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Check rejects the attempt with rate_limited when the identifier is
// hard-locked or has exhausted the window. It never reveals how many
// attempts remain.
func (s *Service) Check(ctx context.Context, username, ip string) error {
	key := Key(username, ip)
	record, err := s.store.Get(ctx, key)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "could not load lockout state")
	}
	if record == nil {
		return nil
	}
	now := s.now()
	if record.LockedAt(now) {
		s.logger.WarnContext(ctx, "login attempt while locked",
			"identifier", key,
			"locked_until", *record.LockedUntil,
		)
		return dErrors.New(dErrors.CodeRateLimited, "too many failed attempts, try again later")
	}
	if !record.WindowExpired(s.config.Window, now) && record.FailureCount >= s.config.MaxAttempts {
		return dErrors.New(dErrors.CodeRateLimited, "too many failed attempts, try again later")
	}
	return nil
}

// RecordFailure counts a failed login. Reaching MaxAttempts inside the
// window applies the hard lock. The stored record expires one window past
// the lock so quiet identifiers age out of the store.
func (s *Service) RecordFailure(ctx context.Context, username, ip string) error {
	key := Key(username, ip)
	record, err := s.store.Get(ctx, key)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "could not load lockout state")
	}
	now := s.now()
	if record == nil || record.WindowExpired(s.config.Window, now) {
		record = &Record{Identifier: key, FirstFailedAt: now}
	}
	record.FailureCount++
	record.LastFailedAt = now

	if record.FailureCount >= s.config.MaxAttempts && !record.LockedAt(now) {
		until := now.Add(s.config.LockDuration)
		record.LockedUntil = &until
		s.logger.WarnContext(ctx, "login lockout applied",
			"identifier", key,
			"failures", record.FailureCount,
			"locked_until", until,
		)
	}

	ttl := s.config.Window + s.config.LockDuration
	if err := s.store.Put(ctx, record, ttl); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "could not persist lockout state")
	}
	return nil
}

// Clear forgets the failure history after a successful login.
func (s *Service) Clear(ctx context.Context, username, ip string) error {
	if err := s.store.Delete(ctx, Key(username, ip)); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "could not clear lockout state")
	}
	return nil
}
