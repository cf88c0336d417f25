package account

import (
	"context"
	"log/slog"
	"strings"

	"github.com/asaskevich/govalidator"
	"github.com/mssola/useragent"

	"admin-gateway/internal/audit"
	"admin-gateway/internal/jwttoken"
	"admin-gateway/internal/lockout"
	"admin-gateway/internal/session"
	"admin-gateway/internal/upstream"
	id "admin-gateway/pkg/domain"
	dErrors "admin-gateway/pkg/domainerrors"
	"admin-gateway/pkg/requestcontext"
)

// LoginCounter abstracts the login outcome metric.
type LoginCounter interface {
	IncLogin(outcome string)
}

type Service struct {
	client   *upstream.Client
	sessions *session.Manager
	tokens   *jwttoken.Service
	lockouts *lockout.Service
	recorder *audit.Recorder
	counter  LoginCounter
	logger   *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithLoginCounter(counter LoginCounter) Option {
	return func(s *Service) { s.counter = counter }
}

func NewService(client *upstream.Client, sessions *session.Manager, tokens *jwttoken.Service, lockouts *lockout.Service, recorder *audit.Recorder, opts ...Option) *Service {
	s := &Service{
		client:   client,
		sessions: sessions,
		tokens:   tokens,
		lockouts: lockouts,
		recorder: recorder,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// upstreamLogin is the wire shape of the upstream's login response.
type upstreamLogin struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Login validates credentials, checks the lockout, exchanges the credentials
// with the upstream, and mints a gateway session plus JWT. Failed attempts
// are counted toward the lockout; invalid and unknown credentials are
// indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, creds Credentials) (*LoginResult, error) {
	if err := validateCredentials(creds); err != nil {
		return nil, err
	}
	ip := requestcontext.ClientIP(ctx)

	if err := s.lockouts.Check(ctx, creds.Username, ip); err != nil {
		s.countLogin("locked_out")
		return nil, err
	}

	// Explicit empty token: the login request must not carry a stale
	// session credential.
	result, err := upstream.Post[upstreamLogin](ctx, s.client, "/auth/login", creds, upstream.WithToken(""))
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeUnauthorized) {
			return nil, s.loginRejected(ctx, creds.Username, ip)
		}
		s.countLogin("error")
		return nil, err
	}
	if result.Token == "" {
		s.countLogin("error")
		return nil, dErrors.New(dErrors.CodeSchema, "upstream login response is missing the token")
	}

	if err := s.lockouts.Clear(ctx, creds.Username, ip); err != nil {
		s.logger.WarnContext(ctx, "could not clear lockout after login", "error", err)
	}

	userID, err := id.ParseUserID(result.User.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeSchema, "upstream login response has an invalid user id")
	}

	sess, err := s.sessions.Create(ctx, session.NewSession{
		UserID:    userID,
		Username:  result.User.Username,
		Token:     result.Token,
		Device:    deviceName(requestcontext.UserAgent(ctx)),
		IPAddress: ip,
	})
	if err != nil {
		return nil, err
	}

	gatewayToken, err := s.tokens.Generate(userID, sess.ID, result.User.Username, sess.ExpiresAt)
	if err != nil {
		_ = s.sessions.Delete(ctx, sess.ID)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not issue session token")
	}

	s.countLogin("success")
	s.recorder.Record(ctx, audit.Event{
		Action:    audit.ActionLoginSucceeded,
		UserID:    userID.String(),
		Username:  result.User.Username,
		SessionID: sess.ID.String(),
		Device:    sess.Device,
	})
	return &LoginResult{
		Token:     gatewayToken,
		ExpiresAt: sess.ExpiresAt,
		User:      result.User,
	}, nil
}

func (s *Service) loginRejected(ctx context.Context, username, ip string) error {
	if err := s.lockouts.RecordFailure(ctx, username, ip); err != nil {
		s.logger.WarnContext(ctx, "could not record login failure", "error", err)
	}
	s.countLogin("failure")
	s.recorder.Record(ctx, audit.Event{
		Action:   audit.ActionLoginFailed,
		Username: username,
		Reason:   "credentials rejected",
	})
	return dErrors.New(dErrors.CodeUnauthorized, "invalid username or password")
}

// Logout ends the session in the request context. The upstream is notified
// best-effort; the gateway session is removed regardless since a dangling
// upstream token expires on its own.
func (s *Service) Logout(ctx context.Context) error {
	sessionID := requestcontext.SessionID(ctx)
	if sessionID.IsNil() {
		return nil
	}
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		// Already expired or cleared.
		return nil
	}

	if _, err := upstream.Post[struct{}](ctx, s.client, "/auth/logout", nil); err != nil {
		s.logger.WarnContext(ctx, "upstream logout failed",
			"session_id", sessionID.String(),
			"error", err,
		)
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return err
	}
	s.recorder.Record(ctx, audit.Event{
		Action:    audit.ActionLogout,
		UserID:    sess.UserID.String(),
		Username:  sess.Username,
		SessionID: sessionID.String(),
	})
	return nil
}

// CurrentUser fetches the signed-in user's profile from the upstream using
// the session token in the request context.
func (s *Service) CurrentUser(ctx context.Context) (*User, error) {
	user, err := upstream.Get[User](ctx, s.client, "/auth/me")
	if err != nil {
		return nil, err
	}
	if user.ID == "" {
		return nil, dErrors.New(dErrors.CodeSchema, "upstream profile response is missing the user id")
	}
	return &user, nil
}

func (s *Service) countLogin(outcome string) {
	if s.counter != nil {
		s.counter.IncLogin(outcome)
	}
}

func validateCredentials(creds Credentials) error {
	if !govalidator.StringLength(creds.Username, "1", "128") {
		return dErrors.New(dErrors.CodeInvalidInput, "username is required")
	}
	if !govalidator.StringLength(creds.Password, "1", "256") {
		return dErrors.New(dErrors.CodeInvalidInput, "password is required")
	}
	return nil
}

// deviceName turns a User-Agent header into a short human-readable label for
// the session list, e.g. "Chrome 126 on Linux".
func deviceName(rawUA string) string {
	if rawUA == "" {
		return "unknown"
	}
	ua := useragent.New(rawUA)
	browser, version := ua.Browser()
	if browser == "" {
		return "unknown"
	}
	name := browser
	if version != "" {
		if i := strings.IndexByte(version, '.'); i > 0 {
			version = version[:i]
		}
		name += " " + version
	}
	if os := ua.OSInfo().Name; os != "" {
		name += " on " + os
	}
	return name
}
