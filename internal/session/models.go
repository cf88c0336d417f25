// Package session owns the gateway's session lifecycle: one Session per
// logged-in console user, holding the upstream bearer token that never leaves
// this process. The Manager is constructed once at startup and injected into
// every component that needs credentials; there is no ambient session state.
package session

import (
	"time"

	id "admin-gateway/pkg/domain"
)

// Session binds a console user to their upstream bearer token. The Token
// field is serialized only into the session store, never into responses.
type Session struct {
	ID         id.SessionID `json:"id"`
	UserID     id.UserID    `json:"user_id"`
	Username   string       `json:"username"`
	Token      string       `json:"token"`
	Device     string       `json:"device,omitempty"`
	IPAddress  string       `json:"ip_address,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
	ExpiresAt  time.Time    `json:"expires_at"`
	LastSeenAt time.Time    `json:"last_seen_at"`
}

// Expired reports whether the session has passed its expiry at time now.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// Summary is the client-safe projection of a session (no bearer token).
type Summary struct {
	SessionID  string    `json:"session_id"`
	UserID     string    `json:"user_id"`
	Username   string    `json:"username"`
	Device     string    `json:"device,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	LastSeenAt time.Time `json:"last_seen_at"`
}

// Summarize converts a session to its client-safe projection.
func (s *Session) Summarize() Summary {
	return Summary{
		SessionID:  s.ID.String(),
		UserID:     s.UserID.String(),
		Username:   s.Username,
		Device:     s.Device,
		CreatedAt:  s.CreatedAt,
		LastSeenAt: s.LastSeenAt,
	}
}
