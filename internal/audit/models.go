// Package audit records security-relevant actions taken through the gateway:
// logins, logouts, forced session expiries, and grant changes. Events are
// persisted to a store for querying and optionally fanned out to Kafka for
// downstream consumers.
package audit

import (
	"time"

	"github.com/google/uuid"
)

type Action string

const (
	ActionLoginSucceeded Action = "login_succeeded"
	ActionLoginFailed    Action = "login_failed"
	ActionLogout         Action = "logout"
	ActionSessionExpired Action = "session_expired"
	ActionGrantsUpdated  Action = "grants_updated"
)

// Event is one audit record. UserID and Username identify the acting
// account; Subject carries the acted-upon entity for grant changes (the role
// id). Reason is only set for failures.
type Event struct {
	ID        uuid.UUID `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Action    Action    `json:"action"`
	UserID    string    `json:"user_id,omitempty"`
	Username  string    `json:"username,omitempty"`
	SessionID string    `json:"session_id,omitempty"`
	Subject   string    `json:"subject,omitempty"`
	IPAddress string    `json:"ip_address,omitempty"`
	Device    string    `json:"device,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
}
