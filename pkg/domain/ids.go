// Package domain holds domain primitives shared across services. IDs are
// validated at parse time so trust boundaries reject bad input once and the
// rest of the code can assume validity.
package domain

import (
	"unicode"

	"github.com/google/uuid"

	dErrors "admin-gateway/pkg/domainerrors"
)

// SessionID identifies a gateway session. Sessions are minted locally, so the
// ID is a UUID rather than an upstream-assigned opaque string.
type SessionID uuid.UUID

// NewSessionID returns a fresh random session ID.
func NewSessionID() SessionID {
	return SessionID(uuid.New())
}

// ParseSessionID validates and returns a SessionID.
func ParseSessionID(s string) (SessionID, error) {
	if s == "" {
		return SessionID{}, dErrors.New(dErrors.CodeInvalidInput, "session id is required")
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return SessionID{}, dErrors.New(dErrors.CodeInvalidInput, "session id is not a valid UUID")
	}
	if parsed == uuid.Nil {
		return SessionID{}, dErrors.New(dErrors.CodeInvalidInput, "session id must not be nil")
	}
	return SessionID(parsed), nil
}

func (id SessionID) String() string { return uuid.UUID(id).String() }

func (id SessionID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// Upstream-assigned identifiers are opaque strings: stable across requests,
// unique within their collection, and never interpreted beyond equality.
type (
	// UserID identifies an upstream user account.
	UserID string
	// RoleID identifies an upstream role.
	RoleID string
	// NodeID identifies a node in a directory tree (organization unit,
	// department, or menu entry).
	NodeID string
)

const maxOpaqueIDLen = 128

func parseOpaque(s, what string) (string, error) {
	if s == "" {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "%s is required", what)
	}
	if len(s) > maxOpaqueIDLen {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "%s is too long", what)
	}
	for _, r := range s {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return "", dErrors.Newf(dErrors.CodeInvalidInput, "%s contains whitespace or control characters", what)
		}
	}
	return s, nil
}

// ParseUserID validates an upstream user identifier.
func ParseUserID(s string) (UserID, error) {
	v, err := parseOpaque(s, "user id")
	return UserID(v), err
}

// ParseRoleID validates an upstream role identifier.
func ParseRoleID(s string) (RoleID, error) {
	v, err := parseOpaque(s, "role id")
	return RoleID(v), err
}

// ParseNodeID validates a directory tree node identifier.
func ParseNodeID(s string) (NodeID, error) {
	v, err := parseOpaque(s, "node id")
	return NodeID(v), err
}

func (id UserID) String() string { return string(id) }
func (id RoleID) String() string { return string(id) }
func (id NodeID) String() string { return string(id) }
