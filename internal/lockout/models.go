// Package lockout throttles login attempts. Repeated failures for the same
// account/address pair inside a sliding window lead to a temporary hard lock.
// Identifiers are hashed before storage so the stores never hold a plaintext
// username/IP pair.
package lockout

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Record tracks the failure history for one identifier.
type Record struct {
	Identifier    string     `json:"identifier"`
	FailureCount  int        `json:"failure_count"`
	FirstFailedAt time.Time  `json:"first_failed_at"`
	LastFailedAt  time.Time  `json:"last_failed_at"`
	LockedUntil   *time.Time `json:"locked_until,omitempty"`
}

// LockedAt reports whether the record is hard-locked at the given instant.
func (r *Record) LockedAt(now time.Time) bool {
	return r.LockedUntil != nil && now.Before(*r.LockedUntil)
}

// WindowExpired reports whether the failure window has lapsed, meaning the
// count starts over on the next failure.
func (r *Record) WindowExpired(window time.Duration, now time.Time) bool {
	return now.Sub(r.LastFailedAt) > window
}

// Key derives the storage identifier for an account/address pair. Only the
// hash leaves this package.
func Key(username, ip string) string {
	sum := sha256.Sum256([]byte(username + "\x00" + ip))
	return hex.EncodeToString(sum[:16])
}
