// Package account handles who is signed in: login against the upstream API,
// logout, and the current user's profile. It owns the exchange of upstream
// credentials for a gateway session.
package account

import "time"

// Credentials are the login inputs as received from the client.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// User is the signed-in account's profile as reported by the upstream.
type User struct {
	ID       string   `json:"id"`
	Username string   `json:"username"`
	Name     string   `json:"name"`
	Email    string   `json:"email,omitempty"`
	Avatar   string   `json:"avatar,omitempty"`
	Roles    []string `json:"roles,omitempty"`
}

// LoginResult is what a successful login hands back to the transport layer:
// the gateway-issued token and the profile to display.
type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      User      `json:"user"`
}
