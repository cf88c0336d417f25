package testutil

import (
	"net/http"

	id "admin-gateway/pkg/domain"
	"admin-gateway/pkg/requestcontext"
)

// WithUserID simulates the auth middleware by injecting a user ID into the
// request context.
func WithUserID(req *http.Request, userID string) *http.Request {
	parsed, err := id.ParseUserID(userID)
	if err != nil {
		return req
	}
	return req.WithContext(requestcontext.WithUserID(req.Context(), parsed))
}

// WithSessionID injects a session ID into the request context, as the auth
// middleware would for an authenticated request.
func WithSessionID(req *http.Request, sessionID id.SessionID) *http.Request {
	return req.WithContext(requestcontext.WithSessionID(req.Context(), sessionID))
}

// WithRequestID injects a correlation id into the request context.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}
