package middleware

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"admin-gateway/internal/jwttoken"
	id "admin-gateway/pkg/domain"
	dErrors "admin-gateway/pkg/domainerrors"
	"admin-gateway/pkg/platform/httputil"
	"admin-gateway/pkg/requestcontext"
	"admin-gateway/pkg/secrets"
)

// SessionCookie is the cookie the console stores the session JWT in for
// browser navigation. API clients send the same token as a bearer header.
const SessionCookie = "admin_session"

// LoginPath is where unauthenticated browser navigation is sent.
const LoginPath = "/login"

// Auth validates the session JWT and loads the caller's identity into the
// request context. An unauthenticated API request gets a 401 JSON body; an
// unauthenticated browser navigation (Accept: text/html) is redirected to
// the login page with the original path in the redirect parameter.
func Auth(tokens *jwttoken.Service, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				denyUnauthenticated(w, r, "authentication required")
				return
			}

			claims, err := tokens.Validate(token)
			if err != nil {
				logger.WarnContext(r.Context(), "rejected session token",
					"error", err,
					"request_id", requestcontext.RequestID(r.Context()),
				)
				denyUnauthenticated(w, r, dErrors.MessageOf(err))
				return
			}

			sessionID, err := id.ParseSessionID(claims.SessionID)
			if err != nil {
				denyUnauthenticated(w, r, "invalid session")
				return
			}
			userID, err := id.ParseUserID(claims.UserID)
			if err != nil {
				denyUnauthenticated(w, r, "invalid session")
				return
			}

			ctx := requestcontext.WithSessionID(r.Context(), sessionID)
			ctx = requestcontext.WithUserID(ctx, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	if after, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return after
	}
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		return cookie.Value
	}
	return ""
}

// denyUnauthenticated picks redirect-vs-JSON based on what the caller is:
// browsers navigating pages accept text/html and get sent to login with the
// original path preserved, everything else gets a machine-readable 401.
func denyUnauthenticated(w http.ResponseWriter, r *http.Request, message string) {
	if WantsHTML(r) {
		RedirectToLogin(w, r)
		return
	}
	httputil.WriteJSON(w, http.StatusUnauthorized, httputil.ErrorBody{
		Error:   string(dErrors.CodeUnauthorized),
		Message: message,
	})
}

// WantsHTML reports whether the request is browser navigation rather than an
// API call. Handlers use it to route auth failures to the login redirect.
func WantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

// RedirectToLogin sends the caller to the login page with the original
// request URI preserved in the redirect parameter.
func RedirectToLogin(w http.ResponseWriter, r *http.Request) {
	target := LoginPath + "?redirect=" + url.QueryEscape(r.URL.RequestURI())
	http.Redirect(w, r, target, http.StatusFound)
}

// ServiceToken guards internal operational endpoints with a pre-shared
// token, compared against its bcrypt hash. Used for routes that must work
// without a user session, e.g. the audit feed scraper.
func ServiceToken(tokenHash string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get("X-Service-Token")
			if token == "" || tokenHash == "" {
				forbid(w)
				return
			}
			if err := secrets.Verify(token, tokenHash); err != nil {
				logger.WarnContext(r.Context(), "rejected service token",
					"request_id", requestcontext.RequestID(r.Context()),
				)
				forbid(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func forbid(w http.ResponseWriter) {
	httputil.WriteJSON(w, http.StatusForbidden, httputil.ErrorBody{
		Error:   string(dErrors.CodeForbidden),
		Message: "service token required",
	})
}
