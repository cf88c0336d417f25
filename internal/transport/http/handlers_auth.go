package httptransport

import (
	"context"
	"net/http"

	"admin-gateway/internal/account"
	"admin-gateway/internal/platform/middleware"
	"admin-gateway/pkg/platform/httputil"
)

// AccountService is the slice of the account service the transport needs.
type AccountService interface {
	Login(ctx context.Context, creds account.Credentials) (*account.LoginResult, error)
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) (*account.User, error)
}

func (h *handlers) handleLogin(w http.ResponseWriter, r *http.Request) {
	creds, err := httputil.Decode[account.Credentials](r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	result, err := h.deps.Accounts.Login(r.Context(), creds)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	// Browser navigation authenticates via cookie; API clients read the
	// token from the body.
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    result.Token,
		Path:     "/",
		Expires:  result.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *handlers) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.Accounts.Logout(r.Context()); err != nil {
		h.writeError(w, r, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "signed_out"})
}

func (h *handlers) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.deps.Accounts.CurrentUser(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, user)
}
