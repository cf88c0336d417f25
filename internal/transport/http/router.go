// Package httptransport is the thin HTTP layer over the gateway services.
// Handlers decode, delegate, and encode; every business decision lives in
// the services.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"admin-gateway/internal/audit"
	"admin-gateway/internal/jwttoken"
	"admin-gateway/internal/platform/middleware"
	dErrors "admin-gateway/pkg/domainerrors"
	"admin-gateway/pkg/platform/httputil"
)

// Deps collects everything the router wires together.
type Deps struct {
	Accounts    AccountService
	Directory   DirectoryService
	Assignments AssignmentService
	AuditStore  audit.Store
	Tokens      *jwttoken.Service
	Logger      *slog.Logger

	// ServiceTokenHash guards /internal routes; empty disables them.
	ServiceTokenHash string

	// Health reports readiness of backing stores. Nil means always healthy.
	Health func(ctx context.Context) error
}

// NewRouter builds the full route tree with the middleware chain applied.
func NewRouter(deps Deps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	h := &handlers{deps: deps, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.ClientMetadata)
	r.Use(middleware.Recover(logger))
	r.Use(middleware.Logging(logger))

	r.Get("/healthz", h.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Post("/auth/login", h.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(deps.Tokens, logger))

		r.Post("/auth/logout", h.handleLogout)
		r.Get("/auth/me", h.handleCurrentUser)

		r.Get("/directory/organizations/tree", h.handleOrganizationTree)
		r.Get("/directory/organizations/{orgID}/departments/tree", h.handleDepartmentTree)
		r.Get("/directory/menus/tree", h.handleMenuTree)

		r.Get("/roles/{roleID}/menus", h.handleRoleMenus)
		r.Put("/roles/{roleID}/menus", h.handleSaveRoleMenus)
		r.Get("/roles/{roleID}/permissions", h.handleRolePermissions)
		r.Put("/roles/{roleID}/permissions", h.handleSaveRolePermissions)
	})

	if deps.ServiceTokenHash != "" {
		r.Group(func(r chi.Router) {
			r.Use(middleware.ServiceToken(deps.ServiceTokenHash, logger))
			r.Get("/internal/audit/events", h.handleAuditEvents)
		})
	}

	return r
}

type handlers struct {
	deps   Deps
	logger *slog.Logger
}

// writeError maps a service error onto the response, honoring the same
// browser-vs-API split as the auth middleware: when the upstream invalidates
// the session mid-request, browser navigation is redirected to login instead
// of receiving a bare 401 body.
func (h *handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := dErrors.CodeOf(err)
	if (code == dErrors.CodeSessionExpired || code == dErrors.CodeUnauthorized) && middleware.WantsHTML(r) {
		middleware.RedirectToLogin(w, r)
		return
	}
	httputil.WriteError(w, err)
}

func (h *handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	if h.deps.Health != nil {
		if err := h.deps.Health(r.Context()); err != nil {
			httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
