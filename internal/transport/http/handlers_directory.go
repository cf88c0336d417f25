package httptransport

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"admin-gateway/internal/directory"
	id "admin-gateway/pkg/domain"
	dErrors "admin-gateway/pkg/domainerrors"
	"admin-gateway/pkg/platform/httputil"
)

// DirectoryService is the slice of the directory service the transport needs.
type DirectoryService interface {
	OrganizationTree(ctx context.Context) ([]directory.Organization, error)
	DepartmentTree(ctx context.Context, orgID id.NodeID) ([]directory.Department, error)
	MenuTree(ctx context.Context) ([]directory.Menu, error)
}

func (h *handlers) handleOrganizationTree(w http.ResponseWriter, r *http.Request) {
	forest, err := h.deps.Directory.OrganizationTree(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"tree": forest})
}

func (h *handlers) handleDepartmentTree(w http.ResponseWriter, r *http.Request) {
	orgID, err := id.ParseNodeID(chi.URLParam(r, "orgID"))
	if err != nil {
		h.writeError(w, r, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid organization id"))
		return
	}
	forest, err := h.deps.Directory.DepartmentTree(r.Context(), orgID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"tree": forest})
}

func (h *handlers) handleMenuTree(w http.ResponseWriter, r *http.Request) {
	forest, err := h.deps.Directory.MenuTree(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"tree": forest})
}
