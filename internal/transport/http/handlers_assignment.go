package httptransport

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"admin-gateway/internal/assignment"
	id "admin-gateway/pkg/domain"
	dErrors "admin-gateway/pkg/domainerrors"
	"admin-gateway/pkg/platform/httputil"
)

// AssignmentService is the slice of the assignment service the transport
// needs.
type AssignmentService interface {
	MenuAssignment(ctx context.Context, roleID id.RoleID) (*assignment.MenuAssignment, error)
	SaveMenus(ctx context.Context, roleID id.RoleID, menuIDs []string) error
	PermissionAssignment(ctx context.Context, roleID id.RoleID) (*assignment.PermissionAssignment, error)
	SavePermissions(ctx context.Context, roleID id.RoleID, permissionIDs []string) error
}

// menuRow is the flattened, display-ready shape of one menu catalog entry.
type menuRow struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Path    string `json:"path,omitempty"`
	Icon    string `json:"icon,omitempty"`
	Depth   int    `json:"depth"`
	Checked bool   `json:"checked"`
}

type permissionRow struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Action  string `json:"action,omitempty"`
	Depth   int    `json:"depth"`
	Checked bool   `json:"checked"`
}

type saveGrantsRequest struct {
	IDs []string `json:"ids"`
}

func roleIDParam(r *http.Request) (id.RoleID, error) {
	roleID, err := id.ParseRoleID(chi.URLParam(r, "roleID"))
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid role id")
	}
	return roleID, nil
}

func (h *handlers) handleRoleMenus(w http.ResponseWriter, r *http.Request) {
	roleID, err := roleIDParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	a, err := h.deps.Assignments.MenuAssignment(r.Context(), roleID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	rendered := a.Rows()
	rows := make([]menuRow, len(rendered))
	for i, row := range rendered {
		rows[i] = menuRow{
			ID:      row.Node.ID,
			Name:    row.Node.Name,
			Path:    row.Node.Path,
			Icon:    row.Node.Icon,
			Depth:   row.Depth,
			Checked: row.Checked,
		}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"rows":         rows,
		"selected_ids": a.Selection.IDs(),
	})
}

func (h *handlers) handleSaveRoleMenus(w http.ResponseWriter, r *http.Request) {
	roleID, err := roleIDParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	req, err := httputil.Decode[saveGrantsRequest](r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.deps.Assignments.SaveMenus(r.Context(), roleID, req.IDs); err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

func (h *handlers) handleRolePermissions(w http.ResponseWriter, r *http.Request) {
	roleID, err := roleIDParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	a, err := h.deps.Assignments.PermissionAssignment(r.Context(), roleID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	rendered := a.Rows()
	rows := make([]permissionRow, len(rendered))
	for i, row := range rendered {
		rows[i] = permissionRow{
			ID:      row.Node.ID,
			Name:    row.Node.Name,
			Action:  row.Node.Action,
			Depth:   row.Depth,
			Checked: row.Checked,
		}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"rows":         rows,
		"selected_ids": a.Selection.IDs(),
	})
}

func (h *handlers) handleSaveRolePermissions(w http.ResponseWriter, r *http.Request) {
	roleID, err := roleIDParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	req, err := httputil.Decode[saveGrantsRequest](r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.deps.Assignments.SavePermissions(r.Context(), roleID, req.IDs); err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}
