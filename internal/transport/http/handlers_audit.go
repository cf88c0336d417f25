package httptransport

import (
	"net/http"
	"strconv"

	"admin-gateway/pkg/platform/httputil"
)

// handleAuditEvents serves the recent audit feed for operational tooling.
// Reachable only through the service-token group.
func (h *handlers) handleAuditEvents(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err == nil && parsed > 0 && parsed <= 1000 {
			limit = parsed
		}
	}
	events, err := h.deps.AuditStore.ListRecent(r.Context(), limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"events": events})
}
