package api

import (
	"net/http"
)

// GetDashboard handles GET /api/dashboard: entity counts, active planting
// count, and the next upcoming plantings.
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	summary, err := h.repo.DashboardSummary(r.Context())
	if err != nil {
		StoreError(w, err)
		return
	}
	JSON(w, http.StatusOK, summary)
}
