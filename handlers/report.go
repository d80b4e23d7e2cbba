package handlers

import (
	"net/http"

	"github.com/ray-remotestate/dinein/utils"
)

// Report answers GET /reports?date=2006-01-02 with day and month totals.
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	rid, err := restaurantScope(r, "")
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	rep, err := h.Reports.Daily(r.Context(), rid, r.URL.Query().Get("date"))
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, rep)
}
