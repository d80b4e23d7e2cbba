package handlers

import (
	"net/http"
	"strconv"

	"github.com/ray-remotestate/dinein/services"
	"github.com/ray-remotestate/dinein/utils"
)

func (h *Handler) CallWaiter(w http.ResponseWriter, r *http.Request) {
	var req services.WaiterCallInput
	bodyRID, err := decodeJSON(r, &req)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	if req.RestaurantID, err = restaurantScope(r, bodyRID); err != nil {
		utils.WriteError(w, err)
		return
	}
	call, err := h.Waiters.Call(r.Context(), req)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, call)
}

func (h *Handler) ListWaiterCalls(w http.ResponseWriter, r *http.Request) {
	rid, err := restaurantScope(r, "")
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	var all bool
	if raw := r.URL.Query().Get("all"); raw != "" {
		if all, err = strconv.ParseBool(raw); err != nil {
			utils.WriteError(w, badRequest("invalid all"))
			return
		}
	}
	calls, err := h.Waiters.List(r.Context(), rid, all)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, calls)
}

func (h *Handler) ResolveWaiterCall(w http.ResponseWriter, r *http.Request) {
	bodyRID, err := decodeJSON(r, nil)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	rid, id, err := scopedID(r, bodyRID)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	call, err := h.Waiters.Resolve(r.Context(), rid, id)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, call)
}
