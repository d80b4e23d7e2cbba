package handlers

import (
	"net/http"

	"github.com/ray-remotestate/dinein/services"
	"github.com/ray-remotestate/dinein/utils"
)

func (h *Handler) CreateRestaurant(w http.ResponseWriter, r *http.Request) {
	var req services.RestaurantInput
	if _, err := decodeJSON(r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}
	res, err := h.Restaurants.Create(r.Context(), req)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, res)
}

func (h *Handler) ListRestaurants(w http.ResponseWriter, r *http.Request) {
	list, err := h.Restaurants.List(r.Context())
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, list)
}

func (h *Handler) GetRestaurant(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	res, err := h.Restaurants.Get(r.Context(), id)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) UpdateRestaurant(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	var req services.RestaurantInput
	if _, err := decodeJSON(r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}
	res, err := h.Restaurants.Update(r.Context(), id, req)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) DeleteRestaurant(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	if err := h.Restaurants.Delete(r.Context(), id); err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteMessage(w, http.StatusOK, "Restaurant deleted")
}
