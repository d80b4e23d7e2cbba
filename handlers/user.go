package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/ray-remotestate/dinein/middlewares"
	"github.com/ray-remotestate/dinein/models"
	"github.com/ray-remotestate/dinein/services"
	"github.com/ray-remotestate/dinein/utils"
)

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req services.LoginInput
	if _, err := decodeJSON(r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}
	res, err := h.Auth.Login(r.Context(), req)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"token":     res.Token,
		"expiresAt": res.ExpiresAt,
		"user":      res.User,
		"message":   "Successfully logged in",
	})
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req services.RegisterInput
	if _, err := decodeJSON(r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}
	user, err := h.Auth.Register(r.Context(), req)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, user)
}

// ListUsers lists every account, or those of one restaurant when restaurantId is given.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	var rid *uuid.UUID
	if raw := r.URL.Query().Get("restaurantId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			utils.WriteError(w, badRequest("invalid restaurantId"))
			return
		}
		rid = &id
	}
	users, err := h.Auth.ListUsers(r.Context(), rid)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, users)
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	user, err := h.Auth.GetUser(r.Context(), id)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, user)
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	var req services.UserUpdate
	if _, err := decodeJSON(r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}
	user, err := h.Auth.UpdateUser(r.Context(), id, req)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, user)
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	if claims, _ := middlewares.GetAuthenticatedUser(r); claims != nil && claims.UserID == id {
		utils.WriteError(w, badRequest("cannot delete your own account"))
		return
	}
	if err := h.Auth.DeleteUser(r.Context(), id); err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteMessage(w, http.StatusOK, "User deleted")
}

// Me returns the claims of the bearer token.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	claims, err := middlewares.GetAuthenticatedUser(r)
	if err != nil {
		utils.WriteError(w, models.ErrUnauthorized)
		return
	}
	user, err := h.Auth.GetUser(r.Context(), claims.UserID)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, user)
}
