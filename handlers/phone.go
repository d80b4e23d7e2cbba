package handlers

import (
	"net/http"

	"github.com/ray-remotestate/dinein/utils"
)

type phoneRequest struct {
	Phone string `json:"phone"`
	Code  string `json:"code"`
}

func (h *Handler) SendPhoneOTP(w http.ResponseWriter, r *http.Request) {
	var req phoneRequest
	if _, err := decodeJSON(r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}
	if err := h.Phone.SendOTP(r.Context(), req.Phone); err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteMessage(w, http.StatusOK, "OTP sent")
}

func (h *Handler) VerifyPhoneOTP(w http.ResponseWriter, r *http.Request) {
	var req phoneRequest
	if _, err := decodeJSON(r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}
	ok, err := h.Phone.CheckOTP(r.Context(), req.Phone, req.Code)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, map[string]any{"verified": false, "error": "invalid code"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{"verified": true})
}
