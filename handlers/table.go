package handlers

import (
	"net/http"

	"github.com/ray-remotestate/dinein/models"
	"github.com/ray-remotestate/dinein/services"
	"github.com/ray-remotestate/dinein/utils"
)

func (h *Handler) CreateTable(w http.ResponseWriter, r *http.Request) {
	var req services.CreateTableInput
	bodyRID, err := decodeJSON(r, &req)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	if req.RestaurantID, err = restaurantScope(r, bodyRID); err != nil {
		utils.WriteError(w, err)
		return
	}
	table, err := h.Tables.Create(r.Context(), req)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, table)
}

func (h *Handler) ListTables(w http.ResponseWriter, r *http.Request) {
	rid, err := restaurantScope(r, "")
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	tables, err := h.Tables.List(r.Context(), rid)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, tables)
}

func (h *Handler) GetTable(w http.ResponseWriter, r *http.Request) {
	rid, id, err := scopedID(r, "")
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	table, err := h.Tables.Get(r.Context(), rid, id)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, table)
}

func (h *Handler) UpdateTable(w http.ResponseWriter, r *http.Request) {
	var req services.UpdateTableInput
	bodyRID, err := decodeJSON(r, &req)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	rid, id, err := scopedID(r, bodyRID)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	table, err := h.Tables.Update(r.Context(), rid, id, req)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, table)
}

func (h *Handler) DeleteTable(w http.ResponseWriter, r *http.Request) {
	rid, id, err := scopedID(r, "")
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	if err := h.Tables.Delete(r.Context(), rid, id); err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteMessage(w, http.StatusOK, "Table deleted")
}

func (h *Handler) RefreshTableOTP(w http.ResponseWriter, r *http.Request) {
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
	table, err := h.Tables.RefreshOTP(r.Context(), rid, id)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, table)
}

// VerifyTableOTP is the customer entry point: a valid code identifies the table.
func (h *Handler) VerifyTableOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OTP string `json:"otp"`
	}
	bodyRID, err := decodeJSON(r, &req)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	rid, err := restaurantScope(r, bodyRID)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	table, err := h.Tables.VerifyOTP(r.Context(), rid, req.OTP)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"valid":        true,
		"tableId":      table.ID,
		"tableNumber":  table.Number,
		"restaurantId": table.RestaurantID,
		"expiresAt":    table.OTPExpiresAt(),
	})
}

func (h *Handler) UpdateTablePayment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PaymentInitiated bool               `json:"paymentInitiated"`
		PaymentType      models.PaymentType `json:"paymentType"`
	}
	bodyRID, err := decodeJSON(r, &req)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	rid, id, err := scopedID(r, bodyRID)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	table, err := h.Tables.UpdatePayment(r.Context(), rid, id, req.PaymentInitiated, req.PaymentType)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, table)
}
