package handlers

import (
	"net/http"

	"github.com/ray-remotestate/dinein/middlewares"
	"github.com/ray-remotestate/dinein/models"
	"github.com/ray-remotestate/dinein/services"
	"github.com/ray-remotestate/dinein/utils"
)

func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req services.CreateOrderInput
	bodyRID, err := decodeJSON(r, &req)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	if req.RestaurantID, err = restaurantScope(r, bodyRID); err != nil {
		utils.WriteError(w, err)
		return
	}
	order, err := h.Orders.Create(r.Context(), req)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, order)
}

// ListOrders serves staff with a bearer token, or a customer holding a valid
// table OTP who only sees the orders of the current session at that table.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	rid, err := restaurantScope(r, "")
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	filter := services.OrderFilter{RestaurantID: rid, TableOTP: r.URL.Query().Get("tableOtp")}

	if _, err := middlewares.GetAuthenticatedUser(r); err != nil {
		if filter.TableOTP == "" {
			utils.WriteError(w, models.ErrUnauthorized)
			return
		}
		table, err := h.Tables.VerifyOTP(r.Context(), rid, filter.TableOTP)
		if err != nil {
			utils.WriteError(w, err)
			return
		}
		// a reissued code must not reveal an earlier session's orders
		filter.Since = table.OTPGeneratedAt
	}

	orders, err := h.Orders.List(r.Context(), filter)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, orders)
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	rid, id, err := scopedID(r, "")
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	order, err := h.Orders.Get(r.Context(), rid, id)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, order)
}

func (h *Handler) UpdateOrderItemStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status models.ItemStatus `json:"status"`
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
	index, err := pathInt(r, "itemIndex")
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	order, err := h.Orders.UpdateItemStatus(r.Context(), rid, id, index, req.Status)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, order)
}

// DeleteOrderItem answers with the updated order, or 204 once the last item
// is gone and the order with it.
func (h *Handler) DeleteOrderItem(w http.ResponseWriter, r *http.Request) {
	rid, err := restaurantScope(r, "")
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	id, err := pathUUID(r, "orderId")
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	index, err := pathInt(r, "itemIndex")
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	order, err := h.Orders.DeleteItem(r.Context(), rid, id, index)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	if order == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{"message": "Item deleted", "order": order})
}

func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
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
	order, err := h.Orders.Cancel(r.Context(), rid, id)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, order)
}

func (h *Handler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	rid, id, err := scopedID(r, "")
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	if err := h.Orders.Delete(r.Context(), rid, id); err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteMessage(w, http.StatusOK, "Order deleted")
}
