package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/ray-remotestate/dinein/models"
	"github.com/ray-remotestate/dinein/services"
	"github.com/ray-remotestate/dinein/utils"
)

func (h *Handler) CreateBill(w http.ResponseWriter, r *http.Request) {
	var req services.CreateBillInput
	bodyRID, err := decodeJSON(r, &req)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	if req.RestaurantID, err = restaurantScope(r, bodyRID); err != nil {
		utils.WriteError(w, err)
		return
	}
	bill, err := h.Bills.Create(r.Context(), req)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, bill)
}

// ListBills supports ?tableOtp= and ?status=.
func (h *Handler) ListBills(w http.ResponseWriter, r *http.Request) {
	rid, err := restaurantScope(r, "")
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	q := r.URL.Query()
	filter := services.BillFilter{RestaurantID: rid, TableOTP: q.Get("tableOtp")}
	if s := q.Get("status"); s != "" {
		filter.Status = models.BillStatus(s)
		if !filter.Status.IsValid() {
			utils.WriteError(w, badRequest("unknown bill status %q", s))
			return
		}
	}
	bills, err := h.Bills.List(r.Context(), filter)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, bills)
}

func (h *Handler) RecentBills(w http.ResponseWriter, r *http.Request) {
	rid, err := restaurantScope(r, "")
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	bills, err := h.Bills.Recent(r.Context(), rid)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, bills)
}

// CheckTableBill lets a customer see whether a bill was raised for their table.
func (h *Handler) CheckTableBill(w http.ResponseWriter, r *http.Request) {
	rid, err := restaurantScope(r, "")
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	bill, err := h.Bills.CheckTable(r.Context(), rid, mux.Vars(r)["tableOtp"])
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, bill)
}

func (h *Handler) GetBill(w http.ResponseWriter, r *http.Request) {
	rid, id, err := scopedID(r, "")
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	bill, err := h.Bills.Get(r.Context(), rid, id)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, bill)
}

func (h *Handler) UpdateBill(w http.ResponseWriter, r *http.Request) {
	var req services.BillUpdate
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
	bill, err := h.Bills.Update(r.Context(), rid, id, req)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, bill)
}

func (h *Handler) DeleteBill(w http.ResponseWriter, r *http.Request) {
	rid, id, err := scopedID(r, "")
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	if err := h.Bills.Delete(r.Context(), rid, id); err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteMessage(w, http.StatusOK, "Bill deleted")
}
