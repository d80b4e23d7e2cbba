package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ray-remotestate/dinein/services"
	"github.com/ray-remotestate/dinein/utils"
)

const maxImageBytes = 5 << 20

func (h *Handler) CreateFoodType(w http.ResponseWriter, r *http.Request) {
	var req services.FoodTypeInput
	bodyRID, err := decodeJSON(r, &req)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	if req.RestaurantID, err = restaurantScope(r, bodyRID); err != nil {
		utils.WriteError(w, err)
		return
	}
	ft, err := h.Menu.CreateFoodType(r.Context(), req)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, ft)
}

func (h *Handler) ListFoodTypes(w http.ResponseWriter, r *http.Request) {
	rid, err := restaurantScope(r, "")
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	list, err := h.Menu.ListFoodTypes(r.Context(), rid)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, list)
}

func (h *Handler) UpdateFoodType(w http.ResponseWriter, r *http.Request) {
	var req services.FoodTypeInput
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
	req.RestaurantID = rid
	ft, err := h.Menu.UpdateFoodType(r.Context(), id, req)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, ft)
}

func (h *Handler) DeleteFoodType(w http.ResponseWriter, r *http.Request) {
	rid, id, err := scopedID(r, "")
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	if err := h.Menu.DeleteFoodType(r.Context(), rid, id); err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteMessage(w, http.StatusOK, "Food type deleted")
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

// foodForm reads a multipart food form. Only the fields present are set.
type foodForm struct {
	restaurant string
	update     services.FoodUpdate
	image      *services.Upload
}

func parseFoodForm(r *http.Request) (*foodForm, error) {
	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		return nil, badRequest("invalid multipart form: %v", err)
	}
	f := &foodForm{restaurant: r.FormValue("restaurantId")}
	if f.restaurant == "" {
		f.restaurant = r.FormValue("restaurant")
	}
	str := func(key string) *string {
		if vs, ok := r.MultipartForm.Value[key]; ok && len(vs) > 0 {
			return &vs[0]
		}
		return nil
	}
	boolean := func(key string) (*bool, error) {
		v := str(key)
		if v == nil {
			return nil, nil
		}
		b, err := strconv.ParseBool(*v)
		if err != nil {
			return nil, badRequest("invalid %s", key)
		}
		return &b, nil
	}

	f.update.Name = str("name")
	f.update.Description = str("description")
	f.update.ImageURL = str("imageUrl")
	if v := str("price"); v != nil {
		p, err := decimal.NewFromString(*v)
		if err != nil {
			return nil, badRequest("invalid price")
		}
		f.update.Price = &p
	}
	if v := str("foodType"); v != nil {
		id, err := uuid.Parse(*v)
		if err != nil {
			return nil, badRequest("invalid foodType")
		}
		f.update.FoodTypeID = &id
	}
	var err error
	if f.update.IsVeg, err = boolean("isVeg"); err != nil {
		return nil, err
	}
	if f.update.IsAvailable, err = boolean("isAvailable"); err != nil {
		return nil, err
	}

	file, hdr, err := r.FormFile("image")
	if err == nil {
		f.image = &services.Upload{Filename: hdr.Filename, Body: file}
	} else if err != http.ErrMissingFile {
		return nil, badRequest("invalid image: %v", err)
	}
	return f, nil
}

func foodInputFrom(rid uuid.UUID, u services.FoodUpdate) services.FoodInput {
	in := services.FoodInput{RestaurantID: rid, IsAvailable: u.IsAvailable}
	if u.FoodTypeID != nil {
		in.FoodTypeID = *u.FoodTypeID
	}
	if u.Name != nil {
		in.Name = *u.Name
	}
	if u.Description != nil {
		in.Description = *u.Description
	}
	if u.Price != nil {
		in.Price = *u.Price
	}
	if u.ImageURL != nil {
		in.ImageURL = *u.ImageURL
	}
	if u.IsVeg != nil {
		in.IsVeg = *u.IsVeg
	}
	return in
}

// CreateFood accepts JSON or a multipart form carrying an optional image file.
func (h *Handler) CreateFood(w http.ResponseWriter, r *http.Request) {
	var (
		in      services.FoodInput
		img     *services.Upload
		bodyRID string
		err     error
	)
	if isMultipart(r) {
		form, ferr := parseFoodForm(r)
		if ferr != nil {
			utils.WriteError(w, ferr)
			return
		}
		defer r.MultipartForm.RemoveAll()
		in = foodInputFrom(uuid.Nil, form.update)
		img, bodyRID = form.image, form.restaurant
	} else if bodyRID, err = decodeJSON(r, &in); err != nil {
		utils.WriteError(w, err)
		return
	}
	if in.RestaurantID, err = restaurantScope(r, bodyRID); err != nil {
		utils.WriteError(w, err)
		return
	}
	food, err := h.Menu.CreateFood(r.Context(), in, img)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, food)
}

// ListFoods supports ?foodType= and ?available=true.
func (h *Handler) ListFoods(w http.ResponseWriter, r *http.Request) {
	rid, err := restaurantScope(r, "")
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	filter := services.FoodFilter{RestaurantID: rid}
	if raw := r.URL.Query().Get("foodType"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			utils.WriteError(w, badRequest("invalid foodType"))
			return
		}
		filter.FoodTypeID = &id
	}
	if raw := r.URL.Query().Get("available"); raw != "" {
		if filter.AvailableOnly, err = strconv.ParseBool(raw); err != nil {
			utils.WriteError(w, badRequest("invalid available"))
			return
		}
	}
	foods, err := h.Menu.ListFoods(r.Context(), filter)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, foods)
}

func (h *Handler) GetFood(w http.ResponseWriter, r *http.Request) {
	rid, id, err := scopedID(r, "")
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	food, err := h.Menu.GetFood(r.Context(), rid, id)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, food)
}

func (h *Handler) UpdateFood(w http.ResponseWriter, r *http.Request) {
	var (
		in      services.FoodUpdate
		img     *services.Upload
		bodyRID string
		err     error
	)
	if isMultipart(r) {
		form, ferr := parseFoodForm(r)
		if ferr != nil {
			utils.WriteError(w, ferr)
			return
		}
		defer r.MultipartForm.RemoveAll()
		in, img, bodyRID = form.update, form.image, form.restaurant
	} else if bodyRID, err = decodeJSON(r, &in); err != nil {
		utils.WriteError(w, err)
		return
	}
	rid, id, err := scopedID(r, bodyRID)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	food, err := h.Menu.UpdateFood(r.Context(), rid, id, in, img)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, food)
}

func (h *Handler) UpdateFoodStock(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IsAvailable *bool `json:"isAvailable"`
	}
	bodyRID, err := decodeJSON(r, &req)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	if req.IsAvailable == nil {
		utils.WriteError(w, badRequest("isAvailable is required"))
		return
	}
	rid, id, err := scopedID(r, bodyRID)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	food, err := h.Menu.SetAvailability(r.Context(), rid, id, *req.IsAvailable)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, food)
}

func (h *Handler) DeleteFood(w http.ResponseWriter, r *http.Request) {
	rid, id, err := scopedID(r, "")
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	if err := h.Menu.DeleteFood(r.Context(), rid, id); err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteMessage(w, http.StatusOK, "Food deleted")
}
