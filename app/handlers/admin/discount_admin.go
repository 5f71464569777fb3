package admin

import (
	"net/http"

	"github.com/Rakhulsr/go-storefront/app/handlers"
	"github.com/Rakhulsr/go-storefront/app/services"
	"github.com/gorilla/mux"
)

type DiscountForm struct {
	CategoryID string `json:"category_id" validate:"required"`
	Name       string `json:"name" validate:"required,max=100"`
	Percentage *int   `json:"percentage" validate:"required,min=0,max=100"`
}

type DiscountPatchForm struct {
	CategoryID *string `json:"category_id" validate:"omitempty,min=1"`
	Name       *string `json:"name" validate:"omitempty,max=100"`
	Percentage *int    `json:"percentage" validate:"omitempty,min=0,max=100"`
}

func (h *AdminHandler) ListDiscounts(w http.ResponseWriter, r *http.Request) {
	discounts, err := h.discountSvc.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out := make([]handlers.DiscountResponse, 0, len(discounts))
	for i := range discounts {
		out = append(out, handlers.NewDiscountResponse(&discounts[i]))
	}
	_ = h.render.JSON(w, http.StatusOK, out)
}

// CreateDiscount stores the discount and reprices its category. An unknown
// category is a 404.
func (h *AdminHandler) CreateDiscount(w http.ResponseWriter, r *http.Request) {
	var form DiscountForm
	if !h.bind(w, r, &form) {
		return
	}

	discount, err := h.discountSvc.Create(r.Context(), services.CreateDiscountInput{
		CategoryID: form.CategoryID,
		Name:       form.Name,
		Percentage: *form.Percentage,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	_ = h.render.JSON(w, http.StatusCreated, handlers.NewDiscountResponse(discount))
}

func (h *AdminHandler) GetDiscount(w http.ResponseWriter, r *http.Request) {
	discount, err := h.discountSvc.Get(r.Context(), mux.Vars(r)["pk"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, handlers.NewDiscountResponse(discount))
}

func (h *AdminHandler) UpdateDiscount(w http.ResponseWriter, r *http.Request) {
	var form DiscountPatchForm
	if !h.bind(w, r, &form) {
		return
	}

	discount, err := h.discountSvc.Update(r.Context(), mux.Vars(r)["pk"], services.DiscountPatch{
		CategoryID: form.CategoryID,
		Name:       form.Name,
		Percentage: form.Percentage,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, handlers.NewDiscountResponse(discount))
}

func (h *AdminHandler) DeleteDiscount(w http.ResponseWriter, r *http.Request) {
	if err := h.discountSvc.Delete(r.Context(), mux.Vars(r)["pk"]); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
