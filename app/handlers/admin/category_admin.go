package admin

import (
	"net/http"

	"github.com/Rakhulsr/go-storefront/app/handlers"
	"github.com/gorilla/mux"
)

type CategoryForm struct {
	Name string `json:"name" validate:"required,max=100"`
}

func (h *AdminHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.ListCategories(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, handlers.NewCategoryList(categories))
}

func (h *AdminHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var form CategoryForm
	if !h.bind(w, r, &form) {
		return
	}

	category, err := h.catalog.CreateCategory(r.Context(), form.Name)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	_ = h.render.JSON(w, http.StatusCreated, handlers.NewCategoryResponse(category))
}

func (h *AdminHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	category, err := h.catalog.GetCategory(r.Context(), mux.Vars(r)["pk"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, handlers.NewCategoryResponse(category))
}

// UpdateCategory serves PUT and PATCH. The name is the only writable field, so
// both require it.
func (h *AdminHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var form CategoryForm
	if !h.bind(w, r, &form) {
		return
	}

	category, err := h.catalog.UpdateCategory(r.Context(), mux.Vars(r)["pk"], form.Name)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, handlers.NewCategoryResponse(category))
}

func (h *AdminHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.DeleteCategory(r.Context(), mux.Vars(r)["pk"]); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
