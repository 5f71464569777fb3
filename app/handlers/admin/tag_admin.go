package admin

import (
	"net/http"
	"time"

	"github.com/Rakhulsr/go-storefront/app/handlers"
	"github.com/Rakhulsr/go-storefront/app/models"
	"github.com/gorilla/mux"
)

type TagForm struct {
	Title       string `json:"title" validate:"required,max=100"`
	Description string `json:"description"`
}

type TagPatchForm struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description"`
}

type TagProductForm struct {
	TagID     string `json:"tag_id" validate:"required"`
	ProductID string `json:"product_id" validate:"required"`
}

type tagConnectorResponse struct {
	ID        string                `json:"id"`
	TagID     string                `json:"tag_id"`
	ProductID string                `json:"product_id"`
	Tag       *handlers.TagResponse `json:"tag,omitempty"`
	Product   string                `json:"product_name,omitempty"`
	Created   time.Time             `json:"created"`
}

func newTagConnectorResponse(c *models.ProductTagConnector) tagConnectorResponse {
	resp := tagConnectorResponse{ID: c.ID, TagID: c.TagID, ProductID: c.ProductID, Created: c.CreatedAt}
	if c.Tag != nil {
		tag := handlers.NewTagResponse(c.Tag)
		resp.Tag = &tag
	}
	if c.Product != nil {
		resp.Product = c.Product.Name
	}
	return resp
}

func (h *AdminHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.catalog.ListTags(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, handlers.NewTagList(tags))
}

func (h *AdminHandler) CreateTag(w http.ResponseWriter, r *http.Request) {
	var form TagForm
	if !h.bind(w, r, &form) {
		return
	}

	tag, err := h.catalog.CreateTag(r.Context(), form.Title, form.Description)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	_ = h.render.JSON(w, http.StatusCreated, handlers.NewTagResponse(tag))
}

func (h *AdminHandler) GetTag(w http.ResponseWriter, r *http.Request) {
	tag, err := h.catalog.GetTag(r.Context(), mux.Vars(r)["pk"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, handlers.NewTagResponse(tag))
}

func (h *AdminHandler) UpdateTag(w http.ResponseWriter, r *http.Request) {
	var form TagPatchForm
	if !h.bind(w, r, &form) {
		return
	}

	tag, err := h.catalog.UpdateTag(r.Context(), mux.Vars(r)["pk"], form.Title, form.Description)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, handlers.NewTagResponse(tag))
}

func (h *AdminHandler) DeleteTag(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.DeleteTag(r.Context(), mux.Vars(r)["pk"]); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) ListTagProducts(w http.ResponseWriter, r *http.Request) {
	connectors, err := h.catalog.ListTagConnectors(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out := make([]tagConnectorResponse, 0, len(connectors))
	for i := range connectors {
		out = append(out, newTagConnectorResponse(&connectors[i]))
	}
	_ = h.render.JSON(w, http.StatusOK, out)
}

func (h *AdminHandler) TagProduct(w http.ResponseWriter, r *http.Request) {
	var form TagProductForm
	if !h.bind(w, r, &form) {
		return
	}

	connector, err := h.catalog.TagProduct(r.Context(), form.TagID, form.ProductID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	_ = h.render.JSON(w, http.StatusCreated, newTagConnectorResponse(connector))
}
