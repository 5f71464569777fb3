package admin

import (
	"errors"
	"net/http"

	"github.com/Rakhulsr/go-storefront/app/handlers"
	"github.com/Rakhulsr/go-storefront/app/models"
	"github.com/Rakhulsr/go-storefront/app/services"
	"github.com/Rakhulsr/go-storefront/app/utils/logger"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
)

const maxImageBytes = 10 << 20

type ProductForm struct {
	CategoryID  string           `json:"category_id" validate:"required"`
	Name        string           `json:"name" validate:"required,max=100"`
	Price       *decimal.Decimal `json:"price" validate:"required"`
	Description string           `json:"description"`
	Image       string           `json:"image" validate:"max=255"`
	Stock       int              `json:"stock" validate:"min=0"`
}

// ProductPatchForm is used for PUT and PATCH alike; absent fields are kept.
type ProductPatchForm struct {
	CategoryID  *string          `json:"category_id" validate:"omitempty,min=1"`
	Name        *string          `json:"name" validate:"omitempty,max=100"`
	Price       *decimal.Decimal `json:"price"`
	Description *string          `json:"description"`
	Image       *string          `json:"image" validate:"omitempty,max=255"`
	Stock       *int             `json:"stock" validate:"omitempty,min=0"`
}

func (h *AdminHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, _, err := h.catalog.ListProducts(r.Context(), 0, 0)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respondProducts(w, r, http.StatusOK, products)
}

func (h *AdminHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var form ProductForm
	if !h.bind(w, r, &form) {
		return
	}

	product, err := h.catalog.CreateProduct(r.Context(), services.ProductInput{
		CategoryID:  form.CategoryID,
		Name:        form.Name,
		Price:       *form.Price,
		Description: form.Description,
		Image:       form.Image,
		Stock:       form.Stock,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	_ = h.render.JSON(w, http.StatusCreated, handlers.NewProductResponse(product, nil))
}

func (h *AdminHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalog.GetProduct(r.Context(), mux.Vars(r)["pk"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	tags, err := h.catalog.TagsForProducts(r.Context(), []models.Product{*product})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, handlers.NewProductResponse(product, tags[product.ID]))
}

func (h *AdminHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var form ProductPatchForm
	if !h.bind(w, r, &form) {
		return
	}

	product, err := h.catalog.UpdateProduct(r.Context(), mux.Vars(r)["pk"], services.ProductPatch{
		CategoryID:  form.CategoryID,
		Name:        form.Name,
		Price:       form.Price,
		Description: form.Description,
		Image:       form.Image,
		Stock:       form.Stock,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, handlers.NewProductResponse(product, nil))
}

func (h *AdminHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.DeleteProduct(r.Context(), mux.Vars(r)["pk"]); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UploadProductImage accepts a multipart form with the file under "image".
func (h *AdminHandler) UploadProductImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImageBytes)
	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.fail(w, r, services.NewValidationError("image", "The submitted file is too large."))
			return
		}
		h.fail(w, r, services.NewValidationError("image", "No file was submitted."))
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		h.fail(w, r, services.NewValidationError("image", "No file was submitted."))
		return
	}
	defer file.Close()

	product, err := h.catalog.SetProductImage(r.Context(), mux.Vars(r)["pk"], header.Filename, file)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	logger.FromCtx(r.Context()).Info("UploadProductImage: image stored", "product_id", product.ID, "image", product.Image)
	_ = h.render.JSON(w, http.StatusOK, handlers.NewProductResponse(product, nil))
}

func (h *AdminHandler) respondProducts(w http.ResponseWriter, r *http.Request, status int, products []models.Product) {
	tags, err := h.catalog.TagsForProducts(r.Context(), products)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	_ = h.render.JSON(w, status, handlers.NewProductList(products, tags))
}
