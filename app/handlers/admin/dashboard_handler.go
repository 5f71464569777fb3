package admin

import (
	"net/http"

	"github.com/Rakhulsr/go-storefront/app/handlers"
	"github.com/Rakhulsr/go-storefront/app/services"
	"github.com/go-playground/validator/v10"
	"github.com/unrolled/render"
)

// AdminHandler serves the staff-only management API.
type AdminHandler struct {
	render      *render.Render
	validator   *validator.Validate
	catalog     *services.CatalogService
	discountSvc *services.DiscountService
	orderSvc    *services.OrderService
}

func NewAdminHandler(
	render *render.Render,
	validator *validator.Validate,
	catalog *services.CatalogService,
	discountSvc *services.DiscountService,
	orderSvc *services.OrderService,
) *AdminHandler {
	return &AdminHandler{
		render:      render,
		validator:   validator,
		catalog:     catalog,
		discountSvc: discountSvc,
		orderSvc:    orderSvc,
	}
}

// bind decodes and validates a request body, writing the error response
// itself. It reports whether the handler should go on.
func (h *AdminHandler) bind(w http.ResponseWriter, r *http.Request, form interface{}) bool {
	if err := handlers.DecodeJSON(r, form); err != nil {
		handlers.RespondError(h.render, w, r, err)
		return false
	}
	if err := handlers.Validate(h.validator, form); err != nil {
		handlers.RespondError(h.render, w, r, err)
		return false
	}
	return true
}

func (h *AdminHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	handlers.RespondError(h.render, w, r, err)
}
