package admin

import (
	"net/http"

	"github.com/Rakhulsr/go-storefront/app/handlers"
	"github.com/Rakhulsr/go-storefront/app/services"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
)

type OrderPatchForm struct {
	OrderStatus *string          `json:"order_status" validate:"omitempty,oneof=Pending Shipped Delivered Confirmed"`
	Complete    *bool            `json:"complete"`
	PaidAmount  *decimal.Decimal `json:"paid_amount"`
}

func (h *AdminHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orderSvc.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, handlers.NewOrderList(orders))
}

func (h *AdminHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.orderSvc.Get(r.Context(), mux.Vars(r)["pk"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, handlers.NewOrderResponse(order))
}

func (h *AdminHandler) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	var form OrderPatchForm
	if !h.bind(w, r, &form) {
		return
	}

	order, err := h.orderSvc.Update(r.Context(), mux.Vars(r)["pk"], services.OrderPatch{
		OrderStatus: form.OrderStatus,
		Complete:    form.Complete,
		PaidAmount:  form.PaidAmount,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, handlers.NewOrderResponse(order))
}

func (h *AdminHandler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	if err := h.orderSvc.Delete(r.Context(), mux.Vars(r)["pk"]); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
