package handlers

import (
	"net/http"
	"strconv"

	"github.com/Rakhulsr/go-storefront/app/helpers"
	"github.com/Rakhulsr/go-storefront/app/models"
	"github.com/Rakhulsr/go-storefront/app/services"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/unrolled/render"
)

const maxPageSize = 100

// StoreHandler serves the public catalog and the signed-in customer's cart.
type StoreHandler struct {
	render    *render.Render
	validator *validator.Validate
	catalog   *services.CatalogService
	cart      *services.CartService
}

func NewStoreHandler(
	render *render.Render,
	validator *validator.Validate,
	catalog *services.CatalogService,
	cart *services.CartService,
) *StoreHandler {
	return &StoreHandler{
		render:    render,
		validator: validator,
		catalog:   catalog,
		cart:      cart,
	}
}

type productPage struct {
	Count    int64             `json:"count"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
	Results  []ProductResponse `json:"results"`
}

type placeOrderForm struct {
	Amount *decimal.Decimal `json:"amount" validate:"required"`
}

func (h *StoreHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.ListCategories(r.Context())
	if err != nil {
		RespondError(h.render, w, r, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, NewCategoryList(categories))
}

// Products lists the catalog. Without page_size the whole list is returned;
// with it the response is wrapped in a page envelope.
func (h *StoreHandler) Products(w http.ResponseWriter, r *http.Request) {
	page, pageSize, err := parsePaging(r)
	if err != nil {
		RespondError(h.render, w, r, err)
		return
	}

	products, total, err := h.catalog.ListProducts(r.Context(), page, pageSize)
	if err != nil {
		RespondError(h.render, w, r, err)
		return
	}
	list, err := h.productList(r, products)
	if err != nil {
		RespondError(h.render, w, r, err)
		return
	}

	if pageSize == 0 {
		_ = h.render.JSON(w, http.StatusOK, list)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, productPage{Count: total, Page: page, PageSize: pageSize, Results: list})
}

func (h *StoreHandler) ProductDetail(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalog.GetProduct(r.Context(), mux.Vars(r)["product_id"])
	if err != nil {
		RespondError(h.render, w, r, err)
		return
	}
	tags, err := h.catalog.TagsForProducts(r.Context(), []models.Product{*product})
	if err != nil {
		RespondError(h.render, w, r, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, NewProductResponse(product, tags[product.ID]))
}

func (h *StoreHandler) ProductsByCategory(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ProductsByCategory(r.Context(), mux.Vars(r)["category_id"])
	if err != nil {
		RespondError(h.render, w, r, err)
		return
	}
	list, err := h.productList(r, products)
	if err != nil {
		RespondError(h.render, w, r, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, list)
}

func (h *StoreHandler) productList(r *http.Request, products []models.Product) ([]ProductResponse, error) {
	tags, err := h.catalog.TagsForProducts(r.Context(), products)
	if err != nil {
		return nil, err
	}
	return NewProductList(products, tags), nil
}

// Orders lists the customer's orders. An open cart is created first so a new
// customer always sees one order.
func (h *StoreHandler) Orders(w http.ResponseWriter, r *http.Request) {
	customer, err := h.customer(r)
	if err != nil {
		RespondError(h.render, w, r, err)
		return
	}

	orders, err := h.cart.ListOrders(r.Context(), customer.ID)
	if err != nil {
		RespondError(h.render, w, r, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, NewOrderList(orders))
}

func (h *StoreHandler) UpdateCart(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	action, err := services.ParseCartAction(vars["action"])
	if err != nil {
		RespondError(h.render, w, r, err)
		return
	}

	customer, err := h.customer(r)
	if err != nil {
		RespondError(h.render, w, r, err)
		return
	}

	result, err := h.cart.UpdateCart(r.Context(), customer.ID, vars["product_id"], action)
	if err != nil {
		RespondError(h.render, w, r, err)
		return
	}

	message := "Item was added"
	if action == services.CartActionRemove {
		message = "Item was removed"
	}
	_ = h.render.JSON(w, http.StatusCreated, map[string]interface{}{
		"message":  message,
		"quantity": result.Quantity,
	})
}

func (h *StoreHandler) CartItems(w http.ResponseWriter, r *http.Request) {
	customer, err := h.customer(r)
	if err != nil {
		RespondError(h.render, w, r, err)
		return
	}

	cart, err := h.cart.GetCart(r.Context(), customer.ID)
	if err != nil {
		RespondError(h.render, w, r, err)
		return
	}

	order := NewOrderResponse(cart.Order)
	_ = h.render.JSON(w, http.StatusOK, map[string]interface{}{
		"cart_items":        NewOrderItemList(cart.Items),
		"total":             order.CartTotal,
		"total_display":     order.CartTotalDisplay,
		"total_computed_at": order.TotalComputedAt,
	})
}

func (h *StoreHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var form placeOrderForm
	if err := DecodeJSON(r, &form); err != nil {
		RespondError(h.render, w, r, err)
		return
	}
	if err := Validate(h.validator, form); err != nil {
		RespondError(h.render, w, r, err)
		return
	}

	customer, err := h.customer(r)
	if err != nil {
		RespondError(h.render, w, r, err)
		return
	}

	order, err := h.cart.PlaceOrder(r.Context(), customer.ID, *form.Amount)
	if err != nil {
		RespondError(h.render, w, r, err)
		return
	}

	_ = h.render.JSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Order placed successfully",
		"order":   NewOrderResponse(order),
	})
}

func (h *StoreHandler) customer(r *http.Request) (*models.Customer, error) {
	return h.cart.GetOrCreateCustomer(r.Context(), helpers.GetUserFromContext(r.Context()))
}

func parsePaging(r *http.Request) (page, pageSize int, err error) {
	q := r.URL.Query()
	if raw := q.Get("page_size"); raw != "" {
		pageSize, err = strconv.Atoi(raw)
		if err != nil || pageSize < 1 {
			return 0, 0, services.NewValidationError("page_size", "A valid positive integer is required.")
		}
		if pageSize > maxPageSize {
			pageSize = maxPageSize
		}
	}
	page = 1
	if raw := q.Get("page"); raw != "" {
		page, err = strconv.Atoi(raw)
		if err != nil || page < 1 {
			return 0, 0, services.NewValidationError("page", "A valid positive integer is required.")
		}
	}
	return page, pageSize, nil
}
