package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/Rakhulsr/go-storefront/app/helpers"
	"github.com/Rakhulsr/go-storefront/app/models"
	"github.com/Rakhulsr/go-storefront/app/services"
	"github.com/Rakhulsr/go-storefront/app/utils/calc"
	"github.com/Rakhulsr/go-storefront/app/utils/format"
	"github.com/Rakhulsr/go-storefront/app/utils/logger"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/unrolled/render"
)

const maxBodyBytes = 1 << 20

// NewValidator reports field errors under their json names.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// DecodeJSON reads a JSON body into dst. An empty body leaves dst untouched.
func DecodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return services.NewValidationError("non_field_errors", "malformed JSON: "+err.Error())
	}
	return nil
}

// Validate runs struct validation and converts failures to a
// *services.ValidationError.
func Validate(v *validator.Validate, form interface{}) error {
	err := v.Struct(form)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return &services.ValidationError{Fields: helpers.FormatValidationErrors(verrs)}
	}
	return err
}

// RespondError maps service errors to HTTP statuses.
func RespondError(rnd *render.Render, w http.ResponseWriter, r *http.Request, err error) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		_ = rnd.JSON(w, http.StatusBadRequest, map[string]interface{}{"errors": verr.Fields})
	case errors.Is(err, services.ErrValidation):
		_ = rnd.JSON(w, http.StatusBadRequest, map[string]string{"detail": err.Error()})
	case errors.Is(err, services.ErrNotFound):
		_ = rnd.JSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
	case errors.Is(err, services.ErrConflict):
		_ = rnd.JSON(w, http.StatusConflict, map[string]string{"detail": "The request conflicts with existing data."})
	case errors.Is(err, services.ErrForbidden):
		_ = rnd.JSON(w, http.StatusForbidden, map[string]string{"detail": "You do not have permission to perform this action."})
	default:
		logger.FromCtx(r.Context()).Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		_ = rnd.JSON(w, http.StatusInternalServerError, map[string]string{"detail": "Internal Server Error"})
	}
}

type UserResponse struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	IsStaff  bool   `json:"is_staff"`
	IsActive bool   `json:"is_active"`
}

func NewUserResponse(u *models.User) UserResponse {
	return UserResponse{ID: u.ID, Email: u.Email, Name: u.Name, IsStaff: u.IsStaff, IsActive: u.IsActive}
}

type CustomerResponse struct {
	ID          string `json:"id"`
	User        string `json:"user"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
}

func NewCustomerResponse(c *models.Customer) CustomerResponse {
	return CustomerResponse{ID: c.ID, User: c.UserID, Name: c.Name, PhoneNumber: c.PhoneNumber}
}

type CategoryResponse struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Slug    string    `json:"slug"`
	Created time.Time `json:"created"`
}

func NewCategoryResponse(c *models.Category) CategoryResponse {
	return CategoryResponse{ID: c.ID, Name: c.Name, Slug: c.Slug, Created: c.CreatedAt}
}

func NewCategoryList(categories []models.Category) []CategoryResponse {
	out := make([]CategoryResponse, 0, len(categories))
	for i := range categories {
		out = append(out, NewCategoryResponse(&categories[i]))
	}
	return out
}

type TagResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

func NewTagResponse(t *models.Tag) TagResponse {
	return TagResponse{ID: t.ID, Title: t.Title, Description: t.Description}
}

func NewTagList(tags []models.Tag) []TagResponse {
	out := make([]TagResponse, 0, len(tags))
	for i := range tags {
		out = append(out, NewTagResponse(&tags[i]))
	}
	return out
}

type ProductResponse struct {
	ID                     string        `json:"id"`
	CategoryID             string        `json:"category_id"`
	Name                   string        `json:"name"`
	Price                  string        `json:"price"`
	PriceDisplay           string        `json:"price_display"`
	Description            string        `json:"description"`
	Image                  string        `json:"image"`
	Stock                  int           `json:"stock"`
	Discount               string        `json:"discount"`
	DiscountedPrice        string        `json:"discounted_price"`
	DiscountedPriceDisplay string        `json:"discounted_price_display"`
	UnitPrice              string        `json:"unit_price"`
	PricedAt               *time.Time    `json:"priced_at"`
	Created                time.Time     `json:"created"`
	Tags                   []TagResponse `json:"tags"`
}

func NewProductResponse(p *models.Product, tags []models.Tag) ProductResponse {
	return ProductResponse{
		ID:                     p.ID,
		CategoryID:             p.CategoryID,
		Name:                   p.Name,
		Price:                  format.Fixed(p.Price),
		PriceDisplay:           format.Money(p.Price),
		Description:            p.Description,
		Image:                  p.Image,
		Stock:                  p.Stock,
		Discount:               format.Fixed(p.Discount),
		DiscountedPrice:        format.Fixed(p.DiscountedPrice),
		DiscountedPriceDisplay: format.Money(p.DiscountedPrice),
		UnitPrice:              format.Fixed(calc.UnitPrice(p.Price, p.DiscountedPrice)),
		PricedAt:               p.PricedAt,
		Created:                p.CreatedAt,
		Tags:                   NewTagList(tags),
	}
}

func NewProductList(products []models.Product, tags map[string][]models.Tag) []ProductResponse {
	out := make([]ProductResponse, 0, len(products))
	for i := range products {
		out = append(out, NewProductResponse(&products[i], tags[products[i].ID]))
	}
	return out
}

type DiscountResponse struct {
	ID         string `json:"id"`
	CategoryID string `json:"category_id"`
	Name       string `json:"name"`
	Percentage int    `json:"percentage"`
}

func NewDiscountResponse(d *models.Discount) DiscountResponse {
	return DiscountResponse{ID: d.ID, CategoryID: d.CategoryID, Name: d.Name, Percentage: d.Percentage}
}

type OrderItemResponse struct {
	ID        string           `json:"id"`
	ProductID string           `json:"product_id"`
	Product   *ProductResponse `json:"product,omitempty"`
	Quantity  int              `json:"quantity"`
	ItemPrice string           `json:"item_price"`
	LineTotal string           `json:"line_total"`
	DateAdded time.Time        `json:"date_added"`
}

func NewOrderItemResponse(it *models.OrderItem) OrderItemResponse {
	resp := OrderItemResponse{
		ID:        it.ID,
		ProductID: it.ProductID,
		Quantity:  it.Quantity,
		ItemPrice: format.Fixed(it.ItemPrice),
		LineTotal: format.Fixed(it.ItemPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))),
		DateAdded: it.DateAdded,
	}
	if it.Product != nil {
		p := NewProductResponse(it.Product, nil)
		resp.Product = &p
		resp.LineTotal = format.Fixed(calc.LineTotal(it.Product.Price, it.Product.DiscountedPrice, it.Quantity))
	}
	return resp
}

func NewOrderItemList(items []models.OrderItem) []OrderItemResponse {
	out := make([]OrderItemResponse, 0, len(items))
	for i := range items {
		out = append(out, NewOrderItemResponse(&items[i]))
	}
	return out
}

type OrderResponse struct {
	ID               string              `json:"id"`
	CustomerID       string              `json:"customer_id"`
	DateOrdered      time.Time           `json:"date_ordered"`
	Complete         bool                `json:"complete"`
	CartTotal        string              `json:"cart_total"`
	CartTotalDisplay string              `json:"cart_total_display"`
	TotalComputedAt  *time.Time          `json:"total_computed_at"`
	PaidAmount       string              `json:"paid_amount"`
	OrderStatus      string              `json:"order_status"`
	Items            []OrderItemResponse `json:"items,omitempty"`
}

func NewOrderResponse(o *models.Order) OrderResponse {
	resp := OrderResponse{
		ID:               o.ID,
		CustomerID:       o.CustomerID,
		DateOrdered:      o.DateOrdered,
		Complete:         o.Complete,
		CartTotal:        format.Fixed(o.CartTotal),
		CartTotalDisplay: format.Money(o.CartTotal),
		TotalComputedAt:  o.TotalComputedAt,
		PaidAmount:       format.Fixed(o.PaidAmount),
		OrderStatus:      o.OrderStatus,
	}
	if len(o.OrderItems) > 0 {
		resp.Items = NewOrderItemList(o.OrderItems)
	}
	return resp
}

func NewOrderList(orders []models.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, NewOrderResponse(&orders[i]))
	}
	return out
}
