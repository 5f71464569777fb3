package handlers_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Rakhulsr/go-storefront/app/handlers"
	"github.com/Rakhulsr/go-storefront/app/models"
	"github.com/Rakhulsr/go-storefront/app/services"
	"github.com/Rakhulsr/go-storefront/app/utils/renderer"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondErrorStatus(t *testing.T) {
	rnd := renderer.New(false)
	cases := []struct {
		err  error
		code int
	}{
		{services.NewValidationError("name", "required"), http.StatusBadRequest},
		{fmt.Errorf("product p1: %w", services.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("insert: %w", services.ErrConflict), http.StatusConflict},
		{services.ErrForbidden, http.StatusForbidden},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		rec := httptest.NewRecorder()
		handlers.RespondError(rnd, rec, httptest.NewRequest(http.MethodGet, "/", nil), tc.err)
		assert.Equal(t, tc.code, rec.Code, tc.err.Error())
	}
}

func TestRespondErrorFieldMap(t *testing.T) {
	rec := httptest.NewRecorder()
	handlers.RespondError(renderer.New(false), rec, httptest.NewRequest(http.MethodGet, "/", nil),
		services.NewValidationError("percentage", "too high"))

	var body struct {
		Errors map[string]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "too high", body.Errors["percentage"])
}

func TestValidateUsesJSONNames(t *testing.T) {
	type form struct {
		CategoryID string `json:"category_id" validate:"required"`
		Percentage int    `json:"percentage" validate:"min=0,max=100"`
	}

	err := handlers.Validate(handlers.NewValidator(), form{Percentage: 101})
	var verr *services.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "category_id")
	assert.Contains(t, verr.Fields, "percentage")
}

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		Name string `json:"name"`
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x"}`))
	require.NoError(t, handlers.DecodeJSON(req, &dst))
	assert.Equal(t, "x", dst.Name)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	assert.NoError(t, handlers.DecodeJSON(req, &dst))

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{"))
	assert.ErrorIs(t, handlers.DecodeJSON(req, &dst), services.ErrValidation)
}

func TestProductResponseUnitPrice(t *testing.T) {
	p := &models.Product{
		ID:              "p1",
		Price:           decimal.RequireFromString("1.50"),
		Discount:        decimal.RequireFromString("0.75"),
		DiscountedPrice: decimal.RequireFromString("0.75"),
	}

	resp := handlers.NewProductResponse(p, nil)
	assert.Equal(t, "1.50", resp.Price)
	assert.Equal(t, "0.75", resp.DiscountedPrice)
	assert.Equal(t, "1.50", resp.UnitPrice)
	assert.Empty(t, resp.Tags)
}
