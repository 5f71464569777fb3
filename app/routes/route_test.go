package routes_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Rakhulsr/go-storefront/app/db/dbtest"
	"github.com/Rakhulsr/go-storefront/app/repositories"
	"github.com/Rakhulsr/go-storefront/app/routes"
	"github.com/Rakhulsr/go-storefront/app/services"
	"github.com/Rakhulsr/go-storefront/app/utils/renderer"
	"github.com/Rakhulsr/go-storefront/app/utils/sessions"
	"github.com/Rakhulsr/go-storefront/app/utils/storage"
	"github.com/Rakhulsr/go-storefront/app/utils/token"
	"github.com/gorilla/securecookie"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	t       *testing.T
	handler http.Handler
	users   *services.UserService
}

func newTestServer(t *testing.T, csrfKey []byte) *testServer {
	t.Helper()
	db := dbtest.Open(t)

	images, err := storage.NewLocalStore(t.TempDir(), "/media/product")
	require.NoError(t, err)

	handler := routes.NewRouter(routes.Dependencies{
		DB:       db,
		Render:   renderer.New(false),
		Sessions: sessions.NewCookieSessionStore(false, securecookie.GenerateRandomKey(32), securecookie.GenerateRandomKey(32)),
		Tokens:   token.NewManager([]byte("test-secret"), time.Hour),
		Images:   images,
		CSRFKey:  csrfKey,
	})

	return &testServer{
		t:       t,
		handler: handler,
		users:   services.NewUserService(db, repositories.NewUserRepository(db), repositories.NewCustomerRepository(db)),
	}
}

type call struct {
	method  string
	path    string
	body    interface{}
	token   string
	cookies []*http.Cookie
	header  map[string]string
}

func (s *testServer) do(c call) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if c.body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(c.body))
	}
	req := httptest.NewRequest(c.method, c.path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	for k, v := range c.header {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func decodeList(t *testing.T, rec *httptest.ResponseRecorder) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

// login registers an account and returns its API token.
func (s *testServer) login(email string, staff bool) string {
	s.t.Helper()
	_, err := s.users.Register(context.Background(), services.RegisterInput{
		Email:    email,
		Password: "secret123",
		Name:     "Test User",
		IsStaff:  staff,
	})
	require.NoError(s.t, err)

	rec := s.do(call{method: http.MethodPost, path: "/user/token/", body: map[string]string{
		"email": email, "password": "secret123",
	}})
	require.Equal(s.t, http.StatusOK, rec.Code, rec.Body.String())
	return decode(s.t, rec)["token"].(string)
}

func TestHealthzAndNotFound(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(call{method: http.MethodGet, path: "/healthz"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = s.do(call{method: http.MethodGet, path: "/nope/"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Not found.", decode(t, rec)["detail"])

	rec = s.do(call{method: http.MethodGet, path: "/metrics"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "storefront_http_request_duration_seconds")
}

func TestUserAccountEndpoints(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(call{method: http.MethodPost, path: "/user/create/", body: map[string]string{
		"email": "Ann@Example.com", "password": "secret123", "name": "Ann",
	}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "ann@example.com", decode(t, rec)["email"])

	rec = s.do(call{method: http.MethodPost, path: "/user/create/", body: map[string]string{
		"email": "ann@example.com", "password": "secret123", "name": "Ann",
	}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(call{method: http.MethodPost, path: "/user/create/", body: map[string]string{
		"email": "bob@example.com", "password": "1234", "name": "Bob",
	}})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	errs := decode(t, rec)["errors"].(map[string]interface{})
	assert.Contains(t, errs, "password")

	rec = s.do(call{method: http.MethodPost, path: "/user/token/", body: map[string]string{
		"email": "ann@example.com", "password": "wrong",
	}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(call{method: http.MethodPost, path: "/user/token/", body: map[string]string{
		"email": "ann@example.com", "password": "secret123",
	}})
	require.Equal(t, http.StatusOK, rec.Code)
	tok := decode(t, rec)["token"].(string)

	rec = s.do(call{method: http.MethodGet, path: "/user/me/"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(call{method: http.MethodPatch, path: "/user/me/", token: tok, body: map[string]string{"name": "Annie"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Annie", decode(t, rec)["name"])

	rec = s.do(call{method: http.MethodPut, path: "/user/profile/", token: tok, body: map[string]string{"phone_number": "555-0100"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	profile := decode(t, rec)
	assert.Equal(t, "555-0100", profile["phone_number"])
	assert.Equal(t, "Ann", profile["name"])
}

func TestSessionLoginAndLogout(t *testing.T) {
	s := newTestServer(t, nil)
	s.login("carol@example.com", false)

	rec := s.do(call{method: http.MethodPost, path: "/user/login/", body: map[string]string{
		"email": "carol@example.com", "password": "secret123",
	}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)

	rec = s.do(call{method: http.MethodGet, path: "/user/me/", cookies: cookies})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "carol@example.com", decode(t, rec)["email"])

	rec = s.do(call{method: http.MethodPost, path: "/user/logout/", cookies: cookies})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(call{method: http.MethodGet, path: "/user/me/", cookies: rec.Result().Cookies()})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminRequiresStaff(t *testing.T) {
	s := newTestServer(t, nil)
	customer := s.login("dave@example.com", false)

	rec := s.do(call{method: http.MethodGet, path: "/admin-user/categories/"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(call{method: http.MethodGet, path: "/admin-user/categories/", token: customer})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDiscountEndpoints(t *testing.T) {
	s := newTestServer(t, nil)
	staff := s.login("admin@example.com", true)

	rec := s.do(call{method: http.MethodPost, path: "/admin-user/discount/", token: staff, body: map[string]interface{}{
		"category_id": "missing", "name": "Ghost", "percentage": 10,
	}})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(call{method: http.MethodPost, path: "/admin-user/categories/", token: staff, body: map[string]string{"name": "Home and Garden"}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	category := decode(t, rec)
	assert.Equal(t, "home-and-garden", category["slug"])
	categoryID := category["id"].(string)

	rec = s.do(call{method: http.MethodPost, path: "/admin-user/product-admin/", token: staff, body: map[string]interface{}{
		"category_id": categoryID, "name": "Shovel", "price": "500.50", "stock": 3,
	}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	productID := decode(t, rec)["id"].(string)

	rec = s.do(call{method: http.MethodPost, path: "/admin-user/discount/", token: staff, body: map[string]interface{}{
		"category_id": categoryID, "name": "Spring", "percentage": 20,
	}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	discountID := decode(t, rec)["id"].(string)

	rec = s.do(call{method: http.MethodGet, path: "/store/product-detail/" + productID + "/"})
	require.Equal(t, http.StatusOK, rec.Code)
	product := decode(t, rec)
	assert.Equal(t, "100.10", product["discount"])
	assert.Equal(t, "400.40", product["discounted_price"])
	assert.NotNil(t, product["priced_at"])

	rec = s.do(call{method: http.MethodPatch, path: "/admin-user/discount-detail/" + discountID + "/", token: staff, body: map[string]interface{}{
		"percentage": 150,
	}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(call{method: http.MethodPatch, path: "/admin-user/discount-detail/" + discountID + "/", token: staff, body: map[string]interface{}{
		"percentage": 50,
	}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(call{method: http.MethodGet, path: "/store/product-detail/" + productID + "/"})
	assert.Equal(t, "250.25", decode(t, rec)["discounted_price"])

	rec = s.do(call{method: http.MethodDelete, path: "/admin-user/discount-detail/" + discountID + "/", token: staff})
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(call{method: http.MethodGet, path: "/store/product-detail/" + productID + "/"})
	assert.Equal(t, "250.25", decode(t, rec)["discounted_price"])
}

func TestCartFlow(t *testing.T) {
	s := newTestServer(t, nil)
	staff := s.login("admin@example.com", true)
	shopper := s.login("erin@example.com", false)

	rec := s.do(call{method: http.MethodPost, path: "/admin-user/categories/", token: staff, body: map[string]string{"name": "Books"}})
	require.Equal(t, http.StatusCreated, rec.Code)
	categoryID := decode(t, rec)["id"].(string)

	rec = s.do(call{method: http.MethodPost, path: "/admin-user/product-admin/", token: staff, body: map[string]interface{}{
		"category_id": categoryID, "name": "Novel", "price": 100,
	}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	productID := decode(t, rec)["id"].(string)

	rec = s.do(call{method: http.MethodPost, path: "/store/order-cart/" + productID + "/add/"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	for i := 1; i <= 3; i++ {
		rec = s.do(call{method: http.MethodPost, path: "/store/order-cart/" + productID + "/add/", token: shopper})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		body := decode(t, rec)
		assert.Equal(t, "Item was added", body["message"])
		assert.EqualValues(t, i, body["quantity"])
	}

	rec = s.do(call{method: http.MethodPost, path: "/store/order-cart/" + productID + "/remove/", token: shopper})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.EqualValues(t, 2, decode(t, rec)["quantity"])

	rec = s.do(call{method: http.MethodPost, path: "/store/order-cart/" + productID + "/double/", token: shopper})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(call{method: http.MethodPost, path: "/store/order-cart/missing/add/", token: shopper})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(call{method: http.MethodGet, path: "/store/cart-items/", token: shopper})
	require.Equal(t, http.StatusOK, rec.Code)
	cart := decode(t, rec)
	assert.Equal(t, "200.00", cart["total"])
	assert.NotNil(t, cart["total_computed_at"])
	items := cart["cart_items"].([]interface{})
	require.Len(t, items, 1)
	assert.EqualValues(t, 2, items[0].(map[string]interface{})["quantity"])

	rec = s.do(call{method: http.MethodPost, path: "/store/place-order/", token: shopper, body: map[string]interface{}{"amount": "200.00"}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	placed := decode(t, rec)
	assert.Equal(t, "Order placed successfully", placed["message"])
	order := placed["order"].(map[string]interface{})
	assert.Equal(t, true, order["complete"])
	assert.Equal(t, "Confirmed", order["order_status"])
	assert.Equal(t, "200.00", order["paid_amount"])

	rec = s.do(call{method: http.MethodPost, path: "/store/place-order/", token: shopper, body: map[string]interface{}{"amount": "1.00"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(call{method: http.MethodGet, path: "/store/order/", token: shopper})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeList(t, rec), 2)

	rec = s.do(call{method: http.MethodGet, path: "/admin-user/orders/", token: staff})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeList(t, rec), 2)

	orderID := order["id"].(string)
	rec = s.do(call{method: http.MethodPatch, path: "/admin-user/order-details/" + orderID + "/", token: staff, body: map[string]string{"order_status": "Shipped"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Shipped", decode(t, rec)["order_status"])

	rec = s.do(call{method: http.MethodPatch, path: "/admin-user/order-details/" + orderID + "/", token: staff, body: map[string]string{"order_status": "Lost"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(call{method: http.MethodPatch, path: "/admin-user/order-details/" + orderID + "/", token: staff, body: map[string]bool{"complete": false}})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestStoreCatalogListing(t *testing.T) {
	s := newTestServer(t, nil)
	staff := s.login("admin@example.com", true)

	rec := s.do(call{method: http.MethodPost, path: "/admin-user/categories/", token: staff, body: map[string]string{"name": "Toys"}})
	require.Equal(t, http.StatusCreated, rec.Code)
	categoryID := decode(t, rec)["id"].(string)

	for _, name := range []string{"Ball", "Kite", "Yo-yo"} {
		rec = s.do(call{method: http.MethodPost, path: "/admin-user/product-admin/", token: staff, body: map[string]interface{}{
			"category_id": categoryID, "name": name, "price": "9.99",
		}})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec = s.do(call{method: http.MethodGet, path: "/store/categories/"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeList(t, rec), 1)

	rec = s.do(call{method: http.MethodGet, path: "/store/product/"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeList(t, rec), 3)

	rec = s.do(call{method: http.MethodGet, path: "/store/product/?page=2&page_size=2"})
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode(t, rec)
	assert.EqualValues(t, 3, page["count"])
	assert.Len(t, page["results"], 1)

	rec = s.do(call{method: http.MethodGet, path: "/store/product/?page_size=abc"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(call{method: http.MethodGet, path: "/store/product-category/" + categoryID + "/"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeList(t, rec), 3)

	rec = s.do(call{method: http.MethodGet, path: "/store/product-detail/missing/"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTagEndpoints(t *testing.T) {
	s := newTestServer(t, nil)
	staff := s.login("admin@example.com", true)

	rec := s.do(call{method: http.MethodPost, path: "/admin-user/categories/", token: staff, body: map[string]string{"name": "Garden"}})
	require.Equal(t, http.StatusCreated, rec.Code)
	categoryID := decode(t, rec)["id"].(string)

	rec = s.do(call{method: http.MethodPost, path: "/admin-user/product-admin/", token: staff, body: map[string]interface{}{
		"category_id": categoryID, "name": "Rake", "price": "12.00",
	}})
	require.Equal(t, http.StatusCreated, rec.Code)
	productID := decode(t, rec)["id"].(string)

	rec = s.do(call{method: http.MethodPost, path: "/admin-user/tags/", token: staff, body: map[string]string{"title": "outdoor"}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	tagID := decode(t, rec)["id"].(string)

	rec = s.do(call{method: http.MethodPost, path: "/admin-user/tags/", token: staff, body: map[string]string{"title": "outdoor"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	link := map[string]string{"tag_id": tagID, "product_id": productID}
	rec = s.do(call{method: http.MethodPost, path: "/admin-user/tag-product/", token: staff, body: link})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(call{method: http.MethodPost, path: "/admin-user/tag-product/", token: staff, body: link})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(call{method: http.MethodPost, path: "/admin-user/tag-product/", token: staff, body: map[string]string{"tag_id": "missing", "product_id": productID}})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(call{method: http.MethodGet, path: "/store/product-detail/" + productID + "/"})
	require.Equal(t, http.StatusOK, rec.Code)
	tags := decode(t, rec)["tags"].([]interface{})
	require.Len(t, tags, 1)
	assert.Equal(t, "outdoor", tags[0].(map[string]interface{})["title"])
}

func TestProductImageUpload(t *testing.T) {
	s := newTestServer(t, nil)
	staff := s.login("admin@example.com", true)

	rec := s.do(call{method: http.MethodPost, path: "/admin-user/categories/", token: staff, body: map[string]string{"name": "Art"}})
	require.Equal(t, http.StatusCreated, rec.Code)
	categoryID := decode(t, rec)["id"].(string)

	rec = s.do(call{method: http.MethodPost, path: "/admin-user/product-admin/", token: staff, body: map[string]interface{}{
		"category_id": categoryID, "name": "Poster", "price": "5.00",
	}})
	require.Equal(t, http.StatusCreated, rec.Code)
	productID := decode(t, rec)["id"].(string)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("image", "poster.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("\x89PNG fake image bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/admin-user/product-admin-detail/"+productID+"/image/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+staff)
	up := httptest.NewRecorder()
	s.handler.ServeHTTP(up, req)
	require.Equal(t, http.StatusOK, up.Code, up.Body.String())

	image := decode(t, up)["image"].(string)
	assert.True(t, strings.HasPrefix(image, "/media/product/"), image)
	assert.True(t, strings.HasSuffix(image, ".png"), image)

	rec = s.do(call{method: http.MethodGet, path: image})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(call{method: http.MethodPost, path: "/admin-user/product-admin-detail/" + productID + "/image/", token: staff})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCSRFProtectsCookieSessions(t *testing.T) {
	s := newTestServer(t, securecookie.GenerateRandomKey(32))
	tok := s.login("frank@example.com", false)

	rec := s.do(call{method: http.MethodPost, path: "/user/login/", body: map[string]string{
		"email": "frank@example.com", "password": "secret123",
	}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	session := rec.Result().Cookies()

	rec = s.do(call{method: http.MethodPatch, path: "/user/me/", cookies: session, body: map[string]string{"name": "Frankie"}})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(call{method: http.MethodGet, path: "/user/csrf/", cookies: session})
	require.Equal(t, http.StatusOK, rec.Code)
	csrfToken := decode(t, rec)["csrf_token"].(string)
	require.NotEmpty(t, csrfToken)

	rec = s.do(call{
		method:  http.MethodPatch,
		path:    "/user/me/",
		body:    map[string]string{"name": "Frankie"},
		cookies: append(session, rec.Result().Cookies()...),
		header:  map[string]string{"X-CSRFToken": csrfToken},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Frankie", decode(t, rec)["name"])

	rec = s.do(call{method: http.MethodPatch, path: "/user/me/", token: tok, body: map[string]string{"name": "Frank"}})
	assert.Equal(t, http.StatusOK, rec.Code)
}
