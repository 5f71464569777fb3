package routes

import (
	"net/http"
	"strings"

	"github.com/Rakhulsr/go-storefront/app/handlers"
	"github.com/Rakhulsr/go-storefront/app/handlers/admin"
	"github.com/Rakhulsr/go-storefront/app/helpers"
	"github.com/Rakhulsr/go-storefront/app/middlewares"
	"github.com/Rakhulsr/go-storefront/app/repositories"
	"github.com/Rakhulsr/go-storefront/app/services"
	"github.com/Rakhulsr/go-storefront/app/utils/metrics"
	"github.com/Rakhulsr/go-storefront/app/utils/sessions"
	"github.com/Rakhulsr/go-storefront/app/utils/storage"
	"github.com/Rakhulsr/go-storefront/app/utils/token"
	"github.com/gorilla/csrf"
	"github.com/gorilla/mux"
	"github.com/unrolled/render"
	"gorm.io/gorm"
)

type Dependencies struct {
	DB       *gorm.DB
	Render   *render.Render
	Sessions sessions.SessionStore
	Tokens   *token.Manager
	Images   storage.ImageStore
	// CSRFKey enables CSRF protection for cookie-authenticated requests.
	CSRFKey []byte
	Secure  bool
}

func NewRouter(deps Dependencies) http.Handler {
	rnd := deps.Render
	validate := handlers.NewValidator()

	userRepo := repositories.NewUserRepository(deps.DB)
	customerRepo := repositories.NewCustomerRepository(deps.DB)
	categoryRepo := repositories.NewCategoryRepository(deps.DB)
	productRepo := repositories.NewProductRepository(deps.DB)
	discountRepo := repositories.NewDiscountRepository(deps.DB)
	tagRepo := repositories.NewTagRepository(deps.DB)
	orderRepo := repositories.NewOrderRepository(deps.DB)
	orderItemRepo := repositories.NewOrderItemRepository(deps.DB)

	userSvc := services.NewUserService(deps.DB, userRepo, customerRepo)
	catalogSvc := services.NewCatalogService(deps.DB, categoryRepo, productRepo, discountRepo, tagRepo, deps.Images)
	discountSvc := services.NewDiscountService(deps.DB, discountRepo, categoryRepo, productRepo)
	cartSvc := services.NewCartService(deps.DB, customerRepo, orderRepo, orderItemRepo, productRepo)
	orderSvc := services.NewOrderService(deps.DB, orderRepo)

	userHandler := handlers.NewUserHandler(rnd, validate, userSvc, deps.Sessions, deps.Tokens)
	storeHandler := handlers.NewStoreHandler(rnd, validate, catalogSvc, cartSvc)
	adminHandler := admin.NewAdminHandler(rnd, validate, catalogSvc, discountSvc, orderSvc)

	requireAuth := middlewares.RequireAuth(rnd)
	authed := func(fn http.HandlerFunc) http.Handler {
		return requireAuth(fn)
	}

	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = rnd.JSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = rnd.JSON(w, http.StatusMethodNotAllowed, map[string]string{"detail": "Method \"" + r.Method + "\" not allowed."})
	})

	router.Use(metrics.Middleware)
	router.Use(middlewares.Authenticate(userRepo, deps.Sessions, deps.Tokens))
	if len(deps.CSRFKey) > 0 {
		router.Use(csrfProtect(rnd, deps.CSRFKey, deps.Secure))
	}

	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_ = rnd.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)
	router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	if local, ok := deps.Images.(*storage.LocalStore); ok && strings.HasPrefix(local.PublicURL(), "/") {
		prefix := strings.TrimSuffix(local.PublicURL(), "/") + "/"
		router.PathPrefix(prefix).Handler(http.StripPrefix(prefix, http.FileServer(http.Dir(local.Dir())))).Methods(http.MethodGet)
	}

	user := router.PathPrefix("/user").Subrouter()
	user.HandleFunc("/create/", userHandler.Create).Methods(http.MethodPost)
	user.HandleFunc("/token/", userHandler.Token).Methods(http.MethodPost)
	user.HandleFunc("/login/", userHandler.Login).Methods(http.MethodPost)
	user.HandleFunc("/logout/", userHandler.Logout).Methods(http.MethodPost)
	user.HandleFunc("/csrf/", userHandler.CSRFToken).Methods(http.MethodGet)
	user.Handle("/me/", authed(userHandler.Me)).Methods(http.MethodGet, http.MethodPut, http.MethodPatch)
	user.Handle("/profile/", authed(userHandler.Profile)).Methods(http.MethodGet, http.MethodPut, http.MethodPatch)

	store := router.PathPrefix("/store").Subrouter()
	store.HandleFunc("/categories/", storeHandler.Categories).Methods(http.MethodGet)
	store.HandleFunc("/product/", storeHandler.Products).Methods(http.MethodGet)
	store.HandleFunc("/product-detail/{product_id}/", storeHandler.ProductDetail).Methods(http.MethodGet)
	store.HandleFunc("/product-category/{category_id}/", storeHandler.ProductsByCategory).Methods(http.MethodGet)
	store.Handle("/order/", authed(storeHandler.Orders)).Methods(http.MethodGet)
	store.Handle("/order-cart/{product_id}/{action}/", authed(storeHandler.UpdateCart)).Methods(http.MethodPost)
	store.Handle("/cart-items/", authed(storeHandler.CartItems)).Methods(http.MethodGet)
	store.Handle("/place-order/", authed(storeHandler.PlaceOrder)).Methods(http.MethodPost)

	adminRouter := router.PathPrefix("/admin-user").Subrouter()
	adminRouter.Use(middlewares.AdminAuthMiddleware(rnd))

	adminRouter.HandleFunc("/categories/", adminHandler.ListCategories).Methods(http.MethodGet)
	adminRouter.HandleFunc("/categories/", adminHandler.CreateCategory).Methods(http.MethodPost)
	adminRouter.HandleFunc("/category-detail/{pk}/", adminHandler.GetCategory).Methods(http.MethodGet)
	adminRouter.HandleFunc("/category-detail/{pk}/", adminHandler.UpdateCategory).Methods(http.MethodPut, http.MethodPatch)
	adminRouter.HandleFunc("/category-detail/{pk}/", adminHandler.DeleteCategory).Methods(http.MethodDelete)

	adminRouter.HandleFunc("/product-admin/", adminHandler.ListProducts).Methods(http.MethodGet)
	adminRouter.HandleFunc("/product-admin/", adminHandler.CreateProduct).Methods(http.MethodPost)
	adminRouter.HandleFunc("/product-admin-detail/{pk}/", adminHandler.GetProduct).Methods(http.MethodGet)
	adminRouter.HandleFunc("/product-admin-detail/{pk}/", adminHandler.UpdateProduct).Methods(http.MethodPut, http.MethodPatch)
	adminRouter.HandleFunc("/product-admin-detail/{pk}/", adminHandler.DeleteProduct).Methods(http.MethodDelete)
	adminRouter.HandleFunc("/product-admin-detail/{pk}/image/", adminHandler.UploadProductImage).Methods(http.MethodPost)

	adminRouter.HandleFunc("/discount/", adminHandler.ListDiscounts).Methods(http.MethodGet)
	adminRouter.HandleFunc("/discount/", adminHandler.CreateDiscount).Methods(http.MethodPost)
	adminRouter.HandleFunc("/discount-detail/{pk}/", adminHandler.GetDiscount).Methods(http.MethodGet)
	adminRouter.HandleFunc("/discount-detail/{pk}/", adminHandler.UpdateDiscount).Methods(http.MethodPut, http.MethodPatch)
	adminRouter.HandleFunc("/discount-detail/{pk}/", adminHandler.DeleteDiscount).Methods(http.MethodDelete)

	adminRouter.HandleFunc("/tags/", adminHandler.ListTags).Methods(http.MethodGet)
	adminRouter.HandleFunc("/tags/", adminHandler.CreateTag).Methods(http.MethodPost)
	adminRouter.HandleFunc("/tag-detail/{pk}/", adminHandler.GetTag).Methods(http.MethodGet)
	adminRouter.HandleFunc("/tag-detail/{pk}/", adminHandler.UpdateTag).Methods(http.MethodPut, http.MethodPatch)
	adminRouter.HandleFunc("/tag-detail/{pk}/", adminHandler.DeleteTag).Methods(http.MethodDelete)
	adminRouter.HandleFunc("/tag-product/", adminHandler.ListTagProducts).Methods(http.MethodGet)
	adminRouter.HandleFunc("/tag-product/", adminHandler.TagProduct).Methods(http.MethodPost)

	adminRouter.HandleFunc("/orders/", adminHandler.ListOrders).Methods(http.MethodGet)
	adminRouter.HandleFunc("/order-details/{pk}/", adminHandler.GetOrder).Methods(http.MethodGet)
	adminRouter.HandleFunc("/order-details/{pk}/", adminHandler.UpdateOrder).Methods(http.MethodPut, http.MethodPatch)
	adminRouter.HandleFunc("/order-details/{pk}/", adminHandler.DeleteOrder).Methods(http.MethodDelete)

	return middlewares.RequestID(middlewares.Recovery(rnd)(middlewares.Logger(router)))
}

// csrfProtect issues tokens on every request and enforces them on unsafe
// methods of cookie-authenticated requests. Anonymous calls and calls that
// carry an API token are not exposed to cross-site forgery.
func csrfProtect(rnd *render.Render, key []byte, secure bool) mux.MiddlewareFunc {
	protect := csrf.Protect(key,
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.HttpOnly(true),
		csrf.RequestHeader("X-CSRFToken"),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = rnd.JSON(w, http.StatusForbidden, map[string]string{
				"detail": "CSRF Failed: " + csrf.FailureReason(r).Error(),
			})
		})),
	)

	return func(next http.Handler) http.Handler {
		protected := protect(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
				protected.ServeHTTP(w, r)
				return
			}
			if helpers.GetUserFromContext(r.Context()) == nil || strings.TrimSpace(r.Header.Get("Authorization")) != "" {
				next.ServeHTTP(w, r)
				return
			}
			protected.ServeHTTP(w, r)
		})
	}
}
