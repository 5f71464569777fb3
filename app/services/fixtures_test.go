package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/Rakhulsr/go-storefront/app/db/dbtest"
	"github.com/Rakhulsr/go-storefront/app/models"
	"github.com/Rakhulsr/go-storefront/app/repositories"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db        *gorm.DB
	catalog   *CatalogService
	discounts *DiscountService
	carts     *CartService
	orders    *OrderService
	users     *UserService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.Open(t)

	categoryRepo := repositories.NewCategoryRepository(db)
	productRepo := repositories.NewProductRepository(db)
	discountRepo := repositories.NewDiscountRepository(db)
	tagRepo := repositories.NewTagRepository(db)
	userRepo := repositories.NewUserRepository(db)
	customerRepo := repositories.NewCustomerRepository(db)
	orderRepo := repositories.NewOrderRepository(db)
	itemRepo := repositories.NewOrderItemRepository(db)

	return &fixture{
		db:        db,
		catalog:   NewCatalogService(db, categoryRepo, productRepo, discountRepo, tagRepo, nil),
		discounts: NewDiscountService(db, discountRepo, categoryRepo, productRepo),
		carts:     NewCartService(db, customerRepo, orderRepo, itemRepo, productRepo),
		orders:    NewOrderService(db, orderRepo),
		users:     NewUserService(db, userRepo, customerRepo),
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func (f *fixture) category(t *testing.T, name string) *models.Category {
	t.Helper()
	c, err := f.catalog.CreateCategory(context.Background(), name)
	require.NoError(t, err)
	return c
}

func (f *fixture) product(t *testing.T, categoryID, name, price string) *models.Product {
	t.Helper()
	p, err := f.catalog.CreateProduct(context.Background(), ProductInput{
		CategoryID: categoryID,
		Name:       name,
		Price:      dec(price),
		Stock:      10,
	})
	require.NoError(t, err)
	return p
}

func (f *fixture) reload(t *testing.T, id string) *models.Product {
	t.Helper()
	var p models.Product
	require.NoError(t, f.db.First(&p, "id = ?", id).Error)
	return &p
}

// customer registers a fresh user and returns its customer profile.
func (f *fixture) customer(t *testing.T) *models.Customer {
	t.Helper()
	ctx := context.Background()
	user, err := f.users.Register(ctx, RegisterInput{
		Email:    fmt.Sprintf("%s@example.com", uuid.New().String()[:8]),
		Password: "secret123",
		Name:     "Shopper",
	})
	require.NoError(t, err)

	c, err := f.carts.GetOrCreateCustomer(ctx, user)
	require.NoError(t, err)
	return c
}
