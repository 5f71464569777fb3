package seeders

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/Rakhulsr/go-storefront/app/db/fakers"
	"github.com/Rakhulsr/go-storefront/app/helpers"
	"github.com/Rakhulsr/go-storefront/app/models"
	"github.com/Rakhulsr/go-storefront/app/repositories"
	"github.com/Rakhulsr/go-storefront/app/services"
	"github.com/Rakhulsr/go-storefront/app/utils/logger"
	"gorm.io/gorm"
)

// DefaultPassword is the password of every seeded customer.
const DefaultPassword = "password"

type Options struct {
	Categories          int
	ProductsPerCategory int
	Tags                int
	Users               int
}

type Seeder struct {
	Name   string
	Seeder interface{}
}

// SeedersRegister builds the fake rows in dependency order. About half of the
// categories get a discount.
func SeedersRegister(opts Options, passwordHash string) ([]Seeder, []*models.Category) {
	var (
		categories []*models.Category
		products   []*models.Product
		discounts  []*models.Discount
		tags       []*models.Tag
		connectors []*models.ProductTagConnector
		users      []*models.User
		customers  []*models.Customer
	)

	for i := 0; i < opts.Categories; i++ {
		category := fakers.CategoryFaker()
		categories = append(categories, category)
		for j := 0; j < opts.ProductsPerCategory; j++ {
			products = append(products, fakers.ProductFaker(category))
		}
		if rand.Intn(2) == 0 {
			discounts = append(discounts, fakers.DiscountFaker(category))
		}
	}

	for i := 0; i < opts.Tags; i++ {
		tag := fakers.TagFaker()
		tags = append(tags, tag)
		for _, p := range products {
			if rand.Intn(3) == 0 {
				connectors = append(connectors, &models.ProductTagConnector{TagID: tag.ID, ProductID: p.ID})
			}
		}
	}

	for i := 0; i < opts.Users; i++ {
		user, customer := fakers.UserFaker(passwordHash)
		users = append(users, user)
		customers = append(customers, customer)
	}

	seeders := []Seeder{
		{Name: "categories", Seeder: categories},
		{Name: "products", Seeder: products},
		{Name: "discounts", Seeder: discounts},
		{Name: "tags", Seeder: tags},
		{Name: "tag connectors", Seeder: connectors},
		{Name: "users", Seeder: users},
		{Name: "customers", Seeder: customers},
	}
	return seeders, categories
}

// DBSeed inserts fake data and prices every seeded product with its
// category's discount.
func DBSeed(ctx context.Context, db *gorm.DB, opts Options) error {
	hash, err := helpers.HashPassword(DefaultPassword)
	if err != nil {
		return fmt.Errorf("failed to hash seed password: %w", err)
	}

	seeders, categories := SeedersRegister(opts, hash)

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, seeder := range seeders {
			if isEmpty(seeder.Seeder) {
				continue
			}
			if err := tx.Create(seeder.Seeder).Error; err != nil {
				return fmt.Errorf("seed %s: %w", seeder.Name, err)
			}
			logger.FromCtx(ctx).Info("DBSeed: seeded", "table", seeder.Name)
		}
		return nil
	})
	if err != nil {
		return err
	}

	discountSvc := services.NewDiscountService(
		db,
		repositories.NewDiscountRepository(db),
		repositories.NewCategoryRepository(db),
		repositories.NewProductRepository(db),
	)
	for _, category := range categories {
		if err := discountSvc.ApplyCategoryDiscount(ctx, category.ID); err != nil {
			return fmt.Errorf("price category %s: %w", category.ID, err)
		}
	}
	return nil
}

func isEmpty(rows interface{}) bool {
	switch v := rows.(type) {
	case []*models.Category:
		return len(v) == 0
	case []*models.Product:
		return len(v) == 0
	case []*models.Discount:
		return len(v) == 0
	case []*models.Tag:
		return len(v) == 0
	case []*models.ProductTagConnector:
		return len(v) == 0
	case []*models.User:
		return len(v) == 0
	case []*models.Customer:
		return len(v) == 0
	}
	return rows == nil
}
