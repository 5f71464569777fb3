package fakers

import (
	"math"
	"math/rand"
	"strings"

	"github.com/Rakhulsr/go-storefront/app/models"
	"github.com/go-faker/faker/v4"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
)

func CategoryFaker() *models.Category {
	name := capitalize(faker.Word()) + " " + capitalize(faker.Word())

	return &models.Category{
		ID:   uuid.New().String(),
		Name: name,
		Slug: slug.Make(name),
	}
}

func ProductFaker(category *models.Category) *models.Product {
	name := capitalize(faker.Word()) + " " + faker.Word()

	return &models.Product{
		ID:          uuid.New().String(),
		CategoryID:  category.ID,
		Name:        name,
		Price:       decimal.NewFromFloat(fakePrice()).Round(2),
		Description: faker.Paragraph(),
		Stock:       rand.Intn(20) + 1,
	}
}

func TagFaker() *models.Tag {
	return &models.Tag{
		ID:          uuid.New().String(),
		Title:       faker.Word() + "-" + uuid.NewString()[:6],
		Description: faker.Sentence(),
	}
}

// DiscountFaker returns a 5 to 50 percent discount for category.
func DiscountFaker(category *models.Category) *models.Discount {
	return &models.Discount{
		ID:         uuid.New().String(),
		CategoryID: category.ID,
		Name:       capitalize(faker.Word()) + " Sale",
		Percentage: 5 * (rand.Intn(10) + 1),
	}
}

func fakePrice() float64 {
	return 1 + precision(rand.Float64()*math.Pow10(rand.Intn(4)+1), 2)
}

func precision(val float64, pre int) float64 {
	a := math.Pow10(pre)
	return float64(int(val*a)) / a
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
