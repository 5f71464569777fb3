package migrations

import (
	"github.com/Rakhulsr/go-storefront/app/models"
	"gorm.io/gorm"
)

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Customer{},
		&models.Category{},
		&models.Product{},
		&models.Discount{},
		&models.Tag{},
		&models.ProductTagConnector{},
		&models.Order{},
		&models.OrderItem{},
	)
}
