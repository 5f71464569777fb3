package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product carries two cached projections, Discount and DiscountedPrice. They
// are recomputed only when a Discount on the category is created or updated,
// or when the product itself is written through the admin API. PricedAt
// records the last recomputation; nil means the product was never priced
// against a discount.
type Product struct {
	ID              string          `gorm:"size:36;not null;uniqueIndex;primary_key"`
	CategoryID      string          `gorm:"size:36;not null;index"`
	Category        *Category       `gorm:"foreignKey:CategoryID"`
	Name            string          `gorm:"size:100;not null"`
	Price           decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Description     string          `gorm:"type:text"`
	Image           string          `gorm:"size:255"`
	Stock           int             `gorm:"not null;default:0"`
	Discount        decimal.Decimal `gorm:"type:decimal(10,2);default:0.00"`
	DiscountedPrice decimal.Decimal `gorm:"type:decimal(10,2);default:0.00"`
	PricedAt        *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (p *Product) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return
}
