package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderItem is one product line of an Order. ItemPrice is the unit price used
// by the last cart total computation.
type OrderItem struct {
	ID        string          `gorm:"size:36;not null;uniqueIndex;primary_key" json:"id"`
	OrderID   string          `gorm:"size:36;not null;uniqueIndex:idx_order_product" json:"order_id"`
	Order     *Order          `gorm:"foreignKey:OrderID"`
	ProductID string          `gorm:"size:36;not null;uniqueIndex:idx_order_product;index" json:"product_id"`
	Product   *Product        `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Quantity  int             `gorm:"not null;default:0" json:"quantity"`
	DateAdded time.Time       `gorm:"autoCreateTime" json:"date_added"`
	ItemPrice decimal.Decimal `gorm:"type:decimal(10,2);default:0.00" json:"item_price"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (oi *OrderItem) BeforeCreate(tx *gorm.DB) (err error) {
	if oi.ID == "" {
		oi.ID = uuid.New().String()
	}
	return
}
