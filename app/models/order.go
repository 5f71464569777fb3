package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	OrderStatusPending   = "Pending"
	OrderStatusShipped   = "Shipped"
	OrderStatusDelivered = "Delivered"
	OrderStatusConfirmed = "Confirmed"
)

var OrderStatuses = []string{
	OrderStatusPending,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusConfirmed,
}

// Order doubles as the cart while Complete is false. OpenKey holds the
// customer id for that state and is cleared on placement; its unique index
// keeps a customer at one open order. The index is filtered to non-NULL keys
// because SQL Server counts NULLs as equal under a plain unique index.
//
// CartTotal is a cached projection refreshed by the cart service whenever the
// cart is mutated or viewed. TotalComputedAt records when that happened.
type Order struct {
	ID              string          `gorm:"size:36;not null;uniqueIndex;primary_key"`
	CustomerID      string          `gorm:"size:36;not null;index"`
	Customer        *Customer       `gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE"`
	DateOrdered     time.Time       `gorm:"autoCreateTime"`
	Complete        bool            `gorm:"not null;default:false"`
	OpenKey         *string         `gorm:"size:36;uniqueIndex:idx_orders_open_key,where:open_key IS NOT NULL"`
	CartTotal       decimal.Decimal `gorm:"type:decimal(10,2);default:0.00"`
	TotalComputedAt *time.Time
	PaidAmount      decimal.Decimal `gorm:"type:decimal(10,2);default:0.00"`
	OrderStatus     string          `gorm:"size:20;not null;default:'Pending'"`
	OrderItems      []OrderItem     `gorm:"constraint:OnDelete:CASCADE"`
	UpdatedAt       time.Time
}

func (o *Order) BeforeCreate(tx *gorm.DB) (err error) {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	return
}

func IsValidOrderStatus(status string) bool {
	for _, s := range OrderStatuses {
		if s == status {
			return true
		}
	}
	return false
}
