package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/Rakhulsr/go-storefront/app/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderItemRepository interface {
	WithTx(tx *gorm.DB) OrderItemRepository
	Find(ctx context.Context, orderID, productID string) (*models.OrderItem, error)
	Create(ctx context.Context, item *models.OrderItem) error
	UpdateQuantity(ctx context.Context, id string, quantity int) error
	UpdateItemPrice(ctx context.Context, id string, price decimal.Decimal) error
	Delete(ctx context.Context, id string) error
	ListByOrderID(ctx context.Context, orderID string) ([]models.OrderItem, error)
}

type OrderItemRepositoryImpl struct {
	DB *gorm.DB
}

func NewOrderItemRepository(db *gorm.DB) OrderItemRepository {
	return &OrderItemRepositoryImpl{DB: db}
}

func (r *OrderItemRepositoryImpl) WithTx(tx *gorm.DB) OrderItemRepository {
	return &OrderItemRepositoryImpl{DB: tx}
}

func (r *OrderItemRepositoryImpl) Find(ctx context.Context, orderID, productID string) (*models.OrderItem, error) {
	var item models.OrderItem
	err := r.DB.WithContext(ctx).
		Where("order_id = ? AND product_id = ?", orderID, productID).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *OrderItemRepositoryImpl) Create(ctx context.Context, item *models.OrderItem) error {
	return r.DB.WithContext(ctx).Omit("Order", "Product").Create(item).Error
}

func (r *OrderItemRepositoryImpl) UpdateQuantity(ctx context.Context, id string, quantity int) error {
	return r.DB.WithContext(ctx).Model(&models.OrderItem{}).Where("id = ?", id).Updates(map[string]interface{}{
		"quantity":   quantity,
		"updated_at": time.Now(),
	}).Error
}

func (r *OrderItemRepositoryImpl) UpdateItemPrice(ctx context.Context, id string, price decimal.Decimal) error {
	return r.DB.WithContext(ctx).Model(&models.OrderItem{}).Where("id = ?", id).
		Update("item_price", price).Error
}

func (r *OrderItemRepositoryImpl) Delete(ctx context.Context, id string) error {
	return r.DB.WithContext(ctx).Delete(&models.OrderItem{}, "id = ?", id).Error
}

// ListByOrderID returns the order's lines oldest first with their products.
func (r *OrderItemRepositoryImpl) ListByOrderID(ctx context.Context, orderID string) ([]models.OrderItem, error) {
	var items []models.OrderItem
	err := r.DB.WithContext(ctx).
		Preload("Product").
		Where("order_id = ?", orderID).
		Order("date_added ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
