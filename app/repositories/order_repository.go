package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Rakhulsr/go-storefront/app/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderRepository interface {
	WithTx(tx *gorm.DB) OrderRepository
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id string) (*models.Order, error)
	GetOrderByIDWithRelations(ctx context.Context, id string) (*models.Order, error)
	FindOpenByCustomerID(ctx context.Context, customerID string) (*models.Order, error)
	FindByCustomerID(ctx context.Context, customerID string) ([]models.Order, error)
	GetAllOrders(ctx context.Context) ([]models.Order, error)
	UpdateCartTotal(ctx context.Context, id string, total decimal.Decimal, computedAt time.Time) error
	MarkPlaced(ctx context.Context, id string, paidAmount decimal.Decimal) error
	Update(ctx context.Context, id string, updates map[string]interface{}) error
	Delete(ctx context.Context, id string) error
}

type gormOrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &gormOrderRepository{db: db}
}

func (r *gormOrderRepository) WithTx(tx *gorm.DB) OrderRepository {
	return &gormOrderRepository{db: tx}
}

func (r *gormOrderRepository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Omit("Customer", "OrderItems").Create(order).Error
}

func (r *gormOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).First(&order, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (r *gormOrderRepository) GetOrderByIDWithRelations(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("OrderItems", func(db *gorm.DB) *gorm.DB { return db.Order("date_added ASC") }).
		Preload("OrderItems.Product").
		First(&order, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get order with relations: %w", err)
	}
	return &order, nil
}

// FindOpenByCustomerID returns the customer's cart, or nil when there is none.
func (r *gormOrderRepository) FindOpenByCustomerID(ctx context.Context, customerID string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Where("open_key = ?", customerID).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (r *gormOrderRepository) FindByCustomerID(ctx context.Context, customerID string) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("date_ordered DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *gormOrderRepository) GetAllOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Order("date_ordered DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *gormOrderRepository) UpdateCartTotal(ctx context.Context, id string, total decimal.Decimal, computedAt time.Time) error {
	return r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Updates(map[string]interface{}{
		"cart_total":        total,
		"total_computed_at": computedAt,
		"updated_at":        time.Now(),
	}).Error
}

// MarkPlaced moves an open order to Confirmed and releases the customer's
// open slot.
func (r *gormOrderRepository) MarkPlaced(ctx context.Context, id string, paidAmount decimal.Decimal) error {
	return r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Updates(map[string]interface{}{
		"paid_amount":  paidAmount,
		"complete":     true,
		"open_key":     nil,
		"order_status": models.OrderStatusConfirmed,
		"updated_at":   time.Now(),
	}).Error
}

func (r *gormOrderRepository) Update(ctx context.Context, id string, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()
	return r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Updates(updates).Error
}

// Delete removes the order and its lines. Call it inside a transaction.
func (r *gormOrderRepository) Delete(ctx context.Context, id string) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("order_id = ?", id).Delete(&models.OrderItem{}).Error; err != nil {
		return fmt.Errorf("failed to delete items of order %s: %w", id, err)
	}
	return db.Delete(&models.Order{}, "id = ?", id).Error
}
