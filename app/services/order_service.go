package services

import (
	"context"
	"fmt"

	"github.com/Rakhulsr/go-storefront/app/models"
	"github.com/Rakhulsr/go-storefront/app/repositories"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderPatch is an admin edit of an order; nil means unchanged.
type OrderPatch struct {
	OrderStatus *string
	Complete    *bool
	PaidAmount  *decimal.Decimal
}

// OrderService backs the admin order screens.
type OrderService struct {
	db        *gorm.DB
	orderRepo repositories.OrderRepository
}

func NewOrderService(db *gorm.DB, orderRepo repositories.OrderRepository) *OrderService {
	return &OrderService{db: db, orderRepo: orderRepo}
}

func (s *OrderService) List(ctx context.Context) ([]models.Order, error) {
	orders, err := s.orderRepo.GetAllOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

func (s *OrderService) Get(ctx context.Context, id string) (*models.Order, error) {
	order, err := s.orderRepo.GetOrderByIDWithRelations(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, notFound("order", id)
	}
	return order, nil
}

// Update edits status, completion and paid amount. Reopening an order fails
// with ErrConflict when the customer already has another open order.
func (s *OrderService) Update(ctx context.Context, id string, patch OrderPatch) (*models.Order, error) {
	updates := map[string]interface{}{}
	if patch.OrderStatus != nil {
		if !models.IsValidOrderStatus(*patch.OrderStatus) {
			return nil, NewValidationError("order_status", fmt.Sprintf("%q is not a valid choice", *patch.OrderStatus))
		}
		updates["order_status"] = *patch.OrderStatus
	}
	if patch.PaidAmount != nil {
		if patch.PaidAmount.IsNegative() {
			return nil, NewValidationError("paid_amount", "paid amount must not be negative")
		}
		updates["paid_amount"] = patch.PaidAmount.Round(2)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orders := s.orderRepo.WithTx(tx)
		order, err := orders.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get order: %w", err)
		}
		if order == nil {
			return notFound("order", id)
		}

		if patch.Complete != nil && *patch.Complete != order.Complete {
			updates["complete"] = *patch.Complete
			if *patch.Complete {
				updates["open_key"] = nil
			} else {
				updates["open_key"] = order.CustomerID
			}
		}
		if len(updates) == 0 {
			return nil
		}
		return translate("failed to update order", orders.Update(ctx, id, updates))
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *OrderService) Delete(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orders := s.orderRepo.WithTx(tx)
		order, err := orders.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get order: %w", err)
		}
		if order == nil {
			return notFound("order", id)
		}
		return orders.Delete(ctx, id)
	})
}
