package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Rakhulsr/go-storefront/app/models"
	"github.com/Rakhulsr/go-storefront/app/repositories"
	"github.com/Rakhulsr/go-storefront/app/utils/calc"
	"github.com/Rakhulsr/go-storefront/app/utils/keylock"
	"github.com/Rakhulsr/go-storefront/app/utils/logger"
	"github.com/Rakhulsr/go-storefront/app/utils/metrics"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CartAction string

const (
	CartActionAdd    CartAction = "add"
	CartActionRemove CartAction = "remove"
)

// ParseCartAction accepts exactly "add" or "remove".
func ParseCartAction(raw string) (CartAction, error) {
	switch a := CartAction(raw); a {
	case CartActionAdd, CartActionRemove:
		return a, nil
	default:
		return "", NewValidationError("action", fmt.Sprintf("unknown cart action %q, expected add or remove", raw))
	}
}

func (a CartAction) delta() int {
	if a == CartActionRemove {
		return -1
	}
	return 1
}

// Cart is an open order with freshly priced lines.
type Cart struct {
	Order *models.Order
	Items []models.OrderItem
}

type CartUpdate struct {
	ProductID string
	Action    CartAction
	Quantity  int
	Removed   bool
	Total     decimal.Decimal
}

// CartService runs the cart lifecycle. Every mutation for a customer holds
// that customer's lock and runs in one transaction together with the total
// recomputation.
type CartService struct {
	db           *gorm.DB
	customerRepo repositories.CustomerRepositoryImpl
	orderRepo    repositories.OrderRepository
	itemRepo     repositories.OrderItemRepository
	productRepo  repositories.ProductRepositoryImpl
	locks        *keylock.Locker
	now          func() time.Time
}

func NewCartService(
	db *gorm.DB,
	customerRepo repositories.CustomerRepositoryImpl,
	orderRepo repositories.OrderRepository,
	itemRepo repositories.OrderItemRepository,
	productRepo repositories.ProductRepositoryImpl,
) *CartService {
	return &CartService{
		db:           db,
		customerRepo: customerRepo,
		orderRepo:    orderRepo,
		itemRepo:     itemRepo,
		productRepo:  productRepo,
		locks:        keylock.New(),
		now:          time.Now,
	}
}

// GetOrCreateCustomer returns the customer profile of user, creating it on
// first use.
func (s *CartService) GetOrCreateCustomer(ctx context.Context, user *models.User) (*models.Customer, error) {
	customer, err := s.customerRepo.FindByUserID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	if customer != nil {
		return customer, nil
	}

	customer = &models.Customer{UserID: user.ID, Name: user.Name}
	if err := s.customerRepo.Create(ctx, customer); err != nil {
		// another request created it first
		existing, findErr := s.customerRepo.FindByUserID(ctx, user.ID)
		if findErr == nil && existing != nil {
			return existing, nil
		}
		return nil, translate("failed to create customer", err)
	}
	return customer, nil
}

// GetOrCreateCart returns the customer's open order, creating it if needed.
func (s *CartService) GetOrCreateCart(ctx context.Context, customerID string) (*models.Order, error) {
	unlock := s.locks.Lock(customerID)
	defer unlock()

	var order *models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		order, err = s.getOrCreateCart(ctx, tx, customerID)
		return err
	})
	return order, err
}

func (s *CartService) getOrCreateCart(ctx context.Context, tx *gorm.DB, customerID string) (*models.Order, error) {
	orders := s.orderRepo.WithTx(tx)

	order, err := orders.FindOpenByCustomerID(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to find open order: %w", err)
	}
	if order != nil {
		return order, nil
	}

	key := customerID
	order = &models.Order{
		CustomerID:  customerID,
		OpenKey:     &key,
		OrderStatus: models.OrderStatusPending,
	}

	// The savepoint keeps the outer transaction usable when another process
	// wins the unique open_key race.
	createErr := tx.Transaction(func(sp *gorm.DB) error {
		return s.orderRepo.WithTx(sp).Create(ctx, order)
	})
	if createErr == nil {
		logger.FromCtx(ctx).Debug("cart opened", "customer_id", customerID, "order_id", order.ID)
		return order, nil
	}

	existing, err := orders.FindOpenByCustomerID(ctx, customerID)
	if err == nil && existing != nil {
		return existing, nil
	}
	return nil, translate("failed to create open order", createErr)
}

// UpdateCart adds or removes one unit of productID in the customer's cart.
// A line whose quantity drops to zero or below is deleted.
func (s *CartService) UpdateCart(ctx context.Context, customerID, productID string, action CartAction) (*CartUpdate, error) {
	if _, err := ParseCartAction(string(action)); err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(customerID)
	defer unlock()

	result := &CartUpdate{ProductID: productID, Action: action}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		product, err := s.productRepo.WithTx(tx).GetByID(ctx, productID)
		if err != nil {
			return fmt.Errorf("failed to get product: %w", err)
		}
		if product == nil {
			return notFound("product", productID)
		}

		order, err := s.getOrCreateCart(ctx, tx, customerID)
		if err != nil {
			return err
		}

		items := s.itemRepo.WithTx(tx)
		item, err := items.Find(ctx, order.ID, productID)
		if err != nil {
			return fmt.Errorf("failed to get order item: %w", err)
		}

		quantity := 0
		if item != nil {
			quantity = item.Quantity
		}
		quantity += action.delta()

		switch {
		case quantity <= 0:
			if item != nil {
				if err := items.Delete(ctx, item.ID); err != nil {
					return fmt.Errorf("failed to delete order item: %w", err)
				}
			}
			quantity = 0
			result.Removed = true
		case item == nil:
			item = &models.OrderItem{OrderID: order.ID, ProductID: productID, Quantity: quantity}
			if err := items.Create(ctx, item); err != nil {
				return translate("failed to create order item", err)
			}
		default:
			if err := items.UpdateQuantity(ctx, item.ID, quantity); err != nil {
				return fmt.Errorf("failed to update order item: %w", err)
			}
		}
		result.Quantity = quantity

		if _, err := s.recomputeTotal(ctx, tx, order); err != nil {
			return err
		}
		result.Total = order.CartTotal
		return nil
	})
	if err != nil {
		return nil, err
	}

	outcome := "updated"
	if result.Removed {
		outcome = "deleted"
	}
	metrics.CartMutations.WithLabelValues(string(action), outcome).Inc()
	return result, nil
}

// GetCart returns the customer's cart with its total recomputed and stored.
func (s *CartService) GetCart(ctx context.Context, customerID string) (*Cart, error) {
	unlock := s.locks.Lock(customerID)
	defer unlock()

	cart := &Cart{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.getOrCreateCart(ctx, tx, customerID)
		if err != nil {
			return err
		}
		items, err := s.recomputeTotal(ctx, tx, order)
		if err != nil {
			return err
		}
		cart.Order = order
		cart.Items = items
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cart, nil
}

// PlaceOrder prices the cart one last time and confirms it with the paid
// amount supplied by the caller. The amount is not checked against the total.
// A missing or empty cart and a negative amount are rejected with a
// *ValidationError.
func (s *CartService) PlaceOrder(ctx context.Context, customerID string, amount decimal.Decimal) (*models.Order, error) {
	if amount.IsNegative() {
		return nil, NewValidationError("amount", "amount must not be negative")
	}

	unlock := s.locks.Lock(customerID)
	defer unlock()

	var orderID string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.orderRepo.WithTx(tx).FindOpenByCustomerID(ctx, customerID)
		if err != nil {
			return fmt.Errorf("failed to find open order: %w", err)
		}
		if order == nil {
			return NewValidationError("cart", "cart is empty")
		}

		items, err := s.recomputeTotal(ctx, tx, order)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return NewValidationError("cart", "cart is empty")
		}

		if err := s.orderRepo.WithTx(tx).MarkPlaced(ctx, order.ID, amount.Round(2)); err != nil {
			return translate("failed to place order", err)
		}
		orderID = order.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.OrdersPlaced.Inc()
	logger.FromCtx(ctx).Info("order placed", "customer_id", customerID, "order_id", orderID, "paid_amount", amount.StringFixed(2))

	order, err := s.orderRepo.GetOrderByIDWithRelations(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, errors.New("placed order vanished")
	}
	return order, nil
}

// ListOrders opens a cart for the customer if needed and returns all of the
// customer's orders, newest first.
func (s *CartService) ListOrders(ctx context.Context, customerID string) ([]models.Order, error) {
	if _, err := s.GetOrCreateCart(ctx, customerID); err != nil {
		return nil, err
	}
	orders, err := s.orderRepo.FindByCustomerID(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// recomputeTotal prices every line, stores each line's unit price and the
// order total, and stamps the order with the computation time.
func (s *CartService) recomputeTotal(ctx context.Context, tx *gorm.DB, order *models.Order) ([]models.OrderItem, error) {
	items := s.itemRepo.WithTx(tx)

	lines, err := items.ListByOrderID(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list order items: %w", err)
	}

	total := decimal.Zero
	for i := range lines {
		line := &lines[i]
		if line.Product == nil {
			continue
		}
		unit := calc.UnitPrice(line.Product.Price, line.Product.DiscountedPrice)
		if !unit.Equal(line.ItemPrice) {
			if err := items.UpdateItemPrice(ctx, line.ID, unit); err != nil {
				return nil, fmt.Errorf("failed to store item price: %w", err)
			}
			line.ItemPrice = unit
		}
		total = total.Add(calc.LineTotal(line.Product.Price, line.Product.DiscountedPrice, line.Quantity))
	}

	computedAt := s.now()
	if err := s.orderRepo.WithTx(tx).UpdateCartTotal(ctx, order.ID, total, computedAt); err != nil {
		return nil, fmt.Errorf("failed to store cart total: %w", err)
	}
	order.CartTotal = total
	order.TotalComputedAt = &computedAt
	return lines, nil
}
