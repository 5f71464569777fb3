package services

import (
	"context"
	"fmt"
	"time"

	"github.com/Rakhulsr/go-storefront/app/models"
	"github.com/Rakhulsr/go-storefront/app/repositories"
	"github.com/Rakhulsr/go-storefront/app/utils/calc"
	"github.com/Rakhulsr/go-storefront/app/utils/logger"
	"github.com/Rakhulsr/go-storefront/app/utils/metrics"
	"gorm.io/gorm"
)

type CreateDiscountInput struct {
	CategoryID string
	Name       string
	Percentage int
}

// DiscountPatch holds the fields of a partial update; nil means unchanged.
type DiscountPatch struct {
	CategoryID *string
	Name       *string
	Percentage *int
}

// DiscountService owns discounts and keeps each product's cached discount and
// discounted price in line with the discount of its category.
type DiscountService struct {
	db           *gorm.DB
	discountRepo repositories.DiscountRepositoryImpl
	categoryRepo repositories.CategoryRepositoryImpl
	productRepo  repositories.ProductRepositoryImpl
	now          func() time.Time
}

func NewDiscountService(db *gorm.DB, discountRepo repositories.DiscountRepositoryImpl, categoryRepo repositories.CategoryRepositoryImpl, productRepo repositories.ProductRepositoryImpl) *DiscountService {
	return &DiscountService{
		db:           db,
		discountRepo: discountRepo,
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		now:          time.Now,
	}
}

func (s *DiscountService) List(ctx context.Context) ([]models.Discount, error) {
	discounts, err := s.discountRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list discounts: %w", err)
	}
	return discounts, nil
}

func (s *DiscountService) Get(ctx context.Context, id string) (*models.Discount, error) {
	discount, err := s.discountRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get discount: %w", err)
	}
	if discount == nil {
		return nil, notFound("discount", id)
	}
	return discount, nil
}

// Create stores the discount and reprices every product of in.CategoryID in
// the same transaction. A missing category writes nothing.
func (s *DiscountService) Create(ctx context.Context, in CreateDiscountInput) (*models.Discount, error) {
	discount := &models.Discount{
		CategoryID: in.CategoryID,
		Name:       in.Name,
		Percentage: in.Percentage,
	}

	var repriced int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		category, err := s.categoryRepo.WithTx(tx).GetByID(ctx, in.CategoryID)
		if err != nil {
			return fmt.Errorf("failed to get category: %w", err)
		}
		if category == nil {
			return notFound("category", in.CategoryID)
		}

		if err := s.discountRepo.WithTx(tx).Create(ctx, discount); err != nil {
			return translate("failed to create discount", err)
		}

		repriced, err = s.applyDiscount(ctx, tx, category.ID, discount.Percentage)
		return err
	})
	if err != nil {
		logger.FromCtx(ctx).Warn("CreateDiscount: rolled back", "category_id", in.CategoryID, "error", err)
		return nil, err
	}

	metrics.DiscountApplications.WithLabelValues("create").Add(float64(repriced))
	return discount, nil
}

// Update applies patch and then reprices the products of the category the
// discount belonged to before the update, using the new percentage. A
// category change in patch is stored but does not reprice the new category.
func (s *DiscountService) Update(ctx context.Context, id string, patch DiscountPatch) (*models.Discount, error) {
	var (
		discount *models.Discount
		repriced int
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		discounts := s.discountRepo.WithTx(tx)

		current, err := discounts.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get discount: %w", err)
		}
		if current == nil {
			return notFound("discount", id)
		}
		storedCategoryID := current.CategoryID

		if patch.CategoryID != nil && *patch.CategoryID != current.CategoryID {
			category, err := s.categoryRepo.WithTx(tx).GetByID(ctx, *patch.CategoryID)
			if err != nil {
				return fmt.Errorf("failed to get category: %w", err)
			}
			if category == nil {
				return NewValidationError("category_id", "category does not exist")
			}
			current.CategoryID = category.ID
		}
		if patch.Name != nil {
			current.Name = *patch.Name
		}
		if patch.Percentage != nil {
			current.Percentage = *patch.Percentage
		}

		if err := discounts.Update(ctx, current); err != nil {
			return translate("failed to update discount", err)
		}

		repriced, err = s.applyDiscount(ctx, tx, storedCategoryID, current.Percentage)
		if err != nil {
			return err
		}
		discount = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.DiscountApplications.WithLabelValues("update").Add(float64(repriced))
	return discount, nil
}

// Delete removes the discount. Products keep the pricing it produced.
func (s *DiscountService) Delete(ctx context.Context, id string) error {
	discount, err := s.discountRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get discount: %w", err)
	}
	if discount == nil {
		return notFound("discount", id)
	}
	if err := s.discountRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete discount: %w", err)
	}
	return nil
}

// ApplyCategoryDiscount reprices the category's products with its most
// recent discount. It does nothing when the category has no discount.
func (s *DiscountService) ApplyCategoryDiscount(ctx context.Context, categoryID string) error {
	var repriced int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		discount, err := s.discountRepo.WithTx(tx).LatestForCategory(ctx, categoryID)
		if err != nil {
			return fmt.Errorf("failed to get discount for category: %w", err)
		}
		if discount == nil {
			return nil
		}
		repriced, err = s.applyDiscount(ctx, tx, categoryID, discount.Percentage)
		return err
	})
	if err != nil {
		return err
	}
	metrics.DiscountApplications.WithLabelValues("manual").Add(float64(repriced))
	return nil
}

func (s *DiscountService) applyDiscount(ctx context.Context, tx *gorm.DB, categoryID string, percentage int) (int, error) {
	products := s.productRepo.WithTx(tx)

	list, err := products.GetByCategoryID(ctx, categoryID)
	if err != nil {
		return 0, fmt.Errorf("failed to list products of category %s: %w", categoryID, err)
	}

	pricedAt := s.now()
	for _, p := range list {
		discount, discounted := calc.DiscountedPrice(p.Price, percentage)
		if err := products.UpdatePricing(ctx, p.ID, discount, discounted, pricedAt); err != nil {
			return 0, fmt.Errorf("failed to reprice product %s: %w", p.ID, err)
		}
	}

	logger.FromCtx(ctx).Info("discount applied",
		"category_id", categoryID,
		"percentage", percentage,
		"products", len(list),
	)
	return len(list), nil
}
