package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/Rakhulsr/go-storefront/app/models"
	"gorm.io/gorm"
)

type DiscountRepositoryImpl interface {
	WithTx(tx *gorm.DB) DiscountRepositoryImpl
	Create(ctx context.Context, discount *models.Discount) error
	GetByID(ctx context.Context, id string) (*models.Discount, error)
	GetAll(ctx context.Context) ([]models.Discount, error)
	LatestForCategory(ctx context.Context, categoryID string) (*models.Discount, error)
	Update(ctx context.Context, discount *models.Discount) error
	Delete(ctx context.Context, id string) error
}

type discountRepository struct {
	db *gorm.DB
}

func NewDiscountRepository(db *gorm.DB) DiscountRepositoryImpl {
	return &discountRepository{db: db}
}

func (r *discountRepository) WithTx(tx *gorm.DB) DiscountRepositoryImpl {
	return &discountRepository{db: tx}
}

func (r *discountRepository) Create(ctx context.Context, discount *models.Discount) error {
	return r.db.WithContext(ctx).Omit("Category").Create(discount).Error
}

func (r *discountRepository) GetByID(ctx context.Context, id string) (*models.Discount, error) {
	var discount models.Discount
	err := r.db.WithContext(ctx).First(&discount, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &discount, nil
}

func (r *discountRepository) GetAll(ctx context.Context) ([]models.Discount, error) {
	var discounts []models.Discount
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&discounts).Error; err != nil {
		return nil, err
	}
	return discounts, nil
}

// LatestForCategory returns the most recently written discount of the
// category, or nil when it has none.
func (r *discountRepository) LatestForCategory(ctx context.Context, categoryID string) (*models.Discount, error) {
	var discount models.Discount
	err := r.db.WithContext(ctx).
		Where("category_id = ?", categoryID).
		Order("updated_at DESC").
		First(&discount).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &discount, nil
}

func (r *discountRepository) Update(ctx context.Context, discount *models.Discount) error {
	discount.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Model(&models.Discount{ID: discount.ID}).
		Select("category_id", "name", "percentage", "updated_at").
		Updates(discount).Error
}

func (r *discountRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&models.Discount{}, "id = ?", id).Error
}
