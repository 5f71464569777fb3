package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Rakhulsr/go-storefront/app/models"
	"gorm.io/gorm"
)

type CategoryRepositoryImpl interface {
	WithTx(tx *gorm.DB) CategoryRepositoryImpl
	Create(ctx context.Context, category *models.Category) error
	GetByID(ctx context.Context, id string) (*models.Category, error)
	GetAll(ctx context.Context) ([]models.Category, error)
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id string) error
}

type categoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) CategoryRepositoryImpl {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) WithTx(tx *gorm.DB) CategoryRepositoryImpl {
	return &categoryRepository{db: tx}
}

func (r *categoryRepository) Create(ctx context.Context, category *models.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

func (r *categoryRepository) GetByID(ctx context.Context, id string) (*models.Category, error) {
	var category models.Category
	err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &category, nil
}

// GetAll lists categories newest first.
func (r *categoryRepository) GetAll(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *categoryRepository) Update(ctx context.Context, category *models.Category) error {
	return r.db.WithContext(ctx).Model(category).
		Select("name", "slug", "updated_at").
		Updates(category).Error
}

// Delete removes the category together with its products, their order lines
// and tag links, and the category's discounts. Call it inside a transaction.
func (r *categoryRepository) Delete(ctx context.Context, id string) error {
	db := r.db.WithContext(ctx)
	productIDs := func() *gorm.DB {
		return r.db.Model(&models.Product{}).Select("id").Where("category_id = ?", id)
	}

	if err := db.Where("product_id IN (?)", productIDs()).Delete(&models.OrderItem{}).Error; err != nil {
		return fmt.Errorf("failed to delete order items of category %s: %w", id, err)
	}
	if err := db.Where("product_id IN (?)", productIDs()).Delete(&models.ProductTagConnector{}).Error; err != nil {
		return fmt.Errorf("failed to delete tag links of category %s: %w", id, err)
	}
	if err := db.Where("category_id = ?", id).Delete(&models.Product{}).Error; err != nil {
		return fmt.Errorf("failed to delete products of category %s: %w", id, err)
	}
	if err := db.Where("category_id = ?", id).Delete(&models.Discount{}).Error; err != nil {
		return fmt.Errorf("failed to delete discounts of category %s: %w", id, err)
	}
	return db.Delete(&models.Category{}, "id = ?", id).Error
}
