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

type ProductRepositoryImpl interface {
	WithTx(tx *gorm.DB) ProductRepositoryImpl
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id string) (*models.Product, error)
	GetProducts(ctx context.Context) ([]models.Product, error)
	GetPaginated(ctx context.Context, limit, offset int) ([]models.Product, int64, error)
	GetByCategoryID(ctx context.Context, categoryID string) ([]models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	UpdatePricing(ctx context.Context, id string, discount, discountedPrice decimal.Decimal, pricedAt time.Time) error
	UpdateImage(ctx context.Context, id, image string) error
	Delete(ctx context.Context, id string) error
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepositoryImpl {
	return &productRepository{db}
}

func (p *productRepository) WithTx(tx *gorm.DB) ProductRepositoryImpl {
	return &productRepository{tx}
}

func (p *productRepository) Create(ctx context.Context, product *models.Product) error {
	return p.db.WithContext(ctx).Omit("Category").Create(product).Error
}

func (p *productRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	err := p.db.WithContext(ctx).
		Preload("Category").
		Where("id = ?", id).
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

// GetProducts lists every product newest first.
func (p *productRepository) GetProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := p.db.WithContext(ctx).Order("created_at DESC").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (p *productRepository) GetPaginated(ctx context.Context, limit, offset int) ([]models.Product, int64, error) {
	var products []models.Product
	var total int64

	if err := p.db.WithContext(ctx).Model(&models.Product{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := p.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&products).Error
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (p *productRepository) GetByCategoryID(ctx context.Context, categoryID string) ([]models.Product, error) {
	var products []models.Product
	err := p.db.WithContext(ctx).
		Where("category_id = ?", categoryID).
		Order("created_at DESC").
		Find(&products).Error
	return products, err
}

// Update writes the editable columns and the cached pricing of product.
func (p *productRepository) Update(ctx context.Context, product *models.Product) error {
	product.UpdatedAt = time.Now()
	return p.db.WithContext(ctx).Model(&models.Product{ID: product.ID}).
		Select("category_id", "name", "price", "description", "image", "stock",
			"discount", "discounted_price", "priced_at", "updated_at").
		Updates(product).Error
}

func (p *productRepository) UpdatePricing(ctx context.Context, id string, discount, discountedPrice decimal.Decimal, pricedAt time.Time) error {
	return p.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Updates(map[string]interface{}{
		"discount":         discount,
		"discounted_price": discountedPrice,
		"priced_at":        pricedAt,
		"updated_at":       time.Now(),
	}).Error
}

func (p *productRepository) UpdateImage(ctx context.Context, id, image string) error {
	return p.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Updates(map[string]interface{}{
		"image":      image,
		"updated_at": time.Now(),
	}).Error
}

// Delete removes the product with its order lines and tag links. Call it
// inside a transaction.
func (p *productRepository) Delete(ctx context.Context, id string) error {
	db := p.db.WithContext(ctx)
	if err := db.Where("product_id = ?", id).Delete(&models.OrderItem{}).Error; err != nil {
		return fmt.Errorf("failed to delete order items of product %s: %w", id, err)
	}
	if err := db.Where("product_id = ?", id).Delete(&models.ProductTagConnector{}).Error; err != nil {
		return fmt.Errorf("failed to delete tag links of product %s: %w", id, err)
	}
	return db.Delete(&models.Product{}, "id = ?", id).Error
}
