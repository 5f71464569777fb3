package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Rakhulsr/go-storefront/app/models"
	"github.com/Rakhulsr/go-storefront/app/repositories"
	"github.com/Rakhulsr/go-storefront/app/utils/calc"
	"github.com/Rakhulsr/go-storefront/app/utils/logger"
	"github.com/Rakhulsr/go-storefront/app/utils/metrics"
	"github.com/Rakhulsr/go-storefront/app/utils/storage"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProductInput struct {
	CategoryID  string
	Name        string
	Price       decimal.Decimal
	Description string
	Image       string
	Stock       int
}

// ProductPatch holds the fields of a partial update; nil means unchanged.
type ProductPatch struct {
	CategoryID  *string
	Name        *string
	Price       *decimal.Decimal
	Description *string
	Image       *string
	Stock       *int
}

type CatalogService struct {
	db           *gorm.DB
	categoryRepo repositories.CategoryRepositoryImpl
	productRepo  repositories.ProductRepositoryImpl
	discountRepo repositories.DiscountRepositoryImpl
	tagRepo      repositories.TagRepositoryImpl
	images       storage.ImageStore
	now          func() time.Time
}

func NewCatalogService(
	db *gorm.DB,
	categoryRepo repositories.CategoryRepositoryImpl,
	productRepo repositories.ProductRepositoryImpl,
	discountRepo repositories.DiscountRepositoryImpl,
	tagRepo repositories.TagRepositoryImpl,
	images storage.ImageStore,
) *CatalogService {
	return &CatalogService{
		db:           db,
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		discountRepo: discountRepo,
		tagRepo:      tagRepo,
		images:       images,
		now:          time.Now,
	}
}

// Categories

func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories, err := s.categoryRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

func (s *CatalogService) GetCategory(ctx context.Context, id string) (*models.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	if category == nil {
		return nil, notFound("category", id)
	}
	return category, nil
}

func (s *CatalogService) CreateCategory(ctx context.Context, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, NewValidationError("name", "name is required")
	}
	category := &models.Category{Name: name, Slug: slug.Make(name)}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, translate("failed to create category", err)
	}
	return category, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, id, name string) (*models.Category, error) {
	category, err := s.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	if name = strings.TrimSpace(name); name != "" {
		category.Name = name
		category.Slug = slug.Make(name)
	}
	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, translate("failed to update category", err)
	}
	return category, nil
}

// DeleteCategory removes the category with its products and discounts.
func (s *CatalogService) DeleteCategory(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		categories := s.categoryRepo.WithTx(tx)
		category, err := categories.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get category: %w", err)
		}
		if category == nil {
			return notFound("category", id)
		}
		if err := categories.Delete(ctx, id); err != nil {
			return translate("failed to delete category", err)
		}
		return nil
	})
}

// Products

// ListProducts returns one page of products, newest first. A pageSize of 0
// returns every product.
func (s *CatalogService) ListProducts(ctx context.Context, page, pageSize int) ([]models.Product, int64, error) {
	if pageSize <= 0 {
		products, err := s.productRepo.GetProducts(ctx)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to list products: %w", err)
		}
		return products, int64(len(products)), nil
	}
	if page < 1 {
		page = 1
	}
	products, total, err := s.productRepo.GetPaginated(ctx, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	return products, total, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return nil, notFound("product", id)
	}
	return product, nil
}

func (s *CatalogService) ProductsByCategory(ctx context.Context, categoryID string) ([]models.Product, error) {
	products, err := s.productRepo.GetByCategoryID(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list products of category: %w", err)
	}
	return products, nil
}

// CreateProduct stores the product priced with its category's discount, if
// the category has one.
func (s *CatalogService) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	if err := validateProductFields(in.Name, in.Price, in.Stock); err != nil {
		return nil, err
	}

	product := &models.Product{
		CategoryID:  in.CategoryID,
		Name:        strings.TrimSpace(in.Name),
		Price:       in.Price.Round(2),
		Description: in.Description,
		Image:       in.Image,
		Stock:       in.Stock,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.requireCategory(ctx, tx, in.CategoryID); err != nil {
			return err
		}
		if err := s.priceProduct(ctx, tx, product); err != nil {
			return err
		}
		if err := s.productRepo.WithTx(tx).Create(ctx, product); err != nil {
			return translate("failed to create product", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

// UpdateProduct applies patch and reprices the product with its category's
// latest discount. When the category has no discount the cached discount and
// discounted price keep their previous values, even after a price change, and
// may exceed the new price. Attaching a discount to the category refreshes
// them.
func (s *CatalogService) UpdateProduct(ctx context.Context, id string, patch ProductPatch) (*models.Product, error) {
	var product *models.Product

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		products := s.productRepo.WithTx(tx)
		current, err := products.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get product: %w", err)
		}
		if current == nil {
			return notFound("product", id)
		}

		if patch.CategoryID != nil && *patch.CategoryID != current.CategoryID {
			if err := s.requireCategory(ctx, tx, *patch.CategoryID); err != nil {
				return err
			}
			current.CategoryID = *patch.CategoryID
			current.Category = nil
		}
		if patch.Name != nil {
			current.Name = strings.TrimSpace(*patch.Name)
		}
		if patch.Price != nil {
			current.Price = patch.Price.Round(2)
		}
		if patch.Description != nil {
			current.Description = *patch.Description
		}
		if patch.Image != nil {
			current.Image = *patch.Image
		}
		if patch.Stock != nil {
			current.Stock = *patch.Stock
		}
		if err := validateProductFields(current.Name, current.Price, current.Stock); err != nil {
			return err
		}

		if err := s.priceProduct(ctx, tx, current); err != nil {
			return err
		}
		if err := products.Update(ctx, current); err != nil {
			return translate("failed to update product", err)
		}
		product = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

// DeleteProduct removes the product with its order lines and tag links.
func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	var image string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		products := s.productRepo.WithTx(tx)
		product, err := products.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get product: %w", err)
		}
		if product == nil {
			return notFound("product", id)
		}
		image = product.Image
		return products.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.removeImage(ctx, image)
	return nil
}

// SetProductImage stores r through the image store and points the product
// at it. The previous image is removed on success.
func (s *CatalogService) SetProductImage(ctx context.Context, id, filename string, r io.Reader) (*models.Product, error) {
	if s.images == nil {
		return nil, errors.New("image storage is not configured")
	}

	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	url, err := s.images.Save(ctx, filename, r)
	if err != nil {
		return nil, NewValidationError("image", err.Error())
	}

	if err := s.productRepo.UpdateImage(ctx, id, url); err != nil {
		s.removeImage(ctx, url)
		return nil, fmt.Errorf("failed to update product image: %w", err)
	}

	s.removeImage(ctx, product.Image)
	product.Image = url
	return product, nil
}

func (s *CatalogService) removeImage(ctx context.Context, url string) {
	if s.images == nil || url == "" {
		return
	}
	if err := s.images.Delete(ctx, url); err != nil {
		logger.FromCtx(ctx).Warn("removeImage: failed to delete stored image", "url", url, "error", err)
	}
}

func (s *CatalogService) requireCategory(ctx context.Context, tx *gorm.DB, categoryID string) error {
	category, err := s.categoryRepo.WithTx(tx).GetByID(ctx, categoryID)
	if err != nil {
		return fmt.Errorf("failed to get category: %w", err)
	}
	if category == nil {
		return notFound("category", categoryID)
	}
	return nil
}

// priceProduct sets the cached pricing of p from the latest discount of its
// category. Without a discount the cached values are left as they are.
func (s *CatalogService) priceProduct(ctx context.Context, tx *gorm.DB, p *models.Product) error {
	discount, err := s.discountRepo.WithTx(tx).LatestForCategory(ctx, p.CategoryID)
	if err != nil {
		return fmt.Errorf("failed to get discount for category: %w", err)
	}
	if discount == nil {
		return nil
	}

	p.Discount, p.DiscountedPrice = calc.DiscountedPrice(p.Price, discount.Percentage)
	pricedAt := s.now()
	p.PricedAt = &pricedAt
	metrics.DiscountApplications.WithLabelValues("product").Inc()
	return nil
}

func validateProductFields(name string, price decimal.Decimal, stock int) error {
	fields := map[string]string{}
	if strings.TrimSpace(name) == "" {
		fields["name"] = "name is required"
	}
	if price.IsNegative() {
		fields["price"] = "price must not be negative"
	}
	if stock < 0 {
		fields["stock"] = "stock must not be negative"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// Tags

func (s *CatalogService) ListTags(ctx context.Context) ([]models.Tag, error) {
	tags, err := s.tagRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	return tags, nil
}

func (s *CatalogService) GetTag(ctx context.Context, id string) (*models.Tag, error) {
	tag, err := s.tagRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get tag: %w", err)
	}
	if tag == nil {
		return nil, notFound("tag", id)
	}
	return tag, nil
}

func (s *CatalogService) CreateTag(ctx context.Context, title, description string) (*models.Tag, error) {
	title = strings.TrimSpace(title)
	if err := s.checkTagTitle(ctx, "", title); err != nil {
		return nil, err
	}

	tag := &models.Tag{Title: title, Description: description}
	if err := s.tagRepo.Create(ctx, tag); err != nil {
		return nil, tagWriteError("failed to create tag", err)
	}
	return tag, nil
}

func (s *CatalogService) UpdateTag(ctx context.Context, id string, title, description *string) (*models.Tag, error) {
	tag, err := s.GetTag(ctx, id)
	if err != nil {
		return nil, err
	}
	if title != nil {
		t := strings.TrimSpace(*title)
		if err := s.checkTagTitle(ctx, id, t); err != nil {
			return nil, err
		}
		tag.Title = t
	}
	if description != nil {
		tag.Description = *description
	}
	if err := s.tagRepo.Update(ctx, tag); err != nil {
		return nil, tagWriteError("failed to update tag", err)
	}
	return tag, nil
}

func (s *CatalogService) DeleteTag(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tags := s.tagRepo.WithTx(tx)
		tag, err := tags.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get tag: %w", err)
		}
		if tag == nil {
			return notFound("tag", id)
		}
		return tags.Delete(ctx, id)
	})
}

func (s *CatalogService) checkTagTitle(ctx context.Context, selfID, title string) error {
	if title == "" {
		return NewValidationError("title", "title is required")
	}
	existing, err := s.tagRepo.GetByTitle(ctx, title)
	if err != nil {
		return fmt.Errorf("failed to check tag title: %w", err)
	}
	if existing != nil && existing.ID != selfID {
		return NewValidationError("title", "tag with this title already exists")
	}
	return nil
}

// tagWriteError reports a lost race on the unique title as a validation
// error, like the pre-check does.
func tagWriteError(op string, err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return NewValidationError("title", "tag with this title already exists")
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (s *CatalogService) ListTagConnectors(ctx context.Context) ([]models.ProductTagConnector, error) {
	connectors, err := s.tagRepo.GetConnectors(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tag links: %w", err)
	}
	return connectors, nil
}

// TagProduct links a tag to a product. Linking the same pair twice is a
// conflict.
func (s *CatalogService) TagProduct(ctx context.Context, tagID, productID string) (*models.ProductTagConnector, error) {
	tag, err := s.GetTag(ctx, tagID)
	if err != nil {
		return nil, err
	}
	product, err := s.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	connector := &models.ProductTagConnector{TagID: tag.ID, ProductID: product.ID}
	if err := s.tagRepo.Connect(ctx, connector); err != nil {
		return nil, translate("failed to tag product", err)
	}
	connector.Tag = tag
	connector.Product = product
	return connector, nil
}

// TagsForProducts groups tags by product id.
func (s *CatalogService) TagsForProducts(ctx context.Context, products []models.Product) (map[string][]models.Tag, error) {
	ids := make([]string, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}
	tags, err := s.tagRepo.GetTagsByProductIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load product tags: %w", err)
	}
	return tags, nil
}
