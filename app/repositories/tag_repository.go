package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/Rakhulsr/go-storefront/app/models"
	"gorm.io/gorm"
)

type TagRepositoryImpl interface {
	WithTx(tx *gorm.DB) TagRepositoryImpl
	Create(ctx context.Context, tag *models.Tag) error
	GetByID(ctx context.Context, id string) (*models.Tag, error)
	GetByTitle(ctx context.Context, title string) (*models.Tag, error)
	GetAll(ctx context.Context) ([]models.Tag, error)
	Update(ctx context.Context, tag *models.Tag) error
	Delete(ctx context.Context, id string) error

	Connect(ctx context.Context, connector *models.ProductTagConnector) error
	GetConnectors(ctx context.Context) ([]models.ProductTagConnector, error)
	GetTagsByProductIDs(ctx context.Context, productIDs []string) (map[string][]models.Tag, error)
}

type tagRepository struct {
	db *gorm.DB
}

func NewTagRepository(db *gorm.DB) TagRepositoryImpl {
	return &tagRepository{db: db}
}

func (r *tagRepository) WithTx(tx *gorm.DB) TagRepositoryImpl {
	return &tagRepository{db: tx}
}

func (r *tagRepository) Create(ctx context.Context, tag *models.Tag) error {
	return r.db.WithContext(ctx).Create(tag).Error
}

func (r *tagRepository) GetByID(ctx context.Context, id string) (*models.Tag, error) {
	var tag models.Tag
	err := r.db.WithContext(ctx).First(&tag, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tag, nil
}

func (r *tagRepository) GetByTitle(ctx context.Context, title string) (*models.Tag, error) {
	var tag models.Tag
	err := r.db.WithContext(ctx).First(&tag, "title = ?", title).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tag, nil
}

func (r *tagRepository) GetAll(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	if err := r.db.WithContext(ctx).Order("title ASC").Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

func (r *tagRepository) Update(ctx context.Context, tag *models.Tag) error {
	tag.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Model(&models.Tag{ID: tag.ID}).
		Select("title", "description", "updated_at").
		Updates(tag).Error
}

// Delete removes the tag and its product links. Call it inside a transaction.
func (r *tagRepository) Delete(ctx context.Context, id string) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("tag_id = ?", id).Delete(&models.ProductTagConnector{}).Error; err != nil {
		return err
	}
	return db.Delete(&models.Tag{}, "id = ?", id).Error
}

func (r *tagRepository) Connect(ctx context.Context, connector *models.ProductTagConnector) error {
	return r.db.WithContext(ctx).Omit("Tag", "Product").Create(connector).Error
}

func (r *tagRepository) GetConnectors(ctx context.Context) ([]models.ProductTagConnector, error) {
	var connectors []models.ProductTagConnector
	err := r.db.WithContext(ctx).
		Preload("Tag").
		Preload("Product").
		Order("created_at DESC").
		Find(&connectors).Error
	if err != nil {
		return nil, err
	}
	return connectors, nil
}

// GetTagsByProductIDs groups the tags linked to each of productIDs.
func (r *tagRepository) GetTagsByProductIDs(ctx context.Context, productIDs []string) (map[string][]models.Tag, error) {
	out := make(map[string][]models.Tag, len(productIDs))
	if len(productIDs) == 0 {
		return out, nil
	}

	var connectors []models.ProductTagConnector
	err := r.db.WithContext(ctx).
		Preload("Tag").
		Where("product_id IN ?", productIDs).
		Find(&connectors).Error
	if err != nil {
		return nil, err
	}

	for _, c := range connectors {
		if c.Tag != nil {
			out[c.ProductID] = append(out[c.ProductID], *c.Tag)
		}
	}
	return out, nil
}
