package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/Rakhulsr/go-storefront/app/models"
	"gorm.io/gorm"
)

type CustomerRepositoryImpl interface {
	WithTx(tx *gorm.DB) CustomerRepositoryImpl
	Create(ctx context.Context, customer *models.Customer) error
	FindByUserID(ctx context.Context, userID string) (*models.Customer, error)
	Update(ctx context.Context, customer *models.Customer) error
}

type customerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) CustomerRepositoryImpl {
	return &customerRepository{db: db}
}

func (r *customerRepository) WithTx(tx *gorm.DB) CustomerRepositoryImpl {
	return &customerRepository{db: tx}
}

func (r *customerRepository) Create(ctx context.Context, customer *models.Customer) error {
	return r.db.WithContext(ctx).Omit("User").Create(customer).Error
}

func (r *customerRepository) FindByUserID(ctx context.Context, userID string) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.WithContext(ctx).Preload("User").First(&customer, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepository) Update(ctx context.Context, customer *models.Customer) error {
	customer.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Model(&models.Customer{ID: customer.ID}).
		Select("name", "phone_number", "updated_at").
		Updates(customer).Error
}
