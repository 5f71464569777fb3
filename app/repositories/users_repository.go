package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/Rakhulsr/go-storefront/app/models"
	"gorm.io/gorm"
)

type UserRepositoryImpl interface {
	WithTx(tx *gorm.DB) UserRepositoryImpl
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepositoryImpl {
	return &userRepository{db}
}

func (r *userRepository) WithTx(tx *gorm.DB) UserRepositoryImpl {
	return &userRepository{tx}
}

// Create stores user as given; the password must already be hashed.
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Model(&models.User{ID: user.ID}).
		Select("email", "name", "password", "is_active", "is_staff", "updated_at").
		Updates(user).Error
}
