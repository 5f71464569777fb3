package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Rakhulsr/go-storefront/app/helpers"
	"github.com/Rakhulsr/go-storefront/app/models"
	"github.com/Rakhulsr/go-storefront/app/repositories"
	"gorm.io/gorm"
)

const MinPasswordLength = 5

var ErrInvalidCredentials = errors.New("unable to authenticate with provided credentials")

type RegisterInput struct {
	Email    string
	Password string
	Name     string
	IsStaff  bool
}

// UserPatch is a self-service edit of the account; nil means unchanged.
type UserPatch struct {
	Email    *string
	Password *string
	Name     *string
}

type ProfilePatch struct {
	Name        *string
	PhoneNumber *string
}

type UserService struct {
	db           *gorm.DB
	userRepo     repositories.UserRepositoryImpl
	customerRepo repositories.CustomerRepositoryImpl
}

func NewUserService(db *gorm.DB, userRepo repositories.UserRepositoryImpl, customerRepo repositories.CustomerRepositoryImpl) *UserService {
	return &UserService{db: db, userRepo: userRepo, customerRepo: customerRepo}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates the user and its customer profile together.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	email := NormalizeEmail(in.Email)
	if err := validatePassword(in.Password); err != nil {
		return nil, err
	}

	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if existing != nil {
		return nil, NewValidationError("email", "user with this email already exists")
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:    email,
		Name:     strings.TrimSpace(in.Name),
		Password: hash,
		IsActive: true,
		IsStaff:  in.IsStaff,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.userRepo.WithTx(tx).Create(ctx, user); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return NewValidationError("email", "user with this email already exists")
			}
			return fmt.Errorf("failed to create user: %w", err)
		}
		customer := &models.Customer{UserID: user.ID, Name: user.Name}
		if err := s.customerRepo.WithTx(tx).Create(ctx, customer); err != nil {
			return translate("failed to create customer", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate checks credentials of an active user.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil || !user.IsActive || !helpers.PasswordCompare(user.Password, []byte(password)) {
		return nil, &ValidationError{Fields: map[string]string{"non_field_errors": ErrInvalidCredentials.Error()}}
	}
	return user, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, notFound("user", id)
	}
	return user, nil
}

// Update edits the account. A new password is hashed before storing.
func (s *UserService) Update(ctx context.Context, id string, patch UserPatch) (*models.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Email != nil {
		email := NormalizeEmail(*patch.Email)
		if email != user.Email {
			other, err := s.userRepo.FindByEmail(ctx, email)
			if err != nil {
				return nil, fmt.Errorf("failed to check email: %w", err)
			}
			if other != nil {
				return nil, NewValidationError("email", "user with this email already exists")
			}
			user.Email = email
		}
	}
	if patch.Name != nil {
		user.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Password != nil && *patch.Password != "" {
		if err := validatePassword(*patch.Password); err != nil {
			return nil, err
		}
		hash, err := helpers.HashPassword(*patch.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.Password = hash
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, NewValidationError("email", "user with this email already exists")
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

func (s *UserService) Profile(ctx context.Context, userID string) (*models.Customer, error) {
	customer, err := s.customerRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	if customer == nil {
		return nil, notFound("customer for user", userID)
	}
	return customer, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID string, patch ProfilePatch) (*models.Customer, error) {
	customer, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if patch.Name != nil {
		customer.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.PhoneNumber != nil {
		customer.PhoneNumber = strings.TrimSpace(*patch.PhoneNumber)
	}
	if err := s.customerRepo.Update(ctx, customer); err != nil {
		return nil, fmt.Errorf("failed to update customer: %w", err)
	}
	return customer, nil
}

func validatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return NewValidationError("password", fmt.Sprintf("ensure this field has at least %d characters", MinPasswordLength))
	}
	return nil
}
