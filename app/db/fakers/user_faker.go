package fakers

import (
	"github.com/Rakhulsr/go-storefront/app/models"
	"github.com/go-faker/faker/v4"
	"github.com/google/uuid"
)

// UserFaker builds an active customer account. passwordHash must already be
// a bcrypt hash.
func UserFaker(passwordHash string) (*models.User, *models.Customer) {
	name := faker.FirstName() + " " + faker.LastName()
	user := &models.User{
		ID:       uuid.New().String(),
		Email:    uuid.NewString()[:8] + "." + faker.Email(),
		Name:     name,
		Password: passwordHash,
		IsActive: true,
	}
	customer := &models.Customer{
		ID:          uuid.New().String(),
		UserID:      user.ID,
		Name:        name,
		PhoneNumber: faker.Phonenumber(),
	}
	return user, customer
}
