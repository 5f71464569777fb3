package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Customer is the shopper profile attached one-to-one to a User.
type Customer struct {
	ID          string `gorm:"size:36;not null;uniqueIndex;primary_key"`
	UserID      string `gorm:"size:36;not null;uniqueIndex"`
	User        *User  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Name        string `gorm:"size:100"`
	PhoneNumber string `gorm:"size:100"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (c *Customer) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return
}
