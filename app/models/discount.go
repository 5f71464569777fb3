package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Discount is a percentage reduction attached to a Category. Percentage is
// expected in 0..100.
type Discount struct {
	ID         string    `gorm:"size:36;not null;uniqueIndex;primary_key"`
	CategoryID string    `gorm:"size:36;not null;index"`
	Category   *Category `gorm:"foreignKey:CategoryID"`
	Name       string    `gorm:"size:255;not null"`
	Percentage int       `gorm:"not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (d *Discount) BeforeCreate(tx *gorm.DB) (err error) {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	return
}
