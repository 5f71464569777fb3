package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Tag struct {
	ID          string `gorm:"size:36;not null;uniqueIndex;primary_key"`
	Title       string `gorm:"size:255;not null;uniqueIndex"`
	Description string `gorm:"type:text"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (t *Tag) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	return
}

// ProductTagConnector links a Tag to a Product. A pair is stored once.
type ProductTagConnector struct {
	ID        string   `gorm:"size:36;not null;uniqueIndex;primary_key"`
	TagID     string   `gorm:"size:36;not null;uniqueIndex:idx_tag_product"`
	Tag       *Tag     `gorm:"foreignKey:TagID;constraint:OnDelete:CASCADE"`
	ProductID string   `gorm:"size:36;not null;uniqueIndex:idx_tag_product;index"`
	Product   *Product `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
}

func (c *ProductTagConnector) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return
}
