package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID        string `gorm:"size:36;not null;uniqueIndex;primary_key" json:"id"`
	Email     string `gorm:"size:255;not null;uniqueIndex"`
	Name      string `gorm:"size:255"`
	Password  string `gorm:"size:255;not null"`
	IsActive  bool   `gorm:"default:true"`
	IsStaff   bool   `gorm:"default:false"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return
}
