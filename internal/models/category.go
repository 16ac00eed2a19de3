package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Category: isim, aynı tenant içindeki canlı kategoriler arasında tekildir (servis katmanında kontrol edilir)
type Category struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID  uuid.UUID      `gorm:"type:uuid;index;not null" json:"tenantId"`
	Name      string         `gorm:"size:150;not null;index" json:"name"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	SubCategories []SubCategory `json:"subCategories,omitempty"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	assignID(&c.ID)
	return nil
}

type SubCategory struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CategoryID uuid.UUID      `gorm:"type:uuid;index;not null" json:"categoryId"`
	Category   *Category      `json:"-"`
	Name       string         `gorm:"size:150;not null" json:"name"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

func (s *SubCategory) BeforeCreate(tx *gorm.DB) error {
	assignID(&s.ID)
	return nil
}
