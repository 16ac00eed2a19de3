package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product: silinen ürünler soft delete ile saklanır, böylece eski sipariş kalemleri
// geçerli bir referans tutmaya devam eder
type Product struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID      uuid.UUID       `gorm:"type:uuid;index;not null" json:"tenantId"`
	Designation   string          `gorm:"size:255;not null;index" json:"designation"`
	Price         decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	CategoryID    uuid.UUID       `gorm:"type:uuid;index;not null" json:"categoryId"`
	Category      *Category       `json:"-"`
	SubCategoryID *uuid.UUID      `gorm:"type:uuid;index" json:"subCategoryId"`
	SubCategory   *SubCategory    `json:"-"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
	DeletedAt     gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	assignID(&p.ID)
	return nil
}
