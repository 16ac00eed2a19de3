package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AvailableDay: yöneticinin sipariş teslimi için açtığı gün
type AvailableDay struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_tenant_day" json:"-"`
	Date      time.Time `gorm:"not null;uniqueIndex:idx_tenant_day" json:"date"`
	CreatedAt time.Time `json:"createdAt"`
}

func (d *AvailableDay) BeforeCreate(tx *gorm.DB) error {
	assignID(&d.ID)
	return nil
}
