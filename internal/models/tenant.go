package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tenant: bir organizasyonun (restoran / traiteur) katalog ve siparişlerinin izolasyon sınırı
type Tenant struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"size:150;not null" json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Users []User `json:"-"`
}

func (t *Tenant) BeforeCreate(tx *gorm.DB) error {
	assignID(&t.ID)
	return nil
}

// assignID: boş UUID'lere yeni değer verir, dışarıdan verilen ID'lere dokunmaz
func assignID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
