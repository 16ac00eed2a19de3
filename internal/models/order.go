package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Order struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID   uuid.UUID `gorm:"type:uuid;index;not null" json:"tenantId"`
	ClientName string    `gorm:"size:150;not null" json:"clientName"`
	PickupDate time.Time `gorm:"index;not null" json:"pickupDate"`
	CreatedAt  time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`

	Items []OrderItem `gorm:"constraint:OnDelete:CASCADE" json:"items"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	assignID(&o.ID)
	return nil
}

// Total: kalem fiyatı x adet toplamı. Fiyat sipariş anında dondurulmaz, her hesaplamada
// ürünün güncel fiyatı okunur. Ürünü yüklenmemiş kalemler toplama katılmaz.
func (o *Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		if item.Product == nil {
			continue
		}
		total = total.Add(item.Product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

type OrderItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID   uuid.UUID `gorm:"type:uuid;index;not null" json:"orderId"`
	ProductID uuid.UUID `gorm:"type:uuid;index;not null" json:"productId"`
	Product   *Product  `gorm:"constraint:OnDelete:RESTRICT" json:"product,omitempty"`
	Quantity  int       `gorm:"not null" json:"quantity"`
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	assignID(&i.ID)
	return nil
}
