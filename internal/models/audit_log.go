package models

import (
	"time"

	"github.com/google/uuid"
)

type AuditAction string

const (
	AuditActionCreate AuditAction = "create"
	AuditActionUpdate AuditAction = "update"
	AuditActionDelete AuditAction = "delete"
	AuditActionImport AuditAction = "import"
)

type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`

	TenantID uuid.UUID `gorm:"type:uuid;index;not null" json:"tenantId"`

	UserID   uuid.UUID `gorm:"type:uuid" json:"userId"`
	UserName string    `gorm:"size:100" json:"userName"` // denormalize

	// "category", "sub_category", "product", "order", "menu"
	EntityType string    `gorm:"size:50;index" json:"entityType"`
	EntityID   uuid.UUID `gorm:"type:uuid;index" json:"entityId"`

	Action      AuditAction `gorm:"size:20" json:"action"`
	Description string      `gorm:"size:255" json:"description"`

	// Önceki ve sonraki hal (JSON)
	BeforeData string `gorm:"type:text" json:"beforeData"`
	AfterData  string `gorm:"type:text" json:"afterData"`
}
