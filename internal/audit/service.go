package audit

import (
	"encoding/json"
	"fmt"

	"caterer-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LogOptions struct {
	TenantID    uuid.UUID
	UserID      uuid.UUID
	UserName    string
	EntityType  string
	EntityID    uuid.UUID
	Action      models.AuditAction
	Description string
	Before      any
	After       any
}

// WriteLog: kaydı verilen db/tx üzerinde yazar; çağıran transaction içindeyse
// log da aynı transaction ile commit/rollback olur
func WriteLog(db *gorm.DB, opts LogOptions) error {
	beforeStr := "null"
	afterStr := "null"

	if opts.Before != nil {
		if b, err := json.Marshal(opts.Before); err == nil {
			beforeStr = string(b)
		}
	}
	if opts.After != nil {
		if b, err := json.Marshal(opts.After); err == nil {
			afterStr = string(b)
		}
	}

	entry := models.AuditLog{
		TenantID:    opts.TenantID,
		UserID:      opts.UserID,
		UserName:    opts.UserName,
		EntityType:  opts.EntityType,
		EntityID:    opts.EntityID,
		Action:      opts.Action,
		Description: truncate(opts.Description, 255),
		BeforeData:  beforeStr,
		AfterData:   afterStr,
	}

	if err := db.Create(&entry).Error; err != nil {
		return fmt.Errorf("audit log kaydedilemedi: %w", err)
	}
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
