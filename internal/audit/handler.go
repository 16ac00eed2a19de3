package audit

import (
	"caterer-backend/internal/auth"
	"caterer-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuditLogResponse struct {
	ID          uint               `json:"id"`
	CreatedAt   string             `json:"createdAt"`
	UserID      uuid.UUID          `json:"userId"`
	UserName    string             `json:"userName"`
	EntityType  string             `json:"entityType"`
	EntityID    uuid.UUID          `json:"entityId"`
	Action      models.AuditAction `json:"action"`
	Description string             `json:"description"`
	BeforeData  string             `json:"beforeData"`
	AfterData   string             `json:"afterData"`
}

// GET /api/admin/audit-logs?entity_type=order&entity_id=...&limit=100
func ListAuditLogsHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenantID, err := auth.TenantID(c)
		if err != nil {
			return err
		}

		dbq := db.WithContext(c.UserContext()).Model(&models.AuditLog{}).Where("tenant_id = ?", tenantID)

		if entityType := c.Query("entity_type"); entityType != "" {
			dbq = dbq.Where("entity_type = ?", entityType)
		}
		if entityIDStr := c.Query("entity_id"); entityIDStr != "" {
			eid, err := uuid.Parse(entityIDStr)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "entity_id invalide")
			}
			dbq = dbq.Where("entity_id = ?", eid)
		}

		limit := c.QueryInt("limit", 200)
		if limit <= 0 || limit > 1000 {
			limit = 200
		}

		var logs []models.AuditLog
		if err := dbq.Order("created_at DESC").Order("id DESC").Limit(limit).Find(&logs).Error; err != nil {
			return err
		}

		resp := make([]AuditLogResponse, 0, len(logs))
		for _, l := range logs {
			resp = append(resp, AuditLogResponse{
				ID:          l.ID,
				CreatedAt:   l.CreatedAt.Format("2006-01-02 15:04:05"),
				UserID:      l.UserID,
				UserName:    l.UserName,
				EntityType:  l.EntityType,
				EntityID:    l.EntityID,
				Action:      l.Action,
				Description: l.Description,
				BeforeData:  l.BeforeData,
				AfterData:   l.AfterData,
			})
		}

		return c.JSON(resp)
	}
}
