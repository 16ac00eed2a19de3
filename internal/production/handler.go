package production

import (
	"fmt"
	"time"

	"caterer-backend/internal/apperr"
	"caterer-backend/internal/auth"
	"caterer-backend/internal/calendar"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

func parseDate(c *fiber.Ctx, loc *time.Location) (time.Time, error) {
	raw := c.Query("date")
	if raw == "" {
		return time.Time{}, apperr.Validation("date", "requis (AAAA-MM-JJ)")
	}
	day, err := calendar.ParseDay(raw, loc)
	if err != nil {
		return time.Time{}, apperr.Validation("date", "date invalide (AAAA-MM-JJ)")
	}
	return day, nil
}

// GET /api/admin/production?date=YYYY-MM-DD
func SheetHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenantID, err := auth.TenantID(c)
		if err != nil {
			return err
		}
		day, err := parseDate(c, svc.loc)
		if err != nil {
			return err
		}

		sheet, err := svc.Sheet(c.UserContext(), tenantID, day)
		if err != nil {
			log.Error().Err(err).Str("tenant_id", tenantID.String()).Str("date", c.Query("date")).Msg("production sheet failed")
			return err
		}
		return c.JSON(sheet)
	}
}

// GET /api/admin/production/export?date=YYYY-MM-DD
func ExportHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenantID, err := auth.TenantID(c)
		if err != nil {
			return err
		}
		day, err := parseDate(c, svc.loc)
		if err != nil {
			return err
		}

		buf, sheet, err := svc.Export(c.UserContext(), tenantID, day)
		if err != nil {
			log.Error().Err(err).Str("tenant_id", tenantID.String()).Str("date", c.Query("date")).Msg("production export failed")
			return err
		}

		c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="production-%s.xlsx"`, sheet.Date))
		return c.Send(buf.Bytes())
	}
}
