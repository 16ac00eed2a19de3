package pickupdays

import (
	"time"

	"caterer-backend/internal/apperr"
	"caterer-backend/internal/auth"
	"caterer-backend/internal/calendar"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type dayResponse struct {
	ID   uuid.UUID `json:"id"`
	Date string    `json:"date"`
}

// GET /api/pickup-days?from=YYYY-MM-DD
func ListHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenantID, err := auth.TenantID(c)
		if err != nil {
			return err
		}

		from := time.Now()
		if raw := c.Query("from"); raw != "" {
			from, err = calendar.ParseDay(raw, svc.loc)
			if err != nil {
				return apperr.Validation("from", "date invalide (AAAA-MM-JJ)")
			}
		}

		days, err := svc.List(c.UserContext(), tenantID, from)
		if err != nil {
			return err
		}
		res := make([]dayResponse, 0, len(days))
		for _, d := range days {
			res = append(res, dayResponse{ID: d.ID, Date: calendar.Format(d.Date, svc.loc)})
		}
		return c.JSON(res)
	}
}

// POST /api/admin/pickup-days  {date}
func AddHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenantID, err := auth.TenantID(c)
		if err != nil {
			return err
		}

		var body struct {
			Date string `json:"date"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Corps de requête invalide")
		}
		day, err := calendar.ParseDay(body.Date, svc.loc)
		if err != nil {
			return apperr.Validation("date", "date invalide (AAAA-MM-JJ)")
		}

		d, err := svc.Add(c.UserContext(), tenantID, day)
		if err != nil {
			log.Error().Err(err).Str("date", body.Date).Msg("pickup day add failed")
			return err
		}
		return c.JSON(dayResponse{ID: d.ID, Date: calendar.Format(d.Date, svc.loc)})
	}
}

// DELETE /api/admin/pickup-days/:id
func RemoveHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenantID, err := auth.TenantID(c)
		if err != nil {
			return err
		}
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return apperr.NotFound("pickup_day", c.Params("id"))
		}
		if err := svc.Remove(c.UserContext(), tenantID, id); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"success": true})
	}
}
