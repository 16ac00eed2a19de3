package apperr

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// ErrorHandler is the fiber.Config ErrorHandler of the API.
func ErrorHandler(c *fiber.Ctx, err error) error {
	if fe := ToFiber(err); fe != nil {
		return c.Status(fe.Code).JSON(fiber.Map{
			"error": fe.Message,
		})
	}

	log.Error().
		Err(err).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Interface("tenant_id", c.Locals("tenant_id")).
		Msg("Beklenmeyen hata")

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Erreur interne du serveur",
	})
}
