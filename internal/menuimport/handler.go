package menuimport

import (
	"io"
	"path/filepath"
	"strings"

	"caterer-backend/internal/apperr"
	"caterer-backend/internal/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// POST /api/admin/menu-import  (multipart, alan: file)
func ImportHandler(im *Importer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.CurrentActor(c)
		if err != nil {
			return err
		}

		fileHeader, err := c.FormFile("file")
		if err != nil {
			return apperr.Validation("file", "aucun fichier reçu")
		}
		if !strings.EqualFold(filepath.Ext(fileHeader.Filename), ".pdf") {
			return apperr.Validation("file", "seuls les fichiers PDF sont acceptés")
		}

		file, err := fileHeader.Open()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Impossible d'ouvrir le fichier")
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Impossible de lire le fichier")
		}

		log.Info().
			Str("tenant_id", actor.TenantID.String()).
			Str("file", fileHeader.Filename).
			Int("size", len(data)).
			Msg("menu import started")

		res, err := im.Import(c.UserContext(), actor, data)
		if err != nil {
			log.Warn().Err(err).Str("tenant_id", actor.TenantID.String()).Str("file", fileHeader.Filename).Msg("menu import failed")
			return err
		}

		log.Info().
			Str("tenant_id", actor.TenantID.String()).
			Int("categories", res.Created.Categories).
			Int("sub_categories", res.Created.SubCategories).
			Int("products", res.Created.Products).
			Int("skipped", res.Created.Skipped).
			Msg("menu import finished")

		return c.JSON(fiber.Map{
			"success": true,
			"menu":    res.Menu,
			"created": res.Created,
		})
	}
}
