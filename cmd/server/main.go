package main

import (
	"strings"

	"caterer-backend/internal/apperr"
	"caterer-backend/internal/audit"
	"caterer-backend/internal/auth"
	"caterer-backend/internal/catalog"
	"caterer-backend/internal/config"
	"caterer-backend/internal/database"
	"caterer-backend/internal/logging"
	"caterer-backend/internal/menuimport"
	"caterer-backend/internal/models"
	"caterer-backend/internal/orders"
	"caterer-backend/internal/pickupdays"
	"caterer-backend/internal/production"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg := config.Load()
	logging.Init(cfg.LogLevel, cfg.Env)
	database.Init(cfg)

	app := fiber.New(fiber.Config{
		ErrorHandler: apperr.ErrorHandler,
		// Menü PDF'leri için
		BodyLimit: 20 * 1024 * 1024,
	})

	app.Use(recover.New())
	app.Use(logging.RequestLogger())

	// CORS origins'i virgülle ayrılmış string'den array'e çevir
	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	db := database.DB
	catalogSvc := catalog.NewService(db)
	orderSvc := orders.NewService(db, orders.Options{
		Location:         cfg.Location,
		RequirePickupDay: cfg.RequirePickupDay,
	})
	productionSvc := production.NewService(db, cfg.Location, cfg.CollationLang)
	pickupSvc := pickupdays.NewService(db, cfg.Location)
	importer := menuimport.NewImporter(
		db,
		menuimport.NewOCRSpaceClient(cfg.OCRAPIURL, cfg.OCRAPIKey, cfg.OCRLanguage),
		menuimport.NewPerplexityClient(cfg.LLMAPIURL, cfg.LLMAPIKey, cfg.LLMModel),
		cfg.MenuImportMaxWords,
	)

	api := app.Group("/api")

	// Public
	api.Post("/auth/login", auth.LoginHandler(db, cfg.JWTSecret))
	api.Post("/public/organizations", auth.RegisterOrganizationHandler(db))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg.JWTSecret))

	protected.Get("/auth/me", auth.MeHandler(db))
	protected.Post("/auth/password", auth.ChangePasswordHandler(db, cfg.JWTSecret))

	// Üretilen şifre değiştirilmeden aşağıdaki route'lar kapalı
	protected.Use(auth.RequirePasswordChanged())

	// Katalog: okuma herkese açık, yazma sadece admin
	requireAdmin := auth.RequireRole(models.RoleAdmin)
	protected.Get("/catalog", catalog.GetCatalogHandler(catalogSvc))
	protected.Post("/catalog", requireAdmin, catalog.CreateEntityHandler(catalogSvc))
	protected.Put("/catalog", requireAdmin, catalog.UpdateEntityHandler(catalogSvc))
	protected.Delete("/catalog", requireAdmin, catalog.DeleteEntityHandler(catalogSvc))

	// Siparişler
	protected.Get("/orders", orders.ListOrdersHandler(orderSvc))
	protected.Post("/orders", orders.CreateOrderHandler(orderSvc))
	protected.Get("/orders/:id", orders.GetOrderHandler(orderSvc))
	protected.Put("/orders/:id", orders.UpdateOrderHandler(orderSvc))
	protected.Delete("/orders/:id", requireAdmin, orders.DeleteOrderHandler(orderSvc))

	protected.Get("/pickup-days", pickupdays.ListHandler(pickupSvc))

	// Admin routes
	adminRoutes := protected.Group("/admin")
	adminRoutes.Use(requireAdmin)

	for path, kind := range map[string]catalog.EntityKind{
		"/categories":     catalog.KindCategory,
		"/sub-categories": catalog.KindSubCategory,
		"/products":       catalog.KindProduct,
	} {
		h := catalog.HandlersFor(kind, catalogSvc)
		adminRoutes.Post(path, h.Create)
		adminRoutes.Put(path+"/:id", h.Update)
		adminRoutes.Delete(path+"/:id", h.Delete)
	}

	// Üretim listesi
	adminRoutes.Get("/production", production.SheetHandler(productionSvc))
	adminRoutes.Get("/production/export", production.ExportHandler(productionSvc))

	// Menü içe aktarma (PDF -> OCR -> LLM -> katalog)
	adminRoutes.Post("/menu-import", menuimport.ImportHandler(importer))

	// Teslim günleri
	adminRoutes.Post("/pickup-days", pickupdays.AddHandler(pickupSvc))
	adminRoutes.Delete("/pickup-days/:id", pickupdays.RemoveHandler(pickupSvc))

	// Audit log
	adminRoutes.Get("/audit-logs", audit.ListAuditLogsHandler(db))

	log.Info().Str("port", cfg.HTTPPort).Msg("Server starting")
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
