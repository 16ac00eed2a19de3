package orders

import (
	"testing"
	"time"

	"caterer-backend/internal/auth"
	"caterer-backend/internal/database"
	"caterer-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		NowFunc:        database.NowUTC,
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

type fixture struct {
	db     *gorm.DB
	svc    *Service
	actor  auth.Actor
	quiche models.Product
	tarte  models.Product
}

// fixedNow: 2024-06-01 10:00 UTC
func fixedNow() time.Time {
	return time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := setupTestDB(t)

	tenant := models.Tenant{Name: "Traiteur"}
	if err := db.Create(&tenant).Error; err != nil {
		t.Fatalf("tenant: %v", err)
	}
	cat := models.Category{TenantID: tenant.ID, Name: "Plats"}
	if err := db.Create(&cat).Error; err != nil {
		t.Fatalf("category: %v", err)
	}
	quiche := models.Product{TenantID: tenant.ID, Designation: "Quiche", Price: decimal.RequireFromString("4.50"), CategoryID: cat.ID}
	tarte := models.Product{TenantID: tenant.ID, Designation: "Tarte", Price: decimal.RequireFromString("18"), CategoryID: cat.ID}
	if err := db.Create(&quiche).Error; err != nil {
		t.Fatalf("product: %v", err)
	}
	if err := db.Create(&tarte).Error; err != nil {
		t.Fatalf("product: %v", err)
	}

	return &fixture{
		db:     db,
		svc:    NewService(db, Options{Location: time.UTC, Now: fixedNow}),
		actor:  auth.Actor{TenantID: tenant.ID, Name: "Membre"},
		quiche: quiche,
		tarte:  tarte,
	}
}

func day(s string) time.Time {
	d, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		panic(err)
	}
	return d
}

func withActor(actor auth.Actor) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(auth.CtxUserIDKey, actor.UserID)
		c.Locals(auth.CtxUserNameKey, actor.Name)
		c.Locals(auth.CtxUserRoleKey, models.RoleUser)
		c.Locals(auth.CtxTenantIDKey, actor.TenantID)
		return c.Next()
	}
}
