package catalog

import (
	"testing"

	"caterer-backend/internal/auth"
	"caterer-backend/internal/database"
	"caterer-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// Her test kendi in-memory veritabanını kullanır
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		NowFunc:        database.NowUTC,
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedActor(t *testing.T, db *gorm.DB, name string) auth.Actor {
	t.Helper()
	tenant := models.Tenant{Name: name}
	if err := db.Create(&tenant).Error; err != nil {
		t.Fatalf("tenant: %v", err)
	}
	user := models.User{TenantID: tenant.ID, Name: "Admin " + name, Email: "admin@" + name + ".test", PasswordHash: "x", Role: models.RoleAdmin}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("user: %v", err)
	}
	return auth.Actor{UserID: user.ID, Name: user.Name, TenantID: tenant.ID}
}

// withActor stands in for JWTMiddleware in handler tests.
func withActor(actor auth.Actor) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(auth.CtxUserIDKey, actor.UserID)
		c.Locals(auth.CtxUserNameKey, actor.Name)
		c.Locals(auth.CtxUserRoleKey, models.RoleAdmin)
		c.Locals(auth.CtxTenantIDKey, actor.TenantID)
		return c.Next()
	}
}
