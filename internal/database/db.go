package database

import (
	"fmt"
	"log"
	"os"
	"time"

	"caterer-backend/internal/config"
	"caterer-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	level := logger.Warn
	if cfg.Env == "development" {
		level = logger.Info
	}

	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			Colorful:                  cfg.Env == "development",
		},
	)

	var err error
	DB, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{Logger: gormLogger, NowFunc: NowUTC, TranslateError: true})
	if err != nil {
		log.Fatalf("Veritabanına bağlanılamadı: %v", err)
	}

	if err := Migrate(DB); err != nil {
		log.Fatalf("AutoMigrate hatası: %v", err)
	}

	log.Println("Veritabanı bağlantısı başarılı. Migration tamamlandı.")
}

// NowUTC: tüm zaman damgaları UTC yazılır; gün aralığı sorguları buna dayanır
func NowUTC() time.Time {
	return time.Now().UTC()
}

// Migrate creates or updates every table the application uses.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Tenant{},
		&models.User{},
		&models.Category{},
		&models.SubCategory{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
		&models.AvailableDay{},
		&models.AuditLog{},
	)
	if err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}

	// Kategori adı tenant içinde büyük/küçük harf duyarsız tekil; silinmiş kayıtlar hariç.
	// Postgres ve SQLite ikisi de kısmi ve ifade indeksini destekler.
	if err := db.Exec(categoryNameIndex).Error; err != nil {
		return fmt.Errorf("category name index: %w", err)
	}
	return nil
}

const categoryNameIndex = `CREATE UNIQUE INDEX IF NOT EXISTS idx_categories_tenant_lower_name
	ON categories (tenant_id, LOWER(name)) WHERE deleted_at IS NULL`
