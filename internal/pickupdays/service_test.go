package pickupdays

import (
	"context"
	"errors"
	"testing"
	"time"

	"caterer-backend/internal/apperr"
	"caterer-backend/internal/database"

	"github.com/google/uuid"
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

func TestAddListRemove(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, time.UTC)
	ctx := context.Background()
	tenant := uuid.New()

	today := time.Date(2024, 6, 1, 15, 0, 0, 0, time.UTC)
	first, err := svc.Add(ctx, tenant, today.AddDate(0, 0, 2))
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	again, err := svc.Add(ctx, tenant, today.AddDate(0, 0, 2).Add(5*time.Hour))
	if err != nil {
		t.Fatalf("add again: %v", err)
	}
	if again.ID != first.ID {
		t.Fatalf("same day must not be duplicated")
	}
	if _, err := svc.Add(ctx, tenant, today.AddDate(0, 0, -3)); err != nil {
		t.Fatalf("add past: %v", err)
	}
	if _, err := svc.Add(ctx, tenant, today); err != nil {
		t.Fatalf("add today: %v", err)
	}

	days, err := svc.List(ctx, tenant, today)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(days) != 2 {
		t.Fatalf("expected today and the upcoming day, got %d", len(days))
	}
	if !days[0].Date.Before(days[1].Date) {
		t.Fatalf("expected ascending order")
	}

	ok, err := IsAvailable(db, tenant, today.AddDate(0, 0, 2), time.UTC)
	if err != nil || !ok {
		t.Fatalf("expected day to be available: %v %v", ok, err)
	}
	ok, _ = IsAvailable(db, uuid.New(), today.AddDate(0, 0, 2), time.UTC)
	if ok {
		t.Fatalf("other tenants must not see the day")
	}

	if err := svc.Remove(ctx, tenant, first.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	var nf *apperr.NotFoundError
	if err := svc.Remove(ctx, tenant, first.ID); !errors.As(err, &nf) {
		t.Fatalf("expected not found, got %v", err)
	}
}
