package production

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"caterer-backend/internal/database"
	"caterer-backend/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
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

type catalogFixture struct {
	tenantID uuid.UUID
	p1, p2   models.Product
}

func seedCatalog(t *testing.T, db *gorm.DB) catalogFixture {
	t.Helper()
	tenant := models.Tenant{Name: "Traiteur"}
	db.Create(&tenant)
	cat := models.Category{TenantID: tenant.ID, Name: "Desserts"}
	db.Create(&cat)
	sub := models.SubCategory{CategoryID: cat.ID, Name: "Tartes"}
	db.Create(&sub)

	p1 := models.Product{TenantID: tenant.ID, Designation: "Tarte citron", Price: decimal.NewFromInt(18), CategoryID: cat.ID, SubCategoryID: &sub.ID}
	p2 := models.Product{TenantID: tenant.ID, Designation: "Mousse chocolat", Price: decimal.NewFromInt(6), CategoryID: cat.ID}
	if err := db.Create(&p1).Error; err != nil {
		t.Fatalf("product: %v", err)
	}
	if err := db.Create(&p2).Error; err != nil {
		t.Fatalf("product: %v", err)
	}
	return catalogFixture{tenantID: tenant.ID, p1: p1, p2: p2}
}

func placeOrder(t *testing.T, db *gorm.DB, tenantID uuid.UUID, client string, pickup time.Time, items ...models.OrderItem) {
	t.Helper()
	o := models.Order{TenantID: tenantID, ClientName: client, PickupDate: pickup.UTC(), Items: items}
	if err := db.Create(&o).Error; err != nil {
		t.Fatalf("order: %v", err)
	}
}

func date(s string) time.Time {
	d, _ := time.ParseInLocation("2006-01-02", s, time.UTC)
	return d
}

func TestSheetScenarioSameDay(t *testing.T) {
	db := setupTestDB(t)
	fx := seedCatalog(t, db)
	svc := NewService(db, time.UTC, "fr")

	placeOrder(t, db, fx.tenantID, "Alice", date("2024-06-01"), item(fx.p1.ID, 2))
	placeOrder(t, db, fx.tenantID, "Bob", date("2024-06-01"), item(fx.p1.ID, 3), item(fx.p2.ID, 1))

	sheet, err := svc.Sheet(context.Background(), fx.tenantID, date("2024-06-01"))
	if err != nil {
		t.Fatalf("sheet: %v", err)
	}
	if sheet.Date != "2024-06-01" || sheet.UnresolvedItems != 0 {
		t.Fatalf("unexpected sheet header %+v", sheet)
	}
	if len(sheet.Rows) != 2 {
		t.Fatalf("expected 2 rows got %d", len(sheet.Rows))
	}
	// "Mousse chocolat" < "Tarte citron"
	if sheet.Rows[0].ProductID != fx.p2.ID || sheet.Rows[0].TotalQuantity != 1 {
		t.Fatalf("unexpected first row %+v", sheet.Rows[0])
	}
	if sheet.Rows[1].ProductID != fx.p1.ID || sheet.Rows[1].TotalQuantity != 5 {
		t.Fatalf("unexpected second row %+v", sheet.Rows[1])
	}
	if sheet.Rows[1].CategoryName != "Desserts" || sheet.Rows[1].SubCategoryName != "Tartes" {
		t.Fatalf("unexpected names %+v", sheet.Rows[1])
	}
}

func TestSheetScenarioOtherDay(t *testing.T) {
	db := setupTestDB(t)
	fx := seedCatalog(t, db)
	svc := NewService(db, time.UTC, "fr")

	placeOrder(t, db, fx.tenantID, "Alice", date("2024-06-01"), item(fx.p1.ID, 2))
	placeOrder(t, db, fx.tenantID, "Bob", date("2024-06-02"), item(fx.p1.ID, 3), item(fx.p2.ID, 1))

	sheet, err := svc.Sheet(context.Background(), fx.tenantID, date("2024-06-01"))
	if err != nil {
		t.Fatalf("sheet: %v", err)
	}
	if len(sheet.Rows) != 1 || sheet.Rows[0].ProductID != fx.p1.ID || sheet.Rows[0].TotalQuantity != 2 {
		t.Fatalf("expected only Alice's contribution, got %+v", sheet.Rows)
	}
}

func TestSheetDayWindow(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	db := setupTestDB(t)
	fx := seedCatalog(t, db)
	svc := NewService(db, paris, "fr")

	day := time.Date(2024, 6, 1, 0, 0, 0, 0, paris)
	placeOrder(t, db, fx.tenantID, "veille", day.Add(-time.Second), item(fx.p1.ID, 100))
	placeOrder(t, db, fx.tenantID, "minuit", day, item(fx.p1.ID, 1))
	placeOrder(t, db, fx.tenantID, "soir", day.Add(24*time.Hour-time.Second), item(fx.p1.ID, 2))
	placeOrder(t, db, fx.tenantID, "lendemain", day.Add(24*time.Hour), item(fx.p1.ID, 100))

	sheet, err := svc.Sheet(context.Background(), fx.tenantID, day.Add(13*time.Hour))
	if err != nil {
		t.Fatalf("sheet: %v", err)
	}
	if len(sheet.Rows) != 1 || sheet.Rows[0].TotalQuantity != 3 {
		t.Fatalf("expected only the two same-day orders, got %+v", sheet.Rows)
	}
}

func TestSheetNoOrders(t *testing.T) {
	db := setupTestDB(t)
	fx := seedCatalog(t, db)
	svc := NewService(db, time.UTC, "fr")

	sheet, err := svc.Sheet(context.Background(), fx.tenantID, date("2030-01-01"))
	if err != nil {
		t.Fatalf("sheet: %v", err)
	}
	if sheet.Rows == nil || len(sheet.Rows) != 0 || sheet.UnresolvedItems != 0 {
		t.Fatalf("expected empty sheet, got %+v", sheet)
	}
}

func TestSheetSkipsDeletedProduct(t *testing.T) {
	db := setupTestDB(t)
	fx := seedCatalog(t, db)
	svc := NewService(db, time.UTC, "fr")

	placeOrder(t, db, fx.tenantID, "Alice", date("2024-05-01"), item(fx.p1.ID, 2), item(fx.p2.ID, 4))
	if err := db.Delete(&fx.p1).Error; err != nil {
		t.Fatalf("delete product: %v", err)
	}

	sheet, err := svc.Sheet(context.Background(), fx.tenantID, date("2024-05-01"))
	if err != nil {
		t.Fatalf("sheet: %v", err)
	}
	if sheet.UnresolvedItems != 1 {
		t.Fatalf("expected 1 unresolved item got %d", sheet.UnresolvedItems)
	}
	if len(sheet.Rows) != 1 || sheet.Rows[0].ProductID != fx.p2.ID {
		t.Fatalf("expected only the live product, got %+v", sheet.Rows)
	}
}

func TestSheetIsReadOnlyAndRepeatable(t *testing.T) {
	db := setupTestDB(t)
	fx := seedCatalog(t, db)
	svc := NewService(db, time.UTC, "fr")

	placeOrder(t, db, fx.tenantID, "Alice", date("2024-06-01"), item(fx.p1.ID, 2), item(fx.p2.ID, 1))
	placeOrder(t, db, fx.tenantID, "Bob", date("2024-06-01"), item(fx.p2.ID, 7))

	counts := func() [3]int64 {
		var c [3]int64
		db.Model(&models.Order{}).Count(&c[0])
		db.Model(&models.OrderItem{}).Count(&c[1])
		db.Model(&models.Product{}).Count(&c[2])
		return c
	}
	before := counts()

	first, err := svc.Sheet(context.Background(), fx.tenantID, date("2024-06-01"))
	if err != nil {
		t.Fatalf("sheet: %v", err)
	}
	second, err := svc.Sheet(context.Background(), fx.tenantID, date("2024-06-01"))
	if err != nil {
		t.Fatalf("sheet: %v", err)
	}

	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	if string(a) != string(b) {
		t.Fatalf("repeated runs differ:\n%s\n%s", a, b)
	}
	if counts() != before {
		t.Fatalf("store contents changed")
	}
}

func TestSheetTenantScope(t *testing.T) {
	db := setupTestDB(t)
	fx := seedCatalog(t, db)
	svc := NewService(db, time.UTC, "fr")

	placeOrder(t, db, fx.tenantID, "Alice", date("2024-06-01"), item(fx.p1.ID, 2))

	sheet, err := svc.Sheet(context.Background(), uuid.New(), date("2024-06-01"))
	if err != nil {
		t.Fatalf("sheet: %v", err)
	}
	if len(sheet.Rows) != 0 {
		t.Fatalf("other tenant must see nothing, got %+v", sheet.Rows)
	}
}

func TestExportWorkbook(t *testing.T) {
	db := setupTestDB(t)
	fx := seedCatalog(t, db)
	svc := NewService(db, time.UTC, "fr")

	placeOrder(t, db, fx.tenantID, "Alice", date("2024-06-01"), item(fx.p1.ID, 2), item(fx.p2.ID, 1))

	buf, sheet, err := svc.Export(context.Background(), fx.tenantID, date("2024-06-01"))
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if len(sheet.Rows) != 2 {
		t.Fatalf("expected 2 rows got %d", len(sheet.Rows))
	}

	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(exportSheetName)
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	// başlık, boş satır, kolon başlıkları, kategori, iki ürün
	if len(rows) != 6 {
		t.Fatalf("expected 6 rows got %d: %v", len(rows), rows)
	}
	if rows[3][0] != "Desserts" {
		t.Fatalf("expected category header, got %v", rows[3])
	}
	if rows[4][2] != "Mousse chocolat" || rows[4][3] != "1" {
		t.Fatalf("unexpected product row %v", rows[4])
	}
	if rows[5][1] != "Tartes" || rows[5][2] != "Tarte citron" || rows[5][3] != "2" {
		t.Fatalf("unexpected product row %v", rows[5])
	}
}
