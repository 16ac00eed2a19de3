package production

import (
	"context"
	"time"

	"caterer-backend/internal/calendar"
	"caterer-backend/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"
	"gorm.io/gorm"
)

type Service struct {
	db   *gorm.DB
	loc  *time.Location
	lang language.Tag
}

// NewService: lang bir BCP 47 etiketi ("fr", "tr"...); geçersizse Fransızca kullanılır
func NewService(db *gorm.DB, loc *time.Location, lang string) *Service {
	tag, err := language.Parse(lang)
	if err != nil {
		log.Warn().Err(err).Str("lang", lang).Msg("collation language invalid, falling back to fr")
		tag = language.French
	}
	if loc == nil {
		loc = time.Local
	}
	return &Service{db: db, loc: loc, lang: tag}
}

// Sheet aggregates the tenant's orders picked up on the calendar day of date.
// It only reads: orders of the day, then the referenced live products and the
// tenant's category and sub-category names, one query each.
func (s *Service) Sheet(ctx context.Context, tenantID uuid.UUID, date time.Time) (*Sheet, error) {
	db := s.db.WithContext(ctx)
	start, end := calendar.DayWindow(date, s.loc)
	sheet := &Sheet{Date: calendar.Format(start, s.loc), Rows: []Row{}}

	var orders []models.Order
	if err := db.Preload("Items").
		Where("tenant_id = ? AND pickup_date >= ? AND pickup_date < ?", tenantID, start, end).
		Find(&orders).Error; err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return sheet, nil
	}

	seen := make(map[uuid.UUID]bool)
	var productIDs []uuid.UUID
	for _, o := range orders {
		for _, item := range o.Items {
			if !seen[item.ProductID] {
				seen[item.ProductID] = true
				productIDs = append(productIDs, item.ProductID)
			}
		}
	}

	lk := Lookup{
		Products:      make(map[uuid.UUID]models.Product, len(productIDs)),
		Categories:    make(map[uuid.UUID]string),
		SubCategories: make(map[uuid.UUID]string),
	}

	if len(productIDs) > 0 {
		var products []models.Product
		if err := db.Where("tenant_id = ? AND id IN ?", tenantID, productIDs).Find(&products).Error; err != nil {
			return nil, err
		}
		for _, p := range products {
			lk.Products[p.ID] = p
		}
	}

	var categories []models.Category
	if err := db.Where("tenant_id = ?", tenantID).Find(&categories).Error; err != nil {
		return nil, err
	}
	categoryIDs := make([]uuid.UUID, 0, len(categories))
	for _, c := range categories {
		lk.Categories[c.ID] = c.Name
		categoryIDs = append(categoryIDs, c.ID)
	}

	if len(categoryIDs) > 0 {
		var subs []models.SubCategory
		if err := db.Where("category_id IN ?", categoryIDs).Find(&subs).Error; err != nil {
			return nil, err
		}
		for _, sc := range subs {
			lk.SubCategories[sc.ID] = sc.Name
		}
	}

	sheet.Rows, sheet.UnresolvedItems = Aggregate(orders, lk, s.lang)
	if sheet.UnresolvedItems > 0 {
		log.Warn().
			Str("tenant_id", tenantID.String()).
			Str("date", sheet.Date).
			Int("unresolved_items", sheet.UnresolvedItems).
			Msg("production sheet skipped items with unresolved products")
	}
	return sheet, nil
}
