package pickupdays

import (
	"context"
	"errors"
	"time"

	"caterer-backend/internal/apperr"
	"caterer-backend/internal/calendar"
	"caterer-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Service struct {
	db  *gorm.DB
	loc *time.Location
}

func NewService(db *gorm.DB, loc *time.Location) *Service {
	return &Service{db: db, loc: loc}
}

// List returns the tenant's available days from today onwards, ascending.
func (s *Service) List(ctx context.Context, tenantID uuid.UUID, from time.Time) ([]models.AvailableDay, error) {
	var days []models.AvailableDay
	err := s.db.WithContext(ctx).
		Where("tenant_id = ? AND date >= ?", tenantID, calendar.StartOfDay(from, s.loc).UTC()).
		Order("date asc").
		Find(&days).Error
	return days, err
}

// Add opens a day for pickups. Adding an already open day returns the existing row.
func (s *Service) Add(ctx context.Context, tenantID uuid.UUID, day time.Time) (*models.AvailableDay, error) {
	date := calendar.StartOfDay(day, s.loc).UTC()

	var existing models.AvailableDay
	err := s.db.WithContext(ctx).Where("tenant_id = ? AND date = ?", tenantID, date).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	d := models.AvailableDay{TenantID: tenantID, Date: date}
	if err := s.db.WithContext(ctx).Create(&d).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *Service) Remove(ctx context.Context, tenantID, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Where("id = ? AND tenant_id = ?", id, tenantID).Delete(&models.AvailableDay{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("pickup_day", id.String())
	}
	return nil
}

// IsAvailable reports whether day is an open pickup day of the tenant.
// db may be a transaction.
func IsAvailable(db *gorm.DB, tenantID uuid.UUID, day time.Time, loc *time.Location) (bool, error) {
	start, end := calendar.DayWindow(day, loc)
	var count int64
	err := db.Model(&models.AvailableDay{}).
		Where("tenant_id = ? AND date >= ? AND date < ?", tenantID, start, end).
		Count(&count).Error
	return count > 0, err
}
