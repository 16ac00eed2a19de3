package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"caterer-backend/internal/apperr"
	"caterer-backend/internal/audit"
	"caterer-backend/internal/auth"
	"caterer-backend/internal/calendar"
	"caterer-backend/internal/models"
	"caterer-backend/internal/pickupdays"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const entityOrder = "order"

type Period string

const (
	PeriodUpcoming Period = "upcoming"
	PeriodPast     Period = "past"
)

type ItemInput struct {
	ProductID uuid.UUID
	Quantity  int
}

type CreateInput struct {
	ClientName string
	PickupDate time.Time
	Items      []ItemInput
}

// UpdatePatch: nil alanlar değişmez. Items verilirse mevcut kalemlerin tamamı değiştirilir.
type UpdatePatch struct {
	ClientName *string
	PickupDate *time.Time
	Items      *[]ItemInput
}

// ListFilter selects at most one of Period or Date; with neither, every order is listed.
type ListFilter struct {
	Period Period
	Date   *time.Time
}

type Options struct {
	Location         *time.Location
	RequirePickupDay bool
	Now              func() time.Time
}

type Service struct {
	db               *gorm.DB
	loc              *time.Location
	requirePickupDay bool
	now              func() time.Time
}

func NewService(db *gorm.DB, opts Options) *Service {
	s := &Service{db: db, loc: opts.Location, requirePickupDay: opts.RequirePickupDay, now: opts.Now}
	if s.loc == nil {
		s.loc = time.Local
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *Service) Location() *time.Location { return s.loc }

func (s *Service) Create(ctx context.Context, actor auth.Actor, in CreateInput) (*models.Order, error) {
	clientName := strings.TrimSpace(in.ClientName)
	if clientName == "" {
		return nil, apperr.Validation("clientName", "requis")
	}
	if in.PickupDate.IsZero() {
		return nil, apperr.Validation("pickupDate", "requis")
	}
	if err := validateItems(in.Items); err != nil {
		return nil, err
	}

	order := models.Order{
		TenantID:   actor.TenantID,
		ClientName: clientName,
		PickupDate: calendar.StartOfDay(in.PickupDate, s.loc).UTC(),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.checkPickupDay(tx, actor.TenantID, order.PickupDate); err != nil {
			return err
		}
		if err := resolveProducts(tx, actor.TenantID, in.Items); err != nil {
			return err
		}

		order.Items = toItems(in.Items)
		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		return writeAudit(tx, actor, order.ID, models.AuditActionCreate,
			fmt.Sprintf("Commande créée: %s (%d articles)", order.ClientName, len(order.Items)), nil, order)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, actor.TenantID, order.ID)
}

// Update applies the patch; when Items is set, the old item set is deleted and the
// new one inserted in the same transaction as the field changes.
func (s *Service) Update(ctx context.Context, actor auth.Actor, id uuid.UUID, patch UpdatePatch) (*models.Order, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := findOrder(tx.Preload("Items"), actor.TenantID, id)
		if err != nil {
			return err
		}
		before := *order

		if patch.ClientName != nil {
			name := strings.TrimSpace(*patch.ClientName)
			if name == "" {
				return apperr.Validation("clientName", "ne peut pas être vide")
			}
			order.ClientName = name
		}
		if patch.PickupDate != nil {
			if patch.PickupDate.IsZero() {
				return apperr.Validation("pickupDate", "invalide")
			}
			order.PickupDate = calendar.StartOfDay(*patch.PickupDate, s.loc).UTC()
			if err := s.checkPickupDay(tx, actor.TenantID, order.PickupDate); err != nil {
				return err
			}
		}

		if err := tx.Omit(clause.Associations).Save(order).Error; err != nil {
			return err
		}

		after := *order
		if patch.Items != nil {
			items := *patch.Items
			if err := validateItems(items); err != nil {
				return err
			}
			if err := resolveProducts(tx, actor.TenantID, items); err != nil {
				return err
			}
			if err := tx.Where("order_id = ?", order.ID).Delete(&models.OrderItem{}).Error; err != nil {
				return err
			}
			newItems := toItems(items)
			for i := range newItems {
				newItems[i].OrderID = order.ID
			}
			if err := tx.Create(&newItems).Error; err != nil {
				return err
			}
			after.Items = newItems
		}

		return writeAudit(tx, actor, order.ID, models.AuditActionUpdate, "Commande modifiée: "+order.ClientName, before, after)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, actor.TenantID, id)
}

func (s *Service) Get(ctx context.Context, tenantID, id uuid.UUID) (*models.Order, error) {
	return findOrder(withItems(s.db.WithContext(ctx)), tenantID, id)
}

func (s *Service) Delete(ctx context.Context, actor auth.Actor, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := findOrder(tx.Preload("Items"), actor.TenantID, id)
		if err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", order.ID).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Order{}, "id = ?", order.ID).Error; err != nil {
			return err
		}
		return writeAudit(tx, actor, order.ID, models.AuditActionDelete, "Commande supprimée: "+order.ClientName, order, nil)
	})
}

func (s *Service) List(ctx context.Context, tenantID uuid.UUID, f ListFilter) ([]models.Order, error) {
	q := withItems(s.db.WithContext(ctx)).Where("tenant_id = ?", tenantID)
	today := calendar.StartOfDay(s.now(), s.loc)

	switch {
	case f.Date != nil:
		start, end := calendar.DayWindow(*f.Date, s.loc)
		q = q.Where("pickup_date >= ? AND pickup_date < ?", start, end).Order("created_at desc")
	case f.Period == PeriodUpcoming:
		q = q.Where("pickup_date >= ? AND pickup_date <= ?", today.UTC(), today.AddDate(0, 1, 0).UTC()).
			Order("pickup_date asc").Order("created_at desc")
	case f.Period == PeriodPast:
		q = q.Where("pickup_date >= ? AND pickup_date < ?", today.AddDate(0, -6, 0).UTC(), today.UTC()).
			Order("pickup_date desc").Order("created_at desc")
	case f.Period == "":
		q = q.Order("created_at desc")
	default:
		return nil, apperr.Validation("period", "doit être upcoming ou past")
	}

	var list []models.Order
	if err := q.Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// withItems: silinmiş ürünler yüklenmez, kalem Product alanı nil kalır ve toplama katılmaz
func withItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Items").Preload("Items.Product")
}

func findOrder(db *gorm.DB, tenantID, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := db.Where("id = ? AND tenant_id = ?", id, tenantID).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(entityOrder, id.String())
		}
		return nil, err
	}
	return &order, nil
}

func validateItems(items []ItemInput) error {
	if len(items) == 0 {
		return apperr.Validation("items", "au moins un article est requis")
	}
	for i, it := range items {
		if it.ProductID == uuid.Nil {
			return apperr.Validation(fmt.Sprintf("items[%d].productId", i), "requis")
		}
		if it.Quantity <= 0 {
			return apperr.Validation(fmt.Sprintf("items[%d].quantity", i), "doit être supérieure à 0")
		}
	}
	return nil
}

// resolveProducts: tüm ürünler bu tenant'a ait ve silinmemiş olmalı
func resolveProducts(tx *gorm.DB, tenantID uuid.UUID, items []ItemInput) error {
	ids := make([]uuid.UUID, 0, len(items))
	seen := make(map[uuid.UUID]bool, len(items))
	for _, it := range items {
		if !seen[it.ProductID] {
			seen[it.ProductID] = true
			ids = append(ids, it.ProductID)
		}
	}

	var found []uuid.UUID
	if err := tx.Model(&models.Product{}).
		Where("tenant_id = ? AND id IN ?", tenantID, ids).
		Pluck("id", &found).Error; err != nil {
		return err
	}

	live := make(map[uuid.UUID]bool, len(found))
	for _, id := range found {
		live[id] = true
	}
	for _, id := range ids {
		if !live[id] {
			return apperr.Unresolved("product", id.String())
		}
	}
	return nil
}

func (s *Service) checkPickupDay(tx *gorm.DB, tenantID uuid.UUID, day time.Time) error {
	if !s.requirePickupDay {
		return nil
	}
	ok, err := pickupdays.IsAvailable(tx, tenantID, day, s.loc)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.Validation("pickupDate", "ce jour n'est pas ouvert aux retraits")
	}
	return nil
}

func toItems(in []ItemInput) []models.OrderItem {
	items := make([]models.OrderItem, 0, len(in))
	for _, it := range in {
		items = append(items, models.OrderItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return items
}

func writeAudit(tx *gorm.DB, actor auth.Actor, id uuid.UUID, action models.AuditAction, desc string, before, after any) error {
	return audit.WriteLog(tx, audit.LogOptions{
		TenantID:    actor.TenantID,
		UserID:      actor.UserID,
		UserName:    actor.Name,
		EntityType:  entityOrder,
		EntityID:    id,
		Action:      action,
		Description: desc,
		Before:      before,
		After:       after,
	})
}
