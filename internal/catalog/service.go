package catalog

import (
	"context"
	"errors"
	"strings"

	"caterer-backend/internal/apperr"
	"caterer-backend/internal/audit"
	"caterer-backend/internal/auth"
	"caterer-backend/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	entityCategory    = "category"
	entitySubCategory = "sub_category"
	entityProduct     = "product"
)

// Snapshot is the whole catalog of one tenant, each list sorted by name.
type Snapshot struct {
	Categories    []models.Category    `json:"categories"`
	SubCategories []models.SubCategory `json:"subCategories"`
	Products      []models.Product     `json:"products"`
}

type ProductInput struct {
	Designation   string
	Price         decimal.Decimal
	CategoryID    uuid.UUID
	SubCategoryID *uuid.UUID
}

type SubCategoryPatch struct {
	Name       *string
	CategoryID *uuid.UUID
}

type ProductPatch struct {
	Designation *string
	Price       *decimal.Decimal
	CategoryID  *uuid.UUID
	// SubCategorySet false ise alt kategori değişmez; true ve SubCategoryID nil ise temizlenir
	SubCategorySet bool
	SubCategoryID  *uuid.UUID
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func (s *Service) ListCategories(ctx context.Context, tenantID uuid.UUID) ([]models.Category, error) {
	var categories []models.Category
	err := s.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("name asc").
		Find(&categories).Error
	return categories, err
}

func (s *Service) ListSubCategories(ctx context.Context, tenantID uuid.UUID) ([]models.SubCategory, error) {
	var subs []models.SubCategory
	err := scopeSubCategories(s.db.WithContext(ctx), tenantID).
		Order("sub_categories.name asc").
		Find(&subs).Error
	return subs, err
}

func (s *Service) ListProducts(ctx context.Context, tenantID uuid.UUID) ([]models.Product, error) {
	var products []models.Product
	err := s.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("designation asc").
		Find(&products).Error
	return products, err
}

func (s *Service) Catalog(ctx context.Context, tenantID uuid.UUID) (*Snapshot, error) {
	categories, err := s.ListCategories(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	subs, err := s.ListSubCategories(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	products, err := s.ListProducts(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return &Snapshot{Categories: categories, SubCategories: subs, Products: products}, nil
}

// ---------------------------------------------
// Category
// ---------------------------------------------

func (s *Service) CreateCategory(ctx context.Context, actor auth.Actor, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation("name", "requis")
	}

	cat := models.Category{TenantID: actor.TenantID, Name: name}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureUniqueCategoryName(tx, actor.TenantID, name, uuid.Nil); err != nil {
			return err
		}
		if err := tx.Create(&cat).Error; err != nil {
			return duplicateName(err)
		}
		return writeAudit(tx, actor, entityCategory, cat.ID, models.AuditActionCreate, "Catégorie créée: "+cat.Name, nil, cat)
	})
	if err != nil {
		return nil, err
	}
	return &cat, nil
}

func (s *Service) UpdateCategory(ctx context.Context, actor auth.Actor, id uuid.UUID, name *string) (*models.Category, error) {
	var cat models.Category
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found, err := findCategory(tx, actor.TenantID, id)
		if err != nil {
			return err
		}
		before := *found
		cat = *found

		if name != nil {
			n := strings.TrimSpace(*name)
			if n == "" {
				return apperr.Validation("name", "ne peut pas être vide")
			}
			if err := ensureUniqueCategoryName(tx, actor.TenantID, n, cat.ID); err != nil {
				return err
			}
			cat.Name = n
		}

		if err := tx.Save(&cat).Error; err != nil {
			return duplicateName(err)
		}
		return writeAudit(tx, actor, entityCategory, cat.ID, models.AuditActionUpdate, "Catégorie modifiée: "+cat.Name, before, cat)
	})
	if err != nil {
		return nil, err
	}
	return &cat, nil
}

// DeleteCategory refuses to delete a category that still owns live sub-categories or products.
func (s *Service) DeleteCategory(ctx context.Context, actor auth.Actor, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cat, err := findCategory(lockRows(tx, clause.LockingStrengthUpdate), actor.TenantID, id)
		if err != nil {
			return err
		}

		var subCount, productCount int64
		if err := tx.Model(&models.SubCategory{}).Where("category_id = ?", cat.ID).Count(&subCount).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Product{}).Where("category_id = ?", cat.ID).Count(&productCount).Error; err != nil {
			return err
		}
		if subCount > 0 || productCount > 0 {
			return apperr.Conflict("Cette catégorie contient encore des sous-catégories ou des produits")
		}

		if err := tx.Delete(cat).Error; err != nil {
			return err
		}
		return writeAudit(tx, actor, entityCategory, cat.ID, models.AuditActionDelete, "Catégorie supprimée: "+cat.Name, cat, nil)
	})
}

// ---------------------------------------------
// SubCategory
// ---------------------------------------------

func (s *Service) CreateSubCategory(ctx context.Context, actor auth.Actor, name string, categoryID uuid.UUID) (*models.SubCategory, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation("name", "requis")
	}
	if categoryID == uuid.Nil {
		return nil, apperr.Validation("categoryId", "requis")
	}

	sub := models.SubCategory{Name: name, CategoryID: categoryID}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findCategory(lockRows(tx, clause.LockingStrengthShare), actor.TenantID, categoryID); err != nil {
			return asReference(err, "categoryId")
		}
		if err := tx.Create(&sub).Error; err != nil {
			return err
		}
		return writeAudit(tx, actor, entitySubCategory, sub.ID, models.AuditActionCreate, "Sous-catégorie créée: "+sub.Name, nil, sub)
	})
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (s *Service) UpdateSubCategory(ctx context.Context, actor auth.Actor, id uuid.UUID, patch SubCategoryPatch) (*models.SubCategory, error) {
	var sub models.SubCategory
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found, err := findSubCategory(tx, actor.TenantID, id)
		if err != nil {
			return err
		}
		before := *found
		sub = *found

		if patch.Name != nil {
			n := strings.TrimSpace(*patch.Name)
			if n == "" {
				return apperr.Validation("name", "ne peut pas être vide")
			}
			sub.Name = n
		}

		if patch.CategoryID != nil && *patch.CategoryID != sub.CategoryID {
			if _, err := findCategory(lockRows(tx, clause.LockingStrengthShare), actor.TenantID, *patch.CategoryID); err != nil {
				return asReference(err, "categoryId")
			}
			// Ürünler eski kategoriye bağlı kalır; taşımak tutarsızlık yaratır
			var count int64
			if err := tx.Model(&models.Product{}).Where("sub_category_id = ?", sub.ID).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return apperr.Conflict("Impossible de déplacer une sous-catégorie qui contient des produits")
			}
			sub.CategoryID = *patch.CategoryID
		}

		if err := tx.Save(&sub).Error; err != nil {
			return err
		}
		return writeAudit(tx, actor, entitySubCategory, sub.ID, models.AuditActionUpdate, "Sous-catégorie modifiée: "+sub.Name, before, sub)
	})
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (s *Service) DeleteSubCategory(ctx context.Context, actor auth.Actor, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sub, err := findSubCategory(lockRows(tx, clause.LockingStrengthUpdate), actor.TenantID, id)
		if err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&models.Product{}).Where("sub_category_id = ?", sub.ID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return apperr.Conflict("Cette sous-catégorie contient encore des produits")
		}

		if err := tx.Delete(sub).Error; err != nil {
			return err
		}
		return writeAudit(tx, actor, entitySubCategory, sub.ID, models.AuditActionDelete, "Sous-catégorie supprimée: "+sub.Name, sub, nil)
	})
}

// ---------------------------------------------
// Product
// ---------------------------------------------

func (s *Service) CreateProduct(ctx context.Context, actor auth.Actor, in ProductInput) (*models.Product, error) {
	p := models.Product{
		TenantID:      actor.TenantID,
		Designation:   strings.TrimSpace(in.Designation),
		Price:         in.Price,
		CategoryID:    in.CategoryID,
		SubCategoryID: in.SubCategoryID,
	}
	if p.Designation == "" {
		return nil, apperr.Validation("designation", "requis")
	}
	if p.CategoryID == uuid.Nil {
		return nil, apperr.Validation("categoryId", "requis")
	}
	if p.Price.IsNegative() {
		return nil, apperr.Validation("price", "doit être positif ou nul")
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkProductPlacement(tx, actor.TenantID, p.CategoryID, p.SubCategoryID); err != nil {
			return err
		}
		if err := tx.Create(&p).Error; err != nil {
			return err
		}
		return writeAudit(tx, actor, entityProduct, p.ID, models.AuditActionCreate, "Produit créé: "+p.Designation, nil, p)
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Service) UpdateProduct(ctx context.Context, actor auth.Actor, id uuid.UUID, patch ProductPatch) (*models.Product, error) {
	var p models.Product
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found, err := findProduct(tx, actor.TenantID, id)
		if err != nil {
			return err
		}
		before := *found
		p = *found

		if patch.Designation != nil {
			d := strings.TrimSpace(*patch.Designation)
			if d == "" {
				return apperr.Validation("designation", "ne peut pas être vide")
			}
			p.Designation = d
		}
		if patch.Price != nil {
			if patch.Price.IsNegative() {
				return apperr.Validation("price", "doit être positif ou nul")
			}
			p.Price = *patch.Price
		}
		if patch.CategoryID != nil {
			p.CategoryID = *patch.CategoryID
		}
		if patch.SubCategorySet {
			p.SubCategoryID = patch.SubCategoryID
		}

		// Kategori değişip alt kategori gönderilmediyse eski alt kategori artık uyumsuz olabilir
		if err := checkProductPlacement(tx, actor.TenantID, p.CategoryID, p.SubCategoryID); err != nil {
			return err
		}

		if err := tx.Save(&p).Error; err != nil {
			return err
		}
		return writeAudit(tx, actor, entityProduct, p.ID, models.AuditActionUpdate, "Produit modifié: "+p.Designation, before, p)
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// DeleteProduct soft-deletes the product. Past order items keep pointing at the
// tombstone; the production sheet reports them as unresolved.
func (s *Service) DeleteProduct(ctx context.Context, actor auth.Actor, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := findProduct(tx, actor.TenantID, id)
		if err != nil {
			return err
		}
		if err := tx.Delete(p).Error; err != nil {
			return err
		}
		return writeAudit(tx, actor, entityProduct, p.ID, models.AuditActionDelete, "Produit supprimé: "+p.Designation, p, nil)
	})
}

// ---------------------------------------------
// yardımcılar
// ---------------------------------------------

func scopeSubCategories(db *gorm.DB, tenantID uuid.UUID) *gorm.DB {
	return db.Model(&models.SubCategory{}).
		Select("sub_categories.*").
		Joins("JOIN categories ON categories.id = sub_categories.category_id AND categories.deleted_at IS NULL").
		Where("categories.tenant_id = ?", tenantID)
}

func findCategory(tx *gorm.DB, tenantID, id uuid.UUID) (*models.Category, error) {
	var cat models.Category
	if err := tx.Where("id = ? AND tenant_id = ?", id, tenantID).First(&cat).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(entityCategory, id.String())
		}
		return nil, err
	}
	return &cat, nil
}

func findSubCategory(tx *gorm.DB, tenantID, id uuid.UUID) (*models.SubCategory, error) {
	var sub models.SubCategory
	if err := scopeSubCategories(tx, tenantID).Where("sub_categories.id = ?", id).First(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(entitySubCategory, id.String())
		}
		return nil, err
	}
	return &sub, nil
}

func findProduct(tx *gorm.DB, tenantID, id uuid.UUID) (*models.Product, error) {
	var p models.Product
	if err := tx.Where("id = ? AND tenant_id = ?", id, tenantID).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(entityProduct, id.String())
		}
		return nil, err
	}
	return &p, nil
}

// checkProductPlacement: kategori tenant'a ait olmalı, alt kategori verilmişse aynı kategoriye ait olmalı
func checkProductPlacement(tx *gorm.DB, tenantID, categoryID uuid.UUID, subCategoryID *uuid.UUID) error {
	if _, err := findCategory(lockRows(tx, clause.LockingStrengthShare), tenantID, categoryID); err != nil {
		return asReference(err, "categoryId")
	}
	if subCategoryID == nil {
		return nil
	}
	sub, err := findSubCategory(lockRows(tx, clause.LockingStrengthShare), tenantID, *subCategoryID)
	if err != nil {
		return asReference(err, "subCategoryId")
	}
	if sub.CategoryID != categoryID {
		return apperr.Validation("subCategoryId", "la sous-catégorie n'appartient pas à cette catégorie")
	}
	return nil
}

func ensureUniqueCategoryName(tx *gorm.DB, tenantID uuid.UUID, name string, excludeID uuid.UUID) error {
	q := tx.Model(&models.Category{}).Where("tenant_id = ? AND LOWER(name) = LOWER(?)", tenantID, name)
	if excludeID != uuid.Nil {
		q = q.Where("id <> ?", excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return apperr.Conflict("Une catégorie porte déjà ce nom")
	}
	return nil
}

// lockCategory: silme FOR UPDATE, alt kayıt ekleme FOR SHARE alır; böylece
// kullanım sayımı ile eşzamanlı ekleme yarışmaz. SQLite'ta kilit cümlesi atlanır.
func lockRows(tx *gorm.DB, strength string) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: strength})
}

// duplicateName: kontrol ile insert arasında yarışan istek indekse takılır
func duplicateName(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.Conflict("Une catégorie porte déjà ce nom")
	}
	return err
}

// asReference: gövdede verilen id bulunamazsa 404 yerine 400 döner
func asReference(err error, field string) error {
	var nf *apperr.NotFoundError
	if errors.As(err, &nf) {
		return apperr.Validation(field, "référence introuvable")
	}
	return err
}

func writeAudit(tx *gorm.DB, actor auth.Actor, entity string, id uuid.UUID, action models.AuditAction, desc string, before, after any) error {
	return audit.WriteLog(tx, audit.LogOptions{
		TenantID:    actor.TenantID,
		UserID:      actor.UserID,
		UserName:    actor.Name,
		EntityType:  entity,
		EntityID:    id,
		Action:      action,
		Description: desc,
		Before:      before,
		After:       after,
	})
}
