package menuimport

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"caterer-backend/internal/apperr"
	"caterer-backend/internal/audit"
	"caterer-backend/internal/auth"
	"caterer-backend/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Created counts the catalog rows an import wrote. Rows matched by name are
// reused and not counted; Skipped counts products dropped as invalid or duplicate.
type Created struct {
	Categories    int `json:"categories"`
	SubCategories int `json:"subCategories"`
	Products      int `json:"products"`
	Skipped       int `json:"skipped"`
}

type Result struct {
	Menu    *Menu   `json:"menu"`
	Created Created `json:"created"`
}

type Importer struct {
	db        *gorm.DB
	extractor TextExtractor
	parser    MenuParser
	maxWords  int
}

func NewImporter(db *gorm.DB, extractor TextExtractor, parser MenuParser, maxWords int) *Importer {
	return &Importer{db: db, extractor: extractor, parser: parser, maxWords: maxWords}
}

// Import runs the whole pipeline for one PDF. Nothing is written unless the
// provider calls succeed, and the catalog writes share one transaction.
func (im *Importer) Import(ctx context.Context, actor auth.Actor, pdf []byte) (*Result, error) {
	chunks, err := splitPDF(pdf, pagesPerChunk)
	if err != nil {
		return nil, apperr.Validation("file", "PDF illisible")
	}

	texts := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		text, err := im.extractor.ExtractText(ctx, chunk)
		if err != nil {
			log.Error().Err(err).Int("chunk", i).Int("chunks", len(chunks)).Msg("OCR failed")
			return nil, apperr.Upstream("ocr", err)
		}
		texts = append(texts, text)
	}

	cleaned := cleanText(strings.Join(texts, " "), im.maxWords)
	if cleaned == "" {
		return nil, apperr.Validation("file", "aucun texte détecté dans le PDF")
	}

	menu, err := im.parser.ParseMenu(ctx, cleaned)
	if err != nil {
		log.Error().Err(err).Int("words", len(strings.Fields(cleaned))).Msg("menu parsing failed")
		return nil, apperr.Upstream("llm", err)
	}

	created, err := im.Save(ctx, actor, menu)
	if err != nil {
		return nil, err
	}
	return &Result{Menu: menu, Created: created}, nil
}

// Save writes menu into the tenant's catalog in one transaction. Categories are
// matched by name against live categories, sub-categories by name inside their
// category, products by designation inside their category.
func (im *Importer) Save(ctx context.Context, actor auth.Actor, menu *Menu) (Created, error) {
	var created Created
	err := im.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		created = Created{}
		for _, mc := range menu.Categories {
			name := strings.TrimSpace(mc.Name)
			if name == "" {
				created.Skipped += countProducts(mc)
				continue
			}

			cat, isNew, err := findOrCreateCategory(tx, actor.TenantID, name)
			if err != nil {
				return err
			}
			if isNew {
				created.Categories++
			}

			if err := addProducts(tx, actor.TenantID, cat.ID, nil, mc.Products, &created); err != nil {
				return err
			}

			for _, ms := range mc.SubCategories {
				if ms.Name == nil || strings.TrimSpace(*ms.Name) == "" {
					if err := addProducts(tx, actor.TenantID, cat.ID, nil, ms.Products, &created); err != nil {
						return err
					}
					continue
				}
				sub, isNew, err := findOrCreateSubCategory(tx, cat.ID, strings.TrimSpace(*ms.Name))
				if err != nil {
					return err
				}
				if isNew {
					created.SubCategories++
				}
				if err := addProducts(tx, actor.TenantID, cat.ID, &sub.ID, ms.Products, &created); err != nil {
					return err
				}
			}
		}

		return audit.WriteLog(tx, audit.LogOptions{
			TenantID:    actor.TenantID,
			UserID:      actor.UserID,
			UserName:    actor.Name,
			EntityType:  "menu",
			Action:      models.AuditActionImport,
			Description: fmt.Sprintf("Menu importé: %d catégories, %d sous-catégories, %d produits", created.Categories, created.SubCategories, created.Products),
			After:       created,
		})
	})
	if err != nil {
		return Created{}, err
	}
	return created, nil
}

func findOrCreateCategory(tx *gorm.DB, tenantID uuid.UUID, name string) (*models.Category, bool, error) {
	var cat models.Category
	err := tx.Where("tenant_id = ? AND LOWER(name) = LOWER(?)", tenantID, name).First(&cat).Error
	if err == nil {
		return &cat, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}
	cat = models.Category{TenantID: tenantID, Name: name}
	if err := tx.Create(&cat).Error; err != nil {
		return nil, false, err
	}
	return &cat, true, nil
}

func findOrCreateSubCategory(tx *gorm.DB, categoryID uuid.UUID, name string) (*models.SubCategory, bool, error) {
	var sub models.SubCategory
	err := tx.Where("category_id = ? AND LOWER(name) = LOWER(?)", categoryID, name).First(&sub).Error
	if err == nil {
		return &sub, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}
	sub = models.SubCategory{CategoryID: categoryID, Name: name}
	if err := tx.Create(&sub).Error; err != nil {
		return nil, false, err
	}
	return &sub, true, nil
}

func addProducts(tx *gorm.DB, tenantID, categoryID uuid.UUID, subCategoryID *uuid.UUID, products []MenuProduct, created *Created) error {
	for _, mp := range products {
		designation := strings.TrimSpace(mp.Designation)
		if designation == "" || mp.Price.IsNegative() {
			created.Skipped++
			continue
		}

		var count int64
		if err := tx.Model(&models.Product{}).
			Where("category_id = ? AND LOWER(designation) = LOWER(?)", categoryID, designation).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			created.Skipped++
			continue
		}

		p := models.Product{
			TenantID:      tenantID,
			Designation:   designation,
			Price:         mp.Price.Round(2),
			CategoryID:    categoryID,
			SubCategoryID: subCategoryID,
		}
		if err := tx.Create(&p).Error; err != nil {
			return err
		}
		created.Products++
	}
	return nil
}

func countProducts(mc MenuCategory) int {
	n := len(mc.Products)
	for _, ms := range mc.SubCategories {
		n += len(ms.Products)
	}
	return n
}
