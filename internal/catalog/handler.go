package catalog

import (
	"bytes"
	"encoding/json"

	"caterer-backend/internal/apperr"
	"caterer-backend/internal/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// EntityKind is the catalog entity a multiplexed request targets.
type EntityKind int

const (
	KindCategory EntityKind = iota + 1
	KindSubCategory
	KindProduct
)

func (k EntityKind) String() string {
	switch k {
	case KindCategory:
		return "category"
	case KindSubCategory:
		return "subCategory"
	case KindProduct:
		return "product"
	}
	return "unknown"
}

func ParseEntityKind(s string) (EntityKind, error) {
	switch s {
	case "category":
		return KindCategory, nil
	case "subCategory":
		return KindSubCategory, nil
	case "product":
		return KindProduct, nil
	}
	return 0, apperr.Validation("type", "doit être category, subCategory ou product")
}

// entityOps: her varlık türü için tek bir işlem seti; çoklu endpoint ve REST route'ları aynı fonksiyonları kullanır
type entityOps struct {
	create func(c *fiber.Ctx, svc *Service, body []byte) (any, error)
	update func(c *fiber.Ctx, svc *Service, id uuid.UUID, body []byte) (any, error)
	remove func(c *fiber.Ctx, svc *Service, id uuid.UUID) error
}

var operations = map[EntityKind]entityOps{
	KindCategory:    {create: createCategory, update: updateCategory, remove: deleteCategory},
	KindSubCategory: {create: createSubCategory, update: updateSubCategory, remove: deleteSubCategory},
	KindProduct:     {create: createProduct, update: updateProduct, remove: deleteProduct},
}

// OptionalUUID distinguishes an absent JSON field from an explicit null.
type OptionalUUID struct {
	Set   bool
	Value *uuid.UUID
}

func (o *OptionalUUID) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		o.Value = nil
		return nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return err
	}
	o.Value = &id
	return nil
}

type categoryRequest struct {
	Name *string `json:"name"`
}

type subCategoryRequest struct {
	Name       *string `json:"name"`
	CategoryID *string `json:"categoryId"`
}

type productRequest struct {
	Designation   *string          `json:"designation"`
	Price         *decimal.Decimal `json:"price"`
	CategoryID    *string          `json:"categoryId"`
	SubCategoryID OptionalUUID     `json:"subCategoryId"`
}

type envelope struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// GET /api/catalog
func GetCatalogHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenantID, err := auth.TenantID(c)
		if err != nil {
			return err
		}
		snap, err := svc.Catalog(c.UserContext(), tenantID)
		if err != nil {
			log.Error().Err(err).Str("tenant_id", tenantID.String()).Msg("catalog fetch failed")
			return err
		}
		return c.JSON(snap)
	}
}

// POST /api/catalog  {type, ...}
func CreateEntityHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var env envelope
		if err := json.Unmarshal(c.Body(), &env); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Corps de requête invalide")
		}
		kind, err := ParseEntityKind(env.Type)
		if err != nil {
			return err
		}
		res, err := operations[kind].create(c, svc, c.Body())
		if err != nil {
			logFailure(err, "create", kind, "")
			return err
		}
		return c.JSON(res)
	}
}

// PUT /api/catalog  {type, id, ...}
func UpdateEntityHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var env envelope
		if err := json.Unmarshal(c.Body(), &env); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Corps de requête invalide")
		}
		if env.ID == "" {
			return apperr.Validation("id", "requis")
		}
		kind, err := ParseEntityKind(env.Type)
		if err != nil {
			return err
		}
		id, err := uuid.Parse(env.ID)
		if err != nil {
			return apperr.NotFound(entityName(kind), env.ID)
		}
		res, err := operations[kind].update(c, svc, id, c.Body())
		if err != nil {
			logFailure(err, "update", kind, env.ID)
			return err
		}
		return c.JSON(res)
	}
}

// DELETE /api/catalog?type=...&id=...
func DeleteEntityHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		typ, rawID := c.Query("type"), c.Query("id")
		if typ == "" || rawID == "" {
			return apperr.Validation("", "type et id sont requis")
		}
		kind, err := ParseEntityKind(typ)
		if err != nil {
			return err
		}
		id, err := uuid.Parse(rawID)
		if err != nil {
			return apperr.NotFound(entityName(kind), rawID)
		}
		if err := operations[kind].remove(c, svc, id); err != nil {
			logFailure(err, "delete", kind, rawID)
			return err
		}
		return c.JSON(fiber.Map{"success": true})
	}
}

// KindHandlers exposes the same operations as plain REST routes for one entity kind.
type KindHandlers struct {
	Create fiber.Handler
	Update fiber.Handler
	Delete fiber.Handler
}

func HandlersFor(kind EntityKind, svc *Service) KindHandlers {
	ops := operations[kind]
	return KindHandlers{
		Create: func(c *fiber.Ctx) error {
			res, err := ops.create(c, svc, c.Body())
			if err != nil {
				logFailure(err, "create", kind, "")
				return err
			}
			return c.JSON(res)
		},
		Update: func(c *fiber.Ctx) error {
			id, err := uuid.Parse(c.Params("id"))
			if err != nil {
				return apperr.NotFound(entityName(kind), c.Params("id"))
			}
			res, err := ops.update(c, svc, id, c.Body())
			if err != nil {
				logFailure(err, "update", kind, id.String())
				return err
			}
			return c.JSON(res)
		},
		Delete: func(c *fiber.Ctx) error {
			id, err := uuid.Parse(c.Params("id"))
			if err != nil {
				return apperr.NotFound(entityName(kind), c.Params("id"))
			}
			if err := ops.remove(c, svc, id); err != nil {
				logFailure(err, "delete", kind, id.String())
				return err
			}
			return c.JSON(fiber.Map{"success": true})
		},
	}
}

func createCategory(c *fiber.Ctx, svc *Service, body []byte) (any, error) {
	actor, err := auth.CurrentActor(c)
	if err != nil {
		return nil, err
	}
	var req categoryRequest
	if err := decode(body, &req); err != nil {
		return nil, err
	}
	if req.Name == nil {
		return nil, apperr.Validation("name", "requis")
	}
	return svc.CreateCategory(c.UserContext(), actor, *req.Name)
}

func updateCategory(c *fiber.Ctx, svc *Service, id uuid.UUID, body []byte) (any, error) {
	actor, err := auth.CurrentActor(c)
	if err != nil {
		return nil, err
	}
	var req categoryRequest
	if err := decode(body, &req); err != nil {
		return nil, err
	}
	return svc.UpdateCategory(c.UserContext(), actor, id, req.Name)
}

func deleteCategory(c *fiber.Ctx, svc *Service, id uuid.UUID) error {
	actor, err := auth.CurrentActor(c)
	if err != nil {
		return err
	}
	return svc.DeleteCategory(c.UserContext(), actor, id)
}

func createSubCategory(c *fiber.Ctx, svc *Service, body []byte) (any, error) {
	actor, err := auth.CurrentActor(c)
	if err != nil {
		return nil, err
	}
	var req subCategoryRequest
	if err := decode(body, &req); err != nil {
		return nil, err
	}
	if req.Name == nil {
		return nil, apperr.Validation("name", "requis")
	}
	if req.CategoryID == nil || *req.CategoryID == "" {
		return nil, apperr.Validation("categoryId", "requis")
	}
	categoryID, err := parseRef("categoryId", *req.CategoryID)
	if err != nil {
		return nil, err
	}
	return svc.CreateSubCategory(c.UserContext(), actor, *req.Name, categoryID)
}

func updateSubCategory(c *fiber.Ctx, svc *Service, id uuid.UUID, body []byte) (any, error) {
	actor, err := auth.CurrentActor(c)
	if err != nil {
		return nil, err
	}
	var req subCategoryRequest
	if err := decode(body, &req); err != nil {
		return nil, err
	}
	patch := SubCategoryPatch{Name: req.Name}
	if req.CategoryID != nil && *req.CategoryID != "" {
		categoryID, err := parseRef("categoryId", *req.CategoryID)
		if err != nil {
			return nil, err
		}
		patch.CategoryID = &categoryID
	}
	return svc.UpdateSubCategory(c.UserContext(), actor, id, patch)
}

func deleteSubCategory(c *fiber.Ctx, svc *Service, id uuid.UUID) error {
	actor, err := auth.CurrentActor(c)
	if err != nil {
		return err
	}
	return svc.DeleteSubCategory(c.UserContext(), actor, id)
}

func createProduct(c *fiber.Ctx, svc *Service, body []byte) (any, error) {
	actor, err := auth.CurrentActor(c)
	if err != nil {
		return nil, err
	}
	var req productRequest
	if err := decode(body, &req); err != nil {
		return nil, err
	}
	if req.Designation == nil {
		return nil, apperr.Validation("designation", "requis")
	}
	if req.Price == nil {
		return nil, apperr.Validation("price", "requis")
	}
	if req.CategoryID == nil || *req.CategoryID == "" {
		return nil, apperr.Validation("categoryId", "requis")
	}
	categoryID, err := parseRef("categoryId", *req.CategoryID)
	if err != nil {
		return nil, err
	}
	return svc.CreateProduct(c.UserContext(), actor, ProductInput{
		Designation:   *req.Designation,
		Price:         *req.Price,
		CategoryID:    categoryID,
		SubCategoryID: req.SubCategoryID.Value,
	})
}

func updateProduct(c *fiber.Ctx, svc *Service, id uuid.UUID, body []byte) (any, error) {
	actor, err := auth.CurrentActor(c)
	if err != nil {
		return nil, err
	}
	var req productRequest
	if err := decode(body, &req); err != nil {
		return nil, err
	}
	patch := ProductPatch{
		Designation:    req.Designation,
		Price:          req.Price,
		SubCategorySet: req.SubCategoryID.Set,
		SubCategoryID:  req.SubCategoryID.Value,
	}
	if req.CategoryID != nil && *req.CategoryID != "" {
		categoryID, err := parseRef("categoryId", *req.CategoryID)
		if err != nil {
			return nil, err
		}
		patch.CategoryID = &categoryID
	}
	return svc.UpdateProduct(c.UserContext(), actor, id, patch)
}

func deleteProduct(c *fiber.Ctx, svc *Service, id uuid.UUID) error {
	actor, err := auth.CurrentActor(c)
	if err != nil {
		return err
	}
	return svc.DeleteProduct(c.UserContext(), actor, id)
}

func decode(body []byte, v any) error {
	if err := json.Unmarshal(body, v); err != nil {
		return apperr.Validation("", "corps de requête invalide")
	}
	return nil
}

func parseRef(field, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperr.Validation(field, "identifiant invalide")
	}
	return id, nil
}

func entityName(kind EntityKind) string {
	switch kind {
	case KindCategory:
		return entityCategory
	case KindSubCategory:
		return entitySubCategory
	case KindProduct:
		return entityProduct
	}
	return kind.String()
}

func logFailure(err error, op string, kind EntityKind, id string) {
	event := log.Warn()
	if apperr.ToFiber(err) == nil {
		event = log.Error()
	}
	event.Err(err).Str("op", op).Str("entity", kind.String()).Str("id", id).Msg("catalog operation failed")
}
