package orders

import (
	"fmt"
	"time"

	"caterer-backend/internal/apperr"
	"caterer-backend/internal/auth"
	"caterer-backend/internal/calendar"
	"caterer-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type itemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type createOrderRequest struct {
	ClientName string        `json:"clientName"`
	PickupDate string        `json:"pickupDate"`
	Items      []itemRequest `json:"items"`
}

type updateOrderRequest struct {
	ClientName *string        `json:"clientName"`
	PickupDate *string        `json:"pickupDate"`
	Items      *[]itemRequest `json:"items"`
}

// OrderResponse adds the display day and the computed total to an order.
type OrderResponse struct {
	models.Order
	PickupDay string `json:"pickupDay"`
	Total     string `json:"total"`
}

func toResponse(o *models.Order, loc *time.Location) OrderResponse {
	return OrderResponse{
		Order:     *o,
		PickupDay: calendar.Format(o.PickupDate, loc),
		Total:     o.Total().StringFixed(2),
	}
}

// GET /api/orders?period=upcoming|past  veya  ?date=YYYY-MM-DD
func ListOrdersHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenantID, err := auth.TenantID(c)
		if err != nil {
			return err
		}

		var f ListFilter
		if raw := c.Query("date"); raw != "" {
			day, err := calendar.ParseDay(raw, svc.Location())
			if err != nil {
				return apperr.Validation("date", "date invalide (AAAA-MM-JJ)")
			}
			f.Date = &day
		} else {
			f.Period = Period(c.Query("period"))
		}

		list, err := svc.List(c.UserContext(), tenantID, f)
		if err != nil {
			return err
		}
		res := make([]OrderResponse, 0, len(list))
		for i := range list {
			res = append(res, toResponse(&list[i], svc.Location()))
		}
		return c.JSON(res)
	}
}

// POST /api/orders
func CreateOrderHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.CurrentActor(c)
		if err != nil {
			return err
		}

		var body createOrderRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.Validation("", "corps de requête invalide")
		}
		if body.PickupDate == "" {
			return apperr.Validation("pickupDate", "requis")
		}
		day, err := calendar.ParseDay(body.PickupDate, svc.Location())
		if err != nil {
			return apperr.Validation("pickupDate", "date invalide (AAAA-MM-JJ)")
		}
		items, err := parseItems(body.Items)
		if err != nil {
			return err
		}

		order, err := svc.Create(c.UserContext(), actor, CreateInput{
			ClientName: body.ClientName,
			PickupDate: day,
			Items:      items,
		})
		if err != nil {
			logFailure(err, "create", "")
			return err
		}
		return c.JSON(toResponse(order, svc.Location()))
	}
}

// GET /api/orders/:id
func GetOrderHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenantID, err := auth.TenantID(c)
		if err != nil {
			return err
		}
		id, err := parseID(c)
		if err != nil {
			return err
		}
		order, err := svc.Get(c.UserContext(), tenantID, id)
		if err != nil {
			return err
		}
		return c.JSON(toResponse(order, svc.Location()))
	}
}

// PUT /api/orders/:id
func UpdateOrderHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.CurrentActor(c)
		if err != nil {
			return err
		}
		id, err := parseID(c)
		if err != nil {
			return err
		}

		var body updateOrderRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.Validation("", "corps de requête invalide")
		}

		patch := UpdatePatch{ClientName: body.ClientName}
		if body.PickupDate != nil {
			day, err := calendar.ParseDay(*body.PickupDate, svc.Location())
			if err != nil {
				return apperr.Validation("pickupDate", "date invalide (AAAA-MM-JJ)")
			}
			patch.PickupDate = &day
		}
		if body.Items != nil {
			items, err := parseItems(*body.Items)
			if err != nil {
				return err
			}
			patch.Items = &items
		}

		order, err := svc.Update(c.UserContext(), actor, id, patch)
		if err != nil {
			logFailure(err, "update", id.String())
			return err
		}
		return c.JSON(toResponse(order, svc.Location()))
	}
}

// DELETE /api/orders/:id
func DeleteOrderHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.CurrentActor(c)
		if err != nil {
			return err
		}
		id, err := parseID(c)
		if err != nil {
			return err
		}
		if err := svc.Delete(c.UserContext(), actor, id); err != nil {
			logFailure(err, "delete", id.String())
			return err
		}
		return c.JSON(fiber.Map{"success": true})
	}
}

func parseID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, apperr.NotFound(entityOrder, c.Params("id"))
	}
	return id, nil
}

// parseItems: geçersiz bir productId hiçbir ürüne karşılık gelemez
func parseItems(in []itemRequest) ([]ItemInput, error) {
	items := make([]ItemInput, 0, len(in))
	for i, it := range in {
		if it.ProductID == "" {
			return nil, apperr.Validation(fmt.Sprintf("items[%d].productId", i), "requis")
		}
		pid, err := uuid.Parse(it.ProductID)
		if err != nil {
			return nil, apperr.Unresolved("product", it.ProductID)
		}
		items = append(items, ItemInput{ProductID: pid, Quantity: it.Quantity})
	}
	return items, nil
}

func logFailure(err error, op, id string) {
	event := log.Warn()
	if apperr.ToFiber(err) == nil {
		event = log.Error()
	}
	event.Err(err).Str("op", op).Str("entity", entityOrder).Str("id", id).Msg("order operation failed")
}
