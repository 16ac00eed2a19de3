// Package apperr defines the error kinds shared by services and the HTTP layer.
package apperr

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// ValidationError: istemci girdisi hatalı (eksik alan, adet <= 0, boş kalem listesi...)
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// ConflictError: işlem referans bütünlüğünü veya tekillik kuralını bozar
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// UnresolvedReferenceError: sipariş kalemi mevcut olmayan (veya silinmiş) bir ürünü gösteriyor
type UnresolvedReferenceError struct {
	Entity string
	ID     string
}

func (e *UnresolvedReferenceError) Error() string {
	return fmt.Sprintf("unresolved %s reference %s", e.Entity, e.ID)
}

// UpstreamError: OCR / LLM sağlayıcı hatası veya bozuk yanıt
type UpstreamError struct {
	Service string
	Err     error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Service, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

func Validation(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

func NotFound(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

func Conflict(msg string) error {
	return &ConflictError{Message: msg}
}

func Unresolved(entity, id string) error {
	return &UnresolvedReferenceError{Entity: entity, ID: id}
}

func Upstream(service string, err error) error {
	return &UpstreamError{Service: service, Err: err}
}

// ToFiber: servis hatalarını kullanıcıya gösterilecek kısa mesajlı fiber.Error'a çevirir.
// Tanınmayan hatalar nil döner; bunlar ErrorHandler'da 500 olarak loglanır.
func ToFiber(err error) *fiber.Error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe
	}

	var ve *ValidationError
	if errors.As(err, &ve) {
		return fiber.NewError(fiber.StatusBadRequest, ve.Error())
	}

	var nf *NotFoundError
	if errors.As(err, &nf) {
		return fiber.NewError(fiber.StatusNotFound, notFoundMessage(nf.Entity))
	}

	var ce *ConflictError
	if errors.As(err, &ce) {
		return fiber.NewError(fiber.StatusConflict, ce.Message)
	}

	var ur *UnresolvedReferenceError
	if errors.As(err, &ur) {
		return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Référence introuvable (%s %s)", ur.Entity, ur.ID))
	}

	var ue *UpstreamError
	if errors.As(err, &ue) {
		return fiber.NewError(fiber.StatusBadGateway, "Le service externe a échoué, réessayez plus tard")
	}

	return nil
}

func notFoundMessage(entity string) string {
	switch entity {
	case "category":
		return "Catégorie introuvable"
	case "sub_category":
		return "Sous-catégorie introuvable"
	case "product":
		return "Produit introuvable"
	case "order":
		return "Commande introuvable"
	case "pickup_day":
		return "Jour introuvable"
	}
	return "Introuvable"
}
