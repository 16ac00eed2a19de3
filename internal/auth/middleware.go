package auth

import (
	"fmt"
	"strings"

	"caterer-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	CtxUserIDKey   = "user_id"
	CtxUserNameKey = "user_name"
	CtxUserRoleKey = "user_role"
	CtxTenantIDKey = "tenant_id"

	CtxMustChangePasswordKey = "must_change_password"
)

// Actor: isteği yapan kullanıcı (audit kayıtları için)
type Actor struct {
	UserID   uuid.UUID
	Name     string
	TenantID uuid.UUID
}

func JWTMiddleware(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "En-tête Authorization manquant")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return fiber.NewError(fiber.StatusUnauthorized, "Format attendu : 'Bearer <token>'")
		}

		token, err := jwt.ParseWithClaims(parts[1], &JWTCustomClaims{}, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("geçersiz imzalama yöntemi")
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			return fiber.NewError(fiber.StatusUnauthorized, "Jeton invalide ou expiré")
		}

		claims, ok := token.Claims.(*JWTCustomClaims)
		if !ok || claims.TenantID == uuid.Nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Jeton illisible")
		}

		c.Locals(CtxUserIDKey, claims.UserID)
		c.Locals(CtxUserNameKey, claims.Name)
		c.Locals(CtxUserRoleKey, claims.Role)
		c.Locals(CtxTenantIDKey, claims.TenantID)
		c.Locals(CtxMustChangePasswordKey, claims.MustChangePassword)

		return c.Next()
	}
}

func RequireRole(allowedRoles ...models.UserRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals(CtxUserRoleKey).(models.UserRole)
		if !ok {
			return fiber.NewError(fiber.StatusForbidden, "Rôle introuvable")
		}

		for _, r := range allowedRoles {
			if r == role {
				return c.Next()
			}
		}
		return fiber.NewError(fiber.StatusForbidden, "Action non autorisée")
	}
}

// RequirePasswordChanged blocks accounts that still use their generated password.
func RequirePasswordChanged() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if must, _ := c.Locals(CtxMustChangePasswordKey).(bool); must {
			return fiber.NewError(fiber.StatusForbidden, "Vous devez changer votre mot de passe")
		}
		return c.Next()
	}
}

// TenantID: JWT'den gelen tenant; tüm katalog ve sipariş sorguları bununla sınırlanır
func TenantID(c *fiber.Ctx) (uuid.UUID, error) {
	id, ok := c.Locals(CtxTenantIDKey).(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "Organisation inconnue")
	}
	return id, nil
}

func CurrentActor(c *fiber.Ctx) (Actor, error) {
	tenantID, err := TenantID(c)
	if err != nil {
		return Actor{}, err
	}
	userID, _ := c.Locals(CtxUserIDKey).(uuid.UUID)
	name, _ := c.Locals(CtxUserNameKey).(string)
	return Actor{UserID: userID, Name: name, TenantID: tenantID}, nil
}
