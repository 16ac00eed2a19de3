package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"strings"

	"caterer-backend/internal/apperr"
	"caterer-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

const minPasswordLength = 8

type RegisterOrganizationRequest struct {
	OrganisationName string `json:"organisationName"`
	AdminEmail       string `json:"adminEmail"`
	MemberEmail      string `json:"memberEmail"`
}

type RegisteredUser struct {
	ID       uuid.UUID       `json:"id"`
	Email    string          `json:"email"`
	Role     models.UserRole `json:"role"`
	Password string          `json:"password"` // tek seferlik gösterilir, saklanmaz
}

type Registration struct {
	Organization models.Tenant  `json:"organization"`
	Admin        RegisteredUser `json:"admin"`
	Member       RegisteredUser `json:"member"`
}

const passwordCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*()_+-=?"

// generatePassword: en az bir küçük harf, büyük harf, rakam ve sembol içerir
func generatePassword(length int) (string, error) {
	var sb strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(passwordCharset))))
		if err != nil {
			return "", err
		}
		sb.WriteByte(passwordCharset[n.Int64()])
	}
	pw := sb.String()
	if !strings.ContainsAny(pw, "abcdefghijklmnopqrstuvwxyz") {
		pw += "a"
	}
	if !strings.ContainsAny(pw, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		pw += "A"
	}
	if !strings.ContainsAny(pw, "0123456789") {
		pw += "1"
	}
	if !strings.ContainsAny(pw, "!@#$%^&*()_+-=?") {
		pw += "!"
	}
	return pw, nil
}

// RegisterOrganization creates a tenant with one admin and one member account.
func RegisterOrganization(ctx context.Context, db *gorm.DB, req RegisterOrganizationRequest) (*Registration, error) {
	name := strings.TrimSpace(req.OrganisationName)
	adminEmail := strings.TrimSpace(strings.ToLower(req.AdminEmail))
	memberEmail := strings.TrimSpace(strings.ToLower(req.MemberEmail))

	if name == "" || adminEmail == "" || memberEmail == "" {
		return nil, apperr.Validation("", "Champs requis : organisationName, adminEmail, memberEmail")
	}
	if adminEmail == memberEmail {
		return nil, apperr.Validation("memberEmail", "doit être différent de adminEmail")
	}

	reg := &Registration{}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("email IN ?", []string{adminEmail, memberEmail}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return apperr.Conflict("Un utilisateur existe déjà avec cet email")
		}

		tenant := models.Tenant{Name: name}
		if err := tx.Create(&tenant).Error; err != nil {
			return err
		}
		reg.Organization = tenant

		admin, err := createUser(tx, tenant.ID, adminEmail, "Admin", models.RoleAdmin)
		if err != nil {
			return err
		}
		member, err := createUser(tx, tenant.ID, memberEmail, "Membre", models.RoleUser)
		if err != nil {
			return err
		}
		reg.Admin, reg.Member = *admin, *member
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reg, nil
}

func createUser(tx *gorm.DB, tenantID uuid.UUID, email, name string, role models.UserRole) (*RegisteredUser, error) {
	password, err := generatePassword(16)
	if err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := models.User{
		TenantID:           tenantID,
		Name:               name,
		Email:              email,
		PasswordHash:       string(hash),
		Role:               role,
		MustChangePassword: true,
	}
	if err := tx.Create(&user).Error; err != nil {
		return nil, err
	}
	return &RegisteredUser{ID: user.ID, Email: email, Role: role, Password: password}, nil
}

// POST /api/public/organizations
func RegisterOrganizationHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body RegisterOrganizationRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Corps de requête invalide")
		}

		reg, err := RegisterOrganization(c.UserContext(), db, body)
		if err != nil {
			return err
		}

		log.Info().
			Str("tenant_id", reg.Organization.ID.String()).
			Str("admin", reg.Admin.Email).
			Str("member", reg.Member.Email).
			Msg("organization registered")

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"success":      true,
			"organization": reg.Organization,
			"users": fiber.Map{
				"admin":  reg.Admin,
				"member": reg.Member,
			},
		})
	}
}

// POST /api/auth/login
func LoginHandler(db *gorm.DB, secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LoginRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Corps de requête invalide")
		}

		body.Email = strings.TrimSpace(strings.ToLower(body.Email))

		var user models.User
		if err := db.WithContext(c.UserContext()).Where("email = ?", body.Email).First(&user).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			return fiber.NewError(fiber.StatusUnauthorized, "Email ou mot de passe incorrect")
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(body.Password)); err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Email ou mot de passe incorrect")
		}

		token, err := GenerateToken(secret, &user)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Impossible de générer le jeton")
		}

		return c.JSON(fiber.Map{
			"token": token,
			"user":  userPayload(&user),
		})
	}
}

// POST /api/auth/password
// Kayıtta üretilen şifre tek kullanımlıktır; yeni şifre kaydedilince bayrak kalkar ve yeni token döner
func ChangePasswordHandler(db *gorm.DB, secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, _ := c.Locals(CtxUserIDKey).(uuid.UUID)

		var body ChangePasswordRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Corps de requête invalide")
		}
		if len([]rune(body.NewPassword)) < minPasswordLength {
			return apperr.Validation("newPassword", "au moins 8 caractères")
		}
		if body.NewPassword == body.CurrentPassword {
			return apperr.Validation("newPassword", "doit être différent du mot de passe actuel")
		}

		var user models.User
		if err := db.WithContext(c.UserContext()).First(&user, "id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusUnauthorized, "Utilisateur introuvable")
			}
			return err
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(body.CurrentPassword)); err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Mot de passe actuel incorrect")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		if err := db.WithContext(c.UserContext()).Model(&user).Updates(map[string]any{
			"password_hash":        string(hash),
			"must_change_password": false,
		}).Error; err != nil {
			return err
		}
		user.PasswordHash = string(hash)
		user.MustChangePassword = false

		token, err := GenerateToken(secret, &user)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Impossible de générer le jeton")
		}

		log.Info().Str("user_id", user.ID.String()).Msg("password changed")
		return c.JSON(fiber.Map{
			"token": token,
			"user":  userPayload(&user),
		})
	}
}

func userPayload(user *models.User) fiber.Map {
	return fiber.Map{
		"id":                 user.ID,
		"name":               user.Name,
		"email":              user.Email,
		"role":               user.Role,
		"tenantId":           user.TenantID,
		"mustChangePassword": user.MustChangePassword,
	}
}

// GET /api/auth/me
func MeHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, _ := c.Locals(CtxUserIDKey).(uuid.UUID)

		var user models.User
		if err := db.WithContext(c.UserContext()).Preload("Tenant").First(&user, "id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusUnauthorized, "Utilisateur introuvable")
			}
			return err
		}

		res := userPayload(&user)
		if user.Tenant != nil {
			res["organization"] = fiber.Map{"id": user.Tenant.ID, "name": user.Tenant.Name}
		}
		return c.JSON(res)
	}
}
