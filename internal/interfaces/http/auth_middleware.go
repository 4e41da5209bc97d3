package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/fixmation/DigiFarmacy-sub001/internal/application/dto"
	"github.com/fixmation/DigiFarmacy-sub001/pkg/jwt"
)

// Locals keys para UserID y PharmacyID en Fiber.
const (
	LocalUserID     = "user_id"
	LocalPharmacyID = "pharmacy_id"
)

// AuthMiddleware valida el Bearer Token JWT y extrae UserID y PharmacyID a c.Locals.
func AuthMiddleware(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "Authorization header requerido"})
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "formato: Bearer <token>"})
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "token vacío"})
		}
		userID, pharmacyID, err := jwt.Parse(jwtSecret, tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
		}
		c.Locals(LocalUserID, userID)
		c.Locals(LocalPharmacyID, pharmacyID)
		return c.Next()
	}
}

// GetUserID devuelve el UserID del contexto (después del middleware de auth).
func GetUserID(c *fiber.Ctx) string {
	v := c.Locals(LocalUserID)
	if v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}

// GetPharmacyID devuelve el PharmacyID del contexto (después del middleware de auth).
func GetPharmacyID(c *fiber.Ctx) string {
	v := c.Locals(LocalPharmacyID)
	if v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}
