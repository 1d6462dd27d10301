package middleware

import (
	"strconv"
	"strings"

	"quill/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var cfg *config.Config

// InitMiddleware initializes authentication middleware with the given config.
func InitMiddleware(c *config.Config) {
	cfg = c
}

// AuthRequired is a middleware that enforces authentication for protected routes.
// On success it stores the caller's user ID and session ID in Fiber locals.
func AuthRequired(c *fiber.Ctx) error {
	userID, sessionID, err := parseBearer(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	c.Locals("userID", userID)
	if sessionID != uuid.Nil {
		c.Locals("sessionID", sessionID)
	}

	return c.Next()
}

// OptionalAuth resolves the caller's identity when a token is supplied but
// lets anonymous requests through. Used by read endpoints whose results are
// viewer-dependent.
func OptionalAuth(c *fiber.Ctx) error {
	if c.Get("Authorization") == "" {
		return c.Next()
	}

	userID, sessionID, err := parseBearer(c)
	if err != nil {
		// A malformed token is rejected rather than downgraded to anonymous.
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	c.Locals("userID", userID)
	if sessionID != uuid.Nil {
		c.Locals("sessionID", sessionID)
	}

	return c.Next()
}

// parseBearer validates the Authorization header and extracts the user ID
// ("sub" claim) and session ID ("sid" claim) from the JWT.
func parseBearer(c *fiber.Ctx) (uint, uuid.UUID, error) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return 0, uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "Authorization header required")
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return 0, uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid authorization header format")
	}

	token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return 0, uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid token claims")
	}

	subClaim, ok := claims["sub"]
	if !ok {
		return 0, uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid token structure - missing subject")
	}
	subStr, ok := subClaim.(string)
	if !ok {
		return 0, uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid token subject type")
	}
	userIDVal, err := strconv.ParseUint(subStr, 10, 32)
	if err != nil {
		return 0, uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid user ID in token")
	}

	sessionID := uuid.Nil
	if sidClaim, ok := claims["sid"]; ok {
		if sidStr, ok := sidClaim.(string); ok {
			if sid, err := uuid.Parse(sidStr); err == nil {
				sessionID = sid
			}
		}
	}

	return uint(userIDVal), sessionID, nil
}
