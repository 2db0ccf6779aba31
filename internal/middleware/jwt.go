package middleware

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/noah-isme/gema-interpret-api/internal/utils"
)

// Locals keys populated by JWTProtected.
const (
	LocalUserID   = "user_id"
	LocalUserRole = "user_role"
)

// AuthClaims is the token payload issued by the identity service. The user id is
// carried in "sub"; older tokens use "user_id".
type AuthClaims struct {
	UserID json.Number `json:"user_id,omitempty"`
	Role   string      `json:"role"`
	jwt.RegisteredClaims
}

// UserIDValue resolves the numeric user id from the token.
func (c AuthClaims) UserIDValue() (uint, error) {
	raw := strings.TrimSpace(c.Subject)
	if raw == "" {
		raw = c.UserID.String()
	}
	if raw == "" {
		return 0, errors.New("token carries no user id")
	}

	parsed, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || parsed == 0 {
		return 0, errors.New("token user id is invalid")
	}
	return uint(parsed), nil
}

// JWTProtected returns a middleware that validates HMAC-signed bearer tokens.
func JWTProtected(secret string) fiber.Handler {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}))
	keyFunc := func(*jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}

	return func(c *fiber.Ctx) error {
		authorization := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
		if authorization == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "authorization header missing")
		}

		scheme, tokenString, found := strings.Cut(authorization, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(tokenString) == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid authorization header")
		}

		var claims AuthClaims
		token, err := parser.ParseWithClaims(strings.TrimSpace(tokenString), &claims, keyFunc)
		if err != nil || !token.Valid {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		userID, err := claims.UserIDValue()
		if err != nil {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token claims")
		}

		c.Locals(LocalUserID, userID)
		if role := strings.ToLower(strings.TrimSpace(claims.Role)); role != "" {
			c.Locals(LocalUserRole, role)
		}

		return c.Next()
	}
}
