package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// RequireAuth validates bearer tokens and stores the resolved Identity in
// locals. Requests without a valid token are rejected.
func RequireAuth(secret string) fiber.Handler {
	secretBytes := []byte(secret)
	return func(c *fiber.Ctx) error {
		token := bearerFromHeader(c.Get("Authorization"))
		if token == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
		}

		identity, err := identityFromToken(token, secretBytes)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}

		c.Locals(identityLocal, identity)
		return c.Next()
	}
}

// OptionalAuth resolves an Identity when a valid bearer token is present and
// lets the request through as anonymous otherwise. Used on view paths where
// anonymous access is legitimate and the permission evaluator decides.
func OptionalAuth(secret string) fiber.Handler {
	secretBytes := []byte(secret)
	return func(c *fiber.Ctx) error {
		token := bearerFromHeader(c.Get("Authorization"))
		if token != "" {
			if identity, err := identityFromToken(token, secretBytes); err == nil {
				c.Locals(identityLocal, identity)
			}
		}
		return c.Next()
	}
}

// RequireAdmin rejects callers whose Identity does not carry the admin role.
// Must run after RequireAuth.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !IdentityFrom(c).IsAdmin() {
			return fiber.NewError(fiber.StatusForbidden, "admin role required")
		}
		return c.Next()
	}
}

var parseMiddlewareClaimsFn = jwt.ParseWithClaims

func identityFromToken(token string, secret []byte) (Identity, error) {
	parsed, err := parseMiddlewareClaimsFn(token, &Claims{}, func(_ *jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil {
		return Identity{}, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return Identity{}, errTokenInvalid
	}
	return Authenticated(claims.UserID, claims.Role), nil
}

var errTokenInvalid = errors.New("token invalid")

func bearerFromHeader(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
