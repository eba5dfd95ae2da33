package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"medstock/internal/auth"
	"medstock/internal/http/response"
	"medstock/internal/model"
	"medstock/internal/service"
)

const (
	// UserLocalKey holds the authenticated *model.User.
	UserLocalKey = "user"
	// ClaimsLocalKey holds the verified *auth.Claims of the bearer token.
	ClaimsLocalKey = "claims"
)

// Authenticator verifies bearer tokens.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*model.User, *auth.Claims, error)
}

// RequireAuth rejects requests without a valid, unrevoked bearer token with
// 401 UNAUTHORIZED and stores the account and claims in locals otherwise.
func RequireAuth(a Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return response.Error(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
		}
		user, claims, err := a.Authenticate(c.UserContext(), token)
		if err != nil {
			if errors.Is(err, service.ErrUnauthorized) {
				return response.Error(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "invalid or expired token")
			}
			return err
		}
		c.Locals(UserLocalKey, user)
		c.Locals(ClaimsLocalKey, claims)
		return c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// CurrentUser returns the account stored by RequireAuth, or nil.
func CurrentUser(c *fiber.Ctx) *model.User {
	u, _ := c.Locals(UserLocalKey).(*model.User)
	return u
}

// CurrentClaims returns the token claims stored by RequireAuth, or nil.
func CurrentClaims(c *fiber.Ctx) *auth.Claims {
	cl, _ := c.Locals(ClaimsLocalKey).(*auth.Claims)
	return cl
}
