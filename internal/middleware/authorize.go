package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"terravista/internal/auth"
	"terravista/internal/model"
)

// UserContextKey is the locals key the authenticated user is stored
// under once a request clears the gate.
const UserContextKey = "user"

// Authorize builds the gate for protected routes. It verifies the
// bearer token as an access token, loads the user, and checks the
// requested capabilities against the user's role. Capabilities missing
// from the role table fail closed.
func Authorize(tokens *auth.TokenService, users auth.UserStore, capabilities ...auth.Capability) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, ok := bearerToken(c)
		if !ok {
			return auth.ErrPleaseAuthenticate
		}

		claims, err := tokens.Verify(tokenString, model.TokenTypeAccess)
		if err != nil {
			return auth.ErrPleaseAuthenticate
		}

		userID, err := claims.UserUUID()
		if err != nil {
			return auth.ErrPleaseAuthenticate
		}

		user, err := users.GetByID(c.UserContext(), userID)
		if err != nil {
			return auth.ErrPleaseAuthenticate
		}

		for _, capability := range capabilities {
			if !auth.RoleGrants(user.Role, capability) {
				return auth.ErrInsufficientRole
			}
		}

		c.Locals(UserContextKey, user)

		return c.Next()
	}
}

// CurrentUser returns the authenticated user stashed by Authorize
func CurrentUser(c *fiber.Ctx) (*model.User, bool) {
	user, ok := c.Locals(UserContextKey).(*model.User)
	return user, ok
}

func bearerToken(c *fiber.Ctx) (string, bool) {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return "", false
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}

	return token, true
}
