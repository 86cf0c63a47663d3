package auth

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/poll-service/internal/domain"
)

const principalKey = "auth_principal"

// SessionResolver turns a session token into a user. An empty token or a
// dead session yields (nil, nil): anonymous, not an error.
type SessionResolver interface {
	ResolveSession(ctx context.Context, token string) (*domain.User, error)
}

// SessionMiddleware loads the request identity from the session cookie and
// enforces the guest/authenticated guards.
type SessionMiddleware struct {
	resolver   SessionResolver
	cookieName string
}

// NewSessionMiddleware constructs middleware.
func NewSessionMiddleware(resolver SessionResolver, cookieName string) *SessionMiddleware {
	return &SessionMiddleware{resolver: resolver, cookieName: cookieName}
}

// CookieName returns the configured session cookie name.
func (m *SessionMiddleware) CookieName() string {
	return m.cookieName
}

// LoadIdentity resolves the session cookie into a principal, if any, and
// always lets the request continue. Identity is stashed on the request and
// passed explicitly into every workflow call by the handlers.
func (m *SessionMiddleware) LoadIdentity(c *fiber.Ctx) error {
	token := c.Cookies(m.cookieName)
	if token != "" {
		user, err := m.resolver.ResolveSession(c.UserContext(), token)
		if err != nil {
			return err
		}
		if user != nil {
			c.Locals(principalKey, user)
		}
	}
	return c.Next()
}

// RequireAuthenticated redirects anonymous callers to the login form.
func (m *SessionMiddleware) RequireAuthenticated(c *fiber.Ctx) error {
	if _, ok := UserFromContext(c); !ok {
		return c.Redirect("/login", fiber.StatusFound)
	}
	return c.Next()
}

// RequireGuest redirects already-authenticated callers home; a logged-in
// user does not re-register or re-login.
func (m *SessionMiddleware) RequireGuest(c *fiber.Ctx) error {
	if _, ok := UserFromContext(c); ok {
		return c.Redirect("/", fiber.StatusFound)
	}
	return c.Next()
}

// UserFromContext retrieves the authenticated user, if any.
func UserFromContext(c *fiber.Ctx) (*domain.User, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	user, ok := val.(*domain.User)
	return user, ok
}
