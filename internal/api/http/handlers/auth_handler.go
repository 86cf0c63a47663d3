package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/poll-service/internal/api/dto"
	"github.com/spec-kit/poll-service/internal/service"
	apperrors "github.com/spec-kit/poll-service/pkg/util"
)

// AuthHandler exposes registration, login and logout.
type AuthHandler struct {
	auth       *service.AuthService
	cookieName string
	cookieTTL  time.Duration
	secure     bool
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, cookieName string, cookieTTL time.Duration, secure bool) *AuthHandler {
	return &AuthHandler{auth: authService, cookieName: cookieName, cookieTTL: cookieTTL, secure: secure}
}

// RegisterForm handles GET /register. Rendering is left to the client; the
// route only confirms the guest may proceed.
func (h *AuthHandler) RegisterForm(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"page": "register"})
}

// Register handles POST /register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.CredentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	if _, err := h.auth.Register(c.UserContext(), req.Username, req.Password); err != nil {
		return err
	}
	return c.Redirect("/login", fiber.StatusFound)
}

// LoginForm handles GET /login.
func (h *AuthHandler) LoginForm(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"page": "login"})
}

// Login handles POST /login. Failures send the caller back to the login
// form without saying what was wrong.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.CredentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Redirect("/login", fiber.StatusFound)
	}

	_, token, err := h.auth.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		if apperrors.IsCode(err, "AUTH_FAILED") {
			return c.Redirect("/login", fiber.StatusFound)
		}
		return err
	}

	h.setSessionCookie(c, token)
	return c.Redirect("/", fiber.StatusFound)
}

// Logout handles POST /logout. Safe to call without a live session.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	token := c.Cookies(h.cookieName)
	if err := h.auth.Logout(c.UserContext(), token); err != nil {
		return err
	}
	h.clearSessionCookie(c)
	return c.Redirect("/", fiber.StatusFound)
}

func (h *AuthHandler) setSessionCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     h.cookieName,
		Value:    token,
		Expires:  time.Now().Add(h.cookieTTL),
		HTTPOnly: true,
		Secure:   h.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})
}

func (h *AuthHandler) clearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   h.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})
}
