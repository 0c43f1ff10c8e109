package handlers

import (
	"crypto/subtle"
	"log/slog"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	config "github.com/maheshrc27/socialpro/configs"
	"github.com/maheshrc27/socialpro/internal/service"
	"github.com/maheshrc27/socialpro/pkg/utils"
)

const (
	sessionDuration    = 24 * time.Hour
	loginStateDuration = 10 * time.Minute
)

type AuthHandler struct {
	s   service.AuthService
	cfg config.Config
	key []byte
}

func NewAuthHandler(cfg config.Config, sessionKey []byte, service service.AuthService) *AuthHandler {
	return &AuthHandler{s: service, cfg: cfg, key: sessionKey}
}

func (h *AuthHandler) stateCookie() string {
	return h.cfg.CookieName + "_state"
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	state, err := utils.GenerateState()
	if err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "something went wrong",
		})
	}

	c.Cookie(&fiber.Cookie{
		Name:     h.stateCookie(),
		Value:    state,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/login",
		Expires:  time.Now().Add(loginStateDuration),
	})

	return c.Redirect(h.s.LoginURL(state))
}

func (h *AuthHandler) LoginCallbackHandler(c *fiber.Ctx) error {
	expected := c.Cookies(h.stateCookie())
	c.Cookie(&fiber.Cookie{
		Name:   h.stateCookie(),
		Value:  "",
		Path:   "/login",
		MaxAge: -1,
	})

	state := c.Query("state")
	if expected == "" || subtle.ConstantTimeCompare([]byte(expected), []byte(state)) != 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid login state",
		})
	}

	userID, err := h.s.LoginCallback(c.Context(), c.Query("code"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "something went wrong",
		})
	}

	token, err := utils.GenerateToken(h.key, strconv.FormatInt(userID, 10), sessionDuration)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "something went wrong",
		})
	}

	c.Cookie(&fiber.Cookie{
		Name:     h.cfg.CookieName,
		Value:    token,
		HTTPOnly: true,
		Secure:   false,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
		Expires:  time.Now().Add(sessionDuration),
	})

	return c.Redirect(h.cfg.FrontendURL, fiber.StatusTemporaryRedirect)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:   h.cfg.CookieName,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
	return c.SendStatus(fiber.StatusOK)
}
