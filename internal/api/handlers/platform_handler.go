package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/gofiber/fiber/v2"
	config "github.com/maheshrc27/socialpro/configs"
	"github.com/maheshrc27/socialpro/internal/models"
	"github.com/maheshrc27/socialpro/internal/service"
	"github.com/maheshrc27/socialpro/internal/transfer"
)

type PlatformHandler struct {
	ps  service.PlatformService
	cfg config.Config
}

func NewPlatformHandler(ps service.PlatformService, cfg config.Config) *PlatformHandler {
	return &PlatformHandler{
		ps:  ps,
		cfg: cfg,
	}
}

func (h *PlatformHandler) Connect(c *fiber.Ctx) error {
	platform, err := platformParam(c)
	if err != nil {
		return respondError(c, err)
	}

	authURL, err := h.ps.BeginConnect(c.Context(), GetUserID(c), platform)
	if err != nil {
		return respondError(c, err)
	}
	return c.Redirect(authURL)
}

// Callback always lands the user back on the dashboard with a notification,
// whatever the outcome.
func (h *PlatformHandler) Callback(c *fiber.Ctx) error {
	platform, err := platformParam(c)
	if err != nil {
		return c.Redirect(h.dashboardURL(models.Provider(c.Params("platform")), err.Error()))
	}

	cb := &transfer.OAuthCallback{
		Code:             c.Query("code"),
		State:            c.Query("state"),
		Error:            c.Query("error"),
		ErrorDescription: c.Query("error_description"),
	}

	userID := GetUserID(c)
	if userID == 0 {
		if err := h.ps.AbandonConnect(c.Context(), platform, cb.State); err != nil {
			slog.Info(err.Error())
		}
		return c.Redirect(h.dashboardURL(platform, "your session has expired, sign in and connect again"))
	}

	_, err = h.ps.CompleteConnect(c.Context(), userID, platform, cb)
	if err != nil {
		msg := err.Error()
		var ce *service.ConnectError
		if errors.As(err, &ce) {
			msg = ce.Message()
		}
		return c.Redirect(h.dashboardURL(platform, msg))
	}

	return c.Redirect(h.dashboardURL(platform, ""))
}

func (h *PlatformHandler) dashboardURL(platform models.Provider, errMsg string) string {
	params := url.Values{}
	params.Set("platform", platform.String())
	if errMsg == "" {
		params.Set("connect", "success")
		params.Set("message", fmt.Sprintf("%s connected successfully", platform))
	} else {
		params.Set("connect", "error")
		params.Set("message", errMsg)
	}
	return fmt.Sprintf("%s/dashboard?%s", h.cfg.FrontendURL, params.Encode())
}

func (h *PlatformHandler) ListSocialAccounts(c *fiber.Ctx) error {
	view, err := h.ps.ConnectionView(c.Context(), GetUserID(c))
	if err != nil {
		slog.Info(err.Error())
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(view)
}

func (h *PlatformHandler) Profile(c *fiber.Ctx) error {
	platform, err := platformParam(c)
	if err != nil {
		return respondError(c, err)
	}

	profile, err := h.ps.Profile(c.Context(), GetUserID(c), platform)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(profile)
}

func (h *PlatformHandler) SelectPage(c *fiber.Ctx) error {
	platform, err := platformParam(c)
	if err != nil {
		return respondError(c, err)
	}

	if err := h.ps.SelectPage(c.Context(), GetUserID(c), platform, c.Query("id")); err != nil {
		return respondError(c, err)
	}

	return c.SendStatus(fiber.StatusOK)
}

func (h *PlatformHandler) DeleteSocialAccount(c *fiber.Ctx) error {
	platform, err := platformParam(c)
	if err != nil {
		return respondError(c, err)
	}

	if err := h.ps.Disconnect(c.Context(), GetUserID(c), platform); err != nil {
		return respondError(c, err)
	}

	return c.SendStatus(fiber.StatusOK)
}

func (h *PlatformHandler) InstagramMedia(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 25)

	media, err := h.ps.InstagramMedia(c.Context(), GetUserID(c), limit)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"data": media,
	})
}
