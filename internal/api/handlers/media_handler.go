package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/socialpro/internal/service"
)

type MediaHandler struct {
	m service.MediaStore
}

func NewMediaHandler(m service.MediaStore) *MediaHandler {
	return &MediaHandler{m: m}
}

// ListMedia returns the images the user has uploaded, newest first.
func (h *MediaHandler) ListMedia(c *fiber.Ctx) error {
	assets, err := h.m.List(c.Context(), GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"data": assets,
	})
}
