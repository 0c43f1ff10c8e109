package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/socialpro/internal/models"
	"github.com/maheshrc27/socialpro/internal/service"
)

func GetUserID(c *fiber.Ctx) int64 {
	raw, ok := c.Locals("user_id").(string)
	if !ok {
		return 0
	}
	userID, _ := strconv.ParseInt(raw, 10, 64)
	return userID
}

func platformParam(c *fiber.Ctx) (models.Provider, error) {
	p, err := models.ParseProvider(c.Params("platform"))
	if err != nil {
		return "", &service.ValidationError{Msg: err.Error()}
	}
	return p, nil
}

// errorStatus maps service errors onto HTTP status codes.
func errorStatus(err error) int {
	var (
		validation   *service.ValidationError
		notConnected *service.NotConnectedError
		exchange     *service.TokenExchangeError
		profile      *service.ProfileFetchError
		publish      *service.PublishError
		storage      *service.StorageError
	)
	switch {
	case errors.As(err, &validation):
		return fiber.StatusBadRequest
	case errors.As(err, &notConnected),
		errors.Is(err, service.ErrPostNotFound),
		errors.Is(err, service.ErrUserNotFound):
		return fiber.StatusNotFound
	case errors.As(err, &exchange), errors.As(err, &profile), errors.As(err, &publish):
		return fiber.StatusBadGateway
	case errors.As(err, &storage):
		return fiber.StatusInternalServerError
	}
	return fiber.StatusInternalServerError
}

func respondError(c *fiber.Ctx, err error) error {
	status := errorStatus(err)
	msg := err.Error()
	if status == fiber.StatusInternalServerError {
		msg = "something went wrong"
	}
	return c.Status(status).JSON(fiber.Map{
		"error": msg,
	})
}
