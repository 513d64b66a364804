package handlers

import (
	"errors"
	"fmt"

	"artisanhub/internal/models"
	"artisanhub/internal/repositories"
	"artisanhub/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrConflict), errors.Is(err, services.ErrInsufficientStock):
		return fiber.StatusConflict
	case errors.Is(err, services.ErrInvalidInput), errors.Is(err, models.ErrMissingField):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrInvalidCredentials):
		return fiber.StatusUnauthorized
	default:
		return fiber.StatusInternalServerError
	}
}

func fail(c *fiber.Ctx, status int, message string, err error) error {
	body := fiber.Map{"success": false, "message": message}
	if err != nil {
		body["error"] = err.Error()
	}
	return c.Status(status).JSON(body)
}

func failWith(c *fiber.Ctx, message string, err error) error {
	return fail(c, statusFor(err), message, err)
}

func badBody(c *fiber.Ctx, err error) error {
	return fail(c, fiber.StatusBadRequest, "Invalid request body", err)
}

// newValidator returns a validator that also knows the in_phone tag.
func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("in_phone", func(fl validator.FieldLevel) bool {
		return models.IsValidPhone(fl.Field().String())
	})
	return v
}

func validationFailed(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fail(c, fiber.StatusBadRequest, "Validation failed", err)
	}
	errorMessages := make(map[string]string)
	for _, e := range validationErrors {
		errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"message": "Validation failed",
		"errors":  errorMessages,
	})
}
