package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"stockpredict-api/internal/models"
	"stockpredict-api/internal/prediction"
	"stockpredict-api/internal/services"
)

// statusFor maps a pipeline error to an HTTP status and a short title.
func statusFor(err error) (int, string) {
	var (
		validation *prediction.ValidationError
		dataErr    *services.DataError
	)

	switch {
	case errors.As(err, &validation):
		return fiber.StatusBadRequest, "Invalid request"
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusGatewayTimeout, "Prediction timed out"
	case errors.Is(err, prediction.ErrDivision):
		return fiber.StatusInternalServerError, "Cannot derive metrics"
	case errors.As(err, &dataErr):
		return fiber.StatusBadGateway, "Inconsistent prediction data"
	}

	if ue, ok := services.IsUpstream(err); ok {
		if ue.ClientError() {
			return fiber.StatusBadRequest, "Prediction service rejected the request"
		}
		return fiber.StatusBadGateway, "Prediction service failed"
	}
	return fiber.StatusBadGateway, "Prediction service unavailable"
}

func errorMessage(err error) string {
	if ue, ok := services.IsUpstream(err); ok && ue.Detail != "" {
		return ue.Detail
	}
	return err.Error()
}

func writeError(c *fiber.Ctx, err error) error {
	code, title := statusFor(err)
	return c.Status(code).JSON(models.ErrorResponse{
		Error:   title,
		Message: errorMessage(err),
		Code:    code,
	})
}

// CustomErrorHandler handles Fiber errors
func CustomErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}

	return c.Status(code).JSON(models.ErrorResponse{
		Error:   "Request failed",
		Message: err.Error(),
		Code:    code,
	})
}
