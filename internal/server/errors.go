package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	"github.com/sofahub/sofahub/internal/sofascore"
	"github.com/sofahub/sofahub/internal/upstream"
)

// errInvalidInput 标记路径参数无法解析。
var errInvalidInput = errors.New("invalid input")

// classifyError 将错误映射为 HTTP 状态码与稳定的错误码。
func classifyError(err error) (int, string) {
	var fiberErr *fiber.Error
	var statusErr *sofascore.StatusError
	var lockout *upstream.LockoutError

	switch {
	case errors.As(err, &fiberErr):
		if fiberErr.Code == fiber.StatusNotFound {
			return fiberErr.Code, "not_found"
		}
		return fiberErr.Code, "request_error"
	case errors.Is(err, sofascore.ErrInvalidYear):
		return fiber.StatusBadRequest, "invalid_year"
	case errors.Is(err, sofascore.ErrInvalidLeague):
		return fiber.StatusBadRequest, "invalid_league"
	case errors.Is(err, sofascore.ErrInvalidMatchURL),
		errors.Is(err, sofascore.ErrInvalidPosition),
		errors.Is(err, sofascore.ErrInvalidAccumulation),
		errors.Is(err, errInvalidInput):
		return fiber.StatusBadRequest, "invalid_input"
	case errors.As(err, &statusErr):
		if statusErr.StatusCode == http.StatusNotFound {
			return fiber.StatusNotFound, "not_found"
		}
		return fiber.StatusBadGateway, "upstream_status"
	case errors.As(err, &lockout):
		return fiber.StatusServiceUnavailable, "upstream_locked"
	case errors.Is(err, upstream.ErrRetriesExhausted):
		return fiber.StatusBadGateway, "upstream_unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusGatewayTimeout, "timeout"
	default:
		return fiber.StatusInternalServerError, "internal_error"
	}
}

func errorHandler(logger *logrus.Logger) fiber.ErrorHandler {
	return func(c fiber.Ctx, err error) error {
		status, code := classifyError(err)
		entry := logger.WithFields(logrus.Fields{
			"action":     "http_error",
			"request_id": RequestID(c),
			"path":       c.Path(),
			"status":     status,
			"error_code": code,
		}).WithError(err)
		if status >= fiber.StatusInternalServerError {
			entry.Error("request failed")
		} else {
			entry.Warn("request rejected")
		}
		return c.Status(status).JSON(fiber.Map{
			"error":   code,
			"message": err.Error(),
		})
	}
}
