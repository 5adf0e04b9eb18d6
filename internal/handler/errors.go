package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"coupon-service/internal/middleware"
	"coupon-service/internal/service"
	"coupon-service/pkg/logger"
)

// statusFor maps service error kinds onto HTTP status codes
func statusFor(kind service.Kind) int {
	switch kind {
	case service.KindUnauthorized:
		return http.StatusUnauthorized
	case service.KindValidation, service.KindPrecondition:
		return http.StatusBadRequest
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as {"error": message}. Server-side failures are
// logged with their cause, which never reaches the client.
func respondError(c echo.Context, err error) error {
	log := logger.FromEcho(c)
	status := statusFor(service.KindOf(err))

	if status >= http.StatusInternalServerError {
		log.Error("Request failed", zap.Error(err))
	} else {
		log.Debug("Request rejected", zap.Int("status", status), zap.Error(err))
	}

	return c.JSON(status, echo.Map{"error": service.MessageOf(err)})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
}

// principal returns the caller set by the auth middleware. A route mounted
// without it gets an empty principal, which the service rejects.
func principal(c echo.Context) service.Principal {
	p, _ := middleware.PrincipalFrom(c)
	return p
}
