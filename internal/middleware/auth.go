package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"coupon-service/internal/service"
	"coupon-service/pkg/jwtutil"
	"coupon-service/pkg/logger"
)

const principalKey = "principal"

// JWTAuthMiddleware validates the bearer token and stores the caller's
// service.Principal in the echo context. Every failure is a 401.
func JWTAuthMiddleware(jwtUtil *jwtutil.JWTUtil) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromEcho(c)

			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				log.Warn("Missing authorization header")
				return unauthorized(c)
			}

			parts := strings.Fields(authHeader)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				log.Warn("Invalid authorization header format")
				return unauthorized(c)
			}

			claims, err := jwtUtil.ValidateToken(parts[1])
			if err != nil {
				log.Warn("Invalid or expired token", zap.Error(err))
				return unauthorized(c)
			}

			c.Set(principalKey, service.Principal{UserID: claims.UserID, Email: claims.Email})
			userLogger := log.With(zap.String("user_id", claims.UserID))
			c.Set(logger.EchoKey, userLogger)
			c.SetRequest(c.Request().WithContext(logger.WithContext(c.Request().Context(), userLogger)))
			log.Debug("JWT token validated successfully",
				zap.String("user_id", claims.UserID),
				zap.String("email", claims.Email))

			return next(c)
		}
	}
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
}

// PrincipalFrom returns the principal stored by JWTAuthMiddleware
func PrincipalFrom(c echo.Context) (service.Principal, bool) {
	p, ok := c.Get(principalKey).(service.Principal)
	return p, ok
}
