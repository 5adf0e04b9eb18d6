package handler

import (
	"github.com/labstack/echo/v4"

	"coupon-service/internal/middleware"
	"coupon-service/pkg/jwtutil"
	"coupon-service/pkg/metrics"
)

// Handlers groups the HTTP handlers of the service
type Handlers struct {
	Campaigns         *CampaignHandler
	IndividualCoupons *IndividualCouponHandler
	Stores            *StoreHandler
	Health            *HealthHandler
}

// RegisterRoutes mounts every route on e. Public routes are mounted without
// the JWT middleware.
func RegisterRoutes(e *echo.Echo, h Handlers, jwtUtil *jwtutil.JWTUtil) {
	// Public routes
	e.GET("/health", h.Health.Check)
	e.GET("/metrics", echo.WrapHandler(metrics.GetPrometheusHandler()))
	e.GET("/loja/:id/cupons", h.Campaigns.ListPublic)

	auth := middleware.JWTAuthMiddleware(jwtUtil)

	// Secured routes
	campaigns := e.Group("/cupons", auth)
	campaigns.GET("", h.Campaigns.List)
	campaigns.POST("", h.Campaigns.Create)
	campaigns.PUT("", h.Campaigns.Update)
	campaigns.DELETE("", h.Campaigns.Delete)

	individual := e.Group("/cupons-individuais", auth)
	individual.GET("", h.IndividualCoupons.List)
	individual.POST("", h.IndividualCoupons.Provision)
	individual.PUT("", h.IndividualCoupons.Assign)

	stores := e.Group("/loja", auth)
	stores.GET("", h.Stores.Get)
	stores.POST("", h.Stores.Save)
	stores.DELETE("", h.Stores.Delete)
}
