package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"coupon-service/internal/model"
	"coupon-service/internal/service"
	"coupon-service/pkg/logger"
)

// CampaignService is the part of the service used by CampaignHandler
type CampaignService interface {
	ListCampaigns(ctx context.Context, p service.Principal, targetUserID string) ([]model.Campaign, error)
	CreateCampaign(ctx context.Context, p service.Principal, in service.CreateCampaignInput) (*model.Campaign, error)
	UpdateCampaign(ctx context.Context, p service.Principal, in service.UpdateCampaignInput) (*model.Campaign, error)
	DeleteCampaign(ctx context.Context, p service.Principal, id string) error
	ListPublicCampaigns(ctx context.Context, storeID string) (*service.PublicCampaigns, error)
}

type CampaignHandler struct {
	svc CampaignService
}

func NewCampaignHandler(svc CampaignService) *CampaignHandler {
	return &CampaignHandler{svc: svc}
}

type createCampaignRequest struct {
	DiscountType  string                 `json:"discountType"`
	DiscountValue *service.DiscountValue `json:"discountValue"`
	Quantity      *int                   `json:"quantity"`
	ValidityDays  *int                   `json:"validityDays"`
	IsVisible     *bool                  `json:"isVisible"`
}

type updateCampaignRequest struct {
	ID            string                 `json:"id"`
	DiscountType  *string                `json:"discountType"`
	DiscountValue *service.DiscountValue `json:"discountValue"`
	Quantity      *int                   `json:"quantity"`
	ValidityDays  *int                   `json:"validityDays"`
	IsVisible     *bool                  `json:"isVisible"`
}

// List handles GET /cupons?userId=
func (h *CampaignHandler) List(c echo.Context) error {
	campaigns, err := h.svc.ListCampaigns(c.Request().Context(), principal(c), c.QueryParam("userId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, campaigns)
}

// Create handles POST /cupons
func (h *CampaignHandler) Create(c echo.Context) error {
	log := logger.FromEcho(c)

	var req createCampaignRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("Failed to parse campaign creation request", zap.Error(err))
		return badRequest(c, "Invalid request body")
	}

	campaign, err := h.svc.CreateCampaign(c.Request().Context(), principal(c), service.CreateCampaignInput{
		DiscountType:  req.DiscountType,
		DiscountValue: req.DiscountValue,
		Quantity:      req.Quantity,
		ValidityDays:  req.ValidityDays,
		IsVisible:     req.IsVisible,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusCreated, campaign)
}

// Update handles PUT /cupons
func (h *CampaignHandler) Update(c echo.Context) error {
	log := logger.FromEcho(c)

	var req updateCampaignRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("Failed to parse campaign update request", zap.Error(err))
		return badRequest(c, "Invalid request body")
	}

	campaign, err := h.svc.UpdateCampaign(c.Request().Context(), principal(c), service.UpdateCampaignInput{
		ID:            req.ID,
		DiscountType:  req.DiscountType,
		DiscountValue: req.DiscountValue,
		Quantity:      req.Quantity,
		ValidityDays:  req.ValidityDays,
		IsVisible:     req.IsVisible,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, campaign)
}

// Delete handles DELETE /cupons?id=
func (h *CampaignHandler) Delete(c echo.Context) error {
	if err := h.svc.DeleteCampaign(c.Request().Context(), principal(c), c.QueryParam("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Coupon deleted successfully"})
}

// ListPublic handles GET /loja/:id/cupons. No authentication.
func (h *CampaignHandler) ListPublic(c echo.Context) error {
	page, err := h.svc.ListPublicCampaigns(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, page)
}
