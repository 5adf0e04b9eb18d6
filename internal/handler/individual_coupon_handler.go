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

// IndividualCouponService is the part of the service used by IndividualCouponHandler
type IndividualCouponService interface {
	ListIndividualCoupons(ctx context.Context, p service.Principal, campaignID string) ([]model.IndividualCouponWithTerms, error)
	ProvisionIndividualCoupons(ctx context.Context, p service.Principal, campaignID string) ([]model.IndividualCouponWithTerms, error)
	AssignIndividualCoupon(ctx context.Context, p service.Principal, in service.AssignInput) (*model.IndividualCoupon, error)
}

type IndividualCouponHandler struct {
	svc IndividualCouponService
}

func NewIndividualCouponHandler(svc IndividualCouponService) *IndividualCouponHandler {
	return &IndividualCouponHandler{svc: svc}
}

type provisionRequest struct {
	CampaignID string `json:"cupomId"`
}

type assignRequest struct {
	ID    string  `json:"id"`
	Phone *string `json:"telefone"`
	CPF   *string `json:"cpf"`
	Email *string `json:"email"`
}

// List handles GET /cupons-individuais?cupomId=
func (h *IndividualCouponHandler) List(c echo.Context) error {
	coupons, err := h.svc.ListIndividualCoupons(c.Request().Context(), principal(c), c.QueryParam("cupomId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, coupons)
}

// Provision handles POST /cupons-individuais
func (h *IndividualCouponHandler) Provision(c echo.Context) error {
	var req provisionRequest
	if err := c.Bind(&req); err != nil {
		logger.FromEcho(c).Warn("Failed to parse provisioning request", zap.Error(err))
		return badRequest(c, "Corpo da requisição inválido")
	}

	coupons, err := h.svc.ProvisionIndividualCoupons(c.Request().Context(), principal(c), req.CampaignID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, coupons)
}

// Assign handles PUT /cupons-individuais
func (h *IndividualCouponHandler) Assign(c echo.Context) error {
	var req assignRequest
	if err := c.Bind(&req); err != nil {
		logger.FromEcho(c).Warn("Failed to parse assignment request", zap.Error(err))
		return badRequest(c, "Corpo da requisição inválido")
	}

	coupon, err := h.svc.AssignIndividualCoupon(c.Request().Context(), principal(c), service.AssignInput{
		ID:    req.ID,
		Phone: req.Phone,
		CPF:   req.CPF,
		Email: req.Email,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, coupon)
}
