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

// StoreService is the part of the service used by StoreHandler
type StoreService interface {
	RegisterStore(ctx context.Context, p service.Principal, in service.StoreInput) (*model.Store, error)
	GetStore(ctx context.Context, p service.Principal) (*model.Store, error)
	DeleteStore(ctx context.Context, p service.Principal) error
}

type StoreHandler struct {
	svc StoreService
}

func NewStoreHandler(svc StoreService) *StoreHandler {
	return &StoreHandler{svc: svc}
}

type storeRequest struct {
	CNPJ             string  `json:"cnpj"`
	City             string  `json:"cidade"`
	State            string  `json:"estado"`
	ResponsibleName  string  `json:"nomeResponsavel"`
	ResponsiblePhone string  `json:"telefoneResponsavel"`
	CompanyName      string  `json:"nomeEmpresa"`
	Photo            *string `json:"foto"`
}

// Save handles POST /loja
func (h *StoreHandler) Save(c echo.Context) error {
	var req storeRequest
	if err := c.Bind(&req); err != nil {
		logger.FromEcho(c).Warn("Failed to parse store request", zap.Error(err))
		return badRequest(c, "Corpo da requisição inválido")
	}

	store, err := h.svc.RegisterStore(c.Request().Context(), principal(c), service.StoreInput{
		CNPJ:             req.CNPJ,
		City:             req.City,
		State:            req.State,
		ResponsibleName:  req.ResponsibleName,
		ResponsiblePhone: req.ResponsiblePhone,
		CompanyName:      req.CompanyName,
		Photo:            req.Photo,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Informações da loja salvas com sucesso",
		"loja":    store,
	})
}

// Get handles GET /loja. A caller without a store gets "loja": null.
func (h *StoreHandler) Get(c echo.Context) error {
	store, err := h.svc.GetStore(c.Request().Context(), principal(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "loja": store})
}

// Delete handles DELETE /loja
func (h *StoreHandler) Delete(c echo.Context) error {
	if err := h.svc.DeleteStore(c.Request().Context(), principal(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Cadastro da loja removido com sucesso",
	})
}
