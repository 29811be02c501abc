package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"medequip/internal/services"
	"medequip/pkg/utils"
)

type EquipmentController struct {
	service services.EquipmentServiceInterface
	logger  *zap.Logger
}

func NewEquipmentController(service services.EquipmentServiceInterface, logger *zap.Logger) *EquipmentController {
	return &EquipmentController{service: service, logger: logger}
}

func (c *EquipmentController) FindEquipment(ctx echo.Context) error {
	id, err := parseIDParam(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	info, err := c.service.FindByID(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, info, http.StatusOK)
}

func (c *EquipmentController) ListEquipments(ctx echo.Context) error {
	filter := utils.ParseListParams(ctx.QueryParams())

	list, meta, err := c.service.List(ctx.Request().Context(), filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessList(ctx, list, *meta)
}
