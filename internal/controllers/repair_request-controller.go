package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"medequip/internal/dto"
	"medequip/internal/services"
	apperrors "medequip/pkg/errors"
	"medequip/pkg/utils"
)

type RepairRequestController struct {
	service services.RepairRequestServiceInterface
	logger  *zap.Logger
}

func NewRepairRequestController(service services.RepairRequestServiceInterface, logger *zap.Logger) *RepairRequestController {
	return &RepairRequestController{service: service, logger: logger}
}

// CreateRepairRequest принимает multipart/form-data: JSON в поле "data"
// и фотографии в полях "photos".
func (c *RepairRequestController) CreateRepairRequest(ctx echo.Context) error {
	dataStr := ctx.FormValue("data")
	if dataStr == "" {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusBadRequest, apperrors.CodeValidation, "Поле data обязательно", "data"),
			c.logger)
	}

	var payload dto.CreateRepairRequestDTO
	if err := json.Unmarshal([]byte(dataStr), &payload); err != nil {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusBadRequest, apperrors.CodeValidation, "Некорректный JSON в поле data", "data"),
			c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	form, err := ctx.MultipartForm()
	if err != nil {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusBadRequest, apperrors.CodeValidation, "Ожидается multipart/form-data", ""),
			c.logger)
	}
	photos := form.File["photos"]

	creatorID, err := utils.GetUserIDFromCtx(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	info, err := c.service.Create(ctx.Request().Context(), payload, photos, creatorID)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	c.logger.Info("создана заявка на ремонт", zap.Uint64("id", info.ID), zap.Uint64("creator_id", creatorID))
	return utils.SuccessResponse(ctx, info, http.StatusOK)
}

// UpdateRepairRequest принимает patch c идентификатором заявки в теле.
func (c *RepairRequestController) UpdateRepairRequest(ctx echo.Context) error {
	var payload dto.UpdateRepairRequestDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusBadRequest, apperrors.CodeValidation, "Некорректное тело запроса", ""),
			c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	info, err := c.service.Update(ctx.Request().Context(), payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, info, http.StatusOK)
}

func (c *RepairRequestController) DeleteRepairRequest(ctx echo.Context) error {
	id, err := parseIDParam(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if err := c.service.Delete(ctx.Request().Context(), id); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	c.logger.Info("удалена заявка на ремонт", zap.Uint64("id", id))
	return utils.SuccessResponse(ctx, id, http.StatusOK)
}

func (c *RepairRequestController) FindRepairRequest(ctx echo.Context) error {
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

func (c *RepairRequestController) ListRepairRequests(ctx echo.Context) error {
	filter := utils.ParseListParams(ctx.QueryParams())

	list, meta, err := c.service.List(ctx.Request().Context(), filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessList(ctx, list, *meta)
}

func parseIDParam(ctx echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.NewHttpError(http.StatusBadRequest, apperrors.CodeValidation, "Некорректный идентификатор", "id")
	}
	return id, nil
}
