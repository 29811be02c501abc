package utils

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "medequip/pkg/errors"
)

// PaginationMeta — контракт пагинации: pages = ceil(total/limit), минимум 1.
type PaginationMeta struct {
	Page    uint64 `json:"page"`
	Limit   uint64 `json:"limit"`
	Total   uint64 `json:"total"`
	Pages   uint64 `json:"pages"`
	HasNext bool   `json:"has_next"`
	HasPrev bool   `json:"has_prev"`
}

func NewPaginationMeta(page, limit, total uint64) PaginationMeta {
	pages := uint64(1)
	if limit > 0 {
		pages = (total + limit - 1) / limit
		if pages == 0 {
			pages = 1
		}
	}
	return PaginationMeta{
		Page:    page,
		Limit:   limit,
		Total:   total,
		Pages:   pages,
		HasNext: page < pages,
		HasPrev: page > 1,
	}
}

type ListResponse struct {
	List       interface{}    `json:"list"`
	Pagination PaginationMeta `json:"pagination"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Fields  string `json:"fields,omitempty"`
}

func SuccessResponse(ctx echo.Context, body interface{}, code int) error {
	return ctx.JSON(code, body)
}

func SuccessList(ctx echo.Context, list interface{}, meta PaginationMeta) error {
	return ctx.JSON(http.StatusOK, ListResponse{List: list, Pagination: meta})
}

// ErrorResponse переводит доменную ошибку в конверт {code, message, fields}.
// Необработанные ошибки возвращают 500 с общим телом, без внутренних деталей.
func ErrorResponse(ctx echo.Context, err error, logger *zap.Logger) error {
	var httpErr *apperrors.HttpError
	if errors.As(err, &httpErr) {
		return ctx.JSON(httpErr.Status, errorEnvelope{
			Code:    httpErr.Code,
			Message: httpErr.Message,
			Fields:  httpErr.Field,
		})
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		field := ""
		if len(validationErrs) > 0 {
			field = validationErrs[0].Field()
		}
		return ctx.JSON(http.StatusUnprocessableEntity, errorEnvelope{
			Code:    apperrors.CodeValidation,
			Message: "Ошибка валидации запроса",
			Fields:  field,
		})
	}

	switch {
	case errors.Is(err, apperrors.ErrInvalidToken),
		errors.Is(err, apperrors.ErrTokenExpired),
		errors.Is(err, apperrors.ErrTokenIsNotAccess),
		errors.Is(err, apperrors.ErrTokenIsNotRefresh),
		errors.Is(err, apperrors.ErrEmptyAuthHeader),
		errors.Is(err, apperrors.ErrInvalidAuthHeader),
		errors.Is(err, apperrors.ErrInvalidSigningMethod):
		return ctx.JSON(http.StatusUnauthorized, errorEnvelope{
			Code:    apperrors.CodeInvalidToken,
			Message: err.Error(),
		})
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		return ctx.JSON(http.StatusUnauthorized, errorEnvelope{
			Code:    apperrors.CodeAuthentication,
			Message: err.Error(),
		})
	case errors.Is(err, apperrors.ErrForbidden):
		return ctx.JSON(http.StatusForbidden, errorEnvelope{
			Code:    apperrors.CodeForbidden,
			Message: err.Error(),
		})
	}

	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		msg, _ := echoErr.Message.(string)
		if msg == "" {
			msg = http.StatusText(echoErr.Code)
		}
		return ctx.JSON(echoErr.Code, errorEnvelope{Code: apperrors.CodeValidation, Message: msg})
	}

	logger.Error("Необработанная ошибка", zap.Error(err))
	return ctx.JSON(http.StatusInternalServerError, errorEnvelope{
		Code:    apperrors.CodeInternal,
		Message: "Внутренняя ошибка сервера",
	})
}
