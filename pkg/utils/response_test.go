package utils

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "medequip/pkg/errors"
)

func TestNewPaginationMeta(t *testing.T) {
	testCases := []struct {
		name                string
		page, limit, total  uint64
		pages               uint64
		hasNext, hasPrev    bool
	}{
		{name: "пустой список даёт одну страницу", page: 1, limit: 10, total: 0, pages: 1},
		{name: "ровно одна страница", page: 1, limit: 10, total: 10, pages: 1},
		{name: "неполная последняя страница", page: 1, limit: 10, total: 11, pages: 2, hasNext: true},
		{name: "средняя страница", page: 2, limit: 10, total: 35, pages: 4, hasNext: true, hasPrev: true},
		{name: "последняя страница", page: 4, limit: 10, total: 35, pages: 4, hasPrev: true},
		{name: "страница за пределами", page: 9, limit: 10, total: 35, pages: 4, hasPrev: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			meta := NewPaginationMeta(tc.page, tc.limit, tc.total)
			assert.Equal(t, tc.pages, meta.Pages)
			assert.Equal(t, tc.hasNext, meta.HasNext)
			assert.Equal(t, tc.hasPrev, meta.HasPrev)
			assert.Equal(t, tc.total, meta.Total)
		})
	}
}

func newTestContext(t *testing.T) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestErrorResponse_HttpError(t *testing.T) {
	ctx, rec := newTestContext(t)

	err := ErrorResponse(ctx, apperrors.NewInsufficientStockError(), zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `"code":"invalid_quantity"`)
	assert.Contains(t, body, `"fields":"quantity"`)
}

func TestErrorResponse_NotFound(t *testing.T) {
	ctx, rec := newTestContext(t)

	require.NoError(t, ErrorResponse(ctx, apperrors.NewNotFoundError("repair_request"), zap.NewNop()))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"not_found"`)
}

func TestErrorResponse_TokenErrors(t *testing.T) {
	ctx, rec := newTestContext(t)

	require.NoError(t, ErrorResponse(ctx, apperrors.ErrTokenExpired, zap.NewNop()))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"invalid_token"`)
}

func TestErrorResponse_UnknownErrorHidesDetails(t *testing.T) {
	ctx, rec := newTestContext(t)

	require.NoError(t, ErrorResponse(ctx, assert.AnError, zap.NewNop()))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"internal_error"`)
	assert.False(t, strings.Contains(rec.Body.String(), assert.AnError.Error()),
		"внутренние детали не должны утекать в ответ")
}
