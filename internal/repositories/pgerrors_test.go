package repositories

import (
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "medequip/pkg/errors"
)

func asHttpError(t *testing.T, err error) *apperrors.HttpError {
	t.Helper()
	require.Error(t, err)
	httpErr, ok := err.(*apperrors.HttpError)
	require.True(t, ok, "ожидалась доменная ошибка, получено: %v", err)
	return httpErr
}

func TestTranslatePGError_NoRows(t *testing.T) {
	err := translatePGError(pgx.ErrNoRows, "repair_request")

	httpErr := asHttpError(t, err)
	assert.Equal(t, apperrors.CodeNotFound, httpErr.Code)
	assert.Equal(t, "repair_request", httpErr.Field)
}

func TestTranslatePGError_UniqueViolation(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", TableName: "users", ConstraintName: "users_email_key"}

	httpErr := asHttpError(t, translatePGError(pgErr, "user"))
	assert.Equal(t, apperrors.CodeDuplicate, httpErr.Code)
	assert.Equal(t, "email", httpErr.Field)
}

func TestTranslatePGError_ForeignKeyViolation(t *testing.T) {
	pgErr := &pgconn.PgError{
		Code:           "23503",
		TableName:      "used_spare_parts",
		ConstraintName: "used_spare_parts_spare_part_id_fkey",
	}

	httpErr := asHttpError(t, translatePGError(pgErr, "used_spare_part"))
	assert.Equal(t, apperrors.CodeReferenceNotFound, httpErr.Code)
	assert.Equal(t, "spare_part_id", httpErr.Field)
}

func TestTranslatePGError_QuantityCheckBecomesInsufficientStock(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23514", TableName: "locations", ConstraintName: "locations_quantity_check"}

	httpErr := asHttpError(t, translatePGError(pgErr, "location"))
	assert.Equal(t, apperrors.CodeInvalidQuantity, httpErr.Code)
	assert.Equal(t, "quantity", httpErr.Field)
}

func TestTranslatePGError_UnknownErrorPassesThrough(t *testing.T) {
	original := fmt.Errorf("обрыв соединения")
	assert.Equal(t, original, translatePGError(original, "repair_request"))
}

func TestTranslatePGError_Nil(t *testing.T) {
	assert.NoError(t, translatePGError(nil, "repair_request"))
}
