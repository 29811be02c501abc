package repositories

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	apperrors "medequip/pkg/errors"
)

// Коды ошибок PostgreSQL, которые репозитории переводят в доменные.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// translatePGError переводит ошибку хранилища в доменную на границе
// репозитория. Наружу технические детали БД не выходят.
func translatePGError(err error, entity string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFoundError(entity)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return apperrors.NewDuplicateError(constraintField(pgErr))
		case pgForeignKeyViolation:
			return apperrors.NewReferenceError(constraintField(pgErr))
		case pgCheckViolation:
			if strings.Contains(pgErr.ConstraintName, "quantity") {
				return apperrors.NewInsufficientStockError()
			}
			return apperrors.NewHttpError(400, apperrors.CodeValidation, "Нарушено ограничение данных", constraintField(pgErr))
		}
	}

	return err
}

// constraintField выделяет имя поля из имени ограничения вида
// "repair_requests_equipment_id_fkey".
func constraintField(pgErr *pgconn.PgError) string {
	s := strings.TrimSuffix(pgErr.ConstraintName, "_fkey")
	s = strings.TrimSuffix(s, "_key")
	s = strings.TrimSuffix(s, "_check")
	return strings.TrimPrefix(s, pgErr.TableName+"_")
}
