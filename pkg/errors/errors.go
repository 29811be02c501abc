package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Коды ошибок API. Они попадают в поле "code" конверта ответа.
const (
	CodeDuplicate           = "duplicate"
	CodeReferenceNotFound   = "reference_not_found"
	CodeNotFound            = "not_found"
	CodeInvalidQuantity     = "invalid_quantity"
	CodeUnsupportedFileType = "unsupported_file_type"
	CodeAuthentication      = "authentication_failed"
	CodeInvalidToken        = "invalid_token"
	CodeForbidden           = "forbidden"
	CodeValidation          = "validation_error"
	CodeInternal            = "internal_error"
)

var (
	// JWT и токены
	ErrInvalidSigningMethod = fmt.Errorf("неверный метод подписи токена")
	ErrInvalidToken         = fmt.Errorf("недопустимый токен")
	ErrTokenExpired         = fmt.Errorf("срок действия токена истёк")
	ErrTokenIsNotAccess     = fmt.Errorf("токен не является access-токеном")
	ErrTokenIsNotRefresh    = fmt.Errorf("токен не является refresh-токеном")

	// Авторизация
	ErrEmptyAuthHeader    = fmt.Errorf("заголовок авторизации отсутствует")
	ErrInvalidAuthHeader  = fmt.Errorf("неверный формат заголовка авторизации")
	ErrInvalidCredentials = fmt.Errorf("неверные учётные данные")
	ErrForbidden          = fmt.Errorf("доступ запрещён")

	// Контекст
	ErrUserIDNotFoundInContext = fmt.Errorf("UserID не найден в контексте запроса")
)

// HttpError — доменная ошибка с кодом, полем и HTTP-статусом.
// Репозитории и сервисы возвращают её, а ErrorResponse превращает
// в конверт {code, message, fields}.
type HttpError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"fields,omitempty"`
}

func (e *HttpError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s (%s): %s", e.Code, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewHttpError(status int, code, message, field string) *HttpError {
	return &HttpError{Status: status, Code: code, Message: message, Field: field}
}

func NewDuplicateError(field string) *HttpError {
	return NewHttpError(http.StatusBadRequest, CodeDuplicate, "Запись с такими данными уже существует", field)
}

func NewReferenceError(field string) *HttpError {
	return NewHttpError(http.StatusBadRequest, CodeReferenceNotFound, "Связанная запись не найдена", field)
}

func NewNotFoundError(entity string) *HttpError {
	return NewHttpError(http.StatusNotFound, CodeNotFound, "Запись не найдена", entity)
}

func NewInsufficientStockError() *HttpError {
	return NewHttpError(http.StatusBadRequest, CodeInvalidQuantity, "Недостаточное количество запчастей на складе", "quantity")
}

func NewUnsupportedFileTypeError() *HttpError {
	return NewHttpError(http.StatusBadRequest, CodeUnsupportedFileType, "Недопустимый тип файла", "photos")
}

func NewAuthenticationError() *HttpError {
	return NewHttpError(http.StatusUnauthorized, CodeAuthentication, "Неверные учётные данные", "")
}

// IsNotFound сообщает, является ли ошибка доменным not_found.
func IsNotFound(err error) bool {
	var httpErr *HttpError
	return errors.As(err, &httpErr) && httpErr.Code == CodeNotFound
}
