package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"medequip/internal/entities"
	"medequip/pkg/contextkeys"
	apperrors "medequip/pkg/errors"
	"medequip/pkg/service"
	"medequip/pkg/utils"
)

// UserResolver отдаёт пользователя по идентификатору из токена.
// Реализация кэширует пользователей в Redis на время жизни access-токена.
type UserResolver interface {
	ResolveUser(ctx context.Context, userID uint64) (*entities.User, error)
}

type AuthMiddleware struct {
	jwtService service.JWTService
	users      UserResolver
	logger     *zap.Logger
}

func NewAuthMiddleware(jwtSvc service.JWTService, users UserResolver, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtSvc,
		users:      users,
		logger:     logger,
	}
}

// Auth превращает bearer-токен в {user, role} в контексте запроса.
// Любая проблема с токеном — 401.
func (m *AuthMiddleware) Auth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			m.logger.Warn("AuthMiddleware: Пустой заголовок Authorization")
			return utils.ErrorResponse(c, apperrors.ErrEmptyAuthHeader, m.logger)
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			m.logger.Warn("AuthMiddleware: Неверный формат заголовка Authorization")
			return utils.ErrorResponse(c, apperrors.ErrInvalidAuthHeader, m.logger)
		}

		claims, err := m.jwtService.ValidateToken(parts[1])
		if err != nil {
			m.logger.Warn("AuthMiddleware: Ошибка валидации токена", zap.Error(err))
			return utils.ErrorResponse(c, err, m.logger)
		}

		if claims.TokenType != service.TokenTypeAccess {
			m.logger.Warn("AuthMiddleware: Попытка доступа не с access-токеном")
			return utils.ErrorResponse(c, apperrors.ErrTokenIsNotAccess, m.logger)
		}

		// Пользователь перечитывается из кэша или БД: удалённый пользователь
		// не проходит даже с ещё действующим токеном. Роль берётся актуальная.
		user, err := m.users.ResolveUser(c.Request().Context(), claims.UserID)
		if err != nil {
			m.logger.Warn("AuthMiddleware: пользователь токена не найден", zap.Error(err))
			return utils.ErrorResponse(c, apperrors.ErrInvalidToken, m.logger)
		}

		ctx := c.Request().Context()
		ctx = context.WithValue(ctx, contextkeys.UserIDKey, user.ID)
		ctx = context.WithValue(ctx, contextkeys.UserRoleKey, user.Role)
		c.SetRequest(c.Request().WithContext(ctx))

		return next(c)
	}
}

// RequireRole требует конкретную роль (например, manager для удаления заявки).
func (m *AuthMiddleware) RequireRole(role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actorRole, err := utils.GetUserRoleFromCtx(c.Request().Context())
			if err != nil {
				return utils.ErrorResponse(c, apperrors.ErrEmptyAuthHeader, m.logger)
			}
			if actorRole != role {
				m.logger.Warn("AuthMiddleware: недостаточно прав",
					zap.String("требуется", role),
					zap.String("роль", actorRole),
				)
				return utils.ErrorResponse(c, apperrors.ErrForbidden, m.logger)
			}
			return next(c)
		}
	}
}
