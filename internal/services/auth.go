package services

import (
	"context"

	"go.uber.org/zap"

	"medequip/internal/dto"
	"medequip/internal/entities"
	"medequip/internal/repositories"
	apperrors "medequip/pkg/errors"
	"medequip/pkg/service"
	"medequip/pkg/utils"
)

type AuthServiceInterface interface {
	Login(ctx context.Context, payload dto.LoginDTO) (*dto.TokenPairDTO, error)
	Refresh(ctx context.Context, payload dto.RefreshDTO) (*dto.TokenPairDTO, error)
	ResolveUser(ctx context.Context, userID uint64) (*entities.User, error)
}

type authService struct {
	userRepo   repositories.UserRepositoryInterface
	cacheRepo  repositories.CacheRepositoryInterface
	jwtService service.JWTService
	logger     *zap.Logger
}

func NewAuthService(
	userRepo repositories.UserRepositoryInterface,
	cacheRepo repositories.CacheRepositoryInterface,
	jwtService service.JWTService,
	logger *zap.Logger,
) AuthServiceInterface {
	return &authService{
		userRepo:   userRepo,
		cacheRepo:  cacheRepo,
		jwtService: jwtService,
		logger:     logger,
	}
}

// Login отвечает единой ошибкой аутентификации и на неизвестный email,
// и на неверный пароль: причина отказа не раскрывается.
func (s *authService) Login(ctx context.Context, payload dto.LoginDTO) (*dto.TokenPairDTO, error) {
	user, err := s.userRepo.FindByEmail(ctx, payload.Email)
	if err != nil {
		return nil, err
	}
	if user == nil || !utils.CheckPasswordHash(payload.Password, user.PasswordHash) {
		s.logger.Warn("неудачная попытка входа", zap.String("email", payload.Email))
		return nil, apperrors.NewAuthenticationError()
	}

	access, refresh, err := s.jwtService.GenerateTokens(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, err
	}

	if err := s.cacheRepo.SetUser(ctx, user, s.jwtService.GetAccessTokenTTL()); err != nil {
		// Кэш не критичен для входа.
		s.logger.Warn("не удалось записать пользователя в кэш", zap.Error(err))
	}

	return &dto.TokenPairDTO{AccessToken: access, RefreshToken: refresh, TokenType: "Bearer"}, nil
}

func (s *authService) Refresh(ctx context.Context, payload dto.RefreshDTO) (*dto.TokenPairDTO, error) {
	claims, err := s.jwtService.ValidateToken(payload.RefreshToken)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != service.TokenTypeRefresh {
		return nil, apperrors.ErrTokenIsNotRefresh
	}

	// Роль и существование пользователя перечитываются из БД: отозванный
	// пользователь не продлевает сессию.
	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.ErrInvalidToken
		}
		return nil, err
	}

	access, refresh, err := s.jwtService.GenerateTokens(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, err
	}
	return &dto.TokenPairDTO{AccessToken: access, RefreshToken: refresh, TokenType: "Bearer"}, nil
}

// ResolveUser возвращает пользователя для авторизационного контекста:
// сначала кэш, при промахе — БД с перезаписью ключа.
func (s *authService) ResolveUser(ctx context.Context, userID uint64) (*entities.User, error) {
	cached, err := s.cacheRepo.GetUser(ctx, userID)
	if err != nil {
		s.logger.Warn("ошибка чтения кэша пользователей", zap.Error(err))
	}
	if cached != nil {
		return cached, nil
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.cacheRepo.SetUser(ctx, user, s.jwtService.GetAccessTokenTTL()); err != nil {
		s.logger.Warn("не удалось записать пользователя в кэш", zap.Error(err))
	}
	return user, nil
}
