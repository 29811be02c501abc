package seeders

import (
	"context"

	"go.uber.org/zap"

	"medequip/internal/repositories"
	"medequip/pkg/config"
	"medequip/pkg/utils"
)

// SeedSuperuser идемпотентно создаёт суперпользователя из конфигурации.
// Пустой пароль отключает посев: ручное заведение пользователей остаётся
// возможным через БД.
func SeedSuperuser(ctx context.Context, userRepo repositories.UserRepositoryInterface, cacheRepo repositories.CacheRepositoryInterface, cfg config.SuperuserConfig, logger *zap.Logger) error {
	if cfg.Password == "" {
		logger.Info("посев суперпользователя пропущен: SUPERUSER_PASSWORD не задан")
		return nil
	}

	hash, err := utils.HashPassword(cfg.Password)
	if err != nil {
		return err
	}

	if err := userRepo.UpsertSuperuser(ctx, cfg.Email, "superuser", hash); err != nil {
		return err
	}

	// Пересев мог сменить пароль или роль; кэшированная запись прошлого
	// запуска не должна их пережить.
	user, err := userRepo.FindByEmail(ctx, cfg.Email)
	if err != nil {
		return err
	}
	if user != nil {
		if err := cacheRepo.InvalidateUser(ctx, user.ID); err != nil {
			logger.Warn("не удалось сбросить кэш суперпользователя", zap.Error(err))
		}
	}

	logger.Info("суперпользователь готов", zap.String("email", cfg.Email))
	return nil
}
