package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"medequip/internal/entities"
)

// CacheRepositoryInterface — кэш авторизационного контекста пользователя.
// Промах кэша не фатален: вызывающий идёт в БД и перезаписывает ключ.
type CacheRepositoryInterface interface {
	GetUser(ctx context.Context, userID uint64) (*entities.User, error)
	SetUser(ctx context.Context, user *entities.User, ttl time.Duration) error
	InvalidateUser(ctx context.Context, userID uint64) error
}

type cacheRepository struct {
	client *redis.Client
}

func NewCacheRepository(client *redis.Client) CacheRepositoryInterface {
	return &cacheRepository{client: client}
}

func userCacheKey(userID uint64) string {
	return fmt.Sprintf("user:auth:%d", userID)
}

func (r *cacheRepository) GetUser(ctx context.Context, userID uint64) (*entities.User, error) {
	raw, err := r.client.Get(ctx, userCacheKey(userID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения пользователя из кэша: %w", err)
	}

	var user entities.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, fmt.Errorf("ошибка декодирования пользователя из кэша: %w", err)
	}
	return &user, nil
}

func (r *cacheRepository) SetUser(ctx context.Context, user *entities.User, ttl time.Duration) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("ошибка кодирования пользователя для кэша: %w", err)
	}
	if err := r.client.Set(ctx, userCacheKey(user.ID), raw, ttl).Err(); err != nil {
		return fmt.Errorf("ошибка записи пользователя в кэш: %w", err)
	}
	return nil
}

func (r *cacheRepository) InvalidateUser(ctx context.Context, userID uint64) error {
	if err := r.client.Del(ctx, userCacheKey(userID)).Err(); err != nil {
		return fmt.Errorf("ошибка инвалидации пользователя в кэше: %w", err)
	}
	return nil
}
