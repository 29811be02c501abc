package seeders

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"medequip/internal/entities"
	"medequip/pkg/config"
)

type fakeSeedUserRepo struct {
	upserted     bool
	passwordHash string
	user         *entities.User
}

func (f *fakeSeedUserRepo) FindByID(ctx context.Context, id uint64) (*entities.User, error) {
	return f.user, nil
}

func (f *fakeSeedUserRepo) FindByEmail(ctx context.Context, email string) (*entities.User, error) {
	if f.user != nil && f.user.Email == email {
		return f.user, nil
	}
	return nil, nil
}

func (f *fakeSeedUserRepo) Exists(ctx context.Context, id uint64) (bool, error) {
	return f.user != nil, nil
}

func (f *fakeSeedUserRepo) ListCreationNotificationRecipients(ctx context.Context) ([]entities.User, error) {
	return nil, nil
}

func (f *fakeSeedUserRepo) ListLowStockNotificationRecipients(ctx context.Context) ([]entities.User, error) {
	return nil, nil
}

func (f *fakeSeedUserRepo) UpsertSuperuser(ctx context.Context, email, username, passwordHash string) error {
	f.upserted = true
	f.passwordHash = passwordHash
	f.user = &entities.User{ID: 42, Email: email, Username: username, PasswordHash: passwordHash, Role: "manager"}
	return nil
}

type fakeSeedCache struct {
	invalidated []uint64
}

func (f *fakeSeedCache) GetUser(ctx context.Context, userID uint64) (*entities.User, error) {
	return nil, nil
}

func (f *fakeSeedCache) SetUser(ctx context.Context, user *entities.User, ttl time.Duration) error {
	return nil
}

func (f *fakeSeedCache) InvalidateUser(ctx context.Context, userID uint64) error {
	f.invalidated = append(f.invalidated, userID)
	return nil
}

func TestSeedSuperuser_InvalidatesCachedUser(t *testing.T) {
	userRepo := &fakeSeedUserRepo{}
	cache := &fakeSeedCache{}
	cfg := config.SuperuserConfig{Email: "admin@medequip.local", Password: "очень-секретно"}

	err := SeedSuperuser(context.Background(), userRepo, cache, cfg, zap.NewNop())
	require.NoError(t, err)

	assert.True(t, userRepo.upserted)
	assert.NotEqual(t, cfg.Password, userRepo.passwordHash)
	// Кэшированная запись прошлого запуска сбрасывается по id пересеянного пользователя.
	assert.Equal(t, []uint64{42}, cache.invalidated)
}

func TestSeedSuperuser_EmptyPasswordSkipsSeeding(t *testing.T) {
	userRepo := &fakeSeedUserRepo{}
	cache := &fakeSeedCache{}

	err := SeedSuperuser(context.Background(), userRepo, cache, config.SuperuserConfig{Email: "admin@medequip.local"}, zap.NewNop())
	require.NoError(t, err)

	assert.False(t, userRepo.upserted)
	assert.Empty(t, cache.invalidated)
}
