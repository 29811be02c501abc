package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"medequip/internal/entities"
	apperrors "medequip/pkg/errors"
)

type UserRepositoryInterface interface {
	FindByID(ctx context.Context, id uint64) (*entities.User, error)
	FindByEmail(ctx context.Context, email string) (*entities.User, error)
	Exists(ctx context.Context, id uint64) (bool, error)
	ListCreationNotificationRecipients(ctx context.Context) ([]entities.User, error)
	ListLowStockNotificationRecipients(ctx context.Context) ([]entities.User, error)
	UpsertSuperuser(ctx context.Context, email, username, passwordHash string) error
}

type userRepository struct {
	storage *pgxpool.Pool
}

func NewUserRepository(storage *pgxpool.Pool) UserRepositoryInterface {
	return &userRepository{storage: storage}
}

const userColumns = `
	id, email, username, password_hash, role, scopes,
	receive_repair_request_creation_notification, receive_low_stock_notification, created_at`

func (r *userRepository) scanUser(ctx context.Context, query string, args ...interface{}) (*entities.User, error) {
	var u entities.User
	err := r.storage.QueryRow(ctx, query, args...).Scan(
		&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.Role, &u.Scopes,
		&u.ReceiveRepairRequestCreationNotification, &u.ReceiveLowStockNotification, &u.CreatedAt,
	)
	if err != nil {
		return nil, translatePGError(err, "user")
	}
	return &u, nil
}

func (r *userRepository) FindByID(ctx context.Context, id uint64) (*entities.User, error) {
	return r.scanUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*entities.User, error) {
	user, err := r.scanUser(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	if err != nil {
		// Отсутствие пользователя не раскрывается: вызывающий получает nil
		// и отвечает единой ошибкой аутентификации.
		if apperrors.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

func (r *userRepository) Exists(ctx context.Context, id uint64) (bool, error) {
	var exists bool
	err := r.storage.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("ошибка проверки существования пользователя: %w", err)
	}
	return exists, nil
}

func (r *userRepository) listRecipients(ctx context.Context, flagColumn string) ([]entities.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + flagColumn + ` = TRUE ORDER BY id`
	rows, err := r.storage.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения получателей уведомлений: %w", err)
	}
	defer rows.Close()

	users := make([]entities.User, 0)
	for rows.Next() {
		var u entities.User
		if err := rows.Scan(
			&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.Role, &u.Scopes,
			&u.ReceiveRepairRequestCreationNotification, &u.ReceiveLowStockNotification, &u.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования пользователя: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *userRepository) ListCreationNotificationRecipients(ctx context.Context) ([]entities.User, error) {
	return r.listRecipients(ctx, "receive_repair_request_creation_notification")
}

func (r *userRepository) ListLowStockNotificationRecipients(ctx context.Context) ([]entities.User, error) {
	return r.listRecipients(ctx, "receive_low_stock_notification")
}

// UpsertSuperuser идемпотентно заводит суперпользователя при старте приложения.
func (r *userRepository) UpsertSuperuser(ctx context.Context, email, username, passwordHash string) error {
	query := `
		INSERT INTO users (email, username, password_hash, role, scopes,
			receive_repair_request_creation_notification, receive_low_stock_notification, created_at)
		VALUES ($1, $2, $3, 'manager', '{superuser}', TRUE, TRUE, NOW())
		ON CONFLICT (email) DO UPDATE SET password_hash = $3`

	if _, err := r.storage.Exec(ctx, query, email, username, passwordHash); err != nil {
		return translatePGError(err, "user")
	}
	return nil
}
