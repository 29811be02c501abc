package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"medequip/internal/entities"
)

type PhotoRepositoryInterface interface {
	InsertInTx(ctx context.Context, tx pgx.Tx, repairRequestID uint64, basename string) (uint64, error)
	ListByRequest(ctx context.Context, repairRequestID uint64) ([]entities.Photo, error)
	ListPathsByRequest(ctx context.Context, repairRequestID uint64) ([]string, error)
}

type photoRepository struct {
	storage *pgxpool.Pool
}

func NewPhotoRepository(storage *pgxpool.Pool) PhotoRepositoryInterface {
	return &photoRepository{storage: storage}
}

func (r *photoRepository) InsertInTx(ctx context.Context, tx pgx.Tx, repairRequestID uint64, basename string) (uint64, error) {
	query := `INSERT INTO photos (file_path, repair_request_id) VALUES ($1, $2) RETURNING id`
	var id uint64
	if err := tx.QueryRow(ctx, query, basename, repairRequestID).Scan(&id); err != nil {
		return 0, translatePGError(err, "photo")
	}
	return id, nil
}

func (r *photoRepository) ListByRequest(ctx context.Context, repairRequestID uint64) ([]entities.Photo, error) {
	return listPhotos(ctx, r.storage, repairRequestID)
}

func listPhotos(ctx context.Context, q querier, repairRequestID uint64) ([]entities.Photo, error) {
	query := `SELECT id, file_path, repair_request_id FROM photos WHERE repair_request_id = $1 ORDER BY id`
	rows, err := q.Query(ctx, query, repairRequestID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения фотографий: %w", err)
	}
	defer rows.Close()

	photos := make([]entities.Photo, 0)
	for rows.Next() {
		var p entities.Photo
		if err := rows.Scan(&p.ID, &p.FilePath, &p.RepairRequestID); err != nil {
			return nil, fmt.Errorf("ошибка сканирования фотографии: %w", err)
		}
		photos = append(photos, p)
	}
	return photos, rows.Err()
}

// ListPathsByRequest возвращает базовые имена файлов перед каскадным
// удалением заявки: физические файлы чистятся после ответа.
func (r *photoRepository) ListPathsByRequest(ctx context.Context, repairRequestID uint64) ([]string, error) {
	rows, err := r.storage.Query(ctx, `SELECT file_path FROM photos WHERE repair_request_id = $1`, repairRequestID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения путей фотографий: %w", err)
	}
	defer rows.Close()

	paths := make([]string, 0)
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}
