package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"medequip/internal/entities"
)

type LocationRepositoryInterface interface {
	ConsumeStockInTx(ctx context.Context, tx pgx.Tx, sparePartID, institutionID uint64, delta int64) (remaining int64, err error)
	ReleaseStockInTx(ctx context.Context, tx pgx.Tx, sparePartID, institutionID uint64, delta int64) error
	DeleteEmptyInTx(ctx context.Context, tx pgx.Tx, sparePartID, institutionID uint64) error
	FindByKey(ctx context.Context, sparePartID, institutionID uint64) (*entities.Location, error)
}

type locationRepository struct {
	storage *pgxpool.Pool
}

func NewLocationRepository(storage *pgxpool.Pool) LocationRepositoryInterface {
	return &locationRepository{storage: storage}
}

// ConsumeStockInTx атомарно списывает delta со склада. UPSERT с ON CONFLICT
// берёт блокировку строки по уникальному индексу (institution_id, spare_part_id)
// и сериализует конкурентные списания; check-ограничение quantity >= 0
// превращается в InsufficientStock на границе репозитория.
func (r *locationRepository) ConsumeStockInTx(ctx context.Context, tx pgx.Tx, sparePartID, institutionID uint64, delta int64) (int64, error) {
	query := `
		INSERT INTO locations (spare_part_id, institution_id, quantity)
		VALUES ($1, $2, -$3)
		ON CONFLICT (institution_id, spare_part_id)
		DO UPDATE SET quantity = locations.quantity - $3
		RETURNING quantity`

	var remaining int64
	if err := tx.QueryRow(ctx, query, sparePartID, institutionID, delta).Scan(&remaining); err != nil {
		return 0, translatePGError(err, "location")
	}
	return remaining, nil
}

// ReleaseStockInTx возвращает delta на склад, создавая строку при её отсутствии.
func (r *locationRepository) ReleaseStockInTx(ctx context.Context, tx pgx.Tx, sparePartID, institutionID uint64, delta int64) error {
	query := `
		INSERT INTO locations (spare_part_id, institution_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (institution_id, spare_part_id)
		DO UPDATE SET quantity = locations.quantity + $3`

	if _, err := tx.Exec(ctx, query, sparePartID, institutionID, delta); err != nil {
		return translatePGError(err, "location")
	}
	return nil
}

// DeleteEmptyInTx — необязательная нормализация: строка с нулевым остатком
// может быть удалена.
func (r *locationRepository) DeleteEmptyInTx(ctx context.Context, tx pgx.Tx, sparePartID, institutionID uint64) error {
	query := `DELETE FROM locations WHERE spare_part_id = $1 AND institution_id = $2 AND quantity = 0`
	if _, err := tx.Exec(ctx, query, sparePartID, institutionID); err != nil {
		return translatePGError(err, "location")
	}
	return nil
}

func (r *locationRepository) FindByKey(ctx context.Context, sparePartID, institutionID uint64) (*entities.Location, error) {
	query := `
		SELECT id, quantity, institution_id, spare_part_id
		FROM locations
		WHERE spare_part_id = $1 AND institution_id = $2`

	var loc entities.Location
	err := r.storage.QueryRow(ctx, query, sparePartID, institutionID).
		Scan(&loc.ID, &loc.Quantity, &loc.InstitutionID, &loc.SparePartID)
	if err != nil {
		return nil, translatePGError(err, "location")
	}
	return &loc, nil
}
