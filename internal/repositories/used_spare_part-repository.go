package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"medequip/internal/entities"
)

type UsedSparePartRepositoryInterface interface {
	ListByRequestInTx(ctx context.Context, tx pgx.Tx, repairRequestID uint64) ([]entities.UsedSparePart, error)
	ReplaceForRequestInTx(ctx context.Context, tx pgx.Tx, repairRequestID uint64, parts []entities.UsedSparePart) error
	ListByRequest(ctx context.Context, repairRequestID uint64) ([]entities.UsedSparePart, error)
}

type usedSparePartRepository struct {
	storage *pgxpool.Pool
}

func NewUsedSparePartRepository(storage *pgxpool.Pool) UsedSparePartRepositoryInterface {
	return &usedSparePartRepository{storage: storage}
}

// ListByRequestInTx читает текущий набор расходов внутри транзакции агрегата.
// Именно этот набор служит базой для сверки остатков перед заменой.
func (r *usedSparePartRepository) ListByRequestInTx(ctx context.Context, tx pgx.Tx, repairRequestID uint64) ([]entities.UsedSparePart, error) {
	return listUsedSpareParts(ctx, tx, repairRequestID)
}

func (r *usedSparePartRepository) ListByRequest(ctx context.Context, repairRequestID uint64) ([]entities.UsedSparePart, error) {
	return listUsedSpareParts(ctx, r.storage, repairRequestID)
}

func listUsedSpareParts(ctx context.Context, q querier, repairRequestID uint64) ([]entities.UsedSparePart, error) {
	query := `
		SELECT u.id, u.quantity, u.note, u.spare_part_id, u.institution_id, u.repair_request_id,
		       sp.name AS spare_part_name, i.name AS institution_name
		FROM used_spare_parts u
		JOIN spare_parts sp ON sp.id = u.spare_part_id
		JOIN institutions i ON i.id = u.institution_id
		WHERE u.repair_request_id = $1
		ORDER BY u.id`

	rows, err := q.Query(ctx, query, repairRequestID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения расходов запчастей: %w", err)
	}
	defer rows.Close()

	parts := make([]entities.UsedSparePart, 0)
	for rows.Next() {
		var p entities.UsedSparePart
		var sparePartName, institutionName string
		if err := rows.Scan(&p.ID, &p.Quantity, &p.Note, &p.SparePartID, &p.InstitutionID, &p.RepairRequestID,
			&sparePartName, &institutionName); err != nil {
			return nil, fmt.Errorf("ошибка сканирования расхода запчасти: %w", err)
		}
		p.SparePart = &entities.SparePart{ID: p.SparePartID, Name: sparePartName}
		p.Institution = &entities.Institution{ID: p.InstitutionID, Name: institutionName}
		parts = append(parts, p)
	}
	return parts, rows.Err()
}

// ReplaceForRequestInTx удаляет старые строки расходов и вставляет новые.
// Вызывается строго после сверки остатков: старые строки — база для дельт.
func (r *usedSparePartRepository) ReplaceForRequestInTx(ctx context.Context, tx pgx.Tx, repairRequestID uint64, parts []entities.UsedSparePart) error {
	if _, err := tx.Exec(ctx, `DELETE FROM used_spare_parts WHERE repair_request_id = $1`, repairRequestID); err != nil {
		return translatePGError(err, "used_spare_part")
	}

	insertQuery := `
		INSERT INTO used_spare_parts (quantity, note, spare_part_id, institution_id, repair_request_id)
		VALUES ($1, $2, $3, $4, $5)`

	for _, p := range parts {
		if _, err := tx.Exec(ctx, insertQuery, p.Quantity, p.Note, p.SparePartID, p.InstitutionID, repairRequestID); err != nil {
			return translatePGError(err, "used_spare_part")
		}
	}
	return nil
}
