package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"medequip/internal/entities"
)

type StatusRecordRepositoryInterface interface {
	AppendInTx(ctx context.Context, tx pgx.Tx, record *entities.StatusRecord) (uint64, error)
	ListByRequest(ctx context.Context, repairRequestID uint64) ([]entities.StatusRecord, error)
}

type statusRecordRepository struct {
	storage *pgxpool.Pool
}

func NewStatusRecordRepository(storage *pgxpool.Pool) StatusRecordRepositoryInterface {
	return &statusRecordRepository{storage: storage}
}

// AppendInTx добавляет запись истории со временем БД. clock_timestamp()
// гарантирует, что новая запись строго новее уже существующих в этой же
// транзакции.
func (r *statusRecordRepository) AppendInTx(ctx context.Context, tx pgx.Tx, record *entities.StatusRecord) (uint64, error) {
	query := `
		INSERT INTO status_records (status, assigned_engineer_id, repair_request_id, created_at)
		VALUES ($1, $2, $3, clock_timestamp())
		RETURNING id, created_at`

	err := tx.QueryRow(ctx, query, record.Status, record.AssignedEngineerID, record.RepairRequestID).
		Scan(&record.ID, &record.CreatedAt)
	if err != nil {
		return 0, translatePGError(err, "status_record")
	}
	return record.ID, nil
}

func (r *statusRecordRepository) ListByRequest(ctx context.Context, repairRequestID uint64) ([]entities.StatusRecord, error) {
	return listStatusRecords(ctx, r.storage, repairRequestID)
}

func listStatusRecords(ctx context.Context, q querier, repairRequestID uint64) ([]entities.StatusRecord, error) {
	query := `
		SELECT sr.id, sr.status, sr.assigned_engineer_id, sr.repair_request_id, sr.created_at,
		       u.id, u.username, u.email
		FROM status_records sr
		LEFT JOIN users u ON u.id = sr.assigned_engineer_id
		WHERE sr.repair_request_id = $1
		ORDER BY sr.created_at, sr.id`

	rows, err := q.Query(ctx, query, repairRequestID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения истории статусов: %w", err)
	}
	defer rows.Close()

	records := make([]entities.StatusRecord, 0)
	for rows.Next() {
		var rec entities.StatusRecord
		var engineerID *uint64
		var engineerUsername, engineerEmail *string
		if err := rows.Scan(&rec.ID, &rec.Status, &rec.AssignedEngineerID, &rec.RepairRequestID, &rec.CreatedAt,
			&engineerID, &engineerUsername, &engineerEmail); err != nil {
			return nil, fmt.Errorf("ошибка сканирования записи истории: %w", err)
		}
		if engineerID != nil {
			rec.AssignedEngineer = &entities.User{ID: *engineerID, Username: *engineerUsername, Email: *engineerEmail}
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
