package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/aarondl/null/v8"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"medequip/internal/entities"
	"medequip/pkg/constants"
	apperrors "medequip/pkg/errors"
	"medequip/pkg/types"
)

// Preload — типизированный набор связей, который гидрируется вместе с заявкой.
type Preload uint8

const (
	PreloadEquipment Preload = 1 << iota
	PreloadFailureTypes
	PreloadUsedSpareParts
	PreloadPhotos
	PreloadStatusHistory

	// PreloadAll — полный набор для RepairRequestInfo.
	PreloadAll = PreloadEquipment | PreloadFailureTypes | PreloadUsedSpareParts | PreloadPhotos | PreloadStatusHistory
)

type RepairRequestRepositoryInterface interface {
	CreateInTx(ctx context.Context, tx pgx.Tx, req *entities.RepairRequest) (uint64, error)
	UpdateScalarsInTx(ctx context.Context, tx pgx.Tx, id uint64, managerNote, engineerNote null.String) error
	SetLastStatusInTx(ctx context.Context, tx pgx.Tx, id uint64, status string, completedAt *time.Time) error
	ReplaceFailureTypesInTx(ctx context.Context, tx pgx.Tx, id uint64, failureTypeIDs []uint64) error
	DeleteInTx(ctx context.Context, tx pgx.Tx, id uint64) error
	FindByID(ctx context.Context, id uint64, preloads Preload) (*entities.RepairRequest, error)
	FindByIDInTx(ctx context.Context, tx pgx.Tx, id uint64, preloads Preload) (*entities.RepairRequest, error)
	List(ctx context.Context, filter types.Filter) ([]entities.RepairRequest, uint64, error)
	ListByEquipment(ctx context.Context, equipmentID uint64) ([]entities.RepairRequest, error)
}

type repairRequestRepository struct {
	storage *pgxpool.Pool
}

func NewRepairRequestRepository(storage *pgxpool.Pool) RepairRequestRepositoryInterface {
	return &repairRequestRepository{storage: storage}
}

func (r *repairRequestRepository) CreateInTx(ctx context.Context, tx pgx.Tx, req *entities.RepairRequest) (uint64, error) {
	query := `
		INSERT INTO repair_requests (issue, urgency, manager_note, engineer_note, last_status, equipment_id, created_at)
		VALUES ($1, $2, '', '', $3, $4, NOW())
		RETURNING id, created_at`

	err := tx.QueryRow(ctx, query, req.Issue, req.Urgency, req.LastStatus, req.EquipmentID).
		Scan(&req.ID, &req.CreatedAt)
	if err != nil {
		return 0, translatePGError(err, "repair_request")
	}
	return req.ID, nil
}

// UpdateScalarsInTx обновляет только присланные скалярные поля. Ведущий UPDATE
// берёт блокировку по первичному ключу и сериализует конкурентные обновления
// одной заявки.
func (r *repairRequestRepository) UpdateScalarsInTx(ctx context.Context, tx pgx.Tx, id uint64, managerNote, engineerNote null.String) error {
	builder := sq.Update("repair_requests").
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING id").
		PlaceholderFormat(sq.Dollar)

	if managerNote.Valid {
		builder = builder.Set("manager_note", managerNote.String)
	}
	if engineerNote.Valid {
		builder = builder.Set("engineer_note", engineerNote.String)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("ошибка построения запроса обновления заявки: %w", err)
	}

	var updatedID uint64
	if err := tx.QueryRow(ctx, query, args...).Scan(&updatedID); err != nil {
		return translatePGError(err, "repair_request")
	}
	return nil
}

// SetLastStatusInTx поддерживает кэш последнего статуса и completed_at.
// completed_at сбрасывается, если более поздняя запись отменила finished.
func (r *repairRequestRepository) SetLastStatusInTx(ctx context.Context, tx pgx.Tx, id uint64, status string, completedAt *time.Time) error {
	query := `UPDATE repair_requests SET last_status = $2, completed_at = $3 WHERE id = $1`
	tag, err := tx.Exec(ctx, query, id, status, completedAt)
	if err != nil {
		return translatePGError(err, "repair_request")
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("repair_request")
	}
	return nil
}

// ReplaceFailureTypesInTx — полная замена набора many-to-many связей.
func (r *repairRequestRepository) ReplaceFailureTypesInTx(ctx context.Context, tx pgx.Tx, id uint64, failureTypeIDs []uint64) error {
	if _, err := tx.Exec(ctx, `DELETE FROM repair_request_failure_types WHERE repair_request_id = $1`, id); err != nil {
		return translatePGError(err, "failure_type")
	}
	for _, ftID := range failureTypeIDs {
		_, err := tx.Exec(ctx,
			`INSERT INTO repair_request_failure_types (repair_request_id, failure_type_id) VALUES ($1, $2)`,
			id, ftID)
		if err != nil {
			return translatePGError(err, "failure_type")
		}
	}
	return nil
}

// DeleteInTx каскадно удаляет заявку вместе с фотографиями, историей
// и расходами запчастей. Остатки на складе при этом не восстанавливаются.
func (r *repairRequestRepository) DeleteInTx(ctx context.Context, tx pgx.Tx, id uint64) error {
	tag, err := tx.Exec(ctx, `DELETE FROM repair_requests WHERE id = $1`, id)
	if err != nil {
		return translatePGError(err, "repair_request")
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("repair_request")
	}
	return nil
}

func (r *repairRequestRepository) FindByID(ctx context.Context, id uint64, preloads Preload) (*entities.RepairRequest, error) {
	return findRepairRequest(ctx, r.storage, id, preloads)
}

func (r *repairRequestRepository) FindByIDInTx(ctx context.Context, tx pgx.Tx, id uint64, preloads Preload) (*entities.RepairRequest, error) {
	return findRepairRequest(ctx, tx, id, preloads)
}

const repairRequestColumns = `
	rr.id, rr.issue, rr.urgency, rr.manager_note, rr.engineer_note,
	rr.last_status, rr.equipment_id, rr.created_at, rr.completed_at`

func findRepairRequest(ctx context.Context, q querier, id uint64, preloads Preload) (*entities.RepairRequest, error) {
	query := `SELECT ` + repairRequestColumns + ` FROM repair_requests rr WHERE rr.id = $1`

	var req entities.RepairRequest
	err := q.QueryRow(ctx, query, id).Scan(
		&req.ID, &req.Issue, &req.Urgency, &req.ManagerNote, &req.EngineerNote,
		&req.LastStatus, &req.EquipmentID, &req.CreatedAt, &req.CompletedAt,
	)
	if err != nil {
		return nil, translatePGError(err, "repair_request")
	}

	if err := hydrateRepairRequest(ctx, q, &req, preloads); err != nil {
		return nil, err
	}
	return &req, nil
}

// hydrateRepairRequest разрешает типизированный preload-набор в явные запросы.
func hydrateRepairRequest(ctx context.Context, q querier, req *entities.RepairRequest, preloads Preload) error {
	var err error

	if preloads&PreloadEquipment != 0 && req.EquipmentID != nil {
		req.Equipment, err = findEquipmentRow(ctx, q, *req.EquipmentID)
		if err != nil && !apperrors.IsNotFound(err) {
			return err
		}
	}
	if preloads&PreloadFailureTypes != 0 {
		req.FailureTypes, err = listFailureTypes(ctx, q, req.ID)
		if err != nil {
			return err
		}
	}
	if preloads&PreloadUsedSpareParts != 0 {
		req.UsedSpareParts, err = listUsedSpareParts(ctx, q, req.ID)
		if err != nil {
			return err
		}
	}
	if preloads&PreloadPhotos != 0 {
		req.Photos, err = listPhotos(ctx, q, req.ID)
		if err != nil {
			return err
		}
	}
	if preloads&PreloadStatusHistory != 0 {
		req.StatusHistory, err = listStatusRecords(ctx, q, req.ID)
		if err != nil {
			return err
		}
	}
	return nil
}

func listFailureTypes(ctx context.Context, q querier, repairRequestID uint64) ([]entities.FailureType, error) {
	query := `
		SELECT ft.id, ft.name
		FROM failure_types ft
		JOIN repair_request_failure_types link ON link.failure_type_id = ft.id
		WHERE link.repair_request_id = $1
		ORDER BY ft.id`

	rows, err := q.Query(ctx, query, repairRequestID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения типов неисправностей: %w", err)
	}
	defer rows.Close()

	items := make([]entities.FailureType, 0)
	for rows.Next() {
		var ft entities.FailureType
		if err := rows.Scan(&ft.ID, &ft.Name); err != nil {
			return nil, err
		}
		items = append(items, ft)
	}
	return items, rows.Err()
}

// repairRequestFilterColumns сопоставляет ключи фильтра с колонками запроса.
var repairRequestFilterColumns = map[string]string{
	"id":                       "rr.id",
	"status":                   "rr.last_status",
	"equipment_id":             "rr.equipment_id",
	"urgency":                  "rr.urgency",
	"equipment_category_id":    "em.equipment_category_id",
	"equipment_institution_id": "e.institution_id",
}

var repairRequestSortColumns = map[string]string{
	"created_at":           "rr.created_at",
	"urgency":              "rr.urgency",
	"equipment_model_name": "em.name",
	"status":               statusRankCase(),
}

// statusRankCase строит CASE-выражение сортировки по статусу из
// constants.StatusRank: not_taken < in_progress < waiting_spare_parts < finished.
func statusRankCase() string {
	ranked := make([]string, len(constants.StatusRank))
	for status, rank := range constants.StatusRank {
		ranked[rank] = status
	}

	var b strings.Builder
	b.WriteString("CASE rr.last_status")
	for rank, status := range ranked {
		fmt.Fprintf(&b, " WHEN '%s' THEN %d", status, rank)
	}
	b.WriteString(" END")
	return b.String()
}

func (r *repairRequestRepository) List(ctx context.Context, filter types.Filter) ([]entities.RepairRequest, uint64, error) {
	base := sq.Select().
		From("repair_requests rr").
		LeftJoin("equipments e ON e.id = rr.equipment_id").
		LeftJoin("equipment_models em ON em.id = e.equipment_model_id").
		PlaceholderFormat(sq.Dollar)

	for key, val := range filter.Filters {
		if col, ok := repairRequestFilterColumns[key]; ok {
			base = base.Where(sq.Eq{col: val})
			continue
		}
		if key == "equipment_serial_number_or_equipment_equipment_model_name" {
			pattern := fmt.Sprintf("%%%v%%", val)
			base = base.Where(sq.Or{
				sq.ILike{"e.serial_number": pattern},
				sq.ILike{"em.name": pattern},
			})
		}
	}

	countQuery, countArgs, err := base.Columns("COUNT(*)").ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка построения запроса подсчета заявок: %w", err)
	}
	var total uint64
	if err := r.storage.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчета заявок: %w", err)
	}

	sortCol, ok := repairRequestSortColumns[filter.SortBy]
	if !ok {
		sortCol = "rr.created_at"
	}
	direction := "DESC"
	if filter.SortOrder == "asc" {
		direction = "ASC"
	}

	listQuery, listArgs, err := base.
		Columns(repairRequestColumns).
		OrderBy(fmt.Sprintf("%s %s", sortCol, direction)).
		Limit(filter.Limit).
		Offset(filter.Offset()).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка построения запроса списка заявок: %w", err)
	}

	rows, err := r.storage.Query(ctx, listQuery, listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка получения списка заявок: %w", err)
	}
	defer rows.Close()

	requests := make([]entities.RepairRequest, 0)
	for rows.Next() {
		var req entities.RepairRequest
		if err := rows.Scan(
			&req.ID, &req.Issue, &req.Urgency, &req.ManagerNote, &req.EngineerNote,
			&req.LastStatus, &req.EquipmentID, &req.CreatedAt, &req.CompletedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("ошибка сканирования заявки в списке: %w", err)
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	for i := range requests {
		if err := hydrateRepairRequest(ctx, r.storage, &requests[i], PreloadAll); err != nil {
			return nil, 0, err
		}
	}
	return requests, total, nil
}

// ListByEquipment отдаёт заявки оборудования для проекции его статуса.
func (r *repairRequestRepository) ListByEquipment(ctx context.Context, equipmentID uint64) ([]entities.RepairRequest, error) {
	query := `SELECT ` + repairRequestColumns + ` FROM repair_requests rr WHERE rr.equipment_id = $1 ORDER BY rr.created_at`
	rows, err := r.storage.Query(ctx, query, equipmentID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения заявок оборудования: %w", err)
	}
	defer rows.Close()

	requests := make([]entities.RepairRequest, 0)
	for rows.Next() {
		var req entities.RepairRequest
		if err := rows.Scan(
			&req.ID, &req.Issue, &req.Urgency, &req.ManagerNote, &req.EngineerNote,
			&req.LastStatus, &req.EquipmentID, &req.CreatedAt, &req.CompletedAt,
		); err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}
