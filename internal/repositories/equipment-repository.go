package repositories

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"medequip/internal/entities"
	"medequip/pkg/types"
)

type EquipmentRepositoryInterface interface {
	FindByID(ctx context.Context, id uint64) (*entities.Equipment, error)
	List(ctx context.Context, filter types.Filter) ([]entities.Equipment, uint64, error)
	ListRequestStatusesByEquipment(ctx context.Context, equipmentIDs []uint64) (map[uint64][]string, error)
}

type equipmentRepository struct {
	storage *pgxpool.Pool
}

func NewEquipmentRepository(storage *pgxpool.Pool) EquipmentRepositoryInterface {
	return &equipmentRepository{storage: storage}
}

const equipmentColumns = `
	e.id, e.serial_number, e.installed, e.location, e.equipment_model_id, e.institution_id,
	em.id, em.name, em.equipment_category_id,
	ec.id, ec.name,
	i.id, i.name`

const equipmentJoins = `
	FROM equipments e
	LEFT JOIN equipment_models em ON em.id = e.equipment_model_id
	LEFT JOIN equipment_categories ec ON ec.id = em.equipment_category_id
	JOIN institutions i ON i.id = e.institution_id`

func scanEquipmentRow(row pgx.Row) (*entities.Equipment, error) {
	var e entities.Equipment
	var modelID, categoryID *uint64
	var modelName, categoryName *string
	var modelCategoryID *uint64
	var inst entities.Institution

	err := row.Scan(
		&e.ID, &e.SerialNumber, &e.Installed, &e.Location, &e.EquipmentModelID, &e.InstitutionID,
		&modelID, &modelName, &modelCategoryID,
		&categoryID, &categoryName,
		&inst.ID, &inst.Name,
	)
	if err != nil {
		return nil, err
	}

	e.Institution = &inst
	if modelID != nil {
		e.EquipmentModel = &entities.EquipmentModel{ID: *modelID, Name: *modelName}
		if modelCategoryID != nil {
			e.EquipmentModel.EquipmentCategoryID = *modelCategoryID
		}
		if categoryID != nil {
			e.EquipmentModel.EquipmentCategory = &entities.EquipmentCategory{ID: *categoryID, Name: *categoryName}
		}
	}
	return &e, nil
}

func findEquipmentRow(ctx context.Context, q querier, id uint64) (*entities.Equipment, error) {
	query := `SELECT ` + equipmentColumns + equipmentJoins + ` WHERE e.id = $1`
	e, err := scanEquipmentRow(q.QueryRow(ctx, query, id))
	if err != nil {
		return nil, translatePGError(err, "equipment")
	}
	return e, nil
}

func (r *equipmentRepository) FindByID(ctx context.Context, id uint64) (*entities.Equipment, error) {
	return findEquipmentRow(ctx, r.storage, id)
}

var equipmentFilterColumns = map[string]string{
	"id":                    "e.id",
	"institution_id":        "e.institution_id",
	"equipment_model_id":    "e.equipment_model_id",
	"equipment_category_id": "em.equipment_category_id",
	"installed":             "e.installed",
}

var equipmentSortColumns = map[string]string{
	"id":            "e.id",
	"serial_number": "e.serial_number",
	"model_name":    "em.name",
}

func (r *equipmentRepository) List(ctx context.Context, filter types.Filter) ([]entities.Equipment, uint64, error) {
	base := sq.Select().
		From("equipments e").
		LeftJoin("equipment_models em ON em.id = e.equipment_model_id").
		LeftJoin("equipment_categories ec ON ec.id = em.equipment_category_id").
		Join("institutions i ON i.id = e.institution_id").
		PlaceholderFormat(sq.Dollar)

	for key, val := range filter.Filters {
		if col, ok := equipmentFilterColumns[key]; ok {
			base = base.Where(sq.Eq{col: val})
			continue
		}
		if key == "serial_number_or_model_name" {
			pattern := fmt.Sprintf("%%%v%%", val)
			base = base.Where(sq.Or{
				sq.ILike{"e.serial_number": pattern},
				sq.ILike{"em.name": pattern},
			})
		}
	}

	countQuery, countArgs, err := base.Columns("COUNT(*)").ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка построения запроса подсчета оборудования: %w", err)
	}
	var total uint64
	if err := r.storage.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчета оборудования: %w", err)
	}

	sortCol, ok := equipmentSortColumns[filter.SortBy]
	if !ok {
		sortCol = "e.id"
	}
	direction := "DESC"
	if filter.SortOrder == "asc" {
		direction = "ASC"
	}

	listQuery, listArgs, err := base.
		Columns(equipmentColumns).
		OrderBy(fmt.Sprintf("%s %s", sortCol, direction)).
		Limit(filter.Limit).
		Offset(filter.Offset()).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка построения запроса списка оборудования: %w", err)
	}

	rows, err := r.storage.Query(ctx, listQuery, listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка получения списка оборудования: %w", err)
	}
	defer rows.Close()

	items := make([]entities.Equipment, 0)
	for rows.Next() {
		e, err := scanEquipmentRow(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("ошибка сканирования оборудования: %w", err)
		}
		items = append(items, *e)
	}
	return items, total, rows.Err()
}

// ListRequestStatusesByEquipment отдаёт последние статусы заявок, сгруппированные
// по оборудованию. Используется для проекции статуса оборудования одним запросом
// на всю страницу списка.
func (r *equipmentRepository) ListRequestStatusesByEquipment(ctx context.Context, equipmentIDs []uint64) (map[uint64][]string, error) {
	result := make(map[uint64][]string, len(equipmentIDs))
	if len(equipmentIDs) == 0 {
		return result, nil
	}

	query := `SELECT equipment_id, last_status FROM repair_requests WHERE equipment_id = ANY($1)`
	rows, err := r.storage.Query(ctx, query, equipmentIDs)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения статусов заявок оборудования: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var equipmentID uint64
		var status string
		if err := rows.Scan(&equipmentID, &status); err != nil {
			return nil, err
		}
		result[equipmentID] = append(result[equipmentID], status)
	}
	return result, rows.Err()
}
