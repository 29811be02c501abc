package services

import (
	"context"

	"go.uber.org/zap"

	"medequip/internal/dto"
	"medequip/internal/entities"
	"medequip/internal/repositories"
	"medequip/pkg/constants"
	"medequip/pkg/types"
	"medequip/pkg/utils"
)

// ProjectEquipmentStatus вычисляет производный статус оборудования из
// последних статусов его заявок:
//   - есть заявка not_taken                         -> not_working
//   - иначе есть in_progress/waiting_spare_parts    -> under_maintenance
//   - иначе (нет заявок или все finished)           -> working
func ProjectEquipmentStatus(requestStatuses []string) string {
	hasActive := false
	for _, s := range requestStatuses {
		switch s {
		case constants.StatusNotTaken:
			return constants.EquipmentNotWorking
		case constants.StatusInProgress, constants.StatusWaitingSpareParts:
			hasActive = true
		}
	}
	if hasActive {
		return constants.EquipmentUnderMaintenance
	}
	return constants.EquipmentWorking
}

type EquipmentServiceInterface interface {
	FindByID(ctx context.Context, id uint64) (*dto.EquipmentInfoDTO, error)
	List(ctx context.Context, filter types.Filter) ([]dto.EquipmentInfoDTO, *utils.PaginationMeta, error)
}

type equipmentService struct {
	equipmentRepo repositories.EquipmentRepositoryInterface
	logger        *zap.Logger
}

func NewEquipmentService(equipmentRepo repositories.EquipmentRepositoryInterface, logger *zap.Logger) EquipmentServiceInterface {
	return &equipmentService{equipmentRepo: equipmentRepo, logger: logger}
}

func (s *equipmentService) FindByID(ctx context.Context, id uint64) (*dto.EquipmentInfoDTO, error) {
	equipment, err := s.equipmentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	statuses, err := s.equipmentRepo.ListRequestStatusesByEquipment(ctx, []uint64{id})
	if err != nil {
		return nil, err
	}
	equipment.Status = ProjectEquipmentStatus(statuses[id])

	result := mapEquipmentToInfoDTO(equipment)
	return &result, nil
}

func (s *equipmentService) List(ctx context.Context, filter types.Filter) ([]dto.EquipmentInfoDTO, *utils.PaginationMeta, error) {
	items, total, err := s.equipmentRepo.List(ctx, filter)
	if err != nil {
		return nil, nil, err
	}

	ids := make([]uint64, 0, len(items))
	for _, e := range items {
		ids = append(ids, e.ID)
	}
	statuses, err := s.equipmentRepo.ListRequestStatusesByEquipment(ctx, ids)
	if err != nil {
		return nil, nil, err
	}

	result := make([]dto.EquipmentInfoDTO, 0, len(items))
	for i := range items {
		items[i].Status = ProjectEquipmentStatus(statuses[items[i].ID])
		result = append(result, mapEquipmentToInfoDTO(&items[i]))
	}

	meta := utils.NewPaginationMeta(filter.Page, filter.Limit, total)
	return result, &meta, nil
}

func mapEquipmentToInfoDTO(e *entities.Equipment) dto.EquipmentInfoDTO {
	info := dto.EquipmentInfoDTO{
		ID:           e.ID,
		SerialNumber: e.SerialNumber,
		Installed:    e.Installed,
		Location:     e.Location,
		Status:       e.Status,
	}
	if e.EquipmentModel != nil {
		info.EquipmentModel = &dto.CatalogItemDTO{ID: e.EquipmentModel.ID, Name: e.EquipmentModel.Name}
		if e.EquipmentModel.EquipmentCategory != nil {
			info.Category = &dto.CatalogItemDTO{
				ID:   e.EquipmentModel.EquipmentCategory.ID,
				Name: e.EquipmentModel.EquipmentCategory.Name,
			}
		}
	}
	if e.Institution != nil {
		info.Institution = &dto.CatalogItemDTO{ID: e.Institution.ID, Name: e.Institution.Name}
	}
	return info
}
