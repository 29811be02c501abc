package services

import (
	"context"
	"mime/multipart"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"medequip/internal/dto"
	"medequip/internal/entities"
	"medequip/internal/events"
	"medequip/internal/repositories"
	"medequip/pkg/constants"
	"medequip/pkg/eventbus"
	"medequip/pkg/types"
	"medequip/pkg/utils"
)

// LowStockThreshold — остаток, при достижении которого публикуется событие
// low_stock. Ноль означает полностью исчерпанную позицию склада.
const LowStockThreshold = 0

type RepairRequestServiceInterface interface {
	Create(ctx context.Context, payload dto.CreateRepairRequestDTO, photos []*multipart.FileHeader, creatorID uint64) (*dto.RepairRequestInfoDTO, error)
	Update(ctx context.Context, payload dto.UpdateRepairRequestDTO) (*dto.RepairRequestInfoDTO, error)
	Delete(ctx context.Context, id uint64) error
	FindByID(ctx context.Context, id uint64) (*dto.RepairRequestInfoDTO, error)
	List(ctx context.Context, filter types.Filter) ([]dto.RepairRequestInfoDTO, *utils.PaginationMeta, error)
}

type repairRequestService struct {
	storage           *pgxpool.Pool
	repairRequestRepo repositories.RepairRequestRepositoryInterface
	statusRecordRepo  repositories.StatusRecordRepositoryInterface
	usedSparePartRepo repositories.UsedSparePartRepositoryInterface
	locationRepo      repositories.LocationRepositoryInterface
	photoRepo         repositories.PhotoRepositoryInterface
	photoIngestor     PhotoIngestorInterface
	bus               *eventbus.Bus
	photoBaseURL      string
	logger            *zap.Logger
}

func NewRepairRequestService(
	storage *pgxpool.Pool,
	repairRequestRepo repositories.RepairRequestRepositoryInterface,
	statusRecordRepo repositories.StatusRecordRepositoryInterface,
	usedSparePartRepo repositories.UsedSparePartRepositoryInterface,
	locationRepo repositories.LocationRepositoryInterface,
	photoRepo repositories.PhotoRepositoryInterface,
	photoIngestor PhotoIngestorInterface,
	bus *eventbus.Bus,
	photoBaseURL string,
	logger *zap.Logger,
) RepairRequestServiceInterface {
	return &repairRequestService{
		storage:           storage,
		repairRequestRepo: repairRequestRepo,
		statusRecordRepo:  statusRecordRepo,
		usedSparePartRepo: usedSparePartRepo,
		locationRepo:      locationRepo,
		photoRepo:         photoRepo,
		photoIngestor:     photoIngestor,
		bus:               bus,
		photoBaseURL:      photoBaseURL,
		logger:            logger,
	}
}

// Create создаёт заявку со статусом not_taken и первой записью истории.
// Фотографии валидируются до любых записей; при откате транзакции уже
// сохранённые файлы удаляются с диска.
func (s *repairRequestService) Create(ctx context.Context, payload dto.CreateRepairRequestDTO, photos []*multipart.FileHeader, creatorID uint64) (*dto.RepairRequestInfoDTO, error) {
	if err := s.photoIngestor.ValidateBatch(photos); err != nil {
		return nil, err
	}

	basenames, err := s.photoIngestor.SaveBatch(photos)
	if err != nil {
		return nil, err
	}

	equipmentID := payload.EquipmentID
	request := &entities.RepairRequest{
		Issue:       payload.Issue,
		Urgency:     payload.Urgency,
		LastStatus:  constants.StatusNotTaken,
		EquipmentID: &equipmentID,
	}

	err = repositories.WithTx(ctx, s.storage, func(tx pgx.Tx) error {
		if _, err := s.repairRequestRepo.CreateInTx(ctx, tx, request); err != nil {
			return err
		}

		record := &entities.StatusRecord{
			Status:          constants.StatusNotTaken,
			RepairRequestID: request.ID,
		}
		if _, err := s.statusRecordRepo.AppendInTx(ctx, tx, record); err != nil {
			return err
		}

		for _, basename := range basenames {
			if _, err := s.photoRepo.InsertInTx(ctx, tx, request.ID, basename); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.photoIngestor.DeleteBatch(basenames)
		return nil, err
	}

	info, err := s.FindByID(ctx, request.ID)
	if err != nil {
		return nil, err
	}

	event := events.RepairRequestCreatedEvent{
		RepairRequestID: info.ID,
		Issue:           info.Issue,
		Urgency:         info.Urgency,
		CreatorID:       creatorID,
	}
	if info.Equipment != nil && info.Equipment.EquipmentModel != nil {
		event.EquipmentModelName = info.Equipment.EquipmentModel.Name
	}
	for _, photo := range info.Photos {
		event.PhotoURLs = append(event.PhotoURLs, photo.URL)
	}
	s.bus.Publish(ctx, event)

	return info, nil
}

// Update применяет patch одной транзакцией в фиксированном порядке:
// скаляры, типы неисправностей, запись истории, сверка остатков, замена
// набора расходов. Ведущий UPDATE сериализует конкурентные обновления заявки.
func (s *repairRequestService) Update(ctx context.Context, payload dto.UpdateRepairRequestDTO) (*dto.RepairRequestInfoDTO, error) {
	var lowStock []events.LowStockEvent

	err := repositories.WithTx(ctx, s.storage, func(tx pgx.Tx) error {
		if err := s.repairRequestRepo.UpdateScalarsInTx(ctx, tx, payload.ID, payload.ManagerNote, payload.EngineerNote); err != nil {
			return err
		}

		if payload.FailureTypesIDs != nil {
			if err := s.repairRequestRepo.ReplaceFailureTypesInTx(ctx, tx, payload.ID, *payload.FailureTypesIDs); err != nil {
				return err
			}
		}

		if payload.StatusHistory != nil {
			if err := s.appendStatusInTx(ctx, tx, payload.ID, payload.StatusHistory); err != nil {
				return err
			}
		}

		if payload.UsedSpareParts != nil {
			deltas, err := s.reconcileStockInTx(ctx, tx, payload.ID, *payload.UsedSpareParts)
			if err != nil {
				return err
			}
			lowStock = deltas
			return nil
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, ev := range lowStock {
		s.bus.Publish(ctx, ev)
	}

	return s.FindByID(ctx, payload.ID)
}

// appendStatusInTx дописывает запись истории и поддерживает кэш последнего
// статуса. completed_at устанавливается только для finished и сбрасывается,
// когда более поздняя запись отменяет завершение.
func (s *repairRequestService) appendStatusInTx(ctx context.Context, tx pgx.Tx, requestID uint64, entry *dto.StatusEntryDTO) error {
	record := &entities.StatusRecord{
		Status:             entry.Status,
		AssignedEngineerID: entry.AssignedEngineerID,
		RepairRequestID:    requestID,
	}
	if _, err := s.statusRecordRepo.AppendInTx(ctx, tx, record); err != nil {
		return err
	}

	var completedAt *time.Time
	if entry.Status == constants.StatusFinished {
		completedAt = &record.CreatedAt
	}
	return s.repairRequestRepo.SetLastStatusInTx(ctx, tx, requestID, entry.Status, completedAt)
}

// reconcileStockInTx сверяет старый и новый наборы расходов и двигает остатки
// только на разницу. Дельты применяются в детерминированном порядке ключей,
// знак дельты выбирает между списанием и возвратом.
func (s *repairRequestService) reconcileStockInTx(ctx context.Context, tx pgx.Tx, requestID uint64, newParts []dto.UsedSparePartDTO) ([]events.LowStockEvent, error) {
	oldParts, err := s.usedSparePartRepo.ListByRequestInTx(ctx, tx, requestID)
	if err != nil {
		return nil, err
	}

	parts := make([]entities.UsedSparePart, 0, len(newParts))
	for _, p := range newParts {
		parts = append(parts, entities.UsedSparePart{
			SparePartID:   p.SparePartID,
			InstitutionID: p.InstitutionID,
			Quantity:      p.Quantity,
			Note:          p.Note,
		})
	}

	var lowStock []events.LowStockEvent
	for _, delta := range DiffUsedSpareParts(oldParts, parts) {
		if delta.Quantity < 0 {
			if err := s.locationRepo.ReleaseStockInTx(ctx, tx, delta.Key.SparePartID, delta.Key.InstitutionID, -delta.Quantity); err != nil {
				return nil, err
			}
			continue
		}

		remaining, err := s.locationRepo.ConsumeStockInTx(ctx, tx, delta.Key.SparePartID, delta.Key.InstitutionID, delta.Quantity)
		if err != nil {
			return nil, err
		}
		if remaining == 0 {
			// Нормализация: строка с нулевым остатком не хранится.
			if err := s.locationRepo.DeleteEmptyInTx(ctx, tx, delta.Key.SparePartID, delta.Key.InstitutionID); err != nil {
				return nil, err
			}
		}
		if remaining <= LowStockThreshold {
			lowStock = append(lowStock, events.LowStockEvent{
				SparePartID:   delta.Key.SparePartID,
				InstitutionID: delta.Key.InstitutionID,
				Remaining:     remaining,
			})
		}
	}

	if err := s.usedSparePartRepo.ReplaceForRequestInTx(ctx, tx, requestID, parts); err != nil {
		return nil, err
	}
	return lowStock, nil
}

// Delete каскадно удаляет заявку; физические файлы фотографий чистятся
// после коммита. Остатки склада не восстанавливаются.
func (s *repairRequestService) Delete(ctx context.Context, id uint64) error {
	basenames, err := s.photoRepo.ListPathsByRequest(ctx, id)
	if err != nil {
		return err
	}

	err = repositories.WithTx(ctx, s.storage, func(tx pgx.Tx) error {
		return s.repairRequestRepo.DeleteInTx(ctx, tx, id)
	})
	if err != nil {
		return err
	}

	s.photoIngestor.DeleteBatch(basenames)
	return nil
}

func (s *repairRequestService) FindByID(ctx context.Context, id uint64) (*dto.RepairRequestInfoDTO, error) {
	request, err := s.repairRequestRepo.FindByID(ctx, id, repositories.PreloadAll)
	if err != nil {
		return nil, err
	}
	info := s.mapRequestToInfoDTO(request)
	return &info, nil
}

func (s *repairRequestService) List(ctx context.Context, filter types.Filter) ([]dto.RepairRequestInfoDTO, *utils.PaginationMeta, error) {
	requests, total, err := s.repairRequestRepo.List(ctx, filter)
	if err != nil {
		return nil, nil, err
	}

	result := make([]dto.RepairRequestInfoDTO, 0, len(requests))
	for i := range requests {
		result = append(result, s.mapRequestToInfoDTO(&requests[i]))
	}

	meta := utils.NewPaginationMeta(filter.Page, filter.Limit, total)
	return result, &meta, nil
}

func (s *repairRequestService) mapRequestToInfoDTO(r *entities.RepairRequest) dto.RepairRequestInfoDTO {
	info := dto.RepairRequestInfoDTO{
		ID:             r.ID,
		Issue:          r.Issue,
		Urgency:        r.Urgency,
		ManagerNote:    r.ManagerNote,
		EngineerNote:   r.EngineerNote,
		LastStatus:     r.LastStatus,
		CreatedAt:      r.CreatedAt.Format(time.RFC3339),
		FailureTypes:   make([]dto.CatalogItemDTO, 0, len(r.FailureTypes)),
		UsedSpareParts: make([]dto.UsedSparePartInfoDTO, 0, len(r.UsedSpareParts)),
		Photos:         make([]dto.PhotoDTO, 0, len(r.Photos)),
		StatusHistory:  make([]dto.StatusRecordDTO, 0, len(r.StatusHistory)),
	}
	if r.CompletedAt != nil {
		completed := r.CompletedAt.Format(time.RFC3339)
		info.CompletedAt = &completed
	}
	if r.Equipment != nil {
		equipmentInfo := mapEquipmentToInfoDTO(r.Equipment)
		info.Equipment = &equipmentInfo
	}
	for _, ft := range r.FailureTypes {
		info.FailureTypes = append(info.FailureTypes, dto.CatalogItemDTO{ID: ft.ID, Name: ft.Name})
	}
	for _, p := range r.UsedSpareParts {
		partInfo := dto.UsedSparePartInfoDTO{ID: p.ID, Quantity: p.Quantity, Note: p.Note}
		if p.SparePart != nil {
			partInfo.SparePart = dto.CatalogItemDTO{ID: p.SparePart.ID, Name: p.SparePart.Name}
		}
		if p.Institution != nil {
			partInfo.Institution = &dto.CatalogItemDTO{ID: p.Institution.ID, Name: p.Institution.Name}
		}
		info.UsedSpareParts = append(info.UsedSpareParts, partInfo)
	}
	for _, photo := range r.Photos {
		info.Photos = append(info.Photos, dto.PhotoDTO{ID: photo.ID, URL: s.photoBaseURL + photo.FilePath})
	}
	for _, rec := range r.StatusHistory {
		recordInfo := dto.StatusRecordDTO{
			ID:        rec.ID,
			Status:    rec.Status,
			CreatedAt: rec.CreatedAt.Format(time.RFC3339),
		}
		if rec.AssignedEngineer != nil {
			recordInfo.AssignedEngineer = &dto.ShortUserDTO{
				ID:       rec.AssignedEngineer.ID,
				Username: rec.AssignedEngineer.Username,
				Email:    rec.AssignedEngineer.Email,
			}
		}
		info.StatusHistory = append(info.StatusHistory, recordInfo)
	}
	return info
}
