package services

import (
	"bytes"
	"context"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"medequip/internal/repositories"
	"medequip/pkg/types"
)

type ReportServiceInterface interface {
	ExportRepairRequests(ctx context.Context, filter types.Filter) (*bytes.Buffer, error)
}

type reportService struct {
	repairRequestRepo repositories.RepairRequestRepositoryInterface
	logger            *zap.Logger
}

func NewReportService(repairRequestRepo repositories.RepairRequestRepositoryInterface, logger *zap.Logger) ReportServiceInterface {
	return &reportService{repairRequestRepo: repairRequestRepo, logger: logger}
}

var reportHeaders = []string{
	"ID", "Неисправность", "Срочность", "Статус",
	"Оборудование", "Серийный номер", "Учреждение",
	"Создана", "Завершена",
}

// ExportRepairRequests выгружает заявки по текущему фильтру в xlsx.
// Пагинация фильтра игнорируется: отчёт всегда полный.
func (s *reportService) ExportRepairRequests(ctx context.Context, filter types.Filter) (*bytes.Buffer, error) {
	filter.Page = 1
	filter.Limit = 10000

	requests, _, err := s.repairRequestRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("не удалось закрыть файл отчёта", zap.Error(err))
		}
	}()

	const sheet = "Заявки"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	for col, header := range reportHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, err
		}
	}

	for i, req := range requests {
		equipmentModel, serialNumber, institution := "", "", ""
		if req.Equipment != nil {
			serialNumber = req.Equipment.SerialNumber
			if req.Equipment.EquipmentModel != nil {
				equipmentModel = req.Equipment.EquipmentModel.Name
			}
			if req.Equipment.Institution != nil {
				institution = req.Equipment.Institution.Name
			}
		}
		completedAt := ""
		if req.CompletedAt != nil {
			completedAt = req.CompletedAt.Format(time.RFC3339)
		}

		row := []interface{}{
			req.ID, req.Issue, req.Urgency, req.LastStatus,
			equipmentModel, serialNumber, institution,
			req.CreatedAt.Format(time.RFC3339), completedAt,
		}
		for col, value := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf, nil
}
