package dto

import (
	"github.com/aarondl/null/v8"
)

type CreateRepairRequestDTO struct {
	Issue       string `json:"issue" validate:"required,min=3,max=2000"`
	Urgency     string `json:"urgency" validate:"required,oneof=critical non_critical"`
	EquipmentID uint64 `json:"equipment_id" validate:"required,gt=0"`
}

// StatusEntryDTO — не более одной новой записи истории в одном обновлении.
type StatusEntryDTO struct {
	Status             string  `json:"status" validate:"required,oneof=not_taken in_progress waiting_spare_parts finished"`
	AssignedEngineerID *uint64 `json:"assigned_engineer_id,omitempty" validate:"omitempty,gt=0"`
}

type UsedSparePartDTO struct {
	SparePartID   uint64 `json:"spare_part_id" validate:"required,gt=0"`
	InstitutionID uint64 `json:"institution_id" validate:"required,gt=0"`
	Quantity      int64  `json:"quantity" validate:"gte=0"`
	Note          string `json:"note"`
}

// UpdateRepairRequestDTO — patch: отсутствующие поля не трогаются,
// used_spare_parts задаёт полную замену набора.
type UpdateRepairRequestDTO struct {
	ID              uint64              `json:"id" validate:"required,gt=0"`
	ManagerNote     null.String         `json:"manager_note,omitempty"`
	EngineerNote    null.String         `json:"engineer_note,omitempty"`
	FailureTypesIDs *[]uint64           `json:"failure_types_ids,omitempty" validate:"omitempty,dive,gt=0"`
	StatusHistory   *StatusEntryDTO     `json:"status_history,omitempty"`
	UsedSpareParts  *[]UsedSparePartDTO `json:"used_spare_parts,omitempty" validate:"omitempty,dive"`
}

type StatusRecordDTO struct {
	ID               uint64        `json:"id"`
	Status           string        `json:"status"`
	AssignedEngineer *ShortUserDTO `json:"assigned_engineer,omitempty"`
	CreatedAt        string        `json:"created_at"`
}

type UsedSparePartInfoDTO struct {
	ID          uint64          `json:"id"`
	Quantity    int64           `json:"quantity"`
	Note        string          `json:"note"`
	SparePart   CatalogItemDTO  `json:"spare_part"`
	Institution *CatalogItemDTO `json:"institution,omitempty"`
}

type PhotoDTO struct {
	ID  uint64 `json:"id"`
	URL string `json:"url"`
}

// RepairRequestInfoDTO — гидрированная заявка со всеми связями.
type RepairRequestInfoDTO struct {
	ID             uint64                 `json:"id"`
	Issue          string                 `json:"issue"`
	Urgency        string                 `json:"urgency"`
	ManagerNote    string                 `json:"manager_note"`
	EngineerNote   string                 `json:"engineer_note"`
	LastStatus     string                 `json:"last_status"`
	CreatedAt      string                 `json:"created_at"`
	CompletedAt    *string                `json:"completed_at"`
	Equipment      *EquipmentInfoDTO      `json:"equipment,omitempty"`
	FailureTypes   []CatalogItemDTO       `json:"failure_types"`
	UsedSpareParts []UsedSparePartInfoDTO `json:"used_spare_parts"`
	Photos         []PhotoDTO             `json:"photos"`
	StatusHistory  []StatusRecordDTO      `json:"status_history"`
}
