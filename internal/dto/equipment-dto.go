package dto

type EquipmentInfoDTO struct {
	ID             uint64          `json:"id"`
	SerialNumber   string          `json:"serial_number"`
	Installed      bool            `json:"installed"`
	Location       string          `json:"location"`
	Status         string          `json:"status,omitempty"`
	EquipmentModel *CatalogItemDTO `json:"equipment_model,omitempty"`
	Category       *CatalogItemDTO `json:"equipment_category,omitempty"`
	Institution    *CatalogItemDTO `json:"institution,omitempty"`
}
