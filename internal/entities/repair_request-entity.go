package entities

import "time"

// RepairRequest — заявка на ремонт оборудования. Единственный писатель
// состояния заявки — агрегатный сервис.
type RepairRequest struct {
	ID           uint64
	Issue        string
	Urgency      string
	ManagerNote  string
	EngineerNote string
	LastStatus   string
	EquipmentID  *uint64
	CreatedAt    time.Time
	CompletedAt  *time.Time

	Equipment      *Equipment
	FailureTypes   []FailureType
	UsedSpareParts []UsedSparePart
	Photos         []Photo
	StatusHistory  []StatusRecord
}

// StatusRecord — неизменяемая запись истории статусов заявки.
type StatusRecord struct {
	ID                 uint64
	Status             string
	AssignedEngineerID *uint64
	RepairRequestID    uint64
	CreatedAt          time.Time

	AssignedEngineer *User
}

// UsedSparePart — задекларированный расход запчасти со склада учреждения.
type UsedSparePart struct {
	ID              uint64
	Quantity        int64
	Note            string
	SparePartID     uint64
	InstitutionID   uint64
	RepairRequestID uint64

	SparePart   *SparePart
	Institution *Institution
}

// Photo — фотография, приложенная к заявке. FilePath хранит только базовое
// имя файла; абсолютный URL собирается при чтении.
type Photo struct {
	ID              uint64
	FilePath        string
	RepairRequestID uint64
}
