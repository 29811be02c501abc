package events

import "medequip/pkg/eventbus"

// RepairRequestCreatedEvent публикуется после коммита транзакции создания
// заявки и несёт всё, что нужно письму: дочитывать БД слушателю не приходится.
type RepairRequestCreatedEvent struct {
	RepairRequestID    uint64
	Issue              string
	Urgency            string
	EquipmentModelName string
	PhotoURLs          []string
	CreatorID          uint64
}

func (e RepairRequestCreatedEvent) Name() string { return eventbus.EventRepairRequestCreated }

// LowStockEvent публикуется после коммита обновления, опустившего остаток
// позиции склада до порога и ниже.
type LowStockEvent struct {
	SparePartID   uint64
	InstitutionID uint64
	Remaining     int64
}

func (e LowStockEvent) Name() string { return eventbus.EventLowStock }

// HealthCheckEvent публикуется обработчиком /api/health.
type HealthCheckEvent struct {
	RequestedBy string
}

func (e HealthCheckEvent) Name() string { return eventbus.EventHealthCheck }
