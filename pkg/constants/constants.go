package constants

// Статусы заявки на ремонт.
const (
	StatusNotTaken          = "not_taken"
	StatusInProgress        = "in_progress"
	StatusWaitingSpareParts = "waiting_spare_parts"
	StatusFinished          = "finished"
)

// Срочность заявки.
const (
	UrgencyCritical    = "critical"
	UrgencyNonCritical = "non_critical"
)

// Роли пользователей.
const (
	RoleEngineer = "engineer"
	RoleManager  = "manager"
)

// Производный статус оборудования.
const (
	EquipmentWorking          = "working"
	EquipmentUnderMaintenance = "under_maintenance"
	EquipmentNotWorking       = "not_working"
)

// StatusRank задаёт порядок сортировки статусов:
// not_taken < in_progress < waiting_spare_parts < finished.
var StatusRank = map[string]int{
	StatusNotTaken:          0,
	StatusInProgress:        1,
	StatusWaitingSpareParts: 2,
	StatusFinished:          3,
}
