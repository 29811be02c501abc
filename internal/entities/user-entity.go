package entities

import "time"

// User — пользователь системы. Из ядра заявок читается, но не изменяется.
type User struct {
	ID           uint64
	Email        string
	Username     string
	PasswordHash string
	Role         string
	Scopes       []string

	ReceiveRepairRequestCreationNotification bool
	ReceiveLowStockNotification              bool

	CreatedAt time.Time
}
