package listeners

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"medequip/internal/events"
	"medequip/internal/repositories"
	"medequip/internal/services"
	"medequip/pkg/eventbus"
)

// NotificationListener связывает шину событий с почтовой рассылкой.
// Вызывается в фоне после ответа клиенту: ошибки логируются шиной.
type NotificationListener struct {
	userRepo     repositories.UserRepositoryInterface
	locationRepo repositories.LocationRepositoryInterface
	notification services.NotificationServiceInterface
	logger       *zap.Logger
}

func NewNotificationListener(
	userRepo repositories.UserRepositoryInterface,
	locationRepo repositories.LocationRepositoryInterface,
	notification services.NotificationServiceInterface,
	logger *zap.Logger,
) *NotificationListener {
	return &NotificationListener{
		userRepo:     userRepo,
		locationRepo: locationRepo,
		notification: notification,
		logger:       logger,
	}
}

// Register подписывает обработчики на события. Вызывается один раз на старте.
func (l *NotificationListener) Register(bus *eventbus.Bus) {
	bus.Subscribe(eventbus.EventRepairRequestCreated, l.handleRepairRequestCreated)
	bus.Subscribe(eventbus.EventLowStock, l.handleLowStock)
	bus.Subscribe(eventbus.EventHealthCheck, l.handleHealthCheck)
}

func (l *NotificationListener) handleRepairRequestCreated(ctx context.Context, event eventbus.Event) error {
	created, ok := event.(events.RepairRequestCreatedEvent)
	if !ok {
		return fmt.Errorf("неожиданный тип события: %T", event)
	}

	recipients, err := l.userRepo.ListCreationNotificationRecipients(ctx)
	if err != nil {
		return err
	}
	return l.notification.SendRepairRequestCreated(ctx, recipients, created)
}

func (l *NotificationListener) handleLowStock(ctx context.Context, event eventbus.Event) error {
	lowStock, ok := event.(events.LowStockEvent)
	if !ok {
		return fmt.Errorf("неожиданный тип события: %T", event)
	}

	// Остаток перечитывается на момент отправки: если склад уже пополнили,
	// письмо не рассылается.
	location, err := l.locationRepo.FindByKey(ctx, lowStock.SparePartID, lowStock.InstitutionID)
	if err == nil && location.Quantity > lowStock.Remaining {
		l.logger.Info("остаток пополнен, уведомление low_stock пропущено",
			zap.Uint64("spare_part_id", lowStock.SparePartID),
			zap.Uint64("institution_id", lowStock.InstitutionID))
		return nil
	}

	recipients, err := l.userRepo.ListLowStockNotificationRecipients(ctx)
	if err != nil {
		return err
	}
	return l.notification.SendLowStock(ctx, recipients, lowStock)
}

func (l *NotificationListener) handleHealthCheck(ctx context.Context, event eventbus.Event) error {
	check, ok := event.(events.HealthCheckEvent)
	if !ok {
		return fmt.Errorf("неожиданный тип события: %T", event)
	}
	l.logger.Info("проверка работоспособности", zap.String("requested_by", check.RequestedBy))
	return nil
}
