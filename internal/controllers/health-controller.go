package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"medequip/internal/events"
	"medequip/pkg/eventbus"
)

type HealthController struct {
	bus    *eventbus.Bus
	logger *zap.Logger
}

func NewHealthController(bus *eventbus.Bus, logger *zap.Logger) *HealthController {
	return &HealthController{bus: bus, logger: logger}
}

func (c *HealthController) Check(ctx echo.Context) error {
	c.bus.Publish(ctx.Request().Context(), events.HealthCheckEvent{
		RequestedBy: ctx.RealIP(),
	})
	return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
