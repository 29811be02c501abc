package routes

import (
	"github.com/labstack/echo/v4"

	"medequip/internal/controllers"
	"medequip/pkg/middleware"
)

// Controllers — все контроллеры приложения для регистрации маршрутов.
type Controllers struct {
	Auth          *controllers.AuthController
	RepairRequest *controllers.RepairRequestController
	Equipment     *controllers.EquipmentController
	Report        *controllers.ReportController
	Health        *controllers.HealthController
}

// Register вешает все маршруты приложения на группу /api.
func Register(e *echo.Echo, c Controllers, auth *middleware.AuthMiddleware) {
	api := e.Group("/api")

	api.GET("/health", c.Health.Check)

	registerAuthRoutes(api, c.Auth)
	registerRepairRequestRoutes(api, c.RepairRequest, c.Report, auth)
	registerEquipmentRoutes(api, c.Equipment, auth)
}
