package routes

import (
	"github.com/labstack/echo/v4"

	"medequip/internal/controllers"
	"medequip/pkg/middleware"
)

func registerEquipmentRoutes(api *echo.Group, controller *controllers.EquipmentController, auth *middleware.AuthMiddleware) {
	group := api.Group("/equipments", auth.Auth)

	group.GET("", controller.ListEquipments)
	group.GET("/:id", controller.FindEquipment)
}
