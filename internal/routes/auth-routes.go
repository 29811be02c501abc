package routes

import (
	"github.com/labstack/echo/v4"

	"medequip/internal/controllers"
)

func registerAuthRoutes(api *echo.Group, controller *controllers.AuthController) {
	group := api.Group("/auth")

	group.POST("/login", controller.Login)
	group.POST("/refresh", controller.Refresh)
}
