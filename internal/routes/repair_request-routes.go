package routes

import (
	"github.com/labstack/echo/v4"

	"medequip/internal/controllers"
	"medequip/pkg/constants"
	"medequip/pkg/middleware"
)

func registerRepairRequestRoutes(
	api *echo.Group,
	controller *controllers.RepairRequestController,
	reportController *controllers.ReportController,
	auth *middleware.AuthMiddleware,
) {
	group := api.Group("/repair-requests", auth.Auth)

	group.GET("", controller.ListRepairRequests)
	group.POST("", controller.CreateRepairRequest)
	// Выгрузка объявляется до ":id", иначе echo примет "export" за идентификатор.
	group.GET("/export", reportController.ExportRepairRequests, auth.RequireRole(constants.RoleManager))
	// Идентификатор обновляемой заявки приходит в теле patch-запроса.
	group.PUT("", controller.UpdateRepairRequest)
	group.GET("/:id", controller.FindRepairRequest)
	group.DELETE("/:id", controller.DeleteRepairRequest, auth.RequireRole(constants.RoleManager))
}
