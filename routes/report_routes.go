package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/trashure/api-go/controllers"
	"github.com/trashure/api-go/middleware"
	"github.com/trashure/api-go/models"
)

func SetupReportRoutes(protected *gin.RouterGroup, reportController *controllers.ReportController, userController *controllers.UserController) {
	protected.POST("/reports", reportController.FileReport)

	admin := protected.Group("/admin")
	admin.Use(middleware.RequireRole(models.RoleAdmin, models.RoleModerator))
	{
		admin.GET("/reports", reportController.GetReports)
		admin.POST("/reports/:id/review", reportController.ReviewReport)
		admin.GET("/users/:id", userController.GetUserDetail)
	}
}
