package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/trashure/api-go/controllers"
)

func SetupUserRoutes(protected *gin.RouterGroup, userController *controllers.UserController) {
	users := protected.Group("/users")
	{
		users.GET("/search", userController.SearchUsers)
		users.GET("/:id", userController.GetUserProfile)
	}
}
