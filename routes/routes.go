package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/trashure/api-go/controllers"
	"github.com/trashure/api-go/middleware"
	"github.com/trashure/api-go/services"
	"github.com/trashure/api-go/types"
	"gorm.io/gorm"
)

func SetupRoutes(r *gin.Engine, db *gorm.DB) {
	economy := types.GetEconomyConfig()

	// Settlement services
	ledger := services.NewLedgerService(economy)
	trades := services.NewTradeService(db, ledger, economy)
	purchases := services.NewPurchaseService(db, ledger, economy)
	moderation := services.NewModerationService(db, ledger, economy)

	// Initialize controllers
	authController := controllers.NewAuthController(db, economy)
	userController := controllers.NewUserController(db)
	listingController := controllers.NewListingController(db, purchases)
	tradeController := controllers.NewTradeController(db, trades)
	messageController := controllers.NewMessageController(db)
	reportController := controllers.NewReportController(db, moderation)

	// Public routes
	public := r.Group("/api")
	{
		public.POST("/register", authController.Register)
		public.POST("/login", authController.Login)
		public.GET("/listings", listingController.GetListings)
		public.GET("/listings/:id", listingController.GetListing)
	}

	// Protected routes
	protected := r.Group("/api")
	protected.Use(middleware.AuthMiddleware())
	{
		protected.POST("/logout", authController.Logout)
		protected.POST("/refresh-token", authController.RefreshToken)
		protected.GET("/profile", authController.GetProfile)
		protected.PUT("/profile", authController.UpdateProfile)

		SetupUserRoutes(protected, userController)
		SetupListingRoutes(protected, listingController)
		SetupTradeRoutes(protected, tradeController, messageController)
		SetupReportRoutes(protected, reportController, userController)
	}
}
