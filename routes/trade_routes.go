package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/trashure/api-go/controllers"
)

func SetupTradeRoutes(protected *gin.RouterGroup, tradeController *controllers.TradeController, messageController *controllers.MessageController) {
	conversations := protected.Group("/conversations")
	{
		conversations.GET("", messageController.GetConversations)
		conversations.POST("", messageController.CreateConversation)
		conversations.GET("/:id/messages", messageController.GetMessages)
		conversations.POST("/:id/messages", messageController.SendMessage)
		conversations.GET("/:id/trades", tradeController.GetConversationTrades)
	}

	trades := protected.Group("/trades")
	{
		trades.POST("", tradeController.CreateTradeOffer)
		trades.POST("/:id/accept", tradeController.AcceptTradeOffer)
		trades.POST("/:id/decline", tradeController.DeclineTradeOffer)
	}
}
