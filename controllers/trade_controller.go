package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/trashure/api-go/models"
	"github.com/trashure/api-go/services"
	"github.com/trashure/api-go/utils"
	"gorm.io/gorm"
)

type TradeController struct {
	DB     *gorm.DB
	Trades *services.TradeService
}

func NewTradeController(db *gorm.DB, trades *services.TradeService) *TradeController {
	return &TradeController{DB: db, Trades: trades}
}

// CreateTradeOffer proposes an exchange inside an existing conversation: an
// optional listing of the sender's plus optional credits, for a listing of
// the receiver's.
func (tc *TradeController) CreateTradeOffer(c *gin.Context) {
	user := utils.GetUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in context"})
		return
	}

	var input struct {
		ConversationID     uint  `json:"conversation_id" binding:"required"`
		RequestedListingID uint  `json:"requested_listing_id" binding:"required"`
		OfferedListingID   *uint `json:"offered_listing_id"`
		AdditionalCredits  int64 `json:"additional_credits" binding:"omitempty,min=0"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "success": false})
		return
	}

	var conversation models.Conversation
	if err := tc.DB.First(&conversation, input.ConversationID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
		return
	}
	if !conversation.HasParticipant(user.UserID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not a participant of this conversation"})
		return
	}

	receiverID := conversation.InitiatorID
	if receiverID == user.UserID {
		receiverID = conversation.RecipientID
	}

	offer, err := tc.Trades.CreateOffer(services.CreateTradeOfferInput{
		ConversationID:     conversation.ID,
		SenderID:           user.UserID,
		ReceiverID:         receiverID,
		RequestedListingID: input.RequestedListingID,
		OfferedListingID:   input.OfferedListingID,
		AdditionalCredits:  input.AdditionalCredits,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": offer})
}

// GetConversationTrades lists a conversation's offers, expiring stale ones on
// the way out.
func (tc *TradeController) GetConversationTrades(c *gin.Context) {
	user := utils.GetUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in context"})
		return
	}

	conversationID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid conversation id"})
		return
	}

	var conversation models.Conversation
	if err := tc.DB.First(&conversation, conversationID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
		return
	}
	if !conversation.HasParticipant(user.UserID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not a participant of this conversation"})
		return
	}

	offers, err := tc.Trades.ListForConversation(conversation.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch trade offers"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": offers})
}

func (tc *TradeController) AcceptTradeOffer(c *gin.Context) {
	user := utils.GetUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in context"})
		return
	}

	offerID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid offer id"})
		return
	}

	offer, err := tc.Trades.Accept(uint(offerID), user.UserID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Trade completed",
		"data":    offer,
	})
}

func (tc *TradeController) DeclineTradeOffer(c *gin.Context) {
	user := utils.GetUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in context"})
		return
	}

	offerID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid offer id"})
		return
	}

	offer, err := tc.Trades.Decline(uint(offerID), user.UserID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Trade offer declined",
		"data":    offer,
	})
}
