package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/trashure/api-go/models"
	"github.com/trashure/api-go/utils"
	"gorm.io/gorm"
)

type MessageController struct {
	DB *gorm.DB
}

func NewMessageController(db *gorm.DB) *MessageController {
	return &MessageController{DB: db}
}

// GetConversations lists every conversation the caller participates in.
func (mc *MessageController) GetConversations(c *gin.Context) {
	user := utils.GetUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in context"})
		return
	}

	var conversations []models.Conversation
	if err := mc.DB.
		Preload("Initiator").
		Preload("Recipient").
		Preload("Listing").
		Where("initiator_id = ? OR recipient_id = ?", user.UserID, user.UserID).
		Order("updated_at DESC").
		Find(&conversations).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch conversations"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": conversations})
}

// CreateConversation opens (or returns the existing) thread with another
// user, optionally anchored to a listing.
func (mc *MessageController) CreateConversation(c *gin.Context) {
	user := utils.GetUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in context"})
		return
	}

	var input struct {
		RecipientID uint  `json:"recipient_id" binding:"required"`
		ListingID   *uint `json:"listing_id"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "success": false})
		return
	}

	if input.RecipientID == user.UserID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot message yourself"})
		return
	}

	var recipient models.User
	if err := mc.DB.First(&recipient, input.RecipientID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	// Reuse the existing thread regardless of who opened it.
	var existing models.Conversation
	query := mc.DB.Where(
		"(initiator_id = ? AND recipient_id = ?) OR (initiator_id = ? AND recipient_id = ?)",
		user.UserID, input.RecipientID, input.RecipientID, user.UserID,
	)
	if input.ListingID != nil {
		query = query.Where("listing_id = ?", *input.ListingID)
	} else {
		query = query.Where("listing_id IS NULL")
	}
	if err := query.First(&existing).Error; err == nil {
		c.JSON(http.StatusOK, gin.H{"success": true, "data": existing})
		return
	}

	conversation := models.Conversation{
		InitiatorID: user.UserID,
		RecipientID: input.RecipientID,
		ListingID:   input.ListingID,
	}
	if err := mc.DB.Create(&conversation).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create conversation"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": conversation})
}

func (mc *MessageController) GetMessages(c *gin.Context) {
	user := utils.GetUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in context"})
		return
	}

	conversation, ok := mc.loadParticipantConversation(c, user.UserID)
	if !ok {
		return
	}

	var messages []models.Message
	if err := mc.DB.
		Preload("Sender").
		Where("conversation_id = ?", conversation.ID).
		Order("created_at ASC").
		Find(&messages).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch messages"})
		return
	}

	// Mark the other party's messages read.
	now := time.Now()
	mc.DB.Model(&models.Message{}).
		Where("conversation_id = ? AND sender_id <> ? AND read_at IS NULL", conversation.ID, user.UserID).
		Update("read_at", now)

	c.JSON(http.StatusOK, gin.H{"success": true, "data": messages})
}

func (mc *MessageController) SendMessage(c *gin.Context) {
	user := utils.GetUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in context"})
		return
	}

	conversation, ok := mc.loadParticipantConversation(c, user.UserID)
	if !ok {
		return
	}

	var input struct {
		Body string `json:"body" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "success": false})
		return
	}

	message := models.Message{
		ConversationID: conversation.ID,
		SenderID:       user.UserID,
		Body:           input.Body,
	}
	if err := mc.DB.Create(&message).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not send message"})
		return
	}

	// Bump the thread so conversation lists sort it first.
	mc.DB.Model(&conversation).Update("updated_at", time.Now())

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": message})
}

func (mc *MessageController) loadParticipantConversation(c *gin.Context, userID uint) (*models.Conversation, bool) {
	conversationID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid conversation id"})
		return nil, false
	}

	var conversation models.Conversation
	if err := mc.DB.First(&conversation, conversationID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
		return nil, false
	}
	if !conversation.HasParticipant(userID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not a participant of this conversation"})
		return nil, false
	}

	return &conversation, true
}
