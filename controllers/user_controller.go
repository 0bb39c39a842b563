package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/trashure/api-go/models"
	"github.com/trashure/api-go/utils"
	"gorm.io/gorm"
)

type UserController struct {
	DB *gorm.DB
}

func NewUserController(db *gorm.DB) *UserController {
	return &UserController{DB: db}
}

// GetUserProfile is the public view of another user: reputation and catalog
// presence, no balance or contact details.
func (uc *UserController) GetUserProfile(c *gin.Context) {
	currentUser := utils.GetUser(c)
	if currentUser == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in context"})
		return
	}

	userID := c.Param("id")

	var targetUser models.User
	if err := uc.DB.First(&targetUser, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var stats struct {
		ActiveListings  int64 `json:"activeListings"`
		SoldListings    int64 `json:"soldListings"`
		CompletedTrades int64 `json:"completedTrades"`
	}

	uc.DB.Model(&models.Listing{}).Where("user_id = ? AND status = ?", targetUser.ID, models.ListingStatusActive).Count(&stats.ActiveListings)
	uc.DB.Model(&models.Listing{}).Where("user_id = ? AND status = ?", targetUser.ID, models.ListingStatusSold).Count(&stats.SoldListings)
	uc.DB.Model(&models.TradeOffer{}).
		Where("(sender_id = ? OR receiver_id = ?) AND status = ?", targetUser.ID, targetUser.ID, models.TradeOfferStatusAccepted).
		Count(&stats.CompletedTrades)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"id":              targetUser.ID,
			"username":        targetUser.Username,
			"bio":             targetUser.Bio,
			"avatar":          targetUser.Avatar,
			"trust_score":     targetUser.TrustScore,
			"is_banned":       targetUser.IsBanned,
			"createdAt":       targetUser.CreatedAt,
			"isOwnProfile":    currentUser.UserID == targetUser.ID,
			"activeListings":  stats.ActiveListings,
			"soldListings":    stats.SoldListings,
			"completedTrades": stats.CompletedTrades,
		},
	})
}

func (uc *UserController) SearchUsers(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Search query is required"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 50 {
		pageSize = 20
	}

	var users []struct {
		ID         uint   `json:"id"`
		Username   string `json:"username"`
		Avatar     string `json:"avatar"`
		TrustScore int    `json:"trustScore"`
	}

	searchPattern := "%" + query + "%"

	if err := uc.DB.Table("users").
		Select("users.id, users.username, users.avatar, users.trust_score").
		Where("users.username ILIKE ? AND users.is_banned = ? AND users.deleted_at IS NULL", searchPattern, false).
		Order("users.trust_score DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Scan(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not search users"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": users})
}

// GetUserDetail is the admin view: full economic and moderation state.
func (uc *UserController) GetUserDetail(c *gin.Context) {
	var user models.User
	if err := uc.DB.First(&user, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var reportsAgainst int64
	uc.DB.Model(&models.Report{}).Where("reported_user_id = ?", user.ID).Count(&reportsAgainst)

	var creditLog []models.CreditLog
	uc.DB.Where("from_user_id = ? OR to_user_id = ?", user.ID, user.ID).
		Order("created_at DESC").
		Limit(50).
		Find(&creditLog)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"user":           user,
			"reportsAgainst": reportsAgainst,
			"creditLog":      creditLog,
		},
	})
}
