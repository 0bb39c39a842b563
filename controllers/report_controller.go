package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/trashure/api-go/services"
	"github.com/trashure/api-go/utils"
	"gorm.io/gorm"
)

type ReportController struct {
	DB         *gorm.DB
	Moderation *services.ModerationService
}

func NewReportController(db *gorm.DB, moderation *services.ModerationService) *ReportController {
	return &ReportController{DB: db, Moderation: moderation}
}

// FileReport lets any user report another.
func (rc *ReportController) FileReport(c *gin.Context) {
	user := utils.GetUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in context"})
		return
	}

	var input struct {
		ReportedUserID uint   `json:"reported_user_id" binding:"required"`
		Reason         string `json:"reason" binding:"required"`
		Description    string `json:"description"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "success": false})
		return
	}

	report, err := rc.Moderation.FileReport(user.UserID, input.ReportedUserID, input.Reason, input.Description)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Report submitted",
		"data":    report,
	})
}

// GetReports is the moderation queue.
func (rc *ReportController) GetReports(c *gin.Context) {
	reports, err := rc.Moderation.ListReports(c.Query("status"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch reports"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": reports})
}

// ReviewReport approves or dismisses a pending report.
func (rc *ReportController) ReviewReport(c *gin.Context) {
	user := utils.GetUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in context"})
		return
	}

	reportID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid report id"})
		return
	}

	var input struct {
		Action     string `json:"action" binding:"required,oneof=approve dismiss"`
		AdminNotes string `json:"admin_notes"`
		BanUser    bool   `json:"ban_user"`
		BanReason  string `json:"ban_reason"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "success": false})
		return
	}

	report, err := rc.Moderation.ReviewReport(services.ReviewReportInput{
		ReportID:   uint(reportID),
		ReviewerID: user.UserID,
		Action:     input.Action,
		AdminNotes: input.AdminNotes,
		BanUser:    input.BanUser,
		BanReason:  input.BanReason,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Report reviewed",
		"data":    report,
	})
}
