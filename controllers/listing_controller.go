package controllers

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"github.com/trashure/api-go/models"
	"github.com/trashure/api-go/services"
	"github.com/trashure/api-go/utils"
	"gorm.io/gorm"
)

type ListingController struct {
	DB        *gorm.DB
	Purchases *services.PurchaseService
}

func NewListingController(db *gorm.DB, purchases *services.PurchaseService) *ListingController {
	return &ListingController{DB: db, Purchases: purchases}
}

type ListingQuery struct {
	Q         string `form:"q"`
	Category  string `form:"category"`
	Condition string `form:"condition"`
	MinPrice  int64  `form:"minPrice" binding:"omitempty,min=0"`
	MaxPrice  int64  `form:"maxPrice" binding:"omitempty,min=0"`
	Page      int    `form:"page,default=1" binding:"min=1"`
	PageSize  int    `form:"pageSize,default=20" binding:"min=1,max=50"`
}

// GetListings is the public catalog browse/search endpoint. Only active
// listings are visible here.
func (lc *ListingController) GetListings(c *gin.Context) {
	var query ListingQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	baseQuery := lc.DB.Model(&models.Listing{}).
		Where("status = ?", models.ListingStatusActive)

	if q := strings.TrimSpace(query.Q); q != "" {
		pattern := "%" + q + "%"
		baseQuery = baseQuery.Where("title ILIKE ? OR description ILIKE ?", pattern, pattern)
	}
	if query.Category != "" {
		baseQuery = baseQuery.Where("category = ?", query.Category)
	}
	if query.Condition != "" {
		baseQuery = baseQuery.Where("condition = ?", query.Condition)
	}
	if query.MinPrice > 0 {
		baseQuery = baseQuery.Where("price >= ?", query.MinPrice)
	}
	if query.MaxPrice > 0 {
		baseQuery = baseQuery.Where("price <= ?", query.MaxPrice)
	}

	var totalItems int64
	baseQuery.Count(&totalItems)

	offset := (query.Page - 1) * query.PageSize
	var listings []models.Listing
	if err := baseQuery.
		Preload("User").
		Order("created_at DESC").
		Offset(offset).
		Limit(query.PageSize).
		Find(&listings).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch listings"})
		return
	}

	c.JSON(http.StatusOK, StandardResponse{
		Success: true,
		Data:    listings,
		Pagination: &PaginationMeta{
			CurrentPage: query.Page,
			PageSize:    query.PageSize,
			TotalItems:  totalItems,
			TotalPages:  int(math.Ceil(float64(totalItems) / float64(query.PageSize))),
		},
	})
}

func (lc *ListingController) GetListing(c *gin.Context) {
	listingID := c.Param("id")

	var listing models.Listing
	if err := lc.DB.Preload("User").First(&listing, listingID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": listing})
}

func (lc *ListingController) CreateListing(c *gin.Context) {
	user := utils.GetUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in context"})
		return
	}

	var input struct {
		Title       string   `json:"title" binding:"required"`
		Description string   `json:"description"`
		Category    string   `json:"category" binding:"required"`
		Condition   string   `json:"condition" binding:"omitempty,oneof=new like_new used worn"`
		Price       int64    `json:"price" binding:"required,min=1"`
		Status      string   `json:"status" binding:"omitempty,oneof=active draft"`
		Images      []string `json:"images"`
		Tags        []string `json:"tags"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "success": false})
		return
	}

	status := input.Status
	if status == "" {
		status = models.ListingStatusActive
	}

	listing := models.Listing{
		UserID:      user.UserID,
		Title:       input.Title,
		Description: input.Description,
		Category:    input.Category,
		Condition:   input.Condition,
		Price:       input.Price,
		Status:      status,
		Images:      pq.StringArray(input.Images),
		Tags:        pq.StringArray(input.Tags),
	}

	if err := lc.DB.Create(&listing).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create listing", "success": false})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": listing})
}

func (lc *ListingController) UpdateListing(c *gin.Context) {
	user := utils.GetUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in context"})
		return
	}

	var listing models.Listing
	if err := lc.DB.First(&listing, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
		return
	}

	if listing.UserID != user.UserID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not your listing"})
		return
	}
	if listing.Status == models.ListingStatusSold {
		c.JSON(http.StatusConflict, gin.H{"error": "Sold listings cannot be edited"})
		return
	}

	var input struct {
		Title       *string  `json:"title"`
		Description *string  `json:"description"`
		Category    *string  `json:"category"`
		Condition   *string  `json:"condition" binding:"omitempty,oneof=new like_new used worn"`
		Price       *int64   `json:"price" binding:"omitempty,min=1"`
		Status      *string  `json:"status" binding:"omitempty,oneof=active draft"`
		Images      []string `json:"images"`
		Tags        []string `json:"tags"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "success": false})
		return
	}

	updates := map[string]interface{}{}
	if input.Title != nil {
		updates["title"] = *input.Title
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.Category != nil {
		updates["category"] = *input.Category
	}
	if input.Condition != nil {
		updates["condition"] = *input.Condition
	}
	if input.Price != nil {
		updates["price"] = *input.Price
	}
	if input.Status != nil {
		updates["status"] = *input.Status
	}
	if input.Images != nil {
		updates["images"] = pq.StringArray(input.Images)
	}
	if input.Tags != nil {
		updates["tags"] = pq.StringArray(input.Tags)
	}

	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nothing to update", "success": false})
		return
	}

	// Guard on live status so an edit cannot race a settlement that just
	// sold the listing.
	result := lc.DB.Model(&models.Listing{}).
		Where("id = ? AND user_id = ? AND status <> ?", listing.ID, user.UserID, models.ListingStatusSold).
		Updates(updates)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not update listing", "success": false})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Listing is no longer editable"})
		return
	}

	lc.DB.First(&listing, listing.ID)
	c.JSON(http.StatusOK, gin.H{"success": true, "data": listing})
}

func (lc *ListingController) DeleteListing(c *gin.Context) {
	user := utils.GetUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in context"})
		return
	}

	var listing models.Listing
	if err := lc.DB.First(&listing, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
		return
	}

	if listing.UserID != user.UserID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not your listing"})
		return
	}

	if err := lc.DB.Delete(&listing).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not delete listing"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Listing deleted"})
}

func (lc *ListingController) GetMyListings(c *gin.Context) {
	user := utils.GetUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in context"})
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

	baseQuery := lc.DB.Model(&models.Listing{}).Where("user_id = ?", user.UserID)
	if status := c.Query("status"); status != "" {
		baseQuery = baseQuery.Where("status = ?", status)
	}

	var totalItems int64
	baseQuery.Count(&totalItems)

	var listings []models.Listing
	if err := baseQuery.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&listings).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch listings"})
		return
	}

	c.JSON(http.StatusOK, StandardResponse{
		Success: true,
		Data:    listings,
		Pagination: &PaginationMeta{
			CurrentPage: page,
			PageSize:    pageSize,
			TotalItems:  totalItems,
			TotalPages:  int(math.Ceil(float64(totalItems) / float64(pageSize))),
		},
	})
}

// PurchaseListing settles a direct purchase of an active listing.
func (lc *ListingController) PurchaseListing(c *gin.Context) {
	user := utils.GetUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in context"})
		return
	}

	listingID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid listing id"})
		return
	}

	listing, err := lc.Purchases.Purchase(user.UserID, uint(listingID))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Purchase complete",
		"data":    listing,
	})
}
