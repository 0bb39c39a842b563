package services

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/trashure/api-go/models"
	"github.com/trashure/api-go/types"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testUserSeq uint64

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{}, &models.RefreshToken{}, &models.Listing{},
		&models.Conversation{}, &models.Message{}, &models.TradeOffer{},
		&models.Report{}, &models.CreditLog{},
	); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

func testEconomy() types.EconomyConfig {
	return types.GetEconomyConfig()
}

func createTestUser(t *testing.T, db *gorm.DB, credits int64, trustScore int) *models.User {
	t.Helper()

	n := atomic.AddUint64(&testUserSeq, 1)
	password := "hashed-password"
	user := models.User{
		Username:   fmt.Sprintf("user%d", n),
		Email:      fmt.Sprintf("user%d@example.com", n),
		Password:   &password,
		Credits:    credits,
		TrustScore: trustScore,
		Role:       models.RoleUser,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return &user
}

func createTestListing(t *testing.T, db *gorm.DB, ownerID uint, price int64, status string) *models.Listing {
	t.Helper()

	listing := models.Listing{
		UserID:   ownerID,
		Title:    "Test Item",
		Category: "misc",
		Price:    price,
		Status:   status,
	}
	if err := db.Create(&listing).Error; err != nil {
		t.Fatalf("Failed to create test listing: %v", err)
	}
	return &listing
}

func createTestConversation(t *testing.T, db *gorm.DB, initiatorID, recipientID uint) *models.Conversation {
	t.Helper()

	conversation := models.Conversation{
		InitiatorID: initiatorID,
		RecipientID: recipientID,
	}
	if err := db.Create(&conversation).Error; err != nil {
		t.Fatalf("Failed to create test conversation: %v", err)
	}
	return &conversation
}

func reloadUser(t *testing.T, db *gorm.DB, id uint) *models.User {
	t.Helper()

	var user models.User
	if err := db.First(&user, id).Error; err != nil {
		t.Fatalf("Failed to reload user %d: %v", id, err)
	}
	return &user
}

func reloadListing(t *testing.T, db *gorm.DB, id uint) *models.Listing {
	t.Helper()

	var listing models.Listing
	if err := db.First(&listing, id).Error; err != nil {
		t.Fatalf("Failed to reload listing %d: %v", id, err)
	}
	return &listing
}

func totalCredits(t *testing.T, db *gorm.DB) int64 {
	t.Helper()

	var total int64
	if err := db.Model(&models.User{}).Select("COALESCE(SUM(credits), 0)").Scan(&total).Error; err != nil {
		t.Fatalf("Failed to sum credits: %v", err)
	}
	return total
}
