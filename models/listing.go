package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Listing status constants
const (
	ListingStatusActive = "active"
	ListingStatusSold   = "sold"
	ListingStatusDraft  = "draft"
)

type Listing struct {
	ID          uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at"`
	UserID      uint           `gorm:"not null;index" json:"user_id"`
	User        User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Title       string         `gorm:"not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Category    string         `gorm:"not null;index" json:"category"`
	Condition   string         `json:"condition"` // "new", "like_new", "used", "worn"
	Price       int64          `gorm:"not null;check:price > 0" json:"price"`
	Status      string         `gorm:"not null;default:'active';index" json:"status"` // active, sold, draft
	Images      pq.StringArray `gorm:"type:text[]" json:"images"`
	Tags        pq.StringArray `gorm:"type:text[]" json:"tags"`
}

// IsActive reports whether the listing can still be purchased or traded.
func (l *Listing) IsActive() bool {
	return l.Status == ListingStatusActive
}
