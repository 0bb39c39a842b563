package models

import (
	"time"

	"gorm.io/gorm"
)

// Report status constants
const (
	ReportStatusPending   = "pending"
	ReportStatusResolved  = "resolved"
	ReportStatusDismissed = "dismissed"
)

type Report struct {
	ID        uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at"`

	ReporterUserID uint   `gorm:"not null;uniqueIndex:idx_reports_pair" json:"reporter_user_id"`
	ReportedUserID uint   `gorm:"not null;uniqueIndex:idx_reports_pair" json:"reported_user_id"`
	Reason         string `gorm:"not null" json:"reason"`
	Description    string `json:"description"`
	Status         string `gorm:"not null;default:'pending'" json:"status"` // pending, resolved, dismissed

	AdminNotes string     `json:"admin_notes,omitempty"`
	ReviewedBy *uint      `json:"reviewed_by,omitempty"`
	ReviewedAt *time.Time `json:"reviewed_at,omitempty"`

	ReporterUser User `gorm:"foreignKey:ReporterUserID" json:"reporter_user,omitempty"`
	ReportedUser User `gorm:"foreignKey:ReportedUserID" json:"reported_user,omitempty"`
}
