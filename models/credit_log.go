package models

import (
	"time"

	"gorm.io/gorm"
)

// Credit log kinds. "purchase" and "trade" reference the listing / offer that
// caused the movement, "adjustment" covers moderation and support actions.
const (
	CreditLogKindPurchase   = "purchase"
	CreditLogKindTrade      = "trade"
	CreditLogKindAdjustment = "adjustment"
)

// CreditLog is an append-only audit row, written in the same transaction as
// the balance update it records.
type CreditLog struct {
	ID        uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	FromUserID uint   `gorm:"not null;index" json:"from_user_id"`
	ToUserID   uint   `gorm:"not null;index" json:"to_user_id"`
	Amount     int64  `gorm:"not null" json:"amount"`
	Kind       string `gorm:"not null;type:varchar(50)" json:"kind"`
	// ReferenceID points at the listing or trade offer behind the movement.
	ReferenceID uint `json:"reference_id"`
}
