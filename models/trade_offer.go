package models

import (
	"time"

	"gorm.io/gorm"
)

// Trade offer status constants. Accepted, declined and expired are terminal.
const (
	TradeOfferStatusPending  = "pending"
	TradeOfferStatusAccepted = "accepted"
	TradeOfferStatusDeclined = "declined"
	TradeOfferStatusExpired  = "expired"
)

type TradeOffer struct {
	ID             uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"deleted_at"`
	ConversationID uint           `gorm:"not null;index" json:"conversation_id"`
	SenderID       uint           `gorm:"not null;index" json:"sender_id"`
	ReceiverID     uint           `gorm:"not null;index" json:"receiver_id"`

	// OfferedListingID is nil for credits-only offers.
	OfferedListingID   *uint `json:"offered_listing_id,omitempty"`
	RequestedListingID uint  `gorm:"not null" json:"requested_listing_id"`
	AdditionalCredits  int64 `gorm:"not null;default:0;check:additional_credits >= 0" json:"additional_credits"`

	Status    string    `gorm:"not null;default:'pending';index" json:"status"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`

	Sender           User     `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	Receiver         User     `gorm:"foreignKey:ReceiverID" json:"receiver,omitempty"`
	OfferedListing   *Listing `gorm:"foreignKey:OfferedListingID" json:"offered_listing,omitempty"`
	RequestedListing Listing  `gorm:"foreignKey:RequestedListingID" json:"requested_listing,omitempty"`
}

// IsExpired compares the deadline against now; status alone is not enough
// because expiry is materialized lazily.
func (t *TradeOffer) IsExpired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
