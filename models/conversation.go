package models

import (
	"time"

	"gorm.io/gorm"
)

// Conversation is a two-party message thread, usually opened from a listing.
type Conversation struct {
	ID        uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at"`

	InitiatorID uint  `gorm:"not null;uniqueIndex:idx_conversations_parties" json:"initiator_id"`
	RecipientID uint  `gorm:"not null;uniqueIndex:idx_conversations_parties" json:"recipient_id"`
	ListingID   *uint `gorm:"uniqueIndex:idx_conversations_parties" json:"listing_id,omitempty"`

	Initiator User     `gorm:"foreignKey:InitiatorID" json:"initiator,omitempty"`
	Recipient User     `gorm:"foreignKey:RecipientID" json:"recipient,omitempty"`
	Listing   *Listing `gorm:"foreignKey:ListingID" json:"listing,omitempty"`

	Messages []Message `gorm:"foreignKey:ConversationID" json:"messages,omitempty"`
}

// HasParticipant reports whether the given user belongs to the conversation.
func (c *Conversation) HasParticipant(userID uint) bool {
	return c.InitiatorID == userID || c.RecipientID == userID
}

type Message struct {
	ID        uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at"`

	ConversationID uint       `gorm:"not null;index" json:"conversation_id"`
	SenderID       uint       `gorm:"not null" json:"sender_id"`
	Body           string     `gorm:"not null;type:text" json:"body"`
	ReadAt         *time.Time `json:"read_at,omitempty"`

	Sender User `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
}
