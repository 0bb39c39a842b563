package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

type User struct {
	ID         uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"deleted_at"`
	Username   string         `gorm:"unique;not null" json:"username"`
	Email      string         `gorm:"unique;not null" json:"email"`
	Password   *string        `gorm:"not null" json:"-"` // Don't expose password in JSON
	Bio        string         `json:"bio"`
	Avatar     string         `json:"avatar"`
	Credits    int64          `gorm:"not null;default:100;check:credits >= 0" json:"credits"`
	TrustScore int            `gorm:"not null;default:70" json:"trust_score"`
	IsBanned   bool           `gorm:"not null;default:false" json:"is_banned"`
	BanReason  *string        `json:"ban_reason,omitempty"`
	Role       string         `gorm:"not null;default:'user'" json:"role"` // user, moderator, admin

	Listings      []Listing      `json:"listings,omitempty" gorm:"foreignKey:UserID"`
	RefreshTokens []RefreshToken `json:"-" gorm:"foreignKey:UserID"`
}

// CanModerate reports whether the user may review reports and issue bans.
func (u *User) CanModerate() bool {
	return u.Role == RoleModerator || u.Role == RoleAdmin
}
