package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TokenKind distinguishes single-use tokens
type TokenKind string

const (
	TokenVerifyEmail   TokenKind = "verify_email"
	TokenPasswordReset TokenKind = "password_reset"
)

// UserToken is a single-use token mailed to a user. Only the hash is stored.
type UserToken struct {
	ID        string     `json:"id" gorm:"primaryKey;size:36"`
	UserID    string     `json:"userId" gorm:"size:36;not null;index"`
	Kind      TokenKind  `json:"kind" gorm:"type:varchar(20);not null"`
	TokenHash string     `json:"-" gorm:"size:64;uniqueIndex;not null"`
	ExpiresAt time.Time  `json:"expiresAt" gorm:"index"`
	UsedAt    *time.Time `json:"usedAt"`
	CreatedAt time.Time  `json:"createdAt"`

	User *User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// BeforeCreate assigns a UUID when none is set
func (t *UserToken) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// Usable reports whether the token is unused and unexpired at now
func (t *UserToken) Usable(now time.Time) bool {
	return t.UsedAt == nil && now.Before(t.ExpiresAt)
}
