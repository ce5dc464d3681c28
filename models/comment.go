package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Comment is a free-text note on a bug
type Comment struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	BugID     string    `json:"bugId" gorm:"size:36;not null;index"`
	AuthorID  string    `json:"authorId" gorm:"size:36;not null;index"`
	Body      string    `json:"body" gorm:"not null"`
	CreatedAt time.Time `json:"createdAt"`

	Author *User `json:"author,omitempty" gorm:"foreignKey:AuthorID;constraint:OnDelete:RESTRICT"`
}

// BeforeCreate assigns a UUID when none is set
func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
