package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BugMedia is a file attached to a bug
type BugMedia struct {
	ID           string    `json:"id" gorm:"primaryKey;size:36"`
	BugID        string    `json:"bugId" gorm:"size:36;not null;index"`
	FileName     string    `json:"fileName" gorm:"size:255;not null"`
	StoredPath   string    `json:"-" gorm:"not null"`
	ContentType  string    `json:"contentType" gorm:"size:127"`
	Size         int64     `json:"size"`
	UploadedByID string    `json:"uploadedById" gorm:"size:36;not null;index"`
	CreatedAt    time.Time `json:"createdAt"`

	UploadedBy *User `json:"-" gorm:"foreignKey:UploadedByID;constraint:OnDelete:RESTRICT"`
}

// TableName keeps the table name singular-safe
func (BugMedia) TableName() string {
	return "bug_media"
}

// BeforeCreate assigns a UUID when none is set
func (m *BugMedia) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
