package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BugStatus is the lifecycle state of a bug
type BugStatus string

const (
	StatusNew      BugStatus = "NEW"
	StatusOpen     BugStatus = "OPEN"
	StatusAssigned BugStatus = "ASSIGNED"
	StatusFixed    BugStatus = "FIXED"
)

// Priority is the triage priority of a bug
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

// Severity is the impact level of a bug, predicted or defaulted
type Severity string

const (
	SeverityMinor    Severity = "MINOR"
	SeverityNormal   Severity = "NORMAL"
	SeverityMajor    Severity = "MAJOR"
	SeverityCritical Severity = "CRITICAL"
	SeverityBlocker  Severity = "BLOCKER"
)

var (
	BugStatuses = []BugStatus{StatusNew, StatusOpen, StatusAssigned, StatusFixed}
	Priorities  = []Priority{PriorityLow, PriorityMedium, PriorityHigh}
	Severities  = []Severity{SeverityMinor, SeverityNormal, SeverityMajor, SeverityCritical, SeverityBlocker}
)

func (s BugStatus) IsValid() bool {
	for _, v := range BugStatuses {
		if v == s {
			return true
		}
	}
	return false
}

func (p Priority) IsValid() bool {
	for _, v := range Priorities {
		if v == p {
			return true
		}
	}
	return false
}

func (s Severity) IsValid() bool {
	for _, v := range Severities {
		if v == s {
			return true
		}
	}
	return false
}

// Bug represents a reported defect
type Bug struct {
	ID            string    `json:"id" gorm:"primaryKey;size:36"`
	Title         string    `json:"title" gorm:"size:255;not null"`
	Description   string    `json:"description"`
	Status        BugStatus `json:"status" gorm:"type:varchar(10);not null;default:'NEW';index"`
	Priority      Priority  `json:"priority" gorm:"type:varchar(10);not null;default:'MEDIUM'"`
	Severity      Severity  `json:"severity" gorm:"type:varchar(20);not null;default:'NORMAL'"`
	IsPredicted   bool      `json:"isPredicted" gorm:"not null"`
	ProjectID     string    `json:"projectId" gorm:"size:36;not null;index"`
	AssignedToID  *string   `json:"assignedToId" gorm:"size:36;index"`
	SubmittedByID string    `json:"submittedById" gorm:"size:36;not null;index"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`

	// Relations
	Project     *Project   `json:"project,omitempty" gorm:"foreignKey:ProjectID;constraint:OnDelete:RESTRICT"`
	AssignedTo  *User      `json:"assignedTo,omitempty" gorm:"foreignKey:AssignedToID;constraint:OnDelete:RESTRICT"`
	SubmittedBy *User      `json:"submittedBy,omitempty" gorm:"foreignKey:SubmittedByID;constraint:OnDelete:RESTRICT"`
	Media       []BugMedia `json:"media,omitempty" gorm:"foreignKey:BugID;constraint:OnDelete:CASCADE"`
	Comments    []Comment  `json:"comments,omitempty" gorm:"foreignKey:BugID;constraint:OnDelete:CASCADE"`
}

// BeforeCreate assigns a UUID when none is set
func (b *Bug) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

// IsAssignedTo reports whether userID is the assignee
func (b *Bug) IsAssignedTo(userID string) bool {
	return b.AssignedToID != nil && *b.AssignedToID == userID
}
