package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role represents user role types
type Role string

const (
	RoleTeamLead     Role = "TL"
	RoleTeamMember   Role = "TM"
	RoleProjectOwner Role = "O"
)

// Label returns the display name of the role
func (r Role) Label() string {
	switch r {
	case RoleTeamLead:
		return "Team Lead"
	case RoleTeamMember:
		return "Team Member"
	case RoleProjectOwner:
		return "Project Owner"
	default:
		return string(r)
	}
}

// IsValid reports whether r is one of the known roles
func (r Role) IsValid() bool {
	switch r {
	case RoleTeamLead, RoleTeamMember, RoleProjectOwner:
		return true
	}
	return false
}

// User represents a user in the system
type User struct {
	ID          string    `json:"id" gorm:"primaryKey;size:36"`
	Username    string    `json:"username" gorm:"uniqueIndex;size:150;not null"`
	Email       string    `json:"email" gorm:"uniqueIndex;size:254;not null"`
	Password    string    `json:"-" gorm:"not null"` // Password is not exposed in JSON
	FullName    string    `json:"fullName" gorm:"size:255"`
	Role        Role      `json:"role" gorm:"type:varchar(4);not null;default:'TM'"`
	ProjectID   *string   `json:"projectId" gorm:"size:36;index"`
	Verified    bool      `json:"verified" gorm:"not null;default:false"`
	IsSuperuser bool      `json:"isSuperuser" gorm:"not null;default:false"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	// Relations
	Project *Project `json:"project,omitempty" gorm:"foreignKey:ProjectID;constraint:OnDelete:RESTRICT"`
}

// BeforeCreate assigns a UUID when none is set
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// IsProjectOwner reports whether the user owns their project
func (u *User) IsProjectOwner() bool {
	return u.Role == RoleProjectOwner
}

// IsTeamMember reports whether the user is a plain team member
func (u *User) IsTeamMember() bool {
	return u.Role == RoleTeamMember
}

// InProject reports whether the user is assigned to projectID
func (u *User) InProject(projectID string) bool {
	return u.ProjectID != nil && *u.ProjectID == projectID
}

// CanManageProject reports whether the user may manage members and assignments of projectID
func (u *User) CanManageProject(projectID string) bool {
	return u.IsSuperuser || (u.IsProjectOwner() && u.InProject(projectID))
}
