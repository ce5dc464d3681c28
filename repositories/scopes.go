package repositories

import (
	"github.com/bugpredictor/models"
	"gorm.io/gorm"
)

// nothing matches no rows on any dialect
func nothing(db *gorm.DB) *gorm.DB {
	return db.Where("1 = 0")
}

// BugsVisibleTo limits a bugs query to the rows viewer may see.
//
//	superuser            all bugs
//	project owner / lead bugs of their project
//	team member          bugs of their project they reported or are assigned to
//	no project           nothing
//
// The member predicate is grouped explicitly:
// project_id = P AND (assigned_to_id = U OR submitted_by_id = U).
func BugsVisibleTo(viewer *models.User) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if viewer == nil {
			return nothing(db)
		}
		if viewer.IsSuperuser {
			return db
		}
		if viewer.ProjectID == nil {
			return nothing(db)
		}

		db = db.Where("bugs.project_id = ?", *viewer.ProjectID)
		switch viewer.Role {
		case models.RoleProjectOwner, models.RoleTeamLead:
			return db
		case models.RoleTeamMember:
			return db.Where("(bugs.assigned_to_id = ? OR bugs.submitted_by_id = ?)", viewer.ID, viewer.ID)
		default:
			return nothing(db)
		}
	}
}

// UsersVisibleTo limits a users query to the rows viewer may see.
// A team member sees themselves and the people they share a visible bug with.
func UsersVisibleTo(viewer *models.User) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if viewer == nil {
			return nothing(db)
		}
		if viewer.IsSuperuser {
			return db
		}
		if viewer.ProjectID == nil {
			return nothing(db)
		}

		projectID := *viewer.ProjectID
		db = db.Where("users.project_id = ?", projectID)
		switch viewer.Role {
		case models.RoleProjectOwner, models.RoleTeamLead:
			return db
		case models.RoleTeamMember:
			return db.Where(
				`(users.id = ?
				OR users.id IN (SELECT b.assigned_to_id FROM bugs b WHERE b.project_id = ? AND (b.assigned_to_id = ? OR b.submitted_by_id = ?))
				OR users.id IN (SELECT b.submitted_by_id FROM bugs b WHERE b.project_id = ? AND (b.assigned_to_id = ? OR b.submitted_by_id = ?)))`,
				viewer.ID,
				projectID, viewer.ID, viewer.ID,
				projectID, viewer.ID, viewer.ID,
			)
		default:
			return nothing(db)
		}
	}
}
