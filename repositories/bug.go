package repositories

import (
	"time"

	"github.com/bugpredictor/database"
	"github.com/bugpredictor/dto"
	"github.com/bugpredictor/models"
	"gorm.io/gorm"
)

// BugRepository handles database operations for bugs
type BugRepository struct{}

func NewBugRepository() *BugRepository {
	return &BugRepository{}
}

func withPeople(db *gorm.DB) *gorm.DB {
	return db.Preload("AssignedTo").Preload("SubmittedBy")
}

// FindVisibleByID retrieves a bug only if viewer may see it.
// withDetail also loads media and comments.
func (r *BugRepository) FindVisibleByID(viewer *models.User, id string, withDetail bool) (models.Bug, error) {
	var bug models.Bug
	db := database.DB.Scopes(BugsVisibleTo(viewer), withPeople)
	if withDetail {
		db = db.Preload("Media", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at asc")
		}).Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at asc")
		}).Preload("Comments.Author")
	}
	err := db.First(&bug, "bugs.id = ?", id).Error
	return bug, err
}

// CanSeeBug reports whether the bug exists inside viewer's visibility scope
func (r *BugRepository) CanSeeBug(viewer *models.User, id string) (bool, error) {
	var count int64
	err := database.DB.Model(&models.Bug{}).Scopes(BugsVisibleTo(viewer)).
		Where("bugs.id = ?", id).Count(&count).Error
	return count > 0, err
}

// FindWithPagination lists visible bugs matching filter
func (r *BugRepository) FindWithPagination(viewer *models.User, filter dto.BugFilter) ([]models.Bug, int64, error) {
	var bugs []models.Bug
	var totalCount int64

	db := database.DB.Model(&models.Bug{}).Scopes(BugsVisibleTo(viewer))
	if filter.Search != "" {
		db = db.Where("LOWER(bugs.title) LIKE LOWER(?)", "%"+filter.Search+"%")
	}
	if filter.Status != "" {
		db = db.Where("bugs.status = ?", filter.Status)
	}
	if filter.Priority != "" {
		db = db.Where("bugs.priority = ?", filter.Priority)
	}
	if filter.Severity != "" {
		db = db.Where("bugs.severity = ?", filter.Severity)
	}

	if err := db.Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	err := db.Scopes(withPeople).
		Order("bugs." + filter.SortBy + " " + filter.SortOrder).
		Limit(filter.PageSize).
		Offset(filter.Offset()).
		Find(&bugs).Error
	return bugs, totalCount, err
}

func (r *BugRepository) Create(bug *models.Bug) error {
	return database.DB.Create(bug).Error
}

// SaveFields writes the named columns of bug
func (r *BugRepository) SaveFields(bug *models.Bug, columns ...string) error {
	return database.DB.Model(bug).Select(columns).Updates(bug).Error
}

// Delete removes a bug with its comments and media rows
func (r *BugRepository) Delete(id string) error {
	return database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("bug_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("bug_id = ?", id).Delete(&models.BugMedia{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Bug{}, "id = ?", id).Error
	})
}

// GroupCount is one row of a GROUP BY count
type GroupCount struct {
	GroupKey *string
	Total    int64
}

// CountGrouped counts visible bugs grouped by column.
// column must come from a fixed set chosen by the caller.
func (r *BugRepository) CountGrouped(viewer *models.User, column string) ([]GroupCount, error) {
	var rows []GroupCount
	err := database.DB.Model(&models.Bug{}).
		Scopes(BugsVisibleTo(viewer)).
		Select("bugs." + column + " AS group_key, COUNT(*) AS total").
		Group("bugs." + column).
		Scan(&rows).Error
	return rows, err
}

func (r *BugRepository) CountVisible(viewer *models.User) (int64, error) {
	var count int64
	err := database.DB.Model(&models.Bug{}).Scopes(BugsVisibleTo(viewer)).Count(&count).Error
	return count, err
}

// CreatedSince returns creation times of visible bugs created at or after since
func (r *BugRepository) CreatedSince(viewer *models.User, since time.Time) ([]time.Time, error) {
	var times []time.Time
	err := database.DB.Model(&models.Bug{}).
		Scopes(BugsVisibleTo(viewer)).
		Where("bugs.created_at >= ?", since).
		Pluck("bugs.created_at", &times).Error
	return times, err
}

// Recent returns the newest visible bugs
func (r *BugRepository) Recent(viewer *models.User, limit int) ([]models.Bug, error) {
	var bugs []models.Bug
	err := database.DB.Scopes(BugsVisibleTo(viewer), withPeople).
		Order("bugs.created_at desc").
		Limit(limit).
		Find(&bugs).Error
	return bugs, err
}
