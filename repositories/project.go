package repositories

import (
	"github.com/bugpredictor/database"
	"github.com/bugpredictor/dto"
	"github.com/bugpredictor/models"
	"gorm.io/gorm"
)

// ProjectRepository handles database operations for projects
type ProjectRepository struct{}

// NewProjectRepository creates a new project repository instance
func NewProjectRepository() *ProjectRepository {
	return &ProjectRepository{}
}

// FindByID retrieves a project by its ID
func (r *ProjectRepository) FindByID(id string) (models.Project, error) {
	var project models.Project
	result := database.DB.First(&project, "id = ?", id)
	return project, result.Error
}

// Create inserts a new project using tx
func (r *ProjectRepository) Create(tx *gorm.DB, project *models.Project) error {
	return tx.Create(project).Error
}

// UpdateDetails changes name and description
func (r *ProjectRepository) UpdateDetails(project *models.Project) error {
	return database.DB.Model(project).Select("name", "description").Updates(project).Error
}

// Delete removes a project. Callers check dependents first.
func (r *ProjectRepository) Delete(id string) error {
	return database.DB.Delete(&models.Project{}, "id = ?", id).Error
}

// CountUsers counts users assigned to the project
func (r *ProjectRepository) CountUsers(id string) (int64, error) {
	var count int64
	err := database.DB.Model(&models.User{}).Where("project_id = ?", id).Count(&count).Error
	return count, err
}

// CountBugs counts bugs owned by the project
func (r *ProjectRepository) CountBugs(id string) (int64, error) {
	var count int64
	err := database.DB.Model(&models.Bug{}).Where("project_id = ?", id).Count(&count).Error
	return count, err
}

// FindWithPagination retrieves projects with pagination, search and sorting
func (r *ProjectRepository) FindWithPagination(q dto.PageQuery) ([]models.Project, int64, error) {
	var projects []models.Project
	var totalCount int64

	db := database.DB.Model(&models.Project{})
	if q.Search != "" {
		pattern := "%" + q.Search + "%"
		db = db.Where("(LOWER(name) LIKE LOWER(?) OR LOWER(description) LIKE LOWER(?))", pattern, pattern)
	}

	if err := db.Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	err := db.Order(q.SortBy + " " + q.SortOrder).Limit(q.PageSize).Offset(q.Offset()).Find(&projects).Error
	return projects, totalCount, err
}
