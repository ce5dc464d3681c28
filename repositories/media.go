package repositories

import (
	"github.com/bugpredictor/database"
	"github.com/bugpredictor/models"
)

// MediaRepository handles database operations for bug attachments
type MediaRepository struct{}

func NewMediaRepository() *MediaRepository {
	return &MediaRepository{}
}

func (r *MediaRepository) FindByBug(bugID string) ([]models.BugMedia, error) {
	var media []models.BugMedia
	err := database.DB.Where("bug_id = ?", bugID).Order("created_at asc").Find(&media).Error
	return media, err
}

func (r *MediaRepository) FindByID(bugID, id string) (models.BugMedia, error) {
	var media models.BugMedia
	err := database.DB.First(&media, "id = ? AND bug_id = ?", id, bugID).Error
	return media, err
}

func (r *MediaRepository) Create(media *models.BugMedia) error {
	return database.DB.Create(media).Error
}

func (r *MediaRepository) Delete(id string) error {
	return database.DB.Delete(&models.BugMedia{}, "id = ?", id).Error
}
