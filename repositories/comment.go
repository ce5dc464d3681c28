package repositories

import (
	"github.com/bugpredictor/database"
	"github.com/bugpredictor/models"
)

// CommentRepository handles database operations for comments
type CommentRepository struct{}

func NewCommentRepository() *CommentRepository {
	return &CommentRepository{}
}

// FindByBug lists the comments of a bug, oldest first
func (r *CommentRepository) FindByBug(bugID string) ([]models.Comment, error) {
	var comments []models.Comment
	err := database.DB.Preload("Author").
		Where("bug_id = ?", bugID).
		Order("created_at asc").
		Find(&comments).Error
	return comments, err
}

func (r *CommentRepository) FindByID(bugID, id string) (models.Comment, error) {
	var comment models.Comment
	err := database.DB.Preload("Author").First(&comment, "id = ? AND bug_id = ?", id, bugID).Error
	return comment, err
}

func (r *CommentRepository) Create(comment *models.Comment) error {
	return database.DB.Create(comment).Error
}

func (r *CommentRepository) Delete(id string) error {
	return database.DB.Delete(&models.Comment{}, "id = ?", id).Error
}
