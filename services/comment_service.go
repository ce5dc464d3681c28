package services

import (
	"github.com/bugpredictor/apperrors"
	"github.com/bugpredictor/dto"
	"github.com/bugpredictor/models"
	"github.com/bugpredictor/repositories"
)

// CommentService manages discussion on bugs
type CommentService struct {
	bugs     *repositories.BugRepository
	comments *repositories.CommentRepository
}

func NewCommentService() *CommentService {
	return &CommentService{
		bugs:     repositories.NewBugRepository(),
		comments: repositories.NewCommentRepository(),
	}
}

// List returns the comments of a bug visible to viewer
func (s *CommentService) List(viewer *models.User, bugID string) ([]models.Comment, error) {
	if err := s.ensureVisible(viewer, bugID); err != nil {
		return nil, err
	}
	comments, err := s.comments.FindByBug(bugID)
	if err != nil {
		return nil, internal(err)
	}
	return comments, nil
}

// Create adds a markdown comment to a visible bug
func (s *CommentService) Create(viewer *models.User, bugID string, req dto.CreateCommentRequest) (models.Comment, error) {
	if err := s.ensureVisible(viewer, bugID); err != nil {
		return models.Comment{}, err
	}

	body := trimmed(req.Body)
	if body == "" {
		return models.Comment{}, apperrors.Validation("body", "this field is required")
	}

	comment := models.Comment{BugID: bugID, AuthorID: viewer.ID, Body: body}
	if err := s.comments.Create(&comment); err != nil {
		return models.Comment{}, internal(err)
	}
	comment.Author = viewer
	return comment, nil
}

// Delete removes a comment. Authors and project owners may delete.
func (s *CommentService) Delete(viewer *models.User, bugID, commentID string) error {
	bug, err := s.bugs.FindVisibleByID(viewer, bugID, false)
	if err != nil {
		return notFoundOr(err, "bug")
	}
	comment, err := s.comments.FindByID(bugID, commentID)
	if err != nil {
		return notFoundOr(err, "comment")
	}
	if comment.AuthorID != viewer.ID && !viewer.CanManageProject(bug.ProjectID) {
		return apperrors.Forbidden()
	}
	if err := s.comments.Delete(comment.ID); err != nil {
		return internal(err)
	}
	return nil
}

func (s *CommentService) ensureVisible(viewer *models.User, bugID string) error {
	visible, err := s.bugs.CanSeeBug(viewer, bugID)
	if err != nil {
		return internal(err)
	}
	if !visible {
		return apperrors.NotFound("bug")
	}
	return nil
}
