package dto

import (
	"time"

	"github.com/bugpredictor/models"
	"github.com/bugpredictor/utils"
)

type CreateCommentRequest struct {
	Body string `json:"body" binding:"required,max=10000"`
}

// CommentResponse carries the markdown body and its rendered HTML
type CommentResponse struct {
	ID        string       `json:"id"`
	BugID     string       `json:"bugId"`
	Author    *UserSummary `json:"author"`
	Body      string       `json:"body"`
	BodyHTML  string       `json:"bodyHtml"`
	CreatedAt time.Time    `json:"createdAt"`
}

func NewCommentResponse(c models.Comment) CommentResponse {
	return CommentResponse{
		ID:        c.ID,
		BugID:     c.BugID,
		Author:    NewUserSummary(c.Author),
		Body:      c.Body,
		BodyHTML:  utils.RenderMarkdown(c.Body),
		CreatedAt: c.CreatedAt,
	}
}

func NewCommentList(comments []models.Comment) []CommentResponse {
	items := make([]CommentResponse, 0, len(comments))
	for _, c := range comments {
		items = append(items, NewCommentResponse(c))
	}
	return items
}
