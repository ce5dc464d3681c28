package dto

import (
	"time"

	"github.com/bugpredictor/models"
)

// CreateBugRequest is the report-bug form. Severity is never accepted from clients.
type CreateBugRequest struct {
	Title        string  `json:"title" binding:"required,max=255"`
	Description  string  `json:"description"`
	Status       string  `json:"status"`
	Priority     string  `json:"priority"`
	AssignedToID *string `json:"assignedToId"`
	ProjectID    *string `json:"projectId"`
	IsPredicted  *bool   `json:"isPredicted"`
}

// UpdateBugRequest changes only the provided fields. An empty AssignedToID unassigns.
type UpdateBugRequest struct {
	Title        *string `json:"title"`
	Description  *string `json:"description"`
	Status       *string `json:"status"`
	Priority     *string `json:"priority"`
	AssignedToID *string `json:"assignedToId"`
	IsPredicted  *bool   `json:"isPredicted"`
}

// BugFilter represents filter criteria for bug lists
type BugFilter struct {
	PageQuery
	Status   string
	Priority string
	Severity string
}

type BugResponse struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Status      string       `json:"status"`
	Priority    string       `json:"priority"`
	Severity    string       `json:"severity"`
	IsPredicted bool         `json:"isPredicted"`
	ProjectID   string       `json:"projectId"`
	AssignedTo  *UserSummary `json:"assignedTo"`
	SubmittedBy *UserSummary `json:"submittedBy"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

type BugDetailResponse struct {
	BugResponse
	Media    []MediaResponse   `json:"media"`
	Comments []CommentResponse `json:"comments"`
}

type BugListResponse struct {
	Bugs []BugResponse `json:"bugs"`
	PageMeta
}

// BugFormResponse tells a client which fields the viewer may edit
type BugFormResponse struct {
	EditableFields  []string      `json:"editableFields"`
	ReadOnlyFields  []string      `json:"readOnlyFields"`
	AssigneeChoices []UserSummary `json:"assigneeChoices,omitempty"`
	Statuses        []string      `json:"statuses"`
	Priorities      []string      `json:"priorities"`
}

func NewBugResponse(b models.Bug) BugResponse {
	return BugResponse{
		ID:          b.ID,
		Title:       b.Title,
		Description: b.Description,
		Status:      string(b.Status),
		Priority:    string(b.Priority),
		Severity:    string(b.Severity),
		IsPredicted: b.IsPredicted,
		ProjectID:   b.ProjectID,
		AssignedTo:  NewUserSummary(b.AssignedTo),
		SubmittedBy: NewUserSummary(b.SubmittedBy),
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

func NewBugListItems(bugs []models.Bug) []BugResponse {
	items := make([]BugResponse, 0, len(bugs))
	for _, b := range bugs {
		items = append(items, NewBugResponse(b))
	}
	return items
}

func NewBugDetailResponse(b models.Bug) BugDetailResponse {
	detail := BugDetailResponse{
		BugResponse: NewBugResponse(b),
		Media:       make([]MediaResponse, 0, len(b.Media)),
		Comments:    make([]CommentResponse, 0, len(b.Comments)),
	}
	for _, m := range b.Media {
		detail.Media = append(detail.Media, NewMediaResponse(m))
	}
	for _, c := range b.Comments {
		detail.Comments = append(detail.Comments, NewCommentResponse(c))
	}
	return detail
}
