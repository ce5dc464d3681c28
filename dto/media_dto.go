package dto

import (
	"time"

	"github.com/bugpredictor/models"
)

type MediaResponse struct {
	ID           string    `json:"id"`
	BugID        string    `json:"bugId"`
	FileName     string    `json:"fileName"`
	ContentType  string    `json:"contentType"`
	Size         int64     `json:"size"`
	UploadedByID string    `json:"uploadedById"`
	URL          string    `json:"url"`
	CreatedAt    time.Time `json:"createdAt"`
}

func NewMediaResponse(m models.BugMedia) MediaResponse {
	return MediaResponse{
		ID:           m.ID,
		BugID:        m.BugID,
		FileName:     m.FileName,
		ContentType:  m.ContentType,
		Size:         m.Size,
		UploadedByID: m.UploadedByID,
		URL:          "/api/v1/bugs/" + m.BugID + "/media/" + m.ID,
		CreatedAt:    m.CreatedAt,
	}
}

func NewMediaList(media []models.BugMedia) []MediaResponse {
	items := make([]MediaResponse, 0, len(media))
	for _, m := range media {
		items = append(items, NewMediaResponse(m))
	}
	return items
}
