package v1

import (
	"github.com/bugpredictor/apperrors"
	"github.com/bugpredictor/dto"
	"github.com/bugpredictor/services"
	"github.com/gin-gonic/gin"
)

// MediaController handles attachments of bugs
type MediaController struct {
	mediaService *services.MediaService
}

func NewMediaController(mediaService *services.MediaService) *MediaController {
	return &MediaController{mediaService: mediaService}
}

func (m *MediaController) RegisterRoutes(router *gin.RouterGroup) {
	media := router.Group("/bugs/:id/media")
	{
		media.GET("", m.ListMedia)
		media.POST("", m.UploadMedia)
		media.GET("/:mediaId", m.DownloadMedia)
		media.DELETE("/:mediaId", m.DeleteMedia)
	}
}

// ListMedia godoc
// @Summary List attachments of a bug
// @Tags media
// @Produce json
// @Param id path string true "Bug ID"
// @Success 200 {array} dto.MediaResponse
// @Router /bugs/{id}/media [get]
func (m *MediaController) ListMedia(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	media, err := m.mediaService.List(user, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, dto.NewMediaList(media))
}

// UploadMedia godoc
// @Summary Attach a file to a bug
// @Description Multipart upload in the "file" field. The extension must be on the allow-list
// @Tags media
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Bug ID"
// @Param file formData file true "File to attach"
// @Success 201 {object} dto.MediaResponse
// @Router /bugs/{id}/media [post]
func (m *MediaController) UploadMedia(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		respondError(c, apperrors.Validation("file", "this field is required"))
		return
	}

	media, err := m.mediaService.Upload(user, c.Param("id"), file)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, dto.NewMediaResponse(media))
}

// DownloadMedia godoc
// @Summary Download an attachment
// @Tags media
// @Produce octet-stream
// @Param id path string true "Bug ID"
// @Param mediaId path string true "Attachment ID"
// @Success 200 {file} file
// @Router /bugs/{id}/media/{mediaId} [get]
func (m *MediaController) DownloadMedia(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	media, path, err := m.mediaService.Open(user, c.Param("id"), c.Param("mediaId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Type", media.ContentType)
	c.FileAttachment(path, media.FileName)
}

// DeleteMedia godoc
// @Summary Delete an attachment
// @Description Allowed for the uploader and project owners
// @Tags media
// @Produce json
// @Param id path string true "Bug ID"
// @Param mediaId path string true "Attachment ID"
// @Success 200 {object} map[string]interface{}
// @Router /bugs/{id}/media/{mediaId} [delete]
func (m *MediaController) DeleteMedia(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	if err := m.mediaService.Delete(user, c.Param("id"), c.Param("mediaId")); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, "Attachment deleted successfully")
}
