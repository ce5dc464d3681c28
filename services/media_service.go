package services

import (
	"errors"
	"fmt"
	"mime"
	"mime/multipart"

	"github.com/bugpredictor/apperrors"
	"github.com/bugpredictor/config"
	"github.com/bugpredictor/lib/storage"
	"github.com/bugpredictor/logger"
	"github.com/bugpredictor/models"
	"github.com/bugpredictor/repositories"
	"github.com/bugpredictor/utils"
)

// MediaService manages files attached to bugs
type MediaService struct {
	bugs  *repositories.BugRepository
	media *repositories.MediaRepository
	files *storage.Disk
	cfg   config.UploadConfig
}

func NewMediaService(files *storage.Disk, cfg config.UploadConfig) *MediaService {
	if len(cfg.AllowedExtensions) == 0 {
		cfg.AllowedExtensions = config.DefaultAllowedExtensions
	}
	return &MediaService{
		bugs:  repositories.NewBugRepository(),
		media: repositories.NewMediaRepository(),
		files: files,
		cfg:   cfg,
	}
}

// List returns the attachments of a visible bug
func (s *MediaService) List(viewer *models.User, bugID string) ([]models.BugMedia, error) {
	if _, err := s.bugs.FindVisibleByID(viewer, bugID, false); err != nil {
		return nil, notFoundOr(err, "bug")
	}
	media, err := s.media.FindByBug(bugID)
	if err != nil {
		return nil, internal(err)
	}
	return media, nil
}

// Upload stores file on a visible bug after checking its extension and size
func (s *MediaService) Upload(viewer *models.User, bugID string, file *multipart.FileHeader) (models.BugMedia, error) {
	if _, err := s.bugs.FindVisibleByID(viewer, bugID, false); err != nil {
		return models.BugMedia{}, notFoundOr(err, "bug")
	}
	if file == nil {
		return models.BugMedia{}, apperrors.Validation("file", "this field is required")
	}

	name := utils.SanitizeFileName(file.Filename)
	if !utils.ExtensionAllowed(name, s.cfg.AllowedExtensions) {
		return models.BugMedia{}, apperrors.Validation("file",
			fmt.Sprintf("file extension %q is not allowed", utils.FileExtension(name)))
	}
	if s.cfg.MaxBytes > 0 && file.Size > s.cfg.MaxBytes {
		return models.BugMedia{}, s.tooLarge()
	}

	src, err := file.Open()
	if err != nil {
		return models.BugMedia{}, internal(err)
	}
	defer src.Close()

	ext := utils.FileExtension(name)
	stored, size, err := s.files.Save(bugID, ext, src, s.maxBytes())
	if err != nil {
		if errors.Is(err, storage.ErrTooLarge) {
			return models.BugMedia{}, s.tooLarge()
		}
		return models.BugMedia{}, internal(err)
	}

	media := models.BugMedia{
		BugID:        bugID,
		FileName:     name,
		StoredPath:   stored,
		ContentType:  contentType(file, ext),
		Size:         size,
		UploadedByID: viewer.ID,
	}
	if err := s.media.Create(&media); err != nil {
		_ = s.files.Remove(stored)
		return models.BugMedia{}, internal(err)
	}

	logger.Info("User %s attached %s to bug %s", viewer.Username, name, bugID)
	return media, nil
}

// Open returns an attachment of a visible bug and the path of its content
func (s *MediaService) Open(viewer *models.User, bugID, mediaID string) (models.BugMedia, string, error) {
	if _, err := s.bugs.FindVisibleByID(viewer, bugID, false); err != nil {
		return models.BugMedia{}, "", notFoundOr(err, "bug")
	}
	media, err := s.media.FindByID(bugID, mediaID)
	if err != nil {
		return models.BugMedia{}, "", notFoundOr(err, "media")
	}
	path, err := s.files.Path(media.StoredPath)
	if err != nil {
		return models.BugMedia{}, "", internal(err)
	}
	return media, path, nil
}

// Delete removes an attachment. The uploader and project owners may delete.
func (s *MediaService) Delete(viewer *models.User, bugID, mediaID string) error {
	bug, err := s.bugs.FindVisibleByID(viewer, bugID, false)
	if err != nil {
		return notFoundOr(err, "bug")
	}
	media, err := s.media.FindByID(bugID, mediaID)
	if err != nil {
		return notFoundOr(err, "media")
	}
	if media.UploadedByID != viewer.ID && !viewer.CanManageProject(bug.ProjectID) {
		return apperrors.Forbidden()
	}

	if err := s.media.Delete(media.ID); err != nil {
		return internal(err)
	}
	if err := s.files.Remove(media.StoredPath); err != nil {
		logger.Warn("Failed to remove stored file %s: %v", media.StoredPath, err)
	}
	return nil
}

func (s *MediaService) maxBytes() int64 {
	if s.cfg.MaxBytes > 0 {
		return s.cfg.MaxBytes
	}
	return 10 << 20
}

func (s *MediaService) tooLarge() error {
	return apperrors.Validation("file", fmt.Sprintf("file is larger than %d bytes", s.maxBytes()))
}

func contentType(file *multipart.FileHeader, ext string) string {
	if ct := file.Header.Get("Content-Type"); ct != "" && ct != "application/octet-stream" {
		return ct
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
