package services

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/bugpredictor/apperrors"
	"github.com/bugpredictor/config"
	"github.com/bugpredictor/lib/storage"
	"github.com/bugpredictor/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fileHeader builds a multipart.FileHeader the way gin hands it to handlers
func fileHeader(t *testing.T, name, content string) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["file"][0]
}

func newMediaService(t *testing.T, maxBytes int64) *MediaService {
	t.Helper()
	return NewMediaService(storage.NewDisk(t.TempDir()), config.UploadConfig{
		MaxBytes:          maxBytes,
		AllowedExtensions: config.DefaultAllowedExtensions,
	})
}

func TestUploadListOpenDelete(t *testing.T) {
	setupDB(t)
	svc := newMediaService(t, 1024)

	apollo := createProject(t, "Apollo")
	owner := createUser(t, "owner", models.RoleProjectOwner, &apollo)
	alice := createUser(t, "alice", models.RoleTeamMember, &apollo)
	bug := createBug(t, "with screenshot", apollo, alice, nil)

	media, err := svc.Upload(alice, bug.ID, fileHeader(t, "../../screen shot.PNG", "png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "screen shot.PNG", media.FileName)
	assert.Equal(t, int64(len("png-bytes")), media.Size)
	assert.True(t, strings.HasPrefix(media.StoredPath, bug.ID))
	assert.True(t, strings.HasSuffix(media.StoredPath, ".png"))

	list, err := svc.List(owner, bug.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)

	_, path, err := svc.Open(owner, bug.ID, media.ID)
	require.NoError(t, err)
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(content))

	require.NoError(t, svc.Delete(owner, bug.ID, media.ID))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestUploadRejectsDisallowedExtension(t *testing.T) {
	setupDB(t)
	svc := newMediaService(t, 1024)

	apollo := createProject(t, "Apollo")
	alice := createUser(t, "alice", models.RoleTeamMember, &apollo)
	bug := createBug(t, "b", apollo, alice, nil)

	for _, name := range []string{"payload.exe", "script.sh", "noextension", "archive.tar.gz"} {
		_, err := svc.Upload(alice, bug.ID, fileHeader(t, name, "x"))
		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr, name)
		assert.Equal(t, apperrors.ErrValidation, appErr.Code, name)
		assert.Contains(t, appErr.Fields, "file", name)
	}

	list, err := svc.List(alice, bug.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestUploadRejectsOversizedFile(t *testing.T) {
	setupDB(t)
	svc := newMediaService(t, 4)

	apollo := createProject(t, "Apollo")
	alice := createUser(t, "alice", models.RoleTeamMember, &apollo)
	bug := createBug(t, "b", apollo, alice, nil)

	_, err := svc.Upload(alice, bug.ID, fileHeader(t, "big.log", "0123456789"))
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
}

func TestMediaRespectsVisibility(t *testing.T) {
	setupDB(t)
	svc := newMediaService(t, 1024)

	apollo := createProject(t, "Apollo")
	alice := createUser(t, "alice", models.RoleTeamMember, &apollo)
	bob := createUser(t, "bob", models.RoleTeamMember, &apollo)
	bug := createBug(t, "alice only", apollo, alice, nil)

	_, err := svc.Upload(bob, bug.ID, fileHeader(t, "a.txt", "x"))
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))

	_, err = svc.List(bob, bug.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}
