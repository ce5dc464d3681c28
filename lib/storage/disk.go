// Package storage keeps uploaded attachments on the local filesystem.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrTooLarge is returned by Save when the content exceeds the size limit
var ErrTooLarge = errors.New("file exceeds the size limit")

// Disk stores files below root as <bug id>/<uuid><ext>
type Disk struct {
	root string
}

func NewDisk(root string) *Disk {
	return &Disk{root: root}
}

// Save copies at most maxBytes from src into a new file for bugID and
// returns its path relative to the root and the number of bytes written.
func (d *Disk) Save(bugID, ext string, src io.Reader, maxBytes int64) (string, int64, error) {
	if err := validSegment(bugID); err != nil {
		return "", 0, err
	}
	dir := filepath.Join(d.root, bugID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", 0, fmt.Errorf("create upload directory: %w", err)
	}

	rel := filepath.Join(bugID, uuid.NewString()+ext)
	full := filepath.Join(d.root, rel)
	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", 0, fmt.Errorf("create upload file: %w", err)
	}

	written, err := io.Copy(f, io.LimitReader(src, maxBytes+1))
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil && written > maxBytes {
		err = ErrTooLarge
	}
	if err != nil {
		_ = os.Remove(full)
		return "", 0, err
	}
	return rel, written, nil
}

// Path resolves a relative path returned by Save
func (d *Disk) Path(rel string) (string, error) {
	clean := filepath.Clean(rel)
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid stored path %q", rel)
	}
	return filepath.Join(d.root, clean), nil
}

// Remove deletes one stored file. Missing files are not an error.
func (d *Disk) Remove(rel string) error {
	full, err := d.Path(rel)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// RemoveBug deletes every file stored for bugID
func (d *Disk) RemoveBug(bugID string) error {
	if err := validSegment(bugID); err != nil {
		return err
	}
	return os.RemoveAll(filepath.Join(d.root, bugID))
}

func validSegment(s string) error {
	if s == "" || s == "." || s == ".." || strings.ContainsAny(s, `/\`) {
		return fmt.Errorf("invalid path segment %q", s)
	}
	return nil
}
