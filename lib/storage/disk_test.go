package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndRemove(t *testing.T) {
	root := t.TempDir()
	d := NewDisk(root)

	rel, size, err := d.Save("bug-1", ".log", strings.NewReader("stack trace"), 1024)
	require.NoError(t, err)
	assert.Equal(t, int64(len("stack trace")), size)
	assert.Equal(t, "bug-1", filepath.Dir(rel))
	assert.Equal(t, ".log", filepath.Ext(rel))

	full, err := d.Path(rel)
	require.NoError(t, err)
	content, err := os.ReadFile(full)
	require.NoError(t, err)
	assert.Equal(t, "stack trace", string(content))

	require.NoError(t, d.Remove(rel))
	_, err = os.Stat(full)
	assert.True(t, os.IsNotExist(err))
	assert.NoError(t, d.Remove(rel))
}

func TestSaveRejectsOversizedContent(t *testing.T) {
	root := t.TempDir()
	d := NewDisk(root)

	_, _, err := d.Save("bug-1", ".txt", strings.NewReader("0123456789"), 5)
	assert.ErrorIs(t, err, ErrTooLarge)

	entries, err := os.ReadDir(filepath.Join(root, "bug-1"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestPathRejectsTraversal(t *testing.T) {
	d := NewDisk(t.TempDir())

	_, err := d.Path("../etc/passwd")
	assert.Error(t, err)
	_, err = d.Path("/etc/passwd")
	assert.Error(t, err)
	_, _, err = d.Save("../x", ".txt", strings.NewReader("x"), 10)
	assert.Error(t, err)
}

func TestRemoveBug(t *testing.T) {
	root := t.TempDir()
	d := NewDisk(root)

	_, _, err := d.Save("bug-2", ".png", strings.NewReader("png"), 10)
	require.NoError(t, err)
	require.NoError(t, d.RemoveBug("bug-2"))

	_, err = os.Stat(filepath.Join(root, "bug-2"))
	assert.True(t, os.IsNotExist(err))
}
