package utils

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct-horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct-horse", hash)
	assert.True(t, CheckPassword(hash, "correct-horse"))
	assert.False(t, CheckPassword(hash, "battery-staple"))
}

func TestOpaqueToken(t *testing.T) {
	raw, hash, err := NewOpaqueToken()
	require.NoError(t, err)
	assert.Len(t, hash, 64)
	assert.Equal(t, hash, HashToken(raw))

	other, _, err := NewOpaqueToken()
	require.NoError(t, err)
	assert.NotEqual(t, raw, other)
}

func TestExtensionAllowed(t *testing.T) {
	allowed := []string{".png", ".txt"}
	assert.True(t, ExtensionAllowed("shot.PNG", allowed))
	assert.True(t, ExtensionAllowed("notes.txt", allowed))
	assert.False(t, ExtensionAllowed("run.exe", allowed))
	assert.False(t, ExtensionAllowed("README", allowed))
	assert.False(t, ExtensionAllowed("archive.png.exe", allowed))
}

func TestSanitizeFileName(t *testing.T) {
	assert.Equal(t, "passwd", SanitizeFileName("../../etc/passwd"))
	assert.Equal(t, "evil.png", SanitizeFileName(`C:\Users\me\evil.png`))
	assert.Equal(t, "ab.txt", SanitizeFileName("a\x00b.txt"))
	assert.Equal(t, "file", SanitizeFileName("  "))

	long := SanitizeFileName(strings.Repeat("x", 300) + ".png")
	assert.Len(t, long, 255)
	assert.True(t, strings.HasSuffix(long, ".png"))

	// 2-byte runes put byte 251 in the middle of a rune
	wide := SanitizeFileName(strings.Repeat("é", 200) + ".png")
	assert.True(t, utf8.ValidString(wide))
	assert.LessOrEqual(t, len(wide), 255)
	assert.True(t, strings.HasSuffix(wide, "é.png"))
}

func TestRenderMarkdown(t *testing.T) {
	assert.Equal(t, "<p><strong>bold</strong> move</p>\n", RenderMarkdown("**bold** move"))

	html := RenderMarkdown("<script>alert(1)</script>")
	assert.NotContains(t, html, "<script>")
}

func TestStrings(t *testing.T) {
	assert.Equal(t, "ann@example.com", NormalizeEmail("  Ann@Example.COM "))
	assert.Equal(t, "", Deref(nil))
	s := "x"
	assert.Equal(t, "x", Deref(&s))
}

func TestHasControlChars(t *testing.T) {
	assert.False(t, HasControlChars("Crash on save – Übersicht"))
	assert.True(t, HasControlChars("Crash\r\nBcc: x@y.z"))
	assert.True(t, HasControlChars("tab\there"))
}
