package utils

import (
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// FileExtension returns the lower-cased extension of name including the dot
func FileExtension(name string) string {
	return strings.ToLower(filepath.Ext(name))
}

// ExtensionAllowed reports whether name has one of the allowed extensions
func ExtensionAllowed(name string, allowed []string) bool {
	ext := FileExtension(name)
	if ext == "" {
		return false
	}
	for _, a := range allowed {
		if ext == a {
			return true
		}
	}
	return false
}

// SanitizeFileName strips directories and control characters from an uploaded name
func SanitizeFileName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))

	var result strings.Builder
	for _, r := range name {
		if r < 0x20 || r == 0x7f || r == '"' {
			continue
		}
		result.WriteRune(r)
	}

	clean := strings.TrimSpace(result.String())
	if clean == "" || clean == "." || clean == "/" {
		return "file"
	}
	if len(clean) > 255 {
		ext := filepath.Ext(clean)
		if len(ext) > 16 {
			ext = ""
		}
		cut := 255 - len(ext)
		for cut > 0 && !utf8.RuneStart(clean[cut]) {
			cut--
		}
		clean = clean[:cut] + ext
	}
	return clean
}
