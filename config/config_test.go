package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeExtensions(t *testing.T) {
	assert.Equal(t, []string{".png", ".jpg"}, normalizeExtensions([]string{"PNG", " .jpg "}))
	assert.Equal(t, []string{".png", ".gif", ".txt"}, normalizeExtensions([]string{"png,gif", "txt"}))
	assert.Equal(t, DefaultAllowedExtensions, normalizeExtensions(nil))
	assert.Equal(t, DefaultAllowedExtensions, normalizeExtensions([]string{" , "}))
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("CLASSIFIER_BASE_URL", "http://classifier.test")
	t.Setenv("CLASSIFIER_FAIL_MODE", "closed")
	t.Setenv("UPLOAD_MAX_BYTES", "2048")
	t.Setenv("AUTH_TOKEN_TTL", "30m")

	cfg := Load()
	assert.Equal(t, "http://classifier.test", cfg.Classifier.BaseURL)
	assert.Equal(t, "closed", cfg.Classifier.FailMode)
	assert.Equal(t, int64(2048), cfg.Upload.MaxBytes)
	assert.Equal(t, 30*time.Minute, cfg.Auth.TokenTTL)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, time.Hour, cfg.Scheduler.TokenCleanupInterval)
}
