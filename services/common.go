package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bugpredictor/apperrors"
	"github.com/bugpredictor/models"
	"github.com/bugpredictor/utils"
	"gorm.io/gorm"
)

// SeverityPredictor classifies a bug description
type SeverityPredictor interface {
	Predict(ctx context.Context, description string) (models.Severity, error)
}

// Mailer renders and sends a templated email
type Mailer interface {
	Send(to, subject, template string, data interface{}) error
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// notFoundOr maps a missing row to NOT_FOUND and anything else to INTERNAL
func notFoundOr(err error, resource string) error {
	if isNotFound(err) {
		return apperrors.NotFound(resource)
	}
	return apperrors.Wrap(apperrors.ErrInternal, err)
}

func internal(err error) error {
	return apperrors.Wrap(apperrors.ErrInternal, err)
}

// passwordErrors checks a password pair and returns per-field messages
func passwordErrors(password1, password2, field1, field2 string) map[string]string {
	fields := map[string]string{}
	if len(password1) < utils.MinPasswordLength {
		fields[field1] = fmt.Sprintf("password must be at least %d characters", utils.MinPasswordLength)
	}
	if password1 != password2 {
		fields[field2] = "the two password fields didn't match"
	}
	return fields
}

func trimmed(s string) string {
	return strings.TrimSpace(s)
}
