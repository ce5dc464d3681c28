package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		ErrValidation:            http.StatusBadRequest,
		ErrUnauthorized:          http.StatusUnauthorized,
		ErrForbidden:             http.StatusForbidden,
		ErrNotFound:              http.StatusNotFound,
		ErrProtected:             http.StatusConflict,
		ErrClassifierUnavailable: http.StatusServiceUnavailable,
		ErrInternal:              http.StatusInternalServerError,
		Code("SOMETHING_ELSE"):   http.StatusInternalServerError,
	}
	for code, status := range cases {
		assert.Equal(t, status, (&AppError{Code: code}).HTTPStatus(), code)
	}
}

func TestValidationCarriesFields(t *testing.T) {
	err := Validation("title", "title cannot be changed")
	assert.Equal(t, ErrValidation, err.Code)
	assert.Equal(t, map[string]string{"title": "title cannot be changed"}, err.Fields)

	err = ValidationFields(map[string]string{"a": "x", "b": "y"})
	assert.Equal(t, "invalid input", err.Message)
	assert.Len(t, err.Fields, 2)
}

func TestAsWrapsUnknownErrors(t *testing.T) {
	plain := errors.New("boom")
	appErr := As(plain)
	assert.Equal(t, ErrInternal, appErr.Code)
	assert.ErrorIs(t, appErr, plain)

	nested := fmt.Errorf("loading bug: %w", NotFound("bug"))
	appErr = As(nested)
	assert.Equal(t, ErrNotFound, appErr.Code)
	assert.Equal(t, "bug not found", appErr.Message)
	assert.True(t, Is(nested, ErrNotFound))
	assert.False(t, Is(plain, ErrNotFound))
}

func TestErrorString(t *testing.T) {
	assert.Equal(t, "FORBIDDEN: you do not have permission to perform this action", Forbidden().Error())
	assert.Equal(t, "INTERNAL: internal server issue, please try again: boom", Wrap(ErrInternal, errors.New("boom")).Error())
	assert.Equal(t, "PROTECTED: project has 2 users", Protected("project has %d users", 2).Error())
}
