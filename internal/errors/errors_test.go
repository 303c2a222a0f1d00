package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError(t *testing.T) {
	t.Run("Error returns formatted string", func(t *testing.T) {
		err := New(ErrCodeNotFound, "Certificate not found")
		assert.Equal(t, "NOT_FOUND: Certificate not found", err.Error())
	})

	t.Run("Error with cause includes cause", func(t *testing.T) {
		cause := errors.New("database connection failed")
		err := Wrap(ErrCodeDatabase, "Database error", cause)
		assert.Contains(t, err.Error(), "DATABASE_ERROR")
		assert.Contains(t, err.Error(), "Database error")
		assert.Contains(t, err.Error(), "database connection failed")
	})

	t.Run("WithCause adds cause to error", func(t *testing.T) {
		cause := errors.New("original error")
		err := New(ErrCodeInternal, "Something went wrong").WithCause(cause)
		assert.Equal(t, cause, err.Unwrap())
	})
}

func TestErrorConstructors(t *testing.T) {
	tests := []struct {
		name         string
		constructor  func() *AppError
		expectedCode ErrorCode
	}{
		{"Unauthorized", func() *AppError { return Unauthorized("test") }, ErrCodeUnauthorized},
		{"InvalidSession", func() *AppError { return InvalidSession() }, ErrCodeInvalidSession},
		{"InvalidCredentials", func() *AppError { return InvalidCredentials() }, ErrCodeInvalidCredentials},
		{"NotFound", func() *AppError { return NotFound("Certificate") }, ErrCodeNotFound},
		{"ValidationError", func() *AppError { return ValidationError("test") }, ErrCodeValidation},
		{"MissingRequired", func() *AppError { return MissingRequired("csv") }, ErrCodeMissingRequired},
		{"QueryTooShort", func() *AppError { return QueryTooShort(2) }, ErrCodeQueryTooShort},
		{"UnsupportedFile", func() *AppError { return UnsupportedFile("test") }, ErrCodeUnsupportedFile},
		{"PayloadTooLarge", func() *AppError { return PayloadTooLarge("test") }, ErrCodePayloadTooLarge},
		{"RateLimitExceeded", func() *AppError { return RateLimitExceeded("test") }, ErrCodeRateLimitExceeded},
		{"Internal", func() *AppError { return Internal("test") }, ErrCodeInternal},
		{"Database", func() *AppError { return Database(errors.New("x")) }, ErrCodeDatabase},
		{"Storage", func() *AppError { return Storage(errors.New("x")) }, ErrCodeStorage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.constructor()
			assert.Equal(t, tt.expectedCode, err.Code)
			assert.NotEmpty(t, err.Message)
		})
	}
}

func TestAsAppError(t *testing.T) {
	t.Run("finds wrapped AppError", func(t *testing.T) {
		wrapped := fmt.Errorf("context: %w", NotFound("Certificate"))
		appErr, ok := AsAppError(wrapped)
		assert.True(t, ok)
		assert.Equal(t, ErrCodeNotFound, appErr.Code)
		assert.True(t, IsAppError(wrapped))
	})

	t.Run("plain errors are internal", func(t *testing.T) {
		err := errors.New("plain")
		_, ok := AsAppError(err)
		assert.False(t, ok)
		assert.Equal(t, ErrCodeInternal, GetCode(err))
		assert.True(t, IsInternal(err))
	})

	t.Run("client errors are not internal", func(t *testing.T) {
		assert.False(t, IsInternal(QueryTooShort(2)))
		assert.True(t, IsInternal(Database(errors.New("x"))))
	})
}
