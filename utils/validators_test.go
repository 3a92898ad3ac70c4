package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signup struct {
	Email string `json:"email" validate:"required,email"`
	CCCD  string `json:"cccd" validate:"required,cccd"`
}

func TestValidatorStruct(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.Struct(signup{Email: "a@example.com", CCCD: "012345678901"}))

	err := v.Struct(signup{Email: "nope", CCCD: "0123"})
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))
	assert.Equal(t, 400, HTTPStatus(err))

	var appErr *AppError
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Fields, "email")
	assert.Equal(t, "cccd phải gồm đúng 12 chữ số", appErr.Fields["cccd"])
}

func TestIsCCCD(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"012345678901", true},
		{"01234567890", false},
		{"0123456789012", false},
		{"01234567890a", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsCCCD(tt.in), tt.in)
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{NewValidationError("x", nil), 400},
		{NewAuthenticationError("x"), 401},
		{NewAuthorizationError("x"), 403},
		{NewNotFoundError("x"), 404},
		{NewConflictError("x"), 409},
		{assert.AnError, 500},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HTTPStatus(tt.err))
	}
}
