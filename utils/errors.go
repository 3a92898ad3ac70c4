package utils

import (
	"errors"
	"net/http"
)

type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindConflict
	KindAuthentication
	KindAuthorization
	KindNotFound
)

// AppError là lỗi nghiệp vụ đã phân loại; mọi lỗi khác được coi là lỗi nội bộ.
type AppError struct {
	Kind    ErrorKind
	Message string
	Fields  map[string]string // lỗi theo từng trường, chỉ có với KindValidation
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

func NewValidationError(msg string, fields map[string]string) error {
	return &AppError{Kind: KindValidation, Message: msg, Fields: fields}
}

func NewConflictError(msg string) error {
	return &AppError{Kind: KindConflict, Message: msg}
}

func NewAuthenticationError(msg string) error {
	return &AppError{Kind: KindAuthentication, Message: msg}
}

func NewAuthorizationError(msg string) error {
	return &AppError{Kind: KindAuthorization, Message: msg}
}

func NewNotFoundError(msg string) error {
	return &AppError{Kind: KindNotFound, Message: msg}
}

// KindOf trả về loại lỗi, KindInternal nếu err không phải AppError.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}

func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
