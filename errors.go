package listmeta

import (
	"errors"
	"fmt"
)

// ErrorType represents the category of error
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeQuery      ErrorType = "query"
	ErrorTypeStorage    ErrorType = "storage"
)

const (
	ErrCodeListNotFound     = "LIST_NOT_FOUND"
	ErrCodeInvalidListID    = "INVALID_LIST_ID"
	ErrCodeQueryFailed      = "QUERY_FAILED"
	ErrCodeAssetCheckFailed = "ASSET_CHECK_FAILED"
	ErrCodeConnectionFailed = "CONNECTION_FAILED"
	ErrCodeInvalidConfig    = "INVALID_CONFIG"
)

// ListMetaError is the error type returned by stores and checkers.
type ListMetaError struct {
	Type    ErrorType `json:"type"`
	Code    string    `json:"code"`
	Message string    `json:"message"`
	ListID  int64     `json:"listId,omitempty"`
	Field   string    `json:"field,omitempty"`
	Cause   error     `json:"-"`
}

func (e *ListMetaError) Error() string {
	msg := e.Message
	if e.Cause != nil {
		msg = msg + ": " + e.Cause.Error()
	}
	if e.ListID != 0 {
		return fmt.Sprintf("[%s:%s] list %d: %s", e.Type, e.Code, e.ListID, msg)
	}
	if e.Field != "" {
		return fmt.Sprintf("[%s:%s] field '%s': %s", e.Type, e.Code, e.Field, msg)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Type, e.Code, msg)
}

func (e *ListMetaError) Unwrap() error {
	return e.Cause
}

// WithCause adds a cause to a ListMetaError
func (e *ListMetaError) WithCause(cause error) *ListMetaError {
	e.Cause = cause
	return e
}

// WithField adds field context to a ListMetaError
func (e *ListMetaError) WithField(field string) *ListMetaError {
	e.Field = field
	return e
}

// NewListMetaError creates a new ListMetaError
func NewListMetaError(errorType ErrorType, code, message string) *ListMetaError {
	return &ListMetaError{
		Type:    errorType,
		Code:    code,
		Message: message,
	}
}

// NewListNotFoundError creates a list not found error
func NewListNotFoundError(listID int64) *ListMetaError {
	return &ListMetaError{
		Type:    ErrorTypeNotFound,
		Code:    ErrCodeListNotFound,
		Message: "list not found",
		ListID:  listID,
	}
}

// NewQueryError wraps a failed database read.
func NewQueryError(listID int64, message string, cause error) *ListMetaError {
	return &ListMetaError{
		Type:    ErrorTypeQuery,
		Code:    ErrCodeQueryFailed,
		Message: message,
		ListID:  listID,
		Cause:   cause,
	}
}

// NewAssetCheckError wraps a failed existence check.
func NewAssetCheckError(path string, cause error) *ListMetaError {
	return &ListMetaError{
		Type:    ErrorTypeStorage,
		Code:    ErrCodeAssetCheckFailed,
		Message: fmt.Sprintf("check asset %q", path),
		Cause:   cause,
	}
}

// IsNotFound reports whether err carries ErrorTypeNotFound.
func IsNotFound(err error) bool {
	var lmErr *ListMetaError
	if errors.As(err, &lmErr) {
		return lmErr.Type == ErrorTypeNotFound
	}
	return false
}
