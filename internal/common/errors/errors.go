package errors

import (
	"fmt"
	"time"
)

// ErrorCode identifies a class of application error.
type ErrorCode string

const (
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
	ErrCodeValidation   ErrorCode = "VALIDATION_ERROR"
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"
	ErrCodeConflict     ErrorCode = "CONFLICT"
	ErrCodeBadRequest   ErrorCode = "BAD_REQUEST"

	ErrCodeUserNotFound  ErrorCode = "USER_NOT_FOUND"
	ErrCodeGroupNotFound ErrorCode = "GROUP_NOT_FOUND"

	ErrCodeGroupFull                ErrorCode = "GROUP_FULL"
	ErrCodeInsufficientParticipants ErrorCode = "INSUFFICIENT_PARTICIPANTS"
	ErrCodeNotAdmin                 ErrorCode = "NOT_ADMIN"

	ErrCodeStoreError ErrorCode = "STORE_ERROR"
)

// AppError is the typed error carried through services up to the HTTP layer.
type AppError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	RequestID string                 `json:"request_id,omitempty"`
	Cause     error                  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// IsNotFound reports whether the error denotes a missing resource.
func (e *AppError) IsNotFound() bool {
	return e.Code == ErrCodeNotFound ||
		e.Code == ErrCodeUserNotFound ||
		e.Code == ErrCodeGroupNotFound
}

// IsValidation reports whether the error is a user-input problem.
func (e *AppError) IsValidation() bool {
	return e.Code == ErrCodeValidation ||
		e.Code == ErrCodeBadRequest ||
		e.Code == ErrCodeInsufficientParticipants ||
		e.Code == ErrCodeGroupFull
}

// IsUnauthorized reports whether the error is an auth failure.
func (e *AppError) IsUnauthorized() bool {
	return e.Code == ErrCodeUnauthorized || e.Code == ErrCodeForbidden || e.Code == ErrCodeNotAdmin
}

// IsInternal reports whether the error should be treated as a server fault.
func (e *AppError) IsInternal() bool {
	return e.Code == ErrCodeInternal || e.Code == ErrCodeStoreError
}

// WithDetail attaches structured detail to the error.
func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithRequestID tags the error with the originating request.
func (e *AppError) WithRequestID(requestID string) *AppError {
	e.RequestID = requestID
	return e
}

// New creates a new application error.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// Wrap wraps an existing error.
func Wrap(err error, code ErrorCode, message string) *AppError {
	appErr := New(code, message)
	appErr.Cause = err
	return appErr
}

// Wrapf wraps an existing error with a formatted message.
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *AppError {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// NewGroupNotFoundError creates a "group not found" error.
func NewGroupNotFoundError(groupID string) *AppError {
	return New(ErrCodeGroupNotFound, "Group not found").
		WithDetail("group_id", groupID)
}

// NewUserNotFoundError creates a "user not found" error.
func NewUserNotFoundError(userID string) *AppError {
	return New(ErrCodeUserNotFound, "User not found").
		WithDetail("user_id", userID)
}

// NewValidationError creates a validation error for a single field.
func NewValidationError(field, reason string) *AppError {
	return New(ErrCodeValidation, fmt.Sprintf("Validation failed for field '%s': %s", field, reason)).
		WithDetail("field", field).
		WithDetail("reason", reason)
}

// NewUnauthorizedError creates an authentication error.
func NewUnauthorizedError(reason string) *AppError {
	return New(ErrCodeUnauthorized, fmt.Sprintf("Unauthorized: %s", reason)).
		WithDetail("reason", reason)
}

// NewNotAdminError creates the error returned by the admin guard.
func NewNotAdminError(groupID string) *AppError {
	return New(ErrCodeNotAdmin, "Only the group admin can perform this action").
		WithDetail("group_id", groupID)
}

// NewStoreError wraps a failed document-store operation.
func NewStoreError(operation string, err error) *AppError {
	return Wrap(err, ErrCodeStoreError, fmt.Sprintf("Store operation failed: %s", operation)).
		WithDetail("operation", operation)
}

// IsAppError reports whether err is an AppError.
func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

// AsAppError converts err to an AppError when possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if err != nil {
		appErr, _ = err.(*AppError)
	}
	return appErr, appErr != nil
}
