package apperr

import (
	"errors"
	"net/http"
)

// Error is a classified failure with a stable machine-readable code.
// Two errors are considered the same kind when their codes match.
type Error struct {
	Code       string
	Status     int
	Message    string
	Resolution string

	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Code + ": " + e.cause.Error()
	}
	return e.Code + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.cause }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithMessage returns a copy of e with a different user-facing message.
func (e *Error) WithMessage(msg string) *Error {
	cp := *e
	cp.Message = msg
	return &cp
}

// WithStatus returns a copy of e answered with a different HTTP status.
func (e *Error) WithStatus(status int) *Error {
	cp := *e
	cp.Status = status
	return &cp
}

// Wrap returns a copy of e carrying cause for logging.
func (e *Error) Wrap(cause error) *Error {
	cp := *e
	cp.cause = cause
	return &cp
}

var (
	ErrTokenInvalid = &Error{
		Code:       "invalid_token",
		Status:     http.StatusUnauthorized,
		Message:    "Token is invalid Or expired",
		Resolution: "Please get new token",
	}
	ErrTokenExpired = &Error{
		Code:       "token_expired",
		Status:     http.StatusUnauthorized,
		Message:    "Token is expired",
		Resolution: "Please get new token",
	}
	ErrTokenRevoked = &Error{
		Code:       "token_revoked",
		Status:     http.StatusUnauthorized,
		Message:    "Token has been revoked",
		Resolution: "Please get new token",
	}
	ErrAccessTokenRequired = &Error{
		Code:       "access_token_required",
		Status:     http.StatusUnauthorized,
		Message:    "Please provide a valid access token",
		Resolution: "Please get an access token",
	}
	ErrRefreshTokenRequired = &Error{
		Code:       "refresh_token_required",
		Status:     http.StatusForbidden,
		Message:    "Please provide a valid refresh token",
		Resolution: "Please get a refresh token",
	}
	ErrUnauthorized = &Error{
		Code:       "unauthorized",
		Status:     http.StatusUnauthorized,
		Message:    "Unauthorized",
		Resolution: "Please provide an Authorization header",
	}
	ErrForbidden = &Error{
		Code:       "forbidden",
		Status:     http.StatusForbidden,
		Message:    "This role does not have permission to access this resource or You don't have permission to access this resource",
		Resolution: "Please contact your administrator or IT support",
	}
	ErrUserNotFound = &Error{
		Code:    "user_not_found",
		Status:  http.StatusNotFound,
		Message: "User not found",
	}
	ErrRoleNotFound = &Error{
		Code:    "role_not_found",
		Status:  http.StatusNotFound,
		Message: "Role not found",
	}
	ErrPermissionNotFound = &Error{
		Code:    "permission_not_found",
		Status:  http.StatusNotFound,
		Message: "Permission not found",
	}
	ErrInvalidCredentials = &Error{
		Code:    "invalid_credentials",
		Status:  http.StatusBadRequest,
		Message: "Credentials provided are invalid",
	}
	ErrAccountLocked = &Error{
		Code:    "account_locked",
		Status:  http.StatusForbidden,
		Message: "Your account has been locked. Please contact the administrator or IT support.",
	}
	ErrUserInactive = &Error{
		Code:    "user_inactive",
		Status:  http.StatusBadRequest,
		Message: "User is inactive, please contact the IT department",
	}
	ErrConfirmMismatch = &Error{
		Code:    "invalid_confirm_password",
		Status:  http.StatusBadRequest,
		Message: "Confirm Password does not match",
	}
	ErrWeakPassword = &Error{
		Code:    "weak_password",
		Status:  http.StatusBadRequest,
		Message: "Password must be at least 8 characters and contain at least one uppercase letter, one lowercase letter, one number, and one special character.",
	}
	ErrDuplicateRecord = &Error{
		Code:    "duplicate_record",
		Status:  http.StatusConflict,
		Message: "Record already exists",
	}
	ErrUserExists = &Error{
		Code:    "user_exists",
		Status:  http.StatusForbidden,
		Message: "User with email already exists",
	}
	ErrValidation = &Error{
		Code:    "validation_error",
		Status:  http.StatusBadRequest,
		Message: "Request is invalid",
	}
	ErrInternal = &Error{
		Code:    "server_error",
		Status:  http.StatusInternalServerError,
		Message: "Oops! Something went wrong",
	}
)

// Internal classifies an unexpected failure. Already classified errors are
// returned unchanged.
func Internal(cause error) error {
	if cause == nil {
		return nil
	}
	var ae *Error
	if errors.As(cause, &ae) {
		return cause
	}
	return ErrInternal.Wrap(cause)
}

// From extracts the classified error from err, falling back to ErrInternal.
func From(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return ErrInternal.Wrap(err)
}
