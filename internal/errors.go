package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden    ErrorType = "FORBIDDEN"
	ErrorTypeConflict     ErrorType = "CONFLICT"
	ErrorTypeRateLimited  ErrorType = "RATE_LIMITED"
	ErrorTypeInternal     ErrorType = "INTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed  ErrorCode = "VALIDATION_FAILED"
	ErrCodeMissingFields     ErrorCode = "MISSING_FIELDS"
	ErrCodeInvalidEmail      ErrorCode = "INVALID_EMAIL"
	ErrCodeInvalidParameters ErrorCode = "INVALID_PARAMETERS"
	ErrCodePasswordTooShort  ErrorCode = "PASSWORD_TOO_SHORT"

	ErrCodePendingApproval   ErrorCode = "PENDING_APPROVAL"
	ErrCodeAccountRejected   ErrorCode = "ACCOUNT_REJECTED"
	ErrCodeAlreadyRegistered ErrorCode = "ALREADY_REGISTERED"
	ErrCodeAccountNotFound   ErrorCode = "ACCOUNT_NOT_FOUND"
	ErrCodeApprovalNotFound  ErrorCode = "APPROVAL_NOT_FOUND"
	ErrCodeAlreadyReviewed   ErrorCode = "ALREADY_REVIEWED"
	ErrCodeUserNotFound      ErrorCode = "USER_NOT_FOUND"

	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeUnauthorizedAccess ErrorCode = "UNAUTHORIZED_ACCESS"
	ErrCodeForbidden          ErrorCode = "FORBIDDEN"
	ErrCodeInvalidToken       ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired       ErrorCode = "TOKEN_EXPIRED"
	ErrCodeSessionRevoked     ErrorCode = "SESSION_REVOKED"

	ErrCodeRateLimited       ErrorCode = "RATE_LIMITED"
	ErrCodeInvalidResetToken ErrorCode = "INVALID_RESET_TOKEN"
	ErrCodeResetTokenUsed    ErrorCode = "RESET_TOKEN_USED"
	ErrCodeResetTokenExpired ErrorCode = "RESET_TOKEN_EXPIRED"

	ErrCodePlanNotFound    ErrorCode = "PLAN_NOT_FOUND"
	ErrCodeInvalidPlan     ErrorCode = "INVALID_PLAN"
	ErrCodeProblemNotFound ErrorCode = "PROBLEM_NOT_FOUND"
)

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok && len(validationErrors.Errors) > 0 {
			return validationErrors.Errors[0].Message
		}
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) GetDetailedMessage() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok {
			if len(validationErrors.Errors) == 1 {
				return validationErrors.Errors[0].Message
			} else if len(validationErrors.Errors) > 1 {
				messages := make([]string, len(validationErrors.Errors))
				for i, err := range validationErrors.Errors {
					messages[i] = err.Message
				}
				return strings.Join(messages, "; ")
			}
		}
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithCause returns a copy carrying cause, so shared sentinels are never mutated.
func (e *AppError) WithCause(cause error) *AppError {
	cp := *e
	cp.Cause = cause
	return &cp
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	cp := *e
	cp.Details = details
	return &cp
}

// Is matches copies made by WithCause/WithDetails against their sentinel.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Type == t.Type && e.Message == t.Message
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewValidationFieldError(field, message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       ErrCodeValidationFailed,
		Message:    "Validation failed",
		StatusCode: http.StatusBadRequest,
		Details: ValidationErrors{
			Errors: []ValidationError{
				{Field: field, Message: message, Code: string(code)},
			},
		},
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewForbiddenError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

func NewTooManyRequestsError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeRateLimited,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusTooManyRequests,
	}
}

var (
	ErrMissingFields       = NewValidationError("Missing required fields", ErrCodeMissingFields)
	ErrInvalidEmail        = NewValidationError("Valid email is required", ErrCodeInvalidEmail)
	ErrInvalidParameters   = NewValidationError("Invalid parameters", ErrCodeInvalidParameters)
	ErrSignupPending       = NewValidationError("PENDING_APPROVAL", ErrCodePendingApproval)
	ErrAlreadyRegistered   = NewValidationError("This email is already registered. Please login instead.", ErrCodeAlreadyRegistered)
	ErrPreviouslyRejected  = NewValidationError("This email was previously rejected. Please contact the administrator.", ErrCodeAccountRejected)
	ErrUserNotFound        = NewNotFoundError("User not found", ErrCodeUserNotFound)
	ErrApprovalNotFound    = NewNotFoundError("No approval record found", ErrCodeApprovalNotFound)
	ErrApprovalReviewed    = NewConflictError("Approval request has already been reviewed", ErrCodeAlreadyReviewed)
	ErrAccountNotFound     = NewUnauthorizedError("No account found with this email", ErrCodeAccountNotFound)
	ErrAccountPending      = NewForbiddenError("PENDING_APPROVAL", ErrCodePendingApproval)
	ErrAccountRejected     = NewForbiddenError("Your account was rejected. Please contact the administrator.", ErrCodeAccountRejected)
	ErrInvalidCredentials  = NewUnauthorizedError("Invalid email or password", ErrCodeInvalidCredentials)
	ErrUnauthorized        = NewUnauthorizedError("Unauthorized", ErrCodeUnauthorizedAccess)
	ErrForbidden           = NewForbiddenError("Forbidden", ErrCodeForbidden)
	ErrInvalidToken        = NewUnauthorizedError("Invalid token", ErrCodeInvalidToken)
	ErrTokenExpired        = NewUnauthorizedError("Token has expired", ErrCodeTokenExpired)
	ErrSessionRevoked      = NewUnauthorizedError("Session has been revoked", ErrCodeSessionRevoked)
	ErrResetFieldsRequired = NewValidationError("Token and new password are required", ErrCodeMissingFields)
	ErrPasswordTooShort    = NewValidationError("Password must be at least 6 characters long", ErrCodePasswordTooShort)
	ErrInvalidResetToken   = NewValidationError("Invalid or expired reset link", ErrCodeInvalidResetToken)
	ErrResetTokenUsed      = NewValidationError("This reset link has already been used. Please request a new one.", ErrCodeResetTokenUsed)
	ErrResetTokenExpired   = NewValidationError("Reset link has expired. Please request a new one.", ErrCodeResetTokenExpired)
	ErrPlanNotFound        = NewNotFoundError("Plan not found", ErrCodePlanNotFound)
	ErrProblemNotFound     = NewNotFoundError("Problem not found", ErrCodeProblemNotFound)
)

// NewResetRateLimitError reports the caller's usage of the reset window.
func NewResetRateLimitError(used, max int, window time.Duration) *AppError {
	return NewTooManyRequestsError(
		fmt.Sprintf("Too many password reset requests. Please try again in %s. (%d/%d used)", humanizeWindow(window), used, max),
		ErrCodeRateLimited,
	)
}

// humanizeWindow renders a window in its largest whole unit, falling back to Duration.String.
func humanizeWindow(d time.Duration) string {
	plural := func(n int64, unit string) string {
		if n == 1 {
			return "1 " + unit
		}
		return fmt.Sprintf("%d %ss", n, unit)
	}
	switch {
	case d >= time.Hour && d%time.Hour == 0:
		return plural(int64(d/time.Hour), "hour")
	case d >= time.Minute && d%time.Minute == 0:
		return plural(int64(d/time.Minute), "minute")
	case d >= time.Second && d%time.Second == 0:
		return plural(int64(d/time.Second), "second")
	}
	return d.String()
}

func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// Response is the JSON body written for every failed request.
type Response struct {
	Error   string      `json:"error"`
	Code    ErrorCode   `json:"code,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e.GetDetailedMessage(), Code: e.Code, Details: e.Details}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}
