package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden    ErrorType = "FORBIDDEN"
	ErrorTypeConflict     ErrorType = "CONFLICT"
	ErrorTypeIntegrity    ErrorType = "INTEGRITY_ERROR"
	ErrorTypeConnection   ErrorType = "CONNECTION_ERROR"
	ErrorTypeRateLimited  ErrorType = "RATE_LIMITED"
	ErrorTypeInternal     ErrorType = "INTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidID        ErrorCode = "INVALID_ID"
	ErrCodeInvalidDate      ErrorCode = "INVALID_DATE"
	ErrCodeInvalidYear      ErrorCode = "INVALID_YEAR"
	ErrCodeInvalidISBN      ErrorCode = "INVALID_ISBN"
	ErrCodeInvalidEmail     ErrorCode = "INVALID_EMAIL"
	ErrCodePasswordTooShort ErrorCode = "PASSWORD_TOO_SHORT"

	ErrCodeBookNotFound    ErrorCode = "BOOK_NOT_FOUND"
	ErrCodePartnerNotFound ErrorCode = "PARTNER_NOT_FOUND"
	ErrCodeLoanNotFound    ErrorCode = "LOAN_NOT_FOUND"
	ErrCodeUserNotFound    ErrorCode = "USER_NOT_FOUND"
	ErrCodeRoleNotFound    ErrorCode = "ROLE_NOT_FOUND"
	ErrCodeRecordNotFound  ErrorCode = "RECORD_NOT_FOUND"

	ErrCodeBookUnavailable     ErrorCode = "BOOK_UNAVAILABLE"
	ErrCodeBookOnLoan          ErrorCode = "BOOK_ON_LOAN"
	ErrCodeDuplicateISBN       ErrorCode = "DUPLICATE_ISBN"
	ErrCodeDuplicateEmail      ErrorCode = "DUPLICATE_EMAIL"
	ErrCodePartnerInactive     ErrorCode = "PARTNER_INACTIVE"
	ErrCodeLoanAlreadyReturned ErrorCode = "LOAN_ALREADY_RETURNED"
	ErrCodeLoanLimitReached    ErrorCode = "LOAN_LIMIT_REACHED"
	ErrCodePartnerHasLoans     ErrorCode = "PARTNER_HAS_LOANS"
	ErrCodeSelfDelete          ErrorCode = "SELF_DELETE"

	ErrCodeConstraintViolation ErrorCode = "CONSTRAINT_VIOLATION"
	ErrCodeDatabaseUnavailable ErrorCode = "DATABASE_UNAVAILABLE"
	ErrCodeNoRowsAffected      ErrorCode = "NO_ROWS_AFFECTED"
	ErrCodeRequestCanceled     ErrorCode = "REQUEST_CANCELED"

	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeUserInactive       ErrorCode = "USER_INACTIVE"
	ErrCodeInvalidToken       ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired       ErrorCode = "TOKEN_EXPIRED"
	ErrCodeInsufficientRole   ErrorCode = "INSUFFICIENT_ROLE"
	ErrCodeTooManyAttempts    ErrorCode = "TOO_MANY_ATTEMPTS"
)

// AppError is the error type returned by services and repositories. Entity and
// EntityID identify the record the failure is about, when there is one.
type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Entity     string      `json:"entity,omitempty"`
	EntityID   int64       `json:"entity_id,omitempty"`
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

// Is matches on type and code so sentinel values work with errors.Is even
// after ForEntity or WithCause produced a copy.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Code == t.Code
}

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

// ForEntity returns a copy of e scoped to one record.
func (e *AppError) ForEntity(entity string, id int64) *AppError {
	cp := *e
	cp.Entity = entity
	cp.EntityID = id
	return &cp
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

// NewIntegrityError reports a violated store constraint (unique, foreign key, check).
func NewIntegrityError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeIntegrity,
		Code:       ErrCodeConstraintViolation,
		Message:    message,
		StatusCode: http.StatusConflict,
		Cause:      cause,
	}
}

// NewConnectionError reports that the store could not be reached.
func NewConnectionError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeConnection,
		Code:       ErrCodeDatabaseUnavailable,
		Message:    message,
		StatusCode: http.StatusServiceUnavailable,
		Cause:      cause,
	}
}

// NewCanceledError reports work abandoned because its context was cancelled
// or ran past its deadline.
func NewCanceledError(cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       ErrCodeRequestCanceled,
		Message:    "request was cancelled before it completed",
		StatusCode: http.StatusServiceUnavailable,
		Cause:      cause,
	}
}

func NewRateLimitError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeRateLimited,
		Code:       ErrCodeTooManyAttempts,
		Message:    message,
		StatusCode: http.StatusTooManyRequests,
	}
}

var (
	ErrBookNotFound    = NewNotFoundError("Book not found", ErrCodeBookNotFound)
	ErrPartnerNotFound = NewNotFoundError("Partner not found", ErrCodePartnerNotFound)
	ErrLoanNotFound    = NewNotFoundError("Loan not found", ErrCodeLoanNotFound)
	ErrUserNotFound    = NewNotFoundError("User not found", ErrCodeUserNotFound)
	ErrRoleNotFound    = NewNotFoundError("Role not found", ErrCodeRoleNotFound)

	ErrBookUnavailable     = NewConflictError("Book is not available for loan", ErrCodeBookUnavailable)
	ErrBookOnLoan          = NewConflictError("Book has an open loan", ErrCodeBookOnLoan)
	ErrDuplicateISBN       = NewConflictError("A book with this ISBN already exists", ErrCodeDuplicateISBN)
	ErrDuplicateEmail      = NewConflictError("Email is already registered", ErrCodeDuplicateEmail)
	ErrLoanAlreadyReturned = NewConflictError("Loan has already been returned", ErrCodeLoanAlreadyReturned)
	ErrPartnerHasLoans     = NewConflictError("Partner has loan history", ErrCodePartnerHasLoans)
	ErrSelfDelete          = NewConflictError("Users cannot delete their own account", ErrCodeSelfDelete)
	ErrPartnerInactive     = NewValidationError("Partner is not active", ErrCodePartnerInactive)
	ErrLoanLimitReached    = NewValidationError("Partner has reached the maximum number of open loans", ErrCodeLoanLimitReached)

	ErrInvalidCredentials = NewUnauthorizedError("Invalid email or password", ErrCodeInvalidCredentials)
	ErrUserInactive       = NewForbiddenError("User account is inactive", ErrCodeUserInactive)
	ErrInvalidToken       = NewUnauthorizedError("Invalid token", ErrCodeInvalidToken)
	ErrTokenExpired       = NewUnauthorizedError("Token has expired", ErrCodeTokenExpired)
	ErrInsufficientRole   = NewForbiddenError("Insufficient role for this operation", ErrCodeInsufficientRole)
)

func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsType reports whether err carries an AppError of the given type.
func IsType(err error, t ErrorType) bool {
	appErr, ok := IsAppError(err)
	return ok && appErr.Type == t
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type     ErrorType   `json:"type"`
		Code     ErrorCode   `json:"code"`
		Message  string      `json:"message"`
		Entity   string      `json:"entity,omitempty"`
		EntityID int64       `json:"entity_id,omitempty"`
		Details  interface{} `json:"details,omitempty"`
	}{
		Type:     e.Type,
		Code:     e.Code,
		Message:  e.Message,
		Entity:   e.Entity,
		EntityID: e.EntityID,
		Details:  e.Details,
	})
}
