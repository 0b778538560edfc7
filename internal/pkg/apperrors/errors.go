package apperrors

import "errors"

// Common errors
var (
	// Resource errors
	ErrResourceNotFound = errors.New("resource not found")
	ErrConflict         = errors.New("conflict")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrAccountDisabled    = errors.New("account is disabled")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")

	// Downstream errors
	ErrDownstreamService = errors.New("downstream service error")

	// User errors
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("email already exists")
)

// Student errors
var (
	ErrStudentNotFound       = errors.New("student not found")
	ErrApplicationNotFound   = errors.New("application not found")
	ErrAdmissionNumberExists = errors.New("admission number already in use")
	ErrGuardianRequired      = errors.New("at least one guardian is required")
	ErrContactInfoRequired   = errors.New("contact email and phone are required")
)

// Teacher errors
var (
	ErrTeacherNotFound      = errors.New("teacher not found")
	ErrEmployeeNumberExists = errors.New("employee number already in use")
)

// School errors
var (
	ErrSchoolNotFound      = errors.New("school not found")
	ErrSchoolAlreadyExists = errors.New("school with this code already exists")
)

// NewResourceNotFoundError creates a new custom error for resource not found with a message
func NewResourceNotFoundError(message string) error {
	return &CustomError{
		Err:     ErrResourceNotFound,
		Message: message,
	}
}

// NewConflictError creates a new custom error for conflict situations with a message
func NewConflictError(message string) error {
	return &CustomError{
		Err:     ErrConflict,
		Message: message,
	}
}

// Is returns whether target matches any of the errors in errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Details map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// Compensation outcome values recorded on saga errors under the
// "compensation" detail key.
const (
	CompensationSucceeded = "succeeded"
	CompensationFailed    = "failed"
)

// NewSagaError wraps a local-transaction failure that happened after a remote
// identity had already been provisioned. The compensation outcome is attached
// as detail metadata; the primary error stays the transaction failure.
func NewSagaError(err error, message, compensation string, identityID int64) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
		Details: map[string]interface{}{
			"compensation":       compensation,
			"externalIdentityId": identityID,
		},
	}
}
