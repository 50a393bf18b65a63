package commonerrors

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCategory string

const (
	CategoryValidation   ErrorCategory = "VALIDATION"
	CategoryAuth         ErrorCategory = "AUTH"
	CategoryNotFound     ErrorCategory = "NOT_FOUND"
	CategoryConflict     ErrorCategory = "CONFLICT"
	CategoryUnauthorized ErrorCategory = "UNAUTHORIZED"
	CategoryInternal     ErrorCategory = "INTERNAL"
	CategoryExternal     ErrorCategory = "EXTERNAL"
)

type DomainError interface {
	error
	Code() string
	Category() ErrorCategory
	HTTPStatus() int
	Message() string
	Field() string
	Unwrap() error
	WithCause(cause error) DomainError
	WithMessage(message string) DomainError
	WithField(field string) DomainError
}

type domainError struct {
	code     string
	category ErrorCategory
	status   int
	message  string
	field    string
	cause    error
}

func (e *domainError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

func (e *domainError) Code() string            { return e.code }
func (e *domainError) Category() ErrorCategory { return e.category }
func (e *domainError) HTTPStatus() int         { return e.status }
func (e *domainError) Message() string         { return e.message }
func (e *domainError) Field() string           { return e.field }
func (e *domainError) Unwrap() error           { return e.cause }

// Is matches by code so that errors derived with WithCause/WithMessage still
// compare equal to the sentinel they came from.
func (e *domainError) Is(target error) bool {
	t, ok := target.(*domainError)
	if !ok {
		return false
	}
	return e.code == t.code
}

func (e *domainError) clone() *domainError {
	c := *e
	return &c
}

func (e *domainError) WithCause(cause error) DomainError {
	c := e.clone()
	c.cause = cause
	return c
}

func (e *domainError) WithMessage(message string) DomainError {
	c := e.clone()
	c.message = message
	return c
}

func (e *domainError) WithField(field string) DomainError {
	c := e.clone()
	c.field = field
	return c
}

func NewDomainError(code string, category ErrorCategory, status int, message string) DomainError {
	return &domainError{
		code:     code,
		category: category,
		status:   status,
		message:  message,
	}
}

func IsDomainError(err error) bool {
	var de DomainError
	return errors.As(err, &de)
}

func AsDomainError(err error) (DomainError, bool) {
	var de DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

func hasCategory(err error, category ErrorCategory) bool {
	de, ok := AsDomainError(err)
	return ok && de.Category() == category
}

func IsValidation(err error) bool     { return hasCategory(err, CategoryValidation) }
func IsConflict(err error) bool       { return hasCategory(err, CategoryConflict) }
func IsAuthentication(err error) bool { return hasCategory(err, CategoryAuth) }
func IsNotFound(err error) bool       { return hasCategory(err, CategoryNotFound) }
func IsRemoteService(err error) bool  { return hasCategory(err, CategoryExternal) }

// NewValidationError reports bad input for a single form field.
func NewValidationError(field, message string) DomainError {
	return ErrValidation.WithMessage(message).WithField(field)
}

var (
	ErrMissingRequiredEnv = NewDomainError(
		"MISSING_REQUIRED_ENV",
		CategoryValidation,
		http.StatusInternalServerError,
		"missing required environment variable",
	)

	ErrInvalidSessionSecret = NewDomainError(
		"INVALID_SESSION_SECRET",
		CategoryValidation,
		http.StatusInternalServerError,
		"SESSION_SECRET must be at least 32 bytes",
	)

	ErrValidation = NewDomainError(
		"VALIDATION_FAILED",
		CategoryValidation,
		http.StatusBadRequest,
		"validation failed",
	)

	ErrPasswordMismatch = NewDomainError(
		"PASSWORD_MISMATCH",
		CategoryValidation,
		http.StatusBadRequest,
		"passwords do not match",
	)

	ErrUsernameTaken = NewDomainError(
		"USERNAME_TAKEN",
		CategoryConflict,
		http.StatusConflict,
		"username has already been taken",
	)

	ErrInvalidCredentials = NewDomainError(
		"INVALID_CREDENTIALS",
		CategoryAuth,
		http.StatusUnauthorized,
		"please check your username and password",
	)

	ErrInvalidSession = NewDomainError(
		"INVALID_SESSION",
		CategoryUnauthorized,
		http.StatusUnauthorized,
		"session is not valid",
	)

	ErrTaskNotFound = NewDomainError(
		"TASK_NOT_FOUND",
		CategoryNotFound,
		http.StatusNotFound,
		"task not found",
	)

	ErrTaskAlreadyCompleted = NewDomainError(
		"TASK_ALREADY_COMPLETED",
		CategoryConflict,
		http.StatusConflict,
		"task is already completed",
	)

	ErrRemoteService = NewDomainError(
		"REMOTE_SERVICE_FAILED",
		CategoryExternal,
		http.StatusBadGateway,
		"the incident could not be reported, please try again later",
	)

	ErrIncidentReportingDisabled = NewDomainError(
		"INCIDENT_REPORTING_DISABLED",
		CategoryExternal,
		http.StatusServiceUnavailable,
		"incident reporting is not configured",
	)

	ErrCircuitOpen = NewDomainError(
		"CIRCUIT_OPEN",
		CategoryExternal,
		http.StatusServiceUnavailable,
		"circuit breaker is open",
	)

	ErrInternalError = NewDomainError(
		"INTERNAL_ERROR",
		CategoryInternal,
		http.StatusInternalServerError,
		"internal server error",
	)
)
