package errors

import (
	"errors"
	"net/http"

	pkgerrors "github.com/pkg/errors"
)

// Kind classifies an application error.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuthentication
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindMalformedID
)

// Messages shared between layers.
const (
	MsgValidationFailed   = "Validation failed"
	MsgInvalidCredentials = "Invalid email or password"
	MsgUnauthorized       = "Unauthorized access"
	MsgForbidden          = "Access forbidden"
	MsgDuplicateEntry     = "Duplicate entry found"
	MsgInvalidID          = "Invalid ID format"
	MsgInternal           = "Internal server error"
	MsgInternalProduction = "Something went wrong"
)

// ErrDuplicateKey is wrapped by repositories when the store rejects a write
// because of a unique index.
var ErrDuplicateKey = errors.New("duplicate key")

// FieldError is a single field-level validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// AppError is the typed error every layer below the handlers returns.
type AppError struct {
	Kind    Kind
	Message string
	Fields  []FieldError
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil && e.Kind == KindInternal {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status associated with the error kind.
func (e *AppError) StatusCode() int {
	switch e.Kind {
	case KindValidation, KindConflict, KindMalformedID:
		return http.StatusBadRequest
	case KindAuthentication, KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// newAppError records a stack trace at the construction site so the error
// funnel can log where the failure originated.
func newAppError(kind Kind, msg string, cause error, fields []FieldError) *AppError {
	if cause == nil {
		cause = pkgerrors.New(msg)
	} else {
		cause = pkgerrors.WithStack(cause)
	}
	return &AppError{Kind: kind, Message: msg, Fields: fields, Err: cause}
}

// Validation reports field-level failures.
func Validation(msg string, fields ...FieldError) *AppError {
	if msg == "" {
		msg = MsgValidationFailed
	}
	return newAppError(KindValidation, msg, nil, fields)
}

// AuthenticationFailed is returned for bad credentials. The message never
// reveals which half of the credentials was wrong.
func AuthenticationFailed() *AppError {
	return newAppError(KindAuthentication, MsgInvalidCredentials, nil, nil)
}

// Unauthorized is returned when no session is attached to the request.
func Unauthorized() *AppError {
	return newAppError(KindUnauthorized, MsgUnauthorized, nil, nil)
}

// Forbidden is returned when the session role does not satisfy the route.
func Forbidden() *AppError {
	return newAppError(KindForbidden, MsgForbidden, nil, nil)
}

// NotFound is returned for absent or inactive entities.
func NotFound(msg string) *AppError {
	return newAppError(KindNotFound, msg, nil, nil)
}

// Conflict is returned when a unique field is already taken.
func Conflict(msg string, cause error) *AppError {
	if msg == "" {
		msg = MsgDuplicateEntry
	}
	return newAppError(KindConflict, msg, cause, nil)
}

// MalformedID is returned when an identifier is not a valid UUID.
func MalformedID(cause error) *AppError {
	return newAppError(KindMalformedID, MsgInvalidID, cause, nil)
}

// Internal wraps an unclassified failure.
func Internal(cause error) *AppError {
	return newAppError(KindInternal, MsgInternal, cause, nil)
}

// KindOf returns the kind of the first AppError in err's chain, or
// KindConflict for store duplicate-key errors, or KindInternal.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	if errors.Is(err, ErrDuplicateKey) {
		return KindConflict
	}
	return KindInternal
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Fields     []FieldError
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message string, fields ...FieldError) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Fields:     fields,
	}
}

// MapErrorToHTTP maps domain and store errors to HTTP errors. Internal
// messages are replaced by a generic string when production is set.
func MapErrorToHTTP(err error, production bool) *HTTPError {
	var appErr *AppError
	switch {
	case errors.As(err, &appErr) && appErr.Kind != KindInternal:
		return NewHTTPError(appErr.StatusCode(), appErr.Message, appErr.Fields...)
	case errors.Is(err, ErrDuplicateKey):
		return NewHTTPError(http.StatusBadRequest, MsgDuplicateEntry)
	}

	if production {
		return NewHTTPError(http.StatusInternalServerError, MsgInternalProduction)
	}
	msg := MsgInternal
	if err != nil {
		msg = err.Error()
	}
	return NewHTTPError(http.StatusInternalServerError, msg)
}
