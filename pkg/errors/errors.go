package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is reports whether target carries the same code, so clones and wraps of a
// predefined error still match it with errors.Is.
func (e *Error) Is(target error) bool {
	if e == nil {
		return false
	}
	var t *Error
	if !errors.As(target, &t) || t == nil {
		return false
	}
	return e.Code == t.Code
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrNotFound           = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrForbidden          = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrConflict           = New("CONFLICT", http.StatusConflict, "conflict")
	ErrPreconditionFailed = New("PRECONDITION_FAILED", http.StatusPreconditionFailed, "precondition failed")
	ErrValidation         = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal           = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrCacheMiss          = New("CACHE_MISS", http.StatusNotFound, "cache miss")
)

// Schedule normalisation and catalog ingestion errors.
var (
	ErrMalformedScheduleString   = New("MALFORMED_SCHEDULE_STRING", http.StatusBadRequest, "meeting string must look like <days> <start> - <end>")
	ErrUnknownWeekdayCode        = New("UNKNOWN_WEEKDAY_CODE", http.StatusBadRequest, "unknown weekday code")
	ErrMalformedClockTime        = New("MALFORMED_CLOCK_TIME", http.StatusBadRequest, "clock time must look like HH:MMam or HH:MMpm")
	ErrInvertedTimeWindow        = New("INVERTED_TIME_WINDOW", http.StatusBadRequest, "start must be before end")
	ErrMissingClassTimeWindow    = New("MISSING_CLASS_TIME_WINDOW", http.StatusUnprocessableEntity, "classroom has no class time")
	ErrAmbiguousScheduleInput    = New("AMBIGUOUS_SCHEDULE_INPUT", http.StatusBadRequest, "one of due_datetime, due_date or start and end is required")
	ErrUniqueConstraintViolation = New("UNIQUE_CONSTRAINT_VIOLATION", http.StatusConflict, "natural key already exists")
	ErrInvalidBatchFormat        = New("INVALID_BATCH_FORMAT", http.StatusBadRequest, "batch must be a JSON array or object of course records")
	ErrClassroomMajorConflict    = New("CLASSROOM_MAJOR_CONFLICT", http.StatusConflict, "class code already belongs to another major")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}
