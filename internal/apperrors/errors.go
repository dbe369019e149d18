// Package apperrors provides typed error handling for the mixdown API.
// It uses struct-based errors with separate user-safe and internal messages.
package apperrors

import "fmt"

// Code categorizes errors for consistent handling across the application.
type Code int

// Error codes for categorizing application errors.
const (
	// CodeUnknown indicates an unspecified error type
	CodeUnknown Code = iota
	// CodeNotFound indicates a requested resource does not exist
	CodeNotFound
	// CodeDuplicate indicates a unique constraint violation
	CodeDuplicate
	// CodeInvalidInput indicates malformed or invalid input
	CodeInvalidInput
	// CodeValidation indicates input failed validation rules
	CodeValidation
	// CodeConflict indicates the resource is not in a state that allows the operation
	CodeConflict
	// CodeDecode indicates audio that could not be fetched or decoded
	CodeDecode
	// CodeMixing indicates invalid mixing inputs or a failed render
	CodeMixing
	// CodeConcatenation indicates chunks that could not be joined
	CodeConcatenation
	// CodeDatabase indicates a database operation failure
	CodeDatabase
	// CodeStorage indicates a failure reading or writing stored audio
	CodeStorage
	// CodeUpstream indicates a failure of an external service such as speech synthesis
	CodeUpstream
	// CodeUnavailable indicates an optional feature that is not configured
	CodeUnavailable
)

// Error represents a domain error with separate user-safe and internal messages.
// The Message field is always safe to expose to clients.
// The Internal field contains debugging details and should only be logged.
type Error struct {
	Code     Code   // Error category for handler mapping
	Message  string // User-safe message (always exposable)
	Internal string // Internal details (for logging only)
	Field    string // Optional: which field caused the error
	Err      error  // Wrapped underlying error
}

// Sentinel errors for errors.Is matching. Matching compares codes only.
var (
	ErrNotFound      = &Error{Code: CodeNotFound, Message: "resource not found"}
	ErrDuplicate     = &Error{Code: CodeDuplicate, Message: "resource already exists"}
	ErrDataTooLong   = &Error{Code: CodeValidation, Message: "value is too long"}
	ErrConflict      = &Error{Code: CodeConflict, Message: "resource is in the wrong state"}
	ErrDatabaseError = &Error{Code: CodeDatabase, Message: "database error"}
)

// Error implements the error interface.
// Returns the user-safe message.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithInternal adds internal debugging details to the error.
func (e *Error) WithInternal(format string, args ...any) *Error {
	e.Internal = fmt.Sprintf(format, args...)
	return e
}

// WithField adds field information to the error.
func (e *Error) WithField(field string) *Error {
	e.Field = field
	return e
}

// Wrap wraps an underlying error.
func (e *Error) Wrap(err error) *Error {
	e.Err = err
	return e
}

// String returns the string representation of the error code.
func (c Code) String() string {
	switch c {
	case CodeUnknown:
		return "unknown"
	case CodeNotFound:
		return "not_found"
	case CodeDuplicate:
		return "duplicate"
	case CodeInvalidInput:
		return "invalid_input"
	case CodeValidation:
		return "validation"
	case CodeConflict:
		return "conflict"
	case CodeDecode:
		return "decode"
	case CodeMixing:
		return "mixing"
	case CodeConcatenation:
		return "concatenation"
	case CodeDatabase:
		return "database"
	case CodeStorage:
		return "storage"
	case CodeUpstream:
		return "upstream"
	case CodeUnavailable:
		return "unavailable"
	default:
		return fmt.Sprintf("unknown_code_%d", c)
	}
}

// Is reports whether target matches this error's code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// NotFound creates a new not found error with the given message.
func NotFound(message string) *Error {
	return &Error{
		Code:    CodeNotFound,
		Message: message,
	}
}

// Duplicate creates a new duplicate error with the given message.
func Duplicate(message string) *Error {
	return &Error{
		Code:    CodeDuplicate,
		Message: message,
	}
}

// Database creates a new database error with the given message.
func Database(message string) *Error {
	return &Error{
		Code:    CodeDatabase,
		Message: message,
	}
}

// InvalidInput creates a new invalid input error with the given message.
func InvalidInput(message string) *Error {
	return &Error{
		Code:    CodeInvalidInput,
		Message: message,
	}
}

// Conflict creates a new conflict error with the given message.
func Conflict(message string) *Error {
	return &Error{
		Code:    CodeConflict,
		Message: message,
	}
}

// Storage creates a new storage error with the given message.
func Storage(message string) *Error {
	return &Error{
		Code:    CodeStorage,
		Message: message,
	}
}

// Upstream creates a new upstream service error with the given message.
func Upstream(message string) *Error {
	return &Error{
		Code:    CodeUpstream,
		Message: message,
	}
}

// Unavailable creates an error for a feature that is not configured.
func Unavailable(message string) *Error {
	return &Error{
		Code:    CodeUnavailable,
		Message: message,
	}
}
