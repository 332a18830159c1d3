package errors

import (
	stderrors "errors"
	"fmt"
	"os"
	"strings"

	"github.com/r91781585-tech/quiet-hours-scheduler/internal/logger"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/models"
)

type Code string

const (
	CodeValidation Code = "VALIDATION_ERROR"
	CodeConflict   Code = "SCHEDULING_CONFLICT"
	CodeRecurrence Code = "RECURRENCE_ERROR"
	CodeIO         Code = "IO_ERROR"
	CodeNotFound   Code = "NOT_FOUND"
)

// SchedulingError is the error type returned by the scheduling engine and stores.
type SchedulingError struct {
	Code    Code
	Message string
	// Conflicts holds the sessions that blocked a placement, if any.
	Conflicts []models.Session
	cause     error
}

func (e *SchedulingError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *SchedulingError) Unwrap() error {
	return e.cause
}

// Is matches any SchedulingError carrying the same code.
func (e *SchedulingError) Is(target error) bool {
	t, ok := target.(*SchedulingError)
	if !ok {
		return false
	}
	return t.Code == e.Code && t.Message == ""
}

func Validation(format string, args ...interface{}) *SchedulingError {
	return &SchedulingError{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

func Conflict(reason string, conflicts []models.Session) *SchedulingError {
	return &SchedulingError{Code: CodeConflict, Message: reason, Conflicts: conflicts}
}

func Recurrence(format string, args ...interface{}) *SchedulingError {
	return &SchedulingError{Code: CodeRecurrence, Message: fmt.Sprintf(format, args...)}
}

// IO wraps a storage failure. A nil cause yields nil.
func IO(cause error, op string) error {
	if cause == nil {
		return nil
	}
	var se *SchedulingError
	if stderrors.As(cause, &se) {
		return cause
	}
	return &SchedulingError{Code: CodeIO, Message: op, cause: cause}
}

func NotFound(kind, id string) *SchedulingError {
	return &SchedulingError{Code: CodeNotFound, Message: fmt.Sprintf("%s not found: %s", kind, id)}
}

// Sentinels for use with errors.Is.
var (
	ErrValidation = &SchedulingError{Code: CodeValidation}
	ErrConflict   = &SchedulingError{Code: CodeConflict}
	ErrRecurrence = &SchedulingError{Code: CodeRecurrence}
	ErrIO         = &SchedulingError{Code: CodeIO}
	ErrNotFound   = &SchedulingError{Code: CodeNotFound}
)

// IsCode reports whether err carries a SchedulingError with the given code.
func IsCode(err error, code Code) bool {
	var se *SchedulingError
	if stderrors.As(err, &se) {
		return se.Code == code
	}
	return false
}

// CodeOf returns the code of err, or "" when err is not a SchedulingError.
func CodeOf(err error) Code {
	var se *SchedulingError
	if stderrors.As(err, &se) {
		return se.Code
	}
	return ""
}

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	var se *SchedulingError
	if stderrors.As(err, &se) && len(se.Conflicts) > 0 {
		var b strings.Builder
		fmt.Fprintf(&b, "Error: %v", err)
		for _, c := range se.Conflicts {
			fmt.Fprintf(&b, "\n  conflicts with %q on %s at %s (%d min)", c.Title, c.Date, c.Time, c.DurationMin)
		}
		return b.String()
	}
	return fmt.Sprintf("Error: %v", err)
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err, "code", CodeOf(err))
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}

// Fatalf logs and formats an error message, then exits the program with exit code 1
func Fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logger.Error("Command execution failed", "error", msg)
	fmt.Fprintf(os.Stderr, "%s\n", Formatf(format, args...))
	os.Exit(1)
}
