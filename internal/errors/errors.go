package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError carries everything SuperTUI needs to log, render and react to
// a failure: a stable code, its classification, an optional cause chain,
// and a user-facing suggestion.
type AppError struct {
	Code       string // stable identifier, e.g. ERR_201_ROOT_NOT_FOUND
	Message    string
	Category   Category
	Severity   Severity
	Details    map[string]string // extra context carried into logs and JSON
	Cause      error
	Retryable  bool
	Suggestion string // actionable next step shown to the user
}

func (e *AppError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap exposes the cause so errors.Is/As can walk the chain.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches AppErrors by code, letting errors.Is treat two errors with
// the same code as the same condition regardless of message.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && e.Code == t.Code
}

// WithDetail attaches one key-value pair of context. Chainable.
func (e *AppError) WithDetail(key, value string) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]string, 1)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion sets the user-facing next step. Chainable.
func (e *AppError) WithSuggestion(suggestion string) *AppError {
	e.Suggestion = suggestion
	return e
}

// New builds an AppError; category, severity and retryability all derive
// from the code.
func New(code string, message string, cause error) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Category:  categoryFromCode(code),
		Severity:  severityFromCode(code),
		Cause:     cause,
		Retryable: isRetryableCode(code),
	}
}

// Wrap lifts an existing error into an AppError, reusing its message.
// Wrapping nil yields nil.
func Wrap(code string, err error) *AppError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// ConfigError reports an invalid configuration.
func ConfigError(message string, cause error) *AppError {
	return New(ErrCodeConfigInvalid, message, cause)
}

// WatchError reports a failed watch registration.
func WatchError(message string, cause error) *AppError {
	return New(ErrCodeWatchCreateFailed, message, cause)
}

// ValidationError reports rejected input.
func ValidationError(message string, cause error) *AppError {
	return New(ErrCodeInvalidInput, message, cause)
}

// InternalError reports an unexpected failure.
func InternalError(message string, cause error) *AppError {
	return New(ErrCodeInternal, message, cause)
}

// asApp finds the first AppError in err's chain, so errors wrapped with
// fmt.Errorf("...: %w", err) keep their code and suggestion.
func asApp(err error) *AppError {
	var ae *AppError
	if stderrors.As(err, &ae) {
		return ae
	}
	return nil
}

// IsRetryable reports whether err's chain carries a retryable AppError.
func IsRetryable(err error) bool {
	ae := asApp(err)
	return ae != nil && ae.Retryable
}

// IsFatal reports whether err's chain carries a fatal AppError.
func IsFatal(err error) bool {
	ae := asApp(err)
	return ae != nil && ae.Severity == SeverityFatal
}

// GetCode returns the code of the first AppError in err's chain, or ""
// for plain errors.
func GetCode(err error) string {
	if ae := asApp(err); ae != nil {
		return ae.Code
	}
	return ""
}

// GetCategory returns the category of the first AppError in err's chain,
// or "" for plain errors.
func GetCategory(err error) Category {
	if ae := asApp(err); ae != nil {
		return ae.Category
	}
	return ""
}
