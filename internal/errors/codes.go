// Package errors provides structured error handling for SuperTUI.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: configuration errors
//   - 2XX: IO errors (file, watch, disk, state storage)
//   - 4XX: validation errors
//   - 5XX: internal errors
package errors

import "strings"

// Category classifies an error by subsystem.
type Category string

const (
	CategoryConfig     Category = "CONFIG"
	CategoryIO         Category = "IO"
	CategoryValidation Category = "VALIDATION"
	CategoryInternal   Category = "INTERNAL"
)

// Severity says how a caller should react to an error.
type Severity string

const (
	// SeverityFatal aborts the current operation.
	SeverityFatal Severity = "FATAL"
	// SeverityError means the operation failed; the program continues.
	SeverityError Severity = "ERROR"
	// SeverityWarning marks degraded but continuing operation.
	SeverityWarning Severity = "WARNING"
	// SeverityInfo is informational only.
	SeverityInfo Severity = "INFO"
)

// Config errors (1XX).
const (
	ErrCodeConfigNotFound   = "ERR_101_CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid    = "ERR_102_CONFIG_INVALID"
	ErrCodeConfigPermission = "ERR_103_CONFIG_PERMISSION"
)

// IO errors (2XX).
const (
	ErrCodeRootNotFound        = "ERR_201_ROOT_NOT_FOUND"
	ErrCodeWatchCreateFailed   = "ERR_202_WATCH_CREATE_FAILED"
	ErrCodeTemplateNotFound    = "ERR_203_TEMPLATE_NOT_FOUND"
	ErrCodeTemplateCorrupt     = "ERR_204_TEMPLATE_CORRUPT"
	ErrCodeStoreLocked         = "ERR_205_STORE_LOCKED"
	ErrCodeStateDirUnavailable = "ERR_206_STATE_DIR_UNAVAILABLE"
	ErrCodeProjectNotFound     = "ERR_207_PROJECT_NOT_FOUND"
	ErrCodeRegistryCorrupt     = "ERR_208_REGISTRY_CORRUPT"
)

// Validation errors (4XX).
const (
	ErrCodeInvalidInput   = "ERR_401_INVALID_INPUT"
	ErrCodeInvalidName    = "ERR_402_INVALID_NAME"
	ErrCodeInvalidLayout  = "ERR_403_INVALID_LAYOUT"
	ErrCodeInvalidPattern = "ERR_404_INVALID_PATTERN"
)

// Internal errors (5XX).
const (
	ErrCodeInternal        = "ERR_501_INTERNAL"
	ErrCodeSubscriberPanic = "ERR_502_SUBSCRIBER_PANIC"
	ErrCodeWatcherClosed   = "ERR_503_WATCHER_CLOSED"
)

// fatalCodes lists codes no operation should try to survive.
var fatalCodes = map[string]bool{
	ErrCodeStateDirUnavailable: true,
}

// retryableCodes lists codes where backing off and retrying can work.
var retryableCodes = map[string]bool{
	ErrCodeStoreLocked: true,
}

// categoryFromCode reads the class digit out of ERR_XXX_*. Codes that do
// not follow the pattern land in the internal bucket.
func categoryFromCode(code string) Category {
	rest, ok := strings.CutPrefix(code, "ERR_")
	if !ok || rest == "" {
		return CategoryInternal
	}
	switch rest[0] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryIO
	case '4':
		return CategoryValidation
	default:
		return CategoryInternal
	}
}

// severityFromCode derives the reaction a code demands: fatal codes
// abort, retryable ones only warn, the rest are plain errors.
func severityFromCode(code string) Severity {
	switch {
	case fatalCodes[code]:
		return SeverityFatal
	case retryableCodes[code]:
		return SeverityWarning
	default:
		return SeverityError
	}
}

func isRetryableCode(code string) bool {
	return retryableCodes[code]
}
