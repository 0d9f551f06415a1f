package errors

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
)

// FormatForCLI renders err for terminal output. Structured errors show
// their suggestion and code; anything else prints as a single line. With
// debug set, the underlying cause is included.
func FormatForCLI(err error, debug bool) string {
	if err == nil {
		return ""
	}

	ae := asApp(err)
	if ae == nil {
		return fmt.Sprintf("Error: %s\n", err.Error())
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Error: %s\n", ae.Message)
	if ae.Suggestion != "" {
		fmt.Fprintf(&sb, "  Hint: %s\n", ae.Suggestion)
	}
	fmt.Fprintf(&sb, "  Code: %s\n", ae.Code)
	if debug && ae.Cause != nil {
		fmt.Fprintf(&sb, "  Cause: %s\n", ae.Cause)
	}
	return sb.String()
}

// jsonError is the JSON representation of an error.
type jsonError struct {
	Code       string            `json:"code"`
	Message    string            `json:"message"`
	Category   string            `json:"category"`
	Severity   string            `json:"severity"`
	Details    map[string]string `json:"details,omitempty"`
	Suggestion string            `json:"suggestion,omitempty"`
	Cause      string            `json:"cause,omitempty"`
	Retryable  bool              `json:"retryable"`
}

// FormatJSON returns a JSON representation of the error for machine
// consumers. Errors without a code in their chain are reported as internal.
func FormatJSON(err error) ([]byte, error) {
	if err == nil {
		return json.Marshal(nil)
	}

	ae := asApp(err)
	if ae == nil {
		ae = Wrap(ErrCodeInternal, err)
	}

	cause := ""
	if ae.Cause != nil {
		cause = ae.Cause.Error()
	}
	return json.Marshal(jsonError{
		Code:       ae.Code,
		Message:    ae.Message,
		Category:   string(ae.Category),
		Severity:   string(ae.Severity),
		Details:    ae.Details,
		Suggestion: ae.Suggestion,
		Cause:      cause,
		Retryable:  ae.Retryable,
	})
}

// LogAttrs returns slog attributes describing err, for call sites like
// slog.Warn("watch error", LogAttrs(err)...). Plain errors produce a
// single "error" attribute.
func LogAttrs(err error) []any {
	if err == nil {
		return nil
	}

	ae := asApp(err)
	if ae == nil {
		return []any{slog.String("error", err.Error())}
	}

	attrs := []any{
		slog.String("error_code", ae.Code),
		slog.String("message", ae.Message),
		slog.String("category", string(ae.Category)),
		slog.String("severity", string(ae.Severity)),
		slog.Bool("retryable", ae.Retryable),
	}
	if ae.Cause != nil {
		attrs = append(attrs, slog.String("cause", ae.Cause.Error()))
	}
	if ae.Suggestion != "" {
		attrs = append(attrs, slog.String("suggestion", ae.Suggestion))
	}
	for k, v := range ae.Details {
		attrs = append(attrs, slog.String("detail_"+k, v))
	}
	return attrs
}
