// Package output formats the status lines CLI commands print while they
// work.
package output

import (
	"fmt"
	"io"
)

// Writer prints icon-prefixed status lines. Write failures are dropped;
// a broken console must not turn a finished command into an error.
type Writer struct {
	out io.Writer
}

// New wraps out in a status-line writer.
func New(out io.Writer) *Writer {
	return &Writer{out: out}
}

// Status prints one line behind the given icon. An empty icon indents
// the line so it stays aligned under iconed ones.
func (w *Writer) Status(icon, msg string) {
	prefix := "  "
	if icon != "" {
		prefix = icon
	}
	_, _ = fmt.Fprintf(w.out, "%s %s\n", prefix, msg)
}

// Statusf is Status with printf formatting.
func (w *Writer) Statusf(icon, format string, args ...any) {
	w.Status(icon, fmt.Sprintf(format, args...))
}

// Success prints msg behind a checkmark.
func (w *Writer) Success(msg string) {
	w.Status("✅", msg)
}

// Warning prints msg behind a warning sign.
func (w *Writer) Warning(msg string) {
	w.Status("⚠️ ", msg)
}

// Warningf is Warning with printf formatting.
func (w *Writer) Warningf(format string, args ...any) {
	w.Status("⚠️ ", fmt.Sprintf(format, args...))
}

// Newline prints an empty line.
func (w *Writer) Newline() {
	_, _ = fmt.Fprintln(w.out)
}
