package logging

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"sort"
	"strings"
	"time"
)

// maxLineBytes bounds a single log line when scanning. Batch summaries can
// carry hundreds of paths in one entry, so the default scanner buffer is
// not enough.
const maxLineBytes = 1 << 20

// followPoll is how often Follow checks the file for appended lines.
const followPoll = 100 * time.Millisecond

// LogEntry is one parsed line of the JSON log file.
type LogEntry struct {
	Time    time.Time              `json:"time"`
	Level   string                 `json:"level"`
	Msg     string                 `json:"msg"`
	Attrs   map[string]interface{} `json:"-"` // structured fields beyond time/level/msg
	Raw     string                 `json:"-"` // the line as written
	IsValid bool                   `json:"-"` // false when the line is not JSON
}

// ViewerConfig selects which entries a Viewer shows and how.
type ViewerConfig struct {
	Level   string         // minimum level; empty shows everything
	Pattern *regexp.Regexp // shown entries must match, tested against the raw line
	NoColor bool
}

// Viewer reads, filters and renders entries from a log file.
type Viewer struct {
	config   ViewerConfig
	out      io.Writer
	minLevel slog.Level
	hasMin   bool
}

// NewViewer builds a viewer writing rendered entries to out.
func NewViewer(cfg ViewerConfig, out io.Writer) *Viewer {
	v := &Viewer{config: cfg, out: out}
	if cfg.Level != "" {
		v.minLevel = LevelFromString(cfg.Level)
		v.hasMin = true
	}
	return v
}

// Tail returns the entries among the last n lines of the file that pass
// the configured filters. Filters apply after the tail is taken, so a
// level filter narrows the window rather than reaching further back.
func (v *Viewer) Tail(path string, n int) ([]LogEntry, error) {
	if n <= 0 {
		return nil, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// Keep a ring of the trailing n lines while scanning so the whole
	// file never has to sit in memory.
	ring := make([]string, 0, n)
	oldest := 0
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, maxLineBytes), maxLineBytes)
	for scanner.Scan() {
		if len(ring) < n {
			ring = append(ring, scanner.Text())
			continue
		}
		ring[oldest] = scanner.Text()
		oldest = (oldest + 1) % n
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read log file: %w", err)
	}

	var entries []LogEntry
	for i := 0; i < len(ring); i++ {
		entry := v.decodeLine(ring[(oldest+i)%len(ring)])
		if v.matches(entry) {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

// Follow streams matching entries appended to the file into the channel
// until the context is cancelled. It starts at the current end of file;
// history is Tail's job.
func (v *Viewer) Follow(ctx context.Context, path string, entries chan<- LogEntry) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = file.Close() }()

	if _, err := file.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("failed to seek to end: %w", err)
	}

	reader := bufio.NewReader(file)
	var partial strings.Builder
	ticker := time.NewTicker(followPoll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if done := v.drainAppended(ctx, reader, &partial, entries); done {
				return nil
			}
		}
	}
}

// drainAppended reads every complete line currently available and sends
// the matching ones. A line still being written is held in partial until
// its newline arrives on a later poll, so writers that flush mid-line
// never produce a torn entry. Returns true once ctx is cancelled.
func (v *Viewer) drainAppended(ctx context.Context, reader *bufio.Reader, partial *strings.Builder, entries chan<- LogEntry) bool {
	for {
		chunk, err := reader.ReadString('\n')
		if err != nil {
			partial.WriteString(chunk)
			return false
		}

		partial.WriteString(strings.TrimSuffix(chunk, "\n"))
		line := partial.String()
		partial.Reset()
		if line == "" {
			continue
		}

		entry := v.decodeLine(line)
		if !v.matches(entry) {
			continue
		}
		select {
		case entries <- entry:
		case <-ctx.Done():
			return true
		}
	}
}

// FormatEntry renders one entry as a single display line. Lines that never
// parsed are shown exactly as found.
func (v *Viewer) FormatEntry(entry LogEntry) string {
	if !entry.IsValid {
		return entry.Raw
	}

	var b strings.Builder
	b.WriteString(entry.Time.Format("15:04:05.000"))
	b.WriteByte(' ')
	b.WriteString(v.levelTag(entry.Level))
	b.WriteByte(' ')
	b.WriteString(entry.Msg)

	// Attrs render in key order so repeated runs line up.
	keys := make([]string, 0, len(entry.Attrs))
	for k := range entry.Attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, entry.Attrs[k])
	}
	return b.String()
}

// Print renders entries to the viewer's output, one line each.
func (v *Viewer) Print(entries []LogEntry) {
	for _, entry := range entries {
		_, _ = fmt.Fprintln(v.out, v.FormatEntry(entry))
	}
}

// decodeLine parses a JSON log line. Non-JSON lines come back with
// IsValid false and only Raw set.
func (v *Viewer) decodeLine(line string) LogEntry {
	entry := LogEntry{Raw: line}

	var fields map[string]interface{}
	if err := json.Unmarshal([]byte(line), &fields); err != nil {
		return entry
	}
	entry.IsValid = true

	if ts, ok := fields["time"].(string); ok {
		if parsed, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			entry.Time = parsed
		}
	}
	if level, ok := fields["level"].(string); ok {
		entry.Level = level
	}
	if msg, ok := fields["msg"].(string); ok {
		entry.Msg = msg
	}

	// Whatever remains after the standard keys is the entry's attributes.
	delete(fields, "time")
	delete(fields, "level")
	delete(fields, "msg")
	if len(fields) > 0 {
		entry.Attrs = fields
	}
	return entry
}

// matches reports whether the entry passes the configured level and
// pattern filters. Unparseable lines only pass an empty filter set, but
// are never silently dropped by Print itself.
func (v *Viewer) matches(entry LogEntry) bool {
	if v.hasMin && LevelFromString(entry.Level) < v.minLevel {
		return false
	}
	if v.config.Pattern != nil && !v.config.Pattern.MatchString(entry.Raw) {
		return false
	}
	return true
}

// ansi escape prefixes per level name; reset closes each tag.
var levelColors = map[string]string{
	"debug":   "\033[90m",
	"info":    "\033[32m",
	"warn":    "\033[33m",
	"warning": "\033[33m",
	"error":   "\033[31m",
}

// levelTag renders a level name as a fixed-width, optionally colored tag.
// Names longer than the column ("warning") are cut to fit.
func (v *Viewer) levelTag(level string) string {
	tag := strings.ToUpper(level)
	if len(tag) > 5 {
		tag = tag[:5]
	}
	tag = fmt.Sprintf("%-5s", tag)

	if v.config.NoColor {
		return tag
	}
	if color, ok := levelColors[strings.ToLower(level)]; ok {
		return color + tag + "\033[0m"
	}
	return tag
}
