package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config controls where log output goes and how much of it there is.
type Config struct {
	// Level is the minimum level written (debug, info, warn, error).
	Level string
	// FilePath is the log file location.
	FilePath string
	// MaxSizeMB caps the file size before it is rotated aside.
	MaxSizeMB int
	// MaxFiles is how many rotated files are kept before the oldest is dropped.
	MaxFiles int
	// WriteToStderr mirrors log output to stderr. Must stay off while the
	// watch dashboard owns the terminal.
	WriteToStderr bool
}

// DefaultConfig returns the standard file-logging setup: info level,
// 10MB rotation, five rotated files kept, mirrored to stderr.
func DefaultConfig() Config {
	return Config{
		Level:         "info",
		FilePath:      DefaultLogPath(),
		MaxSizeMB:     10,
		MaxFiles:      5,
		WriteToStderr: true,
	}
}

// DebugConfig is DefaultConfig at debug level, used by the --debug flag.
func DebugConfig() Config {
	cfg := DefaultConfig()
	cfg.Level = "debug"
	return cfg
}

// Setup opens the rotating log file and builds a JSON slog logger on top
// of it. The returned cleanup flushes and closes the file; call it once
// the command is done logging.
func Setup(cfg Config) (*slog.Logger, func(), error) {
	writer, err := NewRotatingWriter(cfg.FilePath, cfg.MaxSizeMB, cfg.MaxFiles)
	if err != nil {
		return nil, nil, err
	}

	var sink io.Writer = writer
	if cfg.WriteToStderr {
		sink = io.MultiWriter(writer, os.Stderr)
	}
	logger := slog.New(slog.NewJSONHandler(sink, &slog.HandlerOptions{
		Level: LevelFromString(cfg.Level),
	}))

	cleanup := func() {
		_ = writer.Sync()
		_ = writer.Close()
	}
	return logger, cleanup, nil
}

// levelNames maps accepted level spellings from config and CLI flags onto
// slog's scale.
var levelNames = map[string]slog.Level{
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}

// LevelFromString maps a level name onto slog's scale. Unknown names fall
// back to info.
func LevelFromString(level string) slog.Level {
	if l, ok := levelNames[strings.ToLower(level)]; ok {
		return l
	}
	return slog.LevelInfo
}
