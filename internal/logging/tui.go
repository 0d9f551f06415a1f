package logging

import (
	"log/slog"
)

// SetupTUIMode initializes logging for full-screen dashboard mode.
// While the dashboard owns the terminal:
//   - Logs go ONLY to file (never stdout/stderr)
//   - JSON format for structured logs
//
// Any writes to stderr while the alternate screen is active tear the
// display, so stderr output is disabled outright rather than filtered.
func SetupTUIMode(level string) (func(), error) {
	cfg := DefaultConfig()
	cfg.Level = level
	cfg.WriteToStderr = false

	logger, cleanup, err := Setup(cfg)
	if err != nil {
		return nil, err
	}

	slog.SetDefault(logger)

	slog.Info("dashboard mode logging initialized",
		slog.String("log_file", cfg.FilePath),
		slog.String("level", cfg.Level),
		slog.Bool("stderr_disabled", true))

	return cleanup, nil
}
