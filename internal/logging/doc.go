// Package logging provides opt-in file-based logging with rotation for SuperTUI.
// When the --debug flag is set, comprehensive logs are written to ~/.supertui/logs/
// for debugging and troubleshooting.
//
// By default (without --debug), logging is minimal and goes to stderr only.
// While the full-screen dashboard owns the terminal, logs go to file only so
// they never corrupt the display.
package logging
