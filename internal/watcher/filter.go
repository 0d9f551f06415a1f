package watcher

import (
	"path/filepath"
	"strings"
)

// scratchExtensions are IDE per-user state files that churn constantly
// while a project is open in an editor.
var scratchExtensions = []string{".suo", ".user"}

// ShouldIgnore reports whether a raw filesystem event path is noise that
// must never reach the aggregator: dotfiles, editor temp and backup files,
// IDE scratch state, and build output trees.
//
// Pure string inspection with no I/O, so it is safe to call from the
// event-delivery goroutines before any shared state is touched. Rules,
// any match discards the event:
//  1. a path segment starts with ".", ends with "~", or contains ".tmp"
//  2. the file name ends with an IDE scratch extension (.suo, .user)
//  3. a "bin" or "obj" segment appears at any depth, on either separator
func ShouldIgnore(path string) bool {
	if path == "" {
		return false
	}

	for _, seg := range splitSegments(path) {
		if strings.HasPrefix(seg, ".") {
			return true
		}
		if strings.HasSuffix(seg, "~") {
			return true
		}
		if strings.Contains(seg, ".tmp") {
			return true
		}
		if seg == "bin" || seg == "obj" {
			return true
		}
	}

	for _, ext := range scratchExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}

	return false
}

// splitSegments splits a path on both separator conventions so that paths
// recorded on one platform filter identically on another.
func splitSegments(path string) []string {
	return strings.FieldsFunc(path, func(r rune) bool {
		return r == '/' || r == '\\'
	})
}

// matchesPattern reports whether a file name satisfies the subscription
// glob. An empty pattern accepts everything; a malformed pattern matches
// nothing.
func matchesPattern(name, pattern string) bool {
	if pattern == "" {
		return true
	}
	ok, err := filepath.Match(pattern, name)
	return err == nil && ok
}
