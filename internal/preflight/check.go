package preflight

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tteejj/supertui/internal/config"
)

// CheckStatus is the outcome of a single preflight check.
type CheckStatus int

const (
	StatusPass CheckStatus = iota
	StatusWarn
	StatusFail
)

func (s CheckStatus) String() string {
	switch s {
	case StatusPass:
		return "PASS"
	case StatusWarn:
		return "WARN"
	case StatusFail:
		return "FAIL"
	default:
		return "UNKNOWN"
	}
}

// CheckResult holds one check's outcome. Required marks checks the
// application cannot run without.
type CheckResult struct {
	Name     string      `json:"name"`
	Status   CheckStatus `json:"status"`
	Message  string      `json:"message"`
	Details  string      `json:"details,omitempty"`
	Required bool        `json:"required"`
}

// IsCritical reports a failed check the application cannot run without.
func (r CheckResult) IsCritical() bool {
	return r.Required && r.Status == StatusFail
}

// Checker runs the startup environment checks behind `supertui doctor`
// and the watch preflight.
type Checker struct {
	verbose bool
	output  io.Writer
}

// Option configures a Checker.
type Option func(*Checker)

// WithVerbose enables verbose output.
func WithVerbose(verbose bool) Option {
	return func(c *Checker) { c.verbose = verbose }
}

// WithOutput sets the output writer.
func WithOutput(w io.Writer) Option {
	return func(c *Checker) { c.output = w }
}

// New creates a Checker writing to stdout unless overridden.
func New(opts ...Option) *Checker {
	c := &Checker{output: os.Stdout}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RunAll runs every check in dependency order: the state directory first
// (everything else writes there), then configuration, then the checks
// that read the loaded config.
func (c *Checker) RunAll(_ context.Context, projectRoot string) []CheckResult {
	// A broken config still gets the remaining checks, run on defaults.
	cfg, err := config.Load(projectRoot)
	if err != nil || cfg == nil {
		cfg = config.NewConfig()
	}

	return []CheckResult{
		c.CheckStateDir(),
		c.CheckConfig(projectRoot),
		c.CheckTemplatesDir(cfg.Workspace.TemplatesPath),
		c.CheckWatchRoots(projectRoot, cfg.Watch.Roots),
		c.CheckDiskSpace(config.StateDir()),
		c.CheckFileDescriptors(),
		c.CheckInotifyLimits(),
	}
}

// HasCriticalFailures reports whether any required check failed.
func (c *Checker) HasCriticalFailures(results []CheckResult) bool {
	for _, r := range results {
		if r.IsCritical() {
			return true
		}
	}
	return false
}

// SummaryStatus condenses the results to ready, ready_with_warnings or
// failed. Optional failures count as warnings.
func (c *Checker) SummaryStatus(results []CheckResult) string {
	summary := "ready"
	for _, r := range results {
		if r.IsCritical() {
			return "failed"
		}
		if r.Status == StatusWarn || r.Status == StatusFail {
			summary = "ready_with_warnings"
		}
	}
	return summary
}

// PrintResults renders the human-readable report.
func (c *Checker) PrintResults(results []CheckResult) {
	out := c.output
	_, _ = fmt.Fprintf(out, "SuperTUI System Check\n=====================\n\n")

	var warnings, errors []string
	for _, r := range results {
		_, _ = fmt.Fprintf(out, "[%s] %s: %s\n", r.Status, r.Name, r.Message)
		if c.verbose && r.Details != "" {
			_, _ = fmt.Fprintf(out, "      %s\n", r.Details)
		}

		issue := r.Name + ": " + r.Message
		switch {
		case r.IsCritical():
			errors = append(errors, issue)
		case r.Status == StatusWarn:
			warnings = append(warnings, issue)
		}
	}

	_, _ = fmt.Fprintf(out, "\nStatus: %s\n", strings.ToUpper(c.SummaryStatus(results)))
	c.printIssues("error", errors)
	c.printIssues("warning", warnings)
}

func (c *Checker) printIssues(kind string, issues []string) {
	if len(issues) == 0 {
		return
	}
	_, _ = fmt.Fprintf(c.output, "\n%d %s(s):\n", len(issues), kind)
	for _, issue := range issues {
		_, _ = fmt.Fprintf(c.output, "  - %s\n", issue)
	}
}

// CheckStateDir checks that the application state directory can be
// created and written to. Templates, the project registry, and logs all
// live there.
func (c *Checker) CheckStateDir() CheckResult {
	return c.checkWritableDir("state_dir", config.StateDir())
}

// CheckTemplatesDir checks that the layout template directory is writable.
func (c *Checker) CheckTemplatesDir(path string) CheckResult {
	return c.checkWritableDir("templates_dir", path)
}

// checkWritableDir creates the directory if needed and probes
// writability with a throwaway file.
func (c *Checker) checkWritableDir(name, path string) CheckResult {
	fail := func(msg string) CheckResult {
		return CheckResult{Name: name, Required: true, Status: StatusFail, Message: msg}
	}

	if err := os.MkdirAll(path, 0o755); err != nil {
		return fail(fmt.Sprintf("cannot create %s: %v", path, err))
	}

	probe := filepath.Join(path, ".supertui-preflight-test")
	f, err := os.Create(probe)
	if err != nil {
		return fail(fmt.Sprintf("permission denied: %v", err))
	}
	_ = f.Close()
	_ = os.Remove(probe)

	return CheckResult{Name: name, Required: true, Status: StatusPass, Message: path}
}

// CheckConfig checks that the effective configuration parses and
// validates.
func (c *Checker) CheckConfig(projectRoot string) CheckResult {
	cfg, err := config.Load(projectRoot)
	if err != nil {
		return CheckResult{
			Name:     "config",
			Required: true,
			Status:   StatusFail,
			Message:  err.Error(),
			Details:  "Fix or remove the offending config file and re-run",
		}
	}

	return CheckResult{
		Name:     "config",
		Required: true,
		Status:   StatusPass,
		Message:  fmt.Sprintf("pattern %q, debounce %s", cfg.Watch.Pattern, cfg.Watch.Debounce),
	}
}

// CheckWatchRoots checks that the configured watch roots exist. Missing
// roots only warn: they are skipped when watching starts.
func (c *Checker) CheckWatchRoots(projectRoot string, roots []string) CheckResult {
	if len(roots) == 0 {
		return CheckResult{
			Name:    "watch_roots",
			Status:  StatusPass,
			Message: fmt.Sprintf("none configured, project root %s is watched", projectRoot),
		}
	}

	var missing []string
	for _, root := range roots {
		path := root
		if !filepath.IsAbs(path) {
			path = filepath.Join(projectRoot, root)
		}
		if info, err := os.Stat(path); err != nil || !info.IsDir() {
			missing = append(missing, root)
		}
	}

	if len(missing) > 0 {
		return CheckResult{
			Name:   "watch_roots",
			Status: StatusWarn,
			Message: fmt.Sprintf("%d of %d root(s) missing: %s",
				len(missing), len(roots), strings.Join(missing, ", ")),
			Details: "Missing roots are skipped when watching starts",
		}
	}

	return CheckResult{
		Name:    "watch_roots",
		Status:  StatusPass,
		Message: fmt.Sprintf("%d root(s) found", len(roots)),
	}
}
