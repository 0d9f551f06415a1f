package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete SuperTUI configuration.
type Config struct {
	Version       int                 `yaml:"version" json:"version"`
	Watch         WatchConfig         `yaml:"watch" json:"watch"`
	Workspace     WorkspaceConfig     `yaml:"workspace" json:"workspace"`
	Notifications NotificationsConfig `yaml:"notifications" json:"notifications"`
	Focus         FocusConfig         `yaml:"focus" json:"focus"`
	UI            UIConfig            `yaml:"ui" json:"ui"`
	Logging       LoggingConfig       `yaml:"logging" json:"logging"`
}

// WatchConfig configures the file watch pipeline.
// Duration fields are strings ("500ms", "2s") so they round-trip through YAML.
type WatchConfig struct {
	// Roots are the directories to watch. Empty means the project root
	// of the current directory.
	Roots []string `yaml:"roots" json:"roots"`

	// Pattern is the filename glob that changes must match (e.g. "*.cs").
	Pattern string `yaml:"pattern" json:"pattern"`

	// Debounce is the quiescence window: a batch is delivered once no new
	// change has arrived for this long.
	Debounce string `yaml:"debounce" json:"debounce"`

	// MaxWindow caps how long delivery can be deferred under a continuous
	// stream of changes. Empty or "0" means no cap: the window keeps
	// extending until the tree goes quiet.
	MaxWindow string `yaml:"max_window" json:"max_window"`

	// Recursive watches subdirectories of each root.
	Recursive bool `yaml:"recursive" json:"recursive"`
}

// WorkspaceConfig configures layout template and project storage.
type WorkspaceConfig struct {
	// TemplatesPath is the directory where layout templates are stored.
	// Defaults to ~/.supertui/templates
	TemplatesPath string `yaml:"templates_path" json:"templates_path"`
	// ProjectsPath is the projects registry file.
	// Defaults to ~/.supertui/projects.json
	ProjectsPath string `yaml:"projects_path" json:"projects_path"`
	// CacheSize is the number of templates kept in the in-memory cache.
	// Defaults to 32.
	CacheSize int `yaml:"cache_size" json:"cache_size"`
}

// NotificationsConfig configures toast notifications.
type NotificationsConfig struct {
	// Duration is how long a toast stays visible before auto-dismiss.
	Duration string `yaml:"duration" json:"duration"`
	// MaxActive is the maximum number of toasts shown at once.
	MaxActive int `yaml:"max_active" json:"max_active"`
}

// FocusConfig configures focus-transfer diagnostics.
type FocusConfig struct {
	// Verbose logs every focus transfer at debug level.
	Verbose bool `yaml:"verbose" json:"verbose"`
	// History is the number of recent transfers kept in memory.
	History int `yaml:"history" json:"history"`
}

// UIConfig configures terminal rendering.
type UIConfig struct {
	// Plain forces the line-based renderer even on a TTY.
	Plain bool `yaml:"plain" json:"plain"`
	// NoColor disables colored output.
	NoColor bool `yaml:"no_color" json:"no_color"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
}

// NewConfig creates a new Config with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		Watch: WatchConfig{
			Roots:     []string{},
			Pattern:   "*.cs",
			Debounce:  "500ms",
			MaxWindow: "", // No cap: wait for quiescence however long it takes
			Recursive: true,
		},
		Workspace: WorkspaceConfig{
			TemplatesPath: DefaultTemplatesPath(),
			ProjectsPath:  DefaultProjectsPath(),
			CacheSize:     32,
		},
		Notifications: NotificationsConfig{
			Duration:  "4s",
			MaxActive: 5,
		},
		Focus: FocusConfig{
			Verbose: false,
			History: 256,
		},
		UI: UIConfig{
			Plain:   false,
			NoColor: false,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// StateDir returns the application state directory (~/.supertui).
// Falls back to temp directory if home directory is unavailable.
func StateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".supertui")
	}
	return filepath.Join(home, ".supertui")
}

// DefaultTemplatesPath returns the default layout template directory.
func DefaultTemplatesPath() string {
	return filepath.Join(StateDir(), "templates")
}

// DefaultProjectsPath returns the default projects registry file.
func DefaultProjectsPath() string {
	return filepath.Join(StateDir(), "projects.json")
}

// GetUserConfigPath returns the path to the user/global configuration file,
// following the XDG Base Directory spec:
//   - $XDG_CONFIG_HOME/supertui/config.yaml (if XDG_CONFIG_HOME is set)
//   - ~/.config/supertui/config.yaml (default)
func GetUserConfigPath() string {
	return filepath.Join(userConfigBase(), "supertui", "config.yaml")
}

func userConfigBase() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return xdg
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config")
	}
	// Practically unreachable, but never hand back ""
	return filepath.Join(os.TempDir(), ".config")
}

// GetUserConfigDir returns the directory containing the user configuration.
func GetUserConfigDir() string {
	return filepath.Dir(GetUserConfigPath())
}

// UserConfigExists returns true if the user configuration file exists.
func UserConfigExists() bool {
	return fileExists(GetUserConfigPath())
}

// LoadUserConfig loads the user configuration file.
// Returns nil config and nil error if the file doesn't exist.
func LoadUserConfig() (*Config, error) {
	return loadUserConfig()
}

func loadUserConfig() (*Config, error) {
	path := GetUserConfigPath()
	if !fileExists(path) {
		// Running without a user config is normal
		return nil, nil
	}

	cfg := NewConfig()
	if err := cfg.loadYAML(path); err != nil {
		return nil, fmt.Errorf("failed to load user config from %s: %w", path, err)
	}
	return cfg, nil
}

// LoadRawUserConfig parses the user config file as written, with no defaults
// layered underneath, so fields added after the file was written stay at
// their zero value and MergeNewDefaults can spot them. version and
// watch.recursive have meaningful zero values; when the file omits those
// keys they are restored to their defaults rather than left looking like
// deliberate settings. Returns nil config and nil error if the file doesn't
// exist.
func LoadRawUserConfig() (*Config, error) {
	path := GetUserConfigPath()
	if !fileExists(path) {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	// Presence probe for the keys where an absent value and a zero value
	// mean different things.
	var probe struct {
		Version *int `yaml:"version"`
		Watch   struct {
			Recursive *bool `yaml:"recursive"`
		} `yaml:"watch"`
	}
	if err := yaml.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	defaults := NewConfig()
	if probe.Version == nil {
		cfg.Version = defaults.Version
	}
	if probe.Watch.Recursive == nil {
		cfg.Watch.Recursive = defaults.Watch.Recursive
	}
	return &cfg, nil
}

// Load loads configuration for the project in dir, applying sources in order
// of increasing precedence: hardcoded defaults, the user config
// (~/.config/supertui/config.yaml), the project config (.supertui.yaml in the
// project root), and finally SUPERTUI_* environment variables.
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	userCfg, err := loadUserConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	}
	if userCfg != nil {
		cfg.mergeWith(userCfg)
	}

	if err := cfg.loadFromFile(dir); err != nil {
		return nil, err
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// loadFromFile merges the project config into c, if one exists.
func (c *Config) loadFromFile(dir string) error {
	// .yaml wins over .yml when both are present
	for _, name := range []string{".supertui.yaml", ".supertui.yml"} {
		path := filepath.Join(dir, name)
		if fileExists(path) {
			return c.loadYAML(path)
		}
	}
	// No project config is fine
	return nil
}

// loadYAML reads a YAML file and merges its non-zero values into c.
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	c.mergeWith(&parsed)
	return nil
}

// mergeWith overlays the non-zero values of other onto c, section by section.
func (c *Config) mergeWith(other *Config) {
	if other.Version != 0 {
		c.Version = other.Version
	}
	c.Watch.merge(&other.Watch)
	c.Workspace.merge(&other.Workspace)
	c.Notifications.merge(&other.Notifications)
	c.Focus.merge(&other.Focus)
	c.UI.merge(&other.UI)
	c.Logging.merge(&other.Logging)
}

func (w *WatchConfig) merge(other *WatchConfig) {
	if len(other.Roots) > 0 {
		w.Roots = other.Roots
	}
	if other.Pattern != "" {
		w.Pattern = other.Pattern
	}
	if other.Debounce != "" {
		w.Debounce = other.Debounce
	}
	if other.MaxWindow != "" {
		w.MaxWindow = other.MaxWindow
	}
	// Recursive can be explicitly false, but yaml.Unmarshal also leaves it
	// false when the key is absent. Take it only when roots or pattern show
	// the section was really written out.
	if len(other.Roots) > 0 || other.Pattern != "" {
		w.Recursive = other.Recursive
	}
}

func (w *WorkspaceConfig) merge(other *WorkspaceConfig) {
	if other.TemplatesPath != "" {
		w.TemplatesPath = other.TemplatesPath
	}
	if other.ProjectsPath != "" {
		w.ProjectsPath = other.ProjectsPath
	}
	if other.CacheSize != 0 {
		w.CacheSize = other.CacheSize
	}
}

func (n *NotificationsConfig) merge(other *NotificationsConfig) {
	if other.Duration != "" {
		n.Duration = other.Duration
	}
	if other.MaxActive != 0 {
		n.MaxActive = other.MaxActive
	}
}

func (f *FocusConfig) merge(other *FocusConfig) {
	if other.Verbose {
		f.Verbose = true
	}
	if other.History != 0 {
		f.History = other.History
	}
}

func (u *UIConfig) merge(other *UIConfig) {
	if other.Plain {
		u.Plain = true
	}
	if other.NoColor {
		u.NoColor = true
	}
}

func (l *LoggingConfig) merge(other *LoggingConfig) {
	if other.Level != "" {
		l.Level = other.Level
	}
}

// applyEnvOverrides applies SUPERTUI_* environment variable overrides.
func (c *Config) applyEnvOverrides() {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setBool := func(key string, dst *bool) {
		if v := os.Getenv(key); v != "" {
			*dst = isTruthy(v)
		}
	}

	if v := os.Getenv("SUPERTUI_ROOTS"); v != "" {
		c.Watch.Roots = filepath.SplitList(v)
	}
	setString("SUPERTUI_PATTERN", &c.Watch.Pattern)
	setString("SUPERTUI_DEBOUNCE", &c.Watch.Debounce)
	setString("SUPERTUI_MAX_WINDOW", &c.Watch.MaxWindow)
	setString("SUPERTUI_TOAST_DURATION", &c.Notifications.Duration)
	setString("SUPERTUI_LOG_LEVEL", &c.Logging.Level)
	setBool("SUPERTUI_PLAIN", &c.UI.Plain)
	setBool("SUPERTUI_FOCUS_VERBOSE", &c.Focus.Verbose)

	// A broken cache size is ignored rather than failing startup
	if v := os.Getenv("SUPERTUI_CACHE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Workspace.CacheSize = n
		}
	}
}

// isTruthy reports whether an env var value means "enabled".
func isTruthy(v string) bool {
	return strings.ToLower(v) == "true" || v == "1"
}

// DebounceWindow parses the configured quiescence window.
func (c *Config) DebounceWindow() (time.Duration, error) {
	d, err := time.ParseDuration(c.Watch.Debounce)
	if err != nil {
		return 0, fmt.Errorf("invalid watch.debounce %q: %w", c.Watch.Debounce, err)
	}
	return d, nil
}

// MaxAggregationWindow parses the configured delivery cap.
// Returns 0 (no cap) when unset.
func (c *Config) MaxAggregationWindow() (time.Duration, error) {
	if c.Watch.MaxWindow == "" || c.Watch.MaxWindow == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Watch.MaxWindow)
	if err != nil {
		return 0, fmt.Errorf("invalid watch.max_window %q: %w", c.Watch.MaxWindow, err)
	}
	return d, nil
}

// ToastDuration parses the configured toast auto-dismiss duration.
func (c *Config) ToastDuration() (time.Duration, error) {
	d, err := time.ParseDuration(c.Notifications.Duration)
	if err != nil {
		return 0, fmt.Errorf("invalid notifications.duration %q: %w", c.Notifications.Duration, err)
	}
	return d, nil
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	if err := c.validateWatch(); err != nil {
		return err
	}
	if err := c.validateLimits(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateWatch() error {
	if strings.TrimSpace(c.Watch.Pattern) == "" {
		return fmt.Errorf("watch.pattern must not be empty")
	}
	if _, err := filepath.Match(c.Watch.Pattern, "probe"); err != nil {
		return fmt.Errorf("watch.pattern %q is not a valid glob: %w", c.Watch.Pattern, err)
	}

	debounce, err := c.DebounceWindow()
	if err != nil {
		return err
	}
	if debounce <= 0 {
		return fmt.Errorf("watch.debounce must be positive, got %s", c.Watch.Debounce)
	}

	// Zero means uncapped; otherwise the cap must cover at least one full
	// quiescence window
	maxWindow, err := c.MaxAggregationWindow()
	if err != nil {
		return err
	}
	if maxWindow != 0 && maxWindow < debounce {
		return fmt.Errorf("watch.max_window (%s) must be at least watch.debounce (%s)", c.Watch.MaxWindow, c.Watch.Debounce)
	}
	return nil
}

func (c *Config) validateLimits() error {
	if c.Workspace.CacheSize < 0 {
		return fmt.Errorf("workspace.cache_size must be non-negative, got %d", c.Workspace.CacheSize)
	}

	toast, err := c.ToastDuration()
	if err != nil {
		return err
	}
	if toast <= 0 {
		return fmt.Errorf("notifications.duration must be positive, got %s", c.Notifications.Duration)
	}
	if c.Notifications.MaxActive < 1 {
		return fmt.Errorf("notifications.max_active must be at least 1, got %d", c.Notifications.MaxActive)
	}

	if c.Focus.History < 0 {
		return fmt.Errorf("focus.history must be non-negative, got %d", c.Focus.History)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be 'debug', 'info', 'warn', or 'error', got %s", c.Logging.Level)
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// MergeNewDefaults fills in fields that were added after the config file was
// written, preserving every value the user already set. It returns the names
// of the fields it added.
func (c *Config) MergeNewDefaults() []string {
	defaults := NewConfig()
	var added []string

	fill := func(name string, missing bool, set func()) {
		if missing {
			set()
			added = append(added, name)
		}
	}

	fill("watch.pattern", c.Watch.Pattern == "", func() { c.Watch.Pattern = defaults.Watch.Pattern })
	fill("watch.debounce", c.Watch.Debounce == "", func() { c.Watch.Debounce = defaults.Watch.Debounce })
	fill("workspace.templates_path", c.Workspace.TemplatesPath == "", func() { c.Workspace.TemplatesPath = defaults.Workspace.TemplatesPath })
	fill("workspace.projects_path", c.Workspace.ProjectsPath == "", func() { c.Workspace.ProjectsPath = defaults.Workspace.ProjectsPath })
	fill("workspace.cache_size", c.Workspace.CacheSize == 0, func() { c.Workspace.CacheSize = defaults.Workspace.CacheSize })
	fill("notifications.duration", c.Notifications.Duration == "", func() { c.Notifications.Duration = defaults.Notifications.Duration })
	fill("notifications.max_active", c.Notifications.MaxActive == 0, func() { c.Notifications.MaxActive = defaults.Notifications.MaxActive })
	fill("focus.history", c.Focus.History == 0, func() { c.Focus.History = defaults.Focus.History })
	fill("logging.level", c.Logging.Level == "", func() { c.Logging.Level = defaults.Logging.Level })

	// MaxWindow and the booleans stay untouched: empty and false are valid
	// settings there, not gaps.

	return added
}

// fileExists checks if a file exists and is not a directory.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// dirExists checks if a directory exists.
func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
