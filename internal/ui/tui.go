package ui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// TUIRenderer drives the live watch dashboard on a bubbletea program.
type TUIRenderer struct {
	mu      sync.Mutex
	cfg     Config
	program *tea.Program
	model   *watchModel
	tracker *SessionTracker
	ctx     context.Context
	cancel  context.CancelFunc
	started bool
	done    chan struct{}
}

var _ Renderer = (*TUIRenderer)(nil)

// NewTUIRenderer creates the dashboard renderer. It refuses non-TTY
// outputs; callers fall back to the plain renderer.
func NewTUIRenderer(cfg Config) (*TUIRenderer, error) {
	if !IsTTY(cfg.Output) {
		return nil, fmt.Errorf("output is not a TTY")
	}

	tracker := NewSessionTracker()
	return &TUIRenderer{
		cfg:     cfg,
		tracker: tracker,
		model:   newWatchModel(tracker, cfg),
		done:    make(chan struct{}),
	}, nil
}

// Start implements Renderer. The bubbletea program runs on its own
// goroutine until Stop or session completion.
func (r *TUIRenderer) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return nil
	}
	r.ctx, r.cancel = context.WithCancel(ctx)

	// Alt screen keeps redraws from scrolling the user's terminal.
	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if f, ok := r.cfg.Output.(*os.File); ok {
		opts = append(opts, tea.WithOutput(f))
	}
	r.program = tea.NewProgram(r.model, opts...)
	r.started = true

	go func() {
		defer close(r.done)
		_, _ = r.program.Run()
	}()
	return nil
}

// dispatch records the event and forwards it to the running program.
func (r *TUIRenderer) dispatch(record func(), msg tea.Msg) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if record != nil {
		record()
	}
	if r.program != nil {
		r.program.Send(msg)
	}
}

// BatchFlushed implements Renderer.
func (r *TUIRenderer) BatchFlushed(event BatchEvent) {
	r.dispatch(func() { r.tracker.RecordBatch(event) }, batchMsg(event))
}

// ToastEvent implements Renderer.
func (r *TUIRenderer) ToastEvent(event ToastNotice) {
	r.dispatch(func() { r.tracker.RecordToast(event) }, toastMsg(event))
}

// UpdateStats implements Renderer.
func (r *TUIRenderer) UpdateStats(stats WatchStats) {
	r.dispatch(func() { r.tracker.SetStats(stats) }, statsMsg(stats))
}

// Complete implements Renderer.
func (r *TUIRenderer) Complete(summary SessionSummary) {
	r.dispatch(nil, summaryMsg(summary))
}

// Stop implements Renderer. Quit can hang when the terminal is already
// gone, so shutdown never blocks for more than two seconds.
func (r *TUIRenderer) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cancel != nil {
		r.cancel()
	}
	if r.program != nil {
		r.program.Quit()
		select {
		case <-r.done:
		case <-time.After(2 * time.Second):
		}
	}
	return nil
}

// bubbletea message types
type batchMsg BatchEvent
type toastMsg ToastNotice
type statsMsg WatchStats
type summaryMsg SessionSummary
type tickMsg time.Time

// watchModel is the bubbletea model behind the dashboard.
type watchModel struct {
	tracker   *SessionTracker
	width     int
	height    int
	quitting  bool
	complete  bool
	summary   SessionSummary
	spinner   spinner.Model
	styles    Styles
	rootLabel string
	toasts    []ToastNotice // active toasts, oldest first
}

// spinnerFor maps a config style name to a bubbles spinner.
func spinnerFor(style string) spinner.Spinner {
	switch style {
	case "line":
		return spinner.Line
	case "minidot":
		return spinner.MiniDot
	case "jump":
		return spinner.Jump
	default:
		return spinner.Dot
	}
}

func newWatchModel(tracker *SessionTracker, cfg Config) *watchModel {
	s := spinner.New()
	s.Spinner = spinnerFor(cfg.SpinnerStyle)
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorLime))

	return &watchModel{
		tracker:   tracker,
		spinner:   s,
		styles:    GetStyles(cfg.NoColor || DetectNoColor()),
		width:     80,
		height:    24,
		rootLabel: cfg.RootLabel,
	}
}

// Init implements tea.Model.
func (m *watchModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tickCmd())
}

// tickCmd drives the elapsed clock at 100ms.
func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update implements tea.Model.
func (m *watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if s := msg.String(); s == "ctrl+c" || s == "q" {
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case batchMsg, statsMsg:
		// The tracker already recorded these; redraw only.
		return m, nil

	case toastMsg:
		m.applyToast(ToastNotice(msg))
		return m, nil

	case summaryMsg:
		m.complete = true
		m.summary = SessionSummary(msg)
		return m, tea.Quit

	case tickMsg:
		return m, tickCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// applyToast updates the active toast list from a lifecycle event.
func (m *watchModel) applyToast(event ToastNotice) {
	if !event.Dismissed {
		m.toasts = append(m.toasts, event)
		return
	}
	for i, t := range m.toasts {
		if t.ID == event.ID {
			m.toasts = append(m.toasts[:i], m.toasts[i+1:]...)
			return
		}
	}
}

// contentWidth is the panel-interior width, never narrower than 40.
func (m *watchModel) contentWidth() int {
	if w := m.width - 4; w >= 40 {
		return w
	}
	return 40
}

// View implements tea.Model.
func (m *watchModel) View() string {
	if m.quitting {
		return "Stopping...\n"
	}
	if m.complete {
		return m.renderComplete()
	}

	width := m.contentWidth()
	sections := []string{
		m.renderStatus(),
		m.renderCounters(),
		m.renderRate(),
		m.renderDivider(width),
		m.renderSparkline(width),
	}
	if recent := m.tracker.Recent(); len(recent) > 0 {
		sections = append(sections, m.renderDivider(width), m.renderRecentBatches(recent, width))
	}
	if len(m.toasts) > 0 {
		sections = append(sections, m.renderDivider(width), m.renderToasts(width))
	}

	title := "SuperTUI Watch"
	if m.rootLabel != "" {
		title += " • " + m.rootLabel
	}
	panel := m.wrapInPanel(title, strings.Join(sections, "\n"), width)

	return panel + "\n" + m.renderStatusBar()
}

// renderStatus renders the spinner line with watch state.
func (m *watchModel) renderStatus() string {
	stats := m.tracker.Stats()

	state := "Watching"
	if !stats.Enabled {
		state = "Starting"
	}

	parts := []string{
		fmt.Sprintf("%s %s", m.spinner.View(), m.styles.Active.Render(state)),
		m.styles.Label.Render(fmt.Sprintf("%d path(s)", stats.WatchedPaths)),
	}
	if stats.PendingChanges > 0 {
		parts = append(parts, m.styles.Warning.Render(fmt.Sprintf("%d pending", stats.PendingChanges)))
	}

	return strings.Join(parts, m.styles.Dim.Render("  •  "))
}

// renderCounters renders the session counters line.
func (m *watchModel) renderCounters() string {
	stats := m.tracker.Stats()
	counter := func(label, value string) string {
		return m.styles.Label.Render(label) + " " + m.styles.Active.Render(value)
	}

	return strings.Join([]string{
		counter("Batches:", fmt.Sprintf("%d", stats.Batches)),
		counter("Changes:", fmt.Sprintf("%d", stats.Changes)),
		counter("Elapsed:", formatDuration(stats.Elapsed)),
	}, m.styles.Dim.Render("   "))
}

// renderRate renders the change-rate metrics line.
func (m *watchModel) renderRate() string {
	rate := m.tracker.Rate()

	line := fmt.Sprintf("Rate: %.1f/min", rate.PerMinute)
	if rate.PeakBatch > 0 {
		line += fmt.Sprintf(" (avg batch: %.1f, peak: %d)", rate.AvgBatch, rate.PeakBatch)
	}
	return m.styles.Label.Render(line)
}

// renderSparkline renders the batch-size sparkline, scaled to the panel.
func (m *watchModel) renderSparkline(width int) string {
	sparkWidth := width - 12
	if sparkWidth < 10 {
		sparkWidth = 10
	}

	spark := m.tracker.RenderSparkline(sparkWidth)
	return m.styles.Sparkline.Render(spark) + " " + m.styles.Dim.Render("changes ─")
}

// renderRecentBatches renders the most recent flushed batches, newest first.
func (m *watchModel) renderRecentBatches(recent []BatchEvent, width int) string {
	const maxRows = 5

	lines := []string{m.styles.Label.Render("Recent batches:")}
	for i, b := range recent {
		if i >= maxRows {
			break
		}
		lines = append(lines, fmt.Sprintf("  %s  %s  %s",
			m.styles.Dim.Render(b.At.Format("15:04:05")),
			m.styles.Active.Render(fmt.Sprintf("%d file(s)", len(b.Paths))),
			m.styles.Label.Render(truncate(summarizePaths(b.Paths, 3), width-24))))
	}
	return strings.Join(lines, "\n")
}

// renderToasts renders the active toast list.
func (m *watchModel) renderToasts(width int) string {
	lines := make([]string, 0, len(m.toasts))
	for _, t := range m.toasts {
		tag := m.styles.LevelStyle(t.Level).Render("[" + t.Level + "]")
		lines = append(lines, tag+" "+truncate(t.Message, width-12))
	}
	return strings.Join(lines, "\n")
}

func (m *watchModel) renderDivider(width int) string {
	return m.styles.Border.Render(strings.Repeat("─", width))
}

// wrapInPanel draws content inside a rounded box under a styled title.
func (m *watchModel) wrapInPanel(title, content string, width int) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorDarkGray)).
		Padding(0, 1).
		Width(width)

	return lipgloss.JoinVertical(lipgloss.Left,
		m.styles.Header.Render(title),
		box.Render(content),
	)
}

// renderStatusBar renders the hint line under the panel.
func (m *watchModel) renderStatusBar() string {
	stats := m.tracker.Stats()
	if stats.Toasts == 0 {
		return m.styles.Dim.Render("q to quit")
	}

	return m.styles.Label.Render(fmt.Sprintf("%d notification(s)", stats.Toasts)) +
		m.styles.Dim.Render("  │  q to quit")
}

// renderComplete renders the boxed end-of-session summary.
func (m *watchModel) renderComplete() string {
	lines := []string{
		m.styles.Success.Render("✓ Watch Stopped"),
		"",
		fmt.Sprintf("%s  %s", m.styles.Label.Render("Batches:"), m.styles.Active.Render(fmt.Sprintf("%d", m.summary.Batches))),
		fmt.Sprintf("%s  %s", m.styles.Label.Render("Changes:"), m.styles.Active.Render(fmt.Sprintf("%d", m.summary.Changes))),
		fmt.Sprintf("%s %s", m.styles.Label.Render("Duration:"), m.styles.Active.Render(formatDuration(m.summary.Duration))),
	}
	if m.summary.Toasts > 0 {
		lines = append(lines, fmt.Sprintf("%s   %s",
			m.styles.Label.Render("Toasts:"),
			m.styles.Active.Render(fmt.Sprintf("%d", m.summary.Toasts))))
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorLime)).
		Padding(1, 2).
		Width(m.contentWidth())

	return box.Render(strings.Join(lines, "\n")) + "\n"
}

// formatDuration renders elapsed session time ("30s", "2m 15s", "1h 30m").
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		min, sec := int(d.Minutes()), int(d.Seconds())%60
		if sec == 0 {
			return fmt.Sprintf("%dm", min)
		}
		return fmt.Sprintf("%dm %ds", min, sec)
	default:
		return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
	}
}

// summarizePaths joins up to max base names, noting how many were omitted.
func summarizePaths(paths []string, max int) string {
	if len(paths) == 0 {
		return ""
	}

	shown := paths
	if len(shown) > max {
		shown = shown[:max]
	}
	names := make([]string, len(shown))
	for i, p := range shown {
		names[i] = filepath.Base(p)
	}

	out := strings.Join(names, ", ")
	if rest := len(paths) - max; rest > 0 {
		out += fmt.Sprintf(" +%d more", rest)
	}
	return out
}

// truncate shortens a string to maxLen runes with a trailing ellipsis.
func truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen == 1 {
		return "…"
	}
	return string(runes[:maxLen-1]) + "…"
}
