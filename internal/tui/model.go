package tui

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"focuslog/internal/config"
	"focuslog/internal/exporter"
	"focuslog/internal/models"
	"focuslog/internal/reporter"
	"focuslog/pkg/utils"
)

// Source is the live session shown by the TUI
type Source interface {
	Snapshot() []models.Segment
	State() ([]models.Segment, string, time.Time)
	Subscribe() (<-chan struct{}, func())
}

type view int

const (
	viewSummary view = iota
	viewLog
)

// tickMsg signals that the tracker finished an update
type tickMsg struct{}

// exportDoneMsg reports the outcome of an export started from a key press
type exportDoneMsg struct {
	kind string
	path string
	err  error
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	tabStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Padding(0, 1)
	activeTabStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62")).Underline(true).Padding(0, 1)

	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	currentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	runningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	stoppedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("69"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type Model struct {
	config *config.Config
	source Source
	ticks  <-chan struct{}

	view   view
	width  int
	height int

	segments []models.Segment
	summary  []models.SummaryRow
	current  string
	since    time.Time
	now      func() time.Time

	status    string
	statusErr bool
	exporting bool
}

// New builds a model reading from source. ticks is normally the channel
// returned by source.Subscribe.
func New(cfg *config.Config, source Source, ticks <-chan struct{}) Model {
	m := Model{
		config: cfg,
		source: source,
		ticks:  ticks,
		view:   viewSummary,
		now:    time.Now,
	}
	m.refresh()
	return m
}

func (m *Model) refresh() {
	m.segments, m.current, m.since = m.source.State()
	m.summary = reporter.Summarize(m.segments)
}

func (m Model) Init() tea.Cmd {
	return waitForTick(m.ticks)
}

func waitForTick(ticks <-chan struct{}) tea.Cmd {
	if ticks == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ticks; !ok {
			return nil
		}
		return tickMsg{}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "tab", "shift+tab":
			if m.view == viewSummary {
				m.view = viewLog
			} else {
				m.view = viewSummary
			}
			return m, nil
		case "l":
			return m.startExport("log")
		case "c":
			return m.startExport("chart")
		case "a":
			return m.startExport("archive")
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		m.refresh()
		return m, waitForTick(m.ticks)

	case exportDoneMsg:
		m.exporting = false
		if msg.err != nil {
			m.setWarning(exportWarning(msg))
			log.Printf("Export %s to %s failed: %v", msg.kind, msg.path, msg.err)
			return m, nil
		}
		m.status = fmt.Sprintf("Saved %s to %s", msg.kind, msg.path)
		m.statusErr = false
		log.Printf("Exported %s to %s", msg.kind, msg.path)
		return m, nil
	}

	return m, nil
}

func (m *Model) setWarning(text string) {
	m.status = text
	m.statusErr = true
}

// startExport snapshots the session and writes it in the background. Chart
// and archive exports of an empty session are refused up front.
func (m Model) startExport(kind string) (tea.Model, tea.Cmd) {
	if m.exporting {
		m.setWarning("An export is already in progress")
		return m, nil
	}

	segments := m.source.Snapshot()
	summary := reporter.Summarize(segments)

	if kind != "log" && len(segments) == 0 {
		m.setWarning("No activity to report.")
		return m, nil
	}

	m.exporting = true
	m.status = fmt.Sprintf("Exporting %s...", kind)
	m.statusErr = false

	cfg := m.config
	return m, func() tea.Msg {
		return runExport(cfg, kind, segments, summary)
	}
}

func runExport(cfg *config.Config, kind string, segments []models.Segment, summary []models.SummaryRow) exportDoneMsg {
	switch kind {
	case "log":
		path := cfg.LogPath()
		return exportDoneMsg{kind: kind, path: path, err: exporter.WriteLogFile(path, segments, summary)}
	case "chart":
		path := cfg.ChartPath()
		opts := exporter.ChartOptions{
			Width:    cfg.Export.ChartWidth,
			Height:   cfg.Export.ChartHeight,
			MaxLabel: cfg.Export.MaxLabel,
		}
		return exportDoneMsg{kind: kind, path: path, err: exporter.WriteChartFile(path, summary, opts)}
	default:
		path := cfg.ArchivePath()
		return exportDoneMsg{kind: kind, path: path, err: exporter.WriteArchive(path, segments, summary)}
	}
}

func exportWarning(msg exportDoneMsg) string {
	if errors.Is(msg.err, exporter.ErrEmptyReport) {
		return "No activity to report."
	}
	return fmt.Sprintf("Could not save %s: %v", msg.kind, msg.err)
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(" Focuslog "))
	b.WriteString("  ")
	b.WriteString(m.renderTabs())
	b.WriteString("\n\n")

	if m.current != "" || !m.since.IsZero() {
		elapsed := m.now().Sub(m.since).Seconds()
		fmt.Fprintf(&b, "Now: %s  %s\n\n",
			currentStyle.Render(utils.Truncate(m.current, 60)),
			helpStyle.Render("for "+utils.FormatDuration(elapsed)))
	}

	if m.view == viewSummary {
		b.WriteString(m.renderSummary())
	} else {
		b.WriteString(m.renderLog())
	}

	b.WriteString("\n")
	if m.status != "" {
		if m.statusErr {
			b.WriteString(warnStyle.Render(m.status))
		} else {
			b.WriteString(infoStyle.Render(m.status))
		}
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("tab: switch view | l: save log | c: save chart | a: save archive | q: quit"))

	return b.String()
}

func (m Model) renderTabs() string {
	summary, logTab := tabStyle, tabStyle
	if m.view == viewSummary {
		summary = activeTabStyle
	} else {
		logTab = activeTabStyle
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		summary.Render("Summary"),
		logTab.Render("Detailed Log"))
}

func (m Model) titleWidth() int {
	w := m.width - 30
	if w < 20 {
		return 40
	}
	return w
}

// visibleRows is how many table rows fit below the header and above the help
func (m Model) visibleRows() int {
	if m.height == 0 {
		return 20
	}
	if n := m.height - 10; n > 3 {
		return n
	}
	return 3
}

func (m Model) renderSummary() string {
	if len(m.summary) == 0 {
		return helpStyle.Render("No activity recorded yet.") + "\n"
	}

	tw := m.titleWidth()
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%s %10s", utils.FitWidth("Window", tw), "Time")))
	b.WriteString("\n")

	rows := m.summary
	if limit := m.visibleRows(); len(rows) > limit {
		rows = rows[:limit]
	}
	for _, row := range rows {
		fmt.Fprintf(&b, "%s %10s\n", utils.FitWidth(row.WindowTitle, tw), utils.FormatDuration(row.TotalSeconds))
	}
	if hidden := len(m.summary) - len(rows); hidden > 0 {
		b.WriteString(helpStyle.Render(fmt.Sprintf("... and %d more", hidden)))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderLog() string {
	if len(m.segments) == 0 {
		return helpStyle.Render("No activity recorded yet.") + "\n"
	}

	tw := m.titleWidth()
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%s %10s  %s", utils.FitWidth("Window", tw), "Duration", "Status")))
	b.WriteString("\n")

	// Most recent segments are the interesting ones
	rows := m.segments
	if limit := m.visibleRows(); len(rows) > limit {
		rows = rows[len(rows)-limit:]
	}
	for _, seg := range rows {
		status := stoppedStyle.Render(string(seg.Status))
		if seg.IsRunning() {
			status = runningStyle.Render(string(seg.Status))
		}
		fmt.Fprintf(&b, "%s %10s  %s\n", utils.FitWidth(seg.WindowTitle, tw), utils.FormatDuration(seg.Duration), status)
	}
	return b.String()
}

// Run shows the TUI until the user quits or ctx is cancelled
func Run(ctx context.Context, cfg *config.Config, source Source) error {
	ticks, cancel := source.Subscribe()
	defer cancel()

	p := tea.NewProgram(New(cfg, source, ticks), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
