package tui

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"

	"focuslog/internal/config"
	"focuslog/internal/models"
)

type mockSource struct {
	segments []models.Segment
}

func (s *mockSource) Snapshot() []models.Segment {
	return append([]models.Segment(nil), s.segments...)
}

func (s *mockSource) State() ([]models.Segment, string, time.Time) {
	segments := append([]models.Segment(nil), s.segments...)
	if len(segments) == 0 {
		return segments, "", time.Time{}
	}
	return segments, segments[len(segments)-1].WindowTitle, time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
}

func (s *mockSource) Subscribe() (<-chan struct{}, func()) {
	return make(chan struct{}), func() {}
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Export.Dir = t.TempDir()
	return cfg
}

func newTestModel(t *testing.T, segments []models.Segment) (Model, *mockSource) {
	t.Helper()
	src := &mockSource{segments: segments}
	m := New(testConfig(t), src, nil)
	m.now = func() time.Time { return time.Date(2024, 1, 1, 10, 1, 30, 0, time.UTC) }
	return m, src
}

func key(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", next)
	}
	return model, cmd
}

var session = []models.Segment{
	{WindowTitle: "Editor", Duration: 120, Status: models.StatusStopped},
	{WindowTitle: "Browser", Duration: 30, Status: models.StatusStopped},
	{WindowTitle: "Editor", Duration: 15, Status: models.StatusRunning},
}

func TestModel_InitWithoutTicks(t *testing.T) {
	m, _ := newTestModel(t, nil)
	if cmd := m.Init(); cmd != nil {
		t.Error("Init with no tick channel should return nil")
	}

	withTicks := New(testConfig(t), &mockSource{}, make(chan struct{}))
	if cmd := withTicks.Init(); cmd == nil {
		t.Error("Init with a tick channel should wait for ticks")
	}
}

func TestModel_TabTogglesView(t *testing.T) {
	m, _ := newTestModel(t, session)

	if !strings.Contains(m.View(), "Window") || strings.Contains(m.View(), "Status") {
		t.Fatalf("initial view is not the summary:\n%s", m.View())
	}

	m, _ = update(t, m, key("tab"))
	if m.view != viewLog {
		t.Fatalf("view = %v after tab, want log", m.view)
	}
	view := m.View()
	for _, want := range []string{"Status", "Running", "Stopped", "2:00"} {
		if !strings.Contains(view, want) {
			t.Errorf("log view missing %q:\n%s", want, view)
		}
	}

	m, _ = update(t, m, key("tab"))
	if m.view != viewSummary {
		t.Errorf("view = %v after second tab, want summary", m.view)
	}
}

func TestModel_SummaryView(t *testing.T) {
	m, _ := newTestModel(t, session)
	view := m.View()

	editor := strings.Index(view, "Editor")
	browser := strings.Index(view, "Browser")
	if editor < 0 || browser < 0 || editor > browser {
		t.Errorf("summary not ordered by total:\n%s", view)
	}
	if !strings.Contains(view, "2:15") {
		t.Errorf("summary missing Editor total 2:15:\n%s", view)
	}
	if !strings.Contains(view, "for 1:30") {
		t.Errorf("status line missing elapsed time:\n%s", view)
	}
}

func TestModel_TickRefreshes(t *testing.T) {
	m, src := newTestModel(t, nil)
	if !strings.Contains(m.View(), "No activity recorded yet") {
		t.Fatalf("empty view:\n%s", m.View())
	}

	src.segments = session
	m, _ = update(t, m, tickMsg{})
	if len(m.segments) != 3 || len(m.summary) != 2 || m.current != "Editor" {
		t.Errorf("after tick: segments=%d summary=%d current=%q", len(m.segments), len(m.summary), m.current)
	}
}

func TestModel_Quit(t *testing.T) {
	for _, k := range []string{"q", "esc"} {
		m, _ := newTestModel(t, nil)
		_, cmd := update(t, m, key(k))
		if cmd == nil {
			t.Fatalf("%s: expected quit command", k)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%s: command did not quit", k)
		}
	}
}

func TestModel_EmptyExportsWarn(t *testing.T) {
	for _, k := range []string{"c", "a"} {
		m, _ := newTestModel(t, nil)
		m, cmd := update(t, m, key(k))
		if cmd != nil {
			t.Errorf("%s: empty export started a command", k)
		}
		if !m.statusErr || !strings.Contains(m.View(), "No activity to report.") {
			t.Errorf("%s: no warning shown:\n%s", k, m.View())
		}
	}
}

func TestModel_ExportLog(t *testing.T) {
	m, _ := newTestModel(t, session)

	m, cmd := update(t, m, key("l"))
	if cmd == nil {
		t.Fatal("log export returned no command")
	}
	if !m.exporting {
		t.Error("exporting flag not set")
	}

	m, _ = update(t, m, key("c"))
	if !strings.Contains(m.status, "already in progress") {
		t.Errorf("concurrent export not refused: %q", m.status)
	}

	m, _ = update(t, m, cmd())
	if m.exporting || m.statusErr {
		t.Errorf("after export: exporting=%v statusErr=%v status=%q", m.exporting, m.statusErr, m.status)
	}

	data, err := os.ReadFile(m.config.LogPath())
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	if !strings.HasPrefix(string(data), "Detailed Logs\n") {
		t.Errorf("log contents:\n%s", data)
	}
}

func TestModel_ExportChartAndArchive(t *testing.T) {
	m, _ := newTestModel(t, session)

	for _, k := range []string{"c", "a"} {
		var cmd tea.Cmd
		m, cmd = update(t, m, key(k))
		if cmd == nil {
			t.Fatalf("%s: no command", k)
		}
		m, _ = update(t, m, cmd())
		if m.statusErr {
			t.Errorf("%s: export failed: %s", k, m.status)
		}
	}

	for _, path := range []string{m.config.ChartPath(), m.config.ArchivePath()} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("%s not written: %v", filepath.Base(path), err)
		}
	}
}

func TestModel_ExportFailureWarns(t *testing.T) {
	m, _ := newTestModel(t, session)
	m.config.Export.Dir = filepath.Join(t.TempDir(), "missing")

	m, cmd := update(t, m, key("l"))
	m, _ = update(t, m, cmd())

	if !m.statusErr || !strings.Contains(m.status, "Could not save log") {
		t.Errorf("status = %q, statusErr = %v", m.status, m.statusErr)
	}
}

// growingSource extends the running segment on every read, like a tracker
// ticking between two calls.
type growingSource struct {
	mockSource
}

func (s *growingSource) Snapshot() []models.Segment {
	s.segments[len(s.segments)-1].Duration += 10
	return s.mockSource.Snapshot()
}

func TestModel_ExportLogSectionsAgree(t *testing.T) {
	src := &growingSource{mockSource{segments: append([]models.Segment(nil), session...)}}
	m := New(testConfig(t), src, nil)

	m, cmd := update(t, m, key("l"))
	if cmd == nil {
		t.Fatal("log export returned no command")
	}
	m, _ = update(t, m, cmd())

	f, err := os.Open(m.config.LogPath())
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		t.Fatalf("log is not valid CSV: %v", err)
	}

	detailed := make(map[string]float64)
	summary := make(map[string]float64)
	section := detailed
	for _, rec := range records {
		if rec[0] == "Final Time Usage Summary" {
			section = summary
			continue
		}
		if len(rec) < 2 || rec[0] == "window" {
			continue
		}
		d, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			t.Fatalf("bad duration in %v: %v", rec, err)
		}
		section[rec[0]] += d
	}

	if len(summary) != 2 {
		t.Fatalf("summary section = %v, want 2 titles", summary)
	}
	for title, total := range summary {
		if detailed[title] != total {
			t.Errorf("%s: summary total %v, detailed rows add up to %v", title, total, detailed[title])
		}
	}
}

func TestModel_WideTitlesAlign(t *testing.T) {
	m, _ := newTestModel(t, []models.Segment{
		{WindowTitle: "日本語のドキュメント - エディタ", Duration: 95, Status: models.StatusStopped},
		{WindowTitle: "Editor", Duration: 50, Status: models.StatusRunning},
	})

	for _, v := range []view{viewSummary, viewLog} {
		m.view = v

		// Durations are right-aligned, so they end in the same cell
		var ends []int
		for _, line := range strings.Split(m.View(), "\n") {
			for _, dur := range []string{"1:35", "0:50"} {
				i := strings.Index(line, dur)
				if i < 0 || !(strings.HasPrefix(line, "日本語") || strings.HasPrefix(line, "Editor")) {
					continue
				}
				ends = append(ends, runewidth.StringWidth(line[:i+len(dur)]))
			}
		}
		if len(ends) != 2 || ends[0] != ends[1] {
			t.Errorf("view %v: duration columns end at %v, want two equal cells\n%s", v, ends, m.View())
		}
	}
}
