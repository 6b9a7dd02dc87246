package web

import (
	"context"
	"encoding/json"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"focuslog/internal/config"
	"focuslog/internal/models"
	"focuslog/internal/reporter"
)

type fakeSource struct {
	mu       sync.Mutex
	segments []models.Segment
	subs     []chan struct{}
}

func (f *fakeSource) Snapshot() []models.Segment {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Segment, len(f.segments))
	copy(out, f.segments)
	return out
}

func (f *fakeSource) Summary() []models.SummaryRow {
	return reporter.Summarize(f.Snapshot())
}

func (f *fakeSource) State() ([]models.Segment, string, time.Time) {
	segments := f.Snapshot()
	if len(segments) == 0 {
		return segments, "", time.Time{}
	}
	return segments, segments[len(segments)-1].WindowTitle, time.Unix(1700000000, 0)
}

func (f *fakeSource) Rollbacks() int {
	return 0
}

func (f *fakeSource) IsRunning() bool {
	return true
}

func (f *fakeSource) Subscribe() (<-chan struct{}, func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan struct{}, 1)
	f.subs = append(f.subs, ch)
	return ch, func() {}
}

func (f *fakeSource) tick() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ch := range f.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func newTestServer(t *testing.T, segments []models.Segment) (*httptest.Server, *Handler, *fakeSource) {
	t.Helper()

	src := &fakeSource{segments: segments}
	h := NewHandler(config.Default(), src)
	mux := http.NewServeMux()
	h.SetupRoutes(mux)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, h, src
}

var sessionSegments = []models.Segment{
	{WindowTitle: "A", Duration: 2, Status: models.StatusStopped},
	{WindowTitle: "B", Duration: 1, Status: models.StatusStopped},
	{WindowTitle: "A", Duration: 0, Status: models.StatusRunning},
}

func get(t *testing.T, url string, header map[string]string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatal(err)
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestSegmentsAndSummaryJSON(t *testing.T) {
	srv, _, _ := newTestServer(t, sessionSegments)

	var segments []models.Segment
	resp := get(t, srv.URL+"/api/segments", nil)
	if err := json.NewDecoder(resp.Body).Decode(&segments); err != nil {
		t.Fatalf("decode segments: %v", err)
	}
	if len(segments) != 3 || segments[2].Status != models.StatusRunning {
		t.Errorf("segments = %+v", segments)
	}

	var summary []models.SummaryRow
	resp = get(t, srv.URL+"/api/summary", nil)
	if err := json.NewDecoder(resp.Body).Decode(&summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	want := []models.SummaryRow{{WindowTitle: "A", TotalSeconds: 2}, {WindowTitle: "B", TotalSeconds: 1}}
	if len(summary) != 2 || summary[0] != want[0] || summary[1] != want[1] {
		t.Errorf("summary = %+v, want %+v", summary, want)
	}
}

func TestSummaryHTMLEscapesTitles(t *testing.T) {
	srv, _, _ := newTestServer(t, []models.Segment{
		{WindowTitle: "<script>alert(1)</script>", Duration: 5, Status: models.StatusRunning},
	})

	resp := get(t, srv.URL+"/api/summary", map[string]string{"HX-Request": "true"})
	body := readBody(t, resp)

	if strings.Contains(body, "<script>") {
		t.Errorf("title not escaped:\n%s", body)
	}
	if !strings.Contains(body, "&lt;script&gt;") {
		t.Errorf("escaped title missing:\n%s", body)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv, _, _ := newTestServer(t, nil)

	resp, err := http.Post(srv.URL+"/api/segments", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("POST status = %d, want 405", resp.StatusCode)
	}
}

func TestReport(t *testing.T) {
	srv, _, _ := newTestServer(t, sessionSegments)

	var report models.Report
	resp := get(t, srv.URL+"/api/report", nil)
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.Segments != 3 || report.TotalSeconds != 3 {
		t.Errorf("report = %+v", report)
	}

	text := readBody(t, get(t, srv.URL+"/api/report?format=text", nil))
	if !strings.Contains(text, "Time Usage Report") {
		t.Errorf("text report:\n%s", text)
	}
}

func TestStatus(t *testing.T) {
	srv, _, _ := newTestServer(t, sessionSegments)

	var status Status
	resp := get(t, srv.URL+"/api/status", nil)
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if !status.Running || status.Current != "A" || status.Segments != 3 || status.PID == 0 {
		t.Errorf("status = %+v", status)
	}
	if status.PollInterval != "1s" {
		t.Errorf("PollInterval = %q, want 1s", status.PollInterval)
	}
}

func TestExportLog(t *testing.T) {
	srv, _, _ := newTestServer(t, sessionSegments)

	resp := get(t, srv.URL+"/api/export/log", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "activity_log.csv") {
		t.Errorf("Content-Disposition = %q", cd)
	}

	body := readBody(t, resp)
	if !strings.HasPrefix(body, "Detailed Logs\nwindow,duration,status\nA,2,Stopped\n") {
		t.Errorf("body:\n%s", body)
	}
	if !strings.Contains(body, "Final Time Usage Summary\nwindow,duration\nA,2\nB,1\n") {
		t.Errorf("summary section missing:\n%s", body)
	}
}

func TestExportChartEmptyConflict(t *testing.T) {
	srv, _, _ := newTestServer(t, nil)

	resp := get(t, srv.URL+"/api/export/chart", nil)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("status = %d, want 409", resp.StatusCode)
	}
}

func TestExportChart(t *testing.T) {
	srv, _, _ := newTestServer(t, sessionSegments)

	resp := get(t, srv.URL+"/api/export/chart", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q", ct)
	}
	if _, err := png.DecodeConfig(resp.Body); err != nil {
		t.Errorf("body is not a PNG: %v", err)
	}
}

func TestHealthAndIndex(t *testing.T) {
	srv, _, _ := newTestServer(t, nil)

	if resp := get(t, srv.URL+"/health", nil); resp.StatusCode != http.StatusOK {
		t.Errorf("/health status = %d", resp.StatusCode)
	}
	if body := readBody(t, get(t, srv.URL+"/", nil)); !strings.Contains(body, "/api/stream") {
		t.Error("index does not connect to the stream")
	}
	if resp := get(t, srv.URL+"/nope", nil); resp.StatusCode != http.StatusNotFound {
		t.Errorf("/nope status = %d, want 404", resp.StatusCode)
	}
}

func TestStream(t *testing.T) {
	srv, h, src := newTestServer(t, sessionSegments)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.hub.run(ctx)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/stream"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Dial() error: %v", err)
	}
	defer conn.Close()

	var msg StreamMessage
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("initial ReadJSON() error: %v", err)
	}
	if msg.Type != "summary" || msg.Current != "A" || len(msg.Summary) != 2 {
		t.Errorf("initial message = %+v", msg)
	}

	src.mu.Lock()
	src.segments = append(src.segments[:2:2], models.Segment{WindowTitle: "A", Duration: 4, Status: models.StatusRunning})
	src.mu.Unlock()

	// The client may register after the first tick, so keep ticking
	// until an updated message arrives.
	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(20 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				src.tick()
			}
		}
	}()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("no updated stream message after tick: %v", err)
		}
		if len(msg.Summary) > 0 && msg.Summary[0].TotalSeconds == 6 {
			return
		}
	}
}

// driftingSource records a new segment on every Snapshot or Summary call,
// as a tracker ticking between reads would.
type driftingSource struct {
	*fakeSource
}

func (d driftingSource) drift() {
	d.mu.Lock()
	d.segments = append(d.segments, models.Segment{WindowTitle: "late", Duration: 100, Status: models.StatusStopped})
	d.mu.Unlock()
}

func (d driftingSource) Snapshot() []models.Segment {
	d.drift()
	return d.fakeSource.Snapshot()
}

func (d driftingSource) Summary() []models.SummaryRow {
	d.drift()
	return d.fakeSource.Summary()
}

func TestStreamMessageIsConsistent(t *testing.T) {
	src := driftingSource{&fakeSource{segments: append([]models.Segment(nil), sessionSegments...)}}
	h := NewHandler(config.Default(), src)

	msg := h.hub.message()
	if msg.Segments != len(sessionSegments) {
		t.Errorf("Segments = %d, want %d", msg.Segments, len(sessionSegments))
	}

	var total float64
	for _, row := range msg.Summary {
		total += row.TotalSeconds
	}
	if total != 3 || msg.Current != "A" {
		t.Errorf("message mixes reads: total=%v current=%q summary=%+v", total, msg.Current, msg.Summary)
	}
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(data)
}
