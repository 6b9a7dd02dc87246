package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"focuslog/internal/config"
	"focuslog/internal/exporter"
	"focuslog/internal/models"
	"focuslog/internal/reporter"
	"focuslog/pkg/utils"
)

// Source is the live session the handlers read from
type Source interface {
	Snapshot() []models.Segment
	Summary() []models.SummaryRow
	State() ([]models.Segment, string, time.Time)
	Rollbacks() int
	IsRunning() bool
	Subscribe() (<-chan struct{}, func())
}

// Status is the body of /api/status
type Status struct {
	Running      bool      `json:"running"`
	PID          int       `json:"pid"`
	Current      string    `json:"current"`
	Since        time.Time `json:"since"`
	Segments     int       `json:"segments"`
	Rollbacks    int       `json:"rollbacks"`
	PollInterval string    `json:"poll_interval"`
	Identify     string    `json:"identify"`
}

type Handler struct {
	config   *config.Config
	source   Source
	reporter *reporter.Reporter
	hub      *Hub
}

func NewHandler(cfg *config.Config, source Source) *Handler {
	return &Handler{
		config:   cfg,
		source:   source,
		reporter: reporter.New(),
		hub:      newHub(source),
	}
}

func (h *Handler) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/segments", h.handleSegments)
	mux.HandleFunc("/api/summary", h.handleSummary)
	mux.HandleFunc("/api/report", h.handleReport)
	mux.HandleFunc("/api/status", h.handleStatus)
	mux.HandleFunc("/api/export/log", h.handleExportLog)
	mux.HandleFunc("/api/export/chart", h.handleExportChart)
	mux.HandleFunc("/api/stream", h.handleStream)

	mux.HandleFunc("/health", h.handleHealth)

	mux.HandleFunc("/", h.handleIndex)
}

func (h *Handler) handleSegments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	segments := h.source.Snapshot()

	if r.Header.Get("HX-Request") == "true" {
		h.respondSegmentsHTML(w, segments)
		return
	}

	respondJSON(w, segments)
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	summary := h.source.Summary()

	if r.Header.Get("HX-Request") == "true" {
		h.respondSummaryHTML(w, summary)
		return
	}

	respondJSON(w, summary)
}

func (h *Handler) respondSummaryHTML(w http.ResponseWriter, summary []models.SummaryRow) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if len(summary) == 0 {
		w.Write([]byte(`<div class="loading">No activity yet</div>`))
		return
	}

	var total float64
	for _, row := range summary {
		total += row.TotalSeconds
	}

	var b strings.Builder
	b.WriteString(`<div class="listing">`)
	for _, row := range summary {
		var pct float64
		if total > 0 {
			pct = row.TotalSeconds / total * 100
		}
		fmt.Fprintf(&b, `
		<div class="row" style="--bar-width: %.1f%%">
			<span class="name">%s</span>
			<span class="time">%s</span>
			<span class="pct">%.1f%%</span>
		</div>`, pct, html.EscapeString(row.WindowTitle), utils.FormatRoundedUnit(int64(row.TotalSeconds)), pct)
	}
	b.WriteString(`</div>`)
	fmt.Fprintf(&b, `<div class="total">Total: %s</div>`, utils.FormatDuration(total))

	w.Write([]byte(b.String()))
}

func (h *Handler) respondSegmentsHTML(w http.ResponseWriter, segments []models.Segment) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if len(segments) == 0 {
		w.Write([]byte(`<div class="loading">No activity yet</div>`))
		return
	}

	var b strings.Builder
	b.WriteString(`<div class="listing">`)
	// Newest first so the running segment stays on top
	for i := len(segments) - 1; i >= 0; i-- {
		seg := segments[i]
		fmt.Fprintf(&b, `
		<div class="row %s">
			<span class="name">%s</span>
			<span class="time">%s</span>
			<span class="status">%s</span>
		</div>`, strings.ToLower(string(seg.Status)), html.EscapeString(seg.WindowTitle), utils.FormatDuration(seg.Duration), seg.Status)
	}
	b.WriteString(`</div>`)

	w.Write([]byte(b.String()))
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	report := h.reporter.GenerateReport(h.source.Snapshot())

	if r.URL.Query().Get("format") == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte(h.reporter.FormatReportText(report)))
		return
	}

	respondJSON(w, report)
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	segments, current, since := h.source.State()
	respondJSON(w, Status{
		Running:      h.source.IsRunning(),
		PID:          os.Getpid(),
		Current:      current,
		Since:        since,
		Segments:     len(segments),
		Rollbacks:    h.source.Rollbacks(),
		PollInterval: h.config.Tracker.PollInterval.String(),
		Identify:     string(h.config.Tracker.Identify),
	})
}

func (h *Handler) handleExportLog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	segments := h.source.Snapshot()

	var buf bytes.Buffer
	if err := exporter.WriteLog(&buf, segments, reporter.Summarize(segments)); err != nil {
		log.Printf("Log export failed: %v", err)
		http.Error(w, fmt.Sprintf("Failed to export log: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", h.config.Export.LogName))
	w.Write(buf.Bytes())
}

func (h *Handler) handleExportChart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	opts := exporter.ChartOptions{
		Width:    h.config.Export.ChartWidth,
		Height:   h.config.Export.ChartHeight,
		MaxLabel: h.config.Export.MaxLabel,
	}

	var buf bytes.Buffer
	err := exporter.WriteChart(&buf, h.source.Summary(), opts)
	if errors.Is(err, exporter.ErrEmptyReport) {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	if err != nil {
		log.Printf("Chart export failed: %v", err)
		http.Error(w, fmt.Sprintf("Failed to render chart: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", h.config.Export.ChartName))
	w.Write(buf.Bytes())
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(indexHTML))
}

func respondJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
