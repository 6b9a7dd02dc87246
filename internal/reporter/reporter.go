package reporter

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"

	"focuslog/internal/models"
	"focuslog/pkg/utils"
)

// Summarize totals segment durations per window title, Running segments
// included. Rows are ordered by total descending; equal totals keep the
// order in which their titles first appear in segments.
func Summarize(segments []models.Segment) []models.SummaryRow {
	rows := make([]models.SummaryRow, 0)
	index := make(map[string]int)

	for _, seg := range segments {
		i, ok := index[seg.WindowTitle]
		if !ok {
			i = len(rows)
			index[seg.WindowTitle] = i
			rows = append(rows, models.SummaryRow{WindowTitle: seg.WindowTitle})
		}
		rows[i].TotalSeconds += seg.Duration
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].TotalSeconds > rows[j].TotalSeconds
	})

	return rows
}

// Reporter handles report generation
type Reporter struct {
	now func() time.Time
}

// New creates a new reporter
func New() *Reporter {
	return &Reporter{now: time.Now}
}

// GenerateReport summarizes segments and derives minutes, hours and shares
func (r *Reporter) GenerateReport(segments []models.Segment) *models.Report {
	summary := Summarize(segments)

	counts := make(map[string]int, len(summary))
	for _, seg := range segments {
		counts[seg.WindowTitle]++
	}

	var totalSeconds float64
	for _, row := range summary {
		totalSeconds += row.TotalSeconds
	}

	rows := make([]models.ReportRow, 0, len(summary))
	for _, row := range summary {
		rr := models.ReportRow{
			WindowTitle:  row.WindowTitle,
			TotalSeconds: row.TotalSeconds,
			TotalMinutes: row.TotalSeconds / 60.0,
			TotalHours:   row.TotalSeconds / 3600.0,
			SegmentCount: counts[row.WindowTitle],
		}
		if totalSeconds > 0 {
			rr.Percentage = (row.TotalSeconds / totalSeconds) * 100.0
		}
		rows = append(rows, rr)
	}

	return &models.Report{
		Rows:         rows,
		Segments:     len(segments),
		TotalSeconds: totalSeconds,
		TotalMinutes: totalSeconds / 60.0,
		TotalHours:   totalSeconds / 3600.0,
		GeneratedAt:  r.now(),
	}
}

// FormatReportText formats the report as human-readable text
func (r *Reporter) FormatReportText(report *models.Report) string {
	var b strings.Builder

	b.WriteString("Time Usage Report\n")
	fmt.Fprintf(&b, "Generated: %s\n", report.GeneratedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Total Time: %s across %d segments\n\n", utils.FormatDuration(report.TotalSeconds), report.Segments)

	if len(report.Rows) == 0 {
		b.WriteString("No activity recorded in this session.\n")
		return b.String()
	}

	fmt.Fprintf(&b, "%s %10s %9s %8s\n", utils.FitWidth("Application/Website", 40), "Time", "Segments", "Percent")
	b.WriteString(strings.Repeat("-", 70) + "\n")

	for _, row := range report.Rows {
		fmt.Fprintf(&b, "%s %10s %9d %7.1f%%\n",
			utils.FitWidth(row.WindowTitle, 40),
			utils.FormatDuration(row.TotalSeconds),
			row.SegmentCount,
			row.Percentage)
	}

	return b.String()
}

// FormatReportJSON formats the report as JSON
func (r *Reporter) FormatReportJSON(report *models.Report) (string, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal JSON")
	}
	return string(data), nil
}
