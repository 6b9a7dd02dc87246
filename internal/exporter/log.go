package exporter

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"

	"focuslog/internal/models"
)

const (
	logSectionTitle     = "Detailed Logs"
	summarySectionTitle = "Final Time Usage Summary"
)

// WriteLog writes the segment log followed by the summary as two CSV
// sections. Both section headers are written even when there is no data.
func WriteLog(w io.Writer, segments []models.Segment, summary []models.SummaryRow) error {
	if _, err := io.WriteString(w, logSectionTitle+"\n"); err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"window", "duration", "status"}); err != nil {
		return err
	}
	for _, seg := range segments {
		if err := cw.Write([]string{seg.WindowTitle, formatSeconds(seg.Duration), string(seg.Status)}); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}

	if _, err := io.WriteString(w, "\n"+summarySectionTitle+"\n"); err != nil {
		return err
	}

	if err := cw.Write([]string{"window", "duration"}); err != nil {
		return err
	}
	for _, row := range summary {
		if err := cw.Write([]string{row.WindowTitle, formatSeconds(row.TotalSeconds)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteLogFile writes the log to path, replacing any existing file
func WriteLogFile(path string, segments []models.Segment, summary []models.SummaryRow) error {
	return writeFileAtomic("log", path, func(w io.Writer) error {
		return WriteLog(w, segments, summary)
	})
}

func formatSeconds(s float64) string {
	return strconv.FormatFloat(s, 'f', -1, 64)
}

// writeFileAtomic writes through a temp file in the target directory and
// renames it over path, so readers never see a partial export.
func writeFileAtomic(op, path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return &ExportError{Op: op, Path: path, Err: err}
	}
	tmpName := tmp.Name()

	fail := func(err error) error {
		tmp.Close()
		os.Remove(tmpName)
		return &ExportError{Op: op, Path: path, Err: err}
	}

	if err := write(tmp); err != nil {
		return fail(err)
	}
	if err := tmp.Sync(); err != nil {
		return fail(errors.Wrap(err, "sync"))
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &ExportError{Op: op, Path: path, Err: err}
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return &ExportError{Op: op, Path: path, Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return &ExportError{Op: op, Path: path, Err: err}
	}

	return nil
}
