package exporter

import (
	"os"

	"focuslog/internal/database"
	"focuslog/internal/models"
)

// WriteArchive stores the session in the SQLite file at path, replacing any
// session archived there before.
func WriteArchive(path string, segments []models.Segment, summary []models.SummaryRow) error {
	if len(segments) == 0 {
		return ErrEmptyReport
	}

	db, err := database.Connect(path)
	if err != nil {
		return &ExportError{Op: "archive", Path: path, Err: err}
	}
	defer db.Close()

	if err := db.Initialize(); err != nil {
		return &ExportError{Op: "archive", Path: path, Err: err}
	}

	if err := database.NewRepository(db).Replace(segments, summary); err != nil {
		return &ExportError{Op: "archive", Path: path, Err: err}
	}

	return nil
}

// ReadArchive loads a session saved by WriteArchive. An archive holding no
// segments yields ErrEmptyReport.
func ReadArchive(path string) ([]models.Segment, []models.SummaryRow, error) {
	// Connect would create a missing file
	if _, err := os.Stat(path); err != nil {
		return nil, nil, &ExportError{Op: "read archive", Path: path, Err: err}
	}

	db, err := database.Connect(path)
	if err != nil {
		return nil, nil, &ExportError{Op: "read archive", Path: path, Err: err}
	}
	defer db.Close()

	repo := database.NewRepository(db)
	count, _, err := repo.Counts()
	if err != nil {
		return nil, nil, &ExportError{Op: "read archive", Path: path, Err: err}
	}
	if count == 0 {
		return nil, nil, ErrEmptyReport
	}

	segments, err := repo.Segments()
	if err != nil {
		return nil, nil, &ExportError{Op: "read archive", Path: path, Err: err}
	}
	summary, err := repo.Summary()
	if err != nil {
		return nil, nil, &ExportError{Op: "read archive", Path: path, Err: err}
	}
	return segments, summary, nil
}
