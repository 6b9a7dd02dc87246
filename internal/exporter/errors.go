package exporter

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrEmptyReport is returned when a chart or archive is requested for a
// session with nothing recorded. Nothing is written.
var ErrEmptyReport = errors.New("no activity to report")

// ExportError describes a failed write to an export destination
type ExportError struct {
	Op   string
	Path string
	Err  error
}

func (e *ExportError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("export %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("export %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}
