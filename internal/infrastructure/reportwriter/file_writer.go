package reportwriter

import (
	"context"
	"os"
	"path/filepath"

	"balance_reporter/internal/app/port"
	"balance_reporter/internal/domain/entity"
)

const DefaultReportPath = "balances.csv"

// FileReportWriter writes the rendered report to a single file, replacing any
// previous content.
type FileReportWriter struct {
	path string
}

var _ port.ReportWriter = (*FileReportWriter)(nil)

// NewFileReportWriter creates a writer for path. Parent directories are created on write.
func NewFileReportWriter(path string) *FileReportWriter {
	if path == "" {
		path = DefaultReportPath
	}
	return &FileReportWriter{path: path}
}

// WriteReport writes report.Text() in one call. Failures are returned as *entity.ExportError.
func (w *FileReportWriter) WriteReport(ctx context.Context, report entity.Report) error {
	if err := ctx.Err(); err != nil {
		return &entity.ExportError{Path: w.path, Err: err}
	}
	if dir := filepath.Dir(w.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &entity.ExportError{Path: w.path, Err: err}
		}
	}
	if err := os.WriteFile(w.path, []byte(report.Text()), 0o644); err != nil {
		return &entity.ExportError{Path: w.path, Err: err}
	}
	return nil
}

// Location returns the destination path.
func (w *FileReportWriter) Location() string {
	return w.path
}
