package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/diogo-arista/arista-tac-utilities/internal/collect"
	"github.com/diogo-arista/arista-tac-utilities/internal/render"
	"github.com/diogo-arista/arista-tac-utilities/pkg/health"
)

// flashDir is where on-box runs keep their artifacts; EOS mounts it on
// every platform and TAC expects uploads to come from there.
const flashDir = "/mnt/flash"

// LogFileName builds the canonical archive name for a host and time.
func LogFileName(hostname string, at time.Time) string {
	return fmt.Sprintf("%s_health-check_%s.log", hostname, at.UTC().Format("2006-01-02_1504"))
}

// FileWriter writes the plain-text run bundle to disk.
type FileWriter struct {
	dir    string
	logger *zap.Logger
}

// NewFileWriter writes bundles into dir. An empty dir picks /mnt/flash
// when it exists (running on the device) and the working directory
// otherwise, matching where field engineers look for the file.
func NewFileWriter(dir string, logger *zap.Logger) *FileWriter {
	return &FileWriter{dir: dir, logger: logger.Named("archive")}
}

// Write renders the bundle and writes it. Returns the full path of the
// written file.
func (w *FileWriter) Write(report *health.Report, run *collect.Run) (string, error) {
	dir := w.dir
	if dir == "" {
		dir = defaultDir()
	}

	data, err := render.Bundle(report, run)
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, LogFileName(report.Hostname, report.GeneratedAt))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write log file: %w", err)
	}

	w.logger.Info("log file written",
		zap.String("path", path),
		zap.Int("bytes", len(data)))
	return path, nil
}

func defaultDir() string {
	if fi, err := os.Stat(flashDir); err == nil && fi.IsDir() {
		return flashDir
	}
	return "."
}
