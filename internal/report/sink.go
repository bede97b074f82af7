package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	applog "github.com/RiccardoZanardi/Calvenzano/internal/log"
)

// Sink receives rendered reports.
type Sink interface {
	Write(r *Report) error
}

// FileSink writes each report as a JSON file named after its kind and
// cutoff date.
type FileSink struct {
	dir    string
	logger *applog.Logger
}

// NewFileSink creates a sink writing into dir, creating it if needed.
func NewFileSink(dir string, logger *applog.Logger) (*FileSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create report directory: %w", err)
	}
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &FileSink{dir: dir, logger: logger.WithComponent(applog.ComponentReport)}, nil
}

// Write implements Sink.
func (s *FileSink) Write(r *Report) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	name := fmt.Sprintf("report-%s-%s.json", r.Kind, r.AsOf)
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report file: %w", err)
	}
	s.logger.Info("Report written",
		applog.FieldOperation, applog.OpRender,
		applog.FieldReportKind, r.Kind,
		applog.FieldAsOf, r.AsOf,
		applog.FieldPath, path)
	return nil
}
