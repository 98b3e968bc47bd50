package report

import (
	"fmt"
	"log/slog"

	"github.com/nao1215/topwords/internal/model"
)

// LogReporter logs each ranked word as "<word>: <count>" at INFO level.
type LogReporter struct {
	logger *slog.Logger
}

// NewLogReporter creates a LogReporter. A nil logger uses slog.Default().
func NewLogReporter(logger *slog.Logger) *LogReporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogReporter{logger: logger}
}

// Write logs the ranked result. It writes no bytes.
func (r *LogReporter) Write(run *model.Run) (int, error) {
	r.logger.Info(fmt.Sprintf("top %d words by frequency:", len(run.Ranked)))
	for _, p := range run.Ranked {
		r.logger.Info(fmt.Sprintf("%s: %d", p.Word, p.Count))
	}
	return 0, nil
}
