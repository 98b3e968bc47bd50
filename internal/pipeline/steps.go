package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"time"

	"github.com/nao1215/topwords/internal/extract"
	"github.com/nao1215/topwords/internal/fetch"
	"github.com/nao1215/topwords/internal/mapreduce"
	"github.com/nao1215/topwords/internal/metrics"
	"github.com/nao1215/topwords/internal/model"
	"github.com/nao1215/topwords/internal/report"
	"github.com/nao1215/topwords/internal/text"
)

// Acquirer downloads a document. A false result means the text is not
// available and the failure has already been logged.
type Acquirer interface {
	Acquire(ctx context.Context, url string) (fetch.Page, bool)
}

// AcquireStep downloads the source document.
type AcquireStep struct {
	acquirer Acquirer
}

// NewAcquireStep creates an AcquireStep.
func NewAcquireStep(acquirer Acquirer) *AcquireStep {
	return &AcquireStep{acquirer: acquirer}
}

// Name returns the step name.
func (s *AcquireStep) Name() string {
	return "acquire"
}

// Do fetches run.SourceURL. A failed download halts the pipeline.
func (s *AcquireStep) Do(ctx context.Context, run *model.Run) error {
	start := time.Now()
	page, ok := s.acquirer.Acquire(ctx, run.SourceURL)
	run.RecordDuration(model.StageFetch, time.Since(start))
	if !ok {
		return fmt.Errorf("%w: no text from %s", ErrHalt, run.SourceURL)
	}

	run.Text = string(page.Body)
	run.ContentType = page.ContentType
	run.FinalURL = page.FinalURL
	return nil
}

// ExtractStep turns the downloaded document into plain text.
type ExtractStep struct {
	mode   extract.Mode
	logger *slog.Logger
}

// NewExtractStep creates an ExtractStep for mode.
func NewExtractStep(mode extract.Mode, logger *slog.Logger) *ExtractStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExtractStep{mode: mode, logger: logger}
}

// Name returns the step name.
func (s *ExtractStep) Name() string {
	return "extract"
}

// Do replaces run.Text with the extracted text.
func (s *ExtractStep) Do(_ context.Context, run *model.Run) error {
	if s.mode == extract.ModeRaw {
		return nil
	}

	start := time.Now()
	page := fetch.Page{
		Body:        []byte(run.Text),
		ContentType: run.ContentType,
		FinalURL:    run.FinalURL,
	}
	if page.FinalURL == "" {
		page.FinalURL = run.SourceURL
	}

	txt, err := extract.Extract(s.mode, page)
	if err != nil {
		return fmt.Errorf("extract %s text: %w", s.mode, err)
	}
	s.logger.Debug("text extracted",
		"mode", s.mode.String(),
		"before", len(run.Text),
		"after", len(txt),
	)
	run.Text = txt
	run.RecordDuration(model.StageExtract, time.Since(start))
	return nil
}

// NormalizeStep splits the text into lowercase tokens without punctuation.
type NormalizeStep struct {
	logger *slog.Logger
}

// NewNormalizeStep creates a NormalizeStep.
func NewNormalizeStep(logger *slog.Logger) *NormalizeStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &NormalizeStep{logger: logger}
}

// Name returns the step name.
func (s *NormalizeStep) Name() string {
	return "normalize"
}

// Do sets run.Tokens.
func (s *NormalizeStep) Do(_ context.Context, run *model.Run) error {
	s.logger.Info("cleaning text by removing punctuation")
	start := time.Now()
	run.Tokens = text.Tokenize(run.Text)
	run.RecordDuration(model.StageNormalize, time.Since(start))
	return nil
}

// CountStep counts word frequencies with map, shuffle and reduce.
type CountStep struct {
	counter *mapreduce.Counter
}

// NewCountStep creates a CountStep. A nil counter uses mapreduce.NewCounter().
func NewCountStep(counter *mapreduce.Counter) *CountStep {
	if counter == nil {
		counter = mapreduce.NewCounter()
	}
	return &CountStep{counter: counter}
}

// Name returns the step name.
func (s *CountStep) Name() string {
	return "count"
}

// Do fills the counts of run. Nothing is stored on failure.
func (s *CountStep) Do(ctx context.Context, run *model.Run) error {
	res, err := s.counter.Count(ctx, run.Tokens, run.TopN)
	if err != nil {
		return fmt.Errorf("count words: %w", err)
	}

	run.TotalTokens = res.TotalTokens
	run.DistinctWords = res.DistinctWords
	run.Counts = res.All
	run.Ranked = res.Ranked
	if run.Durations == nil {
		run.Durations = make(map[string]time.Duration, len(res.Durations))
	}
	maps.Copy(run.Durations, res.Durations)
	return nil
}

// ReportStep renders the ranked result.
type ReportStep struct {
	writer report.Writer
	logger *slog.Logger
}

// NewReportStep creates a ReportStep writing with w.
func NewReportStep(w report.Writer, logger *slog.Logger) *ReportStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportStep{writer: w, logger: logger}
}

// Name returns the step name.
func (s *ReportStep) Name() string {
	return "report"
}

// Do writes the report. An empty result is only noted in the log.
func (s *ReportStep) Do(_ context.Context, run *model.Run) error {
	if !run.HasResults() {
		s.logger.Info("no words to visualize")
		return nil
	}
	s.logger.Info("visualizing results")
	if _, err := s.writer.Write(run); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	s.logger.Info("visualization completed")
	return nil
}

// MetricsStep exports the run as a Prometheus textfile.
type MetricsStep struct {
	recorder *metrics.Recorder
	path     string
	logger   *slog.Logger
}

// NewMetricsStep creates a MetricsStep writing to path.
func NewMetricsStep(recorder *metrics.Recorder, path string, logger *slog.Logger) *MetricsStep {
	if recorder == nil {
		recorder = metrics.NewRecorder()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &MetricsStep{recorder: recorder, path: path, logger: logger}
}

// Name returns the step name.
func (s *MetricsStep) Name() string {
	return "metrics"
}

// Do records run and writes the textfile.
func (s *MetricsStep) Do(_ context.Context, run *model.Run) error {
	if err := s.recorder.Observe(run); err != nil {
		return err
	}
	if err := s.recorder.WriteTextfile(s.path); err != nil {
		return err
	}
	s.logger.Debug("metrics written", "path", s.path)
	return nil
}

// Deps holds the components of the default pipeline.
type Deps struct {
	// Acquirer downloads the document. Required.
	Acquirer Acquirer

	// Counter counts the tokens. Nil uses mapreduce.NewCounter().
	Counter *mapreduce.Counter

	// Writer renders the result. Required.
	Writer report.Writer

	// ExtractMode selects the text extraction. Empty means raw.
	ExtractMode extract.Mode

	// MetricsFile enables the metrics step when set.
	MetricsFile string

	// Logger is passed to the pipeline and its steps.
	Logger *slog.Logger
}

// DefaultPipeline creates the pipeline
// acquire → extract → normalize → count → report (→ metrics).
func DefaultPipeline(deps Deps, opts ...Option) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mode := deps.ExtractMode
	if mode == "" {
		mode = extract.ModeRaw
	}

	p := New(append([]Option{WithLogger(logger)}, opts...)...)
	p.AddSteps(
		NewAcquireStep(deps.Acquirer),
		NewExtractStep(mode, logger),
		NewNormalizeStep(logger),
		NewCountStep(deps.Counter),
		NewReportStep(deps.Writer, logger),
	)
	if deps.MetricsFile != "" {
		p.AddStep(NewMetricsStep(nil, deps.MetricsFile, logger))
	}
	return p
}
