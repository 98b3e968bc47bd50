package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/topwords/internal/config"
	"github.com/nao1215/topwords/internal/extract"
	"github.com/nao1215/topwords/internal/fetch"
	tlog "github.com/nao1215/topwords/internal/log"
	"github.com/nao1215/topwords/internal/mapreduce"
	"github.com/nao1215/topwords/internal/model"
	"github.com/nao1215/topwords/internal/pipeline"
	"github.com/nao1215/topwords/internal/report"
)

// runRootCmd counts the words of the given URL, or of the default text.
func runRootCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cfg, cmd.ErrOrStderr())
	if cfg.ConfigFilePath != "" {
		logger.Debug("using configuration file", "path", cfg.ConfigFilePath)
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Warn("received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
	}()

	return runCount(ctx, cfg, logger, cmd.OutOrStdout())
}

// runCount builds the pipeline for cfg and executes it once.
// Failures are logged before they are returned.
func runCount(ctx context.Context, cfg *config.Config, logger *slog.Logger, stdout io.Writer) error {
	client, err := fetch.NewClient(
		fetch.WithTimeout(cfg.Timeout),
		fetch.WithUserAgent(cfg.UserAgent),
		fetch.WithMaxBodySize(cfg.MaxBodySize),
		fetch.WithProxy(cfg.ProxyAddress),
		fetch.WithLogger(logger),
	)
	if err != nil {
		tlog.Critical(logger, "failed to create HTTP client", "error", err)
		return fmt.Errorf("%w: %w", errReported, err)
	}

	mode, err := extract.ParseMode(cfg.Extract)
	if err != nil {
		tlog.Critical(logger, "invalid extract mode", "error", err)
		return fmt.Errorf("%w: %w", errReported, err)
	}

	out := stdout
	var file *reportFile
	if cfg.OutputFile != "" {
		file, err = newReportFile(cfg.OutputFile)
		if err != nil {
			tlog.Critical(logger, "failed to create output file", "path", cfg.OutputFile, "error", err)
			return fmt.Errorf("%w: %w", errReported, err)
		}
		defer file.Discard()
		out = file
	}

	counter := mapreduce.NewCounter(
		mapreduce.WithWorkers(cfg.Workers),
		mapreduce.WithLogger(logger),
	)
	logger.Debug("starting word count",
		"url", cfg.URL,
		"top", cfg.TopN,
		"workers", counter.Workers(),
		"extract", mode.String(),
		"format", cfg.Format,
	)

	p := pipeline.DefaultPipeline(pipeline.Deps{
		Acquirer:    client,
		Counter:     counter,
		Writer:      newReportWriter(cfg, logger, out),
		ExtractMode: mode,
		MetricsFile: cfg.MetricsFile,
		Logger:      logger,
	})

	run := model.NewRun(cfg.URL, cfg.TopN)
	if err := p.Execute(ctx, run); err != nil {
		return fmt.Errorf("%w: %w", errReported, err)
	}
	if file != nil {
		written, err := file.Commit()
		if err != nil {
			logger.Error("failed to write report", "path", cfg.OutputFile, "error", err)
			return fmt.Errorf("%w: %w", errReported, err)
		}
		if written {
			logger.Info("report written", "path", cfg.OutputFile)
		}
	}
	return nil
}

// buildConfig creates the configuration from defaults, the configuration
// file and the flags explicitly set on the command line, in that order.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	if path := config.FindConfigFile(configPath); path != "" {
		cf, err := config.LoadConfigFile(path)
		if err != nil {
			return nil, err
		}
		if err := cf.Apply(cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		cfg.ConfigFilePath = path
	} else if configPath != "" {
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, configPath)
	}

	if len(args) > 0 {
		cfg.URL = args[0]
	}

	if err := applyFlags(cmd, cfg); err != nil {
		return nil, err
	}

	if cfg.UserAgent == config.DefaultUserAgent {
		cfg.UserAgent = config.DefaultUserAgent + "/" + getVersion()
	}
	if os.Getenv("NO_COLOR") != "" {
		cfg.NoColor = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyFlags copies the flags that were set on the command line into cfg.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	var err error

	if flags.Changed("top") {
		if cfg.TopN, err = flags.GetInt("top"); err != nil {
			return err
		}
	}
	if flags.Changed("workers") {
		if cfg.Workers, err = flags.GetInt("workers"); err != nil {
			return err
		}
	}
	if flags.Changed("timeout") {
		if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
			return err
		}
	}
	if flags.Changed("proxy") {
		if cfg.ProxyAddress, err = flags.GetString("proxy"); err != nil {
			return err
		}
	}
	if flags.Changed("user-agent") {
		if cfg.UserAgent, err = flags.GetString("user-agent"); err != nil {
			return err
		}
	}
	if flags.Changed("extract") {
		if cfg.Extract, err = flags.GetString("extract"); err != nil {
			return err
		}
	}
	if flags.Changed("format") {
		if cfg.Format, err = flags.GetString("format"); err != nil {
			return err
		}
	}
	if flags.Changed("chart-width") {
		if cfg.ChartWidth, err = flags.GetInt("chart-width"); err != nil {
			return err
		}
	}
	if flags.Changed("no-color") {
		if cfg.NoColor, err = flags.GetBool("no-color"); err != nil {
			return err
		}
	}

	if cfg.OutputFile, err = flags.GetString("output"); err != nil {
		return err
	}
	if cfg.MetricsFile, err = flags.GetString("metrics-file"); err != nil {
		return err
	}
	if cfg.Verbose, err = flags.GetBool("verbose"); err != nil {
		return err
	}
	if cfg.Quiet, err = flags.GetBool("quiet"); err != nil {
		return err
	}
	return nil
}

// setupLogger creates the logger for a run.
func setupLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	return tlog.NewLogger(w, tlog.Options{
		Level: tlog.LevelFor(cfg.Verbose, cfg.Quiet),
		Color: !cfg.NoColor && tlog.IsTerminal(w),
	})
}

// newReportWriter returns the writer for cfg.Format. The ranked words are
// always logged as well.
func newReportWriter(cfg *config.Config, logger *slog.Logger, out io.Writer) report.Writer {
	var w report.Writer
	switch cfg.Format {
	case config.FormatJSON:
		w = report.NewJSONWriter(out, report.WithPrettyPrint(), report.WithVersion(getVersion()))
	case config.FormatMarkdown:
		w = report.NewMarkdownWriter(out, cfg.ChartWidth)
	default:
		w = report.NewChartWriter(out,
			report.WithChartWidth(cfg.ChartWidth),
			report.WithColor(!cfg.NoColor && tlog.IsTerminal(out)),
		)
	}
	return report.NewMultiWriter(report.NewLogReporter(logger), w)
}

// reportFile collects a report in a temporary file next to path.
// The file at path is only replaced by Commit.
type reportFile struct {
	path    string
	tmp     *os.File
	written int64
	done    bool
}

// newReportFile creates the parent directories of path and the temporary file.
func newReportFile(path string) (*reportFile, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return nil, err
	}
	return &reportFile{path: path, tmp: tmp}, nil
}

// Write appends p to the temporary file.
func (f *reportFile) Write(p []byte) (int, error) {
	n, err := f.tmp.Write(p)
	f.written += int64(n)
	return n, err
}

// Commit renames the temporary file to path and reports whether it did.
// A report without any bytes leaves path untouched.
func (f *reportFile) Commit() (bool, error) {
	f.done = true
	if err := f.tmp.Close(); err != nil {
		_ = os.Remove(f.tmp.Name())
		return false, err
	}
	if f.written == 0 {
		return false, os.Remove(f.tmp.Name())
	}
	if err := os.Rename(f.tmp.Name(), f.path); err != nil {
		_ = os.Remove(f.tmp.Name())
		return false, err
	}
	return true, nil
}

// Discard removes the temporary file unless it was committed.
func (f *reportFile) Discard() {
	if f.done {
		return
	}
	f.done = true
	_ = f.tmp.Close()
	_ = os.Remove(f.tmp.Name())
}
