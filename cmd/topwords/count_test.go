package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/topwords/internal/config"
	"github.com/nao1215/topwords/internal/pipeline"
	"github.com/nao1215/topwords/internal/report"
)

const sampleText = "The cat sat on the mat. The cat!"

// writeConfig writes content to a config file in a temporary directory.
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".topwords.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

// parseConfig parses args with the root command and builds its configuration.
func parseConfig(t *testing.T, args ...string) (*config.Config, error) {
	t.Helper()
	cmd := NewRootCmd()
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("failed to parse flags: %v", err)
	}
	return buildConfig(cmd, cmd.Flags().Args())
}

func newTextServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprint(w, body)
	}))
	t.Cleanup(ts.Close)
	return ts
}

// execute runs the root command and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// assertOnlyFile fails unless name is the only entry of dir.
func assertOnlyFile(t *testing.T, dir, name string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("failed to read dir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != name {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("expected only %s in %s, got %v", name, dir, names)
	}
}

func TestBuildConfig(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()
		cfg, err := parseConfig(t, "-c", writeConfig(t, "{}\n"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.URL != config.DefaultURL {
			t.Errorf("expected URL %q, got %q", config.DefaultURL, cfg.URL)
		}
		if cfg.TopN != config.DefaultTopN {
			t.Errorf("expected top %d, got %d", config.DefaultTopN, cfg.TopN)
		}
		if cfg.Timeout != config.DefaultTimeout {
			t.Errorf("expected timeout %v, got %v", config.DefaultTimeout, cfg.Timeout)
		}
		if want := "topwords/" + getVersion(); cfg.UserAgent != want {
			t.Errorf("expected user agent %q, got %q", want, cfg.UserAgent)
		}
	})

	t.Run("positional URL", func(t *testing.T) {
		t.Parallel()
		cfg, err := parseConfig(t, "-c", writeConfig(t, "{}\n"), "https://example.com/a.txt")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.URL != "https://example.com/a.txt" {
			t.Errorf("unexpected URL %q", cfg.URL)
		}
	})

	t.Run("file overrides defaults", func(t *testing.T) {
		t.Parallel()
		path := writeConfig(t, "url: https://example.com/file.txt\ntop: 5\ntimeout: 5s\nformat: json\nuserAgent: custom\n")
		cfg, err := parseConfig(t, "-c", path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.URL != "https://example.com/file.txt" {
			t.Errorf("unexpected URL %q", cfg.URL)
		}
		if cfg.TopN != 5 {
			t.Errorf("expected top 5, got %d", cfg.TopN)
		}
		if cfg.Timeout != 5*time.Second {
			t.Errorf("expected timeout 5s, got %v", cfg.Timeout)
		}
		if cfg.Format != config.FormatJSON {
			t.Errorf("expected format json, got %q", cfg.Format)
		}
		if cfg.UserAgent != "custom" {
			t.Errorf("expected user agent custom, got %q", cfg.UserAgent)
		}
		if cfg.ConfigFilePath != path {
			t.Errorf("expected config path %q, got %q", path, cfg.ConfigFilePath)
		}
	})

	t.Run("flags override file", func(t *testing.T) {
		t.Parallel()
		path := writeConfig(t, "top: 5\nformat: json\nworkers: 2\n")
		cfg, err := parseConfig(t, "-c", path, "-n", "7", "-w", "3", "-v")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.TopN != 7 {
			t.Errorf("expected top 7, got %d", cfg.TopN)
		}
		if cfg.Workers != 3 {
			t.Errorf("expected 3 workers, got %d", cfg.Workers)
		}
		if cfg.Format != config.FormatJSON {
			t.Errorf("expected format from file, got %q", cfg.Format)
		}
		if !cfg.Verbose {
			t.Error("expected verbose")
		}
	})

	t.Run("missing explicit config file", func(t *testing.T) {
		t.Parallel()
		_, err := parseConfig(t, "-c", filepath.Join(t.TempDir(), "missing.yaml"))
		if !errors.Is(err, config.ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{"zero top", []string{"-n", "0"}, config.ErrInvalidTopN},
		{"negative workers", []string{"--workers=-1"}, config.ErrInvalidWorkers},
		{"relative URL", []string{"book.txt"}, config.ErrInvalidURL},
		{"unknown format", []string{"-f", "pdf"}, config.ErrInvalidFormat},
		{"unknown extract mode", []string{"--extract", "ocr"}, config.ErrInvalidExtractMode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			args := append([]string{"-c", writeConfig(t, "{}\n")}, tt.args...)
			_, err := parseConfig(t, args...)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestRunRootCmd(t *testing.T) {
	t.Parallel()

	t.Run("prints chart and logs ranking", func(t *testing.T) {
		t.Parallel()
		ts := newTextServer(t, sampleText)

		stdout, stderr, err := execute(t, "-c", writeConfig(t, "{}\n"), "--no-color", "-n", "3", ts.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v\nstderr: %s", err, stderr)
		}

		if !strings.Contains(stdout, "Top 3 Most Frequent Words") {
			t.Errorf("expected chart title, got:\n%s", stdout)
		}
		for _, row := range []string{"the   │", "cat   │", "mat   │"} {
			if !strings.Contains(stdout, row) {
				t.Errorf("expected chart row %q, got:\n%s", row, stdout)
			}
		}
		for _, line := range []string{"top 3 words by frequency:", "the: 3", "cat: 2", "mat: 1"} {
			if !strings.Contains(stderr, line) {
				t.Errorf("expected log line %q, got:\n%s", line, stderr)
			}
		}
		if strings.Contains(stderr, "sat: 1") {
			t.Errorf("expected only the top 3 words, got:\n%s", stderr)
		}
	})

	t.Run("fetch failure logs one error", func(t *testing.T) {
		t.Parallel()
		ts := httptest.NewServer(http.NotFoundHandler())
		t.Cleanup(ts.Close)

		stdout, stderr, err := execute(t, "-c", writeConfig(t, "{}\n"), "--no-color", ts.URL)
		if !errors.Is(err, errReported) {
			t.Fatalf("expected reported error, got %v", err)
		}
		if !errors.Is(err, pipeline.ErrHalt) {
			t.Errorf("expected ErrHalt, got %v", err)
		}
		if got := strings.Count(stderr, " - ERROR - "); got != 1 {
			t.Errorf("expected exactly one ERROR line, got %d:\n%s", got, stderr)
		}
		if stdout != "" {
			t.Errorf("expected no chart, got:\n%s", stdout)
		}
	})

	t.Run("empty document", func(t *testing.T) {
		t.Parallel()
		ts := newTextServer(t, "... !!! ---")

		stdout, stderr, err := execute(t, "-c", writeConfig(t, "{}\n"), "--no-color", ts.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if stdout != "" {
			t.Errorf("expected no chart, got:\n%s", stdout)
		}
		if !strings.Contains(stderr, "no words to visualize") {
			t.Errorf("expected notice, got:\n%s", stderr)
		}
	})

	t.Run("quiet suppresses info logs", func(t *testing.T) {
		t.Parallel()
		ts := newTextServer(t, sampleText)

		_, stderr, err := execute(t, "-c", writeConfig(t, "{}\n"), "--no-color", "-q", ts.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if stderr != "" {
			t.Errorf("expected no logs, got:\n%s", stderr)
		}
	})

	t.Run("json output", func(t *testing.T) {
		t.Parallel()
		ts := newTextServer(t, sampleText)

		stdout, _, err := execute(t, "-c", writeConfig(t, "{}\n"), "-f", "json", "-n", "2", ts.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var got report.JSONReport
		if err := json.Unmarshal([]byte(stdout), &got); err != nil {
			t.Fatalf("invalid JSON: %v\n%s", err, stdout)
		}
		if got.Run == nil || len(got.Run.Ranked) != 2 {
			t.Fatalf("expected 2 ranked words, got %+v", got.Run)
		}
		if got.Run.Ranked[0].Word != "the" || got.Run.Ranked[0].Count != 3 {
			t.Errorf("unexpected first entry %+v", got.Run.Ranked[0])
		}
		if got.Run.TotalTokens != 8 {
			t.Errorf("expected 8 tokens, got %d", got.Run.TotalTokens)
		}
	})

	t.Run("markdown report and metrics files", func(t *testing.T) {
		t.Parallel()
		ts := newTextServer(t, sampleText)
		dir := t.TempDir()
		reportPath := filepath.Join(dir, "out", "report.md")
		metricsPath := filepath.Join(dir, "topwords.prom")

		stdout, _, err := execute(t, "-c", writeConfig(t, "{}\n"), "--no-color",
			"-f", "markdown", "-o", reportPath, "--metrics-file", metricsPath, ts.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if stdout != "" {
			t.Errorf("expected nothing on stdout, got:\n%s", stdout)
		}

		md, err := os.ReadFile(reportPath) //nolint:gosec // test file
		if err != nil {
			t.Fatalf("failed to read report: %v", err)
		}
		if !strings.Contains(string(md), "Word Frequency Report") {
			t.Errorf("unexpected report:\n%s", md)
		}

		prom, err := os.ReadFile(metricsPath) //nolint:gosec // test file
		if err != nil {
			t.Fatalf("failed to read metrics: %v", err)
		}
		if !strings.Contains(string(prom), `topwords_word_frequency{word="the"} 3`) {
			t.Errorf("unexpected metrics:\n%s", prom)
		}
	})

	t.Run("failed run keeps existing report file", func(t *testing.T) {
		t.Parallel()
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}))
		t.Cleanup(ts.Close)

		dir := t.TempDir()
		reportPath := filepath.Join(dir, "report.txt")
		if err := os.WriteFile(reportPath, []byte("previous report"), 0600); err != nil {
			t.Fatal(err)
		}

		_, stderr, err := execute(t, "-c", writeConfig(t, "{}\n"), "--no-color", "-o", reportPath, ts.URL)
		if !errors.Is(err, errReported) {
			t.Fatalf("expected reported error, got %v", err)
		}
		if got := strings.Count(stderr, " - ERROR - "); got != 1 {
			t.Errorf("expected exactly one ERROR line, got %d:\n%s", got, stderr)
		}

		content, err := os.ReadFile(reportPath) //nolint:gosec // test file
		if err != nil {
			t.Fatalf("failed to read report: %v", err)
		}
		if string(content) != "previous report" {
			t.Errorf("expected existing report to be kept, got %q", content)
		}
		assertOnlyFile(t, dir, "report.txt")
	})

	t.Run("empty document keeps existing report file", func(t *testing.T) {
		t.Parallel()
		ts := newTextServer(t, "... !!! ---")

		dir := t.TempDir()
		reportPath := filepath.Join(dir, "report.txt")
		if err := os.WriteFile(reportPath, []byte("previous report"), 0600); err != nil {
			t.Fatal(err)
		}

		if _, _, err := execute(t, "-c", writeConfig(t, "{}\n"), "--no-color", "-o", reportPath, ts.URL); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		content, err := os.ReadFile(reportPath) //nolint:gosec // test file
		if err != nil {
			t.Fatalf("failed to read report: %v", err)
		}
		if string(content) != "previous report" {
			t.Errorf("expected existing report to be kept, got %q", content)
		}
		assertOnlyFile(t, dir, "report.txt")
	})

	t.Run("successful run replaces report file", func(t *testing.T) {
		t.Parallel()
		ts := newTextServer(t, sampleText)

		dir := t.TempDir()
		reportPath := filepath.Join(dir, "report.txt")
		if err := os.WriteFile(reportPath, []byte("previous report"), 0600); err != nil {
			t.Fatal(err)
		}

		if _, _, err := execute(t, "-c", writeConfig(t, "{}\n"), "--no-color", "-o", reportPath, ts.URL); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		content, err := os.ReadFile(reportPath) //nolint:gosec // test file
		if err != nil {
			t.Fatalf("failed to read report: %v", err)
		}
		if !strings.Contains(string(content), "Most Frequent Words") {
			t.Errorf("expected chart in report, got %q", content)
		}
		assertOnlyFile(t, dir, "report.txt")
	})

	t.Run("invalid proxy is critical", func(t *testing.T) {
		t.Parallel()

		_, stderr, err := execute(t, "-c", writeConfig(t, "{}\n"), "--no-color", "--proxy", "no-port", "https://example.com/")
		if !errors.Is(err, errReported) {
			t.Fatalf("expected reported error, got %v", err)
		}
		if !strings.Contains(stderr, " - CRITICAL - ") {
			t.Errorf("expected CRITICAL line, got:\n%s", stderr)
		}
	})
}
