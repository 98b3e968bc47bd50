package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/topwords/internal/model"
)

// newTestRun returns the run of "the cat sat on the mat the cat ran" with n=3.
func newTestRun() *model.Run {
	run := model.NewRun("https://example.com/cat.txt", 3)
	run.StartedAt = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	run.TotalTokens = 9
	run.DistinctWords = 6
	run.Ranked = model.RankedResult{
		{Word: "the", Count: 3},
		{Word: "cat", Count: 2},
		{Word: "mat", Count: 1},
	}
	run.RecordDuration(model.StageMap, 1500*time.Microsecond)
	run.RecordDuration(model.StageReduce, 250*time.Microsecond)
	return run
}

type stubWriter struct {
	n     int
	err   error
	calls int
}

func (s *stubWriter) Write(_ *model.Run) (int, error) {
	s.calls++
	return s.n, s.err
}

func TestMultiWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes to all writers and sums bytes", func(t *testing.T) {
		t.Parallel()

		a, b := &stubWriter{n: 3}, &stubWriter{n: 4}
		n, err := NewMultiWriter(a, b).Write(newTestRun())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != 7 || a.calls != 1 || b.calls != 1 {
			t.Errorf("unexpected result n=%d calls=%d,%d", n, a.calls, b.calls)
		}
	})

	t.Run("stops on first error", func(t *testing.T) {
		t.Parallel()

		errWrite := errors.New("disk full")
		a, b := &stubWriter{n: 2, err: errWrite}, &stubWriter{n: 4}
		n, err := NewMultiWriter(a, b).Write(newTestRun())
		if !errors.Is(err, errWrite) {
			t.Errorf("expected write error, got %v", err)
		}
		if n != 2 || b.calls != 0 {
			t.Errorf("expected second writer to be skipped, n=%d calls=%d", n, b.calls)
		}
	})
}

func TestLogReporter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	n, err := NewLogReporter(logger).Write(newTestRun())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 0 {
		t.Errorf("expected 0 bytes, got %d", n)
	}

	out := buf.String()
	want := []string{`"top 3 words by frequency:"`, `"the: 3"`, `"cat: 2"`, `"mat: 1"`}
	last := -1
	for _, w := range want {
		i := strings.Index(out, w)
		if i < 0 {
			t.Fatalf("expected %s in logs: %s", w, out)
		}
		if i < last {
			t.Errorf("expected %s after the previous line", w)
		}
		last = i
	}
	if got := strings.Count(out, "level=INFO"); got != 4 {
		t.Errorf("expected 4 info lines, got %d", got)
	}
}

func TestChartWriter(t *testing.T) {
	t.Parallel()

	t.Run("plain chart", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewChartWriter(&buf, WithChartWidth(6)).Write(newTestRun()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := "Top 3 Most Frequent Words\n" +
			"\n" +
			"Words\n" +
			"the   │██████ 3\n" +
			"cat   │████ 2\n" +
			"mat   │██ 1\n" +
			"      └───────\n" +
			"       Frequency\n"
		if got := buf.String(); got != want {
			t.Errorf("unexpected chart\n got:\n%s\nwant:\n%s", got, want)
		}
	})

	t.Run("wide characters are aligned by display width", func(t *testing.T) {
		t.Parallel()

		run := model.NewRun("https://example.com", 2)
		run.Ranked = model.RankedResult{{Word: "日本語", Count: 2}, {Word: "a", Count: 1}}

		var buf bytes.Buffer
		if _, err := NewChartWriter(&buf, WithChartWidth(4), WithTitle("words")).Write(run); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		lines := strings.Split(buf.String(), "\n")
		if lines[0] != "words" {
			t.Errorf("expected custom title, got %q", lines[0])
		}
		if lines[3] != "日本語 │████ 2" {
			t.Errorf("unexpected row %q", lines[3])
		}
		if lines[4] != "a      │██ 1" {
			t.Errorf("unexpected row %q", lines[4])
		}
	})

	t.Run("colored bars", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewChartWriter(&buf, WithColor(true)).Write(newTestRun()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "\x1b[36m") {
			t.Errorf("expected ANSI color in %q", buf.String())
		}
	})
}

func TestBarLength(t *testing.T) {
	t.Parallel()

	tests := []struct {
		count, maxCount, width, want int
	}{
		{count: 10, maxCount: 10, width: 50, want: 50},
		{count: 5, maxCount: 10, width: 50, want: 25},
		{count: 1, maxCount: 1000, width: 50, want: 1},
		{count: 0, maxCount: 10, width: 50, want: 0},
		{count: 3, maxCount: 0, width: 50, want: 0},
	}
	for _, tt := range tests {
		if got := barLength(tt.count, tt.maxCount, tt.width); got != tt.want {
			t.Errorf("barLength(%d, %d, %d) = %d, want %d", tt.count, tt.maxCount, tt.width, got, tt.want)
		}
	}
}

func TestJSONWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	n, err := NewJSONWriter(&buf, WithPrettyPrint(), WithVersion("v1.0.0")).Write(newTestRun())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != buf.Len() {
		t.Errorf("expected %d bytes, got %d", buf.Len(), n)
	}
	if !strings.HasSuffix(buf.String(), "}\n") || !strings.Contains(buf.String(), "\n  \"version\"") {
		t.Errorf("expected indented output with trailing newline: %s", buf.String())
	}

	var got struct {
		Version string `json:"version"`
		Run     struct {
			SourceURL   string `json:"source_url"`
			TotalTokens int    `json:"total_tokens"`
			Ranked      []struct {
				Word  string `json:"word"`
				Count int    `json:"count"`
			} `json:"ranked"`
		} `json:"run"`
		DurationsMillis map[string]float64 `json:"durations_ms"`
	}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if got.Version != "v1.0.0" || got.Run.SourceURL != "https://example.com/cat.txt" || got.Run.TotalTokens != 9 {
		t.Errorf("unexpected document: %+v", got)
	}
	if len(got.Run.Ranked) != 3 || got.Run.Ranked[0].Word != "the" || got.Run.Ranked[0].Count != 3 {
		t.Errorf("unexpected ranking: %+v", got.Run.Ranked)
	}
	if got.DurationsMillis[model.StageMap] != 1.5 {
		t.Errorf("expected map duration 1.5ms, got %v", got.DurationsMillis[model.StageMap])
	}
}

func TestJSONWriterCompact(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if _, err := NewJSONWriter(&buf).Write(newTestRun()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Count(buf.String(), "\n") != 1 {
		t.Errorf("expected a single line, got %q", buf.String())
	}
}

func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("full report", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		n, err := NewMarkdownWriter(&buf, 10).Write(newTestRun())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n == 0 {
			t.Error("expected bytes to be written")
		}

		out := buf.String()
		for _, want := range []string{
			"# Word Frequency Report",
			"https://example.com/cat.txt",
			"## Ranking",
			"`the`",
			"33.33%",
			"## Distribution",
			"```mermaid",
			"pie",
			"## Bar Chart",
			"the   │██████████ 3",
			"## Stage Durations",
			"1.5ms",
			"topwords",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("expected %q in markdown:\n%s", want, out)
			}
		}
	})

	t.Run("empty ranking", func(t *testing.T) {
		t.Parallel()

		run := model.NewRun("https://example.com/empty.txt", 10)
		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf, 0).Write(run); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		out := buf.String()
		if !strings.Contains(out, "no words") {
			t.Errorf("expected empty notice:\n%s", out)
		}
		if strings.Contains(out, "```mermaid") {
			t.Errorf("did not expect a pie chart:\n%s", out)
		}
	})
}

func TestShare(t *testing.T) {
	t.Parallel()

	if got := share(1, 4); got != "25.00%" {
		t.Errorf("share(1, 4) = %q", got)
	}
	if got := share(1, 0); got != "-" {
		t.Errorf("share(1, 0) = %q", got)
	}
}
