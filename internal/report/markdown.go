package report

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/topwords/internal/model"
)

// MarkdownWriter outputs the run as GitHub Flavored Markdown.
type MarkdownWriter struct {
	baseWriter

	chartWidth int
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
// chartWidth is the length of the longest bar in the text chart.
func NewMarkdownWriter(output io.Writer, chartWidth int) *MarkdownWriter {
	if chartWidth <= 0 {
		chartWidth = DefaultChartWidth
	}
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
		chartWidth: chartWidth,
	}
}

// Write outputs the run in Markdown format.
func (w *MarkdownWriter) Write(run *model.Run) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, run)
	w.writeRanking(md, run)
	w.writeDistribution(md, run)
	w.writeBarChart(md, run)
	w.writeDurations(md, run)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, run *model.Run) {
	md.H1("Word Frequency Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Source", run.SourceURL},
			{"Date", run.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Total Words", strconv.Itoa(run.TotalTokens)},
			{"Distinct Words", strconv.Itoa(run.DistinctWords)},
			{"Top N", strconv.Itoa(run.TopN)},
		},
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeRanking(md *markdown.Markdown, run *model.Run) {
	md.H2("Ranking")
	md.PlainText("")

	if !run.HasResults() {
		md.Note("The document contains no words.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(run.Ranked))
	for i, p := range run.Ranked {
		rows[i] = []string{
			strconv.Itoa(i + 1),
			"`" + p.Word + "`",
			strconv.Itoa(p.Count),
			share(p.Count, run.TotalTokens),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Rank", "Word", "Count", "Share"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeDistribution(md *markdown.Markdown, run *model.Run) {
	if !run.HasResults() {
		return
	}

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle(fmt.Sprintf("Top %d Word Distribution", len(run.Ranked))),
		piechart.WithShowData(true),
	)
	for _, p := range run.Ranked {
		chart.LabelAndIntValue(p.Word, uint64(p.Count)) //nolint:gosec // counts are non-negative
	}

	md.H2("Distribution")
	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeBarChart(md *markdown.Markdown, run *model.Run) {
	if !run.HasResults() {
		return
	}

	chart := NewChartWriter(io.Discard, WithChartWidth(w.chartWidth)).render(run)

	md.H2("Bar Chart")
	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightText, chart)
	md.PlainText("")
}

func (w *MarkdownWriter) writeDurations(md *markdown.Markdown, run *model.Run) {
	if len(run.Durations) == 0 {
		return
	}

	stages := slices.Sorted(maps.Keys(run.Durations))
	rows := make([][]string, len(stages))
	for i, stage := range stages {
		rows[i] = []string{stage, run.Durations[stage].Round(time.Microsecond).String()}
	}

	md.H2("Stage Durations")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Stage", "Duration"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [topwords](https://github.com/nao1215/topwords)*")
}

// share formats count as a percentage of total.
func share(count, total int) string {
	if total <= 0 {
		return "-"
	}
	return fmt.Sprintf("%.2f%%", float64(count)*100/float64(total))
}
