package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"github.com/nao1215/topwords/internal/model"
)

const (
	// DefaultChartWidth is the length of the longest bar.
	DefaultChartWidth = 50

	// barRune draws the bars.
	barRune = "█"

	xAxisLabel = "Frequency"
	yAxisLabel = "Words"
)

// ChartWriter draws the ranked result as a horizontal bar chart.
// The most frequent word is at the top.
type ChartWriter struct {
	baseWriter

	width int
	color bool
	title string
}

// ChartWriterOption configures a ChartWriter.
type ChartWriterOption func(*ChartWriter)

// WithChartWidth sets the length of the longest bar. Non-positive values are ignored.
func WithChartWidth(width int) ChartWriterOption {
	return func(w *ChartWriter) {
		if width > 0 {
			w.width = width
		}
	}
}

// WithColor enables colored bars.
func WithColor(enabled bool) ChartWriterOption {
	return func(w *ChartWriter) {
		w.color = enabled
	}
}

// WithTitle overrides the chart title.
func WithTitle(title string) ChartWriterOption {
	return func(w *ChartWriter) {
		w.title = title
	}
}

// NewChartWriter creates a ChartWriter that outputs to the given writer.
func NewChartWriter(output io.Writer, opts ...ChartWriterOption) *ChartWriter {
	w := &ChartWriter{
		baseWriter: newBaseWriter(output),
		width:      DefaultChartWidth,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write draws the chart for run.Ranked.
func (w *ChartWriter) Write(run *model.Run) (int, error) {
	return io.WriteString(w.output, w.render(run))
}

func (w *ChartWriter) render(run *model.Run) string {
	ranked := run.Ranked

	title := w.title
	if title == "" {
		title = fmt.Sprintf("Top %d Most Frequent Words", len(ranked))
	}

	labelWidth := runewidth.StringWidth(yAxisLabel)
	for _, p := range ranked {
		labelWidth = max(labelWidth, runewidth.StringWidth(p.Word))
	}

	bar := color.New(color.FgCyan)
	if w.color {
		bar.EnableColor()
	} else {
		bar.DisableColor()
	}

	maxCount := ranked.MaxCount()
	indent := strings.Repeat(" ", labelWidth+1)

	var sb strings.Builder
	sb.WriteString(title)
	sb.WriteString("\n\n")
	sb.WriteString(runewidth.FillRight(yAxisLabel, labelWidth))
	sb.WriteString("\n")

	for _, p := range ranked {
		n := barLength(p.Count, maxCount, w.width)
		sb.WriteString(runewidth.FillRight(p.Word, labelWidth))
		sb.WriteString(" │")
		sb.WriteString(bar.Sprint(strings.Repeat(barRune, n)))
		sb.WriteString(" ")
		sb.WriteString(strconv.Itoa(p.Count))
		sb.WriteString("\n")
	}

	sb.WriteString(indent)
	sb.WriteString("└")
	sb.WriteString(strings.Repeat("─", w.width+1))
	sb.WriteString("\n")
	sb.WriteString(indent)
	sb.WriteString(" ")
	sb.WriteString(xAxisLabel)
	sb.WriteString("\n")

	return sb.String()
}

// barLength scales count to width relative to maxCount.
// Any positive count gets at least one block.
func barLength(count, maxCount, width int) int {
	if count <= 0 || maxCount <= 0 {
		return 0
	}
	n := (count*width + maxCount/2) / maxCount
	return max(n, 1)
}
