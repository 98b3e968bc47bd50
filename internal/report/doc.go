// Package report renders the ranked word frequencies of a run.
//
// Writers implement the Writer interface and can be composed with
// MultiWriter:
//   - LogReporter: one log line per ranked word
//   - ChartWriter: horizontal bar chart for the terminal
//   - MarkdownWriter: tables, a mermaid pie chart and a text bar chart
//   - JSONWriter: the run as JSON
package report
