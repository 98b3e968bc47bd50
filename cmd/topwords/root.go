package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nao1215/topwords/internal/config"
)

// errReported marks errors that have already been logged.
var errReported = errors.New("already reported")

// NewRootCmd creates the root command for topwords.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "topwords [url]",
		Short: "Count the most frequent words of a text on the web",
		Long: `topwords downloads a text document, normalizes it and counts word
frequencies with a map-shuffle-reduce pipeline running on a worker pool.
The most frequent words are logged and drawn as a horizontal bar chart.

Without an argument the text at ` + config.DefaultURL + ` is counted.

Examples:
  # Top 10 words of the default text
  topwords

  # Top 25 words of another document
  topwords -n 25 https://www.gutenberg.org/cache/epub/2701/pg2701.txt

  # Count the visible text of an HTML page and write a Markdown report
  topwords --extract text -f markdown -o report.md https://go.dev/doc/effective_go

  # Route the request through a SOCKS5 proxy
  topwords --proxy 127.0.0.1:9050 https://example.com/book.txt`,
		Args:          cobra.MaximumNArgs(1),
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runRootCmd,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().BoolP("quiet", "q", false, "Only log errors")

	addCountFlags(cmd)

	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// addCountFlags registers the flags of the word count.
func addCountFlags(cmd *cobra.Command) {
	cmd.Flags().IntP("top", "n", config.DefaultTopN,
		"Number of most frequent words to report")
	cmd.Flags().IntP("workers", "w", 0,
		"Number of concurrent map and reduce workers (0: number of CPUs)")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for downloading the text")
	cmd.Flags().String("proxy", "",
		"SOCKS5 proxy address in host:port format")
	cmd.Flags().String("user-agent", "",
		"User-Agent header (default: topwords/<version>)")
	cmd.Flags().String("extract", config.ExtractRaw,
		"How to turn the document into text: raw, text or article")
	cmd.Flags().StringP("format", "f", config.FormatChart,
		"Report format: chart, markdown or json")
	cmd.Flags().StringP("output", "o", "",
		"Write the report to a file instead of stdout")
	cmd.Flags().Int("chart-width", config.DefaultChartWidth,
		"Length of the longest bar in the chart")
	cmd.Flags().Bool("no-color", false,
		"Disable colored output")
	cmd.Flags().String("metrics-file", "",
		"Write Prometheus metrics of the run to a textfile")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .topwords.yaml in current, XDG config or home directory)")
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
