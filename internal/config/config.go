package config

import (
	"net/url"
	"path/filepath"
	"slices"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultURL is the text fetched when no URL is given.
	DefaultURL = "https://gutenberg.net.au/ebooks01/0100021.txt"

	// DefaultTopN is the number of ranked words reported.
	DefaultTopN = 10

	// DefaultTimeout bounds the whole HTTP request including the body read.
	DefaultTimeout = 60 * time.Second

	// DefaultUserAgent identifies topwords in HTTP requests.
	// The CLI appends the build version.
	DefaultUserAgent = "topwords"

	// DefaultMaxBodySize limits the response body that is read.
	// Longer bodies are truncated.
	DefaultMaxBodySize = 16 * 1024 * 1024 // 16MiB

	// DefaultChartWidth is the width of the longest bar in characters.
	DefaultChartWidth = 50

	// AppName is the application name used for XDG directory paths.
	AppName = "topwords"
)

// Report formats.
const (
	FormatChart    = "chart"
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
)

// Extraction modes. They mirror the modes of the extract package.
const (
	ExtractRaw     = "raw"
	ExtractText    = "text"
	ExtractArticle = "article"
)

// Formats lists the accepted values of Config.Format.
var Formats = []string{FormatChart, FormatMarkdown, FormatJSON}

// ExtractModes lists the accepted values of Config.Extract.
var ExtractModes = []string{ExtractRaw, ExtractText, ExtractArticle}

// Config holds all options of a single run.
// It is built from defaults, overlaid with the configuration file and
// then with explicitly set CLI flags, and passed down explicitly.
type Config struct {
	// URL is the absolute http(s) URL of the text to count.
	URL string

	// TopN is the number of ranked entries to keep. Must be positive.
	TopN int

	// Workers bounds the number of concurrent map and reduce units.
	// Zero means runtime.GOMAXPROCS(0).
	Workers int

	// Timeout bounds the HTTP request.
	Timeout time.Duration

	// ProxyAddress is an optional SOCKS5 proxy in "host:port" format.
	ProxyAddress string

	// UserAgent is the User-Agent header of the request.
	UserAgent string

	// MaxBodySize is the maximum number of body bytes read.
	MaxBodySize int64

	// Extract selects how the document is turned into text: raw, text or article.
	Extract string

	// Format selects the report: chart, markdown or json.
	Format string

	// OutputFile receives the report instead of stdout when set.
	OutputFile string

	// ChartWidth is the width of the longest bar.
	ChartWidth int

	// NoColor disables colored logs and chart bars.
	NoColor bool

	// MetricsFile receives a Prometheus textfile when set.
	MetricsFile string

	// Verbose enables debug logs.
	Verbose bool

	// Quiet limits logs to errors.
	Quiet bool

	// ConfigFilePath is the configuration file that was applied, if any.
	ConfigFilePath string
}

// NewConfig creates a Config with default values.
func NewConfig() *Config {
	return &Config{
		URL:         DefaultURL,
		TopN:        DefaultTopN,
		Timeout:     DefaultTimeout,
		UserAgent:   DefaultUserAgent,
		MaxBodySize: DefaultMaxBodySize,
		Extract:     ExtractRaw,
		Format:      FormatChart,
		ChartWidth:  DefaultChartWidth,
	}
}

// XDGConfigDir returns the XDG config directory for topwords.
// On Linux: ~/.config/topwords
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks the configuration and returns the first problem found.
func (c *Config) Validate() error {
	if c.URL == "" {
		return ErrNoURL
	}
	u, err := url.Parse(c.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidURL
	}

	if c.TopN <= 0 {
		return ErrInvalidTopN
	}

	if c.Workers < 0 {
		return ErrInvalidWorkers
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.MaxBodySize <= 0 {
		return ErrInvalidMaxBodySize
	}

	if c.ChartWidth <= 0 {
		return ErrInvalidChartWidth
	}

	if !slices.Contains(ExtractModes, c.Extract) {
		return ErrInvalidExtractMode
	}

	if !slices.Contains(Formats, c.Format) {
		return ErrInvalidFormat
	}

	return nil
}
