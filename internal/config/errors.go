package config

import "errors"

// Configuration validation errors returned by Config.Validate.
var (
	// ErrNoURL is returned when the source URL is empty.
	ErrNoURL = errors.New("no url specified")

	// ErrInvalidURL is returned when the source URL is not an absolute http or https URL.
	ErrInvalidURL = errors.New("invalid url: must be an absolute http or https url")

	// ErrInvalidTopN is returned when the number of ranked words is not positive.
	ErrInvalidTopN = errors.New("invalid top: must be positive")

	// ErrInvalidWorkers is returned when the worker count is negative.
	// Zero selects the number of CPUs.
	ErrInvalidWorkers = errors.New("invalid workers: must be non-negative")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidMaxBodySize is returned when the body limit is not positive.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be positive")

	// ErrInvalidChartWidth is returned when the chart width is not positive.
	ErrInvalidChartWidth = errors.New("invalid chart width: must be positive")

	// ErrInvalidExtractMode is returned for an unknown extraction mode.
	ErrInvalidExtractMode = errors.New("invalid extract mode: must be raw, text or article")

	// ErrInvalidFormat is returned for an unknown report format.
	ErrInvalidFormat = errors.New("invalid format: must be chart, markdown or json")
)
