package model

import (
	"time"
)

// CountPair is a distinct word together with its total number of occurrences.
type CountPair struct {
	// Word is the normalized token. It is unique within a reduction.
	Word string `json:"word"`

	// Count is the number of times Word occurred among the tokens.
	Count int `json:"count"`
}

// RankedResult is an ordered sequence of at most N count pairs,
// sorted by count descending with ties broken by word ascending.
type RankedResult []CountPair

// Words returns the words of the result in rank order.
func (r RankedResult) Words() []string {
	words := make([]string, len(r))
	for i, p := range r {
		words[i] = p.Word
	}
	return words
}

// MaxCount returns the largest count in the result, or 0 if it is empty.
func (r RankedResult) MaxCount() int {
	maxCount := 0
	for _, p := range r {
		if p.Count > maxCount {
			maxCount = p.Count
		}
	}
	return maxCount
}

// Total returns the sum of all counts in the result.
func (r RankedResult) Total() int {
	total := 0
	for _, p := range r {
		total += p.Count
	}
	return total
}

// Stage names used as keys of Run.Durations.
const (
	StageFetch     = "fetch"
	StageExtract   = "extract"
	StageNormalize = "normalize"
	StageMap       = "map"
	StageShuffle   = "shuffle"
	StageReduce    = "reduce"
	StageSort      = "sort"
)

// Run holds everything known about a single invocation.
// It is created by NewRun and filled in by the pipeline steps in order.
type Run struct {
	// SourceURL is the URL the text is fetched from.
	SourceURL string `json:"source_url"`

	// TopN is the number of ranked entries to keep.
	TopN int `json:"top_n"`

	// StartedAt is the time the run was created.
	StartedAt time.Time `json:"started_at"`

	// ContentType is the Content-Type header of the fetched document.
	ContentType string `json:"content_type,omitempty"`

	// FinalURL is the URL of the document after redirects.
	FinalURL string `json:"final_url,omitempty"`

	// Text is the raw (or extracted) document text.
	Text string `json:"-"`

	// Tokens is the normalized token sequence.
	Tokens []string `json:"-"`

	// TotalTokens is the number of tokens produced by the normalizer.
	TotalTokens int `json:"total_tokens"`

	// DistinctWords is the number of count pairs in the full reduction.
	DistinctWords int `json:"distinct_words"`

	// Counts is the full reduction in rank order.
	Counts []CountPair `json:"-"`

	// Ranked is the truncated result that gets reported.
	Ranked RankedResult `json:"ranked"`

	// Durations records how long each stage took.
	Durations map[string]time.Duration `json:"durations,omitempty"`

	// PerformedSteps lists the pipeline steps that finished, in order.
	PerformedSteps []string `json:"performed_steps,omitempty"`

	// Error is the error that ended the run, if any.
	Error error `json:"-"`

	// ErrorMessage is Error rendered as a string for serialization.
	ErrorMessage string `json:"error,omitempty"`
}

// NewRun creates a Run for the given source URL and top-N.
func NewRun(sourceURL string, topN int) *Run {
	return &Run{
		SourceURL: sourceURL,
		TopN:      topN,
		StartedAt: time.Now(),
		Durations: make(map[string]time.Duration),
	}
}

// RecordDuration stores the duration of a stage.
func (r *Run) RecordDuration(stage string, d time.Duration) {
	if r.Durations == nil {
		r.Durations = make(map[string]time.Duration)
	}
	r.Durations[stage] = d
}

// HasResults reports whether there is anything to report.
func (r *Run) HasResults() bool {
	return len(r.Ranked) > 0
}

// Failed reports whether the run ended with an error.
func (r *Run) Failed() bool {
	return r.Error != nil
}
