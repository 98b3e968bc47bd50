// Package pipeline runs the stages of a word count in sequence.
//
// Each stage is a Step that receives the current run and fills in its
// part: acquiring the document, extracting text, normalizing it,
// counting words, reporting and exporting metrics. The pipeline stops
// at the first failing step. A step that has already reported its own
// failure returns ErrHalt so that the failure is not logged twice.
package pipeline
