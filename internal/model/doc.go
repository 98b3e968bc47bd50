// Package model defines the data structures shared by the topwords packages.
//
// This package contains the following main types:
//   - CountPair: a word and the number of times it occurred
//   - RankedResult: the top-N count pairs in display order
//   - Run: the state of a single invocation as it moves through the pipeline
package model
