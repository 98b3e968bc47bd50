// Package main provides the entry point for the topwords CLI.
//
// topwords downloads a text, counts its words with a small map-shuffle-reduce
// pipeline and draws the most frequent ones as a bar chart.
//
// Usage:
//
//	topwords [url]
//	topwords -n 20 https://example.com/book.txt
//
// See --help for all available options.
package main

// main is the entry point for topwords.
func main() {
	Execute()
}
