// Package extract turns a downloaded page into the text that is counted.
//
// The default mode uses the body verbatim. The text and article modes
// strip markup from HTML documents; any other content type passes
// through unchanged.
package extract
