// Package parser provides sequential log file reading.
package parser

// LogLine is a single raw line read from a log file.
type LogLine struct {
	// Content is the raw line text without the trailing newline.
	Content string

	// Source is the file path this line came from.
	Source string

	// LineNum is the 1-based line number in the source file.
	LineNum int
}
