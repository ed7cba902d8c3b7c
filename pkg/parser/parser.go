package parser

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// FileSource implements LogSource for reading a single log file.
type FileSource struct {
	path string

	file    *os.File
	reader  *bufio.Reader
	lineNum int
	done    bool
}

// NewFileSource creates a LogSource that reads the given file.
// The file is opened lazily on the first call to Next.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Open opens the underlying file immediately so that a missing or
// unreadable path is reported before any line is consumed.
func (s *FileSource) Open() error {
	if s.reader != nil || s.done {
		return nil
	}

	f, err := os.Open(s.path) // #nosec G304 -- user-provided paths are expected
	if err != nil {
		return fmt.Errorf("opening log file %s: %w", s.path, err)
	}

	// UTF-16 input is rejected rather than decoded.
	head := bufio.NewReader(f)
	if prefix, _ := head.Peek(2); hasUTF16BOM(prefix) {
		_ = f.Close()
		return fmt.Errorf("reading %s: line 1: UTF-16 byte order mark: %w", s.path, ErrInvalidEncoding)
	}

	// With UTF-16 excluded, BOMOverride only drops a leading UTF-8 byte order mark.
	r := transform.NewReader(head, unicode.BOMOverride(transform.Nop))

	s.file = f
	s.reader = bufio.NewReader(r)
	s.lineNum = 0

	return nil
}

// Next returns the next line of the file.
// Returns io.EOF when the file has been exhausted.
func (s *FileSource) Next(ctx context.Context) (*LogLine, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if s.done {
		return nil, io.EOF
	}

	if s.reader == nil {
		if err := s.Open(); err != nil {
			return nil, err
		}
	}

	// Lines have no length limit; a final line without a newline is still returned.
	line, err := s.reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("reading %s: %w", s.path, err)
	}
	if line != "" {
		s.lineNum++
		line = strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r")

		if !utf8.ValidString(line) {
			return nil, fmt.Errorf("reading %s: line %d: %w", s.path, s.lineNum, ErrInvalidEncoding)
		}

		return &LogLine{
			Content: line,
			Source:  s.path,
			LineNum: s.lineNum,
		}, nil
	}

	s.done = true
	if err := s.closeFile(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}

// Close releases resources.
func (s *FileSource) Close() error {
	return s.closeFile()
}

func (s *FileSource) closeFile() error {
	if s.file != nil {
		err := s.file.Close()
		s.file = nil
		s.reader = nil
		return err
	}
	return nil
}

func hasUTF16BOM(b []byte) bool {
	return bytes.HasPrefix(b, []byte{0xFE, 0xFF}) || bytes.HasPrefix(b, []byte{0xFF, 0xFE})
}
