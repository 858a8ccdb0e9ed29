package core

// streaming.go turns raw uploaded bytes into clean UTF-8 text.
//
// Files saved by spreadsheet programs often start with a byte order mark,
// and some are UTF-16. The reader returned by NewTextReader honours a leading
// UTF-8 or UTF-16 BOM, drops it, and replaces invalid UTF-8 sequences with
// U+FFFD, so the parser only ever sees valid text.

import (
	"errors"
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrFileTooLarge is returned when an input exceeds the configured size.
var ErrFileTooLarge = errors.New("file too large")

// NewTextReader wraps r with BOM detection and UTF-8 sanitising.
func NewTextReader(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
}

// CountingReader tracks the bytes read through it.
type CountingReader struct {
	reader    io.Reader
	BytesRead int64
}

// NewCountingReader wraps r.
func NewCountingReader(r io.Reader) *CountingReader {
	return &CountingReader{reader: r}
}

// Read implements io.Reader.
func (r *CountingReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.BytesRead += int64(n)
	return n, err
}

// ReadText reads all of r as sanitised text. A positive limit caps the number
// of raw bytes consumed; exceeding it returns ErrFileTooLarge.
func ReadText(r io.Reader, limit int64) (string, error) {
	counter := NewCountingReader(r)

	var src io.Reader = counter
	if limit > 0 {
		src = io.LimitReader(counter, limit+1)
	}

	data, err := io.ReadAll(NewTextReader(src))
	if err != nil {
		return "", err
	}
	if limit > 0 && counter.BytesRead > limit {
		return "", ErrFileTooLarge
	}
	return string(data), nil
}
