package core

// ingest.go decides what kind of input was supplied and decodes it into a
// Dataset. Rejections happen before any session state is touched, so a failed
// load always leaves the previous dataset in place.

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"path/filepath"
	"strings"

	"github.com/JonMunkholm/tabview/internal/table"
)

var (
	// ErrUnsupportedType is returned for inputs that are not delimited text
	// or a workbook.
	ErrUnsupportedType = errors.New("unsupported file type")

	// ErrEmptyInput is returned for empty or whitespace-only input.
	ErrEmptyInput = errors.New("empty input")

	// ErrWorkbook wraps workbook decoding failures.
	ErrWorkbook = errors.New("workbook could not be read")
)

// Format is a recognised input format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatTSV  Format = "tsv"
	FormatXLSX Format = "xlsx"
)

// Separator returns the field separator for delimited formats.
func (f Format) Separator() rune {
	if f == FormatTSV {
		return table.Tab
	}
	return table.Comma
}

var formatsByExt = map[string]Format{
	".csv":  FormatCSV,
	".txt":  FormatCSV,
	".tsv":  FormatTSV,
	".tab":  FormatTSV,
	".xlsx": FormatXLSX,
}

var formatsByMIME = map[string]Format{
	"text/csv":                  FormatCSV,
	"application/csv":           FormatCSV,
	"text/plain":                FormatCSV,
	"application/vnd.ms-excel":  FormatCSV,
	"text/tab-separated-values": FormatTSV,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": FormatXLSX,
}

// DetectFormat picks the format from the file extension, falling back to the
// declared content type. Anything else is ErrUnsupportedType.
func DetectFormat(filename, contentType string) (Format, error) {
	if f, ok := formatsByExt[strings.ToLower(filepath.Ext(filename))]; ok {
		return f, nil
	}
	if contentType != "" {
		if mt, _, err := mime.ParseMediaType(contentType); err == nil {
			if f, ok := formatsByMIME[strings.ToLower(mt)]; ok {
				return f, nil
			}
		}
	}
	return "", fmt.Errorf("%w: %q (%s)", ErrUnsupportedType, filename, contentType)
}

// Upload describes one supplied file.
type Upload struct {
	Name        string
	ContentType string
	Body        io.Reader
	MaxBytes    int64
}

// Decode parses an uploaded file into a Dataset. Delimited text goes through
// the configured grammar; workbooks yield their first sheet.
func (s *Service) Decode(ctx context.Context, up Upload) (table.Dataset, error) {
	format, err := DetectFormat(up.Name, up.ContentType)
	if err != nil {
		slog.Warn("input rejected", "file", up.Name, "content_type", up.ContentType)
		return table.Dataset{}, err
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return table.Dataset{}, err
	}
	defer s.limiter.Release()

	if format == FormatXLSX {
		return decodeWorkbook(up)
	}

	text, err := ReadText(up.Body, up.MaxBytes)
	if err != nil {
		return table.Dataset{}, fmt.Errorf("read %s: %w", up.Name, err)
	}
	return s.ParseText(text, format.Separator())
}

func decodeWorkbook(up Upload) (table.Dataset, error) {
	body := up.Body
	counter := NewCountingReader(body)
	if up.MaxBytes > 0 {
		body = io.LimitReader(counter, up.MaxBytes+1)
	} else {
		body = counter
	}

	ds, err := table.ParseWorkbook(body)
	if up.MaxBytes > 0 && counter.BytesRead > up.MaxBytes {
		return table.Dataset{}, fmt.Errorf("read %s: %w", up.Name, ErrFileTooLarge)
	}
	if err != nil {
		return table.Dataset{}, fmt.Errorf("%w: %s: %v", ErrWorkbook, up.Name, err)
	}
	if ds.Empty() {
		return table.Dataset{}, ErrEmptyInput
	}
	return ds, nil
}

// ParseText parses delimited text with the configured grammar.
// Whitespace-only text is rejected before parsing.
func (s *Service) ParseText(text string, sep rune) (table.Dataset, error) {
	if strings.TrimSpace(text) == "" {
		return table.Dataset{}, ErrEmptyInput
	}
	ds := table.Parse(text, sep, s.grammar)
	if ds.Empty() {
		return table.Dataset{}, ErrEmptyInput
	}
	return ds, nil
}

// ParsePaste parses tab-separated text copied from a spreadsheet. Pastes
// always use the simple grammar.
func (s *Service) ParsePaste(text string) (table.Dataset, error) {
	if strings.TrimSpace(text) == "" {
		return table.Dataset{}, ErrEmptyInput
	}
	ds := table.ParseSimple(text, table.Tab)
	if ds.Empty() {
		return table.Dataset{}, ErrEmptyInput
	}
	return ds, nil
}
