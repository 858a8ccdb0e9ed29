package core

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestNewTextReader(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected string
	}{
		{
			name:     "file with BOM",
			input:    append([]byte{0xEF, 0xBB, 0xBF}, []byte("hello,world")...),
			expected: "hello,world",
		},
		{
			name:     "file without BOM",
			input:    []byte("hello,world"),
			expected: "hello,world",
		},
		{
			name:     "empty file",
			input:    []byte{},
			expected: "",
		},
		{
			name:     "only BOM",
			input:    []byte{0xEF, 0xBB, 0xBF},
			expected: "",
		},
		{
			name:     "valid multibyte",
			input:    []byte("naïve,café"),
			expected: "naïve,café",
		},
		{
			name:     "invalid byte replaced",
			input:    []byte{'a', 0xFF, 'b'},
			expected: "a\uFFFDb",
		},
		{
			name:     "UTF-16LE with BOM",
			input:    []byte{0xFF, 0xFE, 'h', 0x00, 'i', 0x00},
			expected: "hi",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := io.ReadAll(NewTextReader(bytes.NewReader(tt.input)))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(result) != tt.expected {
				t.Errorf("got %q, want %q", string(result), tt.expected)
			}
		})
	}
}

func TestReadText_Limit(t *testing.T) {
	text, err := ReadText(strings.NewReader("a,b\n1,2"), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "a,b\n1,2" {
		t.Errorf("got %q", text)
	}

	_, err = ReadText(strings.NewReader("a,b\n1,2"), 6)
	if !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("expected ErrFileTooLarge, got %v", err)
	}
}

func TestReadText_NoLimit(t *testing.T) {
	big := strings.Repeat("x,", 10000)
	text, err := ReadText(strings.NewReader(big), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(text) != len(big) {
		t.Errorf("read %d bytes, want %d", len(text), len(big))
	}
}

func TestCountingReader(t *testing.T) {
	r := NewCountingReader(strings.NewReader("12345"))
	if _, err := io.ReadAll(r); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.BytesRead != 5 {
		t.Errorf("BytesRead = %d, want 5", r.BytesRead)
	}
}
