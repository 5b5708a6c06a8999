package dataset

import (
	"bytes"
	"io"
	"testing"
	"testing/iotest"
)

func TestBOMReader(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected string
	}{
		{"with BOM", append([]byte{0xEF, 0xBB, 0xBF}, "a,b"...), "a,b"},
		{"without BOM", []byte("a,b"), "a,b"},
		{"empty", []byte{}, ""},
		{"only BOM", []byte{0xEF, 0xBB, 0xBF}, ""},
		{"partial BOM", []byte{0xEF, 0xBB, 'a'}, string([]byte{0xEF, 0xBB, 'a'})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := io.ReadAll(newBOMReader(bytes.NewReader(tt.input)))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(got) != tt.expected {
				t.Errorf("got %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestUTF8Sanitizer(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected string
	}{
		{"ascii", []byte("Month,Revenue"), "Month,Revenue"},
		{"multibyte", []byte("Région,€"), "Région,€"},
		{"invalid byte", []byte{'a', 0x80, 'b'}, "a?b"},
		{"truncated rune at EOF", []byte{'a', 0xC3}, "a?"},
		{"empty", []byte{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := io.ReadAll(newUTF8Sanitizer(bytes.NewReader(tt.input)))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(got) != tt.expected {
				t.Errorf("got %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestUTF8Sanitizer_SplitRune(t *testing.T) {
	// One byte per Read splits every multi-byte rune across calls.
	input := []byte("é€,x")
	got, err := io.ReadAll(newUTF8Sanitizer(iotest.OneByteReader(bytes.NewReader(input))))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got) != "é€,x" {
		t.Errorf("got %q, want %q", got, "é€,x")
	}
}

func TestSanitizeInput(t *testing.T) {
	input := append([]byte{0xEF, 0xBB, 0xBF}, 'a', 0xFF, 'b')
	got, err := io.ReadAll(sanitizeInput(bytes.NewReader(input)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got) != "a?b" {
		t.Errorf("got %q, want %q", got, "a?b")
	}
}
