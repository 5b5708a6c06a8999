package dataset

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Format identifies a supported input file format.
type Format string

const (
	FormatCSV   Format = "csv"
	FormatExcel Format = "xlsx"
)

// DetectFormat picks a format from a file name extension.
func DetectFormat(fileName string) (Format, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".csv", ".txt":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatExcel, nil
	default:
		return "", fmt.Errorf("unsupported file format: %q", filepath.Ext(fileName))
	}
}

// Read dispatches to the reader for the file name's format.
// The sheet argument is ignored for CSV input.
func Read(r io.Reader, fileName, sheet string) (*Table, error) {
	format, err := DetectFormat(fileName)
	if err != nil {
		return nil, err
	}
	name := filepath.Base(fileName)
	switch format {
	case FormatExcel:
		return ReadExcel(r, name, sheet)
	default:
		return ReadCSV(r, name)
	}
}

// Open reads a table from disk.
func Open(path, sheet string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()
	return Read(f, path, sheet)
}
