package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrEmptyInput is returned when a file has no header row.
var ErrEmptyInput = errors.New("empty file")

// ErrNoDataRows is returned when a file has a header but no data rows.
var ErrNoDataRows = errors.New("no data rows after header")

// ReadCSV reads a comma-separated table. The first non-blank row is the
// header; blank rows are skipped and ragged rows are padded or truncated.
func ReadCSV(r io.Reader, name string) (*Table, error) {
	cr := csv.NewReader(sanitizeInput(r))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = false

	var header []string
	var rows [][]string
	line := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("invalid csv at line %d: %w", line, err)
		}
		if isBlankRow(rec) {
			continue
		}
		for i := range rec {
			rec[i] = CleanCell(rec[i])
		}
		if header == nil {
			header = rec
			continue
		}
		rows = append(rows, rec)
	}

	if header == nil {
		return nil, ErrEmptyInput
	}
	if len(rows) == 0 {
		return nil, ErrNoDataRows
	}

	t := New(name, header, rows)
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// WriteCSV writes the table with a header row.
func WriteCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, row := range t.Rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// CleanCell removes spreadsheet export artifacts from a cell:
// surrounding whitespace, the ="..." formula wrapper and a leading '='.
func CleanCell(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") && len(s) >= 3 {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}
	return strings.TrimSpace(s)
}
