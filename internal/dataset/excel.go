package dataset

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// ReadExcel reads one worksheet of an .xlsx workbook. An empty sheet name
// selects the first sheet that contains any rows. Only one sheet is ever
// read; multi-sheet joins are not supported.
//
// Cells are read as displayed, except date-formatted cells, which are
// converted from their serial value to ISO dates (2006-01-02, with a time
// part when one is set).
func ReadExcel(r io.Reader, name, sheet string) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	var rows [][]string
	if sheet != "" {
		rows, err = f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
		}
	} else {
		for _, candidate := range f.GetSheetList() {
			got, err := f.GetRows(candidate)
			if err != nil {
				continue
			}
			if len(got) > 0 {
				rows = got
				sheet = candidate
				break
			}
		}
	}

	if sheet != "" {
		normalizeDates(f, sheet, rows)
	}

	var header []string
	var data [][]string
	for _, row := range rows {
		if isBlankRow(row) {
			continue
		}
		cleaned := make([]string, len(row))
		for i, cell := range row {
			cleaned[i] = CleanCell(cell)
		}
		if header == nil {
			header = cleaned
			continue
		}
		data = append(data, cleaned)
	}

	if header == nil {
		return nil, ErrEmptyInput
	}
	if len(data) == 0 {
		return nil, ErrNoDataRows
	}

	if sheet != "" && name != "" {
		name = name + "#" + sheet
	}
	t := New(name, header, data)
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// normalizeDates rewrites date-formatted cells of rows in place.
func normalizeDates(f *excelize.File, sheet string, rows [][]string) {
	date1904 := false
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}

	dateStyles := make(map[int]bool)
	for r, row := range rows {
		for c, cell := range row {
			if cell == "" {
				continue
			}
			name, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				continue
			}
			styleID, err := f.GetCellStyle(sheet, name)
			if err != nil || styleID == 0 {
				continue
			}
			isDate, seen := dateStyles[styleID]
			if !seen {
				isDate = isDateStyle(f, styleID)
				dateStyles[styleID] = isDate
			}
			if !isDate {
				continue
			}

			raw, err := f.GetCellValue(sheet, name, excelize.Options{RawCellValue: true})
			if err != nil {
				continue
			}
			serial, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
			if err != nil {
				continue
			}
			t, err := excelize.ExcelDateToTime(serial, date1904)
			if err != nil {
				continue
			}
			row[c] = formatExcelTime(t)
		}
	}
}

func formatExcelTime(t time.Time) string {
	t = t.Round(time.Second)
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
		return t.Format("2006-01-02")
	}
	return t.Format("2006-01-02 15:04:05")
}

// Built-in number formats that render dates (ECMA-376 18.8.30 plus the
// East Asian date formats).
func isBuiltinDateFormat(id int) bool {
	switch {
	case id >= 14 && id <= 22:
		return true
	case id >= 27 && id <= 36:
		return true
	case id >= 45 && id <= 47:
		return true
	case id >= 50 && id <= 58:
		return true
	}
	return false
}

// formatLiterals matches quoted text and bracketed sections ([Red], [$-409])
// of a custom number format.
var formatLiterals = regexp.MustCompile(`"[^"]*"|\[[^\]]*\]|\\.`)

func isDateStyle(f *excelize.File, styleID int) bool {
	style, err := f.GetStyle(styleID)
	if err != nil || style == nil {
		return false
	}
	if style.CustomNumFmt == nil {
		return isBuiltinDateFormat(style.NumFmt)
	}
	code := strings.ToLower(formatLiterals.ReplaceAllString(*style.CustomNumFmt, ""))
	return strings.ContainsAny(code, "yd")
}
