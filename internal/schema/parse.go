package schema

// parse.go coerces raw cell strings into numbers and periods.
//
// Spreadsheet exports are messy, so both parsers are tolerant:
//   - numbers may carry currency symbols, thousands separators, a trailing
//     percent sign, or accounting parentheses for negatives
//   - periods may be years, quarters, months or full dates in ISO, US, EU
//     and human formats
//
// Neither parser ever substitutes a default: a value that does not parse
// reports ok=false and the caller decides how to count it.

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Granularity is the resolution of a period axis.
type Granularity string

const (
	GranularityYear    Granularity = "year"
	GranularityQuarter Granularity = "quarter"
	GranularityMonth   Granularity = "month"
	GranularityDay     Granularity = "day"
)

// rank orders granularities from coarse to fine.
func (g Granularity) rank() int {
	switch g {
	case GranularityYear:
		return 1
	case GranularityQuarter:
		return 2
	case GranularityMonth:
		return 3
	case GranularityDay:
		return 4
	default:
		return 0
	}
}

// Valid reports whether g is a known granularity.
func (g Granularity) Valid() bool {
	return g.rank() > 0
}

const (
	minYear = 1900
	maxYear = 2100
)

var nullTokens = map[string]bool{
	"":     true,
	"null": true,
	"n/a":  true,
	"nan":  true,
	"none": true,
	"-":    true,
	"--":   true,
}

// IsNull reports whether a cell is a missing-value marker.
func IsNull(s string) bool {
	return nullTokens[strings.ToLower(strings.TrimSpace(s))]
}

// numericRegex matches integers, decimals and scientific notation after cleanup.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

var currencySymbols = []string{"$", "€", "£", "¥", "₹"}

// ParseNumber coerces a cell to a finite float64.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	for _, sym := range currencySymbols {
		s = strings.ReplaceAll(s, sym, "")
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSuffix(strings.TrimSpace(s), "%")
	s = strings.TrimSpace(s)

	if !numericRegex.MatchString(s) {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	if negative {
		v = -v
	}
	return v, true
}

var (
	yearRegex          = regexp.MustCompile(`^(\d{4})$`)
	quarterFirstRegex  = regexp.MustCompile(`(?i)^(\d{4})\s*[-/ ]?\s*Q([1-4])$`)
	quarterSecondRegex = regexp.MustCompile(`(?i)^Q([1-4])\s*[-/ ]?\s*(\d{4})$`)
)

var monthLayouts = []string{
	"2006-01", "2006/01", "2006.01",
	"01/2006", "1/2006", "01-2006",
	"Jan-2006", "Jan 2006", "Jan. 2006",
	"January 2006", "January-2006",
	"Jan-06",
}

// DateOrder says how numeric dates such as 03/04/2024 are read. The zero
// value reads them month first.
type DateOrder string

const (
	MonthFirst DateOrder = "month_first"
	DayFirst   DateOrder = "day_first"
)

var dayLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02", "2006/01/02", "2006.01.02",
	"Jan 2, 2006", "January 2, 2006", "2 Jan 2006", "2 January 2006",
	"02-Jan-2006", "2-Jan-2006", "2-Jan-06",
	"20060102",
}

// Numeric dates whose day and month can be swapped. Both tables list the
// same separators and year widths.
var (
	monthFirstLayouts = []string{
		"1/2/2006", "1-2-2006", "1.2.2006",
		"1/2/06", "1-2-06",
	}
	dayFirstLayouts = []string{
		"2/1/2006", "2-1-2006", "2.1.2006",
		"2/1/06", "2-1-06",
	}
)

func (o DateOrder) layouts() []string {
	if o == DayFirst {
		return dayFirstLayouts
	}
	return monthFirstLayouts
}

// ParsePeriod parses a cell as a period and reports its granularity.
// Ambiguous numeric dates are read month first.
func ParsePeriod(s string) (time.Time, Granularity, bool) {
	return ParsePeriodOrder(s, MonthFirst)
}

// ParsePeriodOrder is ParsePeriod with an explicit day/month order.
// Years outside 1900-2100 are rejected so numeric measures are not read as
// calendar years.
func ParsePeriodOrder(s string, order DateOrder) (time.Time, Granularity, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, "", false
	}

	if m := quarterFirstRegex.FindStringSubmatch(s); m != nil {
		return quarterStart(m[1], m[2])
	}
	if m := quarterSecondRegex.FindStringSubmatch(s); m != nil {
		return quarterStart(m[2], m[1])
	}
	if m := yearRegex.FindStringSubmatch(s); m != nil {
		y, _ := strconv.Atoi(m[1])
		if !yearInRange(y) {
			return time.Time{}, "", false
		}
		return time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC), GranularityYear, true
	}

	for _, layout := range monthLayouts {
		if t, err := time.Parse(layout, s); err == nil && yearInRange(t.Year()) {
			return t, GranularityMonth, true
		}
	}
	for _, layouts := range [][]string{dayLayouts, order.layouts()} {
		for _, layout := range layouts {
			if t, err := time.Parse(layout, s); err == nil && yearInRange(t.Year()) {
				return t.UTC(), GranularityDay, true
			}
		}
	}
	return time.Time{}, "", false
}

func quarterStart(year, quarter string) (time.Time, Granularity, bool) {
	y, _ := strconv.Atoi(year)
	q, _ := strconv.Atoi(quarter)
	if !yearInRange(y) {
		return time.Time{}, "", false
	}
	month := time.Month((q-1)*3 + 1)
	return time.Date(y, month, 1, 0, 0, 0, 0, time.UTC), GranularityQuarter, true
}

func yearInRange(y int) bool {
	return y >= minYear && y <= maxYear
}

// FormatPeriod renders t at granularity g. The result sorts
// lexicographically in chronological order for a fixed granularity.
func FormatPeriod(t time.Time, g Granularity) string {
	switch g {
	case GranularityYear:
		return fmt.Sprintf("%04d", t.Year())
	case GranularityQuarter:
		return fmt.Sprintf("%04d-Q%d", t.Year(), (int(t.Month())-1)/3+1)
	case GranularityDay:
		return t.Format("2006-01-02")
	default:
		return t.Format("2006-01")
	}
}

// NormalizePeriod parses s with the given day/month order and formats it
// at granularity g.
func NormalizePeriod(s string, g Granularity, order DateOrder) (string, bool) {
	t, _, ok := ParsePeriodOrder(s, order)
	if !ok {
		return "", false
	}
	return FormatPeriod(t, g), true
}
