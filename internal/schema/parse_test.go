package schema

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"10", 10, true},
		{" 12.5 ", 12.5, true},
		{"$1,234.50", 1234.5, true},
		{"(100)", -100, true},
		{"(€2,000)", -2000, true},
		{"12%", 12, true},
		{"-0.25", -0.25, true},
		{"1e3", 1000, true},
		{".5", 0.5, true},
		{"", 0, false},
		{"abc", 0, false},
		{"12abc", 0, false},
		{"1.2.3", 0, false},
		{"2024-01", 0, false},
		{"1e999", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseNumber(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		in    string
		want  string
		grain Granularity
		ok    bool
	}{
		{"2024-01", "2024-01", GranularityMonth, true},
		{"2024/03", "2024-03", GranularityMonth, true},
		{"Jan-2024", "2024-01", GranularityMonth, true},
		{"March 2024", "2024-03", GranularityMonth, true},
		{"2024", "2024", GranularityYear, true},
		{"2024-Q2", "2024-Q2", GranularityQuarter, true},
		{"Q3 2023", "2023-Q3", GranularityQuarter, true},
		{"2024-01-15", "2024-01-15", GranularityDay, true},
		{"2024-01-15T10:30:00Z", "2024-01-15", GranularityDay, true},
		{"20240115", "2024-01-15", GranularityDay, true},
		{"Jan 15, 2024", "2024-01-15", GranularityDay, true},
		{"03/04/2024", "2024-03-04", GranularityDay, true},
		{"01-15-24", "2024-01-15", GranularityDay, true},
		{"1/15/24", "2024-01-15", GranularityDay, true},
		{"1850", "", "", false},
		{"10", "", "", false},
		{"100", "", "", false},
		{"East", "", "", false},
		{"", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			ts, g, ok := ParsePeriod(tt.in)
			assert.Equal(t, tt.ok, ok)
			if !tt.ok {
				return
			}
			assert.Equal(t, tt.grain, g)
			assert.Equal(t, tt.want, FormatPeriod(ts, g))
		})
	}
}

func TestFormatPeriod_SortsChronologically(t *testing.T) {
	for _, g := range []Granularity{GranularityYear, GranularityQuarter, GranularityMonth, GranularityDay} {
		earlier := FormatPeriod(time.Date(2023, time.November, 30, 0, 0, 0, 0, time.UTC), g)
		later := FormatPeriod(time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC), g)
		assert.Less(t, earlier, later, string(g))
	}
}

func TestNormalizePeriod(t *testing.T) {
	got, ok := NormalizePeriod("2024-05-20", GranularityQuarter, MonthFirst)
	assert.True(t, ok)
	assert.Equal(t, "2024-Q2", got)

	_, ok = NormalizePeriod("soon", GranularityMonth, MonthFirst)
	assert.False(t, ok)
}

func TestNormalizePeriod_DateOrder(t *testing.T) {
	tests := []struct {
		in         string
		monthFirst string
		dayFirst   string
	}{
		{"05/01/2024", "2024-05-01", "2024-01-05"},
		{"03/02/2024", "2024-03-02", "2024-02-03"},
		{"13/01/2024", "", "2024-01-13"},
		{"01/13/2024", "2024-01-13", ""},
		{"2024-01-13", "2024-01-13", "2024-01-13"},
		{"13 Jan 2024", "2024-01-13", "2024-01-13"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := NormalizePeriod(tt.in, GranularityDay, MonthFirst)
			assert.Equal(t, tt.monthFirst != "", ok)
			assert.Equal(t, tt.monthFirst, got)

			got, ok = NormalizePeriod(tt.in, GranularityDay, DayFirst)
			assert.Equal(t, tt.dayFirst != "", ok)
			assert.Equal(t, tt.dayFirst, got)
		})
	}

	// The zero value reads month first.
	got, ok := NormalizePeriod("05/01/2024", GranularityDay, "")
	assert.True(t, ok)
	assert.Equal(t, "2024-05-01", got)
}

func TestIsNull(t *testing.T) {
	for _, s := range []string{"", "  ", "NULL", "n/a", "N/A", "NaN", "None", "-", "--"} {
		assert.True(t, IsNull(s), s)
	}
	for _, s := range []string{"0", "NA", "East", "none of them"} {
		assert.False(t, IsNull(s), s)
	}
}
