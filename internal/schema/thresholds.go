package schema

import (
	"fmt"
	"strings"
)

// Thresholds holds the cut-offs used by Detect.
type Thresholds struct {
	// TimeParseRatio is the minimum share of non-null values that must parse
	// as a period for a column to be a time axis candidate.
	TimeParseRatio float64 `yaml:"time_parse_ratio" json:"time_parse_ratio"`

	// MeasureParseRatio is the minimum share of non-null values that must
	// coerce to a number for a column to be a candidate measure.
	MeasureParseRatio float64 `yaml:"measure_parse_ratio" json:"measure_parse_ratio"`

	// EntityMaxDistinctRatio is the highest distinct/non-null ratio at which
	// a non-numeric column still counts as a repeating grouping key.
	EntityMaxDistinctRatio float64 `yaml:"entity_max_distinct_ratio" json:"entity_max_distinct_ratio"`

	// EntityMinDistinctRatio is an exclusive lower bound on the same ratio.
	EntityMinDistinctRatio float64 `yaml:"entity_min_distinct_ratio" json:"entity_min_distinct_ratio"`

	// MinDistinctValues is the fewest distinct values an entity column may
	// have. Set to 2 to route constant columns to text.
	MinDistinctValues int `yaml:"min_distinct_values" json:"min_distinct_values"`

	// FlagValues lists the values a two-valued numeric column must take to
	// be treated as a categorical flag instead of a measure.
	FlagValues []float64 `yaml:"flag_values" json:"flag_values"`

	// Workers bounds parallel column profiling. 1 profiles sequentially.
	Workers int `yaml:"workers" json:"workers"`
}

// DefaultThresholds returns the standard detection cut-offs.
func DefaultThresholds() Thresholds {
	return Thresholds{
		TimeParseRatio:         0.9,
		MeasureParseRatio:      0.95,
		EntityMaxDistinctRatio: 0.5,
		EntityMinDistinctRatio: 0,
		MinDistinctValues:      1,
		FlagValues:             []float64{0, 1},
		Workers:                4,
	}
}

// Validate reports every out-of-range threshold.
func (t Thresholds) Validate() error {
	var errs []string

	ratio := func(name string, v float64) {
		if v < 0 || v > 1 {
			errs = append(errs, fmt.Sprintf("%s (%g) must be within [0,1]", name, v))
		}
	}
	ratio("time_parse_ratio", t.TimeParseRatio)
	ratio("measure_parse_ratio", t.MeasureParseRatio)
	ratio("entity_max_distinct_ratio", t.EntityMaxDistinctRatio)
	ratio("entity_min_distinct_ratio", t.EntityMinDistinctRatio)

	if t.EntityMinDistinctRatio >= t.EntityMaxDistinctRatio {
		errs = append(errs, fmt.Sprintf("entity_min_distinct_ratio (%g) must be below entity_max_distinct_ratio (%g)",
			t.EntityMinDistinctRatio, t.EntityMaxDistinctRatio))
	}
	if t.MinDistinctValues < 1 {
		errs = append(errs, "min_distinct_values must be at least 1")
	}
	if t.Workers < 1 {
		errs = append(errs, "workers must be at least 1")
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid thresholds:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

func (t Thresholds) isFlagValue(v float64) bool {
	for _, f := range t.FlagValues {
		if f == v {
			return true
		}
	}
	return false
}
