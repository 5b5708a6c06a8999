package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/M4dhxv/Financial-Analysis/internal/schema"
)

// LoadThresholdsFile reads detection thresholds from a YAML file. Keys
// present in the file override base; absent keys keep base values.
//
//	time_parse_ratio: 0.8
//	min_distinct_values: 2
//	flag_values: [0, 1]
func LoadThresholdsFile(path string, base schema.Thresholds) (schema.Thresholds, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("read thresholds file: %w", err)
	}
	return ParseThresholds(data, base)
}

// ParseThresholds decodes YAML threshold overrides on top of base.
// Unknown keys are rejected.
func ParseThresholds(data []byte, base schema.Thresholds) (schema.Thresholds, error) {
	th := base
	th.FlagValues = append([]float64(nil), base.FlagValues...)

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&th); err != nil && !errors.Is(err, io.EOF) {
		return base, fmt.Errorf("parse thresholds: %w", err)
	}
	if err := th.Validate(); err != nil {
		return base, err
	}
	return th, nil
}
