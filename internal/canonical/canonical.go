package canonical

import (
	"fmt"
	"slices"
	"strings"

	"github.com/M4dhxv/Financial-Analysis/internal/dataset"
	"github.com/M4dhxv/Financial-Analysis/internal/schema"
)

// Record is one (period, entity, metric) observation.
type Record struct {
	Period string  `json:"period"`
	Entity string  `json:"entity"`
	Metric string  `json:"metric_name"`
	Value  float64 `json:"metric_value"`
}

// Key identifies a record. It is unique within a Table.
type Key struct {
	Period string
	Entity string
	Metric string
}

// Key returns the record's identifying triple.
func (r Record) Key() Key {
	return Key{Period: r.Period, Entity: r.Entity, Metric: r.Metric}
}

// Quality tallies the non-fatal problems met while canonicalizing.
type Quality struct {
	RawRows            int `json:"raw_rows"`
	DroppedRows        int `json:"dropped_rows"`
	UnparseablePeriods int `json:"unparseable_periods"`
	UnparseableValues  int `json:"unparseable_values"`
	MissingValues      int `json:"missing_values"`
	DuplicateKeys      int `json:"duplicate_keys"`
}

// Table is the canonical long-format representation of a raw table.
type Table struct {
	TimeColumn    string             `json:"time_column"`
	Granularity   schema.Granularity `json:"time_granularity"`
	EntityColumns []string           `json:"entity_columns"`
	Metrics       []string           `json:"metrics"`
	Records       []Record           `json:"records"`
	Quality       Quality            `json:"quality"`
}

// Canonicalize reshapes raw into long format using the detected schema.
// Rows without a usable period are dropped; measure cells that are empty or
// not numeric are skipped. Neither is an error: both are counted in Quality.
// When a (period, entity, metric) triple repeats, the first value wins.
func Canonicalize(raw *dataset.Table, m schema.Map) (*Table, error) {
	timeIdx := raw.Index(m.TimeColumn)
	if timeIdx < 0 {
		return nil, fmt.Errorf("time column %q not found in table %q", m.TimeColumn, raw.Name)
	}
	if !m.TimeGranularity.Valid() {
		return nil, fmt.Errorf("invalid time granularity %q", m.TimeGranularity)
	}
	entityIdx, err := indexes(raw, m.EntityColumns)
	if err != nil {
		return nil, err
	}
	measureIdx, err := indexes(raw, m.MeasureColumns)
	if err != nil {
		return nil, err
	}

	out := &Table{
		TimeColumn:    m.TimeColumn,
		Granularity:   m.TimeGranularity,
		EntityColumns: slices.Clone(m.EntityColumns),
		Metrics:       []string{},
		Records:       make([]Record, 0, raw.Len()*len(measureIdx)),
	}
	if out.EntityColumns == nil {
		out.EntityColumns = []string{}
	}
	out.Quality.RawRows = raw.Len()

	seen := make(map[Key]struct{}, cap(out.Records))
	observed := make(map[string]bool, len(measureIdx))
	entityValues := make([]string, len(entityIdx))

	for r := range raw.Rows {
		rawPeriod := raw.Cell(r, timeIdx)
		if schema.IsNull(rawPeriod) {
			out.Quality.DroppedRows++
			continue
		}
		period, ok := schema.NormalizePeriod(rawPeriod, m.TimeGranularity, m.DateOrder)
		if !ok {
			out.Quality.DroppedRows++
			out.Quality.UnparseablePeriods++
			continue
		}

		for i, idx := range entityIdx {
			entityValues[i] = strings.TrimSpace(raw.Cell(r, idx))
		}
		entity := EntityKey(m.EntityColumns, entityValues)

		for i, idx := range measureIdx {
			cell := raw.Cell(r, idx)
			if schema.IsNull(cell) {
				out.Quality.MissingValues++
				continue
			}
			v, ok := schema.ParseNumber(cell)
			if !ok {
				out.Quality.UnparseableValues++
				continue
			}
			rec := Record{Period: period, Entity: entity, Metric: m.MeasureColumns[i], Value: v}
			if _, dup := seen[rec.Key()]; dup {
				out.Quality.DuplicateKeys++
				continue
			}
			seen[rec.Key()] = struct{}{}
			observed[rec.Metric] = true
			out.Records = append(out.Records, rec)
		}
	}

	for _, name := range m.MeasureColumns {
		if observed[name] {
			out.Metrics = append(out.Metrics, name)
		}
	}
	return out, nil
}

func indexes(raw *dataset.Table, columns []string) ([]int, error) {
	idx := make([]int, len(columns))
	for i, c := range columns {
		idx[i] = raw.Index(c)
		if idx[i] < 0 {
			return nil, fmt.Errorf("column %q not found in table %q", c, raw.Name)
		}
	}
	return idx, nil
}

// Map returns the schema map describing the wide table produced by Pivot.
func (t *Table) Map() schema.Map {
	return schema.Map{
		TimeColumn:      t.TimeColumn,
		TimeGranularity: t.Granularity,
		EntityColumns:   slices.Clone(t.EntityColumns),
		MeasureColumns:  slices.Clone(t.Metrics),
		TextColumns:     []string{},
	}
}

// Periods returns the distinct periods in chronological order.
func (t *Table) Periods() []string {
	return t.distinct(func(r Record) string { return r.Period })
}

// Entities returns the distinct entity keys in sorted order.
func (t *Table) Entities() []string {
	return t.distinct(func(r Record) string { return r.Entity })
}

func (t *Table) distinct(field func(Record) string) []string {
	set := make(map[string]struct{})
	for _, r := range t.Records {
		set[field(r)] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}
