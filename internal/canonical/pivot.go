package canonical

import (
	"fmt"
	"strconv"

	"github.com/M4dhxv/Financial-Analysis/internal/dataset"
)

// Pivot rebuilds a wide table with one row per (period, entity) in
// first-seen order and one column per metric. Cells for metrics not
// observed at a (period, entity) are left empty. Canonicalizing the result
// with t.Map() reproduces t's records.
func (t *Table) Pivot() (*dataset.Table, error) {
	columns := make([]string, 0, 1+len(t.EntityColumns)+len(t.Metrics))
	columns = append(columns, t.TimeColumn)
	columns = append(columns, t.EntityColumns...)
	columns = append(columns, t.Metrics...)

	metricCol := make(map[string]int, len(t.Metrics))
	for i, m := range t.Metrics {
		metricCol[m] = 1 + len(t.EntityColumns) + i
	}

	type rowKey struct{ period, entity string }
	rowIndex := make(map[rowKey]int)
	var rows [][]string

	for _, rec := range t.Records {
		col, ok := metricCol[rec.Metric]
		if !ok {
			return nil, fmt.Errorf("record metric %q is not in the table's metric list", rec.Metric)
		}
		k := rowKey{rec.Period, rec.Entity}
		i, ok := rowIndex[k]
		if !ok {
			row := make([]string, len(columns))
			row[0] = rec.Period
			if len(t.EntityColumns) > 0 {
				frags, err := ParseEntity(rec.Entity)
				if err != nil {
					return nil, err
				}
				if len(frags) != len(t.EntityColumns) {
					return nil, fmt.Errorf("entity key %q has %d fragments, want %d", rec.Entity, len(frags), len(t.EntityColumns))
				}
				for j, f := range frags {
					row[1+j] = f.Value
				}
			}
			i = len(rows)
			rowIndex[k] = i
			rows = append(rows, row)
		}
		rows[i][col] = formatValue(rec.Value)
	}

	return dataset.New(t.TimeColumn, columns, rows), nil
}

// Long returns the records as a four-column table
// (period, entity, metric_name, metric_value).
func (t *Table) Long() *dataset.Table {
	rows := make([][]string, len(t.Records))
	for i, r := range t.Records {
		rows[i] = []string{r.Period, r.Entity, r.Metric, formatValue(r.Value)}
	}
	return dataset.New("canonical", []string{"period", "entity", "metric_name", "metric_value"}, rows)
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
