package core

import (
	"github.com/M4dhxv/Financial-Analysis/internal/dataset"
	"github.com/M4dhxv/Financial-Analysis/internal/metric"
	"github.com/M4dhxv/Financial-Analysis/internal/schema"
)

// AnalysisSummary is the overview of a run written next to its artifacts.
type AnalysisSummary struct {
	InputFile       string         `json:"input_file"`
	RowsAnalyzed    int            `json:"rows_analyzed"`
	ColumnsAnalyzed int            `json:"columns_analyzed"`
	Schema          schema.Map     `json:"schema"`
	Canonical       CanonicalStats `json:"canonical_format"`
	Metrics         MetricStats    `json:"metrics"`
}

// CanonicalStats counts the distinct values of the canonical table.
type CanonicalStats struct {
	TotalRows      int `json:"total_rows"`
	UniquePeriods  int `json:"unique_periods"`
	UniqueEntities int `json:"unique_entities"`
	UniqueMetrics  int `json:"unique_metrics"`
}

// MetricStats summarizes the metric registry.
type MetricStats struct {
	Total           int                         `json:"total"`
	ByType          map[metric.SemanticType]int `json:"by_type"`
	Decomposable    []string                    `json:"decomposable"`
	PriorityMetrics []string                    `json:"priority_metrics"`
}

// Summarize builds the analysis summary of a pipeline result.
// Priority metrics are the flow metrics, decomposable ones first.
func Summarize(tbl *dataset.Table, res *PipelineResult) AnalysisSummary {
	s := AnalysisSummary{
		InputFile:       tbl.Name,
		RowsAnalyzed:    tbl.Len(),
		ColumnsAnalyzed: tbl.Width(),
		Schema:          res.Detection.Map,
		Canonical: CanonicalStats{
			TotalRows:      len(res.Canonical.Records),
			UniquePeriods:  len(res.Canonical.Periods()),
			UniqueEntities: len(res.Canonical.Entities()),
			UniqueMetrics:  res.Registry.Len(),
		},
		Metrics: MetricStats{
			Total:           res.Registry.Len(),
			ByType:          res.Registry.CountByType(),
			Decomposable:    []string{},
			PriorityMetrics: []string{},
		},
	}
	for _, d := range res.Registry.Ordered() {
		if d.Decomposable {
			s.Metrics.Decomposable = append(s.Metrics.Decomposable, d.Name)
		}
		if d.Priority <= metric.PriorityFlow {
			s.Metrics.PriorityMetrics = append(s.Metrics.PriorityMetrics, d.Name)
		}
	}
	return s
}
