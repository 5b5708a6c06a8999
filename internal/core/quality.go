package core

import (
	"fmt"

	"github.com/M4dhxv/Financial-Analysis/internal/canonical"
	"github.com/M4dhxv/Financial-Analysis/internal/metric"
	"github.com/M4dhxv/Financial-Analysis/internal/variance"
)

// Quality is the data-quality summary of a run: every non-fatal problem
// met by the pipeline, counted.
type Quality struct {
	canonical.Quality
	variance.Counters

	AmbiguousDecompositions int           `json:"ambiguous_decompositions"`
	Notes                   []metric.Note `json:"notes"`
	Warnings                []string      `json:"warnings"`
}

// NewQuality merges the stage counters into one summary and renders a
// warning line for each non-zero problem counter.
func NewQuality(cq canonical.Quality, reg *metric.Registry, vc variance.Counters) Quality {
	q := Quality{
		Quality:  cq,
		Counters: vc,
		Notes:    reg.Notes(),
		Warnings: []string{},
	}
	if q.Notes == nil {
		q.Notes = []metric.Note{}
	}
	for _, n := range q.Notes {
		if n.Kind == metric.NoteAmbiguousDecomposition {
			q.AmbiguousDecompositions++
		}
	}

	warn := func(n int, format string) {
		if n > 0 {
			q.Warnings = append(q.Warnings, fmt.Sprintf(format, n))
		}
	}
	warn(cq.DroppedRows, "%d row(s) dropped without a usable period")
	warn(cq.UnparseableValues, "%d value(s) could not be read as numbers")
	warn(cq.DuplicateKeys, "%d duplicate (period, entity, metric) value(s) ignored")
	warn(vc.SkippedNonFinite, "%d non-finite value(s) skipped")
	warn(vc.UndefinedPercents, "%d percent change(s) undefined (zero base)")
	warn(vc.UnexplainedDecompositions, "%d decomposed change(s) not fully explained by price and volume")
	warn(q.AmbiguousDecompositions, "%d flow metric(s) not decomposed: ambiguous price/volume candidates")
	return q
}

// HasWarnings reports whether any warning was raised.
func (q Quality) HasWarnings() bool {
	return len(q.Warnings) > 0
}
