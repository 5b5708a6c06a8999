// Package artifact writes the inspectable outputs of an analysis run to a
// directory, one file per pipeline stage.
package artifact

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/M4dhxv/Financial-Analysis/internal/core"
	"github.com/M4dhxv/Financial-Analysis/internal/dataset"
	"github.com/M4dhxv/Financial-Analysis/internal/variance"
)

// File names written by Write.
const (
	SchemaFile          = "detected_schema.json"
	CanonicalFile       = "canonical_data.csv"
	RegistryFile        = "metric_registry.json"
	VarianceFile        = "variance_analysis.csv"
	VarianceSummaryFile = "variance_summary.json"
	AnalysisSummaryFile = "analysis_summary.json"
)

// AnalysisDocument is the content of analysis_summary.json.
type AnalysisDocument struct {
	core.AnalysisSummary
	RunID   string       `json:"run_id"`
	Quality core.Quality `json:"data_quality"`
}

// Write stores every artifact of run under dir, creating dir if needed.
// It returns the paths written, in pipeline order.
func Write(dir string, run *core.Run) ([]string, error) {
	if run.Canonical == nil || run.Variance == nil {
		return nil, fmt.Errorf("run %s has no canonical or variance data", run.ID)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	files := []struct {
		name  string
		write func(io.Writer) error
	}{
		{SchemaFile, jsonWriter(run.Schema)},
		{CanonicalFile, csvWriter(run.Canonical.Long())},
		{RegistryFile, jsonWriter(run.Registry)},
		{VarianceFile, csvWriter(variance.Table(run.Variance.Records))},
		{VarianceSummaryFile, jsonWriter(run.Summary)},
		{AnalysisSummaryFile, jsonWriter(AnalysisDocument{
			AnalysisSummary: run.Analysis,
			RunID:           run.ID.String(),
			Quality:         run.Quality,
		})},
	}

	paths := make([]string, 0, len(files))
	for _, f := range files {
		path := filepath.Join(dir, f.name)
		if err := writeFile(path, f.write); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// WriteJSON encodes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func jsonWriter(v any) func(io.Writer) error {
	return func(w io.Writer) error { return WriteJSON(w, v) }
}

func csvWriter(t *dataset.Table) func(io.Writer) error {
	return func(w io.Writer) error { return dataset.WriteCSV(w, t) }
}

// writeFile writes through a temp file in the same directory and renames it
// into place, so readers never see a partial artifact.
func writeFile(path string, write func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}
