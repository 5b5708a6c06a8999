package core

import (
	"fmt"

	"github.com/M4dhxv/Financial-Analysis/internal/canonical"
	"github.com/M4dhxv/Financial-Analysis/internal/dataset"
	"github.com/M4dhxv/Financial-Analysis/internal/metric"
	"github.com/M4dhxv/Financial-Analysis/internal/schema"
	"github.com/M4dhxv/Financial-Analysis/internal/variance"
)

// PipelineOptions configures RunPipeline.
type PipelineOptions struct {
	Thresholds schema.Thresholds
	// Workers bounds the metrics processed concurrently by the variance
	// engine. Column profiling uses Thresholds.Workers.
	Workers int
}

// DefaultPipelineOptions returns the standard thresholds and a sequential
// engine.
func DefaultPipelineOptions() PipelineOptions {
	return PipelineOptions{Thresholds: schema.DefaultThresholds(), Workers: 1}
}

// PipelineResult holds the artifact of every stage.
type PipelineResult struct {
	Detection *schema.Result
	Canonical *canonical.Table
	Registry  *metric.Registry
	Variance  *variance.Result
	Quality   Quality
}

// RunPipeline runs detection, canonicalization, classification and
// variance in order. It fails only on invalid input or a fatal schema
// error; no partial result is returned.
func RunPipeline(tbl *dataset.Table, opts PipelineOptions) (*PipelineResult, error) {
	if err := tbl.Validate(); err != nil {
		return nil, fmt.Errorf("invalid table: %w", err)
	}

	det, err := schema.Detect(tbl, opts.Thresholds)
	if err != nil {
		return nil, err
	}

	ct, err := canonical.Canonicalize(tbl, det.Map)
	if err != nil {
		return nil, fmt.Errorf("canonicalize: %w", err)
	}

	reg := metric.Classify(ct)
	vr := variance.Engine{Workers: opts.Workers}.Run(ct, reg)

	res := &PipelineResult{
		Detection: det,
		Canonical: ct,
		Registry:  reg,
		Variance:  vr,
	}
	res.Quality = NewQuality(ct.Quality, reg, vr.Counters)
	return res, nil
}
