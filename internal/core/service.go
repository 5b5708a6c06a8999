package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/M4dhxv/Financial-Analysis/internal/dataset"
	"github.com/M4dhxv/Financial-Analysis/internal/logging"
	"github.com/M4dhxv/Financial-Analysis/internal/schema"
	"github.com/M4dhxv/Financial-Analysis/internal/variance"
)

// DefaultRunTimeout bounds a single analysis when no timeout is configured.
const DefaultRunTimeout = 2 * time.Minute

// ServiceOptions configures a Service.
//
// A zero RunTimeout means DefaultRunTimeout; a negative one disables the
// timeout so only the caller's context bounds the run. Limiter, when set,
// is shared instead of building one from MaxConcurrent and MaxWait.
type ServiceOptions struct {
	Pipeline      PipelineOptions
	MaxConcurrent int
	MaxWait       time.Duration
	RunTimeout    time.Duration
	TopMovers     int
	Limiter       *AnalysisLimiter
}

// Service runs analyses and keeps their results.
type Service struct {
	store    RunStore
	limiter  *AnalysisLimiter
	recorder Recorder
	opts     ServiceOptions
	now      func() time.Time
	pipeline func(*dataset.Table, PipelineOptions) (*PipelineResult, error)
}

// NewService creates a Service. A nil recorder disables telemetry.
func NewService(store RunStore, opts ServiceOptions, recorder Recorder) *Service {
	if opts.RunTimeout == 0 {
		opts.RunTimeout = DefaultRunTimeout
	}
	if opts.TopMovers <= 0 {
		opts.TopMovers = variance.DefaultTopMovers
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	limiter := opts.Limiter
	if limiter == nil {
		limiter = NewAnalysisLimiter(opts.MaxConcurrent, opts.MaxWait)
	}
	return &Service{
		store:    store,
		limiter:  limiter,
		recorder: recorder,
		opts:     opts,
		now:      time.Now,
		pipeline: RunPipeline,
	}
}

// Analyze runs the full pipeline on tbl and stores the run. It waits up to
// the configured MaxWait for a free analysis slot.
//
// The pipeline itself does not observe ctx; if ctx ends or the run timeout
// passes first, Analyze returns the context error and the result of the
// abandoned computation is discarded. The slot stays taken until that
// computation actually finishes, so Drain and LimiterStatus see it.
func (s *Service) Analyze(ctx context.Context, tbl *dataset.Table) (*Run, error) {
	return s.analyze(ctx, tbl, s.limiter.Acquire)
}

// TryAnalyze is Analyze without waiting: when every slot is busy it fails
// at once with ErrTooManyAnalyses.
func (s *Service) TryAnalyze(ctx context.Context, tbl *dataset.Table) (*Run, error) {
	return s.analyze(ctx, tbl, func(context.Context) error {
		if !s.limiter.TryAcquire() {
			return ErrTooManyAnalyses
		}
		return nil
	})
}

func (s *Service) analyze(ctx context.Context, tbl *dataset.Table, acquire func(context.Context) error) (*Run, error) {
	start := s.now()
	log := logging.WithFields(ctx, "source", tbl.Name, "rows", tbl.Len(), "columns", tbl.Width())

	if err := acquire(ctx); err != nil {
		s.recorder.ObserveRun(StatusRejected, time.Since(start))
		log.Warn("analysis rejected", "error", err)
		return nil, err
	}

	if s.opts.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.RunTimeout)
		defer cancel()
	}

	type outcome struct {
		res *PipelineResult
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := s.runPipeline(tbl)
		done <- outcome{res, err}
	}()

	var out outcome
	select {
	case out = <-done:
	case <-ctx.Done():
		s.recorder.ObserveRun(StatusError, time.Since(start))
		log.Warn("analysis abandoned", "error", ctx.Err())
		return nil, fmt.Errorf("analyze %s: %w", tbl.Name, ctx.Err())
	}

	if out.err != nil {
		status := StatusError
		var de *schema.DetectionError
		if errors.As(out.err, &de) {
			status = StatusSchemaError
			log.Info("schema detection failed", "kind", de.Kind, "reason", de.Reason)
		} else {
			log.Error("analysis failed", "error", out.err)
		}
		s.recorder.ObserveRun(status, time.Since(start))
		return nil, out.err
	}

	res := out.res
	run := &Run{
		ID:         uuid.New(),
		Source:     tbl.Name,
		CreatedAt:  start.UTC(),
		DurationMS: time.Since(start).Milliseconds(),
		Rows:       tbl.Len(),
		Columns:    tbl.Width(),
		ClientIP:   ClientIPFromContext(ctx),
		Schema:     res.Detection,
		Registry:   res.Registry,
		Quality:    res.Quality,
		Summary:    variance.Summarize(res.Variance, s.opts.TopMovers),
		Analysis:   Summarize(tbl, res),
		Canonical:  res.Canonical,
		Variance:   res.Variance,
	}
	log = log.With("run_id", run.ID)

	if err := s.store.SaveRun(ctx, run); err != nil {
		s.recorder.ObserveRun(StatusError, time.Since(start))
		log.Error("failed to store run", "error", err)
		return nil, fmt.Errorf("save run: %w", err)
	}

	s.recorder.ObserveRun(StatusSuccess, time.Since(start))
	s.recorder.ObserveQuality(run.Quality)
	logQuality(log, run.Quality)
	log.Info("analysis complete",
		"time_column", run.Schema.Map.TimeColumn,
		"metrics", run.Registry.Len(),
		"canonical_records", len(run.Canonical.Records),
		"variance_records", run.Summary.TotalRecords,
		"duration_ms", run.DurationMS,
	)
	return run, nil
}

// runPipeline owns the slot taken in analyze and frees it when the
// computation returns, whether or not anyone still waits for the result.
func (s *Service) runPipeline(tbl *dataset.Table) (*PipelineResult, error) {
	defer s.limiter.Release()
	return s.pipeline(tbl, s.opts.Pipeline)
}

func logQuality(log *slog.Logger, q Quality) {
	if !q.HasWarnings() {
		return
	}
	log.Warn("data quality issues",
		"dropped_rows", q.DroppedRows,
		"unparseable_periods", q.UnparseablePeriods,
		"unparseable_values", q.UnparseableValues,
		"duplicate_keys", q.DuplicateKeys,
		"undefined_percents", q.UndefinedPercents,
		"skipped_non_finite", q.SkippedNonFinite,
		"ambiguous_decompositions", q.AmbiguousDecompositions,
		"unexplained_decompositions", q.UnexplainedDecompositions,
	)
}

// Run returns a stored run.
func (s *Service) Run(ctx context.Context, id uuid.UUID) (*Run, error) {
	run, err := s.store.GetRun(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", id, err)
	}
	return run, nil
}

// Runs lists the most recent runs.
func (s *Service) Runs(ctx context.Context, limit int) ([]RunInfo, error) {
	runs, err := s.store.ListRuns(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// LimiterStatus reports current analysis concurrency.
func (s *Service) LimiterStatus() LimiterStatus {
	return s.limiter.Status()
}

// Drain waits for running analyses to finish.
func (s *Service) Drain(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// Ping checks that the run store is reachable. Stores without a Ping
// method are always reachable.
func (s *Service) Ping(ctx context.Context) error {
	if p, ok := s.store.(interface{ Ping(context.Context) error }); ok {
		if err := p.Ping(ctx); err != nil {
			return fmt.Errorf("ping run store: %w", err)
		}
	}
	return nil
}
