package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/M4dhxv/Financial-Analysis/internal/dataset"
	"github.com/M4dhxv/Financial-Analysis/internal/schema"
)

type fakeStore struct {
	mu      sync.Mutex
	runs    map[uuid.UUID]*Run
	saveErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{runs: make(map[uuid.UUID]*Run)}
}

func (f *fakeStore) SaveRun(_ context.Context, run *Run) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.runs[run.ID] = run
	return nil
}

func (f *fakeStore) GetRun(_ context.Context, id uuid.UUID) (*Run, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	run, ok := f.runs[id]
	if !ok {
		return nil, ErrRunNotFound
	}
	return run, nil
}

func (f *fakeStore) ListRuns(_ context.Context, limit int) ([]RunInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []RunInfo
	for _, r := range f.runs {
		out = append(out, r.Info())
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStore) PruneRuns(_ context.Context, before time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for id, r := range f.runs {
		if r.CreatedAt.Before(before) {
			delete(f.runs, id)
			n++
		}
	}
	return n, nil
}

type fakeRecorder struct {
	mu       sync.Mutex
	statuses []string
	quality  int
}

func (f *fakeRecorder) ObserveRun(status string, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses = append(f.statuses, status)
}

func (f *fakeRecorder) ObserveQuality(Quality) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.quality++
}

func newTestService(store RunStore, rec Recorder) *Service {
	return NewService(store, ServiceOptions{
		Pipeline:      DefaultPipelineOptions(),
		MaxConcurrent: 1,
		MaxWait:       50 * time.Millisecond,
	}, rec)
}

func TestService_Analyze(t *testing.T) {
	store := newFakeStore()
	rec := &fakeRecorder{}
	svc := newTestService(store, rec)

	ctx := ContextWithClientIP(context.Background(), "10.0.0.1")
	run, err := svc.Analyze(ctx, readCSV(t, scenarioCSV))
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, run.ID)
	assert.Equal(t, "sales.csv", run.Source)
	assert.Equal(t, "10.0.0.1", run.ClientIP)
	assert.Equal(t, 2, run.Rows)
	assert.Equal(t, 5, run.Columns)
	assert.Equal(t, "2024-02", run.Summary.LatestPeriod)
	assert.Equal(t, 3, run.Summary.TotalRecords)
	require.NotEmpty(t, run.Summary.TopMovers)
	assert.Equal(t, "Revenue", run.Summary.TopMovers[0].Metric)
	assert.Equal(t, []string{"Revenue"}, run.Analysis.Metrics.Decomposable)

	got, err := svc.Run(context.Background(), run.ID)
	require.NoError(t, err)
	assert.Same(t, run, got)

	infos, err := svc.Runs(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, run.Info(), infos[0])

	assert.Equal(t, []string{StatusSuccess}, rec.statuses)
	assert.Equal(t, 1, rec.quality)
	assert.Zero(t, svc.LimiterStatus().Active)
}

func TestService_AnalyzeSchemaError(t *testing.T) {
	store := newFakeStore()
	rec := &fakeRecorder{}
	svc := newTestService(store, rec)

	_, err := svc.Analyze(context.Background(), readCSV(t, "Name,Value\na,1\nb,2\n"))
	assert.ErrorIs(t, err, schema.ErrNoTimeColumn)
	assert.Empty(t, store.runs, "no partial run is stored")
	assert.Equal(t, []string{StatusSchemaError}, rec.statuses)
}

func TestService_AnalyzeStoreFailure(t *testing.T) {
	store := newFakeStore()
	store.saveErr = errors.New("connection refused")
	svc := newTestService(store, nil)

	_, err := svc.Analyze(context.Background(), readCSV(t, scenarioCSV))
	require.Error(t, err)
	assert.Equal(t, "RUN002", MapError(err).Code)
}

func TestService_AnalyzeRejectedWhenBusy(t *testing.T) {
	rec := &fakeRecorder{}
	svc := newTestService(newFakeStore(), rec)

	require.True(t, svc.limiter.TryAcquire())
	defer svc.limiter.Release()

	_, err := svc.Analyze(context.Background(), readCSV(t, scenarioCSV))
	assert.ErrorIs(t, err, ErrTooManyAnalyses)
	assert.Equal(t, []string{StatusRejected}, rec.statuses)
}

func TestService_TryAnalyzeFailsFastWhenBusy(t *testing.T) {
	rec := &fakeRecorder{}
	svc := NewService(newFakeStore(), ServiceOptions{
		Pipeline:      DefaultPipelineOptions(),
		MaxConcurrent: 1,
		MaxWait:       time.Hour,
	}, rec)

	require.True(t, svc.limiter.TryAcquire())
	start := time.Now()
	_, err := svc.TryAnalyze(context.Background(), readCSV(t, scenarioCSV))
	assert.ErrorIs(t, err, ErrTooManyAnalyses)
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, []string{StatusRejected}, rec.statuses)
	svc.limiter.Release()

	run, err := svc.TryAnalyze(context.Background(), readCSV(t, scenarioCSV))
	require.NoError(t, err)
	assert.Equal(t, "2024-02", run.Summary.LatestPeriod)
	assert.Zero(t, svc.LimiterStatus().Active)
}

func TestService_TimedOutRunKeepsSlotUntilPipelineReturns(t *testing.T) {
	rec := &fakeRecorder{}
	svc := NewService(newFakeStore(), ServiceOptions{
		Pipeline:      DefaultPipelineOptions(),
		MaxConcurrent: 1,
		MaxWait:       10 * time.Millisecond,
		RunTimeout:    10 * time.Millisecond,
	}, rec)

	started := make(chan struct{})
	unblock := make(chan struct{})
	svc.pipeline = func(tbl *dataset.Table, opts PipelineOptions) (*PipelineResult, error) {
		close(started)
		<-unblock
		return RunPipeline(tbl, opts)
	}

	_, err := svc.Analyze(context.Background(), readCSV(t, scenarioCSV))
	require.ErrorIs(t, err, context.DeadlineExceeded)
	<-started

	assert.Equal(t, 1, svc.LimiterStatus().Active, "abandoned pipeline still holds its slot")
	_, err = svc.TryAnalyze(context.Background(), readCSV(t, scenarioCSV))
	assert.ErrorIs(t, err, ErrTooManyAnalyses)

	drainCtx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	assert.ErrorIs(t, svc.Drain(drainCtx), context.DeadlineExceeded)
	cancel()

	close(unblock)
	drainCtx, cancel = context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, svc.Drain(drainCtx))
	assert.Zero(t, svc.LimiterStatus().Active)
}

func TestService_NegativeRunTimeoutDisablesDeadline(t *testing.T) {
	svc := NewService(newFakeStore(), ServiceOptions{
		Pipeline:   DefaultPipelineOptions(),
		RunTimeout: -1,
	}, nil)

	svc.pipeline = func(tbl *dataset.Table, opts PipelineOptions) (*PipelineResult, error) {
		time.Sleep(20 * time.Millisecond)
		return RunPipeline(tbl, opts)
	}

	run, err := svc.Analyze(context.Background(), readCSV(t, scenarioCSV))
	require.NoError(t, err)
	assert.NotNil(t, run)

	assert.Equal(t, DefaultRunTimeout, NewService(newFakeStore(), ServiceOptions{}, nil).opts.RunTimeout)
}

func TestService_RunNotFound(t *testing.T) {
	svc := newTestService(newFakeStore(), nil)

	_, err := svc.Run(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrRunNotFound)
	assert.Equal(t, "RUN001", MapError(err).Code)
}

func TestService_Drain(t *testing.T) {
	svc := newTestService(newFakeStore(), nil)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, svc.Drain(ctx))
}

func TestRetentionJob(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, ServiceOptions{}, nil)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	old := &Run{ID: uuid.New(), CreatedAt: now.Add(-48 * time.Hour)}
	fresh := &Run{ID: uuid.New(), CreatedAt: now.Add(-time.Hour)}
	store.runs[old.ID] = old
	store.runs[fresh.ID] = fresh

	pruned := svc.runRetentionJob(t.Context(), store, 24*time.Hour)
	assert.Equal(t, int64(1), pruned)

	_, err := svc.Run(t.Context(), old.ID)
	assert.ErrorIs(t, err, ErrRunNotFound)
	_, err = svc.Run(t.Context(), fresh.ID)
	assert.NoError(t, err)
}

func TestRetentionSchedulerDisabled(t *testing.T) {
	svc := NewService(newFakeStore(), ServiceOptions{}, nil)

	done := make(chan struct{})
	go func() {
		svc.StartRetentionScheduler(context.Background(), RetentionConfig{})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler with zero MaxAge did not return")
	}
}

func TestRetentionSchedulerStopsOnCancel(t *testing.T) {
	svc := NewService(newFakeStore(), ServiceOptions{}, nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		svc.StartRetentionScheduler(ctx, RetentionConfig{MaxAge: time.Hour, CheckInterval: time.Hour})
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after cancel")
	}
}
