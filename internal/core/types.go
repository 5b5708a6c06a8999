package core

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/M4dhxv/Financial-Analysis/internal/canonical"
	"github.com/M4dhxv/Financial-Analysis/internal/metric"
	"github.com/M4dhxv/Financial-Analysis/internal/schema"
	"github.com/M4dhxv/Financial-Analysis/internal/variance"
)

// ErrRunNotFound is returned by a RunStore for an unknown run ID.
var ErrRunNotFound = errors.New("run not found")

// Run is one completed analysis with all of its artifacts.
type Run struct {
	ID         uuid.UUID `json:"id"`
	Source     string    `json:"source"`
	CreatedAt  time.Time `json:"created_at"`
	DurationMS int64     `json:"duration_ms"`
	Rows       int       `json:"rows"`
	Columns    int       `json:"columns"`
	ClientIP   string    `json:"client_ip,omitempty"`

	Schema   *schema.Result   `json:"schema"`
	Registry *metric.Registry `json:"registry"`
	Quality  Quality          `json:"quality"`
	Summary  variance.Summary `json:"summary"`
	Analysis AnalysisSummary  `json:"analysis"`

	// Canonical and Variance can be large; they are served separately.
	Canonical *canonical.Table `json:"-"`
	Variance  *variance.Result `json:"-"`
}

// Info returns the list view of the run.
func (r *Run) Info() RunInfo {
	return RunInfo{
		ID:           r.ID,
		Source:       r.Source,
		CreatedAt:    r.CreatedAt,
		Rows:         r.Rows,
		Columns:      r.Columns,
		Records:      r.Summary.TotalRecords,
		LatestPeriod: r.Summary.LatestPeriod,
	}
}

// RunInfo is the summary of a run used for listings.
type RunInfo struct {
	ID           uuid.UUID `json:"id"`
	Source       string    `json:"source"`
	CreatedAt    time.Time `json:"created_at"`
	Rows         int       `json:"rows"`
	Columns      int       `json:"columns"`
	Records      int       `json:"variance_records"`
	LatestPeriod string    `json:"latest_period"`
}

// RunStore persists completed runs.
type RunStore interface {
	SaveRun(ctx context.Context, run *Run) error
	// GetRun returns ErrRunNotFound (possibly wrapped) for unknown IDs.
	GetRun(ctx context.Context, id uuid.UUID) (*Run, error)
	// ListRuns returns the most recent runs first.
	ListRuns(ctx context.Context, limit int) ([]RunInfo, error)
}

// Run outcomes reported to a Recorder.
const (
	StatusSuccess     = "success"
	StatusSchemaError = "schema_error"
	StatusRejected    = "rejected"
	StatusError       = "error"
)

// Recorder receives run telemetry.
type Recorder interface {
	ObserveRun(status string, elapsed time.Duration)
	ObserveQuality(q Quality)
}

type nopRecorder struct{}

func (nopRecorder) ObserveRun(string, time.Duration) {}
func (nopRecorder) ObserveQuality(Quality)           {}
