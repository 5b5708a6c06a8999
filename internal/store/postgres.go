package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/M4dhxv/Financial-Analysis/internal/canonical"
	"github.com/M4dhxv/Financial-Analysis/internal/core"
	"github.com/M4dhxv/Financial-Analysis/internal/metric"
	"github.com/M4dhxv/Financial-Analysis/internal/schema"
	"github.com/M4dhxv/Financial-Analysis/internal/variance"
)

const schemaDDL = `
CREATE TABLE IF NOT EXISTS analysis_runs (
	id            UUID PRIMARY KEY,
	source        TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL,
	duration_ms   BIGINT NOT NULL,
	row_count     INTEGER NOT NULL,
	column_count  INTEGER NOT NULL,
	client_ip     TEXT,
	detection     JSONB NOT NULL,
	registry      JSONB NOT NULL,
	quality       JSONB NOT NULL,
	summary       JSONB NOT NULL,
	analysis      JSONB NOT NULL,
	canonical     JSONB NOT NULL,
	variance      JSONB NOT NULL
);

CREATE INDEX IF NOT EXISTS analysis_runs_created_at_idx ON analysis_runs (created_at DESC);

CREATE TABLE IF NOT EXISTS canonical_records (
	run_id       UUID NOT NULL REFERENCES analysis_runs(id) ON DELETE CASCADE,
	seq          INTEGER NOT NULL,
	period       TEXT NOT NULL,
	entity       TEXT NOT NULL,
	metric_name  TEXT NOT NULL,
	metric_value DOUBLE PRECISION NOT NULL,
	PRIMARY KEY (run_id, seq)
);

CREATE TABLE IF NOT EXISTS variance_records (
	run_id               UUID NOT NULL REFERENCES analysis_runs(id) ON DELETE CASCADE,
	seq                  INTEGER NOT NULL,
	entity               TEXT NOT NULL,
	metric_name          TEXT NOT NULL,
	period_from          TEXT NOT NULL,
	period_to            TEXT NOT NULL,
	value_from           DOUBLE PRECISION NOT NULL,
	value_to             DOUBLE PRECISION NOT NULL,
	abs_delta            DOUBLE PRECISION NOT NULL,
	pct_delta            DOUBLE PRECISION,
	price_effect         DOUBLE PRECISION,
	volume_effect        DOUBLE PRECISION,
	interaction_residual DOUBLE PRECISION,
	PRIMARY KEY (run_id, seq)
);
`

var (
	canonicalColumns = []string{"run_id", "seq", "period", "entity", "metric_name", "metric_value"}
	varianceColumns  = []string{
		"run_id", "seq", "entity", "metric_name", "period_from", "period_to",
		"value_from", "value_to", "abs_delta", "pct_delta",
		"price_effect", "volume_effect", "interaction_residual",
	}
)

// Postgres is a RunStore backed by PostgreSQL.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres wraps an open pool. Call EnsureSchema before first use.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// EnsureSchema creates the run tables if they do not exist.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, schemaDDL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// canonicalHeader and varianceHeader are the JSONB parts of the large
// artifacts; their records live in their own tables.
type canonicalHeader struct {
	TimeColumn    string             `json:"time_column"`
	Granularity   schema.Granularity `json:"time_granularity"`
	EntityColumns []string           `json:"entity_columns"`
	Metrics       []string           `json:"metrics"`
	Quality       canonical.Quality  `json:"quality"`
}

type varianceHeader struct {
	Periods  []string          `json:"periods"`
	Counters variance.Counters `json:"counters"`
}

func (p *Postgres) SaveRun(ctx context.Context, run *core.Run) error {
	docs, err := encodeRun(run)
	if err != nil {
		return err
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO analysis_runs (
			id, source, created_at, duration_ms, row_count, column_count, client_ip,
			detection, registry, quality, summary, analysis, canonical, variance
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		run.ID, run.Source, run.CreatedAt, run.DurationMS, run.Rows, run.Columns,
		pgtype.Text{String: run.ClientIP, Valid: run.ClientIP != ""},
		docs[0], docs[1], docs[2], docs[3], docs[4], docs[5], docs[6],
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	if run.Canonical != nil && len(run.Canonical.Records) > 0 {
		recs := run.Canonical.Records
		_, err = tx.CopyFrom(ctx, pgx.Identifier{"canonical_records"}, canonicalColumns,
			pgx.CopyFromSlice(len(recs), func(i int) ([]any, error) {
				r := recs[i]
				return []any{run.ID, i, r.Period, r.Entity, r.Metric, r.Value}, nil
			}))
		if err != nil {
			return fmt.Errorf("copy canonical records: %w", err)
		}
	}

	if run.Variance != nil && len(run.Variance.Records) > 0 {
		recs := run.Variance.Records
		_, err = tx.CopyFrom(ctx, pgx.Identifier{"variance_records"}, varianceColumns,
			pgx.CopyFromSlice(len(recs), func(i int) ([]any, error) {
				r := recs[i]
				return []any{
					run.ID, i, r.Entity, r.Metric, r.PeriodFrom, r.PeriodTo,
					r.ValueFrom, r.ValueTo, r.AbsDelta, percentToFloat8(r.PctDelta),
					ptrToFloat8(r.PriceEffect), ptrToFloat8(r.VolumeEffect), ptrToFloat8(r.InteractionResidual),
				}, nil
			}))
		if err != nil {
			return fmt.Errorf("copy variance records: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

// encodeRun marshals the JSONB columns in insert order.
func encodeRun(run *core.Run) ([7][]byte, error) {
	var docs [7][]byte

	var ch canonicalHeader
	if c := run.Canonical; c != nil {
		ch = canonicalHeader{c.TimeColumn, c.Granularity, c.EntityColumns, c.Metrics, c.Quality}
	}
	var vh varianceHeader
	if v := run.Variance; v != nil {
		vh = varianceHeader{v.Periods, v.Counters}
	}

	parts := []any{run.Schema, run.Registry, run.Quality, run.Summary, run.Analysis, ch, vh}
	for i, part := range parts {
		b, err := json.Marshal(part)
		if err != nil {
			return docs, fmt.Errorf("encode run: %w", err)
		}
		docs[i] = b
	}
	return docs, nil
}

func (p *Postgres) GetRun(ctx context.Context, id uuid.UUID) (*core.Run, error) {
	var (
		run      = &core.Run{ID: id}
		clientIP pgtype.Text
		docs     [7][]byte
	)

	err := p.pool.QueryRow(ctx, `
		SELECT source, created_at, duration_ms, row_count, column_count, client_ip,
		       detection, registry, quality, summary, analysis, canonical, variance
		FROM analysis_runs WHERE id = $1`, id,
	).Scan(
		&run.Source, &run.CreatedAt, &run.DurationMS, &run.Rows, &run.Columns, &clientIP,
		&docs[0], &docs[1], &docs[2], &docs[3], &docs[4], &docs[5], &docs[6],
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, core.ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select run: %w", err)
	}
	if clientIP.Valid {
		run.ClientIP = clientIP.String
	}

	var (
		ch canonicalHeader
		vh varianceHeader
	)
	run.Schema = &schema.Result{}
	run.Registry = &metric.Registry{}
	targets := []any{run.Schema, run.Registry, &run.Quality, &run.Summary, &run.Analysis, &ch, &vh}
	for i, target := range targets {
		if err := json.Unmarshal(docs[i], target); err != nil {
			return nil, fmt.Errorf("decode run: %w", err)
		}
	}

	run.Canonical = &canonical.Table{
		TimeColumn:    ch.TimeColumn,
		Granularity:   ch.Granularity,
		EntityColumns: ch.EntityColumns,
		Metrics:       ch.Metrics,
		Quality:       ch.Quality,
	}
	if run.Canonical.Records, err = p.canonicalRecords(ctx, id); err != nil {
		return nil, err
	}

	run.Variance = &variance.Result{Periods: vh.Periods, Counters: vh.Counters}
	if run.Variance.Records, err = p.varianceRecords(ctx, id); err != nil {
		return nil, err
	}
	return run, nil
}

func (p *Postgres) canonicalRecords(ctx context.Context, id uuid.UUID) ([]canonical.Record, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT period, entity, metric_name, metric_value
		FROM canonical_records WHERE run_id = $1 ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("select canonical records: %w", err)
	}
	defer rows.Close()

	recs := []canonical.Record{}
	for rows.Next() {
		var r canonical.Record
		if err := rows.Scan(&r.Period, &r.Entity, &r.Metric, &r.Value); err != nil {
			return nil, fmt.Errorf("scan canonical record: %w", err)
		}
		recs = append(recs, r)
	}
	return recs, rows.Err()
}

func (p *Postgres) varianceRecords(ctx context.Context, id uuid.UUID) ([]variance.Record, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT entity, metric_name, period_from, period_to, value_from, value_to, abs_delta,
		       pct_delta, price_effect, volume_effect, interaction_residual
		FROM variance_records WHERE run_id = $1 ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("select variance records: %w", err)
	}
	defer rows.Close()

	recs := []variance.Record{}
	for rows.Next() {
		var (
			r                     variance.Record
			pct, pe, ve, residual pgtype.Float8
		)
		err := rows.Scan(
			&r.Entity, &r.Metric, &r.PeriodFrom, &r.PeriodTo, &r.ValueFrom, &r.ValueTo, &r.AbsDelta,
			&pct, &pe, &ve, &residual,
		)
		if err != nil {
			return nil, fmt.Errorf("scan variance record: %w", err)
		}
		r.PctDelta = variance.Percent{Value: pct.Float64, Defined: pct.Valid}
		r.PriceEffect = float8ToPtr(pe)
		r.VolumeEffect = float8ToPtr(ve)
		r.InteractionResidual = float8ToPtr(residual)
		recs = append(recs, r)
	}
	return recs, rows.Err()
}

func (p *Postgres) ListRuns(ctx context.Context, limit int) ([]core.RunInfo, error) {
	if limit <= 0 {
		limit = DefaultMemoryRuns
	}

	rows, err := p.pool.Query(ctx, `
		SELECT id, source, created_at, row_count, column_count,
		       COALESCE((summary->>'total_variance_records')::int, 0),
		       COALESCE(summary->>'latest_period', '')
		FROM analysis_runs ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	infos := []core.RunInfo{}
	for rows.Next() {
		var (
			info      core.RunInfo
			createdAt time.Time
		)
		err := rows.Scan(&info.ID, &info.Source, &createdAt, &info.Rows, &info.Columns, &info.Records, &info.LatestPeriod)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		info.CreatedAt = createdAt.UTC()
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

// PruneRuns deletes runs created before the cutoff. Their records go with
// them through ON DELETE CASCADE.
func (p *Postgres) PruneRuns(ctx context.Context, before time.Time) (int64, error) {
	tag, err := p.pool.Exec(ctx, `DELETE FROM analysis_runs WHERE created_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Ping checks database connectivity.
func (p *Postgres) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

func percentToFloat8(pct variance.Percent) pgtype.Float8 {
	return pgtype.Float8{Float64: pct.Value, Valid: pct.Defined}
}

func ptrToFloat8(v *float64) pgtype.Float8 {
	if v == nil {
		return pgtype.Float8{}
	}
	return pgtype.Float8{Float64: *v, Valid: true}
}

func float8ToPtr(v pgtype.Float8) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
