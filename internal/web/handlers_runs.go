package web

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/M4dhxv/Financial-Analysis/internal/core"
	"github.com/M4dhxv/Financial-Analysis/internal/dataset"
	"github.com/M4dhxv/Financial-Analysis/internal/variance"
)

const (
	defaultRunLimit = 20
	maxRunLimit     = 100
)

// parseIntParam parses a positive integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}

// loadRun resolves the {runID} URL parameter. On failure it has already
// written the error response.
func (s *Server) loadRun(w http.ResponseWriter, r *http.Request) (*core.Run, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "runID"))
	if err != nil {
		s.respondError(w, r, fmt.Errorf("%w: %v", errInvalidRunID, err), http.StatusBadRequest)
		return nil, false
	}
	run, err := s.service.Run(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err, 0)
		return nil, false
	}
	return run, true
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := min(parseIntParam(r, "limit", defaultRunLimit), maxRunLimit)
	runs, err := s.service.Runs(r.Context(), limit)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, ok := s.loadRun(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newRunResponse(run))
}

// handleVarianceRecords returns variance records as JSON, optionally
// filtered by exact entity and metric_name query values.
func (s *Server) handleVarianceRecords(w http.ResponseWriter, r *http.Request) {
	run, ok := s.loadRun(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	entity, metric := q.Get("entity"), q.Get("metric_name")

	recs := make([]variance.Record, 0, len(run.Variance.Records))
	for _, rec := range run.Variance.Records {
		if entity != "" && rec.Entity != entity {
			continue
		}
		if metric != "" && rec.Metric != metric {
			continue
		}
		recs = append(recs, rec)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"periods":  run.Variance.Periods,
		"counters": run.Variance.Counters,
		"records":  recs,
	})
}

func (s *Server) handleVarianceCSV(w http.ResponseWriter, r *http.Request) {
	run, ok := s.loadRun(w, r)
	if !ok {
		return
	}
	s.writeCSV(w, r, run, "variance_analysis.csv", variance.Table(run.Variance.Records))
}

func (s *Server) handleCanonicalCSV(w http.ResponseWriter, r *http.Request) {
	run, ok := s.loadRun(w, r)
	if !ok {
		return
	}
	s.writeCSV(w, r, run, "canonical_data.csv", run.Canonical.Long())
}

// handleWideCSV reverses the canonicalization back into one row per
// (period, entity) with a column per metric.
func (s *Server) handleWideCSV(w http.ResponseWriter, r *http.Request) {
	run, ok := s.loadRun(w, r)
	if !ok {
		return
	}
	wide, err := run.Canonical.Pivot()
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	s.writeCSV(w, r, run, "wide_data.csv", wide)
}

func (s *Server) writeCSV(w http.ResponseWriter, r *http.Request, run *core.Run, name string, t *dataset.Table) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s_%s"`, run.ID, name))
	if err := dataset.WriteCSV(w, t); err != nil {
		// Headers are already sent; just log.
		s.logWriteError(r, err)
	}
}
