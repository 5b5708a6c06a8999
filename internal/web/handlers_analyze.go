package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/M4dhxv/Financial-Analysis/internal/core"
	"github.com/M4dhxv/Financial-Analysis/internal/dataset"
)

// RunResponse is the API view of a completed run.
type RunResponse struct {
	*core.Run
	Links RunLinks `json:"links"`
}

// RunLinks points at the run's downloadable artifacts.
type RunLinks struct {
	Self        string `json:"self"`
	Page        string `json:"page"`
	Variance    string `json:"variance"`
	VarianceCSV string `json:"variance_csv"`
	Canonical   string `json:"canonical_csv"`
	Wide        string `json:"wide_csv"`
}

func newRunResponse(run *core.Run) RunResponse {
	base := "/api/runs/" + run.ID.String()
	return RunResponse{
		Run: run,
		Links: RunLinks{
			Self:        base,
			Page:        "/runs/" + run.ID.String(),
			Variance:    base + "/variance",
			VarianceCSV: base + "/variance.csv",
			Canonical:   base + "/canonical.csv",
			Wide:        base + "/wide.csv",
		},
	}
}

// handleAnalyze runs an analysis on an uploaded CSV or Excel file. API
// clients are not queued: when every analysis slot is busy the request
// fails at once with 503 so the client can retry.
//
// Form fields: file (required), sheet (optional, Excel only).
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	run, err := s.analyzeUpload(r, w, s.service.TryAnalyze)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusCreated, newRunResponse(run))
}

// handleAnalyzeForm is the HTML form variant of handleAnalyze; it redirects
// to the run page on success. Browser uploads wait for a free slot.
func (s *Server) handleAnalyzeForm(w http.ResponseWriter, r *http.Request) {
	run, err := s.analyzeUpload(r, w, s.service.Analyze)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	http.Redirect(w, r, "/runs/"+run.ID.String(), http.StatusSeeOther)
}

type analyzeFunc func(context.Context, *dataset.Table) (*core.Run, error)

func (s *Server) analyzeUpload(r *http.Request, w http.ResponseWriter, analyze analyzeFunc) (*core.Run, error) {
	maxSize := s.cfg.Analysis.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		if isTooLarge(err) {
			return nil, fmt.Errorf("%w: limit is %d bytes", errFileTooLarge, maxSize)
		}
		return nil, fmt.Errorf("invalid upload form: %w", err)
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, errNoFile
	}
	defer file.Close()

	tbl, err := dataset.Read(file, header.Filename, r.FormValue("sheet"))
	if err != nil {
		if isTooLarge(err) {
			return nil, errFileTooLarge
		}
		return nil, err
	}

	return analyze(withRequestMetadata(r.Context(), r), tbl)
}

// isTooLarge reports whether err comes from the MaxBytesReader limit. Some
// multipart paths flatten the error, so the message is checked as well.
func isTooLarge(err error) bool {
	var tooLarge *http.MaxBytesError
	return errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large")
}
