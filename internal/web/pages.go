package web

//go:generate templ generate -path ./templates

import (
	"net/http"

	"github.com/a-h/templ"

	"github.com/M4dhxv/Financial-Analysis/internal/logging"
	"github.com/M4dhxv/Financial-Analysis/internal/web/templates"
)

func renderHTML(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := c.Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render page", "path", r.URL.Path, "error", err)
	}
}

func (s *Server) handleIndexPage(w http.ResponseWriter, r *http.Request) {
	runs, err := s.service.Runs(r.Context(), defaultRunLimit)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	renderHTML(w, r, http.StatusOK, templates.Dashboard(runs, s.service.LimiterStatus()))
}

func (s *Server) handleRunPage(w http.ResponseWriter, r *http.Request) {
	run, ok := s.loadRun(w, r)
	if !ok {
		return
	}
	renderHTML(w, r, http.StatusOK, templates.RunPage(run))
}
