package web

// errors.go provides unified error response handling for the web layer.
//
// The error flow:
//  1. Handler encounters an error
//  2. Calls respondError(w, r, err, statusCode)
//  3. Error is mapped via core.MapError to get user-friendly message
//  4. Technical error + context is logged with request ID for correlation
//  5. User message is rendered as JSON for API clients or HTML for pages

import (
	"errors"
	"net/http"
	"strings"

	"github.com/M4dhxv/Financial-Analysis/internal/core"
	"github.com/M4dhxv/Financial-Analysis/internal/logging"
	"github.com/M4dhxv/Financial-Analysis/internal/web/templates"
)

var (
	errFileTooLarge = errors.New("file too large")
	errNoFile       = errors.New("no file provided")
	errInvalidRunID = errors.New("invalid run id")
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// respondError logs the technical error server-side and returns the mapped
// user message. A zero statusCode derives the status from the message code.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	userMsg := core.MapError(err)
	if statusCode == 0 {
		statusCode = statusForCode(userMsg.Code)
	}

	log := logging.FromContext(r.Context()).With(
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
	)
	if statusCode >= http.StatusInternalServerError {
		log.Error("request error")
	} else {
		log.Info("request rejected")
	}

	if userMsg.Code == "ANL001" {
		w.Header().Set("Retry-After", "30")
	}

	if wantsJSON(r) {
		writeJSON(w, statusCode, ErrorResponse{
			Error:   err.Error(),
			Message: userMsg.Message,
			Action:  userMsg.Action,
			Code:    userMsg.Code,
		})
		return
	}
	if isHTMX(r) {
		renderHTML(w, r, statusCode, templates.ErrorAlert(userMsg))
		return
	}
	renderHTML(w, r, statusCode, templates.ErrorPage(userMsg))
}

// statusForCode maps support codes to HTTP statuses.
func statusForCode(code string) int {
	switch {
	case code == "FILE001":
		return http.StatusRequestEntityTooLarge
	case code == "FILE003":
		return http.StatusUnsupportedMediaType
	case strings.HasPrefix(code, "FILE"):
		return http.StatusBadRequest
	case code == "SCH003":
		return http.StatusInternalServerError
	case strings.HasPrefix(code, "SCH"):
		return http.StatusUnprocessableEntity
	case code == "ANL001":
		return http.StatusServiceUnavailable
	case code == "ANL002":
		return http.StatusServiceUnavailable
	case code == "ANL003":
		return http.StatusGatewayTimeout
	case code == "RUN001":
		return http.StatusNotFound
	case code == "RUN002":
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// isHTMX checks if the request is an HTMX request.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// wantsJSON checks if the client prefers JSON response.
func wantsJSON(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

// logWriteError logs a failure that happened after the response started.
func (s *Server) logWriteError(r *http.Request, err error) {
	logging.FromContext(r.Context()).Error("write response", "path", r.URL.Path, "error", err)
}
