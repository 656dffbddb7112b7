// Package server exposes the render lifecycle over HTTP.
//
// Each request is one diagram: the markup in the body is rendered with the
// shared engine and the response is either the SVG artifact or a JSON
// diagnostic carrying the exact markup that failed.
package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/diagramview/pkg/diagram"
	"github.com/matzehuels/diagramview/pkg/engine"
	"github.com/matzehuels/diagramview/pkg/errors"
)

// Server renders diagrams for HTTP clients.
type Server struct {
	engine  engine.Engine
	logger  *log.Logger
	timeout time.Duration
}

// New creates a server rendering with eng. timeout bounds each engine call.
func New(eng engine.Engine, logger *log.Logger, timeout time.Duration) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{engine: eng, logger: logger, timeout: timeout}
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Post("/render", s.handleRender)
	return r
}

// diagnosticResponse is the body of a failed render.
type diagnosticResponse struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
	Source  string      `json:"source"`
}

// artifactResponse is the JSON body of a successful render.
type artifactResponse struct {
	ID     string  `json:"id"`
	SVG    string  `json:"svg"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "engine": s.engine.Name()})
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, errors.MaxMarkupSize+1))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, diagnosticResponse{Code: errors.ErrCodeInvalidInput, Message: "read body: " + err.Error()})
		return
	}
	markup := string(body)
	if err := errors.ValidateMarkup(markup); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, errors.ErrCodeTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		writeJSON(w, status, diagnosticResponse{Code: errors.GetCode(err), Message: errors.UserMessage(err)})
		return
	}

	logger := s.logger.With("request_id", middleware.GetReqID(r.Context()))
	ctrl := diagram.New(s.engine, diagram.WithLogger(logger), diagram.WithTimeout(s.timeout))
	st := ctrl.Run(r.Context(), markup)

	switch st.Phase {
	case diagram.PhaseEmpty:
		w.WriteHeader(http.StatusNoContent)
	case diagram.PhaseReady:
		a := st.Artifact
		w.Header().Set("X-Diagram-Id", a.ID)
		w.Header().Set("X-Render-Duration", st.Duration.Round(time.Millisecond).String())
		if r.URL.Query().Get("format") == "json" {
			writeJSON(w, http.StatusOK, artifactResponse{ID: a.ID, SVG: string(a.SVG), Width: a.Width, Height: a.Height})
			return
		}
		w.Header().Set("Content-Type", "image/svg+xml")
		w.Header().Set("Content-Length", strconv.Itoa(len(a.SVG)))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(a.SVG)
	default:
		d := st.Diagnostic
		code := errors.GetCode(d.Err)
		if code == "" {
			code = errors.ErrCodeEngineRender
		}
		status := http.StatusUnprocessableEntity
		if code == errors.ErrCodeTimeout {
			status = http.StatusGatewayTimeout
		}
		writeJSON(w, status, diagnosticResponse{Code: code, Message: d.Message, Source: d.Source})
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).Round(time.Millisecond))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
