// Package api exposes the Ohbot extension over HTTP so a block editor (or
// any other client) can create targets, run blocks and poll the lip value.
//
//	GET  /v1/info                         extension metadata
//	POST /v1/targets                      create a sprite target
//	POST /v1/targets/{id}/clone           clone a sprite target
//	POST /v1/targets/{id}/blocks/{opcode} run one block
//	GET  /v1/lip                          current lip value
//	POST /v1/stop                         global stop
//	GET  /v1/project, PUT /v1/project     YAML project export / import
//	GET  /healthz, /readyz, /metrics
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/MrWong99/ohbot/internal/extension"
	"github.com/MrWong99/ohbot/internal/health"
	"github.com/MrWong99/ohbot/internal/host"
	"github.com/MrWong99/ohbot/internal/observe"
)

// maxBodySize bounds request bodies; projects are the largest payload.
const maxBodySize = 4 << 20

// Option configures a [Server].
type Option func(*Server)

// WithHealth mounts /healthz and /readyz served by h.
func WithHealth(h *health.Handler) Option {
	return func(s *Server) { s.health = h }
}

// WithMetrics records HTTP metrics to m. Default: [observe.DefaultMetrics].
func WithMetrics(m *observe.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithMetricsHandler overrides the /metrics handler. Default: promhttp.Handler.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) { s.metricsHandler = h }
}

// WithCORSOrigins sets the allowed CORS origins. Default: any origin.
func WithCORSOrigins(origins ...string) Option {
	return func(s *Server) { s.corsOrigins = origins }
}

// Server serves the Ohbot HTTP API.
type Server struct {
	rt  *host.Runtime
	ext *extension.Extension

	health         *health.Handler
	metrics        *observe.Metrics
	metricsHandler http.Handler
	corsOrigins    []string
}

// New creates a Server for ext, which must be attached to rt.
func New(rt *host.Runtime, ext *extension.Extension, opts ...Option) *Server {
	s := &Server{rt: rt, ext: ext}
	for _, o := range opts {
		o(s)
	}
	if s.metrics == nil {
		s.metrics = observe.DefaultMetrics()
	}
	if s.metricsHandler == nil {
		s.metricsHandler = promhttp.Handler()
	}
	if len(s.corsOrigins) == 0 {
		s.corsOrigins = []string{"*"}
	}
	return s
}

// Handler returns the routed handler wrapped in CORS and the observe
// middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/info", s.handleInfo)
	mux.HandleFunc("POST /v1/targets", s.handleCreateTarget)
	mux.HandleFunc("POST /v1/targets/{id}/clone", s.handleClone)
	mux.HandleFunc("POST /v1/targets/{id}/blocks/{opcode}", s.handleBlock)
	mux.HandleFunc("GET /v1/lip", s.handleLip)
	mux.HandleFunc("POST /v1/stop", s.handleStop)
	mux.HandleFunc("GET /v1/project", s.handleGetProject)
	mux.HandleFunc("PUT /v1/project", s.handlePutProject)
	mux.Handle("GET /metrics", s.metricsHandler)
	if s.health != nil {
		s.health.Register(mux)
	}

	c := cors.New(cors.Options{
		AllowedOrigins: s.corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	})
	return c.Handler(observe.Middleware(s.metrics)(mux))
}

func (s *Server) handleInfo(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.ext.Info())
}

type createTargetRequest struct {
	Name string `json:"name"`
}

type targetResponse struct {
	ID string `json:"id"`
}

// handleCreateTarget handles POST /v1/targets. The body is optional.
func (s *Server) handleCreateTarget(w http.ResponseWriter, r *http.Request) {
	var req createTargetRequest
	if err := decodeOptional(r, &req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	id := s.rt.AddTarget(req.Name)
	observe.Logger(r.Context()).Debug("target created", "id", id, "name", req.Name)
	writeJSON(w, http.StatusCreated, targetResponse{ID: id})
}

// handleClone handles POST /v1/targets/{id}/clone.
func (s *Server) handleClone(w http.ResponseWriter, r *http.Request) {
	id, err := s.rt.Clone(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, targetResponse{ID: id})
}

// handleBlock handles POST /v1/targets/{id}/blocks/{opcode}. The body is
// the block's argument object and may be empty.
func (s *Server) handleBlock(w http.ResponseWriter, r *http.Request) {
	var args map[string]any
	if err := decodeOptional(r, &args); err != nil {
		http.Error(w, "invalid block arguments", http.StatusBadRequest)
		return
	}
	res, err := s.ext.Invoke(r.Context(), r.PathValue("id"), r.PathValue("opcode"), args)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type lipResponse struct {
	Lip float64 `json:"lip"`
}

func (s *Server) handleLip(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, lipResponse{Lip: s.ext.GetLip()})
}

// handleStop handles POST /v1/stop, the equivalent of the editor's stop
// button.
func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	s.rt.StopAll(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetProject(w http.ResponseWriter, _ *http.Request) {
	var buf bytes.Buffer
	if err := s.rt.SaveProject(&buf); err != nil {
		http.Error(w, "failed to save project: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// handlePutProject replaces the runtime contents with the uploaded
// project. A rejected project leaves the runtime unchanged.
func (s *Server) handlePutProject(w http.ResponseWriter, r *http.Request) {
	if err := s.rt.LoadProject(http.MaxBytesReader(w, r.Body, maxBodySize)); err != nil {
		http.Error(w, "invalid project: "+err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// decodeOptional decodes a JSON body into v. An empty body leaves v
// untouched. Numbers are kept as [json.Number] so that block arguments
// keep their textual form.
func decodeOptional(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodySize))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps extension and runtime errors to status codes.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, host.ErrTargetNotFound):
		status = http.StatusNotFound
	case errors.Is(err, extension.ErrUnknownOpcode):
		status = http.StatusBadRequest
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
