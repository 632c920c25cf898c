// Package server binds the generation pipelines and the report aggregator to
// their HTTP contract.
package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/yukiharu/aivis/internal/generate"
	"github.com/yukiharu/aivis/internal/report"
	"github.com/yukiharu/aivis/pkg/openai"
)

// maxBodyBytes caps request bodies at 1 MiB.
const maxBodyBytes = 1 << 20

// Server owns the HTTP surface. The credential is checked per request before
// any upstream call so a missing key short-circuits with zero network I/O.
type Server struct {
	apiKey string
	gen    *generate.Generator
	runner *report.Runner
}

// New builds a Server around constructed collaborators.
func New(apiKey string, gen *generate.Generator, runner *report.Runner) *Server {
	return &Server{apiKey: apiKey, gen: gen, runner: runner}
}

// Router assembles the chi routing tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", s.handleHealth)
	r.Get("/api/health", s.handleHealth)
	r.Post("/api/generate", s.handleGenerate)
	r.Post("/api/generate/persona", s.handleGeneratePersona)
	r.Post("/api/generate/questions", s.handleGenerateQuestions)
	r.Post("/api/summarize", s.handleSummarizePost)
	r.Get("/api/summarize", s.handleSummarizeGet)
	r.Post("/api/report/run", s.handleReportRun)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// requireKey writes the missing-credential failure and reports whether the
// request may proceed.
func (s *Server) requireKey(w http.ResponseWriter) bool {
	if s.apiKey == "" {
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "missing_api_key"})
		return false
	}
	return true
}

type errorBody struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// writeFailure maps a pipeline error onto the HTTP failure taxonomy. Only a
// short diagnostic string leaves the process, never a stack trace.
func writeFailure(w http.ResponseWriter, route string, err error) {
	switch {
	case openai.IsTimeout(err):
		writeJSON(w, http.StatusGatewayTimeout, errorBody{Error: "timeout"})
	case eris.Is(err, generate.ErrUpstreamEmpty):
		writeJSON(w, http.StatusBadGateway, errorBody{Error: "upstream_empty"})
	default:
		if ue, ok := openai.AsUpstream(err); ok {
			writeJSON(w, http.StatusBadGateway, errorBody{Error: "upstream_error", Detail: ue.Body})
			return
		}
		zap.L().Error("request failed", zap.String("route", route), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "server_error", Detail: err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid_body"})
		return false
	}
	return true
}
