// Package server exposes the acknowledgement pipeline over HTTP.
//
// Routes:
//
//	GET  /healthz              liveness probe and counters
//	POST /v1/acknowledgements  run the pipeline for one manifest
//
// The acknowledgements endpoint accepts either a JSON body shaped like
// [pipeline.Options] (with the manifest text in "manifest"), or a raw
// Cargo.toml body with options in the query string. It answers with JSON,
// or with the rendered markdown when the client asks for text/markdown or
// passes output=markdown. output=both embeds the markdown in the JSON.
//
// Callers may pass their own provider tokens in the X-GitHub-Token and
// X-GitLab-Token headers. Contributor lists fetched with a caller's token
// are cached under a key scope derived from that token.
package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/acknowledge/pkg/buildinfo"
	"github.com/matzehuels/acknowledge/pkg/cache"
	"github.com/matzehuels/acknowledge/pkg/deps"
	"github.com/matzehuels/acknowledge/pkg/errors"
	"github.com/matzehuels/acknowledge/pkg/model"
	"github.com/matzehuels/acknowledge/pkg/observability"
	"github.com/matzehuels/acknowledge/pkg/pipeline"
	"github.com/matzehuels/acknowledge/pkg/render"
)

// MaxManifestSize bounds request bodies.
const MaxManifestSize = 1 << 20

// Caller token headers.
const (
	HeaderGitHubToken = "X-GitHub-Token"
	HeaderGitLabToken = "X-GitLab-Token"
)

// Config configures a Server.
type Config struct {
	// Runner executes pipeline runs. Its Keyer is replaced per request when
	// a caller supplies tokens.
	Runner *pipeline.Runner

	Logger *log.Logger

	// Server-side tokens used when a caller supplies none.
	GitHubToken string
	GitLabToken string

	// Tally, when set, is reported by /healthz.
	Tally *observability.Tally
}

// Server handles HTTP requests.
type Server struct {
	cfg    Config
	router *chi.Mux
}

// New creates a server and registers its routes.
func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	s := &Server{cfg: cfg}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.health)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/acknowledgements", s.acknowledgements)
	})

	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.cfg.Logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start).Round(time.Millisecond),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

type healthResponse struct {
	Status  string                       `json:"status"`
	Version string                       `json:"version"`
	Stats   *observability.TallySnapshot `json:"stats,omitempty"`
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	resp := healthResponse{Status: "ok", Version: buildinfo.Version}
	if s.cfg.Tally != nil {
		snap := s.cfg.Tally.Snapshot()
		resp.Stats = &snap
	}
	respondJSON(w, http.StatusOK, resp)
}

// response is the JSON body of a successful run.
type response struct {
	RunID    string           `json:"run_id"`
	Model    *model.Model     `json:"model"`
	Warnings []errors.Warning `json:"warnings"`
	Stats    pipeline.Stats   `json:"stats"`
	Markdown string           `json:"markdown,omitempty"`
}

type errorResponse struct {
	Error   errors.Code `json:"error"`
	Message string      `json:"message"`
}

func (s *Server) acknowledgements(w http.ResponseWriter, r *http.Request) {
	opts, err := parseRequest(r)
	if err != nil {
		respondError(w, err)
		return
	}
	if opts.Manifest == "" {
		respondError(w, errors.New(errors.ErrCodeInvalidManifest, "request has no manifest content"))
		return
	}

	ghToken := r.Header.Get(HeaderGitHubToken)
	glToken := r.Header.Get(HeaderGitLabToken)
	runner := *s.cfg.Runner
	if ghToken != "" || glToken != "" {
		runner.Keyer = cache.TokenScope(s.cfg.Runner.Keyer, ghToken+"\x00"+glToken)
	} else {
		ghToken, glToken = s.cfg.GitHubToken, s.cfg.GitLabToken
	}
	opts.GitHubToken = ghToken
	opts.GitLabToken = glToken
	opts.Logger = s.cfg.Logger.With("request_id", middleware.GetReqID(r.Context()))

	result, err := runner.Execute(r.Context(), opts)
	if err != nil {
		respondError(w, err)
		return
	}

	markdown := wantsMarkdown(r)
	if !markdown && r.URL.Query().Get("output") != "both" {
		respondJSON(w, http.StatusOK, response{
			RunID:    result.RunID,
			Model:    result.Model,
			Warnings: result.Warnings,
			Stats:    result.Stats,
		})
		return
	}

	doc, err := render.Markdown(result.Model)
	if err != nil {
		respondError(w, err)
		return
	}
	if markdown {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.Header().Set("X-Run-ID", result.RunID)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(doc)
		return
	}
	respondJSON(w, http.StatusOK, response{
		RunID:    result.RunID,
		Model:    result.Model,
		Warnings: result.Warnings,
		Stats:    result.Stats,
		Markdown: string(doc),
	})
}

// parseRequest reads run options from a JSON body, or from a raw manifest
// body plus query parameters.
func parseRequest(r *http.Request) (pipeline.Options, error) {
	var opts pipeline.Options
	body, err := io.ReadAll(io.LimitReader(r.Body, MaxManifestSize+1))
	if err != nil {
		return opts, errors.Wrap(errors.ErrCodeInvalidInput, err, "read request body")
	}
	if len(body) > MaxManifestSize {
		return opts, errors.New(errors.ErrCodeInvalidInput, "request body exceeds %d bytes", MaxManifestSize)
	}

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(body, &opts); err != nil {
			return opts, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request")
		}
		return opts, nil
	}

	q := r.URL.Query()
	opts.Manifest = string(body)
	opts.Breadth = deps.Breadth(q.Get("breadth"))
	opts.Format = model.Format(q.Get("format"))
	opts.ExtraSources = q["source"]
	opts.Mention = q.Get("mention") == "true"
	opts.Refresh = q.Get("refresh") == "true"
	if t := q.Get("threshold"); t != "" {
		n, err := strconv.Atoi(t)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidInput, "threshold must be an integer (got %q)", t)
		}
		opts.Threshold = &n
	}
	return opts, nil
}

func wantsMarkdown(r *http.Request) bool {
	if r.URL.Query().Get("output") == "markdown" {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "text/markdown")
}

// statusFor maps error codes to HTTP statuses.
func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidManifest,
		errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidBreadth:
		return http.StatusBadRequest
	case errors.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case errors.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case errors.ErrCodeNetwork:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func respondError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	respondJSON(w, statusFor(err), errorResponse{Error: code, Message: errors.UserMessage(err)})
}

// respondJSON writes a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
