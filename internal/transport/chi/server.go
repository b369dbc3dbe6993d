// Package chi exposes the search engine and the catalog over HTTP.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/pocketnavi/pocketnavi/internal/domain"
	domarch "github.com/pocketnavi/pocketnavi/internal/domain/architect"
	dombuilding "github.com/pocketnavi/pocketnavi/internal/domain/building"
	"github.com/pocketnavi/pocketnavi/internal/domain/search/page"
	"github.com/pocketnavi/pocketnavi/internal/domain/search/result"
	healthuc "github.com/pocketnavi/pocketnavi/internal/usecase/health"
)

// MaxQueryLength bounds the raw q parameter.
const MaxQueryLength = 256

// Searcher runs a paged building search.
type Searcher interface {
	SearchPage(ctx context.Context, raw string, number int) (result.Response, page.Page)
}

// Catalog answers slug lookups.
type Catalog interface {
	GetBuilding(ctx context.Context, slug string) (dombuilding.Building, error)
	GetArchitect(ctx context.Context, slug string) (domarch.Architect, error)
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the public read API.
type Server struct {
	search        Searcher
	catalog       Catalog
	health        HealthChecker
	metrics       http.Handler
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(search Searcher, catalog Catalog, health HealthChecker, logger *zap.Logger) *Server {
	s := &Server{
		search:  search,
		catalog: catalog,
		health:  health,
		metrics: promhttp.Handler(),
		logger:  logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, ErrorResponseCodeNotFound),
		sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, ErrorResponseCodeBadRequest),
	}
	return s
}

// WithMetricsHandler replaces the /metrics handler, e.g. for a custom registry.
func (s *Server) WithMetricsHandler(h http.Handler) *Server {
	s.metrics = h
	return s
}

// Routes mounts every endpoint on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/api/search", s.SearchBuildings)
	r.Get("/api/buildings/{slug}", s.GetBuilding)
	r.Get("/api/architects/{slug}", s.GetArchitect)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, ErrorResponseCodeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, ErrorResponseCodeBadRequest, "method not allowed")
	})
}

// SearchBuildings handles GET /api/search?q=&page=.
func (s *Server) SearchBuildings(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	var q string
	if err := runtime.BindQueryParameter("form", true, false, "q", params, &q); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "Invalid q parameter")
		return
	}
	if len(q) > MaxQueryLength {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "Query too long")
		return
	}

	resp, p := s.search.SearchPage(r.Context(), q, pageNumber(params))
	if resp.Partial {
		w.Header().Set("X-Search-Partial", "true")
	}
	writeJSON(w, http.StatusOK, searchToDTO(q, &resp, p))
}

// pageNumber reads the page parameter leniently: a value that is not an
// integer contributes its leading digits, or nothing. The search clamps the
// result to the first page.
func pageNumber(params url.Values) int {
	number := 1
	if err := runtime.BindQueryParameter("form", true, false, "page", params, &number); err == nil {
		return number
	}
	raw := strings.TrimSpace(params.Get("page"))
	end := 0
	if end < len(raw) && (raw[end] == '-' || raw[end] == '+') {
		end++
	}
	digits := end
	for end < len(raw) && raw[end] >= '0' && raw[end] <= '9' {
		end++
	}
	if end == digits {
		return 1
	}
	// on overflow Atoi still returns the saturated value
	n, _ := strconv.Atoi(raw[:end])
	return n
}

// GetBuilding handles GET /api/buildings/{slug}.
func (s *Server) GetBuilding(w http.ResponseWriter, r *http.Request) {
	b, err := s.catalog.GetBuilding(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, buildingToDetail(&b))
}

// GetArchitect handles GET /api/architects/{slug}.
func (s *Server) GetArchitect(w http.ResponseWriter, r *http.Request) {
	a, err := s.catalog.GetArchitect(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, architectToDetail(&a))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	s.metrics.ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorResponseCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrNotFound,
		domain.ErrInvalidQuery,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorResponseCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			s.logger.Debug("domain error", zap.Error(err))
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorResponseCodeInternalError, "internal error")
}
