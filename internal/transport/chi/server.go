// Package chi is the HTTP surface: query parsing, quota admission,
// sentinel-error to status-code mapping, JSON rendering.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/newsdex/newsdex/internal/domain"
	healthuc "github.com/newsdex/newsdex/internal/usecase/health"
	quotauc "github.com/newsdex/newsdex/internal/usecase/quota"
	searchuc "github.com/newsdex/newsdex/internal/usecase/search"
	useruc "github.com/newsdex/newsdex/internal/usecase/user"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server wires the use cases to HTTP handlers.
type Server struct {
	search        *searchuc.Service
	quota         *quotauc.Service
	users         *useruc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	search *searchuc.Service,
	quota *quotauc.Service,
	users *useruc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		search: search,
		quota:  quota,
		users:  users,
		health: health,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrEmptyQuery, http.StatusBadRequest, codeEmptyQuery),
		sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, codeInvalidQuery),
		sentinelHandler(domain.ErrDocumentNotFound, http.StatusNotFound, codeDocumentNotFound),
		sentinelHandler(domain.ErrUserNotFound, http.StatusNotFound, codeUserNotFound),
		sentinelHandler(domain.ErrQuotaExceeded, http.StatusTooManyRequests, codeQuotaExceeded),
		sentinelHandler(domain.ErrEncoderUnavailable, http.StatusBadGateway, codeEncoderUnavailable),
		sentinelHandler(domain.ErrStoreUnavailable, http.StatusServiceUnavailable, codeStoreUnavailable),
	}
	return s
}

// Routes mounts all handlers on the router.
func (s *Server) Routes(r chi.Router) {
	r.Get("/search", s.SearchDocuments)
	r.Get("/users/{user_id}", s.GetUser)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// Error response codes.
const (
	codeEmptyQuery         = "empty_query"
	codeInvalidQuery       = "invalid_query"
	codeDocumentNotFound   = "document_not_found"
	codeUserNotFound       = "user_not_found"
	codeQuotaExceeded      = "quota_exceeded"
	codeEncoderUnavailable = "encoder_unavailable"
	codeStoreUnavailable   = "store_unavailable"
	codeBadRequest         = "bad_request"
	codeInternalError      = "internal_error"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type searchResultItem struct {
	DocumentID int64   `json:"document_id"`
	Title      string  `json:"title"`
	Content    string  `json:"content"`
	URL        string  `json:"url"`
	Score      float64 `json:"similarity_score"`
}

type searchResponse struct {
	Results []searchResultItem `json:"results"`
	Message string             `json:"message,omitempty"`
}

type userResponse struct {
	UserID       string `json:"user_id"`
	RequestCount int64  `json:"request_count"`
}

// SearchDocuments handles GET /search.
// Query parameters: query (required), top_k, threshold, user_id (required).
// Admission control runs before any encoding so rejected requests never
// consume provider tokens.
func (s *Server) SearchDocuments(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	userID := params.Get("user_id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, codeBadRequest, "user_id parameter is required")
		return
	}

	topK := 0
	if v := params.Get("top_k"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeBadRequest, "top_k must be an integer")
			return
		}
		topK = n
	}

	var threshold *float64
	if v := params.Get("threshold"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeBadRequest, "threshold must be a number")
			return
		}
		threshold = &f
	}

	q, err := domain.NewQuery(params.Get("query"), topK, threshold)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	if err := s.quota.Allow(r.Context(), userID); err != nil {
		s.handleDomainError(w, err)
		return
	}

	results, err := s.search.Search(r.Context(), q, userID)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	resp := searchResponse{Results: make([]searchResultItem, len(results))}
	for i := range results {
		resp.Results[i] = searchResultItem{
			DocumentID: results[i].DocumentID(),
			Title:      results[i].Title(),
			Content:    results[i].Content(),
			URL:        results[i].URL(),
			Score:      results[i].Score(),
		}
	}
	if len(results) == 0 {
		resp.Message = "No documents found"
	}

	writeJSON(w, http.StatusOK, resp)
}

// GetUser handles GET /users/{user_id}.
func (s *Server) GetUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")

	u, err := s.users.Get(r.Context(), userID)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, userResponse{
		UserID:       u.UserID(),
		RequestCount: u.RequestCount(),
	})
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
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

	writeJSON(w, httpStatus, healthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrEmptyQuery,
		domain.ErrInvalidQuery,
		domain.ErrDocumentNotFound,
		domain.ErrUserNotFound,
		domain.ErrQuotaExceeded,
		domain.ErrEncoderUnavailable,
		domain.ErrStoreUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
