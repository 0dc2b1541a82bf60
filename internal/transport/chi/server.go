package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	chirouter "github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/vendry-cloud/vendry/internal/domain"
	"github.com/vendry-cloud/vendry/internal/metrics"
	healthuc "github.com/vendry-cloud/vendry/internal/usecase/health"
	searchuc "github.com/vendry-cloud/vendry/internal/usecase/search"
	vendoruc "github.com/vendry-cloud/vendry/internal/usecase/vendor"
)

// Error response codes returned to clients.
const (
	codeBadRequest        = "bad_request"
	codeValidationFailed  = "validation_failed"
	codeInvalidCoordinate = "invalid_coordinate"
	codeInvalidRadius     = "invalid_radius"
	codeVendorNotFound    = "vendor_not_found"
	codeSourceUnavailable = "source_unavailable"
	codeInternalError     = "internal_error"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server is the HTTP API over the search and vendor services.
type Server struct {
	search  *searchuc.Service
	vendors *vendoruc.Service
	health  *healthuc.Service
	logger  *zap.Logger

	maxRadiusKm   float64
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. maxRadiusKm <= 0 falls back to
// the default search radius cap.
func NewServer(
	search *searchuc.Service,
	vendors *vendoruc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
	maxRadiusKm float64,
) *Server {
	s := &Server{
		search:      search,
		vendors:     vendors,
		health:      health,
		logger:      logger,
		maxRadiusKm: maxRadiusKm,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidCoordinate, http.StatusBadRequest, codeInvalidCoordinate),
		sentinelHandler(domain.ErrInvalidRadius, http.StatusBadRequest, codeInvalidRadius),
		sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrInvalidVendor, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrVendorNotFound, http.StatusNotFound, codeVendorNotFound),
		sentinelHandler(domain.ErrSourceUnavailable, http.StatusServiceUnavailable, codeSourceUnavailable),
	}
	return s
}

// RegisterRoutes mounts all API routes on the router.
func (s *Server) RegisterRoutes(r chirouter.Router) {
	r.Post("/api/v1/search", s.handleSearch)
	r.Post("/api/v1/vendors", s.handleCreateVendor)
	r.Get("/api/v1/vendors/count", s.handleCountVendors)
	r.Put("/api/v1/vendors/{id}", s.handlePutVendor)
	r.Get("/api/v1/vendors/{id}", s.handleGetVendor)
	r.Delete("/api/v1/vendors/{id}", s.handleDeleteVendor)
	r.Get("/health", s.handleHealth)
	r.Get("/metrics", s.handleMetrics)
}

// handleSearch handles POST /api/v1/search.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	q, err := queryFromRequest(req, s.maxRadiusKm)
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues("error").Inc()
		s.handleDomainError(w, err)
		return
	}

	resp, err := s.search.Search(r.Context(), q)
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues("error").Inc()
		s.handleDomainError(w, err)
		return
	}

	metrics.SearchRequestsTotal.WithLabelValues("ok").Inc()
	metrics.SearchDuration.WithLabelValues(strconv.FormatBool(resp.Cached)).
		Observe(resp.Elapsed.Seconds())
	if !resp.Cached {
		metrics.SearchCandidates.WithLabelValues("fetched").Observe(float64(resp.Fetched))
		metrics.SearchCandidates.WithLabelValues("ranked").Observe(float64(len(resp.Results)))
	}

	writeJSON(w, http.StatusOK, searchResponseFromResult(resp))
}

// handleCreateVendor handles POST /api/v1/vendors.
func (s *Server) handleCreateVendor(w http.ResponseWriter, r *http.Request) {
	var req vendorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	rec, err := s.vendors.Create(r.Context(), req.toParams())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.Header().Set("Location", "/api/v1/vendors/"+rec.ID())
	writeJSON(w, http.StatusCreated, vendorToResponse(rec))
}

// handlePutVendor handles PUT /api/v1/vendors/{id}.
func (s *Server) handlePutVendor(w http.ResponseWriter, r *http.Request) {
	id := chirouter.URLParam(r, "id")

	var req vendorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	rec, err := s.vendors.Put(r.Context(), id, req.toParams())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, vendorToResponse(rec))
}

// handleGetVendor handles GET /api/v1/vendors/{id}.
func (s *Server) handleGetVendor(w http.ResponseWriter, r *http.Request) {
	rec, err := s.vendors.Get(r.Context(), chirouter.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, vendorToResponse(rec))
}

// handleDeleteVendor handles DELETE /api/v1/vendors/{id}.
func (s *Server) handleDeleteVendor(w http.ResponseWriter, r *http.Request) {
	if err := s.vendors.Delete(r.Context(), chirouter.URLParam(r, "id")); err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleCountVendors handles GET /api/v1/vendors/count.
func (s *Server) handleCountVendors(w http.ResponseWriter, r *http.Request) {
	n, err := s.vendors.Count(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, countResponse{Count: n})
}

// handleHealth handles GET /health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// handleMetrics handles GET /metrics.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
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
		domain.ErrInvalidCoordinate,
		domain.ErrInvalidRadius,
		domain.ErrInvalidQuery,
		domain.ErrInvalidVendor,
		domain.ErrVendorNotFound,
		domain.ErrSourceUnavailable,
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
