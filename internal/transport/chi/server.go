package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kansei-cloud/docket/internal/domain"
	domdoc "github.com/kansei-cloud/docket/internal/domain/document"
	cataloguc "github.com/kansei-cloud/docket/internal/usecase/catalog"
	healthuc "github.com/kansei-cloud/docket/internal/usecase/health"
	searchuc "github.com/kansei-cloud/docket/internal/usecase/search"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server holds the HTTP handlers for the catalog API.
type Server struct {
	catalog       *cataloguc.Service
	search        *searchuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	catalog *cataloguc.Service,
	search *searchuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		catalog: catalog,
		search:  search,
		health:  health,
		logger:  logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrDocumentNotFound, http.StatusNotFound, "Document not found"),
		sentinelHandler(domain.ErrInvalidInput, http.StatusBadRequest, ""),
		sentinelHandler(domain.ErrUnauthorized, http.StatusUnauthorized, "Invalid API key"),
		sentinelHandler(domain.ErrUnconfigured, http.StatusInternalServerError, ""),
	}
	return s
}

// Register mounts the API routes on r. externalAuth guards the
// external published-only listing and runs before any handler work.
func (s *Server) Register(r chi.Router, externalAuth func(http.Handler) http.Handler) {
	r.Get("/documents", s.ListDocuments)
	r.Post("/documents", s.CreateDocument)
	r.Post("/documents/upload-url", s.UploadURL)
	r.Get("/documents/{id}", s.GetDocument)
	r.Put("/documents/{id}", s.UpdateDocument)
	r.Delete("/documents/{id}", s.DeleteDocument)
	r.With(externalAuth).Get("/external/documents", s.ListPublishedDocuments)
	r.Post("/search", s.Search)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// ListDocuments handles GET /documents.
func (s *Server) ListDocuments(w http.ResponseWriter, r *http.Request) {
	params := make(map[string]string)
	for _, key := range []string{"category", "topCategory", "categories", "title"} {
		if v := r.URL.Query().Get(key); v != "" {
			params[key] = v
		}
	}

	listing, err := s.catalog.List(r.Context(), params)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, listing)
}

// CreateDocument handles POST /documents.
func (s *Server) CreateDocument(w http.ResponseWriter, r *http.Request) {
	var payload domdoc.Document
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	doc, err := s.catalog.Create(r.Context(), payload)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, doc)
}

// GetDocument handles GET /documents/{id}.
func (s *Server) GetDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	detail, err := s.catalog.GetDetail(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, detail)
}

// UpdateDocument handles PUT /documents/{id}.
func (s *Server) UpdateDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var p domdoc.Patch
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	doc, err := s.catalog.Update(r.Context(), id, p)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, doc)
}

// DeleteDocument handles DELETE /documents/{id}.
func (s *Server) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.catalog.Delete(r.Context(), id); err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Document deleted successfully",
	})
}

// UploadURL handles POST /documents/upload-url.
func (s *Server) UploadURL(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FileName string `json:"fileName"`
		FileType string `json:"fileType"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	grant, err := s.catalog.UploadURL(r.Context(), req.FileName, req.FileType)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, grant)
}

// ListPublishedDocuments handles GET /external/documents.
func (s *Server) ListPublishedDocuments(w http.ResponseWriter, r *http.Request) {
	listing, err := s.catalog.ListPublished(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, listing)
}

// Search handles POST /search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query           string `json:"query"`
		NumberOfResults int    `json:"numberOfResults"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	resp, err := s.search.Search(r.Context(), req.Query, req.NumberOfResults)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
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

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// sentinelHandler returns an errorHandler that matches a single sentinel
// error. An empty msg surfaces the wrapped error text to the caller.
func sentinelHandler(sentinel error, status int, msg string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		m := msg
		if m == "" {
			m = err.Error()
		}
		writeError(w, status, m)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}
	// Backend failure. The message goes to the caller as-is.
	s.logger.Error("backend error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, err.Error())
}
