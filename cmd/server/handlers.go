package main

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/lychee-technology/listmeta"
	"github.com/lychee-technology/listmeta/factory"
	"github.com/lychee-technology/listmeta/internal"
	"go.uber.org/zap"
)

// Server serves annotated list pages and their metadata.
type Server struct {
	annotator listmeta.MetadataAnnotator
	lists     listmeta.RecordStore
	checks    map[string]factory.HealthCheck
}

// NewServer creates a new Server instance
func NewServer(annotator listmeta.MetadataAnnotator, lists listmeta.RecordStore, checks map[string]factory.HealthCheck) *Server {
	return &Server{
		annotator: annotator,
		lists:     lists,
		checks:    checks,
	}
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	router := chi.NewRouter()
	router.Use(chimw.RealIP)
	router.Use(withRequestLogging)
	router.Use(chimw.Recoverer)
	router.Use(chimw.Timeout(30 * time.Second))

	router.Get("/healthz", s.handleHealth)
	router.Get("/lists/{id}", s.handleListPage)
	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/lists/{id}/metadata", s.handleListMetadata)
	})
	return router
}

// annotate loads the list named by the route and runs the annotator over a
// fresh metadata set. The returned status is meaningful only when err != nil.
func (s *Server) annotate(r *http.Request, view string) (*listmeta.ListRecord, *listmeta.MetadataSet, int, error) {
	id, err := parseListID(r)
	if err != nil {
		return nil, nil, http.StatusBadRequest, err
	}

	record, err := s.lists.GetList(r.Context(), id)
	if err != nil {
		if listmeta.IsNotFound(err) {
			return nil, nil, http.StatusNotFound, fmt.Errorf("list %d not found", id)
		}
		zap.S().Errorw("failed to load list", "list_id", id, "err", err)
		return nil, nil, http.StatusInternalServerError, fmt.Errorf("failed to load list %d", id)
	}

	set := listmeta.NewMetadataSet()
	if s.annotator.CanView(view) {
		s.annotator.OnLoadData(r.Context(), *record, set)
	}
	return record, set, http.StatusOK, nil
}

// handleListPage handles GET /lists/{id}
func (s *Server) handleListPage(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() {
		internal.EmitRequestLatency(r.Context(), "/lists/{id}", time.Since(start).Milliseconds())
	}()

	record, set, status, err := s.annotate(r, listmeta.ViewList)
	if err != nil {
		http.Error(w, err.Error(), status)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := internal.RenderListPage(w, *record, set); err != nil {
		zap.S().Errorw("failed to render list page", "list_id", record.ID, "err", err)
	}
}

// ListMetadataResponse is the payload of the metadata endpoint.
type ListMetadataResponse struct {
	List listmeta.ListRecord   `json:"list"`
	Tags *listmeta.MetadataSet `json:"tags"`
}

// handleListMetadata handles GET /api/v1/lists/{id}/metadata
func (s *Server) handleListMetadata(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() {
		internal.EmitRequestLatency(r.Context(), "/api/v1/lists/{id}/metadata", time.Since(start).Milliseconds())
	}()

	record, set, status, err := s.annotate(r, listmeta.ViewList)
	if err != nil {
		writeError(w, status, err.Error())
		return
	}
	writeSuccess(w, http.StatusOK, ListMetadataResponse{List: *record, Tags: set})
}

// HealthStatus reports each dependency as "ok" or its error.
type HealthStatus struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// handleHealth handles GET /healthz
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	names := make([]string, 0, len(s.checks))
	for name := range s.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	health := HealthStatus{Status: "ok", Checks: make(map[string]string, len(names))}
	for _, name := range names {
		if err := s.checks[name](ctx); err != nil {
			zap.S().Warnw("health check failed", "check", name, "err", err)
			health.Status = "unavailable"
			health.Checks[name] = err.Error()
			continue
		}
		health.Checks[name] = "ok"
	}

	if health.Status != "ok" {
		writeJSON(w, http.StatusServiceUnavailable, health)
		return
	}
	writeJSON(w, http.StatusOK, health)
}
