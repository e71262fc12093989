package httpserver

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	appruns "github.com/bryanwahyu/docwiki/internal/application/runs"
	domai "github.com/bryanwahyu/docwiki/internal/domain/ai"
	analysisdom "github.com/bryanwahyu/docwiki/internal/domain/analysis"
	domain "github.com/bryanwahyu/docwiki/internal/domain/runs"
	"github.com/bryanwahyu/docwiki/internal/middleware"
)

type Router struct {
	runsSvc *appruns.Service
}

func NewRouter(runsSvc *appruns.Service) http.Handler {
	r := &Router{runsSvc: runsSvc}
	mux := chi.NewRouter()

	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	mux.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	mux.Route("/v1/{tenant}", func(rt chi.Router) {
		rt.Post("/analyze", r.wrap(r.handleTriggerRun))
		rt.Get("/runs/latest", r.wrap(r.handleLatest))
		rt.Get("/runs/{id}", r.wrap(r.handleGet))
		rt.Get("/runs/{id}/failures", r.wrap(r.handleFailures))
		rt.Get("/analyses", r.wrap(r.handleListAnalyses))
		rt.Get("/summary", r.wrap(r.handleSummary))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				http.Error(w, "not found", http.StatusNotFound)
				return
			}
			if errors.Is(err, domai.ErrQuotaExceeded) {
				http.Error(w, "ai quota exceeded", http.StatusTooManyRequests)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

// POST /v1/{tenant}/analyze
// Body: {"project": "...", "architecture_notes": "...", "units": [...]}
// The run executes in the background; the response only acknowledges the queue.
func (r *Router) handleTriggerRun(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	if err := middleware.ValidateTenantID(tenant); err != nil {
		return err
	}

	var body struct {
		Project           string             `json:"project"`
		ArchitectureNotes string             `json:"architecture_notes"`
		Units             []analysisdom.Unit `json:"units"`
		Metadata          any                `json:"metadata"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return err
	}
	if body.Project == "" {
		return fmt.Errorf("project is required")
	}
	if err := middleware.ValidateUnits(body.Units); err != nil {
		return err
	}

	cmd := appruns.TriggerRunCommand{
		TenantID:          tenant,
		Project:           body.Project,
		ArchitectureNotes: body.ArchitectureNotes,
		Units:             body.Units,
		Metadata:          body.Metadata,
	}

	go func() {
		middleware.IncrementRuns()
		middleware.IncrementRunsRunning()
		defer middleware.DecrementRunsRunning()

		result, err := r.runsSvc.TriggerRunUntilDone(cmd)
		if err != nil {
			log.Printf("background analysis error tenant=%s project=%s err=%v", tenant, cmd.Project, err)
			middleware.IncrementRunsFailed()
			return
		}
		middleware.AddUnitsAnalyzed(result.Counts.Analyzed)
		middleware.AddUnitsFailed(result.Counts.Failed)
		log.Printf("analysis run finished tenant=%s run=%s status=%s analyzed=%d failed=%d",
			tenant, result.ID, result.Status, result.Counts.Analyzed, result.Counts.Failed)
	}()

	resp := map[string]any{
		"status":   "queued",
		"tenant":   tenant,
		"project":  body.Project,
		"units":    len(body.Units),
		"message":  "analysis started in background",
		"queuedAt": time.Now(),
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(resp)
}

// GET /v1/{tenant}/runs/latest?limit=20
func (r *Router) handleLatest(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))

	list, err := r.runsSvc.Latest(req.Context(), tenant, middleware.ValidateLimit(limit))
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(list)
}

// GET /v1/{tenant}/runs/{id}
func (r *Router) handleGet(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	id := chi.URLParam(req, "id")

	run, err := r.runsSvc.Get(req.Context(), tenant, domain.RunID(id))
	if err != nil {
		return err
	}
	if run == nil {
		return sql.ErrNoRows
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(run)
}

// GET /v1/{tenant}/runs/{id}/failures?limit=50
func (r *Router) handleFailures(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	id := chi.URLParam(req, "id")
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))

	list, err := r.runsSvc.FailuresByRun(req.Context(), tenant, id, middleware.ValidateLimit(limit))
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(list)
}

// GET /v1/{tenant}/analyses?page=&page_size=
func (r *Router) handleListAnalyses(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	page, _ := strconv.Atoi(req.URL.Query().Get("page"))
	size, _ := strconv.Atoi(req.URL.Query().Get("page_size"))

	list, err := r.runsSvc.ListAnalyses(req.Context(), tenant, page, size)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(list)
}

// GET /v1/{tenant}/summary?days=7
func (r *Router) handleSummary(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	days, _ := strconv.Atoi(req.URL.Query().Get("days"))

	summary, err := r.runsSvc.Summary(req.Context(), tenant, middleware.ValidateDays(days))
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(summary)
}
