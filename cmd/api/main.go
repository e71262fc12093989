package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bryanwahyu/docwiki/internal/application"
	appanalysis "github.com/bryanwahyu/docwiki/internal/application/analysis"
	appruns "github.com/bryanwahyu/docwiki/internal/application/runs"
	"github.com/bryanwahyu/docwiki/internal/config"
	analysisdom "github.com/bryanwahyu/docwiki/internal/domain/analysis"
	openaicli "github.com/bryanwahyu/docwiki/internal/infra/ai/openai"
	mysqlp "github.com/bryanwahyu/docwiki/internal/infra/db/mysql"
	"github.com/bryanwahyu/docwiki/internal/infra/diagram/mermaid"
	airunner "github.com/bryanwahyu/docwiki/internal/infra/executor/ai"
	"github.com/bryanwahyu/docwiki/internal/infra/httpserver"
	minioStore "github.com/bryanwahyu/docwiki/internal/infra/storage"
	"github.com/bryanwahyu/docwiki/internal/middleware"
)

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	// load config
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	ctx := context.Background()

	// connect MySQL
	db, err := mysqlp.Connect(ctx, cfg.MySQLDSN())
	if err != nil {
		log.Fatalf("mysql connect error: %v", err)
	}
	defer db.Close()

	// init repos
	runRepo := mysqlp.NewRunRepository(db)
	analysisRepo := mysqlp.NewAnalysisRepository(db)
	failureRepo := mysqlp.NewUnitFailureRepository(db)

	// init minio
	store, err := minioStore.New(ctx,
		cfg.Minio.Endpoint,
		cfg.Minio.Region,
		cfg.Minio.BucketName,
		cfg.Minio.AccessKey,
		cfg.Minio.SecretKey,
		cfg.Minio.UseSSL,
	)
	if err != nil {
		log.Fatalf("minio init error: %v", err)
	}

	// init AI executor + orchestrator
	apiKey := cfg.OpenAI.APIKey
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		apiKey = v
	}
	client := openaicli.NewClient(apiKey, cfg.OpenAI.Model)
	executor := airunner.NewRunner(client)
	orchestrator := appanalysis.NewService(executor, mermaid.New(), analysisdom.ExecConfig{
		Model:       cfg.OpenAI.Model,
		Concurrency: cfg.Analysis.Concurrency,
		Timeout:     cfg.AnalysisTimeout(),
	}, cfg.Analysis.RetryAttempts)

	// init run service
	svc := &appruns.Service{
		Repo:         runRepo,
		Analyses:     analysisRepo,
		Failures:     failureRepo,
		Artifacts:    store,
		Orchestrator: orchestrator,
		Clock:        application.SystemClock{},
	}

	// init router
	mux := chi.NewRouter()
	mux.Use(middleware.LoggingMiddleware)
	mux.Use(middleware.MetricsMiddleware)
	if cap := cfg.Security.RateLimitCapacity; cap > 0 {
		rate := cfg.Security.RateLimitRefillRate
		if rate <= 0 {
			rate = 1
		}
		mux.Use(middleware.RateLimitMiddleware(cap, rate))
	}
	if len(cfg.Security.APIKeys) > 0 {
		mux.Use(middleware.APIKeyAuth(cfg.Security.APIKeys))
	}
	mux.Get("/metrics", middleware.MetricsHandler)
	mux.Get("/healthz", middleware.HealthHandler(map[string]middleware.HealthChecker{
		"database":       &middleware.DatabaseHealthChecker{DB: db},
		"artifact_store": &middleware.ArtifactStoreHealthChecker{Store: store},
	}))
	mux.Mount("/", httpserver.NewRouter(svc))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// run server
	go func() {
		log.Printf("server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
