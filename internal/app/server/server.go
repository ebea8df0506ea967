package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"perftrack/internal/db"
	"perftrack/internal/domain/generation"
	"perftrack/internal/domain/inspection"
	"perftrack/internal/domain/org"
	"perftrack/internal/domain/record"
	"perftrack/internal/domain/scoring"
	"perftrack/internal/platform/config"
	authhandler "perftrack/internal/transport/http/handlers/auth"
	generationhandler "perftrack/internal/transport/http/handlers/generation"
	inspectionhandler "perftrack/internal/transport/http/handlers/inspection"
	orghandler "perftrack/internal/transport/http/handlers/org"
	recordshandler "perftrack/internal/transport/http/handlers/records"
	reportshandler "perftrack/internal/transport/http/handlers/reports"
	"perftrack/internal/transport/http/middleware"
)

func Run() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config invalid: %v", err)
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, "migrations"); err != nil {
			log.Fatalf("migrations failed: %v", err)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			log.Fatalf("seed failed: %v", err)
		}
	}

	orgService := org.NewService(org.NewStore(pool))
	inspectionService := inspection.NewService(inspection.NewStore(pool))
	recordStore := record.NewStore(pool)

	weights := scoring.Weights{
		Attendance: cfg.WeightAttendance,
		Annotation: cfg.WeightAnnotation,
		Onsite:     cfg.WeightOnsite,
		Accuracy:   cfg.WeightAccuracy,
	}
	defaults := generation.Defaults{
		RequiredAttendance: cfg.DefaultRequiredAttendance,
		OnsitePerformance:  cfg.DefaultOnsitePerformance,
		AnnotationScore:    cfg.DefaultAnnotationScore,
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	router.Route("/api/v1", func(r chi.Router) {
		authHandler := authhandler.NewHandler(pool, cfg.JWTSecret)
		r.Post("/auth/login", authHandler.HandleLogin)
		r.Get("/auth/me", authHandler.HandleMe)

		orghandler.NewHandler(orgService).RegisterRoutes(r)
		inspectionhandler.NewHandler(inspectionService, orgService).RegisterRoutes(r)
		recordshandler.NewHandler(recordStore).RegisterRoutes(r)
		generationhandler.NewHandler(
			generation.NewOrchestrator(recordStore),
			orgService, inspectionService, defaults, weights,
		).RegisterRoutes(r)
		reportshandler.NewHandler(recordStore).RegisterRoutes(r)
	})

	log.Printf("perftrack server listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, router); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
