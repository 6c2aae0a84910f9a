// cmd/main.go is the application entry point.
// It wires together all layers and starts the HTTP server.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"afisha/internal/config"
	"afisha/internal/database"
	"afisha/internal/handler"
	"afisha/internal/repository"
	"afisha/internal/service"
	"afisha/internal/stats"
)

func main() {
	ctx := context.Background()
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		log.Error("config", "error", err)
		os.Exit(1)
	}

	pool, err := database.NewPool(ctx, cfg.DSN(), log)
	if err != nil {
		log.Error("database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	if err := database.Migrate(ctx, pool); err != nil {
		log.Error("migrate", "error", err)
		os.Exit(1)
	}
	log.Info("connected to postgres", "db", cfg.DBName)

	// Wire up layers.
	eventRepo := repository.NewEventRepository(pool)
	requestRepo := repository.NewRequestRepository(pool)
	catalogRepo := repository.NewCatalogRepository(pool)
	compilationRepo := repository.NewCompilationRepository(pool)
	commentRepo := repository.NewCommentRepository(pool)

	views := stats.New(cfg.StatsURL, cfg.AppName)

	eventSvc := service.NewEventService(eventRepo, views, log)
	requestSvc := service.NewRequestService(requestRepo, log)
	catalogSvc := service.NewCatalogService(catalogRepo, log)
	compilationSvc := service.NewCompilationService(compilationRepo, log)
	commentSvc := service.NewCommentService(commentRepo, log)

	eventHandler := handler.NewEventHandler(eventSvc)
	requestHandler := handler.NewRequestHandler(requestSvc)
	catalogHandler := handler.NewCatalogHandler(catalogSvc)
	compilationHandler := handler.NewCompilationHandler(compilationSvc)
	commentHandler := handler.NewCommentHandler(commentSvc)

	// Build the router.
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer) // recover from panics, return 500
	r.Use(chimiddleware.RealIP)    // trust X-Forwarded-For
	r.Use(handler.Logger(log))     // structured access log
	r.Use(handler.CORS)

	r.Get("/health", handler.HealthCheck)

	// Public API.
	r.Route("/events", func(r chi.Router) {
		r.Get("/", eventHandler.Search)
		r.Get("/{eventId}", eventHandler.GetPublic)
		r.Get("/{eventId}/comments", commentHandler.ListByEvent)
	})
	r.Route("/categories", func(r chi.Router) {
		r.Get("/", catalogHandler.ListCategories)
		r.Get("/{catId}", catalogHandler.GetCategory)
	})
	r.Route("/compilations", func(r chi.Router) {
		r.Get("/", compilationHandler.List)
		r.Get("/{compId}", compilationHandler.Get)
	})

	// Author and requester API.
	r.Route("/users/{userId}", func(r chi.Router) {
		r.Route("/events", func(r chi.Router) {
			r.Post("/", eventHandler.Create)
			r.Get("/", eventHandler.ListByInitiator)
			r.Get("/{eventId}", eventHandler.GetByAuthor)
			r.Patch("/{eventId}", eventHandler.UpdateByAuthor)
			r.Get("/{eventId}/requests", requestHandler.ListForEvent)
			r.Patch("/{eventId}/requests", requestHandler.Moderate)
		})
		r.Route("/requests", func(r chi.Router) {
			r.Get("/", requestHandler.ListForRequester)
			r.Post("/", requestHandler.Create)
			r.Patch("/{requestId}/cancel", requestHandler.Cancel)
		})
		r.Route("/comments", func(r chi.Router) {
			r.Post("/", commentHandler.Create)
			r.Patch("/{commentId}", commentHandler.Update)
			r.Delete("/{commentId}", commentHandler.Delete)
		})
	})

	// Admin API.
	r.Route("/admin", func(r chi.Router) {
		r.Route("/events", func(r chi.Router) {
			r.Get("/", eventHandler.ListForAdmin)
			r.Patch("/{eventId}", eventHandler.UpdateByAdmin)
		})
		r.Route("/users", func(r chi.Router) {
			r.Post("/", catalogHandler.CreateUser)
			r.Get("/", catalogHandler.ListUsers)
			r.Delete("/{userId}", catalogHandler.DeleteUser)
		})
		r.Route("/categories", func(r chi.Router) {
			r.Post("/", catalogHandler.CreateCategory)
			r.Patch("/{catId}", catalogHandler.UpdateCategory)
			r.Delete("/{catId}", catalogHandler.DeleteCategory)
		})
		r.Route("/compilations", func(r chi.Router) {
			r.Post("/", compilationHandler.Create)
			r.Patch("/{compId}", compilationHandler.Update)
			r.Delete("/{compId}", compilationHandler.Delete)
		})
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Run in background goroutine so we can listen for shutdown signal.
	go func() {
		log.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Block until SIGINT or SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
