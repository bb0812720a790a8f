package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"attendance-service/internal/config"
	absenceCreate "attendance-service/internal/http-server/handlers/absences/create"
	absenceDelete "attendance-service/internal/http-server/handlers/absences/delete"
	absenceList "attendance-service/internal/http-server/handlers/absences/list"
	dayGet "attendance-service/internal/http-server/handlers/day/get"
	dayRedo "attendance-service/internal/http-server/handlers/day/redo"
	dayStatus "attendance-service/internal/http-server/handlers/day/status"
	dayUndo "attendance-service/internal/http-server/handlers/day/undo"
	dayUnmark "attendance-service/internal/http-server/handlers/day/unmark"
	groupCreate "attendance-service/internal/http-server/handlers/group_absences/create"
	groupDelete "attendance-service/internal/http-server/handlers/group_absences/delete"
	noteList "attendance-service/internal/http-server/handlers/notes/list"
	noteSave "attendance-service/internal/http-server/handlers/notes/save"
	overrideDelete "attendance-service/internal/http-server/handlers/overrides/delete"
	overrideSave "attendance-service/internal/http-server/handlers/overrides/save"
	personCreate "attendance-service/internal/http-server/handlers/people/create"
	personDelete "attendance-service/internal/http-server/handlers/people/delete"
	personList "attendance-service/internal/http-server/handlers/people/list"
	personUpdate "attendance-service/internal/http-server/handlers/people/update"
	reportSummary "attendance-service/internal/http-server/handlers/reports/summary"
	reportWeekly "attendance-service/internal/http-server/handlers/reports/weekly"
	sectionCreate "attendance-service/internal/http-server/handlers/sections/create"
	sectionDelete "attendance-service/internal/http-server/handlers/sections/delete"
	sectionList "attendance-service/internal/http-server/handlers/sections/list"
	sectionUpdate "attendance-service/internal/http-server/handlers/sections/update"
	"attendance-service/internal/lock"
	svc "attendance-service/internal/service"
	"attendance-service/internal/storage/postgres"
	"attendance-service/pkg/handlers/slogpretty"
	"attendance-service/pkg/middleware/mwlogger"
	"attendance-service/pkg/middleware/mwmetrics"
	"attendance-service/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Content-Type", "application/json; charset=utf-8")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func main() {

	cfg := config.MustLoad()

	log := setupLogger(cfg.Env)

	log.Info("Starting API", slog.String("env", cfg.Env))
	log.Debug("Debug messages are enabled")

	storage, err := postgres.New(cfg.StoragePath)
	if err != nil {
		log.Error("Failed to init storage", sl.Err(err))
		os.Exit(1)
	}

	locker, err := lock.NewRedisLock(cfg.RedisAddr)
	if err != nil {
		log.Error("Failed to init redis lock", sl.Err(err))
		os.Exit(1)
	}

	service := svc.NewService(storage, locker)

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(mwlogger.New(log))
	router.Use(mwmetrics.New())
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)
	router.Use(CORS)

	// People
	router.Post("/people", personCreate.New(log, service))
	router.Get("/people", personList.New(log, service))
	router.Put("/people/{id}", personUpdate.New(log, service))
	router.Delete("/people/{id}", personDelete.New(log, service))

	// Sections
	router.Post("/sections", sectionCreate.New(log, service))
	router.Get("/sections", sectionList.New(log, service))
	router.Put("/sections/{id}", sectionUpdate.New(log, service))
	router.Delete("/sections/{id}", sectionDelete.New(log, service))

	// Schedule overrides
	router.Put("/overrides", overrideSave.New(log, service))
	router.Delete("/overrides", overrideDelete.New(log, service))

	// Attendance
	router.Get("/attendance/{date}", dayGet.New(log, service))
	router.Post("/attendance/{date}/status", dayStatus.New(log, service))
	router.Post("/attendance/{date}/unmark_all", dayUnmark.New(log, service))
	router.Post("/attendance/{date}/undo", dayUndo.New(log, service))
	router.Post("/attendance/{date}/redo", dayRedo.New(log, service))

	// Absences
	router.Post("/absences", absenceCreate.New(log, service))
	router.Get("/absences", absenceList.New(log, service))
	router.Delete("/absences/{id}", absenceDelete.New(log, service))
	router.Post("/absences/group", groupCreate.New(log, service))
	router.Delete("/absences/group/{groupId}", groupDelete.New(log, service))

	// Notes
	router.Put("/notes", noteSave.New(log, service))
	router.Get("/notes", noteList.New(log, service))

	// Reports
	router.Get("/reports/summary/{personId}", reportSummary.New(log, service))
	router.Get("/reports/weekly/{personId}", reportWeekly.New(log, service))

	router.Handle("/metrics", promhttp.Handler())

	serv := &http.Server{
		Addr:         cfg.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	serverErrCh := make(chan error, 1)

	go func() {
		log.Info("Starting HTTP server", slog.String("addr", cfg.Address))
		if err := serv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- err
		} else {
			serverErrCh <- nil
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("Received shutdown signal", slog.String("signal", sig.String()))
	case err := <-serverErrCh:
		if err != nil {
			log.Error("HTTP server stopped unexpectedly", sl.Err(err))
		} else {
			log.Info("HTTP server stopped gracefully")
		}
	}

	shutdownTimeout := cfg.HTTPServer.ShutdownTimeout

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	log.Info("Shutting down HTTP server", slog.String("timeout", shutdownTimeout.String()))

	if err := serv.Shutdown(ctx); err != nil {
		log.Error("Server shutdown failed", sl.Err(err))
	} else {
		log.Info("Server shutdown complete")
	}

	if storage != nil {
		if err := storage.Close(); err != nil {
			log.Error("Failed to close storage", sl.Err(err))
		} else {
			log.Info("Storage closed")
		}
	} else {
		log.Debug("Storage is nil, nothing to close")
	}

	if locker != nil {
		if err := locker.Close(); err != nil {
			log.Error("Failed to close locker", sl.Err(err))
		} else {
			log.Info("Locker closed")
		}
	}

	log.Info("Shutdown finished, server stopped")

}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger
	switch env {
	case envLocal:
		log = setupPrettySlog()
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}

	return log
}

func setupPrettySlog() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	handler := opts.NewPrettyHandler(os.Stdout)

	return slog.New(handler)
}
