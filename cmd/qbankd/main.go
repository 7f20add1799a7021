package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	api "github.com/mind-engage/mindengage-qbank/internal/api/http"
	auth "github.com/mind-engage/mindengage-qbank/internal/auth/middleware"
	"github.com/mind-engage/mindengage-qbank/internal/config"
	"github.com/mind-engage/mindengage-qbank/internal/db"
	"github.com/mind-engage/mindengage-qbank/internal/exam"
	"github.com/mind-engage/mindengage-qbank/internal/question"
)

func main() {
	cfg := config.Load()
	slog.SetDefault(newLogger(cfg))

	if err := run(cfg); err != nil {
		slog.Error("qbankd exited", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	driver, err := db.ParseDriver(cfg.DBDriver)
	if err != nil {
		return err
	}

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	dbh, err := db.Open(ctx, driver, cfg.DBDSN)
	cancel()
	if err != nil {
		return err
	}
	defer dbh.Close()

	users := auth.NewUserStore(dbh)
	if cfg.AdminEmail != "" && cfg.AdminPassHash != "" {
		u, err := users.Upsert(context.Background(), cfg.AdminName, cfg.AdminEmail, cfg.AdminPassHash)
		if err != nil {
			return err
		}
		slog.Info("bootstrap user ready", "email", u.Email, "id", u.ID)
	}

	authSvc := auth.NewAuthService(cfg.AuthSecret, cfg.AuthIssuer, cfg.AuthTokenTTL)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	api.Mount(r, api.Deps{
		DB:        dbh,
		Questions: question.NewSQLStore(dbh),
		Exams:     exam.NewSQLStore(dbh),
		Auth:      authSvc,
		Users:     users,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", cfg.HTTPAddr, "db", string(driver))
		errc <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case sig := <-stop:
		slog.Info("shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newLogger(cfg config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
