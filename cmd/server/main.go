package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Simplici0/marges/internal/app"
	"github.com/Simplici0/marges/internal/config"
	"github.com/Simplici0/marges/internal/logger"
)

const shutdownTimeout = 10 * time.Second

type server struct {
	app     *app.App
	cookies *cookieSigner
	logger  *zap.Logger
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer log.Sync()

	for _, w := range cfg.Warnings() {
		log.Warn(w)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("start application: %w", err)
	}
	defer a.Close()

	cookies, err := newCookieSigner(cfg.SessionSecret, !cfg.IsDev())
	if err != nil {
		return fmt.Errorf("create session key: %w", err)
	}

	srv := &server{app: a, cookies: cookies, logger: log}
	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", httpServer.Addr))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server stopped: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)
	r.Use(s.sessionMiddleware)

	r.Get("/health", s.handleHealth)
	r.Get("/categories", s.handleCategories)
	r.Get("/ledger", s.handleLedger)

	r.Route("/recipes/{category}", func(r chi.Router) {
		r.Get("/", s.handleRecipeShow)
		r.Put("/", s.handleRecipeEdit)
		r.Post("/save", s.handleRecipeSave)
		r.Post("/forecast", s.handleRecipeForecast)
		r.Get("/export.xlsx", s.handleRecipeExport)
	})

	r.Post("/bilan", s.handleBilan)
	r.Post("/bilan/pdf", s.handleBilanPDF)
	return r
}

func (s *server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}
