// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/flashdeck/internal/api"
	"github.com/starford/flashdeck/internal/deck"
	"github.com/starford/flashdeck/internal/deckconfig"
	"github.com/starford/flashdeck/internal/deckservice"
	"github.com/starford/flashdeck/internal/index"
	"github.com/starford/flashdeck/internal/mcpserver"
	"github.com/starford/flashdeck/internal/storage"
)

// Components are the wired parts of the application for one deck.
type Components struct {
	Loader  *deck.Loader
	Service *deckservice.Service
	db      *index.DB
}

// Close releases the card index, if one was opened.
func (c *Components) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Build wires storage, loader, card index and deck service from cfg.
// The index is skipped when withIndex is false.
func Build(cfg *Config, logger *slog.Logger, withIndex bool) (*Components, error) {
	store, err := storage.NewFS(cfg.Deck.Root)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	opts := []deck.Option{deck.WithLogger(logger)}
	if cfg.Deck.ThemeMeta != "" {
		data, err := os.ReadFile(cfg.Deck.ThemeMeta)
		if err != nil {
			return nil, fmt.Errorf("read theme meta: %w", err)
		}
		theme, err := deckconfig.ParseThemeMeta(data)
		if err != nil {
			return nil, err
		}
		opts = append(opts, deck.WithTheme(theme))
	}
	loader := deck.NewLoader(store, opts...)

	c := &Components{Loader: loader}
	var cardIndex index.CardIndex
	if withIndex {
		db, err := index.Open(cfg.Index.Path)
		if err != nil {
			return nil, fmt.Errorf("init index: %w", err)
		}
		c.db = db
		cardIndex = db
	}
	c.Service = deckservice.NewService(loader, cardIndex, cfg.Deck.Entry, logger)
	return c, nil
}

// NewLogger returns the structured JSON logger configured by cfg.
func NewLogger(cfg *Config, w io.Writer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
}

func (a *application) init(defaultOut io.Writer) error {
	if a.config == nil {
		return fmt.Errorf("config is required")
	}
	if a.logger == nil {
		a.logger = NewLogger(a.config, defaultOut)
	}
	slog.SetDefault(a.logger)
	return nil
}

// Run starts the HTTP API with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}
	if err := app.init(os.Stdout); err != nil {
		return err
	}

	cfg := app.config
	logger := app.logger

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("deck_entry", cfg.Deck.Entry),
		slog.String("deck_root", cfg.Deck.Root),
		slog.String("index_path", cfg.Index.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	c, err := Build(cfg, logger, true)
	if err != nil {
		return err
	}
	defer c.Close()

	// Initial load also syncs the index.
	if _, err := c.Service.Reload(ctx); err != nil {
		logger.Warn("initial load failed", slog.String("error", err.Error()))
	}

	apiRouter := api.NewRouter(c.Service, cfg.Auth.AuthEnabled(), cfg.Auth.Token)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if _, err := c.Service.Document(req.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunMCP serves the deck over MCP on stdin/stdout. Logs go to stderr so
// they do not corrupt the protocol stream.
func RunMCP(ctx context.Context, opts ...Option) error {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if err := app.init(os.Stderr); err != nil {
		return err
	}

	c, err := Build(app.config, app.logger, true)
	if err != nil {
		return err
	}
	defer c.Close()

	if _, err := c.Service.Reload(ctx); err != nil {
		app.logger.Warn("initial load failed", slog.String("error", err.Error()))
	}
	return mcpserver.New(c.Service).ServeStdio()
}
