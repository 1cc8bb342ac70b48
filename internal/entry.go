// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"encoding/json"
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

	"github.com/starford/relyaml/internal/api"
	"github.com/starford/relyaml/internal/index"
	"github.com/starford/relyaml/internal/mcpserver"
	"github.com/starford/relyaml/internal/noteservice"
	"github.com/starford/relyaml/internal/panel"
	"github.com/starford/relyaml/internal/related"
	"github.com/starford/relyaml/internal/settings"
	"github.com/starford/relyaml/internal/sse"
	"github.com/starford/relyaml/internal/storage"
)

// core holds the components shared by every command.
type core struct {
	cfg      *Config
	logger   *slog.Logger
	store    *storage.FS
	db       *index.DB
	engine   *related.Engine
	svc      *noteservice.Service
	settings *settings.Store
}

func (c *core) Close() error {
	return c.db.Close()
}

// setup applies opts, installs the logger, opens storage and the index and
// runs the initial sync.
func setup(opts []Option) (*core, error) {
	app := &application{logOutput: os.Stdout}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(app.logOutput, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("vault_path", cfg.Vault.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("timezone", cfg.Panel.Location().String()),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Ensure vault directory exists.
	if err := os.MkdirAll(cfg.Vault.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create vault dir: %w", err)
	}

	store, err := storage.NewFS(cfg.Vault.Path)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init index: %w", err)
	}

	start := time.Now()
	if err := index.Sync(db, store, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	} else {
		logger.Info("initial sync done", slog.Duration("duration", time.Since(start)))
	}

	st := settings.NewStore(db)
	if _, err := st.Load(); err != nil {
		logger.Warn("settings load failed, using defaults", slog.String("error", err.Error()))
	}

	engine := related.New(related.WithLocation(cfg.Panel.Location()))

	return &core{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		db:       db,
		engine:   engine,
		svc:      noteservice.NewService(store, db, engine),
		settings: st,
	}, nil
}

// Run starts the HTTP server, the vault watcher and the panel loop.
func Run(ctx context.Context, opts ...Option) error {
	c, err := setup(opts)
	if err != nil {
		return err
	}
	defer c.Close()

	cfg, logger := c.cfg, c.logger

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	pnl := panel.New(c.svc,
		panel.WithEngine(c.engine),
		panel.WithLogger(logger),
		panel.WithBuffer(cfg.Panel.EventBuffer),
		panel.WithHeight(cfg.Panel.InitialHeight),
		panel.WithConsumer(broker.PublishRelated),
	)

	apiRouter := api.NewRouter(c.svc, pnl, c.settings, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	// Build chi router.
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
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Panel event loop.
	g.Go(func() error {
		return pnl.Run(gCtx)
	})

	// File watcher: every index change is streamed to SSE clients and
	// reported to the panel.
	g.Go(func() error {
		return index.Watch(gCtx, c.db, c.store, c.store.Root(), logger, func(kind, path string) {
			broker.PublishNoteEvent(kind, path)
			ev := panel.Event{Kind: panel.KindMetadataResolved, Path: path}
			if kind == index.ChangeDeleted {
				ev.Kind = panel.KindDeleted
			}
			if err := pnl.Post(gCtx, ev); err != nil {
				logger.Debug("panel event dropped", slog.String("path", path), slog.String("error", err.Error()))
			}
		})
	})

	// Start HTTP server.
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

		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the errgroup once the HTTP server has stopped so the
// watcher and panel loops exit too.
var errShutdown = errors.New("shutdown")

// RunMCP serves the MCP tools over stdio.
func RunMCP(ctx context.Context, opts ...Option) error {
	c, err := setup(opts)
	if err != nil {
		return err
	}
	defer c.Close()

	c.logger.Info("MCP server starting on stdio")
	return mcpserver.New(c.svc, c.settings).ServeStdio()
}

// RunRelated computes the related groups of one note and writes them to w
// as indented JSON.
func RunRelated(ctx context.Context, w io.Writer, path string, withOther bool, opts ...Option) error {
	c, err := setup(opts)
	if err != nil {
		return err
	}
	defer c.Close()

	res, err := c.svc.Related(ctx, path)
	if err != nil {
		return fmt.Errorf("related %s: %w", path, err)
	}
	if !withOther {
		res.Other = nil
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
