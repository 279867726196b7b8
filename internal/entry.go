// Package internal wires the share pipeline and runs the long-lived commands.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/noteshare/internal/api"
	"github.com/starford/noteshare/internal/share"
	"github.com/starford/noteshare/internal/sse"
	"github.com/starford/noteshare/internal/watch"
)

// Run starts the long-running application: the HTTP API and, when
// requested, the profile watcher. It returns after a shutdown signal or when
// ctx is cancelled.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	if app.noHTTP && app.watch == nil {
		return fmt.Errorf("nothing to run: HTTP disabled and no note to watch")
	}

	cfg := app.config

	logger := app.logger
	if logger == nil {
		logger = NewLogger(os.Stdout, cfg.App.LogLevel, true)
	}
	slog.SetDefault(logger)

	logger.Info("noteshare: starting",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("profile_path", cfg.Profile.Path),
		slog.String("output_dir", cfg.Share.OutputDir),
		slog.String("locale", cfg.Locale.Name),
		slog.String("log_level", cfg.App.LogLevel.String()))

	comps, err := Build(cfg, logger)
	if err != nil {
		return err
	}
	defer comps.Close()

	var resharer *watch.Resharer
	if app.watch != nil {
		resharer, err = watch.NewResharer(comps.Share, app.watch.noteID, app.watch.settings, app.watch.opts, logger)
		if err != nil {
			return fmt.Errorf("init watch: %w", err)
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gCtx := errgroup.WithContext(ctx)

	var httpServer *http.Server
	if !app.noHTTP {
		broker := sse.NewBroker(0)
		defer broker.Close()
		if resharer != nil {
			resharer.OnSaved(func(res *share.Result) {
				broker.PublishShared(res.NoteID, res.Settings.Type, res.Path)
			})
		}

		httpServer = &http.Server{
			Addr:              cfg.App.HTTP.Address(),
			Handler:           newHTTPHandler(comps, broker),
			ReadHeaderTimeout: 10 * time.Second,
		}

		g.Go(func() error {
			logger.Info("http: listening", slog.String("address", cfg.App.HTTP.Address()))
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http: serve: %w", err)
			}
			return nil
		})
	}

	if resharer != nil {
		g.Go(func() error {
			// Share once up front so the artifact exists before the first change.
			resharer.OnChange(gCtx)
			return watch.Watch(gCtx, cfg.Profile.Path, watch.DefaultDebounce, logger, resharer.OnChange)
		})
	}

	// Stop on SIGINT/SIGTERM or when another goroutine fails.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("noteshare: signal received", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("noteshare: context done, stopping")
		}
		cancel()

		if httpServer != nil {
			logger.Info("http: shutting down")
			shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancelShutdown()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				logger.Error("http: shutdown failed", slog.String("error", err.Error()))
			}
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("noteshare: stopped with error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("noteshare: stopped")
	return nil
}

func newHTTPHandler(comps *Components, events *sse.Broker) http.Handler {
	cfg := comps.Config

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health probes stay outside the token check.
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := comps.Profile.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Mount("/api", api.NewRouter(comps.Share, comps.Profile, events, cfg.Auth.AuthEnabled(), cfg.Auth.Token, cfg.Share.DefaultExpirationDays))

	return r
}
