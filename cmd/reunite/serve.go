package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/palak-methi/REUNITE-Digital-lost-and-found/internal/api"
	"github.com/palak-methi/REUNITE-Digital-lost-and-found/internal/config"
	"github.com/palak-methi/REUNITE-Digital-lost-and-found/internal/metrics"
	"github.com/palak-methi/REUNITE-Digital-lost-and-found/internal/seed"
	"github.com/palak-methi/REUNITE-Digital-lost-and-found/internal/session"
	"github.com/palak-methi/REUNITE-Digital-lost-and-found/internal/uploads"
)

// storeGaugeInterval is how often the entity gauges are refreshed.
const storeGaugeInterval = 30 * time.Second

func newServeCmd(g *globalFlags) *cobra.Command {
	var (
		addr      string
		uploadDir string
		doSeed    bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, g)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}
			if cmd.Flags().Changed("upload-dir") {
				cfg.UploadDir = uploadDir
			}
			if cmd.Flags().Changed("seed") {
				cfg.Seed = doSeed
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			closeLog, err := setupLogger(cfg.LogPath, g.verbose)
			if err != nil {
				return err
			}
			defer closeLog()

			return runServer(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "listen address (default :5000)")
	cmd.Flags().StringVar(&uploadDir, "upload-dir", "", "directory for uploaded photos")
	cmd.Flags().BoolVar(&doSeed, "seed", false, "seed demo data into an empty store")
	return cmd
}

func runServer(parent context.Context, cfg config.Config) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	b, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		slog.Info("closing store")
		if err := b.Close(); err != nil {
			slog.Error("failed to close store", "error", err)
		}
	}()

	if cfg.Seed {
		if _, err := seed.Seed(ctx, b.store); err != nil {
			return fmt.Errorf("seeding store: %w", err)
		}
	}

	dir, err := uploads.NewDir(cfg.UploadDir, "/uploads")
	if err != nil {
		return err
	}

	m := metrics.New()
	handler := api.NewRouter(api.Options{
		Store:       b.store,
		Sessions:    b.sessions,
		Secret:      b.secret,
		SessionTTL:  cfg.SessionTTL,
		Uploads:     dir,
		Metrics:     m,
		CORSOrigins: cfg.CORSOrigins,
	})

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	grp, gctx := errgroup.WithContext(ctx)

	grp.Go(func() error {
		slog.Info("server started", "addr", cfg.Addr, "storage", cfg.Storage)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	grp.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
		return nil
	})

	sweeper := &session.Sweeper{Store: b.sessions, Interval: session.DefaultSweepInterval}
	grp.Go(func() error { return sweeper.Run(gctx) })
	grp.Go(func() error { return m.WatchStore(gctx, b.store, storeGaugeInterval) })

	if err := grp.Wait(); err != nil {
		return err
	}
	slog.Info("server stopped")
	return nil
}
