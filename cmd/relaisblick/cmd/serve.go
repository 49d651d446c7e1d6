package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dbehnke/relaisblick/internal/api"
	"github.com/dbehnke/relaisblick/internal/database"
	"github.com/dbehnke/relaisblick/internal/loader"
	"github.com/dbehnke/relaisblick/internal/logger"
	"github.com/dbehnke/relaisblick/internal/metrics"
	"github.com/dbehnke/relaisblick/internal/preferences"
	"github.com/dbehnke/relaisblick/internal/relais"
	"github.com/dbehnke/relaisblick/internal/siteconfig"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Load the repeater data and serve the HTTP API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.Get()
	defer logger.Sync()

	metrics.Init()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Infow("relaisblick starting", "version", version, "config", cfg.GetFilename())

	db, err := database.NewDB(database.Config{
		Path:  cfg.GetDatabasePath(),
		Debug: cfg.GetDatabaseDebug(),
	}, log)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	languages := preferences.NewLanguageStore(database.NewPreferenceRepository(db.GetDB()), log)

	client := loader.NewHTTPClient(cfg.GetDataTimeout())
	data := loader.New(loader.Config{
		URL:        cfg.GetDataURL(),
		UserAgent:  cfg.GetDataUserAgent(),
		HTTPClient: client,
	}, log)
	site := siteconfig.NewProvider(cfg.GetConfigURL(), client, log)

	server := api.NewServer(api.Options{
		Data:       data,
		SiteConfig: site,
		Languages:  languages,
		Database:   db,
		StaticDir:  cfg.GetServerStaticDir(),
		Version:    version,
		Logger:     log,
	})

	data.OnDataset(func(*relais.Dataset) { server.NotifyDataset() })

	if cfg.GetDataWatch() {
		go data.Watch(ctx)
	} else {
		go func() {
			if err := data.Load(ctx); err != nil {
				log.Warnw("Initial dataset load failed", "error", err)
			}
		}()
	}

	httpServer := &http.Server{
		Addr:              cfg.GetServerAddress(),
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          log.Named("http").StdLog(),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infow("HTTP server listening", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Infow("Shutdown requested")
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	log.Infow("relaisblick stopped")
	return nil
}
