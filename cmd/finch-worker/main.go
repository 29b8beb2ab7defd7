package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"finch/internal/config"
	"finch/internal/export"
	"finch/internal/identity"
	"finch/internal/ledger/remote"
	"finch/internal/ledger/sqlite"
	applog "finch/internal/log"
	"finch/internal/queue"
	"finch/internal/worker"
)

func main() {
	_ = godotenv.Load()

	logger := applog.New(applog.Config{
		Level:     applog.DefaultConfig().Level,
		Component: applog.ComponentWorker,
	})
	applog.SetDefault(logger)

	logger.Info("Starting finch-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	if cfg.RemoteBaseURL == "" {
		logger.Error("Worker requires FINCH_REMOTE_URL, nowhere to push transactions")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	local, err := sqlite.NewStore(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize local store", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer local.Close()

	provider, err := identity.NewOAuthProvider(identity.OAuthConfig{
		ClientID:     cfg.OAuthClientID,
		ClientSecret: cfg.OAuthClientSecret,
		AuthURL:      cfg.OAuthAuthURL,
		TokenURL:     cfg.OAuthTokenURL,
		RedirectURL:  cfg.OAuthRedirectURL,
		TokenFile:    cfg.OAuthTokenFile,
	})
	if err != nil {
		logger.Error("Failed to initialize identity provider", "error", err)
		os.Exit(1)
	}
	if err := provider.Login(ctx, identity.Options{}); err != nil {
		logger.Error("No stored session, run finch-login first", "error", err)
		os.Exit(1)
	}
	httpClient, err := provider.HTTPClient(ctx)
	if err != nil {
		logger.Error("Failed to build authenticated client", "error", err)
		os.Exit(1)
	}

	remoteStore := remote.NewClient(cfg.RemoteBaseURL, httpClient)
	syncWorker := worker.NewSyncWorker(local, remoteStore, cfg.SyncBatchSize)

	queueClient, err := queue.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer queueClient.Close()

	var exporter *export.SheetsExporter
	if cfg.GoogleSpreadsheetID != "" {
		exporter, err = export.NewFromEnv(ctx)
		if err != nil {
			logger.Error("Failed to initialize Sheets exporter", "error", err)
			os.Exit(1)
		}
		logger.Info("Sheets exporter initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		logger.Info("Summary export disabled - no GOOGLE_SPREADSHEET_ID provided")
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())
		cancel()
	}()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return queueClient.Consume(ctx, syncWorker.HandleSyncMessage)
	})

	g.Go(func() error {
		return syncWorker.RunRescan(ctx, cfg.SyncInterval)
	})

	if exporter != nil {
		g.Go(func() error {
			return runExportLoop(ctx, exporter, remoteStore)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker failed", "error", err)
		os.Exit(1)
	}

	logger.Info("Worker shutdown complete")
}

// runExportLoop appends a budget summary snapshot once a day.
func runExportLoop(ctx context.Context, exporter *export.SheetsExporter, budgets *remote.Client) error {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	exportOnce := func() {
		rows, err := budgets.Summary(ctx)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to load summary for export", "error", err)
			return
		}
		if err := exporter.ExportSummary(ctx, rows); err != nil {
			slog.ErrorContext(ctx, "Summary export failed", "error", err)
		}
	}

	exportOnce()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			exportOnce()
		}
	}
}
