// Package backend assembles the ledger ports for the configured
// backend: in-memory for development, the remote ledger service, or
// the sqlite offline ledger with queued sync.
package backend

import (
	"fmt"
	"log/slog"
	"net/http"

	"finch/internal/config"
	"finch/internal/core"
	"finch/internal/ledger"
	"finch/internal/ledger/memory"
	"finch/internal/ledger/remote"
	"finch/internal/ledger/sqlite"
	"finch/internal/queue"
	"finch/internal/services"
)

// DevIdentityID is the canned identity the client runs under when the
// memory backend is selected. The memory store seeds it as an admin so
// every operation is reachable in development.
const DevIdentityID = "dev-identity"

// CleanupFunc releases backend resources on shutdown.
type CleanupFunc func() error

// Backend bundles the assembled ledger ports. Local is non-nil only
// for the sqlite backend, where Recorder writes locally and the sync
// worker drains to the remote ledger.
type Backend struct {
	Directory    ledger.UserDirectory
	Transactions ledger.TransactionStore
	Budgets      ledger.BudgetStore
	Invites      ledger.InviteService
	Recorder     *services.Recorder

	Local   *sqlite.Store
	Cleanup CleanupFunc
}

// Build assembles the backend named by cfg.Backend. httpClient is used
// by the remote adapter and should carry the caller's OAuth token; it
// is ignored by the other backends unless they fall back to remote
// ports.
func Build(cfg *config.Config, httpClient *http.Client) (*Backend, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return buildMemory(), nil
	case config.BackendRemote:
		return buildRemote(cfg, httpClient), nil
	case config.BackendSQLite:
		return buildSQLite(cfg, httpClient)
	default:
		return nil, fmt.Errorf("unsupported backend: %s", cfg.Backend)
	}
}

func buildMemory() *Backend {
	store := memory.NewStore()
	store.Seed(core.User{ID: DevIdentityID, Username: "dev", Role: core.RoleAdmin})
	store.SetCaller(DevIdentityID)
	slog.Info("Initialized memory backend")
	return &Backend{
		Directory:    store,
		Transactions: store,
		Budgets:      store,
		Invites:      store,
		Recorder:     services.NewRecorder(store, nil),
		Cleanup:      nil,
	}
}

func buildRemote(cfg *config.Config, httpClient *http.Client) *Backend {
	client := remote.NewClient(cfg.RemoteBaseURL, httpClient)
	slog.Info("Initialized remote backend", "base_url", cfg.RemoteBaseURL)
	return &Backend{
		Directory:    client,
		Transactions: client,
		Budgets:      client,
		Invites:      client,
		Recorder:     services.NewRecorder(client, nil),
		Cleanup:      nil,
	}
}

// buildSQLite captures transactions locally and queues them for sync.
// Directory and invite ports still point at the remote service when a
// base URL is configured; they have no offline equivalent.
func buildSQLite(cfg *config.Config, httpClient *http.Client) (*Backend, error) {
	local, err := sqlite.NewStore(cfg.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("initialize sqlite store: %w", err)
	}

	var publisher services.SyncPublisher
	var queueClient *queue.Client
	if cfg.AMQPURL != "" {
		queueClient, err = queue.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			slog.Warn("Failed to initialize AMQP client, continuing without sync",
				"error", err)
		} else {
			publisher = queueClient
			slog.Info("Initialized AMQP client",
				"exchange", cfg.AMQPExchange,
				"queue", cfg.AMQPQueue)
		}
	}

	b := &Backend{
		Transactions: local,
		Budgets:      local,
		Recorder:     services.NewRecorder(local, publisher),
		Local:        local,
	}

	if cfg.RemoteBaseURL != "" {
		client := remote.NewClient(cfg.RemoteBaseURL, httpClient)
		b.Directory = client
		b.Invites = client
	} else {
		// Fully offline: directory and invites run against a local fake.
		fallback := memory.NewStore()
		b.Directory = fallback
		b.Invites = fallback
	}

	b.Cleanup = func() error {
		if queueClient != nil {
			if err := queueClient.Close(); err != nil {
				slog.Error("Failed to close AMQP client", "error", err)
			}
		}
		return local.Close()
	}

	slog.Info("Initialized sqlite backend",
		"db_path", cfg.SQLiteDBPath,
		"amqp_enabled", publisher != nil)

	return b, nil
}
