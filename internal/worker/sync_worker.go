// Package worker pushes locally captured transactions to the remote
// ledger service. It consumes sync messages from the queue and, as a
// safety net, periodically rescans the local store for pending rows
// whose messages were lost.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"finch/internal/ledger"
	"finch/internal/ledger/sqlite"
	"finch/internal/queue"
)

// SyncWorker drains the local offline ledger into the remote one.
type SyncWorker struct {
	local     *sqlite.Store
	remote    ledger.TransactionStore
	batchSize int
}

func NewSyncWorker(local *sqlite.Store, remote ledger.TransactionStore, batchSize int) *SyncWorker {
	return &SyncWorker{
		local:     local,
		remote:    remote,
		batchSize: batchSize,
	}
}

// HandleSyncMessage pushes one locally captured transaction to the
// remote ledger. A row that was already synced (or deleted) is treated
// as done so the message is not requeued forever.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *queue.TransactionSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message",
		"local_id", msg.LocalID,
		"attempt", msg.Attempt)

	pending, err := w.local.Get(ctx, msg.LocalID)
	if err != nil {
		if errors.Is(err, sqlite.ErrNotFound) {
			slog.WarnContext(ctx, "Sync message for unknown row, dropping",
				"local_id", msg.LocalID)
			return nil
		}
		return fmt.Errorf("load local transaction: %w", err)
	}
	if pending.Synced {
		// The rescan loop runs alongside the consumer and may have
		// drained this row before its message arrived.
		slog.InfoContext(ctx, "Row already synced, dropping message",
			"local_id", msg.LocalID)
		return nil
	}

	remoteID, err := w.remote.Add(ctx, pending.Transaction)
	if err != nil {
		return fmt.Errorf("push transaction to remote ledger: %w", err)
	}

	if err := w.local.MarkSynced(ctx, pending.LocalID, remoteID); err != nil {
		// The remote copy exists; the local flag catches up on rescan.
		slog.WarnContext(ctx, "Failed to mark transaction as synced",
			"local_id", pending.LocalID, "error", err)
	}

	slog.InfoContext(ctx, "Transaction synced to remote ledger",
		"local_id", pending.LocalID,
		"remote_id", remoteID)

	return nil
}

// ProcessPending pushes up to batchSize unsynced rows. It keeps going
// past individual failures and returns the number synced.
func (w *SyncWorker) ProcessPending(ctx context.Context) (int, error) {
	pending, err := w.local.PendingSync(ctx, w.batchSize)
	if err != nil {
		return 0, fmt.Errorf("list pending transactions: %w", err)
	}
	if len(pending) == 0 {
		return 0, nil
	}

	slog.InfoContext(ctx, "Processing pending transactions", "count", len(pending))

	synced := 0
	for _, p := range pending {
		select {
		case <-ctx.Done():
			return synced, ctx.Err()
		default:
		}

		remoteID, err := w.remote.Add(ctx, p.Transaction)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to push pending transaction",
				"local_id", p.LocalID, "error", err)
			continue
		}
		if err := w.local.MarkSynced(ctx, p.LocalID, remoteID); err != nil {
			slog.WarnContext(ctx, "Failed to mark transaction as synced",
				"local_id", p.LocalID, "error", err)
			continue
		}
		synced++
	}

	return synced, nil
}

// RunRescan rescans for pending rows on every tick until the context
// is done. It complements the message consumer: a publish that failed
// on the client side still reaches the remote ledger this way.
func (w *SyncWorker) RunRescan(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// One pass at startup so a backlog does not wait a full interval.
	if _, err := w.ProcessPending(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.ErrorContext(ctx, "Pending rescan failed", "error", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := w.ProcessPending(ctx); err != nil && !errors.Is(err, context.Canceled) {
				slog.ErrorContext(ctx, "Pending rescan failed", "error", err)
			}
		}
	}
}
