// Package services orchestrates ledger operations for the client:
// recording transactions with async sync, filtered queries with stale
// response discarding, and fan-out dashboard loading.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"finch/internal/core"
	"finch/internal/ledger"
)

// SyncPublisher announces a locally captured transaction to the sync
// worker. queue.Client satisfies it.
type SyncPublisher interface {
	PublishTransactionSync(ctx context.Context, localID int64) error
}

// Recorder saves transactions to the local store and queues them for
// sync. A nil publisher means direct mode: the store is the remote
// adapter and there is nothing to sync.
type Recorder struct {
	store     ledger.TransactionStore
	publisher SyncPublisher
}

func NewRecorder(store ledger.TransactionStore, publisher SyncPublisher) *Recorder {
	return &Recorder{store: store, publisher: publisher}
}

// Record saves the transaction and publishes a sync message. Store
// failure fails the call; publish failure does not, the row is safe
// locally and the worker rescans pending rows.
func (r *Recorder) Record(ctx context.Context, tx core.Transaction) (int64, error) {
	id, err := r.store.Add(ctx, tx)
	if err != nil {
		return 0, fmt.Errorf("save transaction: %w", err)
	}

	if err := r.publishSync(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"local_id", id, "error", err)
	}

	return id, nil
}

// Amend updates an existing transaction and re-queues it for sync.
func (r *Recorder) Amend(ctx context.Context, id int64, tx core.Transaction) error {
	if err := r.store.Update(ctx, id, tx); err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}

	if err := r.publishSync(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"local_id", id, "error", err)
	}

	return nil
}

func (r *Recorder) publishSync(ctx context.Context, id int64) error {
	if r.publisher == nil {
		return nil
	}
	return r.publisher.PublishTransactionSync(ctx, id)
}
