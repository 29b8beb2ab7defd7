package worker

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finch/internal/core"
	"finch/internal/ledger/memory"
	"finch/internal/ledger/sqlite"
	"finch/internal/queue"
)

func newLocalStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.NewStore(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestHandleSyncMessagePushesAndMarks(t *testing.T) {
	local := newLocalStore(t)
	remote := memory.NewStore()
	w := NewSyncWorker(local, remote, 10)
	ctx := context.Background()

	localID, err := local.Add(ctx, core.Transaction{
		Date: core.EncodeDate(core.NewDate(2024, 3, 1)), Amount: 1500, Category: "Food",
	})
	require.NoError(t, err)

	err = w.HandleSyncMessage(ctx, queue.NewTransactionSyncMessage(localID))
	require.NoError(t, err)

	pushed, err := remote.Filtered(ctx, core.FilterSpec{})
	require.NoError(t, err)
	require.Len(t, pushed, 1)
	assert.Equal(t, int64(1500), pushed[0].Amount)

	pending, err := local.PendingSync(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending, "synced row must leave the pending set")
}

func TestHandleSyncMessageSkipsAlreadySyncedRow(t *testing.T) {
	local := newLocalStore(t)
	remote := memory.NewStore()
	w := NewSyncWorker(local, remote, 10)
	ctx := context.Background()

	localID, err := local.Add(ctx, core.Transaction{
		Date: core.EncodeDate(core.NewDate(2024, 3, 1)), Amount: 2500, Category: "Food",
	})
	require.NoError(t, err)

	// The rescan pass drains the row before its queue message arrives.
	synced, err := w.ProcessPending(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, synced)

	err = w.HandleSyncMessage(ctx, queue.NewTransactionSyncMessage(localID))
	require.NoError(t, err)

	pushed, err := remote.Filtered(ctx, core.FilterSpec{})
	require.NoError(t, err)
	assert.Len(t, pushed, 1, "a drained row must not be pushed twice")
}

func TestHandleSyncMessageDropsUnknownRow(t *testing.T) {
	w := NewSyncWorker(newLocalStore(t), memory.NewStore(), 10)

	err := w.HandleSyncMessage(context.Background(), queue.NewTransactionSyncMessage(999))
	assert.NoError(t, err, "unknown rows are dropped, not requeued")
}

func TestProcessPendingDrainsBacklog(t *testing.T) {
	local := newLocalStore(t)
	remote := memory.NewStore()
	w := NewSyncWorker(local, remote, 10)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := local.Add(ctx, core.Transaction{
			Date: core.EncodeDate(core.NewDate(2024, 3, 1+i)), Amount: 100, Category: "Food",
		})
		require.NoError(t, err)
	}

	synced, err := w.ProcessPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, synced)

	again, err := w.ProcessPending(ctx)
	require.NoError(t, err)
	assert.Zero(t, again)
}
