//go:build integration

package postgres

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shiftguard/internal/auditchain"
	"shiftguard/pkg/platform/sentinel"
	txcontext "shiftguard/pkg/platform/tx"
	"shiftguard/pkg/testutil/containers"
)

const schema = `
CREATE TABLE IF NOT EXISTS audit_entries (
    seq           BIGSERIAL PRIMARY KEY,
    id            UUID NOT NULL UNIQUE,
    chain_id      TEXT NOT NULL,
    action        TEXT NOT NULL,
    record_id     TEXT NOT NULL,
    record_hash   TEXT NOT NULL,
    previous_hash TEXT NOT NULL,
    created_at    TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS audit_entries_chain_idx ON audit_entries (chain_id, seq);
`

func newStore(t *testing.T) *Store {
	t.Helper()
	pg := containers.NewPostgresContainer(t)
	pg.Exec(t, schema)
	return New(pg.DB)
}

func TestPostgresStore(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	w := auditchain.NewWriter()

	t.Run("head starts at genesis", func(t *testing.T) {
		head, err := store.Head(ctx, "worker:w1")
		require.NoError(t, err)
		assert.Equal(t, auditchain.GenesisHash(), head)
	})

	t.Run("append advances the head", func(t *testing.T) {
		entry, err := w.Append("worker:w1", "clock_in", "e1", map[string]string{"state": "open"}, auditchain.GenesisHash())
		require.NoError(t, err)
		require.NoError(t, store.Append(ctx, entry))

		head, err := store.Head(ctx, "worker:w1")
		require.NoError(t, err)
		assert.Equal(t, entry.RecordHash, head)
	})

	t.Run("stale head conflicts", func(t *testing.T) {
		stale, err := w.Append("worker:w1", "clock_out", "e1", nil, auditchain.GenesisHash())
		require.NoError(t, err)
		assert.ErrorIs(t, store.Append(ctx, stale), sentinel.ErrConflict)
	})

	t.Run("list preserves append order and survives verification", func(t *testing.T) {
		head, err := store.Head(ctx, "worker:w1")
		require.NoError(t, err)
		next, err := w.Append("worker:w1", "clock_out", "e1", map[string]string{"state": "closed"}, head)
		require.NoError(t, err)
		require.NoError(t, store.Append(ctx, next))

		chain, err := store.List(ctx, "worker:w1")
		require.NoError(t, err)
		require.Len(t, chain, 2)
		assert.Equal(t, "clock_in", chain[0].Action)
		assert.Equal(t, "clock_out", chain[1].Action)
		assert.NoError(t, auditchain.Verify(chain))
	})

	t.Run("chains do not interfere", func(t *testing.T) {
		entry, err := w.Append("worker:w2", "clock_in", "e2", nil, auditchain.GenesisHash())
		require.NoError(t, err)
		require.NoError(t, store.Append(ctx, entry))

		chain, err := store.List(ctx, "worker:w2")
		require.NoError(t, err)
		assert.Len(t, chain, 1)
	})
}

func TestPostgresStoreCallerTransaction(t *testing.T) {
	ctx := context.Background()
	pg := containers.NewPostgresContainer(t)
	pg.Exec(t, schema)
	store := New(pg.DB)
	w := auditchain.NewWriter()

	entry, err := w.Append("worker:txn", "clock_in", "e1", map[string]string{"state": "open"}, auditchain.GenesisHash())
	require.NoError(t, err)

	t.Run("rollback discards the append with the caller transaction", func(t *testing.T) {
		sqlTx, err := pg.DB.BeginTx(ctx, nil)
		require.NoError(t, err)
		require.NoError(t, store.Append(txcontext.WithTx(ctx, sqlTx), entry))
		require.NoError(t, sqlTx.Rollback())

		chain, err := store.List(ctx, "worker:txn")
		require.NoError(t, err)
		assert.Empty(t, chain)

		head, err := store.Head(ctx, "worker:txn")
		require.NoError(t, err)
		assert.Equal(t, auditchain.GenesisHash(), head)
	})

	t.Run("commit persists the append with the caller transaction", func(t *testing.T) {
		sqlTx, err := pg.DB.BeginTx(ctx, nil)
		require.NoError(t, err)
		require.NoError(t, store.Append(txcontext.WithTx(ctx, sqlTx), entry))
		require.NoError(t, sqlTx.Commit())

		head, err := store.Head(ctx, "worker:txn")
		require.NoError(t, err)
		assert.Equal(t, entry.RecordHash, head)
	})

	t.Run("stale head inside a caller transaction conflicts", func(t *testing.T) {
		stale, err := w.Append("worker:txn", "clock_out", "e1", nil, auditchain.GenesisHash())
		require.NoError(t, err)

		sqlTx, err := pg.DB.BeginTx(ctx, nil)
		require.NoError(t, err)
		assert.ErrorIs(t, store.Append(txcontext.WithTx(ctx, sqlTx), stale), sentinel.ErrConflict)
		require.NoError(t, sqlTx.Rollback())
	})
}

func TestPostgresStoreConcurrentAppends(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	svc, err := auditchain.NewService(store, auditchain.NewWriter())
	require.NoError(t, err)

	const writers = 4
	var wg sync.WaitGroup
	errs := make([]error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Record(ctx, "worker:race", "clock_in", fmt.Sprintf("e%d", i), nil)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "writer %d", i)
	}
	chain, err := store.List(ctx, "worker:race")
	require.NoError(t, err)
	assert.Len(t, chain, writers)
	assert.NoError(t, auditchain.Verify(chain))
}
