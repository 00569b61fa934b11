package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shiftguard/internal/auditchain"
	"shiftguard/pkg/platform/sentinel"
)

func TestStoreHeadStartsAtGenesis(t *testing.T) {
	head, err := New().Head(context.Background(), "worker:w1")
	require.NoError(t, err)
	assert.Equal(t, auditchain.GenesisHash(), head)
}

func TestStoreAppendEnforcesHead(t *testing.T) {
	ctx := context.Background()
	store := New()
	w := auditchain.NewWriter()

	first, err := w.Append("worker:w1", "clock_in", "e1", nil, auditchain.GenesisHash())
	require.NoError(t, err)
	require.NoError(t, store.Append(ctx, first))

	t.Run("stale previous hash conflicts", func(t *testing.T) {
		stale, err := w.Append("worker:w1", "clock_out", "e1", nil, auditchain.GenesisHash())
		require.NoError(t, err)
		assert.ErrorIs(t, store.Append(ctx, stale), sentinel.ErrConflict)
	})

	t.Run("current head accepts", func(t *testing.T) {
		next, err := w.Append("worker:w1", "clock_out", "e1", nil, first.RecordHash)
		require.NoError(t, err)
		assert.NoError(t, store.Append(ctx, next))

		head, err := store.Head(ctx, "worker:w1")
		require.NoError(t, err)
		assert.Equal(t, next.RecordHash, head)
	})
}

func TestStoreListReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store := New()
	w := auditchain.NewWriter()

	entry, err := w.Append("worker:w1", "clock_in", "e1", nil, auditchain.GenesisHash())
	require.NoError(t, err)
	require.NoError(t, store.Append(ctx, entry))

	listed, err := store.List(ctx, "worker:w1")
	require.NoError(t, err)
	require.Len(t, listed, 1)

	listed[0].RecordHash = "mutated"
	fresh, err := store.List(ctx, "worker:w1")
	require.NoError(t, err)
	assert.Equal(t, entry.RecordHash, fresh[0].RecordHash)
}

func TestStoreListEmptyChain(t *testing.T) {
	listed, err := New().List(context.Background(), "worker:none")
	require.NoError(t, err)
	assert.Empty(t, listed)
}

var _ auditchain.Store = (*Store)(nil)
