package db

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryProviderBasicOps(t *testing.T) {
	p := NewMemoryProvider()

	missing, err := p.Get([]byte("nope"))
	require.NoError(t, err)
	require.Nil(t, missing)

	require.NoError(t, p.Put([]byte("k1"), []byte("v1")))
	got, err := p.Get([]byte("k1"))
	require.NoError(t, err)
	require.Equal(t, []byte("v1"), got)

	has, err := p.Has([]byte("k1"))
	require.NoError(t, err)
	require.True(t, has)

	require.NoError(t, p.Delete([]byte("k1")))
	has, err = p.Has([]byte("k1"))
	require.NoError(t, err)
	require.False(t, has)
}

func TestMemoryProviderBatch(t *testing.T) {
	p := NewMemoryProvider()
	require.NoError(t, p.Put([]byte("doomed"), []byte("x")))

	batch := p.Batch()
	batch.Put([]byte("a"), []byte("1"))
	batch.Put([]byte("b"), []byte("2"))
	batch.Delete([]byte("doomed"))

	// nothing is visible until the batch is written
	has, err := p.Has([]byte("a"))
	require.NoError(t, err)
	require.False(t, has)

	require.NoError(t, batch.Write())

	got, err := p.Get([]byte("a"))
	require.NoError(t, err)
	require.Equal(t, []byte("1"), got)
	has, err = p.Has([]byte("doomed"))
	require.NoError(t, err)
	require.False(t, has)
}

func TestMemoryProviderIteratePrefix(t *testing.T) {
	p := NewMemoryProvider()
	require.NoError(t, p.Put([]byte("acct:alice"), []byte("1")))
	require.NoError(t, p.Put([]byte("acct:bob"), []byte("2")))
	require.NoError(t, p.Put([]byte("state:ledger"), []byte("3")))

	var keys []string
	err := p.IteratePrefix([]byte("acct:"), func(key, value []byte) bool {
		keys = append(keys, string(key))
		return true
	})
	require.NoError(t, err)
	require.Equal(t, []string{"acct:alice", "acct:bob"}, keys)
}

func TestNewProviderSelectsBackend(t *testing.T) {
	p, err := NewProvider(BackendMemory, "")
	require.NoError(t, err)
	require.IsType(t, &MemoryProvider{}, p)

	_, err = NewProvider("no-such-backend", "")
	require.Error(t, err)
}
