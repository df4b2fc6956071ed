package rebase

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/TangibleTNFT/tangible-foundation-contracts/db"
	"github.com/TangibleTNFT/tangible-foundation-contracts/errors"
	"github.com/TangibleTNFT/tangible-foundation-contracts/ledger"
	"github.com/TangibleTNFT/tangible-foundation-contracts/store"
)

func newTestController(t *testing.T) *Controller {
	t.Helper()
	provider := db.NewMemoryProvider()
	accounts, err := store.NewGenericAccountStore(provider)
	require.NoError(t, err)
	states, err := store.NewGenericStateStore(provider)
	require.NoError(t, err)
	baseStore, err := store.NewGenericBaseStore(provider)
	require.NoError(t, err)
	l, err := ledger.NewLedger(accounts, states, ledger.NewBaseLedger(baseStore), nil, ledger.Unit)
	require.NoError(t, err)
	return NewController(l)
}

func indexTimes(n uint64) *uint256.Int {
	return new(uint256.Int).Mul(ledger.Unit, uint256.NewInt(n))
}

func TestControllerSetIndexStandalone(t *testing.T) {
	ctrl := newTestController(t)

	require.NoError(t, ctrl.SetIndex("admin", indexTimes(2)))
	require.Equal(t, indexTimes(2), ctrl.Index())
}

func TestSynchronizerRevokesDirectSetter(t *testing.T) {
	ctrl := newTestController(t)
	NewSynchronizer(ctrl)

	err := ctrl.SetIndex("admin", indexTimes(2))
	require.True(t, errors.IsCode(err, errors.ErrCodeInvalidRebaseIndexMutator))
	require.Equal(t, ledger.Unit, ctrl.Index())
}

func TestSyncIndexAdvances(t *testing.T) {
	ctrl := newTestController(t)
	sync := NewSynchronizer(ctrl)

	require.NoError(t, sync.SyncIndex(indexTimes(2), 5))
	require.Equal(t, indexTimes(2), ctrl.Index())
	require.Equal(t, uint64(5), sync.CurrentSequenceNumber())
}

func TestSyncIndexIgnoresStale(t *testing.T) {
	ctrl := newTestController(t)
	sync := NewSynchronizer(ctrl)
	require.NoError(t, sync.SyncIndex(indexTimes(2), 5))

	// a lower sequence changes nothing and reports no error
	require.NoError(t, sync.SyncIndex(indexTimes(9), 3))
	require.Equal(t, indexTimes(2), ctrl.Index())
	require.Equal(t, uint64(5), sync.CurrentSequenceNumber())
}

func TestSyncIndexEqualSequenceIsIdempotent(t *testing.T) {
	ctrl := newTestController(t)
	sync := NewSynchronizer(ctrl)
	require.NoError(t, sync.SyncIndex(indexTimes(2), 5))

	require.NoError(t, sync.SyncIndex(indexTimes(2), 5))
	require.Equal(t, indexTimes(2), ctrl.Index())
	require.Equal(t, uint64(5), sync.CurrentSequenceNumber())
}

func TestSyncIndexRejectsZero(t *testing.T) {
	ctrl := newTestController(t)
	sync := NewSynchronizer(ctrl)

	err := sync.SyncIndex(uint256.NewInt(0), 1)
	require.True(t, errors.IsCode(err, errors.ErrCodeZeroRebaseIndex))
	require.Equal(t, uint64(0), sync.CurrentSequenceNumber())
}

func TestControllerSetOptOut(t *testing.T) {
	ctrl := newTestController(t)

	require.NoError(t, ctrl.SetOptOut("alice", true))
	require.NoError(t, ctrl.SetOptOut("alice", false))
}
