package ledger

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/TangibleTNFT/tangible-foundation-contracts/db"
	"github.com/TangibleTNFT/tangible-foundation-contracts/errors"
	"github.com/TangibleTNFT/tangible-foundation-contracts/store"
)

func newTestBaseLedger(t *testing.T) *BaseLedger {
	t.Helper()
	baseStore, err := store.NewGenericBaseStore(db.NewMemoryProvider())
	require.NoError(t, err)
	return NewBaseLedger(baseStore)
}

func TestBaseMintBurnTransfer(t *testing.T) {
	b := newTestBaseLedger(t)

	require.NoError(t, b.Mint("alice", uint256.NewInt(100)))
	supply, err := b.Supply()
	require.NoError(t, err)
	require.Equal(t, uint256.NewInt(100), supply)

	require.NoError(t, b.Transfer("alice", "bob", uint256.NewInt(40)))
	got, err := b.BalanceOf("bob")
	require.NoError(t, err)
	require.Equal(t, uint256.NewInt(40), got)

	require.NoError(t, b.Burn("bob", uint256.NewInt(40)))
	supply, err = b.Supply()
	require.NoError(t, err)
	require.Equal(t, uint256.NewInt(60), supply)

	err = b.Burn("bob", uint256.NewInt(1))
	require.True(t, errors.IsCode(err, errors.ErrCodeInsufficientBalance))
}

func TestBaseAllowance(t *testing.T) {
	b := newTestBaseLedger(t)
	require.NoError(t, b.Mint("alice", uint256.NewInt(100)))

	err := b.SpendAllowance("alice", "carol", uint256.NewInt(10))
	require.True(t, errors.IsCode(err, errors.ErrCodeInsufficientAllowance))

	require.NoError(t, b.Approve("alice", "carol", uint256.NewInt(25)))
	require.NoError(t, b.SpendAllowance("alice", "carol", uint256.NewInt(10)))

	remaining, err := b.Allowance("alice", "carol")
	require.NoError(t, err)
	require.Equal(t, uint256.NewInt(15), remaining)

	err = b.SpendAllowance("alice", "carol", uint256.NewInt(20))
	require.True(t, errors.IsCode(err, errors.ErrCodeInsufficientAllowance))
}
