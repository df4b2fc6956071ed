package jsonrpc

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/TangibleTNFT/tangible-foundation-contracts/db"
	"github.com/TangibleTNFT/tangible-foundation-contracts/ledger"
	"github.com/TangibleTNFT/tangible-foundation-contracts/rebase"
	"github.com/TangibleTNFT/tangible-foundation-contracts/store"
)

func newTestServer(t *testing.T) *Server {
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
	return NewServer("", l, rebase.NewController(l), nil, nil, nil)
}

func allowanceOf(t *testing.T, s *Server, owner, spender string) *uint256.Int {
	t.Helper()
	allowance, err := s.ledger.Base().Allowance(owner, spender)
	require.NoError(t, err)
	return allowance
}

func TestTransferSpendsAllowanceAfterSuccess(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, s.ledger.ApplyUpdate("", "alice", uint256.NewInt(100)))
	require.NoError(t, s.ledger.Base().Approve("alice", "carol", uint256.NewInt(500)))

	_, rpcErr := s.rpcTransfer(transferParams{Caller: "carol", From: "alice", To: "bob", Amount: "50"})
	require.Nil(t, rpcErr)

	balance, err := s.ledger.BalanceOf("bob")
	require.NoError(t, err)
	require.Equal(t, uint256.NewInt(50), balance)
	require.Equal(t, uint256.NewInt(450), allowanceOf(t, s, "alice", "carol"))
}

func TestFailedTransferKeepsAllowance(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, s.ledger.ApplyUpdate("", "alice", uint256.NewInt(100)))
	require.NoError(t, s.ledger.Base().Approve("alice", "carol", uint256.NewInt(500)))

	// within the allowance but over the balance: the transfer fails and the
	// allowance must be untouched
	_, rpcErr := s.rpcTransfer(transferParams{Caller: "carol", From: "alice", To: "bob", Amount: "300"})
	require.NotNil(t, rpcErr)
	require.Equal(t, uint256.NewInt(500), allowanceOf(t, s, "alice", "carol"))

	balance, err := s.ledger.BalanceOf("alice")
	require.NoError(t, err)
	require.Equal(t, uint256.NewInt(100), balance)
}

func TestTransferOverAllowanceRejected(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, s.ledger.ApplyUpdate("", "alice", uint256.NewInt(1000)))
	require.NoError(t, s.ledger.Base().Approve("alice", "carol", uint256.NewInt(200)))

	_, rpcErr := s.rpcTransfer(transferParams{Caller: "carol", From: "alice", To: "bob", Amount: "300"})
	require.NotNil(t, rpcErr)

	balance, err := s.ledger.BalanceOf("alice")
	require.NoError(t, err)
	require.Equal(t, uint256.NewInt(1000), balance)
	require.Equal(t, uint256.NewInt(200), allowanceOf(t, s, "alice", "carol"))
}
