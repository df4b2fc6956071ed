package ledger

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/TangibleTNFT/tangible-foundation-contracts/db"
	"github.com/TangibleTNFT/tangible-foundation-contracts/errors"
	"github.com/TangibleTNFT/tangible-foundation-contracts/store"
)

func newTestLedger(t *testing.T, provider db.DatabaseProvider, initialIndex *uint256.Int) *Ledger {
	t.Helper()
	accounts, err := store.NewGenericAccountStore(provider)
	require.NoError(t, err)
	states, err := store.NewGenericStateStore(provider)
	require.NoError(t, err)
	baseStore, err := store.NewGenericBaseStore(provider)
	require.NoError(t, err)
	l, err := NewLedger(accounts, states, NewBaseLedger(baseStore), nil, initialIndex)
	require.NoError(t, err)
	return l
}

func balance(t *testing.T, l *Ledger, addr string) *uint256.Int {
	t.Helper()
	b, err := l.BalanceOf(addr)
	require.NoError(t, err)
	return b
}

func TestNewLedgerRequiresExplicitIndex(t *testing.T) {
	provider := db.NewMemoryProvider()
	accounts, err := store.NewGenericAccountStore(provider)
	require.NoError(t, err)
	states, err := store.NewGenericStateStore(provider)
	require.NoError(t, err)
	baseStore, err := store.NewGenericBaseStore(provider)
	require.NoError(t, err)

	_, err = NewLedger(accounts, states, NewBaseLedger(baseStore), nil, nil)
	require.True(t, errors.IsCode(err, errors.ErrCodeZeroRebaseIndex))

	_, err = NewLedger(accounts, states, NewBaseLedger(baseStore), nil, uint256.NewInt(0))
	require.True(t, errors.IsCode(err, errors.ErrCodeZeroRebaseIndex))
}

func TestMintAndBalance(t *testing.T) {
	l := newTestLedger(t, db.NewMemoryProvider(), Unit)

	require.NoError(t, l.ApplyUpdate("", "alice", uint256.NewInt(1000)))

	shares, err := l.SharesOf("alice")
	require.NoError(t, err)
	require.Equal(t, uint256.NewInt(1000), shares)
	require.Equal(t, uint256.NewInt(1000), balance(t, l, "alice"))

	supply, err := l.TotalSupply()
	require.NoError(t, err)
	require.Equal(t, uint256.NewInt(1000), supply)
}

func TestIndexScalesBalances(t *testing.T) {
	l := newTestLedger(t, db.NewMemoryProvider(), Unit)
	require.NoError(t, l.ApplyUpdate("", "alice", uint256.NewInt(1000)))

	require.NoError(t, l.UpdateIndex("admin", indexOf(3, 2)))

	require.Equal(t, uint256.NewInt(1500), balance(t, l, "alice"))
	supply, err := l.TotalSupply()
	require.NoError(t, err)
	require.Equal(t, uint256.NewInt(1500), supply)

	// shares are untouched by the index move
	shares, err := l.SharesOf("alice")
	require.NoError(t, err)
	require.Equal(t, uint256.NewInt(1000), shares)
}

func TestOptOutFreezesBalance(t *testing.T) {
	l := newTestLedger(t, db.NewMemoryProvider(), Unit)
	require.NoError(t, l.ApplyUpdate("", "alice", uint256.NewInt(1000)))
	require.NoError(t, l.ApplyUpdate("", "bob", uint256.NewInt(1000)))
	require.NoError(t, l.UpdateIndex("admin", indexOf(3, 2)))

	require.NoError(t, l.SetOptOut("alice", true))
	require.Equal(t, uint256.NewInt(1500), balance(t, l, "alice"))
	require.Equal(t, uint256.NewInt(1000), l.TotalShares())

	require.NoError(t, l.UpdateIndex("admin", indexOf(2, 1)))

	require.Equal(t, uint256.NewInt(1500), balance(t, l, "alice"))
	require.Equal(t, uint256.NewInt(2000), balance(t, l, "bob"))

	supply, err := l.TotalSupply()
	require.NoError(t, err)
	require.Equal(t, uint256.NewInt(3500), supply)
}

func TestOptBackInRestoresScaling(t *testing.T) {
	l := newTestLedger(t, db.NewMemoryProvider(), Unit)
	require.NoError(t, l.ApplyUpdate("", "alice", uint256.NewInt(1000)))
	require.NoError(t, l.SetOptOut("alice", true))
	require.NoError(t, l.UpdateIndex("admin", indexOf(2, 1)))

	require.NoError(t, l.SetOptOut("alice", false))
	require.Equal(t, uint256.NewInt(1000), balance(t, l, "alice"))

	optedOut, err := l.IsOptedOut("alice")
	require.NoError(t, err)
	require.False(t, optedOut)

	// scaling applies again from here on
	require.NoError(t, l.UpdateIndex("admin", indexOf(4, 1)))
	require.Equal(t, uint256.NewInt(2000), balance(t, l, "alice"))
}

func TestOptOutToggleIsIdempotent(t *testing.T) {
	l := newTestLedger(t, db.NewMemoryProvider(), Unit)
	require.NoError(t, l.ApplyUpdate("", "alice", uint256.NewInt(500)))

	require.NoError(t, l.SetOptOut("alice", true))
	require.NoError(t, l.SetOptOut("alice", true))
	require.Equal(t, uint256.NewInt(500), balance(t, l, "alice"))
	require.True(t, l.TotalShares().IsZero())
}

func TestTransferableSharesFullBalance(t *testing.T) {
	l := newTestLedger(t, db.NewMemoryProvider(), indexOf(3, 2))
	// 1000 tokens at 1.5 = 666 shares worth 999 tokens
	require.NoError(t, l.ApplyUpdate("", "alice", uint256.NewInt(1000)))

	shares, err := l.SharesOf("alice")
	require.NoError(t, err)
	require.Equal(t, uint256.NewInt(666), shares)
	require.Equal(t, uint256.NewInt(999), balance(t, l, "alice"))

	// debiting the full derived balance takes every stored share
	full, err := l.TransferableShares(uint256.NewInt(999), "alice")
	require.NoError(t, err)
	require.Equal(t, uint256.NewInt(666), full)

	_, err = l.TransferableShares(uint256.NewInt(1000), "alice")
	require.True(t, errors.IsCode(err, errors.ErrCodeInsufficientBalance))
}

func TestTransferBetweenRebasingAccounts(t *testing.T) {
	l := newTestLedger(t, db.NewMemoryProvider(), Unit)
	require.NoError(t, l.ApplyUpdate("", "alice", uint256.NewInt(1000)))

	require.NoError(t, l.ApplyUpdate("alice", "bob", uint256.NewInt(400)))

	require.Equal(t, uint256.NewInt(600), balance(t, l, "alice"))
	require.Equal(t, uint256.NewInt(400), balance(t, l, "bob"))
	require.Equal(t, uint256.NewInt(1000), l.TotalShares())
}

func TestTransferAcrossRepresentations(t *testing.T) {
	l := newTestLedger(t, db.NewMemoryProvider(), Unit)
	require.NoError(t, l.ApplyUpdate("", "alice", uint256.NewInt(1000)))
	require.NoError(t, l.SetOptOut("bob", true))

	// shares -> absolute
	require.NoError(t, l.ApplyUpdate("alice", "bob", uint256.NewInt(300)))
	require.Equal(t, uint256.NewInt(700), balance(t, l, "alice"))
	require.Equal(t, uint256.NewInt(300), balance(t, l, "bob"))
	require.Equal(t, uint256.NewInt(700), l.TotalShares())

	// absolute -> shares
	require.NoError(t, l.ApplyUpdate("bob", "alice", uint256.NewInt(100)))
	require.Equal(t, uint256.NewInt(800), balance(t, l, "alice"))
	require.Equal(t, uint256.NewInt(200), balance(t, l, "bob"))
}

func TestBurn(t *testing.T) {
	l := newTestLedger(t, db.NewMemoryProvider(), Unit)
	require.NoError(t, l.ApplyUpdate("", "alice", uint256.NewInt(1000)))

	require.NoError(t, l.ApplyUpdate("alice", "", uint256.NewInt(250)))
	require.Equal(t, uint256.NewInt(750), balance(t, l, "alice"))
	require.Equal(t, uint256.NewInt(750), l.TotalShares())

	err := l.ApplyUpdate("alice", "", uint256.NewInt(1000))
	require.True(t, errors.IsCode(err, errors.ErrCodeInsufficientBalance))
}

func TestUpdateIndexValidation(t *testing.T) {
	l := newTestLedger(t, db.NewMemoryProvider(), Unit)

	err := l.UpdateIndex("admin", uint256.NewInt(0))
	require.True(t, errors.IsCode(err, errors.ErrCodeZeroRebaseIndex))

	// unchanged index is accepted and changes nothing
	require.NoError(t, l.UpdateIndex("admin", Unit))
	require.Equal(t, Unit, l.Index())
}

func TestUpdateIndexRejectsElasticOverflow(t *testing.T) {
	l := newTestLedger(t, db.NewMemoryProvider(), Unit)
	huge := new(uint256.Int).Lsh(uint256.NewInt(1), 200)
	require.NoError(t, l.ApplyUpdate("", "alice", huge))

	blowup := new(uint256.Int).Mul(Unit, new(uint256.Int).Lsh(uint256.NewInt(1), 60))
	err := l.UpdateIndex("admin", blowup)
	require.True(t, errors.IsCode(err, errors.ErrCodeRebaseOverflow))

	// the failed update left the index alone
	require.Equal(t, Unit, l.Index())
}

func TestMintToOptedOutRespectsElasticBound(t *testing.T) {
	l := newTestLedger(t, db.NewMemoryProvider(), Unit)
	half := new(uint256.Int).Lsh(uint256.NewInt(1), 255)
	require.NoError(t, l.ApplyUpdate("", "alice", half))
	require.NoError(t, l.SetOptOut("bob", true))

	// the absolute supply alone would fit, but the combined elastic
	// supply would not
	err := l.ApplyUpdate("", "bob", half)
	require.True(t, errors.IsCode(err, errors.ErrCodeRebaseOverflow))

	require.True(t, balance(t, l, "bob").IsZero())
	supply, err := l.TotalSupply()
	require.NoError(t, err)
	require.Equal(t, half, supply)
}

func TestTransferIntoAbsoluteBookNearSupplyCeiling(t *testing.T) {
	l := newTestLedger(t, db.NewMemoryProvider(), Unit)
	half := new(uint256.Int).Lsh(uint256.NewInt(1), 255)
	require.NoError(t, l.ApplyUpdate("", "alice", half))
	require.NoError(t, l.SetOptOut("bob", true))
	require.NoError(t, l.ApplyUpdate("", "bob", new(uint256.Int).Sub(half, uint256.NewInt(1000))))

	// the crossing transfer is supply neutral and must go through even
	// this close to the ceiling
	require.NoError(t, l.ApplyUpdate("alice", "bob", uint256.NewInt(500)))
	require.Equal(t, new(uint256.Int).Sub(half, uint256.NewInt(500)), balance(t, l, "alice"))
	require.Equal(t, new(uint256.Int).Sub(half, uint256.NewInt(500)), balance(t, l, "bob"))

	// combined supply is 2^256 - 1000, still representable
	supply, err := l.TotalSupply()
	require.NoError(t, err)
	expected := new(uint256.Int).Sub(new(uint256.Int).SetAllOne(), uint256.NewInt(999))
	require.Equal(t, expected, supply)
}

func TestAdvanceSequenceIgnoresLower(t *testing.T) {
	l := newTestLedger(t, db.NewMemoryProvider(), Unit)

	require.NoError(t, l.AdvanceSequence(5))
	require.Equal(t, uint64(5), l.SequenceNumber())

	require.NoError(t, l.AdvanceSequence(3))
	require.Equal(t, uint64(5), l.SequenceNumber())

	require.NoError(t, l.AdvanceSequence(5))
	require.Equal(t, uint64(5), l.SequenceNumber())
}

func TestStateSurvivesReopen(t *testing.T) {
	provider := db.NewMemoryProvider()
	l := newTestLedger(t, provider, Unit)
	require.NoError(t, l.ApplyUpdate("", "alice", uint256.NewInt(1000)))
	require.NoError(t, l.UpdateIndex("admin", indexOf(2, 1)))
	require.NoError(t, l.AdvanceSequence(7))

	// reopening over the same provider needs no initial index
	reopened := newTestLedger(t, provider, nil)
	require.Equal(t, indexOf(2, 1), reopened.Index())
	require.Equal(t, uint64(7), reopened.SequenceNumber())
	require.Equal(t, uint256.NewInt(2000), balance(t, reopened, "alice"))
}
