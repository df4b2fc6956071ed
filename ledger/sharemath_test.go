package ledger

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/TangibleTNFT/tangible-foundation-contracts/errors"
)

func indexOf(num, den uint64) *uint256.Int {
	idx := new(uint256.Int).Mul(Unit, uint256.NewInt(num))
	return idx.Div(idx, uint256.NewInt(den))
}

func TestToSharesAtUnitIndex(t *testing.T) {
	shares, err := ToShares(uint256.NewInt(1000), Unit)
	require.NoError(t, err)
	require.Equal(t, uint256.NewInt(1000), shares)
}

func TestToTokensRoundsDown(t *testing.T) {
	// 666 shares at index 1.5 = 999 tokens
	amount, err := ToTokens(uint256.NewInt(666), indexOf(3, 2))
	require.NoError(t, err)
	require.Equal(t, uint256.NewInt(999), amount)
}

func TestRoundTripNeverGains(t *testing.T) {
	indexes := []*uint256.Int{
		Unit,
		indexOf(3, 2),
		indexOf(2, 1),
		indexOf(7, 3),
		uint256.NewInt(1),
	}
	amounts := []uint64{1, 2, 999, 1000, 123456789}

	for _, idx := range indexes {
		for _, a := range amounts {
			amount := uint256.NewInt(a)
			shares, err := ToShares(amount, idx)
			require.NoError(t, err)
			back, err := ToTokens(shares, idx)
			require.NoError(t, err)
			require.LessOrEqual(t, back.Cmp(amount), 0,
				"round trip of %d at index %s gained value", a, idx.Dec())
		}
	}
}

func TestZeroIndexRejected(t *testing.T) {
	_, err := ToShares(uint256.NewInt(1), uint256.NewInt(0))
	require.True(t, errors.IsCode(err, errors.ErrCodeZeroRebaseIndex))

	_, err = ToTokens(uint256.NewInt(1), nil)
	require.True(t, errors.IsCode(err, errors.ErrCodeZeroRebaseIndex))
}

func TestConversionOverflow(t *testing.T) {
	max := new(uint256.Int).SetAllOne()

	// max shares at an index far above Unit cannot be represented as tokens
	bigIndex := new(uint256.Int).Mul(Unit, uint256.NewInt(1000))
	_, err := ToTokens(max, bigIndex)
	require.True(t, errors.IsCode(err, errors.ErrCodeRebaseOverflow))

	// max tokens at a tiny index cannot be represented as shares
	_, err = ToShares(max, uint256.NewInt(1))
	require.True(t, errors.IsCode(err, errors.ErrCodeRebaseOverflow))
}
