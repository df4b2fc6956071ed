package ledger

import (
	"github.com/holiman/uint256"

	"github.com/TangibleTNFT/tangible-foundation-contracts/errors"
)

// Unit is the fixed-point base of the rebase index: an index of exactly Unit
// means one share is worth one token.
var Unit = uint256.NewInt(1_000_000_000_000_000_000)

// ToShares converts a token amount to shares at the given index:
// shares = floor(amount * Unit / index). The multiply-then-divide runs over
// a 512-bit intermediate so it neither overflows nor loses precision mid-way.
func ToShares(amount, index *uint256.Int) (*uint256.Int, error) {
	if index == nil || index.IsZero() {
		return nil, errors.NewError(errors.ErrCodeZeroRebaseIndex, errors.ErrMsgZeroRebaseIndex)
	}
	shares, overflow := new(uint256.Int).MulDivOverflow(amount, Unit, index)
	if overflow {
		return nil, errors.NewError(errors.ErrCodeRebaseOverflow, errors.ErrMsgRebaseOverflow)
	}
	return shares, nil
}

// ToTokens converts shares to a token amount at the given index:
// amount = floor(shares * index / Unit).
func ToTokens(shares, index *uint256.Int) (*uint256.Int, error) {
	if index == nil || index.IsZero() {
		return nil, errors.NewError(errors.ErrCodeZeroRebaseIndex, errors.ErrMsgZeroRebaseIndex)
	}
	amount, overflow := new(uint256.Int).MulDivOverflow(shares, index, Unit)
	if overflow {
		return nil, errors.NewError(errors.ErrCodeRebaseOverflow, errors.ErrMsgRebaseOverflow)
	}
	return amount, nil
}
