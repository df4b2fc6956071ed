package ledger

import (
	"fmt"
	"sync"

	"github.com/holiman/uint256"

	"github.com/TangibleTNFT/tangible-foundation-contracts/errors"
	"github.com/TangibleTNFT/tangible-foundation-contracts/store"
)

// BaseLedger is the fixed-balance token book underneath the share layer.
// Opted-out accounts live entirely here; their balances never scale with the
// rebase index. Allowances for third-party spends are tracked here for both
// representations.
type BaseLedger struct {
	mu    sync.RWMutex
	store store.BaseStore
}

func NewBaseLedger(baseStore store.BaseStore) *BaseLedger {
	return &BaseLedger{store: baseStore}
}

// BalanceOf returns the absolute balance tracked for addr
func (b *BaseLedger) BalanceOf(addr string) (*uint256.Int, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.store.GetBalance(addr)
}

// Supply returns the sum of all absolute balances
func (b *BaseLedger) Supply() (*uint256.Int, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.store.GetSupply()
}

// Mint credits amount to addr and grows the absolute supply
func (b *BaseLedger) Mint(addr string, amount *uint256.Int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	balance, err := b.store.GetBalance(addr)
	if err != nil {
		return err
	}
	supply, err := b.store.GetSupply()
	if err != nil {
		return err
	}
	newSupply, overflow := new(uint256.Int).AddOverflow(supply, amount)
	if overflow {
		return errors.NewError(errors.ErrCodeRebaseOverflow, errors.ErrMsgRebaseOverflow)
	}
	if err := b.store.SetBalance(addr, new(uint256.Int).Add(balance, amount)); err != nil {
		return err
	}
	return b.store.SetSupply(newSupply)
}

// Burn debits amount from addr and shrinks the absolute supply
func (b *BaseLedger) Burn(addr string, amount *uint256.Int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	balance, err := b.store.GetBalance(addr)
	if err != nil {
		return err
	}
	if balance.Cmp(amount) < 0 {
		return errors.NewError(errors.ErrCodeInsufficientBalance, errors.ErrMsgInsufficientBalance)
	}
	supply, err := b.store.GetSupply()
	if err != nil {
		return err
	}
	if err := b.store.SetBalance(addr, new(uint256.Int).Sub(balance, amount)); err != nil {
		return err
	}
	return b.store.SetSupply(new(uint256.Int).Sub(supply, amount))
}

// Transfer moves amount between two absolute balances; supply is unchanged
func (b *BaseLedger) Transfer(from, to string, amount *uint256.Int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	fromBalance, err := b.store.GetBalance(from)
	if err != nil {
		return err
	}
	if fromBalance.Cmp(amount) < 0 {
		return errors.NewError(errors.ErrCodeInsufficientBalance, errors.ErrMsgInsufficientBalance)
	}
	toBalance, err := b.store.GetBalance(to)
	if err != nil {
		return err
	}
	if err := b.store.SetBalance(from, new(uint256.Int).Sub(fromBalance, amount)); err != nil {
		return err
	}
	return b.store.SetBalance(to, new(uint256.Int).Add(toBalance, amount))
}

// Approve sets the spender allowance for owner
func (b *BaseLedger) Approve(owner, spender string, amount *uint256.Int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.store.SetAllowance(owner, spender, amount)
}

// Allowance returns the remaining spender allowance for owner
func (b *BaseLedger) Allowance(owner, spender string) (*uint256.Int, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.store.GetAllowance(owner, spender)
}

// SpendAllowance consumes amount of spender's allowance from owner
func (b *BaseLedger) SpendAllowance(owner, spender string, amount *uint256.Int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	allowance, err := b.store.GetAllowance(owner, spender)
	if err != nil {
		return err
	}
	if allowance.Cmp(amount) < 0 {
		return errors.NewError(errors.ErrCodeInsufficientAllowance,
			fmt.Sprintf("%s: have %s, need %s", errors.ErrMsgInsufficientAllowance, allowance.Dec(), amount.Dec()))
	}
	return b.store.SetAllowance(owner, spender, new(uint256.Int).Sub(allowance, amount))
}
