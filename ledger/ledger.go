package ledger

import (
	"fmt"
	"sync"

	"github.com/holiman/uint256"

	"github.com/TangibleTNFT/tangible-foundation-contracts/errors"
	"github.com/TangibleTNFT/tangible-foundation-contracts/events"
	"github.com/TangibleTNFT/tangible-foundation-contracts/logx"
	"github.com/TangibleTNFT/tangible-foundation-contracts/store"
	"github.com/TangibleTNFT/tangible-foundation-contracts/types"
)

// Ledger is the share-based elastic balance book. Balances of rebasing
// accounts are derived from stored shares and the global index; opted-out
// accounts are delegated to the BaseLedger. All mutations keep the elastic
// supply invariant: tokens(totalShares, index) + absoluteSupply never
// overflows.
type Ledger struct {
	mu       sync.RWMutex
	accounts store.AccountStore
	states   store.StateStore
	base     *BaseLedger
	bus      *events.EventBus
	state    *types.LedgerState
}

// NewLedger restores state from the store or initializes it at initialIndex.
// A fresh ledger refuses to start without an explicit non-zero index; there
// is no implicit one-to-one default.
func NewLedger(accounts store.AccountStore, states store.StateStore, base *BaseLedger, bus *events.EventBus, initialIndex *uint256.Int) (*Ledger, error) {
	state, err := states.Load()
	if err != nil {
		return nil, fmt.Errorf("could not load ledger state: %w", err)
	}
	if state == nil {
		if initialIndex == nil || initialIndex.IsZero() {
			return nil, errors.NewError(errors.ErrCodeZeroRebaseIndex, errors.ErrMsgZeroRebaseIndex)
		}
		state = types.NewLedgerState(initialIndex)
		if err := states.Save(state); err != nil {
			return nil, fmt.Errorf("could not persist initial ledger state: %w", err)
		}
		logx.Info("LEDGER", fmt.Sprintf("Initialized ledger state at index %s", initialIndex.Dec()))
	}

	return &Ledger{
		accounts: accounts,
		states:   states,
		base:     base,
		bus:      bus,
		state:    state,
	}, nil
}

// Base exposes the fixed-balance book for allowance and absolute operations
func (l *Ledger) Base() *BaseLedger {
	return l.base
}

// Index returns the current rebase index
func (l *Ledger) Index() *uint256.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state.RebaseIndex.Clone()
}

// TotalShares returns the share count across all rebasing accounts
func (l *Ledger) TotalShares() *uint256.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state.TotalShares.Clone()
}

// SequenceNumber returns the stored cross-chain sequence number
func (l *Ledger) SequenceNumber() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state.SequenceNumber
}

// SharesOf returns the stored share count for addr
func (l *Ledger) SharesOf(addr string) (*uint256.Int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	acct, err := l.getAccount(addr)
	if err != nil {
		return nil, err
	}
	return acct.Shares.Clone(), nil
}

// IsOptedOut reports whether addr is excluded from index scaling
func (l *Ledger) IsOptedOut(addr string) (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	acct, err := l.getAccount(addr)
	if err != nil {
		return false, err
	}
	return acct.OptedOut, nil
}

// BalanceOf returns the token balance for addr: the absolute balance when
// opted out, the share-derived balance otherwise
func (l *Ledger) BalanceOf(addr string) (*uint256.Int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	acct, err := l.getAccount(addr)
	if err != nil {
		return nil, err
	}
	return l.balanceOf(acct)
}

func (l *Ledger) balanceOf(acct *types.Account) (*uint256.Int, error) {
	if acct.OptedOut {
		return l.base.BalanceOf(acct.Address)
	}
	return ToTokens(acct.Shares, l.state.RebaseIndex)
}

// TotalSupply returns the elastic supply: share-derived tokens plus all
// absolute balances
func (l *Ledger) TotalSupply() (*uint256.Int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.totalSupply(l.state.TotalShares, l.state.RebaseIndex)
}

func (l *Ledger) totalSupply(totalShares, index *uint256.Int) (*uint256.Int, error) {
	shareTokens, err := ToTokens(totalShares, index)
	if err != nil {
		return nil, err
	}
	absolute, err := l.base.Supply()
	if err != nil {
		return nil, err
	}
	supply, overflow := new(uint256.Int).AddOverflow(shareTokens, absolute)
	if overflow {
		return nil, errors.NewError(errors.ErrCodeRebaseOverflow, errors.ErrMsgRebaseOverflow)
	}
	return supply, nil
}

// TransferableShares computes the exact share count a debit of amount from
// the account costs. Debiting the full derived balance returns the stored
// share count so no rounding residue is stranded.
func (l *Ledger) TransferableShares(amount *uint256.Int, from string) (*uint256.Int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	acct, err := l.getAccount(from)
	if err != nil {
		return nil, err
	}
	return l.transferableShares(acct, amount)
}

func (l *Ledger) transferableShares(acct *types.Account, amount *uint256.Int) (*uint256.Int, error) {
	balance, err := ToTokens(acct.Shares, l.state.RebaseIndex)
	if err != nil {
		return nil, err
	}
	switch balance.Cmp(amount) {
	case -1:
		return nil, errors.NewError(errors.ErrCodeInsufficientBalance,
			fmt.Sprintf("%s: have %s, need %s", errors.ErrMsgInsufficientBalance, balance.Dec(), amount.Dec()))
	case 0:
		return acct.Shares.Clone(), nil
	default:
		return ToShares(amount, l.state.RebaseIndex)
	}
}

// ApplyUpdate is the canonical balance mutation: mint when from is empty,
// burn when to is empty, transfer otherwise. Sides route through shares or
// the absolute book according to each account's opt-out flag. The emitted
// notification always carries the token amount, never the share delta.
func (l *Ledger) ApplyUpdate(from, to string, amount *uint256.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if from == "" && to == "" {
		return errors.NewError(errors.ErrCodeInvalidAmount, "update needs at least one side")
	}

	var err error
	switch {
	case from == "": // mint
		var toAcct *types.Account
		if toAcct, err = l.getAccount(to); err != nil {
			return err
		}
		if toAcct.OptedOut {
			// the absolute book only guards its own sum; the combined
			// elastic bound is enforced here
			if err = l.checkAbsoluteMintOverflow(l.state.TotalShares, amount); err == nil {
				err = l.base.Mint(to, amount)
			}
		} else {
			err = l.mintShares(toAcct, amount)
		}
	case to == "": // burn
		var fromAcct *types.Account
		if fromAcct, err = l.getAccount(from); err != nil {
			return err
		}
		if fromAcct.OptedOut {
			err = l.base.Burn(from, amount)
		} else {
			err = l.burnShares(fromAcct, amount)
		}
	default:
		err = l.transfer(from, to, amount)
	}
	if err != nil {
		return err
	}

	if l.bus != nil {
		l.bus.Publish(events.NewBalanceChanged(from, to, amount))
	}
	return nil
}

func (l *Ledger) transfer(from, to string, amount *uint256.Int) error {
	fromAcct, err := l.getAccount(from)
	if err != nil {
		return err
	}
	toAcct, err := l.getAccount(to)
	if err != nil {
		return err
	}

	switch {
	case fromAcct.OptedOut && toAcct.OptedOut:
		return l.base.Transfer(from, to, amount)
	case fromAcct.OptedOut:
		// crossing the representation boundary: absolute burn, share mint
		balance, err := l.base.BalanceOf(from)
		if err != nil {
			return err
		}
		if balance.Cmp(amount) < 0 {
			return errors.NewError(errors.ErrCodeInsufficientBalance, errors.ErrMsgInsufficientBalance)
		}
		if err := l.checkMintOverflow(amount); err != nil {
			return err
		}
		if err := l.base.Burn(from, amount); err != nil {
			return err
		}
		return l.mintShares(toAcct, amount)
	case toAcct.OptedOut:
		// validate against the post-burn share total so the burn never
		// lands without its matching absolute mint
		shares, err := l.transferableShares(fromAcct, amount)
		if err != nil {
			return err
		}
		newTotal := new(uint256.Int).Sub(l.state.TotalShares, shares)
		if err := l.checkAbsoluteMintOverflow(newTotal, amount); err != nil {
			return err
		}
		if err := l.burnShares(fromAcct, amount); err != nil {
			return err
		}
		return l.base.Mint(to, amount)
	default:
		shares, err := l.transferableShares(fromAcct, amount)
		if err != nil {
			return err
		}
		fromAcct.Shares = new(uint256.Int).Sub(fromAcct.Shares, shares)
		toAcct.Shares = new(uint256.Int).Add(toAcct.Shares, shares)
		if err := l.accounts.Store(fromAcct); err != nil {
			return err
		}
		return l.accounts.Store(toAcct)
	}
}

// mintShares credits amount worth of shares and grows totalShares
func (l *Ledger) mintShares(acct *types.Account, amount *uint256.Int) error {
	shares, err := ToShares(amount, l.state.RebaseIndex)
	if err != nil {
		return err
	}
	newTotal, overflow := new(uint256.Int).AddOverflow(l.state.TotalShares, shares)
	if overflow {
		return errors.NewError(errors.ErrCodeRebaseOverflow, errors.ErrMsgRebaseOverflow)
	}
	if err := l.checkElasticOverflow(newTotal, l.state.RebaseIndex); err != nil {
		return err
	}

	acct.Shares = new(uint256.Int).Add(acct.Shares, shares)
	if err := l.accounts.Store(acct); err != nil {
		return err
	}
	l.state.TotalShares = newTotal
	return l.states.Save(l.state)
}

// burnShares debits amount worth of shares and shrinks totalShares
func (l *Ledger) burnShares(acct *types.Account, amount *uint256.Int) error {
	shares, err := l.transferableShares(acct, amount)
	if err != nil {
		return err
	}

	acct.Shares = new(uint256.Int).Sub(acct.Shares, shares)
	if err := l.accounts.Store(acct); err != nil {
		return err
	}
	l.state.TotalShares = new(uint256.Int).Sub(l.state.TotalShares, shares)
	return l.states.Save(l.state)
}

// SetOptOut toggles addr between share and absolute accounting, moving its
// whole balance across in one atomic step. A matching flag is a no-op.
func (l *Ledger) SetOptOut(addr string, optOut bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	acct, err := l.getAccount(addr)
	if err != nil {
		return err
	}
	if acct.OptedOut == optOut {
		return nil
	}

	balance, err := l.balanceOf(acct)
	if err != nil {
		return err
	}

	if optOut {
		// shares -> absolute
		l.state.TotalShares = new(uint256.Int).Sub(l.state.TotalShares, acct.Shares)
		acct.Shares = uint256.NewInt(0)
		acct.OptedOut = true
		if err := l.accounts.Store(acct); err != nil {
			return err
		}
		if err := l.states.Save(l.state); err != nil {
			return err
		}
		if !balance.IsZero() {
			if err := l.base.Mint(addr, balance); err != nil {
				return err
			}
		}
	} else {
		// absolute -> shares
		shares, err := ToShares(balance, l.state.RebaseIndex)
		if err != nil {
			return err
		}
		newTotal, overflow := new(uint256.Int).AddOverflow(l.state.TotalShares, shares)
		if overflow {
			return errors.NewError(errors.ErrCodeRebaseOverflow, errors.ErrMsgRebaseOverflow)
		}
		if !balance.IsZero() {
			if err := l.base.Burn(addr, balance); err != nil {
				return err
			}
		}
		acct.Shares = shares
		acct.OptedOut = false
		if err := l.accounts.Store(acct); err != nil {
			return err
		}
		l.state.TotalShares = newTotal
		if err := l.states.Save(l.state); err != nil {
			return err
		}
	}

	if l.bus != nil {
		l.bus.Publish(events.NewRebaseToggled(addr, !optOut))
	}
	logx.Info("LEDGER", fmt.Sprintf("Account %s rebase opt-out set to %t (moved %s tokens)", addr, optOut, balance.Dec()))
	return nil
}

// UpdateIndex stores a new rebase index after re-validating the supply
// invariant. An unchanged index is a no-op and emits nothing.
func (l *Ledger) UpdateIndex(updater string, newIndex *uint256.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if newIndex == nil || newIndex.IsZero() {
		return errors.NewError(errors.ErrCodeZeroRebaseIndex, errors.ErrMsgZeroRebaseIndex)
	}
	if l.state.RebaseIndex.Eq(newIndex) {
		return nil
	}
	if err := l.checkElasticOverflow(l.state.TotalShares, newIndex); err != nil {
		return err
	}

	l.state.RebaseIndex = newIndex.Clone()
	if err := l.states.Save(l.state); err != nil {
		return err
	}

	if l.bus != nil {
		l.bus.Publish(events.NewIndexUpdated(updater, newIndex))
	}
	logx.Info("LEDGER", fmt.Sprintf("Rebase index updated to %s by %s", newIndex.Dec(), updater))
	return nil
}

// AdvanceSequence raises the stored sequence number; lower values are ignored
func (l *Ledger) AdvanceSequence(seq uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if seq <= l.state.SequenceNumber {
		return nil
	}
	l.state.SequenceNumber = seq
	return l.states.Save(l.state)
}

// checkMintOverflow verifies that minting amount worth of shares would keep
// the elastic supply representable
func (l *Ledger) checkMintOverflow(amount *uint256.Int) error {
	shares, err := ToShares(amount, l.state.RebaseIndex)
	if err != nil {
		return err
	}
	newTotal, overflow := new(uint256.Int).AddOverflow(l.state.TotalShares, shares)
	if overflow {
		return errors.NewError(errors.ErrCodeRebaseOverflow, errors.ErrMsgRebaseOverflow)
	}
	return l.checkElasticOverflow(newTotal, l.state.RebaseIndex)
}

// checkAbsoluteMintOverflow verifies that growing the absolute supply by
// amount, with totalShares standing on the share side, keeps the combined
// elastic supply representable
func (l *Ledger) checkAbsoluteMintOverflow(totalShares, amount *uint256.Int) error {
	shareTokens, err := ToTokens(totalShares, l.state.RebaseIndex)
	if err != nil {
		return err
	}
	absolute, err := l.base.Supply()
	if err != nil {
		return err
	}
	newAbsolute, overflow := new(uint256.Int).AddOverflow(absolute, amount)
	if !overflow {
		_, overflow = new(uint256.Int).AddOverflow(shareTokens, newAbsolute)
	}
	if overflow {
		return errors.NewError(errors.ErrCodeRebaseOverflow, errors.ErrMsgRebaseOverflow)
	}
	return nil
}

// checkElasticOverflow rejects any (totalShares, index) combination whose
// token equivalent plus the absolute supply would leave the integer range
func (l *Ledger) checkElasticOverflow(totalShares, index *uint256.Int) error {
	if _, err := l.totalSupply(totalShares, index); err != nil {
		return err
	}
	return nil
}

// getAccount loads addr or hands back a fresh zero account; records are
// created lazily and an all-zero record is equivalent to absence
func (l *Ledger) getAccount(addr string) (*types.Account, error) {
	acct, err := l.accounts.GetByAddr(addr)
	if err != nil {
		return nil, err
	}
	if acct == nil {
		acct = types.NewAccount(addr)
	}
	return acct, nil
}
