// Package rebase owns mutation of the global rebase index: directly through
// the Controller on a single-chain deployment, or nonce-gated through the
// Synchronizer once cross-chain synchronization is wired in.
package rebase

import (
	"github.com/holiman/uint256"

	"github.com/TangibleTNFT/tangible-foundation-contracts/errors"
	"github.com/TangibleTNFT/tangible-foundation-contracts/ledger"
)

// Controller is the administrative surface over the ledger's rebase state.
// Attaching a Synchronizer revokes the direct index setter: from then on the
// index only moves through SyncIndex.
type Controller struct {
	ledger       *ledger.Ledger
	synchronized bool
}

func NewController(l *ledger.Ledger) *Controller {
	return &Controller{ledger: l}
}

// SetIndex stores a new rebase index. Only legal while no Synchronizer is
// attached; cross-chain deployments must go through SyncIndex instead.
func (c *Controller) SetIndex(updater string, newIndex *uint256.Int) error {
	if c.synchronized {
		return errors.NewError(errors.ErrCodeInvalidRebaseIndexMutator, errors.ErrMsgInvalidRebaseIndexMutator)
	}
	return c.ledger.UpdateIndex(updater, newIndex)
}

// SetOptOut toggles an account between share and absolute accounting
func (c *Controller) SetOptOut(account string, disable bool) error {
	return c.ledger.SetOptOut(account, disable)
}

// Index returns the current rebase index
func (c *Controller) Index() *uint256.Int {
	return c.ledger.Index()
}

// markSynchronized is called by NewSynchronizer when it takes over the index
func (c *Controller) markSynchronized() {
	c.synchronized = true
}
