package rebase

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/TangibleTNFT/tangible-foundation-contracts/ledger"
	"github.com/TangibleTNFT/tangible-foundation-contracts/logx"
)

// Synchronizer gates index updates behind a monotonic sequence number so a
// replayed or reordered cross-chain message can never roll the index back.
// Creating one revokes the controller's direct setter for good.
type Synchronizer struct {
	ledger *ledger.Ledger
}

func NewSynchronizer(ctrl *Controller) *Synchronizer {
	ctrl.markSynchronized()
	return &Synchronizer{ledger: ctrl.ledger}
}

// SyncIndex applies an inbound (index, sequence) pair. A sequence number
// below the stored one means the update is stale: nothing changes and no
// error is returned. Equal sequence re-applies the index (idempotent);
// greater sequence applies it and advances the stored number.
func (s *Synchronizer) SyncIndex(index *uint256.Int, seq uint64) error {
	current := s.ledger.SequenceNumber()
	if seq < current {
		logx.Debug("REBASE_SYNC", fmt.Sprintf("Ignoring stale index update seq=%d current=%d", seq, current))
		return nil
	}
	if err := s.ledger.UpdateIndex("sync", index); err != nil {
		return err
	}
	if seq != current {
		return s.ledger.AdvanceSequence(seq)
	}
	return nil
}

// CurrentSequenceNumber reads the stored sequence for outbound messages
func (s *Synchronizer) CurrentSequenceNumber() uint64 {
	return s.ledger.SequenceNumber()
}
