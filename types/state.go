package types

import "github.com/holiman/uint256"

// LedgerState is the per-chain global rebase state. SequenceNumber orders
// cross-chain index updates and never decreases.
type LedgerState struct {
	RebaseIndex    *uint256.Int `json:"rebase_index"`
	TotalShares    *uint256.Int `json:"total_shares"`
	SequenceNumber uint64       `json:"sequence_number"`
}

// NewLedgerState initializes state at the given index with no shares issued
func NewLedgerState(index *uint256.Int) *LedgerState {
	return &LedgerState{
		RebaseIndex:    index.Clone(),
		TotalShares:    uint256.NewInt(0),
		SequenceNumber: 0,
	}
}

// Clone returns a deep copy of the state
func (s *LedgerState) Clone() *LedgerState {
	return &LedgerState{
		RebaseIndex:    s.RebaseIndex.Clone(),
		TotalShares:    s.TotalShares.Clone(),
		SequenceNumber: s.SequenceNumber,
	}
}
