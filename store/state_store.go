package store

import (
	"fmt"
	"sync"

	"github.com/TangibleTNFT/tangible-foundation-contracts/db"
	"github.com/TangibleTNFT/tangible-foundation-contracts/jsonx"
	"github.com/TangibleTNFT/tangible-foundation-contracts/types"
	"github.com/TangibleTNFT/tangible-foundation-contracts/utils"
)

type StateStore interface {
	Load() (*types.LedgerState, error)
	Save(state *types.LedgerState) error
}

type stateRecord struct {
	RebaseIndex    string `json:"rebase_index"`
	TotalShares    string `json:"total_shares"`
	SequenceNumber uint64 `json:"sequence_number"`
}

// GenericStateStore persists the global rebase state under a single key
type GenericStateStore struct {
	mu         sync.RWMutex
	dbProvider db.DatabaseProvider
}

func NewGenericStateStore(dbProvider db.DatabaseProvider) (*GenericStateStore, error) {
	if dbProvider == nil {
		return nil, fmt.Errorf("provider cannot be nil")
	}

	return &GenericStateStore{dbProvider: dbProvider}, nil
}

// Load returns the stored ledger state, nil if none has been saved yet
func (ss *GenericStateStore) Load() (*types.LedgerState, error) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	data, err := ss.dbProvider.Get([]byte(KeyLedgerState))
	if err != nil {
		return nil, fmt.Errorf("could not get ledger state from db: %w", err)
	}
	if data == nil {
		return nil, nil
	}

	var rec stateRecord
	if err := jsonx.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal ledger state: %w", err)
	}
	return &types.LedgerState{
		RebaseIndex:    utils.Uint256FromString(rec.RebaseIndex),
		TotalShares:    utils.Uint256FromString(rec.TotalShares),
		SequenceNumber: rec.SequenceNumber,
	}, nil
}

func (ss *GenericStateStore) Save(state *types.LedgerState) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	rec := stateRecord{
		RebaseIndex:    utils.Uint256ToString(state.RebaseIndex),
		TotalShares:    utils.Uint256ToString(state.TotalShares),
		SequenceNumber: state.SequenceNumber,
	}
	data, err := jsonx.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal ledger state: %w", err)
	}

	if err := ss.dbProvider.Put([]byte(KeyLedgerState), data); err != nil {
		return fmt.Errorf("failed to write ledger state to db: %w", err)
	}
	return nil
}
