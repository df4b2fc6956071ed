package store

import (
	"fmt"
	"sync"

	"github.com/holiman/uint256"

	"github.com/TangibleTNFT/tangible-foundation-contracts/db"
	"github.com/TangibleTNFT/tangible-foundation-contracts/utils"
)

// BaseStore persists the fixed-balance token book: absolute balances for
// opted-out accounts, spender allowances and the absolute supply counter.
type BaseStore interface {
	GetBalance(addr string) (*uint256.Int, error)
	SetBalance(addr string, balance *uint256.Int) error
	GetAllowance(owner, spender string) (*uint256.Int, error)
	SetAllowance(owner, spender string, amount *uint256.Int) error
	GetSupply() (*uint256.Int, error)
	SetSupply(supply *uint256.Int) error
}

type GenericBaseStore struct {
	mu         sync.RWMutex
	dbProvider db.DatabaseProvider
}

func NewGenericBaseStore(dbProvider db.DatabaseProvider) (*GenericBaseStore, error) {
	if dbProvider == nil {
		return nil, fmt.Errorf("provider cannot be nil")
	}

	return &GenericBaseStore{dbProvider: dbProvider}, nil
}

func (bs *GenericBaseStore) GetBalance(addr string) (*uint256.Int, error) {
	bs.mu.RLock()
	defer bs.mu.RUnlock()

	return bs.getAmount([]byte(PrefixBase + addr))
}

func (bs *GenericBaseStore) SetBalance(addr string, balance *uint256.Int) error {
	bs.mu.Lock()
	defer bs.mu.Unlock()

	return bs.putAmount([]byte(PrefixBase+addr), balance)
}

func (bs *GenericBaseStore) GetAllowance(owner, spender string) (*uint256.Int, error) {
	bs.mu.RLock()
	defer bs.mu.RUnlock()

	return bs.getAmount(allowanceKey(owner, spender))
}

func (bs *GenericBaseStore) SetAllowance(owner, spender string, amount *uint256.Int) error {
	bs.mu.Lock()
	defer bs.mu.Unlock()

	return bs.putAmount(allowanceKey(owner, spender), amount)
}

func (bs *GenericBaseStore) GetSupply() (*uint256.Int, error) {
	bs.mu.RLock()
	defer bs.mu.RUnlock()

	return bs.getAmount([]byte(KeyBaseSupply))
}

func (bs *GenericBaseStore) SetSupply(supply *uint256.Int) error {
	bs.mu.Lock()
	defer bs.mu.Unlock()

	return bs.putAmount([]byte(KeyBaseSupply), supply)
}

func (bs *GenericBaseStore) getAmount(key []byte) (*uint256.Int, error) {
	data, err := bs.dbProvider.Get(key)
	if err != nil {
		return nil, fmt.Errorf("could not read %s from db: %w", key, err)
	}
	if data == nil {
		return uint256.NewInt(0), nil
	}
	return utils.Uint256FromString(string(data)), nil
}

func (bs *GenericBaseStore) putAmount(key []byte, amount *uint256.Int) error {
	if err := bs.dbProvider.Put(key, []byte(utils.Uint256ToString(amount))); err != nil {
		return fmt.Errorf("could not write %s to db: %w", key, err)
	}
	return nil
}

func allowanceKey(owner, spender string) []byte {
	return []byte(PrefixAllowance + owner + ":" + spender)
}
