package store

import (
	"fmt"
	"sync"

	"github.com/TangibleTNFT/tangible-foundation-contracts/db"
	"github.com/TangibleTNFT/tangible-foundation-contracts/jsonx"
	"github.com/TangibleTNFT/tangible-foundation-contracts/logx"
	"github.com/TangibleTNFT/tangible-foundation-contracts/types"
	"github.com/TangibleTNFT/tangible-foundation-contracts/utils"
)

type AccountStore interface {
	Store(account *types.Account) error
	GetByAddr(addr string) (*types.Account, error)
	ExistsByAddr(addr string) (bool, error)
	MustClose()
}

// accountRecord is the persisted shape; amounts travel as decimal strings
type accountRecord struct {
	Address  string `json:"address"`
	Shares   string `json:"shares"`
	OptedOut bool   `json:"opted_out"`
}

type GenericAccountStore struct {
	mu         sync.RWMutex
	dbProvider db.DatabaseProvider
}

func NewGenericAccountStore(dbProvider db.DatabaseProvider) (*GenericAccountStore, error) {
	if dbProvider == nil {
		return nil, fmt.Errorf("provider cannot be nil")
	}

	return &GenericAccountStore{
		dbProvider: dbProvider,
	}, nil
}

func (as *GenericAccountStore) Store(account *types.Account) error {
	as.mu.Lock()
	defer as.mu.Unlock()

	rec := accountRecord{
		Address:  account.Address,
		Shares:   utils.Uint256ToString(account.Shares),
		OptedOut: account.OptedOut,
	}
	data, err := jsonx.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal account: %w", err)
	}

	if err := as.dbProvider.Put(as.getDbKey(account.Address), data); err != nil {
		return fmt.Errorf("failed to write account to db: %w", err)
	}

	return nil
}

// GetByAddr returns the account stored for addr, both nil if it does not exist
func (as *GenericAccountStore) GetByAddr(addr string) (*types.Account, error) {
	as.mu.RLock()
	defer as.mu.RUnlock()

	data, err := as.dbProvider.Get(as.getDbKey(addr))
	if err != nil {
		return nil, fmt.Errorf("could not get account %s from db: %w", addr, err)
	}
	if data == nil {
		return nil, nil
	}

	var rec accountRecord
	if err := jsonx.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal account %s: %w", addr, err)
	}
	return &types.Account{
		Address:  rec.Address,
		Shares:   utils.Uint256FromString(rec.Shares),
		OptedOut: rec.OptedOut,
	}, nil
}

func (as *GenericAccountStore) ExistsByAddr(addr string) (bool, error) {
	as.mu.RLock()
	defer as.mu.RUnlock()

	return as.dbProvider.Has(as.getDbKey(addr))
}

func (as *GenericAccountStore) MustClose() {
	if err := as.dbProvider.Close(); err != nil {
		logx.Error("ACCOUNT_STORE", "Failed to close db provider:", err.Error())
	}
}

func (as *GenericAccountStore) getDbKey(addr string) []byte {
	return []byte(PrefixAccount + addr)
}
