package store

import (
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/TangibleTNFT/tangible-foundation-contracts/db"
	"github.com/TangibleTNFT/tangible-foundation-contracts/types"
)

// FailureStore keeps fingerprints of inbound payloads whose application
// failed; presence of a record is what arms the retry path.
type FailureStore interface {
	Put(key types.FailureKey, fingerprint [32]byte) error
	Get(key types.FailureKey) ([32]byte, bool, error)
	Delete(key types.FailureKey) error
}

type GenericFailureStore struct {
	mu         sync.RWMutex
	dbProvider db.DatabaseProvider
}

func NewGenericFailureStore(dbProvider db.DatabaseProvider) (*GenericFailureStore, error) {
	if dbProvider == nil {
		return nil, fmt.Errorf("provider cannot be nil")
	}

	return &GenericFailureStore{dbProvider: dbProvider}, nil
}

func (fs *GenericFailureStore) Put(key types.FailureKey, fingerprint [32]byte) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	value := []byte(hex.EncodeToString(fingerprint[:]))
	if err := fs.dbProvider.Put(fs.getDbKey(key), value); err != nil {
		return fmt.Errorf("failed to write pending failure to db: %w", err)
	}
	return nil
}

// Get returns the stored fingerprint and whether a record exists
func (fs *GenericFailureStore) Get(key types.FailureKey) ([32]byte, bool, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	var fingerprint [32]byte
	data, err := fs.dbProvider.Get(fs.getDbKey(key))
	if err != nil {
		return fingerprint, false, fmt.Errorf("could not get pending failure from db: %w", err)
	}
	if data == nil {
		return fingerprint, false, nil
	}

	raw, err := hex.DecodeString(string(data))
	if err != nil || len(raw) != len(fingerprint) {
		return fingerprint, false, fmt.Errorf("corrupt pending failure record for %s", key)
	}
	copy(fingerprint[:], raw)
	return fingerprint, true, nil
}

func (fs *GenericFailureStore) Delete(key types.FailureKey) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	return fs.dbProvider.Delete(fs.getDbKey(key))
}

func (fs *GenericFailureStore) getDbKey(key types.FailureKey) []byte {
	return []byte(PrefixFailure + key.String())
}
