package db

import "fmt"

// Supported database backends
const (
	BackendBolt     = "bolt"
	BackendLevelDB  = "leveldb"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// NewProvider builds a DatabaseProvider for the configured backend. Path is
// the file/directory location for embedded backends, the DSN for postgres.
func NewProvider(backend, path string) (DatabaseProvider, error) {
	switch backend {
	case BackendBolt, "":
		return NewBoltProvider(path)
	case BackendLevelDB:
		return NewLevelDBProvider(path)
	case BackendPostgres:
		return NewPostgresProvider(path)
	case BackendMemory:
		return NewMemoryProvider(), nil
	default:
		return nil, fmt.Errorf("unknown database backend %q", backend)
	}
}
