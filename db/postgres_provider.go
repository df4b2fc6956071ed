package db

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// PostgresProvider implements DatabaseProvider over a single key-value table
// in PostgreSQL, for deployments that keep ledger state in a shared database.
type PostgresProvider struct {
	db *sql.DB
}

const createKVTable = `CREATE TABLE IF NOT EXISTS ledger_kv (
	key   BYTEA PRIMARY KEY,
	value BYTEA NOT NULL
)`

// NewPostgresProvider connects using a lib/pq DSN and ensures the table exists
func NewPostgresProvider(dsn string) (DatabaseProvider, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	if _, err := db.Exec(createKVTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create kv table: %w", err)
	}
	return &PostgresProvider{db: db}, nil
}

func (p *PostgresProvider) Get(key []byte) ([]byte, error) {
	var value []byte
	err := p.db.QueryRow(`SELECT value FROM ledger_kv WHERE key = $1`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (p *PostgresProvider) Put(key, value []byte) error {
	_, err := p.db.Exec(
		`INSERT INTO ledger_kv (key, value) VALUES ($1, $2)
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`, key, value)
	return err
}

func (p *PostgresProvider) Delete(key []byte) error {
	_, err := p.db.Exec(`DELETE FROM ledger_kv WHERE key = $1`, key)
	return err
}

func (p *PostgresProvider) Has(key []byte) (bool, error) {
	var exists bool
	err := p.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM ledger_kv WHERE key = $1)`, key).Scan(&exists)
	return exists, err
}

func (p *PostgresProvider) Close() error {
	return p.db.Close()
}

func (p *PostgresProvider) Batch() DatabaseBatch {
	return &postgresBatch{provider: p}
}

// IteratePrefix walks keys ordered lexicographically
func (p *PostgresProvider) IteratePrefix(prefix []byte, callback func(key, value []byte) bool) error {
	rows, err := p.db.Query(
		`SELECT key, value FROM ledger_kv WHERE substring(key for $2) = $1 ORDER BY key`,
		prefix, len(prefix))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var key, value []byte
		if err := rows.Scan(&key, &value); err != nil {
			return err
		}
		if !callback(key, value) {
			break
		}
	}
	return rows.Err()
}

type postgresBatch struct {
	provider *PostgresProvider
	ops      []kvOp
}

func (b *postgresBatch) Put(key, value []byte) {
	b.ops = append(b.ops, kvOp{
		key:   append([]byte(nil), key...),
		value: append([]byte(nil), value...),
	})
}

func (b *postgresBatch) Delete(key []byte) {
	b.ops = append(b.ops, kvOp{key: append([]byte(nil), key...), delete: true})
}

// Write commits all accumulated operations in one SQL transaction
func (b *postgresBatch) Write() error {
	tx, err := b.provider.db.Begin()
	if err != nil {
		return err
	}
	for _, op := range b.ops {
		if op.delete {
			_, err = tx.Exec(`DELETE FROM ledger_kv WHERE key = $1`, op.key)
		} else {
			_, err = tx.Exec(
				`INSERT INTO ledger_kv (key, value) VALUES ($1, $2)
				 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`, op.key, op.value)
		}
		if err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (b *postgresBatch) Reset() {
	b.ops = b.ops[:0]
}
