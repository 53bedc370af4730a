package storage

import (
	"context"
	"database/sql"
	"errors"
	"strings"
)

const createStorageTable = `CREATE TABLE IF NOT EXISTS client_storage (
	storage_key   VARCHAR(128) NOT NULL PRIMARY KEY,
	storage_value MEDIUMTEXT   NOT NULL,
	updated_at    TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

// SQLStore keeps values in the MySQL table client_storage.  Keys are
// namespaced with a prefix so several clients can share one table.
type SQLStore struct {
	db     *sql.DB
	prefix string
}

func NewSQLStore(db *sql.DB, prefix string) *SQLStore {
	return &SQLStore{db: db, prefix: prefix}
}

// EnsureSchema creates the backing table when it is missing.
func (s *SQLStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, createStorageTable)
	return err
}

func (s *SQLStore) key(k string) string {
	if s.prefix == "" {
		return k
	}
	return s.prefix + ":" + k
}

func (s *SQLStore) Get(ctx context.Context, key string) (string, error) {
	var v string
	err := s.db.QueryRowContext(ctx,
		"SELECT storage_value FROM client_storage WHERE storage_key=? LIMIT 1",
		s.key(key)).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return v, err
}

func (s *SQLStore) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO client_storage (storage_key, storage_value) VALUES (?,?) ON DUPLICATE KEY UPDATE storage_value=VALUES(storage_value)",
		s.key(key), value)
	return err
}

func (s *SQLStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = s.key(k)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(keys)), ",")
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM client_storage WHERE storage_key IN ("+placeholders+")", args...)
	return err
}
