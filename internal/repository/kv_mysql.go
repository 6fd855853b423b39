package repository // MySQL-backed key-value persistence

import (
	"context"      // context for managing deadlines
	"database/sql" // sql provides DB interfaces
	"fmt"
	"strings"
)

// kvSchema creates the single table used by MySQLKV.  The value column is
// MEDIUMTEXT because the booking list grows with every confirmation.
const kvSchema = `CREATE TABLE IF NOT EXISTS kv_store (
    k          VARCHAR(191) NOT NULL PRIMARY KEY,
    v          MEDIUMTEXT   NOT NULL,
    updated_at TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

// MySQLKV encapsulates database operations on the kv_store table.
type MySQLKV struct {
	db *sql.DB
}

// NewMySQLKV constructs a MySQLKV given a DB handle.
func NewMySQLKV(db *sql.DB) *MySQLKV {
	return &MySQLKV{db: db}
}

// EnsureSchema creates the kv_store table when it does not exist yet.
func (r *MySQLKV) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, kvSchema); err != nil {
		return fmt.Errorf("create kv_store: %w", err)
	}
	return nil
}

// Load selects all requested keys in one query.
func (r *MySQLKV) Load(ctx context.Context, keys ...string) (map[string][]byte, error) {
	if len(keys) == 0 {
		return nil, ErrNoKeys
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(keys)), ",")
	query := `SELECT k, v FROM kv_store WHERE k IN (` + placeholders + `)`
	args := make([]interface{}, len(keys))
	for i, k := range keys {
		args[i] = k
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select kv_store: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]byte, len(keys))
	for rows.Next() {
		var k string
		var v []byte
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		out[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Save upserts every entry inside one transaction.
func (r *MySQLKV) Save(ctx context.Context, entries map[string][]byte) error {
	if len(entries) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	query := `INSERT INTO kv_store (k, v) VALUES `
	args := make([]interface{}, 0, len(entries)*2)
	i := 0
	for k, v := range entries {
		if i > 0 {
			query += ","
		}
		query += "(?, ?)"
		args = append(args, k, v)
		i++
	}
	query += ` ON DUPLICATE KEY UPDATE v = VALUES(v)`
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert kv_store: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	committed = true
	return nil
}
