// Package repository provides the two persistence sinks: the durable
// SQLite transaction store and the append-only CSV export log.
package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"
	_ "github.com/mattn/go-sqlite3"

	"github.com/mvoloshin/exchange-bot/internal/domain"
)

// SQLiteStore is the durable, queryable transaction store.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens the database and runs migrations.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) migrate() error {
	// Amounts are stored as decimal strings so repeated commission math
	// survives a write/read round trip without float drift.
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS transactions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			username TEXT NOT NULL,
			operation_type TEXT NOT NULL,
			from_amount TEXT NOT NULL,
			to_amount TEXT NOT NULL,
			commission TEXT NOT NULL,
			timestamp DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_user ON transactions(user_id, timestamp)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\n%s", err, m)
		}
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveTransaction inserts a confirmed transaction and fills in the
// store-assigned id.
func (s *SQLiteStore) SaveTransaction(ctx context.Context, tx *domain.Transaction) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO transactions (user_id, username, operation_type, from_amount, to_amount, commission, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		tx.UserID, tx.Username, tx.Operation,
		tx.FromAmount.String(), tx.ToAmount.String(), tx.Commission.String(),
		tx.Timestamp)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	tx.ID = id
	return nil
}

// History returns the user's transactions, most recent first. Timestamp
// ties are broken by id, so insertion order is preserved within a tick.
func (s *SQLiteStore) History(ctx context.Context, userID int64) ([]domain.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, username, operation_type, from_amount, to_amount, commission, timestamp
		 FROM transactions
		 WHERE user_id = ?
		 ORDER BY timestamp DESC, id DESC`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []domain.Transaction
	for rows.Next() {
		var tx domain.Transaction
		var fromAmount, toAmount, commission string
		if err := rows.Scan(&tx.ID, &tx.UserID, &tx.Username, &tx.Operation,
			&fromAmount, &toAmount, &commission, &tx.Timestamp); err != nil {
			return nil, err
		}
		if tx.FromAmount, err = decimal.NewFromString(fromAmount); err != nil {
			return nil, fmt.Errorf("corrupt from_amount %q: %w", fromAmount, err)
		}
		if tx.ToAmount, err = decimal.NewFromString(toAmount); err != nil {
			return nil, fmt.Errorf("corrupt to_amount %q: %w", toAmount, err)
		}
		if tx.Commission, err = decimal.NewFromString(commission); err != nil {
			return nil, fmt.Errorf("corrupt commission %q: %w", commission, err)
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}
