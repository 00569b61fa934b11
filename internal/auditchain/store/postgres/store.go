// Package postgres persists audit chains in PostgreSQL.
//
// Expected schema:
//
//	CREATE TABLE audit_entries (
//	    seq           BIGSERIAL PRIMARY KEY,
//	    id            UUID NOT NULL UNIQUE,
//	    chain_id      TEXT NOT NULL,
//	    action        TEXT NOT NULL,
//	    record_id     TEXT NOT NULL,
//	    record_hash   TEXT NOT NULL,
//	    previous_hash TEXT NOT NULL,
//	    created_at    TIMESTAMPTZ NOT NULL
//	);
//	CREATE INDEX audit_entries_chain_idx ON audit_entries (chain_id, seq);
//
// Rows are append-only; no UPDATE or DELETE is ever issued, and the
// database role used in production should not be granted either.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"

	"shiftguard/internal/auditchain"
	"shiftguard/internal/domain"
	"shiftguard/pkg/platform/sentinel"
	txcontext "shiftguard/pkg/platform/tx"
)

// Store implements auditchain.Store on PostgreSQL. Appends take a row lock
// on the chain head so concurrent writers serialize per chain; a writer that
// read a stale head gets sentinel.ErrConflict and retries.
type Store struct {
	db *sql.DB
}

// New creates a PostgreSQL audit chain store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Append inserts the entry inside a transaction that first locks and
// re-reads the chain head. When the caller already opened a transaction via
// pkg/platform/tx it is reused, so one business mutation and its audit entry
// commit atomically.
func (s *Store) Append(ctx context.Context, entry domain.AuditEntry) error {
	if tx, ok := txcontext.From(ctx); ok {
		return s.appendTx(ctx, tx, entry)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin audit tx: %w", err)
	}
	if err := s.appendTx(ctx, tx, entry); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit audit tx: %w", err)
	}
	return nil
}

func (s *Store) appendTx(ctx context.Context, tx *sql.Tx, entry domain.AuditEntry) error {
	head := auditchain.GenesisHash()
	row := tx.QueryRowContext(ctx, `
		SELECT record_hash FROM audit_entries
		WHERE chain_id = $1
		ORDER BY seq DESC
		LIMIT 1
		FOR UPDATE
	`, entry.ChainID)
	switch err := row.Scan(&head); {
	case errors.Is(err, sql.ErrNoRows):
		// First entry of the chain; genesis head stands.
	case err != nil:
		return fmt.Errorf("lock chain head: %w", err)
	}

	if entry.PreviousHash != head {
		return sentinel.ErrConflict
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO audit_entries (id, chain_id, action, record_id, record_hash, previous_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, entry.ID, entry.ChainID, entry.Action, entry.RecordID, entry.RecordHash, entry.PreviousHash, entry.Timestamp)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// Head returns the record hash of the chain's last entry.
func (s *Store) Head(ctx context.Context, chainID string) (string, error) {
	var head string
	row := s.db.QueryRowContext(ctx, `
		SELECT record_hash FROM audit_entries
		WHERE chain_id = $1
		ORDER BY seq DESC
		LIMIT 1
	`, chainID)
	switch err := row.Scan(&head); {
	case errors.Is(err, sql.ErrNoRows):
		return auditchain.GenesisHash(), nil
	case err != nil:
		return "", fmt.Errorf("read chain head: %w", err)
	}
	return head, nil
}

// List returns the chain's entries in append order.
func (s *Store) List(ctx context.Context, chainID string) ([]domain.AuditEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, chain_id, action, record_id, record_hash, previous_hash, created_at
		FROM audit_entries
		WHERE chain_id = $1
		ORDER BY seq ASC
	`, chainID)
	if err != nil {
		return nil, fmt.Errorf("list chain: %w", err)
	}
	defer rows.Close()

	var entries []domain.AuditEntry
	for rows.Next() {
		var e domain.AuditEntry
		if err := rows.Scan(&e.ID, &e.ChainID, &e.Action, &e.RecordID, &e.RecordHash, &e.PreviousHash, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit entries: %w", err)
	}
	return entries, nil
}
