// Package rewrite mines and serves command-template paraphrases: pairs of
// command templates observed to translate the same natural-language request.
// Templates are persisted in Postgres so the offline miner and the online
// translator share one store.
package rewrite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/nlcmd/translator/pkg/errors"
	"github.com/nlcmd/translator/pkg/postgres"
)

// Store persists rewrite pairs in the rewrites table.
type Store struct {
	db     *postgres.Client
	logger *slog.Logger
}

// NewStore wraps a Postgres client.
func NewStore(db *postgres.Client) *Store {
	return &Store{
		db:     db,
		logger: slog.Default().With("component", "rewrite-store"),
	}
}

// EnsureSchema creates the rewrites table and its lookup index if missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS rewrites (
			s1 TEXT NOT NULL,
			s2 TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS rewrites_s1_idx ON rewrites (s1)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensuring rewrites schema: %w", err)
		}
	}
	return nil
}

// Add records a single directed rewrite pair.
func (s *Store) Add(ctx context.Context, s1, s2 string) error {
	if _, err := s.db.DB.ExecContext(ctx,
		`INSERT INTO rewrites (s1, s2) VALUES ($1, $2)`, s1, s2); err != nil {
		return fmt.Errorf("%w: inserting rewrite: %v", errors.ErrStoreUnavailable, err)
	}
	return nil
}

// AddBatch records many rewrite pairs in one transaction.
func (s *Store) AddBatch(ctx context.Context, pairs [][2]string) error {
	return s.db.InTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO rewrites (s1, s2) VALUES ($1, $2)`)
		if err != nil {
			return fmt.Errorf("preparing rewrite insert: %w", err)
		}
		defer stmt.Close()
		for _, p := range pairs {
			if _, err := stmt.ExecContext(ctx, p[0], p[1]); err != nil {
				return fmt.Errorf("inserting rewrite %q -> %q: %w", p[0], p[1], err)
			}
		}
		return nil
	})
}

// Exists reports whether the directed pair (s1, s2) is already recorded.
func (s *Store) Exists(ctx context.Context, s1, s2 string) (bool, error) {
	var one int
	err := s.db.DB.QueryRowContext(ctx,
		`SELECT 1 FROM rewrites WHERE s1 = $1 AND s2 = $2 LIMIT 1`, s1, s2).Scan(&one)
	switch {
	case err == sql.ErrNoRows:
		return false, nil
	case err != nil:
		return false, fmt.Errorf("%w: checking rewrite existence: %v", errors.ErrStoreUnavailable, err)
	}
	return true, nil
}

// Templates returns s1 plus every template recorded as a rewrite of it.
func (s *Store) Templates(ctx context.Context, s1 string) ([]string, error) {
	rows, err := s.db.DB.QueryContext(ctx,
		`SELECT s2 FROM rewrites WHERE s1 = $1`, s1)
	if err != nil {
		return nil, fmt.Errorf("%w: querying rewrites: %v", errors.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	seen := map[string]struct{}{s1: {}}
	templates := []string{s1}
	for rows.Next() {
		var s2 string
		if err := rows.Scan(&s2); err != nil {
			return nil, fmt.Errorf("scanning rewrite row: %w", err)
		}
		if _, dup := seen[s2]; dup {
			continue
		}
		seen[s2] = struct{}{}
		templates = append(templates, s2)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rewrites: %w", err)
	}
	return templates, nil
}
