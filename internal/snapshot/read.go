package snapshot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Get returns the latest snapshot for a query hash, or ErrNotFound.
func (s *Store) Get(ctx context.Context, queryHash string) (*Snapshot, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, revision, payload, created_at
		FROM snapshots WHERE query_hash = ?
		ORDER BY revision DESC LIMIT 1
	`, queryHash)

	var id, created string
	var revision int64
	var payload []byte
	if err := row.Scan(&id, &revision, &payload, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("get snapshot for %s: %w", queryHash, ErrNotFound)
		}
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	return rowToSnapshot(id, queryHash, revision, payload, created)
}

// History returns up to limit revisions for a query hash, newest
// first. A query with no snapshots yields an empty slice, not an
// error.
func (s *Store) History(ctx context.Context, queryHash string, limit int) ([]*Snapshot, error) {
	if limit < 1 {
		return nil, fmt.Errorf("history: limit must be at least 1, got %d", limit)
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, revision, payload, created_at
		FROM snapshots WHERE query_hash = ?
		ORDER BY revision DESC LIMIT ?
	`, queryHash, limit)
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	defer rows.Close()

	var history []*Snapshot
	for rows.Next() {
		var id, created string
		var revision int64
		var payload []byte
		if err := rows.Scan(&id, &revision, &payload, &created); err != nil {
			return nil, fmt.Errorf("history: scan: %w", err)
		}
		snap, err := rowToSnapshot(id, queryHash, revision, payload, created)
		if err != nil {
			return nil, fmt.Errorf("history: %w", err)
		}
		history = append(history, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	return history, nil
}

// QueryEntry pairs a cached query's hash with its canonical JSON.
type QueryEntry struct {
	Hash      string
	Canonical string
	Revisions int64
}

// Queries lists every cached query with its revision count, ordered by
// hash for stable output.
func (s *Store) Queries(ctx context.Context) ([]QueryEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT q.hash, q.canonical, COUNT(s.id)
		FROM queries q
		LEFT JOIN snapshots s ON s.query_hash = q.hash
		GROUP BY q.hash, q.canonical
		ORDER BY q.hash
	`)
	if err != nil {
		return nil, fmt.Errorf("list queries: %w", err)
	}
	defer rows.Close()

	var entries []QueryEntry
	for rows.Next() {
		var e QueryEntry
		if err := rows.Scan(&e.Hash, &e.Canonical, &e.Revisions); err != nil {
			return nil, fmt.Errorf("list queries: scan: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list queries: %w", err)
	}
	return entries, nil
}

func rowToSnapshot(id, queryHash string, revision int64, payload []byte, created string) (*Snapshot, error) {
	parsedID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("snapshot id %q: %w", id, err)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return nil, fmt.Errorf("snapshot timestamp %q: %w", created, err)
	}
	return &Snapshot{
		ID:        parsedID,
		QueryHash: queryHash,
		Revision:  revision,
		Payload:   payload,
		CreatedAt: createdAt,
	}, nil
}
