package snapshot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/roach88/facet/query"
)

// Snapshot is one stored revision of a query's result.
type Snapshot struct {
	ID        uuid.UUID
	QueryHash string
	Revision  int64
	Payload   []byte
	CreatedAt time.Time
}

// Decode deserializes the msgpack payload into dst.
func (s *Snapshot) Decode(dst any) error {
	v, err := decodePayload(s.Payload)
	if err != nil {
		return err
	}
	switch d := dst.(type) {
	case *any:
		*d = v
		return nil
	default:
		return fmt.Errorf("decode snapshot: unsupported destination %T (use *any)", dst)
	}
}

// Put stores a result for a normalized query and returns the snapshot
// row it now corresponds to.
//
// The first Put for a query records its canonical JSON and hash. Each
// later Put appends a revision, unless the encoded payload is
// byte-identical to the latest revision's, in which case the existing
// snapshot is returned and nothing is written. Re-putting an older
// payload that is no longer the latest does create a new revision; the
// history is a log, not a set.
func (s *Store) Put(ctx context.Context, q *query.Query, result any) (*Snapshot, error) {
	hash, err := query.Hash(q)
	if err != nil {
		return nil, fmt.Errorf("put snapshot: %w", err)
	}
	canonical, err := query.EncodeJSON(q)
	if err != nil {
		return nil, fmt.Errorf("put snapshot: %w", err)
	}
	payload, err := encodePayload(result)
	if err != nil {
		return nil, fmt.Errorf("put snapshot: %w", err)
	}
	pHash := payloadHash(payload)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("put snapshot: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	_, err = tx.ExecContext(ctx, `
		INSERT INTO queries (hash, canonical) VALUES (?, ?)
		ON CONFLICT(hash) DO NOTHING
	`, hash, string(canonical))
	if err != nil {
		return nil, fmt.Errorf("put snapshot: record query: %w", err)
	}

	// Idempotency check against the latest revision only.
	var latest Snapshot
	var latestPayloadHash, latestID, latestCreated string
	err = tx.QueryRowContext(ctx, `
		SELECT id, revision, payload, payload_hash, created_at
		FROM snapshots WHERE query_hash = ?
		ORDER BY revision DESC LIMIT 1
	`, hash).Scan(&latestID, &latest.Revision, &latest.Payload, &latestPayloadHash, &latestCreated)
	switch {
	case err == nil:
		if latestPayloadHash == pHash {
			if commitErr := tx.Commit(); commitErr != nil {
				return nil, fmt.Errorf("put snapshot: commit: %w", commitErr)
			}
			snap, convErr := rowToSnapshot(latestID, hash, latest.Revision, latest.Payload, latestCreated)
			if convErr != nil {
				return nil, fmt.Errorf("put snapshot: %w", convErr)
			}
			s.logger.Debug("snapshot unchanged",
				zap.String("query_hash", hash),
				zap.Int64("revision", snap.Revision))
			return snap, nil
		}
	case errors.Is(err, sql.ErrNoRows):
		latest.Revision = 0
	default:
		return nil, fmt.Errorf("put snapshot: read latest: %w", err)
	}

	snap := &Snapshot{
		ID:        s.newID(),
		QueryHash: hash,
		Revision:  latest.Revision + 1,
		Payload:   payload,
		CreatedAt: s.clock.Now().UTC(),
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO snapshots (id, query_hash, revision, payload, payload_hash, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, snap.ID.String(), snap.QueryHash, snap.Revision, snap.Payload, pHash,
		snap.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return nil, fmt.Errorf("put snapshot: insert revision: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("put snapshot: commit: %w", err)
	}

	s.logger.Debug("snapshot stored",
		zap.String("query_hash", hash),
		zap.Int64("revision", snap.Revision),
		zap.Int("payload_bytes", len(snap.Payload)))
	return snap, nil
}

// Prune keeps the newest keep revisions per query and deletes the
// rest. Returns the number of deleted rows.
func (s *Store) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 1 {
		return 0, fmt.Errorf("prune: keep must be at least 1, got %d", keep)
	}
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM snapshots WHERE id IN (
			SELECT id FROM (
				SELECT id, ROW_NUMBER() OVER (
					PARTITION BY query_hash ORDER BY revision DESC
				) AS rank
				FROM snapshots
			) WHERE rank > ?
		)
	`, keep)
	if err != nil {
		return 0, fmt.Errorf("prune: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune: %w", err)
	}
	if deleted > 0 {
		s.logger.Debug("pruned snapshots", zap.Int64("deleted", deleted), zap.Int("keep", keep))
	}
	return deleted, nil
}
