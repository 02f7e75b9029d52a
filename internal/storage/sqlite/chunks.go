package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/sandevgo/bizbot/internal/core"
	"github.com/sandevgo/bizbot/internal/storage/memindex"
)

// KNN over-fetch factor so post-filtering and deterministic tie-breaks still
// leave topK rows.
const overFetch = 4

// ChunkStore is the durable vector index: chunk metadata in the chunks table,
// vectors in the chunks_vec vec0 virtual table joined by rowid. Every write is
// one transaction, which gives single-chunk crash consistency.
type ChunkStore struct {
	db *sql.DB
}

func NewChunkStore(db *sql.DB) *ChunkStore {
	return &ChunkStore{db: db}
}

func (s *ChunkStore) Upsert(ctx context.Context, chunk *core.Chunk) error {
	vecBlob, err := serializeVector(chunk.Embedding)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Overwrite semantics: drop any previous row for this chunk id along with
	// its vector, then insert fresh.
	var oldRowID int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM chunks WHERE chunk_id = ?`, chunk.ID).Scan(&oldRowID)
	switch {
	case err == sql.ErrNoRows:
	case err != nil:
		return fmt.Errorf("failed to look up chunk: %w", err)
	default:
		if _, err := tx.ExecContext(ctx, `DELETE FROM chunks_vec WHERE rowid = ?`, oldRowID); err != nil {
			return fmt.Errorf("failed to delete old vector: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM chunks WHERE id = ?`, oldRowID); err != nil {
			return fmt.Errorf("failed to delete old chunk: %w", err)
		}
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO chunks (chunk_id, source_id, origin_type, position, text, token_count, sender, ts, partial)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		chunk.ID, chunk.SourceID, string(chunk.Metadata.OriginType), chunk.Metadata.Position,
		chunk.Text, chunk.TokenCount, nullString(chunk.Metadata.Sender), chunk.Metadata.Timestamp,
		boolToInt(chunk.Metadata.Partial),
	)
	if err != nil {
		return fmt.Errorf("failed to insert chunk metadata: %w", err)
	}

	rowID, err := res.LastInsertId()
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO chunks_vec (rowid, embedding) VALUES (?, ?)`, rowID, vecBlob,
	); err != nil {
		return fmt.Errorf("failed to insert chunk vector: %w", err)
	}

	return tx.Commit()
}

func (s *ChunkStore) Has(ctx context.Context, chunkID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM chunks WHERE chunk_id = ?`, chunkID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *ChunkStore) Search(ctx context.Context, vector []float32, topK int, filter *core.Filter) ([]core.RetrievalCandidate, error) {
	if topK <= 0 {
		return nil, nil
	}

	vecBlob, err := serializeVector(vector)
	if err != nil {
		return nil, err
	}

	// vec0 KNN queries cannot carry arbitrary WHERE clauses, so over-fetch and
	// filter in Go. Similarity = 1 - cosine distance.
	query := `
		SELECT
			c.chunk_id, c.source_id, c.origin_type, c.position, c.text,
			c.token_count, c.sender, c.ts, c.partial, v.embedding, v.distance
		FROM chunks_vec v
		JOIN chunks c ON c.id = v.rowid
		WHERE v.embedding MATCH ? AND k = ?
		ORDER BY v.distance`

	rows, err := s.db.QueryContext(ctx, query, vecBlob, topK*overFetch)
	if err != nil {
		return nil, fmt.Errorf("knn search failed: %w", err)
	}
	defer rows.Close()

	var candidates []core.RetrievalCandidate
	for rows.Next() {
		chunk := &core.Chunk{}
		var sender sql.NullString
		var ts sql.NullTime
		var partial int
		var embBlob []byte
		var distance float64

		if err := rows.Scan(
			&chunk.ID, &chunk.SourceID, &chunk.Metadata.OriginType, &chunk.Metadata.Position,
			&chunk.Text, &chunk.TokenCount, &sender, &ts, &partial, &embBlob, &distance,
		); err != nil {
			return nil, err
		}
		if chunk.Embedding, err = deserializeVector(embBlob); err != nil {
			return nil, fmt.Errorf("chunk %s: %w", chunk.ID, err)
		}
		chunk.Metadata.Sender = sender.String
		if ts.Valid {
			t := ts.Time
			chunk.Metadata.Timestamp = &t
		}
		chunk.Metadata.Partial = partial != 0

		if !filter.Match(chunk) {
			continue
		}

		candidates = append(candidates, core.RetrievalCandidate{
			ChunkID: chunk.ID,
			Score:   1 - distance,
			Chunk:   chunk,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	memindex.SortCandidates(candidates)
	if len(candidates) > topK {
		candidates = candidates[:topK]
	}
	return candidates, nil
}

func (s *ChunkStore) ChunkIDs(ctx context.Context, sourceID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT chunk_id FROM chunks WHERE source_id = ? ORDER BY chunk_id`, sourceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *ChunkStore) DeleteChunks(ctx context.Context, chunkIDs []string) (int, error) {
	if len(chunkIDs) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	placeholders := strings.TrimRight(strings.Repeat("?,", len(chunkIDs)), ",")
	args := make([]any, len(chunkIDs))
	for i, id := range chunkIDs {
		args[i] = id
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM chunks_vec WHERE rowid IN (SELECT id FROM chunks WHERE chunk_id IN (`+placeholders+`))`,
		args...,
	); err != nil {
		return 0, fmt.Errorf("failed to delete vectors: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		`DELETE FROM chunks WHERE chunk_id IN (`+placeholders+`)`, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete chunks: %w", err)
	}

	n, _ := res.RowsAffected()
	return int(n), tx.Commit()
}

func (s *ChunkStore) DeleteSource(ctx context.Context, sourceID string) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM chunks_vec WHERE rowid IN (SELECT id FROM chunks WHERE source_id = ?)`,
		sourceID,
	); err != nil {
		return 0, fmt.Errorf("failed to delete vectors: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM chunks WHERE source_id = ?`, sourceID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete chunks: %w", err)
	}

	n, _ := res.RowsAffected()
	return int(n), tx.Commit()
}

func (s *ChunkStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks`).Scan(&n)
	return n, err
}

func (s *ChunkStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
