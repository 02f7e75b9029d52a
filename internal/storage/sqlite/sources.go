package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sandevgo/bizbot/internal/core"
)

type SourcesRepo struct {
	db *sql.DB
}

func NewSourcesRepo(db *sql.DB) *SourcesRepo {
	return &SourcesRepo{db: db}
}

// SaveSource records an ingestion origin. Rows are immutable: re-ingesting an
// existing source id keeps the original row.
func (r *SourcesRepo) SaveSource(ctx context.Context, src core.Source) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sources (source_id, origin_type, location, ingested_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(source_id) DO NOTHING`,
		src.ID, string(src.OriginType), src.Location, src.IngestedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save source: %w", err)
	}
	return nil
}

func (r *SourcesRepo) GetSource(ctx context.Context, id string) (*core.Source, error) {
	var src core.Source
	err := r.db.QueryRowContext(ctx,
		`SELECT source_id, origin_type, location, ingested_at FROM sources WHERE source_id = ?`, id,
	).Scan(&src.ID, &src.OriginType, &src.Location, &src.IngestedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("source %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load source: %w", err)
	}
	return &src, nil
}

func (r *SourcesRepo) ListSources(ctx context.Context) ([]core.Source, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT source_id, origin_type, location, ingested_at FROM sources ORDER BY source_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}
	defer rows.Close()

	var sources []core.Source
	for rows.Next() {
		var src core.Source
		if err := rows.Scan(&src.ID, &src.OriginType, &src.Location, &src.IngestedAt); err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}
	return sources, rows.Err()
}

func (r *SourcesRepo) RemoveSource(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sources WHERE source_id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to remove source: %w", err)
	}
	return nil
}
