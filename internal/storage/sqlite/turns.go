package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/sandevgo/bizbot/internal/core"
	"github.com/sandevgo/bizbot/pkg/log"
)

type TurnsRepo struct {
	db *sql.DB
}

func NewTurnsRepo(db *sql.DB) *TurnsRepo {
	return &TurnsRepo{db: db}
}

// AppendTurn records one completed or failed query turn. Failed turns keep a
// NULL response column and carry the taxonomy tag.
func (r *TurnsRepo) AppendTurn(ctx context.Context, turn core.ConversationTurn) error {
	citations, err := json.Marshal(turn.Citations)
	if err != nil {
		return fmt.Errorf("failed to marshal citations: %w", err)
	}
	citStr := string(citations)
	if citStr == "null" {
		citStr = ""
	}

	response := sql.NullString{String: turn.Response, Valid: !turn.Failed}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO turns (session_id, query, response, citations, failed, failure_tag, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		turn.SessionID, turn.Query, response, citStr,
		boolToInt(turn.Failed), nullString(turn.FailureTag), turn.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert turn: %w", err)
	}
	return nil
}

// RecentTurns returns up to limit turns of a session in chronological order.
func (r *TurnsRepo) RecentTurns(ctx context.Context, sessionID string, limit int) ([]core.ConversationTurn, error) {
	// Fetch the LAST 'limit' turns by ordering DESC
	rows, err := r.db.QueryContext(ctx,
		`SELECT session_id, query, response, citations, failed, failure_tag, created_at
		 FROM turns WHERE session_id = ? ORDER BY id DESC LIMIT ?`,
		sessionID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query turns: %w", err)
	}
	defer rows.Close()

	var turns []core.ConversationTurn
	for rows.Next() {
		var turn core.ConversationTurn
		var response, citations, failureTag sql.NullString
		var failed int

		if err := rows.Scan(&turn.SessionID, &turn.Query, &response, &citations,
			&failed, &failureTag, &turn.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan turn: %w", err)
		}

		turn.Response = response.String
		turn.Failed = failed != 0
		turn.FailureTag = failureTag.String

		if citations.Valid && citations.String != "" {
			if err := json.Unmarshal([]byte(citations.String), &turn.Citations); err != nil {
				return nil, fmt.Errorf("failed to unmarshal citations: %w", err)
			}
		}

		turns = append(turns, turn)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Reverse back to chronological order (oldest -> newest).
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}

	log.FromCtx(ctx).Debug().Int("count", len(turns)).Msg("loaded history turns")
	return turns, nil
}

// PruneTurns drops everything but the newest keep turns of a session.
func (r *TurnsRepo) PruneTurns(ctx context.Context, sessionID string, keep int) (int, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM turns WHERE session_id = ? AND id NOT IN (
			SELECT id FROM turns WHERE session_id = ? ORDER BY id DESC LIMIT ?
		)`,
		sessionID, sessionID, keep,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to prune turns: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}
