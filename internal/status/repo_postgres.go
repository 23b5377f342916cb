package status

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// PostgresStore persists status segments in the status_segments table:
//
//   id uuid primary key, agent_id uuid, status text,
//   started_at timestamptz, ended_at timestamptz null, duration_seconds int
//
// A partial unique index on (agent_id) WHERE ended_at IS NULL enforces the
// one-open-segment invariant at the storage layer.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (r *PostgresStore) FindOpenSegment(ctx context.Context, agentID string) (Segment, bool, error) {
	const q = `
SELECT id, agent_id, status, started_at, ended_at, duration_seconds
FROM status_segments
WHERE agent_id = $1 AND ended_at IS NULL
LIMIT 1
`
	var s Segment
	err := r.db.QueryRowContext(ctx, q, agentID).Scan(
		&s.ID,
		&s.AgentID,
		&s.Status,
		&s.StartedAt,
		&s.EndedAt,
		&s.DurationSeconds,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Segment{}, false, nil
		}
		return Segment{}, false, err
	}
	return s, true, nil
}

func (r *PostgresStore) CreateSegment(ctx context.Context, agentID string, status Status, startedAt time.Time) (Segment, error) {
	const q = `
INSERT INTO status_segments (id, agent_id, status, started_at, duration_seconds)
VALUES ($1,$2,$3,$4,0)
RETURNING id, agent_id, status, started_at, ended_at, duration_seconds
`
	var s Segment
	err := r.db.QueryRowContext(ctx, q, uuid.NewString(), agentID, status, startedAt).Scan(
		&s.ID,
		&s.AgentID,
		&s.Status,
		&s.StartedAt,
		&s.EndedAt,
		&s.DurationSeconds,
	)
	if err != nil {
		return Segment{}, err
	}
	return s, nil
}

func (r *PostgresStore) CloseSegment(ctx context.Context, id string, endedAt time.Time, durationSeconds int) error {
	const q = `
UPDATE status_segments
SET ended_at = $2, duration_seconds = $3
WHERE id = $1 AND ended_at IS NULL
`
	_, err := r.db.ExecContext(ctx, q, id, endedAt, durationSeconds)
	return err
}
