package reporting

import (
	"context"
	"database/sql"
	"time"

	"agent-console/internal/call"
	"agent-console/internal/status"
)

// PostgresRepo reads reporting rows straight from the call_records and
// status_segments tables.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) ListCallRecords(ctx context.Context, agentID string, from, to time.Time) ([]call.Record, error) {
	const q = `
SELECT id, agent_id, phone_number, direction, outcome, received_at, duration_seconds
FROM call_records
WHERE agent_id = $1 AND received_at >= $2 AND received_at < $3
ORDER BY received_at
`
	rows, err := r.db.QueryContext(ctx, q, agentID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []call.Record
	for rows.Next() {
		var rec call.Record
		if err := rows.Scan(
			&rec.ID,
			&rec.AgentID,
			&rec.PhoneNumber,
			&rec.Direction,
			&rec.Outcome,
			&rec.ReceivedAt,
			&rec.DurationSeconds,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) ListClosedSegments(ctx context.Context, agentID string, from, to time.Time) ([]status.Segment, error) {
	const q = `
SELECT id, agent_id, status, started_at, ended_at, duration_seconds
FROM status_segments
WHERE agent_id = $1 AND ended_at IS NOT NULL AND started_at >= $2 AND started_at < $3
ORDER BY started_at
`
	rows, err := r.db.QueryContext(ctx, q, agentID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []status.Segment
	for rows.Next() {
		var seg status.Segment
		if err := rows.Scan(
			&seg.ID,
			&seg.AgentID,
			&seg.Status,
			&seg.StartedAt,
			&seg.EndedAt,
			&seg.DurationSeconds,
		); err != nil {
			return nil, err
		}
		out = append(out, seg)
	}
	return out, rows.Err()
}
