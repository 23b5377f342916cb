package call

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

// PostgresLog persists call records in the call_records table:
//
//   id uuid primary key, agent_id uuid, phone_number text,
//   direction text, outcome text, received_at timestamptz,
//   duration_seconds int default 0
type PostgresLog struct {
	db *sql.DB
}

func NewPostgresLog(db *sql.DB) *PostgresLog {
	return &PostgresLog{db: db}
}

func (r *PostgresLog) CreateRecord(ctx context.Context, rec Record) (Record, error) {
	const q = `
INSERT INTO call_records (id, agent_id, phone_number, direction, outcome, received_at, duration_seconds)
VALUES ($1,$2,$3,$4,$5,$6,$7)
RETURNING id, agent_id, phone_number, direction, outcome, received_at, duration_seconds
`
	var out Record
	err := r.db.QueryRowContext(ctx, q,
		uuid.NewString(),
		rec.AgentID,
		rec.PhoneNumber,
		rec.Direction,
		rec.Outcome,
		rec.ReceivedAt,
		rec.DurationSeconds,
	).Scan(
		&out.ID,
		&out.AgentID,
		&out.PhoneNumber,
		&out.Direction,
		&out.Outcome,
		&out.ReceivedAt,
		&out.DurationSeconds,
	)
	if err != nil {
		return Record{}, err
	}
	return out, nil
}

func (r *PostgresLog) UpdateRecordDuration(ctx context.Context, id string, durationSeconds int) error {
	const q = `
UPDATE call_records
SET duration_seconds = $2
WHERE id = $1
`
	_, err := r.db.ExecContext(ctx, q, id, durationSeconds)
	return err
}

func (r *PostgresLog) ListRecent(ctx context.Context, agentID string, limit int) ([]Record, error) {
	const q = `
SELECT id, agent_id, phone_number, direction, outcome, received_at, duration_seconds
FROM call_records
WHERE agent_id = $1
ORDER BY received_at DESC
LIMIT $2
`
	rows, err := r.db.QueryContext(ctx, q, agentID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
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
