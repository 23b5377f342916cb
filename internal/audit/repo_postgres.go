package audit

import (
	"context"
	"database/sql"
)

// PostgresRepo appends events to the audit_events table. The table should
// carry an INSERT-only policy; no update/delete path exists in code.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) Append(ctx context.Context, e Event) error {
	const q = `
INSERT INTO audit_events (id, type, actor_user_id, actor_role, ip_address, employee_id, message, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
`
	_, err := r.db.ExecContext(ctx, q,
		e.ID,
		e.Type,
		e.ActorUserID,
		e.ActorRole,
		e.IPAddress,
		e.EmployeeID,
		e.Message,
		e.CreatedAt,
	)
	return err
}
