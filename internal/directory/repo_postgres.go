package directory

import (
	"context"
	"database/sql"
	"errors"

	"agent-console/pkg/utils"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// PostgresRepository persists accounts in the users table, with one
// employee_profiles row per account:
//
//   users: id uuid primary key, username text unique, password_hash text,
//          email text null, role text, created_at timestamptz, updated_at timestamptz
//   employee_profiles: user_id uuid primary key references users(id) on delete cascade
type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func (r *PostgresRepository) FindByUsername(ctx context.Context, username string) (User, bool, error) {
	const q = `
SELECT id, username, password_hash, COALESCE(email, ''), role, created_at, updated_at
FROM users
WHERE username = $1
`
	return r.findOne(ctx, q, username)
}

func (r *PostgresRepository) FindByID(ctx context.Context, id string) (User, bool, error) {
	const q = `
SELECT id, username, password_hash, COALESCE(email, ''), role, created_at, updated_at
FROM users
WHERE id = $1
`
	return r.findOne(ctx, q, id)
}

func (r *PostgresRepository) findOne(ctx context.Context, q string, arg any) (User, bool, error) {
	var u User
	err := r.db.QueryRowContext(ctx, q, arg).Scan(
		&u.ID,
		&u.Username,
		&u.PasswordHash,
		&u.Email,
		&u.Role,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, false, nil
		}
		return User{}, false, err
	}
	return u, true, nil
}

// Create inserts the account and its profile row in one transaction, so a
// failed profile insert never leaves an orphaned account.
func (r *PostgresRepository) Create(ctx context.Context, u User) (User, error) {
	u.ID = uuid.NewString()

	err := utils.WithTx(ctx, r.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		const insertUser = `
INSERT INTO users (id, username, password_hash, email, role, created_at, updated_at)
VALUES ($1,$2,$3,NULLIF($4,''),$5,$6,$7)
`
		if _, err := tx.ExecContext(ctx, insertUser,
			u.ID,
			u.Username,
			u.PasswordHash,
			u.Email,
			u.Role,
			u.CreatedAt,
			u.UpdatedAt,
		); err != nil {
			if isUniqueViolation(err) {
				return ErrUsernameTaken
			}
			return err
		}

		const insertProfile = `
INSERT INTO employee_profiles (user_id)
VALUES ($1)
`
		_, err := tx.ExecContext(ctx, insertProfile, u.ID)
		return err
	})
	if err != nil {
		return User{}, err
	}
	return u, nil
}

func (r *PostgresRepository) List(ctx context.Context, search string) ([]User, error) {
	const q = `
SELECT id, username, password_hash, COALESCE(email, ''), role, created_at, updated_at
FROM users
WHERE ($1 = '' OR username ILIKE '%' || $1 || '%')
ORDER BY created_at DESC
`
	rows, err := r.db.QueryContext(ctx, q, search)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		var u User
		if err := rows.Scan(
			&u.ID,
			&u.Username,
			&u.PasswordHash,
			&u.Email,
			&u.Role,
			&u.CreatedAt,
			&u.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Update(ctx context.Context, u User) (User, error) {
	const q = `
UPDATE users
SET username = $2, password_hash = $3, updated_at = $4
WHERE id = $1
`
	res, err := r.db.ExecContext(ctx, q, u.ID, u.Username, u.PasswordHash, u.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return User{}, ErrUsernameTaken
		}
		return User{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	const q = `
DELETE FROM users
WHERE id = $1
`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
