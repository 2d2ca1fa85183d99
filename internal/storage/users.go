package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Queries is a thin wrapper around a DBTX (pool or transaction) exposing
// the SQL operations the security packages need. Nothing outside
// internal/storage constructs SQL strings.
type Queries struct {
	db DBTX
}

// New wraps db (a *pgxpool.Pool or a pgx.Tx) in a Queries.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// GetUserByID returns the user with id, or nil if none exists.
func (q *Queries) GetUserByID(ctx context.Context, id int32) (*User, error) {
	row := q.db.QueryRow(ctx,
		`select id, username, email, email_verified, level, password_hash
		 from users where id = $1`,
		id,
	)

	return scanUser(row)
}

// GetUserByUsername returns the user with the given username, or nil if
// none exists. Username matching is case-sensitive per the data model.
func (q *Queries) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	row := q.db.QueryRow(ctx,
		`select id, username, email, email_verified, level, password_hash
		 from users where username = $1`,
		username,
	)

	return scanUser(row)
}

func scanUser(row pgx.Row) (*User, error) {
	var u User
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.EmailVerified, &u.Level, &u.PasswordHash); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("storage: get user: %w", err)
	}

	return &u, nil
}

// UpdateUserPassword overwrites a user's stored password hash.
func (q *Queries) UpdateUserPassword(ctx context.Context, userID int32, passwordHash string) error {
	_, err := q.db.Exec(ctx, `update users set password_hash = $2 where id = $1`, userID, passwordHash)
	if err != nil {
		return fmt.Errorf("storage: update password: %w", err)
	}
	return nil
}
