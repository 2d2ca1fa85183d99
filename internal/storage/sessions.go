package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// InsertSession persists a newly issued session.
func (q *Queries) InsertSession(ctx context.Context, s UserSession) error {
	_, err := q.db.Exec(ctx,
		`insert into user_sessions (token, owner, issued_on, expires, dropped, verified, use_csrf)
		 values ($1, $2, $3, $4, $5, $6, $7)`,
		s.Token, s.Owner, s.IssuedOn, s.Expires, s.Dropped, s.Verified, s.UseCSRF,
	)
	if err != nil {
		return fmt.Errorf("storage: insert session: %w", err)
	}
	return nil
}

// GetSessionByToken returns the session for token, or nil if none
// exists. Expiry/drop/verification checks are the caller's
// responsibility — this is a raw lookup.
func (q *Queries) GetSessionByToken(ctx context.Context, token string) (*UserSession, error) {
	row := q.db.QueryRow(ctx,
		`select token, owner, issued_on, expires, dropped, verified, use_csrf
		 from user_sessions where token = $1`,
		token,
	)

	var s UserSession
	if err := row.Scan(&s.Token, &s.Owner, &s.IssuedOn, &s.Expires, &s.Dropped, &s.Verified, &s.UseCSRF); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("storage: get session: %w", err)
	}

	return &s, nil
}

// SetSessionVerified flips a session's verified flag to true. Called
// only within the same transaction as the TOTP/backup-code check that
// authorized it.
func (q *Queries) SetSessionVerified(ctx context.Context, token string) error {
	_, err := q.db.Exec(ctx, `update user_sessions set verified = true where token = $1`, token)
	if err != nil {
		return fmt.Errorf("storage: verify session: %w", err)
	}
	return nil
}

// DeleteSession removes a session row. This is the sole revocation
// mechanism; it is idempotent (deleting an already-gone token is not an
// error).
func (q *Queries) DeleteSession(ctx context.Context, token string) error {
	_, err := q.db.Exec(ctx, `delete from user_sessions where token = $1`, token)
	if err != nil {
		return fmt.Errorf("storage: delete session: %w", err)
	}
	return nil
}
