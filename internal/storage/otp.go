package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// GetAuthOtpByUserID returns the at-most-one TOTP enrollment for a user.
func (q *Queries) GetAuthOtpByUserID(ctx context.Context, userID int32) (*AuthOtp, error) {
	row := q.db.QueryRow(ctx,
		`select id, users_id, algo, secret, digits, step, verified
		 from auth_otp where users_id = $1`,
		userID,
	)

	var o AuthOtp
	if err := row.Scan(&o.ID, &o.UsersID, &o.Algo, &o.Secret, &o.Digits, &o.Step, &o.Verified); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("storage: get auth_otp: %w", err)
	}

	return &o, nil
}

// InsertAuthOtp creates a new (unverified) TOTP enrollment and returns
// its id.
func (q *Queries) InsertAuthOtp(ctx context.Context, o AuthOtp) (int32, error) {
	var id int32
	err := q.db.QueryRow(ctx,
		`insert into auth_otp (users_id, algo, secret, digits, step, verified)
		 values ($1, $2, $3, $4, $5, false)
		 returning id`,
		o.UsersID, o.Algo, o.Secret, o.Digits, o.Step,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("storage: insert auth_otp: %w", err)
	}

	return id, nil
}

// ActivateAuthOtp flips an enrollment's verified flag to true.
func (q *Queries) ActivateAuthOtp(ctx context.Context, id int32) error {
	_, err := q.db.Exec(ctx, `update auth_otp set verified = true where id = $1`, id)
	if err != nil {
		return fmt.Errorf("storage: activate auth_otp: %w", err)
	}
	return nil
}

// DeleteAuthOtp removes a user's TOTP enrollment and all of its backup
// codes.
func (q *Queries) DeleteAuthOtp(ctx context.Context, userID int32) error {
	_, err := q.db.Exec(ctx, `delete from auth_otp where users_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("storage: delete auth_otp: %w", err)
	}
	return nil
}

// InsertBackupCodes inserts exactly len(hashes) backup codes for
// authOtpID. Called once, immediately after activation, within the
// same transaction as ActivateAuthOtp.
func (q *Queries) InsertBackupCodes(ctx context.Context, authOtpID int32, hashes []string) error {
	for _, h := range hashes {
		_, err := q.db.Exec(ctx,
			`insert into auth_otp_codes (auth_otp_id, hash) values ($1, $2)`,
			authOtpID, h,
		)
		if err != nil {
			return fmt.Errorf("storage: insert backup code: %w", err)
		}
	}

	return nil
}

// GetUnusedBackupCode looks up an unused backup code by hash, scoped to
// its parent enrollment. Returns nil if the hash does not exist or has
// already been consumed. The row is locked until the caller's
// transaction ends, so a concurrent lookup of the same code waits and
// then sees it as used.
func (q *Queries) GetUnusedBackupCode(ctx context.Context, authOtpID int32, hash string) (*AuthOtpCode, error) {
	row := q.db.QueryRow(ctx,
		`select id, auth_otp_id, hash, used
		 from auth_otp_codes
		 where auth_otp_id = $1 and hash = $2 and used = false
		 for update`,
		authOtpID, hash,
	)

	var c AuthOtpCode
	if err := row.Scan(&c.ID, &c.AuthOtpID, &c.Hash, &c.Used); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("storage: get backup code: %w", err)
	}

	return &c, nil
}

// MarkBackupCodeUsed flips a backup code's used flag. Called in the
// same transaction as the session-verification update it authorizes.
func (q *Queries) MarkBackupCodeUsed(ctx context.Context, authOtpID int32, hash string) error {
	_, err := q.db.Exec(ctx,
		`update auth_otp_codes set used = true where auth_otp_id = $1 and hash = $2`,
		authOtpID, hash,
	)
	if err != nil {
		return fmt.Errorf("storage: mark backup code used: %w", err)
	}
	return nil
}
