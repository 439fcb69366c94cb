package repository

import (
	"context"
	"database/sql"
	"time"
)

// ResetTokenRepo persists password reset tokens. Like refresh tokens only
// the SHA-256 hash of the raw value is stored; unlike them a reset token
// is single-use and redeemed with a conditional update so two concurrent
// redeems cannot both succeed.
type ResetTokenRepo struct{ DB *sql.DB }

func NewResetTokenRepo(db *sql.DB) *ResetTokenRepo { return &ResetTokenRepo{DB: db} }

// Store inserts a reset token hash row.
func (r *ResetTokenRepo) Store(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO password_reset_tokens (user_id, token_hash, expires_at) VALUES (?,?,?)",
		userID, tokenHash, exp)
	return err
}

// Redeem marks an unused, unexpired token as used and returns the user it
// belongs to. Returns sql.ErrNoRows when no live token matches or another
// request redeemed it first.
func (r *ResetTokenRepo) Redeem(ctx context.Context, tokenHash string) (uint64, error) {
	var (
		id     uint64
		userID uint64
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, user_id FROM password_reset_tokens WHERE token_hash=? AND used_at IS NULL AND expires_at > UTC_TIMESTAMP() LIMIT 1",
		tokenHash).Scan(&id, &userID)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"UPDATE password_reset_tokens SET used_at=UTC_TIMESTAMP() WHERE id=? AND used_at IS NULL", id)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, sql.ErrNoRows
	}
	return userID, nil
}
