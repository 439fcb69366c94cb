package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/aslboq/catering-backend/internal/model"
)

// OtpRepo persists one-time codes. Expired rows are never swept; every
// read filters on expires_at itself, and "newest live row wins" is made
// explicit with an ordered query rather than relying on storage order.
type OtpRepo struct{ DB *sql.DB }

func NewOtpRepo(db *sql.DB) *OtpRepo { return &OtpRepo{DB: db} }

// CountRecent counts codes issued for (subject, recipient) since the given
// time. Used for issuance rate limiting; consumed and expired rows still
// count because they represent issuance work and sent mail.
func (r *OtpRepo) CountRecent(ctx context.Context, subject, recipientEmail string, since time.Time) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM otp_codes WHERE subject=? AND recipient_email=? AND created_at >= ?",
		subject, recipientEmail, since).Scan(&n)
	return n, err
}

// Create inserts a new code row and populates the generated ID and
// creation time on the record.
func (r *OtpRepo) Create(ctx context.Context, rec *model.OneTimeCode) error {
	meta := rec.Meta
	if meta == nil {
		meta = map[string]string{}
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO otp_codes (subject, recipient_email, company_id, code_hash, expires_at, meta) VALUES (?,?,?,?,?,?)",
		rec.Subject, rec.RecipientEmail, rec.CompanyID, rec.CodeHash, rec.ExpiresAt, metaJSON)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rec.ID = uint64(id)
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	return nil
}

// LatestActive returns the newest unconsumed, unexpired code for the
// (subject, recipient) pair, or sql.ErrNoRows when none is live.
func (r *OtpRepo) LatestActive(ctx context.Context, subject, recipientEmail string, now time.Time) (*model.OneTimeCode, error) {
	var (
		rec      model.OneTimeCode
		metaJSON []byte
	)
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, subject, recipient_email, company_id, code_hash, expires_at, consumed_at, meta, created_at
		 FROM otp_codes
		 WHERE subject=? AND recipient_email=? AND expires_at > ? AND consumed_at IS NULL
		 ORDER BY created_at DESC, id DESC
		 LIMIT 1`,
		subject, recipientEmail, now).Scan(
		&rec.ID, &rec.Subject, &rec.RecipientEmail, &rec.CompanyID, &rec.CodeHash,
		&rec.ExpiresAt, &rec.ConsumedAt, &metaJSON, &rec.CreatedAt)
	if err != nil {
		return nil, err
	}
	if len(metaJSON) > 0 {
		if err := json.Unmarshal(metaJSON, &rec.Meta); err != nil {
			return nil, err
		}
	}
	if rec.Meta == nil {
		rec.Meta = map[string]string{}
	}
	return &rec, nil
}

// Consume marks a code consumed. The condition on consumed_at makes the
// read-check-mark sequence atomic: of two concurrent verifies only one
// sees rows affected == 1.
func (r *OtpRepo) Consume(ctx context.Context, id uint64, at time.Time) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE otp_codes SET consumed_at=? WHERE id=? AND consumed_at IS NULL", at, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
