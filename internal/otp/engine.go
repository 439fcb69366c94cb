// Package otp implements issuance and verification of short-lived numeric
// one-time codes. Codes are bcrypt-hashed at rest, expire passively (no
// sweep; expiry is checked at read time) and are consumed at most once.
// Issuance is rate limited per (subject, recipient) by counting rows in a
// trailing window, so the limit holds across process restarts.
package otp

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/aslboq/catering-backend/internal/model"
	"github.com/aslboq/catering-backend/internal/utils"
)

// ErrRateLimited is returned by Issue when the recipient has already been
// sent the maximum number of codes inside the rate window.
var ErrRateLimited = errors.New("too many codes requested")

// Verification failure reasons, surfaced to callers so handlers can log
// them. Clients only ever see a generic invalid-code message.
const (
	ReasonNotFound     = "not_found"
	ReasonMismatch     = "mismatch"
	ReasonMetaMismatch = "meta_mismatch"
)

// CodeStore is the persistence the engine needs. *repository.OtpRepo
// satisfies it; tests plug in an in-memory fake.
type CodeStore interface {
	CountRecent(ctx context.Context, subject, recipientEmail string, since time.Time) (int, error)
	Create(ctx context.Context, rec *model.OneTimeCode) error
	LatestActive(ctx context.Context, subject, recipientEmail string, now time.Time) (*model.OneTimeCode, error)
	Consume(ctx context.Context, id uint64, at time.Time) (bool, error)
}

// Result reports the outcome of a verification attempt.
type Result struct {
	OK     bool
	Reason string // one of the Reason* constants when !OK
	Record *model.OneTimeCode
}

// Engine issues and verifies one-time codes against a CodeStore.
type Engine struct {
	store      CodeStore
	ttl        time.Duration
	rateWindow time.Duration
	rateMax    int
	bcryptCost int
	now        func() time.Time
}

// NewEngine wires an engine. ttl is how long a code stays verifiable,
// rateWindow/rateMax bound issuance per (subject, recipient).
func NewEngine(store CodeStore, ttl, rateWindow time.Duration, rateMax, bcryptCost int) *Engine {
	return &Engine{
		store:      store,
		ttl:        ttl,
		rateWindow: rateWindow,
		rateMax:    rateMax,
		bcryptCost: bcryptCost,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Issue generates a fresh 6-digit code for (subject, recipient), persists
// its hash and returns the plaintext for delivery. The plaintext is never
// stored. Earlier unconsumed codes stay live; verification picks the newest
// one, so issuing again effectively supersedes them.
func (e *Engine) Issue(ctx context.Context, subject, recipientEmail string, companyID *uint64, meta map[string]string) (string, *model.OneTimeCode, error) {
	now := e.now()

	n, err := e.store.CountRecent(ctx, subject, recipientEmail, now.Add(-e.rateWindow))
	if err != nil {
		return "", nil, err
	}
	if n >= e.rateMax {
		return "", nil, ErrRateLimited
	}

	code, err := generateCode()
	if err != nil {
		return "", nil, err
	}
	hash, err := utils.HashPassword(code, e.bcryptCost)
	if err != nil {
		return "", nil, err
	}

	rec := &model.OneTimeCode{
		Subject:        subject,
		RecipientEmail: recipientEmail,
		CompanyID:      companyID,
		CodeHash:       hash,
		ExpiresAt:      now.Add(e.ttl),
		Meta:           meta,
		CreatedAt:      now,
	}
	if err := e.store.Create(ctx, rec); err != nil {
		return "", nil, err
	}
	return code, rec, nil
}

// Verify checks a submitted code against the newest live record for
// (subject, recipient). A wrong code does not consume anything, so the
// recipient can retype. expectMeta entries must all match the stored meta
// exactly; a binding mismatch also leaves the code unconsumed. Only a full
// match consumes, and consumption is atomic: when two verifications race on
// the same record, exactly one succeeds and the other reports not_found.
func (e *Engine) Verify(ctx context.Context, subject, recipientEmail, code string, expectMeta map[string]string) (Result, error) {
	now := e.now()

	rec, err := e.store.LatestActive(ctx, subject, recipientEmail, now)
	if errors.Is(err, sql.ErrNoRows) {
		return Result{Reason: ReasonNotFound}, nil
	}
	if err != nil {
		return Result{}, err
	}

	if !utils.VerifyPassword(rec.CodeHash, code) {
		return Result{Reason: ReasonMismatch, Record: rec}, nil
	}
	for k, want := range expectMeta {
		if rec.Meta[k] != want {
			return Result{Reason: ReasonMetaMismatch, Record: rec}, nil
		}
	}

	ok, err := e.store.Consume(ctx, rec.ID, now)
	if err != nil {
		return Result{}, err
	}
	if !ok {
		// Lost the race to a concurrent verify.
		return Result{Reason: ReasonNotFound}, nil
	}
	consumed := now
	rec.ConsumedAt = &consumed
	return Result{OK: true, Record: rec}, nil
}

// generateCode draws a uniform 6-digit code from crypto/rand. The range is
// 100000-999999 so codes never carry a leading zero.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
