package otp

import (
	"context"
	"database/sql"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aslboq/catering-backend/internal/model"
	"github.com/aslboq/catering-backend/internal/utils"
)

// fakeStore keeps code rows in memory and mimics the SQL repo's contract,
// including sql.ErrNoRows and the conditional consume.
type fakeStore struct {
	rows   []*model.OneTimeCode
	nextID uint64
}

func (s *fakeStore) CountRecent(_ context.Context, subject, email string, since time.Time) (int, error) {
	n := 0
	for _, r := range s.rows {
		if r.Subject == subject && r.RecipientEmail == email && !r.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (s *fakeStore) Create(_ context.Context, rec *model.OneTimeCode) error {
	s.nextID++
	rec.ID = s.nextID
	cp := *rec
	s.rows = append(s.rows, &cp)
	return nil
}

func (s *fakeStore) LatestActive(_ context.Context, subject, email string, now time.Time) (*model.OneTimeCode, error) {
	live := make([]*model.OneTimeCode, 0)
	for _, r := range s.rows {
		if r.Subject == subject && r.RecipientEmail == email &&
			r.ExpiresAt.After(now) && r.ConsumedAt == nil {
			live = append(live, r)
		}
	}
	if len(live) == 0 {
		return nil, sql.ErrNoRows
	}
	sort.Slice(live, func(i, j int) bool {
		if !live[i].CreatedAt.Equal(live[j].CreatedAt) {
			return live[i].CreatedAt.After(live[j].CreatedAt)
		}
		return live[i].ID > live[j].ID
	})
	cp := *live[0]
	return &cp, nil
}

func (s *fakeStore) Consume(_ context.Context, id uint64, at time.Time) (bool, error) {
	for _, r := range s.rows {
		if r.ID == id && r.ConsumedAt == nil {
			t := at
			r.ConsumedAt = &t
			return true, nil
		}
	}
	return false, nil
}

func newTestEngine(store *fakeStore) (*Engine, *time.Time) {
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	e := NewEngine(store, 10*time.Minute, 10*time.Minute, 5, 4)
	e.now = func() time.Time { return clock }
	return e, &clock
}

func TestIssueProducesVerifiableCode(t *testing.T) {
	store := &fakeStore{}
	e, _ := newTestEngine(store)

	code, rec, err := e.Issue(context.Background(), model.SubjectLogin2FA, "a@b.test", nil, nil)
	require.NoError(t, err)
	require.Len(t, code, 6)
	for _, ch := range code {
		assert.True(t, ch >= '0' && ch <= '9')
	}
	assert.True(t, utils.VerifyPassword(rec.CodeHash, code))
	assert.NotEqual(t, code, rec.CodeHash)

	res, err := e.Verify(context.Background(), model.SubjectLogin2FA, "a@b.test", code, nil)
	require.NoError(t, err)
	assert.True(t, res.OK)
	assert.NotNil(t, res.Record.ConsumedAt)
}

func TestIssueRateLimited(t *testing.T) {
	store := &fakeStore{}
	e, clock := newTestEngine(store)

	for i := 0; i < 5; i++ {
		_, _, err := e.Issue(context.Background(), model.SubjectUserReg, "a@b.test", nil, nil)
		require.NoError(t, err)
	}
	_, _, err := e.Issue(context.Background(), model.SubjectUserReg, "a@b.test", nil, nil)
	assert.ErrorIs(t, err, ErrRateLimited)

	// Different recipient and different subject are independent buckets.
	_, _, err = e.Issue(context.Background(), model.SubjectUserReg, "other@b.test", nil, nil)
	assert.NoError(t, err)
	_, _, err = e.Issue(context.Background(), model.SubjectPasswordReset, "a@b.test", nil, nil)
	assert.NoError(t, err)

	// Once the window slides past the burst, issuance opens up again.
	*clock = clock.Add(11 * time.Minute)
	_, _, err = e.Issue(context.Background(), model.SubjectUserReg, "a@b.test", nil, nil)
	assert.NoError(t, err)
}

func TestVerifyWrongCodeDoesNotConsume(t *testing.T) {
	store := &fakeStore{}
	e, _ := newTestEngine(store)

	code, _, err := e.Issue(context.Background(), model.SubjectCompanyReg, "a@b.test", nil, nil)
	require.NoError(t, err)

	res, err := e.Verify(context.Background(), model.SubjectCompanyReg, "a@b.test", "000000", nil)
	require.NoError(t, err)
	assert.False(t, res.OK)
	assert.Equal(t, ReasonMismatch, res.Reason)

	// The code survives the failed attempt and still verifies.
	res, err = e.Verify(context.Background(), model.SubjectCompanyReg, "a@b.test", code, nil)
	require.NoError(t, err)
	assert.True(t, res.OK)
}

func TestVerifyConsumesExactlyOnce(t *testing.T) {
	store := &fakeStore{}
	e, _ := newTestEngine(store)

	code, _, err := e.Issue(context.Background(), model.SubjectLogin2FA, "a@b.test", nil, nil)
	require.NoError(t, err)

	res, err := e.Verify(context.Background(), model.SubjectLogin2FA, "a@b.test", code, nil)
	require.NoError(t, err)
	require.True(t, res.OK)

	res, err = e.Verify(context.Background(), model.SubjectLogin2FA, "a@b.test", code, nil)
	require.NoError(t, err)
	assert.False(t, res.OK)
	assert.Equal(t, ReasonNotFound, res.Reason)
}

func TestVerifyExpiredCode(t *testing.T) {
	store := &fakeStore{}
	e, clock := newTestEngine(store)

	code, _, err := e.Issue(context.Background(), model.SubjectLogin2FA, "a@b.test", nil, nil)
	require.NoError(t, err)

	*clock = clock.Add(11 * time.Minute)
	res, err := e.Verify(context.Background(), model.SubjectLogin2FA, "a@b.test", code, nil)
	require.NoError(t, err)
	assert.False(t, res.OK)
	assert.Equal(t, ReasonNotFound, res.Reason)
}

func TestVerifyMetaMismatchDoesNotConsume(t *testing.T) {
	store := &fakeStore{}
	e, _ := newTestEngine(store)

	code, _, err := e.Issue(context.Background(), model.SubjectUserReg, "a@b.test", nil,
		map[string]string{"pendingUserId": "42"})
	require.NoError(t, err)

	res, err := e.Verify(context.Background(), model.SubjectUserReg, "a@b.test", code,
		map[string]string{"pendingUserId": "99"})
	require.NoError(t, err)
	assert.False(t, res.OK)
	assert.Equal(t, ReasonMetaMismatch, res.Reason)

	res, err = e.Verify(context.Background(), model.SubjectUserReg, "a@b.test", code,
		map[string]string{"pendingUserId": "42"})
	require.NoError(t, err)
	assert.True(t, res.OK)
}

func TestVerifyNewestCodeWins(t *testing.T) {
	store := &fakeStore{}
	e, clock := newTestEngine(store)

	oldCode, _, err := e.Issue(context.Background(), model.SubjectLogin2FA, "a@b.test", nil, nil)
	require.NoError(t, err)
	*clock = clock.Add(time.Minute)
	newCode, _, err := e.Issue(context.Background(), model.SubjectLogin2FA, "a@b.test", nil, nil)
	require.NoError(t, err)
	require.NotEqual(t, oldCode, newCode)

	// Only the newest live code is considered; the superseded one now
	// reads as a mismatch.
	res, err := e.Verify(context.Background(), model.SubjectLogin2FA, "a@b.test", oldCode, nil)
	require.NoError(t, err)
	assert.False(t, res.OK)
	assert.Equal(t, ReasonMismatch, res.Reason)

	res, err = e.Verify(context.Background(), model.SubjectLogin2FA, "a@b.test", newCode, nil)
	require.NoError(t, err)
	assert.True(t, res.OK)
}

func TestVerifyRacedConsume(t *testing.T) {
	store := &fakeStore{}
	e, _ := newTestEngine(store)

	code, rec, err := e.Issue(context.Background(), model.SubjectLogin2FA, "a@b.test", nil, nil)
	require.NoError(t, err)

	// Simulate a concurrent verify that consumed the row between our read
	// and our consume.
	now := time.Date(2026, 3, 1, 12, 0, 1, 0, time.UTC)
	ok, err := store.Consume(context.Background(), rec.ID, now)
	require.NoError(t, err)
	require.True(t, ok)

	res, err := e.Verify(context.Background(), model.SubjectLogin2FA, "a@b.test", code, nil)
	require.NoError(t, err)
	assert.False(t, res.OK)
	assert.Equal(t, ReasonNotFound, res.Reason)
}
