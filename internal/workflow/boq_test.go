package workflow

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aslboq/catering-backend/internal/model"
)

type fakeBOQStore struct {
	docs map[uint64]*model.BillOfQuantity
}

func (s *fakeBOQStore) GetByID(_ context.Context, id, companyID uint64) (*model.BillOfQuantity, error) {
	b, ok := s.docs[id]
	if !ok || b.CompanyID != companyID {
		return nil, sql.ErrNoRows
	}
	cp := *b
	return &cp, nil
}

func (s *fakeBOQStore) UpdateStatus(_ context.Context, id, companyID uint64, from []string, to string) (bool, error) {
	b, ok := s.docs[id]
	if !ok || b.CompanyID != companyID {
		return false, nil
	}
	for _, f := range from {
		if b.Status == f {
			b.Status = to
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeBOQStore) ListByStatus(_ context.Context, companyID uint64, status string) ([]model.BillOfQuantity, error) {
	out := make([]model.BillOfQuantity, 0)
	for _, b := range s.docs {
		if b.CompanyID == companyID && b.Status == status {
			out = append(out, *b)
		}
	}
	return out, nil
}

type fakeApprovalStore struct {
	rows   []model.Approval
	nextID uint64
}

func (s *fakeApprovalStore) Create(_ context.Context, a *model.Approval) error {
	s.nextID++
	a.ID = s.nextID
	s.rows = append(s.rows, *a)
	return nil
}

func (s *fakeApprovalStore) ListByBOQ(_ context.Context, boqID, companyID uint64) ([]model.Approval, error) {
	out := make([]model.Approval, 0)
	for _, a := range s.rows {
		if a.BOQID == boqID && a.CompanyID == companyID {
			out = append(out, a)
		}
	}
	return out, nil
}

func newFixture(status string) (*Workflow, *fakeBOQStore, *fakeApprovalStore) {
	boqs := &fakeBOQStore{docs: map[uint64]*model.BillOfQuantity{
		1: {ID: 1, CompanyID: 10, CreatedBy: 100, Status: status},
	}}
	approvals := &fakeApprovalStore{}
	w := New(boqs, approvals)
	w.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return w, boqs, approvals
}

var (
	owner      = Actor{UserID: 100, CompanyID: 10, Role: model.RoleUser}
	otherUser  = Actor{UserID: 101, CompanyID: 10, Role: model.RoleUser}
	supervisor = Actor{UserID: 200, CompanyID: 10, Role: model.RoleSupervisor}
	admin      = Actor{UserID: 300, CompanyID: 10, Role: model.RoleAdmin}
	outsider   = Actor{UserID: 400, CompanyID: 99, Role: model.RoleAdmin}
)

func TestSubmit(t *testing.T) {
	t.Run("owner submits draft", func(t *testing.T) {
		w, boqs, _ := newFixture(model.BOQStatusDraft)
		b, err := w.Submit(context.Background(), owner, 1)
		require.NoError(t, err)
		assert.Equal(t, model.BOQStatusPending, b.Status)
		assert.Equal(t, model.BOQStatusPending, boqs.docs[1].Status)
	})

	t.Run("rejected document can be resubmitted", func(t *testing.T) {
		w, _, _ := newFixture(model.BOQStatusRejected)
		b, err := w.Submit(context.Background(), owner, 1)
		require.NoError(t, err)
		assert.Equal(t, model.BOQStatusPending, b.Status)
	})

	t.Run("other user cannot submit someone else's draft", func(t *testing.T) {
		w, _, _ := newFixture(model.BOQStatusDraft)
		_, err := w.Submit(context.Background(), otherUser, 1)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("admin may submit any document in the company", func(t *testing.T) {
		w, _, _ := newFixture(model.BOQStatusDraft)
		_, err := w.Submit(context.Background(), admin, 1)
		assert.NoError(t, err)
	})

	t.Run("pending document cannot be submitted again", func(t *testing.T) {
		w, _, _ := newFixture(model.BOQStatusPending)
		_, err := w.Submit(context.Background(), owner, 1)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("cross-company lookup reads as missing", func(t *testing.T) {
		w, _, _ := newFixture(model.BOQStatusDraft)
		_, err := w.Submit(context.Background(), outsider, 1)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestApprove(t *testing.T) {
	t.Run("supervisor approves pending and audit row is appended", func(t *testing.T) {
		w, boqs, approvals := newFixture(model.BOQStatusPending)
		comment := "looks good"
		b, a, err := w.Approve(context.Background(), supervisor, 1, &comment)
		require.NoError(t, err)
		assert.Equal(t, model.BOQStatusApproved, b.Status)
		assert.Equal(t, model.BOQStatusApproved, boqs.docs[1].Status)
		require.Len(t, approvals.rows, 1)
		assert.Equal(t, model.DecisionApproved, a.Decision)
		assert.Equal(t, supervisor.UserID, a.SupervisorID)
		assert.Equal(t, "looks good", *a.Comment)
	})

	t.Run("regular user cannot approve", func(t *testing.T) {
		w, _, approvals := newFixture(model.BOQStatusPending)
		_, _, err := w.Approve(context.Background(), owner, 1, nil)
		assert.ErrorIs(t, err, ErrForbidden)
		assert.Empty(t, approvals.rows)
	})

	t.Run("draft cannot be approved and no audit row appears", func(t *testing.T) {
		w, _, approvals := newFixture(model.BOQStatusDraft)
		_, _, err := w.Approve(context.Background(), admin, 1, nil)
		assert.ErrorIs(t, err, ErrInvalidTransition)
		assert.Empty(t, approvals.rows)
	})

	t.Run("racing decisions produce exactly one audit row", func(t *testing.T) {
		w, _, approvals := newFixture(model.BOQStatusPending)
		_, _, err1 := w.Approve(context.Background(), supervisor, 1, nil)
		_, _, err2 := w.Reject(context.Background(), admin, 1, nil)
		require.NoError(t, err1)
		assert.ErrorIs(t, err2, ErrInvalidTransition)
		assert.Len(t, approvals.rows, 1)
	})
}

func TestReject(t *testing.T) {
	w, boqs, approvals := newFixture(model.BOQStatusPending)
	b, a, err := w.Reject(context.Background(), admin, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, model.BOQStatusRejected, b.Status)
	assert.Equal(t, model.DecisionRejected, a.Decision)
	assert.Nil(t, a.Comment)

	// Reject then resubmit then approve leaves two audit rows.
	_, err = w.Submit(context.Background(), owner, 1)
	require.NoError(t, err)
	_, _, err = w.Approve(context.Background(), supervisor, 1, nil)
	require.NoError(t, err)
	assert.Len(t, approvals.rows, 2)
	assert.Equal(t, model.BOQStatusApproved, boqs.docs[1].Status)
}

func TestPublish(t *testing.T) {
	t.Run("approved publishes", func(t *testing.T) {
		w, _, _ := newFixture(model.BOQStatusApproved)
		b, err := w.Publish(context.Background(), owner, 1)
		require.NoError(t, err)
		assert.Equal(t, model.BOQStatusPublished, b.Status)
	})

	t.Run("published is terminal", func(t *testing.T) {
		w, _, _ := newFixture(model.BOQStatusPublished)
		_, err := w.Publish(context.Background(), owner, 1)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("pending cannot skip to published", func(t *testing.T) {
		w, _, _ := newFixture(model.BOQStatusPending)
		_, err := w.Publish(context.Background(), admin, 1)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})
}

func TestApprovalQueue(t *testing.T) {
	w, boqs, _ := newFixture(model.BOQStatusPending)
	boqs.docs[2] = &model.BillOfQuantity{ID: 2, CompanyID: 10, Status: model.BOQStatusDraft}
	boqs.docs[3] = &model.BillOfQuantity{ID: 3, CompanyID: 99, Status: model.BOQStatusPending}

	queue, err := w.ApprovalQueue(context.Background(), supervisor)
	require.NoError(t, err)
	require.Len(t, queue, 1)
	assert.Equal(t, uint64(1), queue[0].ID)

	_, err = w.ApprovalQueue(context.Background(), owner)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestHistory(t *testing.T) {
	w, _, _ := newFixture(model.BOQStatusPending)
	_, _, err := w.Approve(context.Background(), supervisor, 1, nil)
	require.NoError(t, err)

	hist, err := w.History(context.Background(), owner, 1)
	require.NoError(t, err)
	assert.Len(t, hist, 1)

	_, err = w.History(context.Background(), outsider, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}
