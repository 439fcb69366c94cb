// Package workflow enforces the BOQ approval lifecycle: who may move a
// document, which transitions exist, and the audit row appended for every
// decision. Status changes go through the store's compare-and-swap so two
// racing transitions cannot both win.
package workflow

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/aslboq/catering-backend/internal/model"
)

var (
	// ErrNotFound covers both a missing document and one belonging to a
	// different company. The two are indistinguishable on purpose.
	ErrNotFound = errors.New("boq not found")

	// ErrForbidden means the actor's role or ownership does not permit the
	// requested transition on a document that does exist in their company.
	ErrForbidden = errors.New("not allowed")

	// ErrInvalidTransition means the document is not in a state the
	// requested transition starts from, possibly because a concurrent
	// request moved it first.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// Actor identifies the authenticated user driving a transition.
type Actor struct {
	UserID    uint64
	CompanyID uint64
	Role      string
}

// BOQStore is the document persistence the workflow needs.
// *repository.BOQRepo satisfies it.
type BOQStore interface {
	GetByID(ctx context.Context, id, companyID uint64) (*model.BillOfQuantity, error)
	UpdateStatus(ctx context.Context, id, companyID uint64, from []string, to string) (bool, error)
	ListByStatus(ctx context.Context, companyID uint64, status string) ([]model.BillOfQuantity, error)
}

// ApprovalStore is the append-only audit trail. *repository.ApprovalRepo
// satisfies it.
type ApprovalStore interface {
	Create(ctx context.Context, a *model.Approval) error
	ListByBOQ(ctx context.Context, boqID, companyID uint64) ([]model.Approval, error)
}

// Workflow coordinates BOQ status transitions and the approval audit trail.
type Workflow struct {
	boqs      BOQStore
	approvals ApprovalStore
	now       func() time.Time
}

func New(boqs BOQStore, approvals ApprovalStore) *Workflow {
	return &Workflow{
		boqs:      boqs,
		approvals: approvals,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Submit moves a draft or previously rejected document into pending.
// Regular users may only submit their own documents; supervisors and admins
// may submit any document in their company.
func (w *Workflow) Submit(ctx context.Context, actor Actor, boqID uint64) (*model.BillOfQuantity, error) {
	b, err := w.get(ctx, actor, boqID)
	if err != nil {
		return nil, err
	}
	if actor.Role == model.RoleUser && b.CreatedBy != actor.UserID {
		return nil, ErrForbidden
	}
	ok, err := w.boqs.UpdateStatus(ctx, boqID, actor.CompanyID,
		[]string{model.BOQStatusDraft, model.BOQStatusRejected}, model.BOQStatusPending)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidTransition
	}
	b.Status = model.BOQStatusPending
	return b, nil
}

// Approve moves a pending document to approved and appends one audit row.
// Supervisors and admins only.
func (w *Workflow) Approve(ctx context.Context, actor Actor, boqID uint64, comment *string) (*model.BillOfQuantity, *model.Approval, error) {
	return w.decide(ctx, actor, boqID, model.BOQStatusApproved, model.DecisionApproved, comment)
}

// Reject moves a pending document to rejected and appends one audit row.
// The document stays editable and can be resubmitted. Supervisors and
// admins only.
func (w *Workflow) Reject(ctx context.Context, actor Actor, boqID uint64, comment *string) (*model.BillOfQuantity, *model.Approval, error) {
	return w.decide(ctx, actor, boqID, model.BOQStatusRejected, model.DecisionRejected, comment)
}

func (w *Workflow) decide(ctx context.Context, actor Actor, boqID uint64, toStatus, decision string, comment *string) (*model.BillOfQuantity, *model.Approval, error) {
	if actor.Role != model.RoleSupervisor && actor.Role != model.RoleAdmin {
		return nil, nil, ErrForbidden
	}
	b, err := w.get(ctx, actor, boqID)
	if err != nil {
		return nil, nil, err
	}
	ok, err := w.boqs.UpdateStatus(ctx, boqID, actor.CompanyID,
		[]string{model.BOQStatusPending}, toStatus)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, ErrInvalidTransition
	}

	a := &model.Approval{
		CompanyID:    actor.CompanyID,
		BOQID:        boqID,
		SupervisorID: actor.UserID,
		Decision:     decision,
		Comment:      comment,
		DecidedAt:    w.now(),
	}
	if err := w.approvals.Create(ctx, a); err != nil {
		return nil, nil, err
	}
	b.Status = toStatus
	return b, a, nil
}

// Publish moves an approved document to published, the terminal state. Any
// authenticated member of the company may publish.
func (w *Workflow) Publish(ctx context.Context, actor Actor, boqID uint64) (*model.BillOfQuantity, error) {
	b, err := w.get(ctx, actor, boqID)
	if err != nil {
		return nil, err
	}
	ok, err := w.boqs.UpdateStatus(ctx, boqID, actor.CompanyID,
		[]string{model.BOQStatusApproved}, model.BOQStatusPublished)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidTransition
	}
	b.Status = model.BOQStatusPublished
	return b, nil
}

// ApprovalQueue lists the company's pending documents for review.
// Supervisors and admins only.
func (w *Workflow) ApprovalQueue(ctx context.Context, actor Actor) ([]model.BillOfQuantity, error) {
	if actor.Role != model.RoleSupervisor && actor.Role != model.RoleAdmin {
		return nil, ErrForbidden
	}
	return w.boqs.ListByStatus(ctx, actor.CompanyID, model.BOQStatusPending)
}

// History returns the decision trail of a document, oldest first.
func (w *Workflow) History(ctx context.Context, actor Actor, boqID uint64) ([]model.Approval, error) {
	if _, err := w.get(ctx, actor, boqID); err != nil {
		return nil, err
	}
	return w.approvals.ListByBOQ(ctx, boqID, actor.CompanyID)
}

func (w *Workflow) get(ctx context.Context, actor Actor, boqID uint64) (*model.BillOfQuantity, error) {
	b, err := w.boqs.GetByID(ctx, boqID, actor.CompanyID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}
