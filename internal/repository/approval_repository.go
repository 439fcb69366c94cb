package repository

import (
	"context"
	"database/sql"

	"github.com/aslboq/catering-backend/internal/model"
)

// ApprovalRepo appends and reads the immutable approval audit trail.
// There is deliberately no update or delete.
type ApprovalRepo struct{ DB *sql.DB }

func NewApprovalRepo(db *sql.DB) *ApprovalRepo { return &ApprovalRepo{DB: db} }

// Create appends one approval row and populates its generated ID.
func (r *ApprovalRepo) Create(ctx context.Context, a *model.Approval) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO approvals (company_id, boq_id, supervisor_id, decision, comment, decided_at) VALUES (?,?,?,?,?,?)",
		a.CompanyID, a.BOQID, a.SupervisorID, a.Decision, a.Comment, a.DecidedAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = uint64(id)
	return nil
}

// ListByBOQ returns the decision history of a BOQ within a company,
// oldest first.
func (r *ApprovalRepo) ListByBOQ(ctx context.Context, boqID, companyID uint64) ([]model.Approval, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, company_id, boq_id, supervisor_id, decision, comment, decided_at FROM approvals WHERE boq_id=? AND company_id=? ORDER BY decided_at ASC, id ASC",
		boqID, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Approval, 0)
	for rows.Next() {
		var a model.Approval
		if err := rows.Scan(&a.ID, &a.CompanyID, &a.BOQID, &a.SupervisorID,
			&a.Decision, &a.Comment, &a.DecidedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
