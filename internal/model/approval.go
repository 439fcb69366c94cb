package model

import "time"

// Approval decisions.
const (
	DecisionApproved = "APPROVED"
	DecisionRejected = "REJECTED"
)

// Approval is an immutable audit row capturing a single approve/reject
// decision on a bill of quantity.  One row is appended per transition, so a
// document that is rejected, resubmitted and then approved carries two
// rows.  Approvals are never updated or deleted.
type Approval struct {
	ID           uint64    `json:"id"`                // approvals.id
	CompanyID    uint64    `json:"company_id"`        // approvals.company_id
	BOQID        uint64    `json:"boq_id"`            // approvals.boq_id
	SupervisorID uint64    `json:"supervisor_id"`     // approvals.supervisor_id
	Decision     string    `json:"decision"`          // approvals.decision
	Comment      *string   `json:"comment,omitempty"` // approvals.comment (nullable)
	DecidedAt    time.Time `json:"decided_at"`        // approvals.decided_at
}
