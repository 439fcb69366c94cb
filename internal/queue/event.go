// Package queue defines message payloads exchanged over the message broker.
package queue

// BOQDecidedEvent is published when a supervisor approves or rejects a bill
// of quantity. It carries enough context for downstream consumers to log or
// notify without querying the primary database.
type BOQDecidedEvent struct {
	BOQID            uint64 `json:"boq_id"`
	Title            string `json:"title"`
	CompanyID        uint64 `json:"company_id"`
	SupervisorID     uint64 `json:"supervisor_id"`
	Decision         string `json:"decision"`
	Comment          string `json:"comment,omitempty"`
	TotalAmountCents uint64 `json:"total_amount_cents"`
	DecidedAt        string `json:"decided_at"`
}
