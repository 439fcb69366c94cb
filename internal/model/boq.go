package model

import "time"

// BOQ workflow states.  A document starts in draft and only ever moves
// forward through the transition table enforced by the workflow package:
// draft/rejected -> pending -> approved/rejected, approved -> published.
// Published is terminal; rejected is not, the document can be edited and
// resubmitted.
const (
	BOQStatusDraft     = "draft"
	BOQStatusPending   = "pending"
	BOQStatusApproved  = "approved"
	BOQStatusRejected  = "rejected"
	BOQStatusPublished = "published"
)

// BOQMenuItem is a priced line of a bill of quantity.  TotalPriceCents is
// derived (quantity × unit price) and never accepted from callers.
//
// Fields:
//  ID              – primary key identifier.
//  BOQID           – owning bill of quantity.
//  MenuID          – menu being quoted.
//  Quantity        – number of units, at least 1.
//  UnitPriceCents  – price per unit in cents.
//  TotalPriceCents – derived: Quantity × UnitPriceCents.
type BOQMenuItem struct {
	ID              uint64 `json:"id"`                // boq_menu_items.id
	BOQID           uint64 `json:"boq_id"`            // boq_menu_items.boq_id
	MenuID          uint64 `json:"menu_id"`           // boq_menu_items.menu_id
	Quantity        uint32 `json:"quantity"`          // boq_menu_items.quantity
	UnitPriceCents  uint64 `json:"unit_price_cents"`  // boq_menu_items.unit_price_cents
	TotalPriceCents uint64 `json:"total_price_cents"` // boq_menu_items.total_price_cents (derived)
}

// BillOfQuantity is a priced itemization of menu selections for an event,
// subject to the approval workflow before being finalized.  A document
// belongs to exactly one company and that never changes.
// TotalAmountCents is derived from the line items and recomputed on every
// write that touches them; client-submitted totals are overwritten.
//
// Fields:
//  ID               – primary key identifier.
//  Title            – short label for the document.
//  Description      – optional free text.
//  EventID          – event being quoted.
//  CustomerID       – customer the quote is for.
//  MenuItems        – ordered priced lines.
//  TotalAmountCents – derived: sum of line totals.
//  Status           – workflow state (draft ... published).
//  CompanyID        – owning company (tenant), immutable.
//  CreatedBy        – user who created the document.
//  CreatedAt        – timestamp of creation.
//  UpdatedAt        – timestamp of last update.
type BillOfQuantity struct {
	ID               uint64        `json:"id"`                  // bill_of_quantities.id
	Title            string        `json:"title"`               // bill_of_quantities.title
	Description      *string       `json:"description,omitempty"` // bill_of_quantities.description (nullable)
	EventID          uint64        `json:"event_id"`            // bill_of_quantities.event_id
	CustomerID       uint64        `json:"customer_id"`         // bill_of_quantities.customer_id
	MenuItems        []BOQMenuItem `json:"menu_items"`          // boq_menu_items rows
	TotalAmountCents uint64        `json:"total_amount_cents"`  // bill_of_quantities.total_amount_cents (derived)
	Status           string        `json:"status"`              // bill_of_quantities.status
	CompanyID        uint64        `json:"company_id"`          // bill_of_quantities.company_id
	CreatedBy        uint64        `json:"created_by"`          // bill_of_quantities.created_by
	CreatedAt        time.Time     `json:"created_at"`          // bill_of_quantities.created_at
	UpdatedAt        time.Time     `json:"updated_at"`          // bill_of_quantities.updated_at
}

// RecalculateTotals recomputes every line total and the document total from
// quantity × unit price.  Called explicitly before any persist that touches
// line items; whatever totals the caller submitted are discarded here.
func (b *BillOfQuantity) RecalculateTotals() {
	var sum uint64
	for i := range b.MenuItems {
		item := &b.MenuItems[i]
		item.TotalPriceCents = uint64(item.Quantity) * item.UnitPriceCents
		sum += item.TotalPriceCents
	}
	b.TotalAmountCents = sum
}
