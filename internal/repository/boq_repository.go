package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/aslboq/catering-backend/internal/model"
)

// BOQRepo provides persistence for bills of quantity and their line items.
// Every lookup is scoped by company; a BOQ belonging to another company is
// reported as sql.ErrNoRows, never as a permission failure. Status changes
// go through a conditional single-statement update so concurrent workflow
// transitions serialize at the database.
type BOQRepo struct{ DB *sql.DB }

func NewBOQRepo(db *sql.DB) *BOQRepo { return &BOQRepo{DB: db} }

const boqCols = "id,title,description,event_id,customer_id,total_amount_cents,status,company_id,created_by,created_at,updated_at"

func scanBOQ(sc interface{ Scan(...any) error }) (model.BillOfQuantity, error) {
	var b model.BillOfQuantity
	err := sc.Scan(&b.ID, &b.Title, &b.Description, &b.EventID, &b.CustomerID,
		&b.TotalAmountCents, &b.Status, &b.CompanyID, &b.CreatedBy, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}

// Create inserts a BOQ in draft with its line items inside one
// transaction. Totals must have been recomputed by the caller.
func (r *BOQRepo) Create(ctx context.Context, b *model.BillOfQuantity) (uint64, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO bill_of_quantities (title, description, event_id, customer_id, total_amount_cents, status, company_id, created_by) VALUES (?,?,?,?,?,?,?,?)",
		b.Title, b.Description, b.EventID, b.CustomerID, b.TotalAmountCents,
		b.Status, b.CompanyID, b.CreatedBy)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	b.ID = uint64(id)

	if err := insertBOQItems(ctx, tx, b.ID, b.MenuItems); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return b.ID, nil
}

func insertBOQItems(ctx context.Context, tx *sql.Tx, boqID uint64, items []model.BOQMenuItem) error {
	if len(items) == 0 {
		return nil
	}
	query := "INSERT INTO boq_menu_items (boq_id, menu_id, quantity, unit_price_cents, total_price_cents) VALUES "
	args := make([]any, 0, len(items)*5)
	for i, it := range items {
		if i > 0 {
			query += ","
		}
		query += "(?,?,?,?,?)"
		args = append(args, boqID, it.MenuID, it.Quantity, it.UnitPriceCents, it.TotalPriceCents)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// GetByID fetches a BOQ within a company, including its line items.
func (r *BOQRepo) GetByID(ctx context.Context, id, companyID uint64) (*model.BillOfQuantity, error) {
	b, err := scanBOQ(r.DB.QueryRowContext(ctx,
		"SELECT "+boqCols+" FROM bill_of_quantities WHERE id=? AND company_id=? LIMIT 1", id, companyID))
	if err != nil {
		return nil, err
	}
	b.MenuItems, err = r.listItems(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BOQRepo) listItems(ctx context.Context, boqID uint64) ([]model.BOQMenuItem, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, boq_id, menu_id, quantity, unit_price_cents, total_price_cents FROM boq_menu_items WHERE boq_id=? ORDER BY id", boqID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.BOQMenuItem, 0)
	for rows.Next() {
		var it model.BOQMenuItem
		if err := rows.Scan(&it.ID, &it.BOQID, &it.MenuID, &it.Quantity,
			&it.UnitPriceCents, &it.TotalPriceCents); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// List returns a page of the company's BOQs, newest first, optionally
// filtered by status. Line items are omitted; the detail view loads them.
func (r *BOQRepo) List(ctx context.Context, companyID uint64, status string, limit, offset int) ([]model.BillOfQuantity, error) {
	query := "SELECT " + boqCols + " FROM bill_of_quantities WHERE company_id=?"
	args := []any{companyID}
	if status != "" {
		query += " AND status=?"
		args = append(args, status)
	}
	query += " ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.BillOfQuantity, 0)
	for rows.Next() {
		b, err := scanBOQ(rows)
		if err != nil {
			return nil, err
		}
		b.MenuItems = []model.BOQMenuItem{}
		out = append(out, b)
	}
	return out, rows.Err()
}

// ListByStatus returns every BOQ of a company in the given status, newest
// first. Backs the approval queue.
func (r *BOQRepo) ListByStatus(ctx context.Context, companyID uint64, status string) ([]model.BillOfQuantity, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+boqCols+" FROM bill_of_quantities WHERE company_id=? AND status=? ORDER BY created_at DESC, id DESC",
		companyID, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.BillOfQuantity, 0)
	for rows.Next() {
		b, err := scanBOQ(rows)
		if err != nil {
			return nil, err
		}
		b.MenuItems = []model.BOQMenuItem{}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Update rewrites the header fields and replaces the line items in one
// transaction. Totals must have been recomputed by the caller; whatever
// totals the client sent were already discarded upstream.
func (r *BOQRepo) Update(ctx context.Context, b *model.BillOfQuantity) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		"UPDATE bill_of_quantities SET title=?, description=?, event_id=?, customer_id=?, total_amount_cents=? WHERE id=? AND company_id=?",
		b.Title, b.Description, b.EventID, b.CustomerID, b.TotalAmountCents, b.ID, b.CompanyID)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM boq_menu_items WHERE boq_id=?", b.ID); err != nil {
		return err
	}
	if err := insertBOQItems(ctx, tx, b.ID, b.MenuItems); err != nil {
		return err
	}
	return tx.Commit()
}

// UpdateStatus moves a BOQ from one of the allowed source states to the
// target state with a compare-and-swap. It reports whether the swap took
// effect; false means the document was not in an allowed source state at
// the moment of the update (either an invalid transition or a concurrent
// one that got there first).
func (r *BOQRepo) UpdateStatus(ctx context.Context, id, companyID uint64, from []string, to string) (bool, error) {
	if len(from) == 0 {
		return false, nil
	}
	query := "UPDATE bill_of_quantities SET status=?, updated_at=UTC_TIMESTAMP() WHERE id=? AND company_id=? AND status IN (?" +
		strings.Repeat(",?", len(from)-1) + ")"
	args := make([]any, 0, len(from)+3)
	args = append(args, to, id, companyID)
	for _, s := range from {
		args = append(args, s)
	}
	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// Delete removes a BOQ and its line items within a company.
func (r *BOQRepo) Delete(ctx context.Context, id, companyID uint64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var one int
	if err := tx.QueryRowContext(ctx,
		"SELECT 1 FROM bill_of_quantities WHERE id=? AND company_id=? LIMIT 1", id, companyID).Scan(&one); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM boq_menu_items WHERE boq_id=?", id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM bill_of_quantities WHERE id=?", id); err != nil {
		return err
	}
	return tx.Commit()
}
