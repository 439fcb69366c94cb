package repository

import (
	"context"
	"database/sql"

	"github.com/aslboq/catering-backend/internal/model"
)

// MenuRepo provides CRUD for menus and their ingredient lists. Menus and
// menu_ingredients rows are written inside one transaction so a menu can
// never be observed with half of its ingredient list.
type MenuRepo struct{ DB *sql.DB }

func NewMenuRepo(db *sql.DB) *MenuRepo { return &MenuRepo{DB: db} }

// Create inserts a menu with its ingredient rows. Derived totals must have
// been recomputed by the caller before this is invoked.
func (r *MenuRepo) Create(ctx context.Context, m *model.Menu) (uint64, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO menus (name, description, total_quantity, estimated_cost_cents, company_id, created_by) VALUES (?,?,?,?,?,?)",
		m.Name, m.Description, m.TotalQuantity, m.EstimatedCostCents, m.CompanyID, m.CreatedBy)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	m.ID = uint64(id)

	if err := insertMenuIngredients(ctx, tx, m.ID, m.Ingredients); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return m.ID, nil
}

func insertMenuIngredients(ctx context.Context, tx *sql.Tx, menuID uint64, ings []model.MenuIngredient) error {
	if len(ings) == 0 {
		return nil
	}
	query := "INSERT INTO menu_ingredients (menu_id, ingredient_id, quantity) VALUES "
	args := make([]any, 0, len(ings)*3)
	for i, ing := range ings {
		if i > 0 {
			query += ","
		}
		query += "(?,?,?)"
		args = append(args, menuID, ing.IngredientID, ing.Quantity)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// GetByID fetches a menu within a company, including its ingredient list.
func (r *MenuRepo) GetByID(ctx context.Context, id, companyID uint64) (*model.Menu, error) {
	var m model.Menu
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,name,description,total_quantity,estimated_cost_cents,company_id,created_by,created_at FROM menus WHERE id=? AND company_id=? LIMIT 1",
		id, companyID).Scan(&m.ID, &m.Name, &m.Description, &m.TotalQuantity,
		&m.EstimatedCostCents, &m.CompanyID, &m.CreatedBy, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	m.Ingredients, err = r.listIngredients(ctx, m.ID)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MenuRepo) listIngredients(ctx context.Context, menuID uint64) ([]model.MenuIngredient, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, menu_id, ingredient_id, quantity FROM menu_ingredients WHERE menu_id=? ORDER BY id", menuID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.MenuIngredient, 0)
	for rows.Next() {
		var ing model.MenuIngredient
		if err := rows.Scan(&ing.ID, &ing.MenuID, &ing.IngredientID, &ing.Quantity); err != nil {
			return nil, err
		}
		out = append(out, ing)
	}
	return out, rows.Err()
}

// List returns a page of the company's menus, newest first, without
// ingredient lists (detail view loads them).
func (r *MenuRepo) List(ctx context.Context, companyID uint64, limit, offset int) ([]model.Menu, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,name,description,total_quantity,estimated_cost_cents,company_id,created_by,created_at FROM menus WHERE company_id=? ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?",
		companyID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Menu, 0)
	for rows.Next() {
		var m model.Menu
		if err := rows.Scan(&m.ID, &m.Name, &m.Description, &m.TotalQuantity,
			&m.EstimatedCostCents, &m.CompanyID, &m.CreatedBy, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.Ingredients = []model.MenuIngredient{}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Update rewrites the menu header and replaces its ingredient list in one
// transaction.
func (r *MenuRepo) Update(ctx context.Context, m *model.Menu) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		"UPDATE menus SET name=?, description=?, total_quantity=?, estimated_cost_cents=? WHERE id=? AND company_id=?",
		m.Name, m.Description, m.TotalQuantity, m.EstimatedCostCents, m.ID, m.CompanyID)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM menu_ingredients WHERE menu_id=?", m.ID); err != nil {
		return err
	}
	if err := insertMenuIngredients(ctx, tx, m.ID, m.Ingredients); err != nil {
		return err
	}
	return tx.Commit()
}

// Delete removes a menu and its ingredient rows.
func (r *MenuRepo) Delete(ctx context.Context, id, companyID uint64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	// Scoped existence check before touching child rows, so another
	// company's menu ID cannot shed its ingredients here.
	var one int
	if err := tx.QueryRowContext(ctx,
		"SELECT 1 FROM menus WHERE id=? AND company_id=? LIMIT 1", id, companyID).Scan(&one); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM menu_ingredients WHERE menu_id=?", id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM menus WHERE id=?", id); err != nil {
		return err
	}
	return tx.Commit()
}
