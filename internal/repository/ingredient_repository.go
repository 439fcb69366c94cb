package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/aslboq/catering-backend/internal/model"
)

type IngredientRepo struct{ DB *sql.DB }

func NewIngredientRepo(db *sql.DB) *IngredientRepo { return &IngredientRepo{DB: db} }

const ingredientCols = "id,name,category_id,unit_price_cents,unit,current_stock,minimum_stock,status,company_id,created_by,created_at"

func scanIngredient(sc interface{ Scan(...any) error }) (model.Ingredient, error) {
	var i model.Ingredient
	err := sc.Scan(&i.ID, &i.Name, &i.CategoryID, &i.UnitPriceCents, &i.Unit,
		&i.CurrentStock, &i.MinimumStock, &i.Status, &i.CompanyID, &i.CreatedBy, &i.CreatedAt)
	return i, err
}

// Create inserts an ingredient. The derived stock status is refreshed
// before the insert so callers cannot set it directly.
func (r *IngredientRepo) Create(ctx context.Context, i *model.Ingredient) (uint64, error) {
	i.RefreshStockStatus()
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO ingredients (name, category_id, unit_price_cents, unit, current_stock, minimum_stock, status, company_id, created_by)
		 VALUES (?,?,?,?,?,?,?,?,?)`,
		i.Name, i.CategoryID, i.UnitPriceCents, i.Unit, i.CurrentStock,
		i.MinimumStock, i.Status, i.CompanyID, i.CreatedBy)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	i.ID = uint64(id)
	return i.ID, nil
}

// GetByID fetches an ingredient within a company.
func (r *IngredientRepo) GetByID(ctx context.Context, id, companyID uint64) (model.Ingredient, error) {
	return scanIngredient(r.DB.QueryRowContext(ctx,
		"SELECT "+ingredientCols+" FROM ingredients WHERE id=? AND company_id=? LIMIT 1", id, companyID))
}

// List returns a page of the company's ingredients, newest first.
func (r *IngredientRepo) List(ctx context.Context, companyID uint64, limit, offset int) ([]model.Ingredient, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+ingredientCols+" FROM ingredients WHERE company_id=? ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?",
		companyID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Ingredient, 0)
	for rows.Next() {
		i, err := scanIngredient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

// UnitPrices returns ingredient_id -> unit_price_cents for the given IDs
// within a company. Used when recomputing menu estimated costs.
func (r *IngredientRepo) UnitPrices(ctx context.Context, companyID uint64, ids []uint64) (map[uint64]uint64, error) {
	prices := make(map[uint64]uint64, len(ids))
	if len(ids) == 0 {
		return prices, nil
	}
	query := "SELECT id, unit_price_cents FROM ingredients WHERE company_id=? AND id IN (?" +
		strings.Repeat(",?", len(ids)-1) + ")"
	args := make([]any, 0, len(ids)+1)
	args = append(args, companyID)
	for _, id := range ids {
		args = append(args, id)
	}
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id, price uint64
		if err := rows.Scan(&id, &price); err != nil {
			return nil, err
		}
		prices[id] = price
	}
	return prices, rows.Err()
}

// Update rewrites the mutable fields and refreshes the derived status.
func (r *IngredientRepo) Update(ctx context.Context, i *model.Ingredient) error {
	i.RefreshStockStatus()
	_, err := r.DB.ExecContext(ctx,
		`UPDATE ingredients SET name=?, category_id=?, unit_price_cents=?, unit=?, current_stock=?, minimum_stock=?, status=?
		 WHERE id=? AND company_id=?`,
		i.Name, i.CategoryID, i.UnitPriceCents, i.Unit, i.CurrentStock,
		i.MinimumStock, i.Status, i.ID, i.CompanyID)
	return err
}

// Delete removes an ingredient within a company.
func (r *IngredientRepo) Delete(ctx context.Context, id, companyID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM ingredients WHERE id=? AND company_id=?", id, companyID)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1451") {
			return ErrConflict
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
