package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/aslboq/catering-backend/internal/model"
)

type CategoryRepo struct{ DB *sql.DB }

func NewCategoryRepo(db *sql.DB) *CategoryRepo { return &CategoryRepo{DB: db} }

const categoryCols = "id,name,description,type,company_id,created_at"

func scanCategory(sc interface{ Scan(...any) error }) (model.Category, error) {
	var c model.Category
	err := sc.Scan(&c.ID, &c.Name, &c.Description, &c.Type, &c.CompanyID, &c.CreatedAt)
	return c, err
}

// Create inserts a category; names are unique per company.
func (r *CategoryRepo) Create(ctx context.Context, c *model.Category) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO categories (name, description, type, company_id) VALUES (?,?,?,?)",
		c.Name, c.Description, c.Type, c.CompanyID)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrConflict
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	c.ID = uint64(id)
	return c.ID, nil
}

// GetByID fetches a category within a company.
func (r *CategoryRepo) GetByID(ctx context.Context, id, companyID uint64) (model.Category, error) {
	return scanCategory(r.DB.QueryRowContext(ctx,
		"SELECT "+categoryCols+" FROM categories WHERE id=? AND company_id=? LIMIT 1", id, companyID))
}

// List returns a page of the company's categories, newest first.
func (r *CategoryRepo) List(ctx context.Context, companyID uint64, limit, offset int) ([]model.Category, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+categoryCols+" FROM categories WHERE company_id=? ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?",
		companyID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Category, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Update rewrites name/description/type of a category within a company.
func (r *CategoryRepo) Update(ctx context.Context, c *model.Category) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE categories SET name=?, description=?, type=? WHERE id=? AND company_id=?",
		c.Name, c.Description, c.Type, c.ID, c.CompanyID)
	if err != nil && strings.Contains(strings.ToLower(err.Error()), "1062") {
		return ErrConflict
	}
	return err
}

// Delete removes a category within a company. Ingredients referencing it
// keep the database from deleting via the FK; surfaced as ErrConflict.
func (r *CategoryRepo) Delete(ctx context.Context, id, companyID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM categories WHERE id=? AND company_id=?", id, companyID)
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
