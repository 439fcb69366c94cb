package repository

import (
	"context"
	"database/sql"

	"github.com/aslboq/catering-backend/internal/model"
)

type CustomerRepo struct{ DB *sql.DB }

func NewCustomerRepo(db *sql.DB) *CustomerRepo { return &CustomerRepo{DB: db} }

const customerCols = "id,company_name,contact_person,address,email,mobile,twitter,instagram,facebook,discord,linkedin,catering_type,date_joined,created_by,company_id,created_at"

// Create inserts a customer and returns its ID.
func (r *CustomerRepo) Create(ctx context.Context, c *model.Customer) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO customers (company_name, contact_person, address, email, mobile, twitter, instagram, facebook, discord, linkedin, catering_type, created_by, company_id)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		c.CompanyName, c.ContactPerson, c.Address, c.Email, c.Mobile,
		c.Twitter, c.Instagram, c.Facebook, c.Discord, c.LinkedIn,
		c.CateringType, c.CreatedBy, c.CompanyID)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	c.ID = uint64(id)
	return c.ID, nil
}

func scanCustomer(sc interface{ Scan(...any) error }) (model.Customer, error) {
	var c model.Customer
	err := sc.Scan(&c.ID, &c.CompanyName, &c.ContactPerson, &c.Address, &c.Email,
		&c.Mobile, &c.Twitter, &c.Instagram, &c.Facebook, &c.Discord, &c.LinkedIn,
		&c.CateringType, &c.DateJoined, &c.CreatedBy, &c.CompanyID, &c.CreatedAt)
	return c, err
}

// GetByID fetches a customer within a company. Cross-company IDs surface
// as sql.ErrNoRows, indistinguishable from missing rows.
func (r *CustomerRepo) GetByID(ctx context.Context, id, companyID uint64) (model.Customer, error) {
	return scanCustomer(r.DB.QueryRowContext(ctx,
		"SELECT "+customerCols+" FROM customers WHERE id=? AND company_id=? LIMIT 1", id, companyID))
}

// List returns a page of the company's customers, newest first.
func (r *CustomerRepo) List(ctx context.Context, companyID uint64, limit, offset int) ([]model.Customer, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+customerCols+" FROM customers WHERE company_id=? ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?",
		companyID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Customer, 0)
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Update rewrites the mutable fields of a customer within a company.
// Callers are expected to have checked existence via GetByID first.
func (r *CustomerRepo) Update(ctx context.Context, c *model.Customer) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE customers SET company_name=?, contact_person=?, address=?, email=?, mobile=?, twitter=?, instagram=?, facebook=?, discord=?, linkedin=?, catering_type=?
		 WHERE id=? AND company_id=?`,
		c.CompanyName, c.ContactPerson, c.Address, c.Email, c.Mobile,
		c.Twitter, c.Instagram, c.Facebook, c.Discord, c.LinkedIn,
		c.CateringType, c.ID, c.CompanyID)
	return err
}

// Delete removes a customer within a company.
func (r *CustomerRepo) Delete(ctx context.Context, id, companyID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM customers WHERE id=? AND company_id=?", id, companyID)
	if err != nil {
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
