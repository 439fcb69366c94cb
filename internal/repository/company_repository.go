package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/aslboq/catering-backend/internal/model"
	"github.com/aslboq/catering-backend/internal/utils"
)

type CompanyRepo struct{ DB *sql.DB }

func NewCompanyRepo(db *sql.DB) *CompanyRepo { return &CompanyRepo{DB: db} }

const companyCols = "id,company_name,company_email,company_address,company_contact_number,admin_password_hash,company_logo,is_verified,created_at"

func scanCompany(row *sql.Row) (model.Company, error) {
	var c model.Company
	err := row.Scan(&c.ID, &c.CompanyName, &c.CompanyEmail, &c.CompanyAddress,
		&c.CompanyContactNumber, &c.AdminPasswordHash, &c.CompanyLogo, &c.IsVerified, &c.CreatedAt)
	return c, err
}

// CreateWithAdmin inserts an unverified company together with its pending
// primary admin in one transaction. Either both rows exist afterwards or
// neither does; a duplicate admin email must not strand a company row that
// would block re-registering the address. The shared password is hashed
// once before it is stored in both rows.
func (r *CompanyRepo) CreateWithAdmin(ctx context.Context, c *model.Company, admin *model.User, password string, cost int) (uint64, uint64, error) {
	c.CompanyEmail = strings.ToLower(strings.TrimSpace(c.CompanyEmail))
	admin.Email = strings.ToLower(strings.TrimSpace(admin.Email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, 0, err
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO companies (company_name, company_email, company_address, company_contact_number, admin_password_hash, company_logo) VALUES (?,?,?,?,?,?)",
		c.CompanyName, c.CompanyEmail, c.CompanyAddress, c.CompanyContactNumber, hash, c.CompanyLogo)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, 0, ErrEmailExists
		}
		return 0, 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, 0, err
	}
	c.ID = uint64(id)
	admin.CompanyID = c.ID

	res, err = tx.ExecContext(ctx,
		"INSERT INTO users (username, email, password_hash, role, first_name, last_name, company_id, is_verified, is_primary_admin, is_active) VALUES (?,?,?,?,?,?,?,?,?,?)",
		admin.Username, admin.Email, hash, admin.Role, admin.FirstName, admin.LastName, admin.CompanyID, admin.IsVerified, admin.IsPrimaryAdmin, admin.IsActive)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, 0, ErrEmailExists
		}
		return 0, 0, err
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, 0, err
	}
	admin.ID = uint64(id)

	if err := tx.Commit(); err != nil {
		return 0, 0, err
	}
	return c.ID, admin.ID, nil
}

// GetByEmail fetches a company by normalized email.
func (r *CompanyRepo) GetByEmail(ctx context.Context, email string) (model.Company, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanCompany(r.DB.QueryRowContext(ctx,
		"SELECT "+companyCols+" FROM companies WHERE company_email=? LIMIT 1", email))
}

// GetByID fetches a company by id.
func (r *CompanyRepo) GetByID(ctx context.Context, id uint64) (model.Company, error) {
	return scanCompany(r.DB.QueryRowContext(ctx,
		"SELECT "+companyCols+" FROM companies WHERE id=? LIMIT 1", id))
}

// EmailExists reports whether a company email is already registered.
func (r *CompanyRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var one int
	err := r.DB.QueryRowContext(ctx,
		"SELECT 1 FROM companies WHERE company_email=? LIMIT 1", email).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// MarkVerified flips is_verified after the registration OTP is confirmed.
func (r *CompanyRepo) MarkVerified(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx, "UPDATE companies SET is_verified=1 WHERE id=?", id)
	return err
}
