package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/aslboq/catering-backend/internal/model"
	"github.com/aslboq/catering-backend/internal/utils"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

var ErrEmailExists = errors.New("email already exists")

const userCols = "id,username,email,password_hash,role,first_name,last_name,company_id,is_verified,is_primary_admin,force_logout_on_close,is_active,created_at,updated_at"

func scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role,
		&u.FirstName, &u.LastName, &u.CompanyID, &u.IsVerified, &u.IsPrimaryAdmin,
		&u.ForceLogoutOnClose, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// Create inserts an unverified user and returns its ID. The password is
// hashed here so plaintext never crosses the repository boundary.
func (r *UserRepo) Create(ctx context.Context, u *model.User, password string, cost int) (uint64, error) {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (username, email, password_hash, role, first_name, last_name, company_id, is_verified, is_primary_admin, is_active) VALUES (?,?,?,?,?,?,?,?,?,?)",
		u.Username, u.Email, hash, u.Role, u.FirstName, u.LastName, u.CompanyID, u.IsVerified, u.IsPrimaryAdmin, u.IsActive)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	u.ID = uint64(id)
	return u.ID, nil
}

// GetByEmail fetches a user by normalized email. Emails are unique across
// all companies (login carries no tenant hint), so this resolves exactly
// one account.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE email=? LIMIT 1", email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE id=? LIMIT 1", id))
}

// MarkVerified flips is_verified, optionally promoting the user to primary
// admin (used when the company registration OTP is confirmed).
func (r *UserRepo) MarkVerified(ctx context.Context, id uint64, primaryAdmin bool) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET is_verified=1, is_primary_admin=(is_primary_admin OR ?) WHERE id=?",
		primaryAdmin, id)
	return err
}

// FindPendingAdmin returns the oldest unverified admin of a company, used
// when resending a company registration OTP.
func (r *UserRepo) FindPendingAdmin(ctx context.Context, companyID uint64) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE company_id=? AND role=? AND is_verified=0 ORDER BY created_at ASC LIMIT 1",
		companyID, model.RoleAdmin))
}

// UpdatePassword rehashes and stores a new password.
func (r *UserRepo) UpdatePassword(ctx context.Context, id uint64, password string, cost int) error {
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, "UPDATE users SET password_hash=? WHERE id=?", hash, id)
	return err
}

// UpdateForceLogout stores the user's session preference.
func (r *UserRepo) UpdateForceLogout(ctx context.Context, id uint64, v bool) error {
	_, err := r.DB.ExecContext(ctx, "UPDATE users SET force_logout_on_close=? WHERE id=?", v, id)
	return err
}
