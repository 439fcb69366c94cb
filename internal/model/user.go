package model

import "time"

// Role names stored in users.role and carried in the JWT "role" claim.
// A plain user may only act on records it created; supervisors and admins
// act on any record within their own company.
const (
	RoleAdmin      = "admin"
	RoleUser       = "user"
	RoleSupervisor = "supervisor"
)

// User represents an application user record as stored in the `users`
// table.  Users are created unverified during registration and flipped to
// verified once the corresponding OTP is confirmed.
//
// Fields:
//  ID                 – primary key identifier.
//  Username           – unique username within the company.
//  Email              – email address, unique per company.
//  PasswordHash       – bcrypt hashed password.
//  Role               – one of admin, user, supervisor.
//  FirstName          – optional given name.
//  LastName           – optional family name.
//  CompanyID          – owning company (tenant).
//  IsVerified         – whether registration OTP was confirmed.
//  IsPrimaryAdmin     – the admin created during company onboarding.
//  ForceLogoutOnClose – client preference: drop the session on close.
//  IsActive           – whether the account may log in.
//  CreatedAt          – timestamp of creation.
//  UpdatedAt          – timestamp of last update.
type User struct {
	ID                 uint64    `json:"id"`                    // users.id
	Username           string    `json:"username"`              // users.username
	Email              string    `json:"email"`                 // users.email
	PasswordHash       string    `json:"-"`                     // users.password_hash
	Role               string    `json:"role"`                  // users.role
	FirstName          *string   `json:"first_name"`            // users.first_name (nullable)
	LastName           *string   `json:"last_name"`             // users.last_name (nullable)
	CompanyID          uint64    `json:"company_id"`            // users.company_id
	IsVerified         bool      `json:"is_verified"`           // users.is_verified
	IsPrimaryAdmin     bool      `json:"is_primary_admin"`      // users.is_primary_admin
	ForceLogoutOnClose bool      `json:"force_logout_on_close"` // users.force_logout_on_close
	IsActive           bool      `json:"is_active"`             // users.is_active
	CreatedAt          time.Time `json:"created_at"`            // users.created_at
	UpdatedAt          time.Time `json:"updated_at"`            // users.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  Each
// refresh token belongs to a user and contains metadata for expiry
// and revocation.  The plain token is not stored; only its
// SHA‑256 hash.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the token.
//  TokenHash – SHA‑256 hex digest of the token value.
//  ExpiresAt – expiration timestamp of the token.
//  RevokedAt – when the token was revoked (null if still active).
//  CreatedAt – timestamp of creation.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
