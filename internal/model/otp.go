package model

import "time"

// Subjects bind a one-time code to the flow that issued it.  A code issued
// for company registration can never verify a user registration, even when
// both target the same email address.
const (
	SubjectCompanyReg    = "COMPANY_REG"
	SubjectUserReg       = "USER_REG"
	SubjectLogin2FA      = "LOGIN_2FA"
	SubjectPasswordReset = "PASSWORD_RESET"
)

// OneTimeCode mirrors the `otp_codes` table.  Only the bcrypt hash of the
// numeric code is stored; the plaintext exists solely in the issuance
// response handed to the mailer.  Expiry is enforced at read time (there
// is no background sweep) and a code is consumed exactly once.  Several
// unconsumed codes may coexist for the same identity; verification always
// considers the newest live one.
//
// Fields:
//  ID             – primary key identifier.
//  Subject        – flow that issued the code (COMPANY_REG, USER_REG, ...).
//  RecipientEmail – address the code was mailed to.
//  CompanyID      – owning tenant, when known (nullable).
//  CodeHash       – bcrypt hash of the 6-digit code.
//  ExpiresAt      – when the code stops being valid.
//  ConsumedAt     – when the code was successfully verified (null until then).
//  Meta           – opaque key-value pairs binding the code to a pending
//                   entity, e.g. {"pendingUserId": "42"}.
//  CreatedAt      – timestamp of issuance.
type OneTimeCode struct {
	ID             uint64            // otp_codes.id
	Subject        string            // otp_codes.subject
	RecipientEmail string            // otp_codes.recipient_email
	CompanyID      *uint64           // otp_codes.company_id (nullable)
	CodeHash       string            // otp_codes.code_hash
	ExpiresAt      time.Time         // otp_codes.expires_at
	ConsumedAt     *time.Time        // otp_codes.consumed_at (nullable)
	Meta           map[string]string // otp_codes.meta (JSON)
	CreatedAt      time.Time         // otp_codes.created_at
}

// PasswordResetToken mirrors the `password_reset_tokens` table.  Unlike a
// one-time code it is keyed by possession of a long random value delivered
// in a link, so only the SHA-256 hash is stored.  Single use, like OTP.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – user the reset was requested for.
//  TokenHash – SHA-256 hex digest of the raw token.
//  ExpiresAt – when the token stops being valid.
//  UsedAt    – when the token was redeemed (null until then).
//  CreatedAt – timestamp of creation.
type PasswordResetToken struct {
	ID        uint64     // password_reset_tokens.id
	UserID    uint64     // password_reset_tokens.user_id
	TokenHash string     // password_reset_tokens.token_hash
	ExpiresAt time.Time  // password_reset_tokens.expires_at
	UsedAt    *time.Time // password_reset_tokens.used_at (nullable)
	CreatedAt time.Time  // password_reset_tokens.created_at
}
