package model

import "time"

// Company is the tenant root.  Every domain record and every user belongs
// to exactly one company, and all repository queries are scoped by the
// company ID.  A company starts unverified; it becomes usable only after
// its registration OTP has been confirmed against the company email.
//
// Fields:
//  ID                   – primary key identifier.
//  CompanyName          – display name of the company.
//  CompanyEmail         – unique contact email, also the OTP recipient.
//  CompanyAddress       – postal address.
//  CompanyContactNumber – phone number.
//  AdminPasswordHash    – bcrypt hash of the initial admin password.
//  CompanyLogo          – URL of the uploaded logo (nullable).
//  IsVerified           – whether the registration OTP was confirmed.
//  CreatedAt            – timestamp of creation.
type Company struct {
	ID                   uint64     `json:"id"`                     // companies.id
	CompanyName          string     `json:"company_name"`           // companies.company_name
	CompanyEmail         string     `json:"company_email"`          // companies.company_email
	CompanyAddress       string     `json:"company_address"`        // companies.company_address
	CompanyContactNumber string     `json:"company_contact_number"` // companies.company_contact_number
	AdminPasswordHash    string     `json:"-"`                      // companies.admin_password_hash
	CompanyLogo          *string    `json:"company_logo,omitempty"` // companies.company_logo (nullable)
	IsVerified           bool       `json:"is_verified"`            // companies.is_verified
	CreatedAt            time.Time  `json:"created_at"`             // companies.created_at
}
